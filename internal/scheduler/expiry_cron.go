package cron

import (
	"context"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"item-adoption-api/internal/jobs"
)

// StartExpiryCronJobs schedules the daily listing-expiry scan and returns the
// running cron so the caller can stop it on shutdown.
func StartExpiryCronJobs(notifier *jobs.ExpiryNotifier) *cron.Cron {
	c := cron.New()

	// Morning scan, before most users check their mail.
	c.AddFunc("0 8 * * *", func() {
		if err := notifier.RunDailyScan(context.Background()); err != nil {
			logrus.WithError(err).Error("Listing expiry scan failed")
		}
	})

	c.Start()
	return c
}
