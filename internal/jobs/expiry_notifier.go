package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"item-adoption-api/internal/services"
	"item-adoption-api/pkg/email"
)

// expiryWindow is how far ahead the daily scan looks for listings about to
// expire.
const expiryWindow = 24 * time.Hour

// ExpiryNotifier emails listing owners shortly before their listings expire.
type ExpiryNotifier struct {
	Listings *services.ListingService
	Users    *services.UserService
	Mailer   email.Sender
}

// NewExpiryNotifier creates a new instance of ExpiryNotifier.
func NewExpiryNotifier(listings *services.ListingService, users *services.UserService, mailer email.Sender) *ExpiryNotifier {
	return &ExpiryNotifier{
		Listings: listings,
		Users:    users,
		Mailer:   mailer,
	}
}

// RunDailyScan finds listings expiring within the next day and sends each
// owner a reminder. Individual send failures are logged and skipped so one
// bad address never aborts the scan.
func (n *ExpiryNotifier) RunDailyScan(ctx context.Context) error {
	entries, err := n.Listings.GetExpiringListings(ctx, expiryWindow)
	if err != nil {
		return fmt.Errorf("failed to fetch expiring listings: %w", err)
	}

	sent := 0
	for i := range entries {
		entry := &entries[i]

		owner, err := n.Users.GetUser(ctx, entry.UserID.Hex())
		if err != nil || owner.Email == "" {
			continue
		}

		msg := email.Message{
			To:      owner.Email,
			Subject: fmt.Sprintf("Your listing \"%s\" expires soon", entry.Title),
			Text: fmt.Sprintf("Hi %s,\n\nYour listing \"%s\" expires on %s. Renew it from your listings page if it is still available.\n",
				owner.Username, entry.Title, entry.ExpirationDate.Format("Jan 2")),
		}
		if err := n.Mailer.Send(msg); err != nil {
			logrus.WithFields(logrus.Fields{
				"entryID": entry.ID.Hex(),
				"error":   err,
			}).Warn("Failed to send expiry reminder")
			continue
		}
		sent++
	}

	logrus.WithFields(logrus.Fields{
		"expiring":  len(entries),
		"reminders": sent,
	}).Info("Listing expiry scan completed")
	return nil
}
