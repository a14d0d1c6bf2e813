package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds all process-wide configuration, loaded once at startup and
// injected into constructors.
type Config struct {
	Port         string
	MongoURI     string
	DBName       string
	JWTSecret    string
	TokenExpiry  time.Duration
	ClientOrigin string
	SMTPHost     string
	SMTPPort     string
	SMTPSender   string
	SMTPPassword string
}

// LoadConfig reads configuration from the environment, loading a .env file
// first if one is present.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, relying on environment variables")
	}

	expiry := 24 * time.Hour
	if raw := os.Getenv("JWT_EXPIRY"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			logrus.WithError(err).Warnf("Invalid JWT_EXPIRY %q, using default of 24h", raw)
		} else {
			expiry = parsed
		}
	}

	return &Config{
		Port:         getEnv("PORT", "8080"),
		MongoURI:     getEnv("MONGO_URI", "mongodb://localhost:27017"),
		DBName:       getEnv("DB_NAME", "item-adoption-api"),
		JWTSecret:    os.Getenv("JWT_SECRET"),
		TokenExpiry:  expiry,
		ClientOrigin: getEnv("CLIENT_ORIGIN", "http://localhost:3000"),
		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     getEnv("SMTP_PORT", "587"),
		SMTPSender:   os.Getenv("SMTP_SENDER"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
