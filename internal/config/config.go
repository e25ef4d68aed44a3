package config

import (
	"log/slog"
	"os"
	"strings"
	"time"
)

// EmailConfig selects and configures the outbound email provider.
// An empty Provider means echo mode: links are logged instead of sent.
type EmailConfig struct {
	Provider      string
	From          string
	ResendAPIKey  string
	MailgunDomain string
	MailgunAPIKey string
}

type Config struct {
	Port          string
	Env           string
	DatabaseDSN   string
	AppURL        string
	SessionSecret string
	SessionExpiry time.Duration
	TokenExpiry   time.Duration
	ReminderAge   time.Duration
	CronSecret    string
	AdminEmails   []string
	Email         EmailConfig
}

func Load() Config {
	cfg := Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		DatabaseDSN:   getEnv("DATABASE_DSN", "root:password@tcp(127.0.0.1:3306)/prepost?parseTime=true"),
		AppURL:        getEnv("APP_URL", "http://localhost:8080"),
		SessionSecret: getEnv("SESSION_SECRET", "dev-secret-change-in-production"),
		SessionExpiry: 30 * 24 * time.Hour,
		TokenExpiry:   15 * time.Minute,
		ReminderAge:   7 * 24 * time.Hour,
		CronSecret:    getEnv("CRON_SECRET", ""),
		AdminEmails:   splitEmails(getEnv("ADMIN_EMAILS", "")),
		Email: EmailConfig{
			Provider:      getEnv("EMAIL_PROVIDER", ""),
			From:          getEnv("EMAIL_FROM", "Pre-Post <noreply@prepost.local>"),
			ResendAPIKey:  getEnv("RESEND_API_KEY", ""),
			MailgunDomain: getEnv("MAILGUN_DOMAIN", ""),
			MailgunAPIKey: getEnv("MAILGUN_API_KEY", ""),
		},
	}

	if cfg.Env == "production" && cfg.SessionSecret == "dev-secret-change-in-production" {
		slog.Error("SESSION_SECRET must be set in production environment")
		os.Exit(1)
	}

	return cfg
}

// IsAdmin reports whether the given email is on the configured allow-list.
func (c Config) IsAdmin(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, admin := range c.AdminEmails {
		if admin == email {
			return true
		}
	}
	return false
}

func splitEmails(raw string) []string {
	var emails []string
	for _, part := range strings.Split(raw, ",") {
		if e := strings.ToLower(strings.TrimSpace(part)); e != "" {
			emails = append(emails, e)
		}
	}
	return emails
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
