package config

import (
	"strings"
	"time"
)

// NewsletterConfig controls the confirmation mail dispatch endpoint. When the
// endpoint URL is empty, signups still succeed but no confirmation is sent.
type NewsletterConfig struct {
	MailerEndpointURL string        `env:"MAILER_ENDPOINT_URL" envDefault:""`
	MailerAuthToken   string        `env:"MAILER_AUTH_TOKEN"   envDefault:""`
	MailerTimeout     time.Duration `env:"MAILER_TIMEOUT"      envDefault:"5s"`
	MailerRetryLimit  int           `env:"MAILER_RETRY_LIMIT"  envDefault:"2"`
}

// Sanitize normalizes the mailer configuration.
func (c *NewsletterConfig) Sanitize() {
	c.MailerEndpointURL = strings.TrimSpace(c.MailerEndpointURL)
	c.MailerAuthToken = strings.TrimSpace(c.MailerAuthToken)
	if c.MailerTimeout <= 0 {
		c.MailerTimeout = 5 * time.Second
	}
	if c.MailerRetryLimit < 0 {
		c.MailerRetryLimit = 0
	}
}

// MailerEnabled reports whether a dispatch endpoint is configured.
func (c *NewsletterConfig) MailerEnabled() bool {
	return c.MailerEndpointURL != ""
}
