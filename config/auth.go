package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// AuthMode selects the authentication provider implementation.
type AuthMode string

// Supported authentication modes.
const (
	// AuthModeOIDC authenticates against a real OIDC identity provider.
	AuthModeOIDC AuthMode = "oidc"
	// AuthModeDev short-circuits the flow with a fixed local identity.
	// Only valid in development.
	AuthModeDev AuthMode = "dev"
)

// AuthConfig contains authentication and session configuration.
type AuthConfig struct {
	Mode AuthMode `env:"MODE" envDefault:"oidc"`

	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	RedirectURL  string `env:"REDIRECT_URL"`
	Scope        string `env:"SCOPE"         envDefault:"openid profile email"`
	DiscoveryURL string `env:"DISCOVERY_URL"`
	LogoutURL    string `env:"LOGOUT_URL"`

	// Claim expressions are JMESPath paths into the ID token claims, for
	// providers that nest the interesting fields.
	SubjectClaim string `env:"SUBJECT_CLAIM" envDefault:"sub"`
	EmailClaim   string `env:"EMAIL_CLAIM"   envDefault:"email"`
	NameClaim    string `env:"NAME_CLAIM"    envDefault:"name"`

	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"8h"`

	// Dev-mode identity.
	DevUserID string `env:"DEV_USER_ID" envDefault:"dev-user"`
	DevEmail  string `env:"DEV_EMAIL"   envDefault:"dev@localhost"`
	DevName   string `env:"DEV_NAME"    envDefault:"Dev User"`
}

// Sanitize trims whitespace from string fields.
func (c *AuthConfig) Sanitize() {
	c.Mode = AuthMode(strings.ToLower(strings.TrimSpace(string(c.Mode))))
	c.ClientID = strings.TrimSpace(c.ClientID)
	c.ClientSecret = strings.TrimSpace(c.ClientSecret)
	c.RedirectURL = strings.TrimSpace(c.RedirectURL)
	c.DiscoveryURL = strings.TrimSpace(c.DiscoveryURL)
	c.LogoutURL = strings.TrimSpace(c.LogoutURL)
	if c.SessionTTL <= 0 {
		c.SessionTTL = 8 * time.Hour
	}
}

// Validate checks the configuration for the selected mode.
func (c *AuthConfig) Validate() error {
	switch c.Mode {
	case AuthModeOIDC:
		if c.ClientID == "" {
			return errors.New("auth: CLIENT_ID is required in oidc mode")
		}
		if c.ClientSecret == "" {
			return errors.New("auth: CLIENT_SECRET is required in oidc mode")
		}
		if c.RedirectURL == "" {
			return errors.New("auth: REDIRECT_URL is required in oidc mode")
		}
		if c.DiscoveryURL == "" {
			return errors.New("auth: DISCOVERY_URL is required in oidc mode")
		}
		return nil
	case AuthModeDev:
		if c.DevUserID == "" || c.DevEmail == "" {
			return errors.New("auth: DEV_USER_ID and DEV_EMAIL are required in dev mode")
		}
		return nil
	default:
		return fmt.Errorf("auth: unknown mode %q", c.Mode)
	}
}
