// Package devauth is a loopback identity provider for local development. It
// skips the external IdP entirely: Begin points the browser straight at our
// own callback, and Exchange hands back the identity from configuration.
package devauth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	domainauth "github.com/techinsights/kbsite/internal/domain/auth"
	"github.com/techinsights/kbsite/internal/ports"
)

const (
	defaultSessionDuration = 8 * time.Hour
	stateBytes             = 18
)

// Config describes the single identity the provider vends.
type Config struct {
	UserID          string
	Email           string
	Name            string
	SessionDuration time.Duration
}

// Provider implements ports.AuthProvider against local configuration.
type Provider struct {
	cfg Config
}

// NewProvider validates the configured identity.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.UserID == "" {
		return nil, errors.New("dev auth: UserID is required")
	}
	if cfg.Email == "" {
		return nil, errors.New("dev auth: Email is required")
	}
	if cfg.SessionDuration <= 0 {
		cfg.SessionDuration = defaultSessionDuration
	}
	return &Provider{cfg: cfg}, nil
}

// Begin short-circuits the OAuth redirect: the returned URL is our own
// callback with a fixed code, carrying freshly generated state and nonce so
// the callback handler's checks still run.
func (p *Provider) Begin(_ context.Context, _ ports.BeginInput) (string, string, string, error) {
	state, err := randomToken()
	if err != nil {
		return "", "", "", fmt.Errorf("generate state: %w", err)
	}
	nonce, err := randomToken()
	if err != nil {
		return "", "", "", fmt.Errorf("generate nonce: %w", err)
	}
	return "/auth/callback?code=dev&state=" + state, state, nonce, nil
}

// Exchange ignores the code and mints the configured identity with a fresh
// expiry, so every dev login gets a full-length session.
func (p *Provider) Exchange(_ context.Context, _ ports.ExchangeInput) (domainauth.Identity, error) {
	return domainauth.Identity{
		ID:        p.cfg.UserID,
		Email:     p.cfg.Email,
		Name:      p.cfg.Name,
		ExpiresAt: time.Now().Add(p.cfg.SessionDuration),
	}, nil
}

func randomToken() (string, error) {
	b := make([]byte, stateBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
