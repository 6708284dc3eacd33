package oidc

// Package oidc provides the OIDC/OAuth2 authentication adapter for the site.
// Identity providers differ in where they carry the stable subject, email,
// and display name; claim locations are configurable as JMESPath expressions
// evaluated against the raw claim set.

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	jmespath "github.com/jmespath-community/go-jmespath"
	"golang.org/x/oauth2"

	domainauth "github.com/techinsights/kbsite/internal/domain/auth"
	"github.com/techinsights/kbsite/internal/ports"
)

// ClaimMappings holds JMESPath expressions locating identity fields in the
// provider's claims. Empty fields fall back to the standard OIDC claim names.
type ClaimMappings struct {
	Subject string
	Email   string
	Name    string
}

func (m ClaimMappings) withDefaults() ClaimMappings {
	if m.Subject == "" {
		m.Subject = "sub"
	}
	if m.Email == "" {
		m.Email = "email"
	}
	if m.Name == "" {
		m.Name = "name"
	}
	return m
}

// ProviderConfig holds configuration for the OIDC provider.
type ProviderConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scope        string
	DiscoveryURL string
	LogoutURL    string
	Claims       ClaimMappings
	HTTPClient   *http.Client // Optional, defaults to a 30s-timeout client
}

// Provider implements the AuthProvider interface using OIDC/OAuth2.
type Provider struct {
	config     *oauth2.Config
	logoutURL  string
	httpClient *http.Client
	claims     ClaimMappings

	oidcProvider *gooidc.Provider
	verifier     *gooidc.IDTokenVerifier
}

// NewProvider creates a new OIDC provider. Discovery happens once here.
func NewProvider(config ProviderConfig) (*Provider, error) {
	if config.ClientID == "" {
		return nil, errors.New("client ID is required")
	}
	if config.ClientSecret == "" {
		return nil, errors.New("client secret is required")
	}
	if config.RedirectURL == "" {
		return nil, errors.New("redirect URL is required")
	}
	if config.DiscoveryURL == "" {
		return nil, errors.New("discovery URL is required")
	}

	claims := config.Claims.withDefaults()
	for _, expr := range []string{claims.Subject, claims.Email, claims.Name} {
		if _, err := jmespath.Compile(expr); err != nil {
			return nil, fmt.Errorf("invalid claim expression %q: %w", expr, err)
		}
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	p := &Provider{
		logoutURL:  config.LogoutURL,
		httpClient: httpClient,
		claims:     claims,
	}

	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, httpClient)
	issuer := strings.TrimSuffix(config.DiscoveryURL, "/")
	issuer = strings.TrimSuffix(issuer, "/.well-known/openid-configuration")
	issuer = strings.TrimSuffix(issuer, ".well-known/openid-configuration")
	op, err := gooidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc new provider: %w", err)
	}
	p.oidcProvider = op
	p.verifier = op.Verifier(&gooidc.Config{ClientID: config.ClientID})

	p.config = &oauth2.Config{
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		RedirectURL:  config.RedirectURL,
		Scopes:       strings.Fields(config.Scope),
		Endpoint:     op.Endpoint(),
	}

	return p, nil
}

func (p *Provider) Begin(_ context.Context, in ports.BeginInput) (string, string, string, error) {
	if in.RedirectURL == "" {
		return "", "", "", errors.New("redirect URL is required")
	}

	state, err := generateRandomString(32)
	if err != nil {
		return "", "", "", fmt.Errorf("generate state: %w", err)
	}

	nonce, err := generateRandomString(32)
	if err != nil {
		return "", "", "", fmt.Errorf("generate nonce: %w", err)
	}

	// redirect_uri must match the configured RedirectURL exactly, so it is
	// not overridden here.
	authURL := p.config.AuthCodeURL(state,
		oauth2.SetAuthURLParam("nonce", nonce),
		oauth2.SetAuthURLParam("response_type", "code"),
		oauth2.SetAuthURLParam("prompt", "select_account"),
	)

	return authURL, state, nonce, nil
}

func (p *Provider) Exchange(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error) {
	if in.Code == "" {
		return domainauth.Identity{}, errors.New("authorization code is required")
	}
	if in.State == "" {
		return domainauth.Identity{}, errors.New("state is required")
	}
	if in.Nonce == "" {
		return domainauth.Identity{}, errors.New("nonce is required")
	}

	token, err := p.config.Exchange(ctx, in.Code)
	if err != nil {
		return domainauth.Identity{}, fmt.Errorf("exchange code for token: %w", err)
	}

	fields, err := p.extractFromIDToken(ctx, token, in.Nonce)
	if err != nil {
		return domainauth.Identity{}, fmt.Errorf("extract id_token: %w", err)
	}

	if fields.subject == "" || fields.email == "" {
		if fillErr := p.fillFromUserInfo(ctx, token.AccessToken, &fields); fillErr != nil {
			return domainauth.Identity{}, fmt.Errorf("get user info: %w", fillErr)
		}
	}
	if fields.subject == "" {
		return domainauth.Identity{}, errors.New("provider returned no subject claim")
	}

	expiresAt := time.Now().Add(time.Hour)
	if !token.Expiry.IsZero() {
		expiresAt = token.Expiry
	}

	return domainauth.Identity{
		ID:        fields.subject,
		Email:     fields.email,
		Name:      fields.name,
		ExpiresAt: expiresAt,
	}, nil
}

type identityFields struct {
	subject string
	email   string
	name    string
}

func (p *Provider) extractFromIDToken(
	ctx context.Context,
	tok *oauth2.Token,
	expectedNonce string,
) (identityFields, error) {
	var f identityFields
	if !p.hasOpenIDScope() {
		return f, nil
	}
	rawID, err := getIDTokenFromToken(tok)
	if err != nil {
		return f, err
	}
	idTok, err := p.verifier.Verify(ctx, rawID)
	if err != nil {
		return f, fmt.Errorf("verify id_token: %w", err)
	}

	var raw map[string]any
	if claimsErr := idTok.Claims(&raw); claimsErr != nil {
		return f, fmt.Errorf("parse id_token claims: %w", claimsErr)
	}
	if expectedNonce != "" {
		if nonce, _ := raw["nonce"].(string); nonce != expectedNonce {
			return f, errors.New("invalid nonce")
		}
	}

	return p.mapClaims(raw), nil
}

func (p *Provider) fillFromUserInfo(ctx context.Context, accessToken string, f *identityFields) error {
	ui, err := p.oidcProvider.UserInfo(ctx,
		oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken}))
	if err != nil {
		return fmt.Errorf("fetch user info: %w", err)
	}
	var raw map[string]any
	if claimsErr := ui.Claims(&raw); claimsErr != nil {
		return fmt.Errorf("decode user info: %w", claimsErr)
	}

	mapped := p.mapClaims(raw)
	if f.subject == "" {
		f.subject = mapped.subject
	}
	if f.email == "" {
		f.email = mapped.email
	}
	if f.name == "" {
		f.name = mapped.name
	}
	return nil
}

// mapClaims evaluates the configured JMESPath expressions against a raw claim
// set. Expressions that fail or yield non-strings produce empty fields.
func (p *Provider) mapClaims(raw map[string]any) identityFields {
	return identityFields{
		subject: evalStringClaim(p.claims.Subject, raw),
		email:   evalStringClaim(p.claims.Email, raw),
		name:    evalStringClaim(p.claims.Name, raw),
	}
}

func evalStringClaim(expr string, data map[string]any) string {
	out, err := jmespath.Search(expr, data)
	if err != nil {
		return ""
	}
	s, _ := out.(string)
	return s
}

// generateRandomString generates a cryptographically secure URL-safe random string of exact length.
func generateRandomString(length int) (string, error) {
	if length <= 0 {
		return "", nil
	}
	nBytes := (length*3 + 3) / 4
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	s := base64.RawURLEncoding.EncodeToString(b)
	if len(s) < length {
		extra := make([]byte, 1)
		if _, err := rand.Read(extra); err != nil {
			return "", err
		}
		s += base64.RawURLEncoding.EncodeToString(extra)
	}
	return s[:length], nil
}

// hasOpenIDScope reports whether the configured scopes include "openid".
func (p *Provider) hasOpenIDScope() bool {
	for _, sc := range p.config.Scopes {
		if sc == "openid" {
			return true
		}
	}
	return false
}

// getIDTokenFromToken extracts the id_token from oauth2.Token.
func getIDTokenFromToken(tok *oauth2.Token) (string, error) {
	if tok == nil {
		return "", errors.New("nil token")
	}
	raw := tok.Extra("id_token")
	s, ok := raw.(string)
	if !ok || s == "" {
		return "", errors.New("missing id_token in token response")
	}
	return s, nil
}

// LogoutURL returns the provider logout endpoint, if configured.
func (p *Provider) LogoutURL() string { return p.logoutURL }
