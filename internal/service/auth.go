package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/techinsights/kbsite/internal/core"
	domainauth "github.com/techinsights/kbsite/internal/domain/auth"
	"github.com/techinsights/kbsite/internal/domain/model"
	"github.com/techinsights/kbsite/internal/ports"
)

// ErrSessionExpired is returned when a stored session has passed its expiry.
var ErrSessionExpired = errors.New("session expired")

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Provider ports.AuthProvider
	Sessions ports.SessionStore
	Profiles core.ProfileRepository
	Roles    core.RoleRepository
	Logger   *slog.Logger
}

// AuthService orchestrates authentication flows: provider exchange, profile
// upsert, default role provisioning, and session persistence. Sessions never
// carry a role; authorization is resolved against the role store per check.
type AuthService struct {
	provider ports.AuthProvider
	sessions ports.SessionStore
	profiles core.ProfileRepository
	roles    core.RoleRepository
	logger   *slog.Logger
}

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) *AuthService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		provider: opts.Provider,
		sessions: opts.Sessions,
		profiles: opts.Profiles,
		roles:    opts.Roles,
		logger:   logger,
	}
}

// BeginLoginResult contains the result of beginning a login flow.
type BeginLoginResult struct {
	AuthURL string
	State   string
	Nonce   string
}

// BeginLogin initiates an authentication flow and returns the provider auth URL with state and nonce.
func (s *AuthService) BeginLogin(ctx context.Context, redirectURL string) (*BeginLoginResult, error) {
	if redirectURL == "" {
		return nil, errors.New("redirect URL is required")
	}

	authURL, state, nonce, err := s.provider.Begin(ctx, ports.BeginInput{RedirectURL: redirectURL})
	if err != nil {
		return nil, fmt.Errorf("begin auth flow: %w", err)
	}

	return &BeginLoginResult{
		AuthURL: authURL,
		State:   state,
		Nonce:   nonce,
	}, nil
}

// CompleteLoginInput groups parameters for completing a login flow.
type CompleteLoginInput struct {
	Code  string
	State string
	Nonce string
}

// CompleteLoginResult contains the result of completing a login flow.
type CompleteLoginResult struct {
	Session domainauth.Session
}

// CompleteLogin exchanges the code for an identity, records the profile,
// provisions the default role for first-time visitors, and persists a session.
func (s *AuthService) CompleteLogin(
	ctx context.Context,
	input CompleteLoginInput,
) (*CompleteLoginResult, error) {
	if input.Code == "" {
		return nil, errors.New("authorization code is required")
	}
	if input.State == "" {
		return nil, errors.New("state parameter is required")
	}
	if input.Nonce == "" {
		return nil, errors.New("nonce parameter is required")
	}

	identity, err := s.provider.Exchange(ctx, ports.ExchangeInput{
		Code:  input.Code,
		State: input.State,
		Nonce: input.Nonce,
	})
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}

	if _, upsertErr := s.profiles.Upsert(ctx, &model.Profile{
		ID:       identity.ID,
		Email:    identity.Email,
		FullName: identity.Name,
	}); upsertErr != nil {
		return nil, fmt.Errorf("upsert profile: %w", upsertErr)
	}

	// Role provisioning happens here, at account-record time, and nowhere
	// else. Role lookups stay read-only.
	if provErr := s.roles.ProvisionDefault(ctx, identity.ID); provErr != nil {
		return nil, fmt.Errorf("provision default role: %w", provErr)
	}

	session := domainauth.Session{
		ID:        generateSessionID(),
		UserID:    identity.ID,
		Email:     identity.Email,
		Name:      identity.Name,
		ExpiresAt: identity.ExpiresAt,
	}

	if saveErr := s.sessions.Save(ctx, session); saveErr != nil {
		return nil, fmt.Errorf("save session: %w", saveErr)
	}

	s.logger.InfoContext(ctx, "login completed", "user_id", identity.ID)

	return &CompleteLoginResult{Session: session}, nil
}

// GetSession retrieves a session by ID. Expired sessions are deleted and
// reported as ErrSessionExpired.
func (s *AuthService) GetSession(ctx context.Context, sessionID string) (*domainauth.Session, error) {
	if sessionID == "" {
		return nil, errors.New("session ID is required")
	}

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	if time.Now().After(session.ExpiresAt) {
		if deleteErr := s.sessions.Delete(ctx, sessionID); deleteErr != nil {
			return nil, errors.Join(ErrSessionExpired, fmt.Errorf("delete session: %w", deleteErr))
		}
		return nil, ErrSessionExpired
	}

	return &session, nil
}

// Logout removes a session.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil // Nothing to logout
	}

	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	return nil
}

// generateSessionID creates a cryptographically secure random session ID.
func generateSessionID() string {
	return uuid.New().String()
}
