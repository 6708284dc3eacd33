package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	domainauth "github.com/techinsights/kbsite/internal/domain/auth"
	apperrors "github.com/techinsights/kbsite/internal/errors"
)

// RoleRepo is the role store behind the authorization core. Get is the single
// read consulted on every access decision; it must stay read-only so a lookup
// can never mutate authorization state.
type RoleRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewRoleRepo creates a new RoleRepo with real time provider.
func NewRoleRepo(db *sql.DB) *RoleRepo {
	return &RoleRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewRoleRepoWithTimeProvider creates a new RoleRepo with a custom time provider.
func NewRoleRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *RoleRepo {
	return &RoleRepo{DB: db, timeProvider: tp}
}

// Get returns the role assignment for a user. Returns ErrRoleRecordNotFound
// when no row exists; callers treat that differently from a query failure.
func (r *RoleRepo) Get(ctx context.Context, userID string) (*domainauth.RoleAssignment, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, errors.New("user id is required")
	}

	var out domainauth.RoleAssignment
	err := queryOne(ctx, r.DB, &out, `
		SELECT user_id, role, updated_at
		FROM user_roles
		WHERE user_id = $1`, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRoleRecordNotFound
		}
		return nil, fmt.Errorf("failed to get role: %w", err)
	}
	return &out, nil
}

// Set upserts the role for a user.
func (r *RoleRepo) Set(
	ctx context.Context,
	userID string,
	role domainauth.Role,
) (*domainauth.RoleAssignment, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, errors.New("user id is required")
	}
	if !role.Valid() {
		return nil, fmt.Errorf("invalid role %q", role)
	}

	var out domainauth.RoleAssignment
	err := queryOne(ctx, r.DB, &out, `
		INSERT INTO user_roles (user_id, role, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET role = EXCLUDED.role, updated_at = EXCLUDED.updated_at
		RETURNING user_id, role, updated_at`,
		userID,
		role,
		r.timeProvider.Now().UTC(),
	)
	if err != nil {
		// Setting a role for an unknown user trips the profiles foreign key;
		// surface it as a typed error so callers can answer 404 instead of 500.
		return nil, fmt.Errorf("failed to set role: %w", apperrors.MapDBError(err))
	}
	return &out, nil
}

// ProvisionDefault creates the default user role row if none exists. Existing
// assignments are left untouched, so an admin never loses their role by
// signing in again.
func (r *RoleRepo) ProvisionDefault(ctx context.Context, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return errors.New("user id is required")
	}

	_, err := execAffected(ctx, r.DB, `
		INSERT INTO user_roles (user_id, role, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO NOTHING`,
		userID,
		domainauth.RoleUser,
		r.timeProvider.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to provision default role: %w", err)
	}
	return nil
}
