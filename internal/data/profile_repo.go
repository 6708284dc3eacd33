package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/techinsights/kbsite/internal/domain/model"
)

// ProfileRepo provides database operations for visitor profiles.
type ProfileRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewProfileRepo creates a new ProfileRepo with real time provider.
func NewProfileRepo(db *sql.DB) *ProfileRepo {
	return &ProfileRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewProfileRepoWithTimeProvider creates a new ProfileRepo with a custom time provider.
func NewProfileRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *ProfileRepo {
	return &ProfileRepo{DB: db, timeProvider: tp}
}

const profileColumnList = "id, email, full_name, created_at"

// Upsert inserts the profile or refreshes email and name on conflict. The
// identity provider is the source of truth for both fields.
func (r *ProfileRepo) Upsert(ctx context.Context, profile *model.Profile) (*model.Profile, error) {
	if profile == nil {
		return nil, errors.New("profile is required")
	}
	if strings.TrimSpace(profile.ID) == "" {
		return nil, errors.New("profile id is required")
	}

	var out model.Profile
	err := queryOne(ctx, r.DB, &out, `
		INSERT INTO profiles (id, email, full_name, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET email = EXCLUDED.email, full_name = EXCLUDED.full_name
		RETURNING `+profileColumnList,
		profile.ID,
		strings.ToLower(strings.TrimSpace(profile.Email)),
		strings.TrimSpace(profile.FullName),
		r.timeProvider.Now().UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert profile: %w", err)
	}
	return &out, nil
}

// GetByID retrieves a profile by its provider identifier.
func (r *ProfileRepo) GetByID(ctx context.Context, id string) (*model.Profile, error) {
	return r.getByQuery(ctx, `SELECT `+profileColumnList+` FROM profiles WHERE id = $1`, id)
}

// GetByEmail retrieves a profile by email.
func (r *ProfileRepo) GetByEmail(ctx context.Context, email string) (*model.Profile, error) {
	return r.getByQuery(ctx,
		`SELECT `+profileColumnList+` FROM profiles WHERE email = $1`,
		strings.ToLower(strings.TrimSpace(email)))
}

// ListWithRoles returns profiles joined with their role assignments. Profiles
// without an assignment row surface the default user role.
func (r *ProfileRepo) ListWithRoles(
	ctx context.Context,
	limit, offset int,
) ([]*model.UserAccount, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	offset = max(offset, 0)

	rowsOut, err := queryMany[model.UserAccount](ctx, r.DB, `
		SELECT p.id, p.email, p.full_name, p.created_at,
		       COALESCE(ur.role, 'user') AS role
		FROM profiles p
		LEFT JOIN user_roles ur ON ur.user_id = p.id
		ORDER BY p.created_at DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles with roles: %w", err)
	}
	res := make([]*model.UserAccount, len(rowsOut))
	for i := range rowsOut {
		res[i] = &rowsOut[i]
	}
	return res, nil
}

func (r *ProfileRepo) getByQuery(
	ctx context.Context,
	q string,
	args ...any,
) (*model.Profile, error) {
	var out model.Profile
	if err := queryOne(ctx, r.DB, &out, q, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &out, nil
}
