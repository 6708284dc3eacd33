package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/techinsights/kbsite/internal/data/database"
	"github.com/techinsights/kbsite/internal/domain/model"
)

// SubscriberRepo provides database operations for newsletter subscribers.
type SubscriberRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewSubscriberRepo creates a new SubscriberRepo with real time provider.
func NewSubscriberRepo(db *sql.DB) *SubscriberRepo {
	return &SubscriberRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewSubscriberRepoWithTimeProvider creates a new SubscriberRepo with a custom time provider.
func NewSubscriberRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *SubscriberRepo {
	return &SubscriberRepo{DB: db, timeProvider: tp}
}

// Subscribe inserts a signup. The email is assumed normalized by the caller
// (model.SubscribeRequest.Validate). Duplicate emails map to
// ErrAlreadySubscribed via the unique constraint, not a pre-check, so
// concurrent signups cannot race past each other.
func (r *SubscriberRepo) Subscribe(ctx context.Context, email string) (*model.Subscriber, error) {
	var out model.Subscriber
	err := queryOne(ctx, r.DB, &out, `
		INSERT INTO newsletter_subscribers (email, subscribed_at)
		VALUES ($1, $2)
		RETURNING id, email, subscribed_at`,
		email,
		r.timeProvider.Now().UTC(),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrAlreadySubscribed
		}
		return nil, fmt.Errorf("failed to subscribe: %w", err)
	}
	return &out, nil
}

// Unsubscribe removes a signup by email.
func (r *SubscriberRepo) Unsubscribe(ctx context.Context, email string) (bool, error) {
	rows, err := execAffected(ctx, r.DB, `DELETE FROM newsletter_subscribers WHERE email = $1`, email)
	if err != nil {
		return false, fmt.Errorf("failed to unsubscribe: %w", err)
	}
	return rows > 0, nil
}

// List retrieves subscribers with pagination, newest first.
func (r *SubscriberRepo) List(ctx context.Context, limit, offset int) ([]*model.Subscriber, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	offset = max(offset, 0)

	query, args := database.BuildListQuery(database.NewListQueryOptions("newsletter_subscribers",
		database.WithColumns("id", "email", "subscribed_at"),
		database.WithOrderBy("subscribed_at", "DESC"),
		database.WithLimit(limit),
		database.WithOffset(offset),
	))
	rowsOut, err := queryMany[model.Subscriber](ctx, r.DB, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscribers: %w", err)
	}
	res := make([]*model.Subscriber, len(rowsOut))
	for i := range rowsOut {
		res[i] = &rowsOut[i]
	}
	return res, nil
}

// Count returns the total number of subscribers.
func (r *SubscriberRepo) Count(ctx context.Context) (int, error) {
	query, args := database.BuildListQuery(database.NewListQueryOptions("newsletter_subscribers",
		database.WithCountOnly(),
	))
	n, err := queryScalar[int](ctx, r.DB, query, args...)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("failed to count subscribers: %w", err)
	}
	return n, nil
}
