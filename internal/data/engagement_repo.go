package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/techinsights/kbsite/internal/data/pgxutil"
	"github.com/techinsights/kbsite/internal/domain/model"
)

// EngagementRepo tracks article views and likes.
type EngagementRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewEngagementRepo creates a new EngagementRepo with real time provider.
func NewEngagementRepo(db *sql.DB) *EngagementRepo {
	return &EngagementRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewEngagementRepoWithTimeProvider creates a new EngagementRepo with a custom time provider.
func NewEngagementRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *EngagementRepo {
	return &EngagementRepo{DB: db, timeProvider: tp}
}

// RecordView appends a view event for an article. Views are fire-and-forget;
// a missing article maps to ErrArticleNotFound via the foreign key.
func (r *EngagementRepo) RecordView(ctx context.Context, articleID string) error {
	_, err := execAffected(ctx, r.DB, `
		INSERT INTO article_views (article_id, viewed_at)
		VALUES ($1, $2)`,
		articleID,
		r.timeProvider.Now().UTC(),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return ErrArticleNotFound
		}
		return fmt.Errorf("failed to record view: %w", err)
	}
	return nil
}

// ToggleLike flips the like state for a user on an article inside a single
// transaction and reports the resulting state.
func (r *EngagementRepo) ToggleLike(ctx context.Context, articleID, userID string) (bool, error) {
	var liked bool
	err := pgxutil.WithPgxTx(ctx, r.DB, func(tx pgx.Tx) error {
		ct, err := tx.Exec(ctx, `
			DELETE FROM article_likes WHERE article_id = $1 AND user_id = $2`,
			articleID, userID)
		if err != nil {
			return err
		}
		if ct.RowsAffected() > 0 {
			liked = false
			return nil
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO article_likes (article_id, user_id, liked_at)
			VALUES ($1, $2, $3)`,
			articleID, userID, r.timeProvider.Now().UTC())
		if err != nil {
			return err
		}
		liked = true
		return nil
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return false, ErrArticleNotFound
		}
		return false, fmt.Errorf("failed to toggle like: %w", err)
	}
	return liked, nil
}

// Engagement returns view and like counters for an article. userID may be
// empty for anonymous readers; Liked is then always false.
func (r *EngagementRepo) Engagement(
	ctx context.Context,
	articleID, userID string,
) (*model.ArticleEngagement, error) {
	var out model.ArticleEngagement
	err := queryOne(ctx, r.DB, &out, `
		SELECT $1::text AS article_id,
		       (SELECT COUNT(*) FROM article_views WHERE article_id = $1)::int AS views,
		       (SELECT COUNT(*) FROM article_likes WHERE article_id = $1)::int AS likes,
		       EXISTS (
		           SELECT 1 FROM article_likes WHERE article_id = $1 AND user_id = $2
		       ) AS liked`,
		articleID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load engagement: %w", err)
	}
	return &out, nil
}
