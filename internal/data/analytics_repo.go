package data

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/techinsights/kbsite/internal/domain/model"
)

// AnalyticsRepo aggregates the counters shown on the admin dashboard. A
// single round trip keeps the numbers mutually consistent.
type AnalyticsRepo struct {
	DB *sql.DB
}

// NewAnalyticsRepo creates a new AnalyticsRepo.
func NewAnalyticsRepo(db *sql.DB) *AnalyticsRepo {
	return &AnalyticsRepo{DB: db}
}

// SiteAnalytics returns the aggregate site counters.
func (r *AnalyticsRepo) SiteAnalytics(ctx context.Context) (*model.SiteAnalytics, error) {
	var out model.SiteAnalytics
	err := queryOne(ctx, r.DB, &out, `
		SELECT
			(SELECT COUNT(*) FROM articles WHERE status = 'published')::int AS published_articles,
			(SELECT COUNT(*) FROM articles WHERE status = 'draft')::int     AS draft_articles,
			(SELECT COUNT(*) FROM categories)::int                          AS categories,
			(SELECT COUNT(*) FROM newsletter_subscribers)::int              AS subscribers,
			(SELECT COUNT(*) FROM profiles)::int                            AS users,
			(SELECT COUNT(*) FROM article_views)::int                       AS total_views,
			(SELECT COUNT(*) FROM article_likes)::int                       AS total_likes`)
	if err != nil {
		return nil, fmt.Errorf("failed to load site analytics: %w", err)
	}
	return &out, nil
}
