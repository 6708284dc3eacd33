package service

import (
	"context"
	"log/slog"

	"github.com/techinsights/kbsite/internal/core"
	"github.com/techinsights/kbsite/internal/data"
	"github.com/techinsights/kbsite/internal/domain/model"
)

// ArticleServiceOptions groups dependencies for ArticleService.
type ArticleServiceOptions struct {
	Articles   core.ArticleRepository
	Engagement core.EngagementRepository
	Logger     *slog.Logger
}

// ArticleService orchestrates article reads and admin CRUD. Public reads only
// ever see published articles; the admin surface sees everything.
type ArticleService struct {
	articles   core.ArticleRepository
	engagement core.EngagementRepository
	logger     *slog.Logger
}

// NewArticleService constructs a new ArticleService.
func NewArticleService(opts ArticleServiceOptions) *ArticleService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &ArticleService{
		articles:   opts.Articles,
		engagement: opts.Engagement,
		logger:     logger,
	}
}

// ListPublished returns published articles for the public site. The status
// filter is forced regardless of what the caller passed.
func (s *ArticleService) ListPublished(
	ctx context.Context,
	opts model.ArticlesListOptions,
) ([]*model.Article, error) {
	published := model.ArticleStatusPublished
	opts.Status = &published
	return s.articles.List(ctx, opts)
}

// GetPublished returns a single published article and records the view.
// userID may be empty for anonymous readers.
func (s *ArticleService) GetPublished(
	ctx context.Context,
	id, userID string,
) (*model.Article, *model.ArticleEngagement, error) {
	article, err := s.articles.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if article.Status != model.ArticleStatusPublished {
		// Drafts are invisible to the public surface.
		return nil, nil, data.ErrArticleNotFound
	}

	// View recording is best-effort; a failed counter never blocks a read.
	if viewErr := s.engagement.RecordView(ctx, id); viewErr != nil {
		s.logger.WarnContext(ctx, "record view failed", "article_id", id, "err", viewErr)
	}

	eng, err := s.engagement.Engagement(ctx, id, userID)
	if err != nil {
		return nil, nil, err
	}
	return article, eng, nil
}

// ToggleLike flips the caller's like on a published article.
func (s *ArticleService) ToggleLike(ctx context.Context, articleID, userID string) (bool, error) {
	return s.engagement.ToggleLike(ctx, articleID, userID)
}

// List returns articles for the admin surface, drafts included.
func (s *ArticleService) List(
	ctx context.Context,
	opts model.ArticlesListOptions,
) ([]*model.Article, error) {
	return s.articles.List(ctx, opts)
}

// GetByID retrieves an article by ID regardless of status.
func (s *ArticleService) GetByID(ctx context.Context, id string) (*model.Article, error) {
	return s.articles.GetByID(ctx, id)
}

// Create creates an article.
func (s *ArticleService) Create(
	ctx context.Context,
	req *model.CreateArticleRequest,
) (*model.Article, error) {
	return s.articles.Create(ctx, req)
}

// Update updates an article.
func (s *ArticleService) Update(
	ctx context.Context,
	id string,
	req model.UpdateArticleRequest,
) (*model.Article, error) {
	return s.articles.Update(ctx, id, req)
}

// Delete deletes an article.
func (s *ArticleService) Delete(ctx context.Context, id string) (bool, error) {
	return s.articles.Delete(ctx, id)
}
