// Package devseed populates a development database with sample content.
package devseed

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/techinsights/kbsite/internal/data"
	"github.com/techinsights/kbsite/internal/domain/model"
)

// Run inserts the sample categories and articles. It is a no-op when the
// database already holds categories, so rerunning it is safe.
func Run(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	categories := data.NewCategoryRepo(db)
	articles := data.NewArticleRepo(db)

	existing, err := categories.List(ctx)
	if err != nil {
		return fmt.Errorf("list categories: %w", err)
	}
	if len(existing) > 0 {
		logger.InfoContext(ctx, "seed skipped, categories already present", "count", len(existing))
		return nil
	}

	for _, req := range sampleCategories() {
		if _, createErr := categories.Create(ctx, req); createErr != nil {
			if errors.Is(createErr, data.ErrCategoryExists) {
				continue
			}
			return fmt.Errorf("seed category %q: %w", req.Name, createErr)
		}
	}

	for _, req := range sampleArticles() {
		if _, createErr := articles.Create(ctx, req); createErr != nil {
			return fmt.Errorf("seed article %q: %w", req.Title, createErr)
		}
	}

	logger.InfoContext(ctx, "seed data inserted",
		"categories", len(sampleCategories()),
		"articles", len(sampleArticles()),
	)
	return nil
}

func sampleCategories() []*model.CreateCategoryRequest {
	return []*model.CreateCategoryRequest{
		{
			Name:        "Getting Started",
			Description: "Introductions and first steps",
			Icon:        "rocket",
			Color:       "bg-blue-500",
		},
		{
			Name:        "Guides",
			Description: "Step by step walkthroughs",
			Icon:        "book",
			Color:       "bg-green-500",
		},
		{
			Name:        "Troubleshooting",
			Description: "Fixes for common problems",
			Icon:        "wrench",
			Color:       "bg-red-500",
		},
	}
}

func sampleArticles() []*model.CreateArticleRequest {
	published := model.ArticleStatusPublished
	featured := true
	return []*model.CreateArticleRequest{
		{
			Title:    "Welcome to the Knowledge Base",
			Excerpt:  "What you will find here and how to get around.",
			Content:  "<h2>Welcome</h2><p>This knowledge base collects guides, references, and troubleshooting notes. Use the category filters or the search box to find what you need.</p>",
			Category: "Getting Started",
			Status:   published,
			Featured: &featured,
		},
		{
			Title:    "Creating Your First Article",
			Excerpt:  "A tour of the admin editor.",
			Content:  "<h2>The editor</h2><p>Administrators can create articles from the admin panel. Articles start as drafts and only appear on the public site once published.</p><p>Read time is estimated automatically from the article body.</p>",
			Category: "Guides",
			Status:   published,
		},
		{
			Title:    "Draft: Upcoming Features",
			Excerpt:  "Internal notes, not yet public.",
			Content:  "<p>This draft is only visible in the admin panel.</p>",
			Category: "Guides",
		},
	}
}
