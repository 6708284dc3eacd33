package core

import (
	"context"

	domainauth "github.com/techinsights/kbsite/internal/domain/auth"
	"github.com/techinsights/kbsite/internal/domain/model"
)

// This file contains repository interface definitions (ports in hexagonal
// architecture). Service implementations depend on these interfaces, not on
// the concrete pgx-backed repositories in internal/data.

// ArticleRepository defines the interface for article data operations.
type ArticleRepository interface {
	Create(ctx context.Context, req *model.CreateArticleRequest) (*model.Article, error)
	GetByID(ctx context.Context, id string) (*model.Article, error)
	List(ctx context.Context, opts model.ArticlesListOptions) ([]*model.Article, error)
	Update(ctx context.Context, id string, req model.UpdateArticleRequest) (*model.Article, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// CategoryRepository defines the interface for category data operations.
type CategoryRepository interface {
	Create(ctx context.Context, req *model.CreateCategoryRequest) (*model.Category, error)
	GetByID(ctx context.Context, id string) (*model.Category, error)
	List(ctx context.Context) ([]*model.Category, error)
	Update(ctx context.Context, id string, req model.UpdateCategoryRequest) (*model.Category, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// SubscriberRepository defines the interface for newsletter subscriber data.
type SubscriberRepository interface {
	Subscribe(ctx context.Context, email string) (*model.Subscriber, error)
	Unsubscribe(ctx context.Context, email string) (bool, error)
	List(ctx context.Context, limit, offset int) ([]*model.Subscriber, error)
	Count(ctx context.Context) (int, error)
}

// ProfileRepository defines the interface for profile data operations.
type ProfileRepository interface {
	// Upsert inserts the profile or refreshes email/name for an existing row.
	Upsert(ctx context.Context, profile *model.Profile) (*model.Profile, error)
	GetByID(ctx context.Context, id string) (*model.Profile, error)
	GetByEmail(ctx context.Context, email string) (*model.Profile, error)
	// ListWithRoles returns profiles joined with their role assignments,
	// defaulting to the user role when no assignment row exists.
	ListWithRoles(ctx context.Context, limit, offset int) ([]*model.UserAccount, error)
}

// RoleRepository is the role store consulted by the authorization core.
// Get must distinguish "no record" (data.ErrRoleRecordNotFound) from a found
// record and from a failed query; the three cases map to distinct
// authorization states.
type RoleRepository interface {
	// Get performs the single read-only role lookup. It never writes.
	Get(ctx context.Context, userID string) (*domainauth.RoleAssignment, error)
	// Set upserts the role for an identity. Privileged: callers must already
	// be authorized as administrators.
	Set(ctx context.Context, userID string, role domainauth.Role) (*domainauth.RoleAssignment, error)
	// ProvisionDefault creates the default user role row if none exists.
	// Invoked only at account-creation time, never from the read path.
	ProvisionDefault(ctx context.Context, userID string) error
}

// EngagementRepository tracks article views and likes.
type EngagementRepository interface {
	RecordView(ctx context.Context, articleID string) error
	ToggleLike(ctx context.Context, articleID, userID string) (liked bool, err error)
	Engagement(ctx context.Context, articleID, userID string) (*model.ArticleEngagement, error)
}

// AnalyticsRepository aggregates the dashboard counters.
type AnalyticsRepository interface {
	SiteAnalytics(ctx context.Context) (*model.SiteAnalytics, error)
}
