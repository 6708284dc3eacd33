package httpx

// In-memory repository doubles and a full router stack for handler tests.
// The pgx-backed repositories have their own integration tests in internal/data.

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/techinsights/kbsite/internal/authz"
	"github.com/techinsights/kbsite/internal/data"
	domainauth "github.com/techinsights/kbsite/internal/domain/auth"
	"github.com/techinsights/kbsite/internal/domain/model"
	mockauth "github.com/techinsights/kbsite/internal/mocks/auth"
	"github.com/techinsights/kbsite/internal/service"
)

type memArticleRepo struct {
	mu       sync.Mutex
	articles map[string]*model.Article
	nextID   int
}

func newMemArticleRepo() *memArticleRepo {
	return &memArticleRepo{articles: make(map[string]*model.Article)}
}

func (m *memArticleRepo) Create(_ context.Context, req *model.CreateArticleRequest) (*model.Article, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	article := &model.Article{
		ID:        fmt.Sprintf("article-%d", m.nextID),
		Title:     strings.TrimSpace(req.Title),
		Excerpt:   req.Excerpt,
		Content:   req.Content,
		Category:  req.Category,
		Status:    req.Status,
		ReadTime:  req.ReadTime,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if req.Featured != nil {
		article.Featured = *req.Featured
	}
	m.articles[article.ID] = article
	out := *article
	return &out, nil
}

func (m *memArticleRepo) GetByID(_ context.Context, id string) (*model.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.articles[id]
	if !ok {
		return nil, data.ErrArticleNotFound
	}
	out := *a
	return &out, nil
}

func (m *memArticleRepo) List(_ context.Context, opts model.ArticlesListOptions) ([]*model.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.Article, 0, len(m.articles))
	for _, a := range m.articles {
		if opts.Status != nil && a.Status != *opts.Status {
			continue
		}
		if opts.Category != nil && a.Category != *opts.Category {
			continue
		}
		copied := *a
		out = append(out, &copied)
	}
	return out, nil
}

func (m *memArticleRepo) Update(_ context.Context, id string, req model.UpdateArticleRequest) (*model.Article, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.articles[id]
	if !ok {
		return nil, data.ErrArticleNotFound
	}
	if req.Title != nil {
		a.Title = *req.Title
	}
	if req.Content != nil {
		a.Content = *req.Content
	}
	if req.Status != nil {
		a.Status = *req.Status
	}
	if req.Featured != nil {
		a.Featured = *req.Featured
	}
	a.UpdatedAt = time.Now()
	out := *a
	return &out, nil
}

func (m *memArticleRepo) Delete(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.articles[id]; !ok {
		return false, nil
	}
	delete(m.articles, id)
	return true, nil
}

type memCategoryRepo struct {
	mu         sync.Mutex
	categories map[string]*model.Category
	nextID     int
}

func newMemCategoryRepo() *memCategoryRepo {
	return &memCategoryRepo{categories: make(map[string]*model.Category)}
}

func (m *memCategoryRepo) Create(_ context.Context, req *model.CreateCategoryRequest) (*model.Category, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.categories {
		if c.Name == req.Name {
			return nil, data.ErrCategoryExists
		}
	}
	m.nextID++
	category := &model.Category{
		ID:          fmt.Sprintf("category-%d", m.nextID),
		Name:        req.Name,
		Description: req.Description,
		Icon:        req.Icon,
		Color:       req.Color,
		CreatedAt:   time.Now(),
	}
	m.categories[category.ID] = category
	out := *category
	return &out, nil
}

func (m *memCategoryRepo) GetByID(_ context.Context, id string) (*model.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.categories[id]
	if !ok {
		return nil, data.ErrCategoryNotFound
	}
	out := *c
	return &out, nil
}

func (m *memCategoryRepo) List(_ context.Context) ([]*model.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.Category, 0, len(m.categories))
	for _, c := range m.categories {
		copied := *c
		out = append(out, &copied)
	}
	return out, nil
}

func (m *memCategoryRepo) Update(_ context.Context, id string, req model.UpdateCategoryRequest) (*model.Category, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.categories[id]
	if !ok {
		return nil, data.ErrCategoryNotFound
	}
	if req.Name != nil {
		c.Name = *req.Name
	}
	if req.Description != nil {
		c.Description = *req.Description
	}
	out := *c
	return &out, nil
}

func (m *memCategoryRepo) Delete(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.categories[id]; !ok {
		return false, nil
	}
	delete(m.categories, id)
	return true, nil
}

type memSubscriberRepo struct {
	mu          sync.Mutex
	subscribers map[string]*model.Subscriber
}

func newMemSubscriberRepo() *memSubscriberRepo {
	return &memSubscriberRepo{subscribers: make(map[string]*model.Subscriber)}
}

func (m *memSubscriberRepo) Subscribe(_ context.Context, email string) (*model.Subscriber, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.subscribers[email]; ok {
		return nil, data.ErrAlreadySubscribed
	}
	sub := &model.Subscriber{
		ID:           fmt.Sprintf("sub-%d", len(m.subscribers)+1),
		Email:        email,
		SubscribedAt: time.Now(),
	}
	m.subscribers[email] = sub
	out := *sub
	return &out, nil
}

func (m *memSubscriberRepo) Unsubscribe(_ context.Context, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.subscribers[email]; !ok {
		return false, nil
	}
	delete(m.subscribers, email)
	return true, nil
}

func (m *memSubscriberRepo) List(_ context.Context, _, _ int) ([]*model.Subscriber, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.Subscriber, 0, len(m.subscribers))
	for _, s := range m.subscribers {
		copied := *s
		out = append(out, &copied)
	}
	return out, nil
}

func (m *memSubscriberRepo) Count(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subscribers), nil
}

type memProfileRepo struct {
	mu       sync.Mutex
	profiles map[string]*model.Profile
}

func newMemProfileRepo() *memProfileRepo {
	return &memProfileRepo{profiles: make(map[string]*model.Profile)}
}

func (m *memProfileRepo) Upsert(_ context.Context, profile *model.Profile) (*model.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.profiles[profile.ID]
	if !ok {
		stored = &model.Profile{ID: profile.ID, CreatedAt: time.Now()}
		m.profiles[profile.ID] = stored
	}
	stored.Email = strings.ToLower(strings.TrimSpace(profile.Email))
	stored.FullName = profile.FullName
	out := *stored
	return &out, nil
}

func (m *memProfileRepo) GetByID(_ context.Context, id string) (*model.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[id]
	if !ok {
		return nil, data.ErrProfileNotFound
	}
	out := *p
	return &out, nil
}

func (m *memProfileRepo) GetByEmail(_ context.Context, email string) (*model.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	needle := strings.ToLower(strings.TrimSpace(email))
	for _, p := range m.profiles {
		if p.Email == needle {
			out := *p
			return &out, nil
		}
	}
	return nil, data.ErrProfileNotFound
}

func (m *memProfileRepo) ListWithRoles(_ context.Context, _, _ int) ([]*model.UserAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.UserAccount, 0, len(m.profiles))
	for _, p := range m.profiles {
		out = append(out, &model.UserAccount{Profile: *p})
	}
	return out, nil
}

type memEngagementRepo struct {
	mu    sync.Mutex
	views map[string]int
	likes map[string]map[string]bool
}

func newMemEngagementRepo() *memEngagementRepo {
	return &memEngagementRepo{
		views: make(map[string]int),
		likes: make(map[string]map[string]bool),
	}
}

func (m *memEngagementRepo) RecordView(_ context.Context, articleID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.views[articleID]++
	return nil
}

func (m *memEngagementRepo) ToggleLike(_ context.Context, articleID, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	byUser := m.likes[articleID]
	if byUser == nil {
		byUser = make(map[string]bool)
		m.likes[articleID] = byUser
	}
	if byUser[userID] {
		delete(byUser, userID)
		return false, nil
	}
	byUser[userID] = true
	return true, nil
}

func (m *memEngagementRepo) Engagement(_ context.Context, articleID, userID string) (*model.ArticleEngagement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return &model.ArticleEngagement{
		ArticleID: articleID,
		Views:     m.views[articleID],
		Likes:     len(m.likes[articleID]),
		Liked:     m.likes[articleID][userID],
	}, nil
}

type memAnalyticsRepo struct {
	analytics model.SiteAnalytics
}

func (m *memAnalyticsRepo) SiteAnalytics(_ context.Context) (*model.SiteAnalytics, error) {
	out := m.analytics
	return &out, nil
}

// testStack bundles the router with the stores the tests manipulate directly.
type testStack struct {
	router      http.Handler
	server      *httptest.Server
	provider    *mockauth.MockAuthProvider
	sessions    *mockauth.MemorySessionStore
	roles       *mockauth.MemoryRoleStore
	profiles    *memProfileRepo
	articles    *memArticleRepo
	categories  *memCategoryRepo
	subscribers *memSubscriberRepo
	engagement  *memEngagementRepo
	mailer      *mockauth.MockMailer
	authSvc     *service.AuthService
}

// newTestStack wires the full service stack over in-memory stores.
func newTestStack(t *testing.T) *testStack {
	t.Helper()

	s := &testStack{
		provider:    mockauth.NewMockAuthProvider(),
		sessions:    mockauth.NewMemorySessionStore(),
		roles:       mockauth.NewMemoryRoleStore(),
		profiles:    newMemProfileRepo(),
		articles:    newMemArticleRepo(),
		categories:  newMemCategoryRepo(),
		subscribers: newMemSubscriberRepo(),
		engagement:  newMemEngagementRepo(),
		mailer:      mockauth.NewMockMailer(),
	}

	s.authSvc = service.NewAuthService(service.AuthServiceOptions{
		Provider: s.provider,
		Sessions: s.sessions,
		Profiles: s.profiles,
		Roles:    s.roles,
	})
	roleSvc := service.NewRoleService(service.RoleServiceOptions{
		Roles:    s.roles,
		Profiles: s.profiles,
	})
	registry := authz.NewRegistry(authz.RegistryOptions{
		Checker:      roleSvc,
		CheckTimeout: time.Second,
	})

	s.router = NewRouter(RouterServices{
		Articles: service.NewArticleService(service.ArticleServiceOptions{
			Articles:   s.articles,
			Engagement: s.engagement,
		}),
		Categories: service.NewCategoryService(service.CategoryServiceOptions{
			Categories: s.categories,
		}),
		Newsletter: service.NewNewsletterService(service.NewsletterServiceOptions{
			Subscribers: s.subscribers,
			Mailer:      s.mailer,
		}),
		Users:     roleSvc,
		Analytics: service.NewAnalyticsService(service.AnalyticsServiceOptions{
			Analytics: &memAnalyticsRepo{analytics: model.SiteAnalytics{PublishedArticles: 3}},
		}),
		Auth:     s.authSvc,
		Registry: registry,
	})

	s.server = httptest.NewServer(s.router)
	t.Cleanup(s.server.Close)
	return s
}

// seedArticle inserts an article directly into the store.
func (s *testStack) seedArticle(t *testing.T, title string, status model.ArticleStatus) *model.Article {
	t.Helper()
	article, err := s.articles.Create(context.Background(), &model.CreateArticleRequest{
		Title:    title,
		Excerpt:  "excerpt",
		Content:  "content body",
		Category: "Guides",
		Status:   status,
	})
	if err != nil {
		t.Fatalf("seed article: %v", err)
	}
	return article
}

// signIn runs a login for the given user and returns the session cookie.
func (s *testStack) signIn(t *testing.T, userID string) *http.Cookie {
	t.Helper()
	s.provider.DefaultUser = domainauth.Identity{
		ID:        userID,
		Email:     userID + "@example.com",
		Name:      "User " + userID,
		ExpiresAt: time.Now().Add(time.Hour),
	}
	result, err := s.authSvc.CompleteLogin(context.Background(), service.CompleteLoginInput{
		Code:  "code",
		State: "state",
		Nonce: "nonce",
	})
	if err != nil {
		t.Fatalf("complete login: %v", err)
	}
	return &http.Cookie{Name: "session_id", Value: result.Session.ID}
}
