package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/techinsights/kbsite/internal/data"
	"github.com/techinsights/kbsite/internal/domain/model"
)

// In-memory repository fakes for service unit tests. The pgx-backed
// repositories have their own integration tests in internal/data.

type fakeProfileRepo struct {
	profiles map[string]*model.Profile

	upsertCalls int
	upsertErr   error
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: make(map[string]*model.Profile)}
}

func (f *fakeProfileRepo) Upsert(_ context.Context, profile *model.Profile) (*model.Profile, error) {
	f.upsertCalls++
	if f.upsertErr != nil {
		return nil, f.upsertErr
	}
	stored, ok := f.profiles[profile.ID]
	if !ok {
		stored = &model.Profile{ID: profile.ID, CreatedAt: time.Now()}
		f.profiles[profile.ID] = stored
	}
	stored.Email = strings.ToLower(strings.TrimSpace(profile.Email))
	stored.FullName = profile.FullName
	out := *stored
	return &out, nil
}

func (f *fakeProfileRepo) GetByID(_ context.Context, id string) (*model.Profile, error) {
	p, ok := f.profiles[id]
	if !ok {
		return nil, data.ErrProfileNotFound
	}
	out := *p
	return &out, nil
}

func (f *fakeProfileRepo) GetByEmail(_ context.Context, email string) (*model.Profile, error) {
	needle := strings.ToLower(strings.TrimSpace(email))
	for _, p := range f.profiles {
		if p.Email == needle {
			out := *p
			return &out, nil
		}
	}
	return nil, data.ErrProfileNotFound
}

func (f *fakeProfileRepo) ListWithRoles(_ context.Context, _, _ int) ([]*model.UserAccount, error) {
	accounts := make([]*model.UserAccount, 0, len(f.profiles))
	for _, p := range f.profiles {
		accounts = append(accounts, &model.UserAccount{Profile: *p})
	}
	return accounts, nil
}

type fakeArticleRepo struct {
	articles map[string]*model.Article

	listOpts *model.ArticlesListOptions
}

func newFakeArticleRepo(articles ...*model.Article) *fakeArticleRepo {
	f := &fakeArticleRepo{articles: make(map[string]*model.Article)}
	for _, a := range articles {
		f.articles[a.ID] = a
	}
	return f
}

func (f *fakeArticleRepo) Create(_ context.Context, req *model.CreateArticleRequest) (*model.Article, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	article := &model.Article{
		ID:       fmt.Sprintf("article-%d", len(f.articles)+1),
		Title:    req.Title,
		Excerpt:  req.Excerpt,
		Content:  req.Content,
		Category: req.Category,
		Status:   req.Status,
	}
	f.articles[article.ID] = article
	return article, nil
}

func (f *fakeArticleRepo) GetByID(_ context.Context, id string) (*model.Article, error) {
	a, ok := f.articles[id]
	if !ok {
		return nil, data.ErrArticleNotFound
	}
	out := *a
	return &out, nil
}

func (f *fakeArticleRepo) List(_ context.Context, opts model.ArticlesListOptions) ([]*model.Article, error) {
	f.listOpts = &opts
	var out []*model.Article
	for _, a := range f.articles {
		if opts.Status != nil && a.Status != *opts.Status {
			continue
		}
		copied := *a
		out = append(out, &copied)
	}
	return out, nil
}

func (f *fakeArticleRepo) Update(_ context.Context, id string, req model.UpdateArticleRequest) (*model.Article, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	a, ok := f.articles[id]
	if !ok {
		return nil, data.ErrArticleNotFound
	}
	if req.Title != nil {
		a.Title = *req.Title
	}
	if req.Status != nil {
		a.Status = *req.Status
	}
	out := *a
	return &out, nil
}

func (f *fakeArticleRepo) Delete(_ context.Context, id string) (bool, error) {
	if _, ok := f.articles[id]; !ok {
		return false, nil
	}
	delete(f.articles, id)
	return true, nil
}

type fakeEngagementRepo struct {
	views map[string]int
	likes map[string]map[string]bool

	viewErr error
}

func newFakeEngagementRepo() *fakeEngagementRepo {
	return &fakeEngagementRepo{
		views: make(map[string]int),
		likes: make(map[string]map[string]bool),
	}
}

func (f *fakeEngagementRepo) RecordView(_ context.Context, articleID string) error {
	if f.viewErr != nil {
		return f.viewErr
	}
	f.views[articleID]++
	return nil
}

func (f *fakeEngagementRepo) ToggleLike(_ context.Context, articleID, userID string) (bool, error) {
	byUser := f.likes[articleID]
	if byUser == nil {
		byUser = make(map[string]bool)
		f.likes[articleID] = byUser
	}
	if byUser[userID] {
		delete(byUser, userID)
		return false, nil
	}
	byUser[userID] = true
	return true, nil
}

func (f *fakeEngagementRepo) Engagement(_ context.Context, articleID, userID string) (*model.ArticleEngagement, error) {
	return &model.ArticleEngagement{
		ArticleID: articleID,
		Views:     f.views[articleID],
		Likes:     len(f.likes[articleID]),
		Liked:     f.likes[articleID][userID],
	}, nil
}

type fakeSubscriberRepo struct {
	subscribers map[string]*model.Subscriber

	subscribeErr error
}

func newFakeSubscriberRepo() *fakeSubscriberRepo {
	return &fakeSubscriberRepo{subscribers: make(map[string]*model.Subscriber)}
}

func (f *fakeSubscriberRepo) Subscribe(_ context.Context, email string) (*model.Subscriber, error) {
	if f.subscribeErr != nil {
		return nil, f.subscribeErr
	}
	if _, ok := f.subscribers[email]; ok {
		return nil, data.ErrAlreadySubscribed
	}
	sub := &model.Subscriber{
		ID:           fmt.Sprintf("sub-%d", len(f.subscribers)+1),
		Email:        email,
		SubscribedAt: time.Now(),
	}
	f.subscribers[email] = sub
	out := *sub
	return &out, nil
}

func (f *fakeSubscriberRepo) Unsubscribe(_ context.Context, email string) (bool, error) {
	if _, ok := f.subscribers[email]; !ok {
		return false, nil
	}
	delete(f.subscribers, email)
	return true, nil
}

func (f *fakeSubscriberRepo) List(_ context.Context, _, _ int) ([]*model.Subscriber, error) {
	out := make([]*model.Subscriber, 0, len(f.subscribers))
	for _, s := range f.subscribers {
		copied := *s
		out = append(out, &copied)
	}
	return out, nil
}

func (f *fakeSubscriberRepo) Count(_ context.Context) (int, error) {
	return len(f.subscribers), nil
}
