package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techinsights/kbsite/internal/data"
	"github.com/techinsights/kbsite/internal/domain/model"
)

func publishedArticle(id string) *model.Article {
	return &model.Article{
		ID:       id,
		Title:    "Getting Started",
		Excerpt:  "An introduction",
		Content:  "Body text",
		Category: "Guides",
		Status:   model.ArticleStatusPublished,
	}
}

func draftArticle(id string) *model.Article {
	a := publishedArticle(id)
	a.Status = model.ArticleStatusDraft
	return a
}

func TestArticleService_ListPublished_ForcesStatus(t *testing.T) {
	articles := newFakeArticleRepo(publishedArticle("a-1"), draftArticle("a-2"))
	svc := NewArticleService(ArticleServiceOptions{
		Articles:   articles,
		Engagement: newFakeEngagementRepo(),
	})

	// Even a caller asking for drafts only sees published articles.
	draft := model.ArticleStatusDraft
	result, err := svc.ListPublished(context.Background(), model.ArticlesListOptions{Status: &draft})
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "a-1", result[0].ID)

	require.NotNil(t, articles.listOpts.Status)
	assert.Equal(t, model.ArticleStatusPublished, *articles.listOpts.Status)
}

func TestArticleService_GetPublished(t *testing.T) {
	articles := newFakeArticleRepo(publishedArticle("a-1"))
	engagement := newFakeEngagementRepo()
	svc := NewArticleService(ArticleServiceOptions{
		Articles:   articles,
		Engagement: engagement,
	})

	article, eng, err := svc.GetPublished(context.Background(), "a-1", "user-1")
	require.NoError(t, err)
	assert.Equal(t, "a-1", article.ID)
	assert.Equal(t, 1, eng.Views)
	assert.False(t, eng.Liked)

	// Every read counts a view.
	_, eng, err = svc.GetPublished(context.Background(), "a-1", "")
	require.NoError(t, err)
	assert.Equal(t, 2, eng.Views)
}

func TestArticleService_GetPublished_HidesDrafts(t *testing.T) {
	svc := NewArticleService(ArticleServiceOptions{
		Articles:   newFakeArticleRepo(draftArticle("a-1")),
		Engagement: newFakeEngagementRepo(),
	})

	_, _, err := svc.GetPublished(context.Background(), "a-1", "user-1")
	assert.ErrorIs(t, err, data.ErrArticleNotFound)

	_, _, err = svc.GetPublished(context.Background(), "no-such-article", "user-1")
	assert.ErrorIs(t, err, data.ErrArticleNotFound)
}

func TestArticleService_GetPublished_ViewFailureNonFatal(t *testing.T) {
	engagement := newFakeEngagementRepo()
	engagement.viewErr = errors.New("counter unavailable")
	svc := NewArticleService(ArticleServiceOptions{
		Articles:   newFakeArticleRepo(publishedArticle("a-1")),
		Engagement: engagement,
	})

	article, eng, err := svc.GetPublished(context.Background(), "a-1", "user-1")
	require.NoError(t, err)
	assert.Equal(t, "a-1", article.ID)
	assert.Zero(t, eng.Views)
}

func TestArticleService_ToggleLike(t *testing.T) {
	engagement := newFakeEngagementRepo()
	svc := NewArticleService(ArticleServiceOptions{
		Articles:   newFakeArticleRepo(publishedArticle("a-1")),
		Engagement: engagement,
	})

	liked, err := svc.ToggleLike(context.Background(), "a-1", "user-1")
	require.NoError(t, err)
	assert.True(t, liked)

	liked, err = svc.ToggleLike(context.Background(), "a-1", "user-1")
	require.NoError(t, err)
	assert.False(t, liked)
}

func TestArticleService_AdminSeesDrafts(t *testing.T) {
	svc := NewArticleService(ArticleServiceOptions{
		Articles:   newFakeArticleRepo(publishedArticle("a-1"), draftArticle("a-2")),
		Engagement: newFakeEngagementRepo(),
	})

	result, err := svc.List(context.Background(), model.ArticlesListOptions{})
	require.NoError(t, err)
	assert.Len(t, result, 2)

	draft, err := svc.GetByID(context.Background(), "a-2")
	require.NoError(t, err)
	assert.Equal(t, model.ArticleStatusDraft, draft.Status)
}

func TestArticleService_AdminCRUD(t *testing.T) {
	svc := NewArticleService(ArticleServiceOptions{
		Articles:   newFakeArticleRepo(),
		Engagement: newFakeEngagementRepo(),
	})

	created, err := svc.Create(context.Background(), &model.CreateArticleRequest{
		Title:    "New Article",
		Content:  "Body",
		Category: "Guides",
	})
	require.NoError(t, err)
	assert.Equal(t, model.ArticleStatusDraft, created.Status)

	published := model.ArticleStatusPublished
	updated, err := svc.Update(context.Background(), created.ID, model.UpdateArticleRequest{Status: &published})
	require.NoError(t, err)
	assert.Equal(t, model.ArticleStatusPublished, updated.Status)

	deleted, err := svc.Delete(context.Background(), created.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = svc.Delete(context.Background(), created.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}
