package httpx

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/techinsights/kbsite/internal/domain/auth"
	"github.com/techinsights/kbsite/internal/domain/model"
)

// doJSON issues a request against the stack server and decodes the JSON body.
func (s *testStack) doJSON(
	t *testing.T,
	method, path string,
	body any,
	cookies ...*http.Cookie,
) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, s.server.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}

	resp, err := s.server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var decoded map[string]any
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded), "body: %s", raw)
	}
	return resp.StatusCode, decoded
}

func TestRouter_Health(t *testing.T) {
	s := newTestStack(t)

	status, body := s.doJSON(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
}

func TestRouter_PublicArticles_HideDrafts(t *testing.T) {
	s := newTestStack(t)
	published := s.seedArticle(t, "Published Guide", model.ArticleStatusPublished)
	draft := s.seedArticle(t, "Draft Notes", model.ArticleStatusDraft)

	status, body := s.doJSON(t, http.MethodGet, "/api/articles", nil)
	require.Equal(t, http.StatusOK, status)
	articles, ok := body["articles"].([]any)
	require.True(t, ok)
	require.Len(t, articles, 1)
	first, ok := articles[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, published.ID, first["id"])

	// Asking for drafts explicitly changes nothing on the public surface.
	status, body = s.doJSON(t, http.MethodGet, "/api/articles?status=draft", nil)
	require.Equal(t, http.StatusOK, status)
	articles, ok = body["articles"].([]any)
	require.True(t, ok)
	assert.Len(t, articles, 1)

	// A draft fetched by ID looks exactly like a missing article.
	status, body = s.doJSON(t, http.MethodGet, "/api/articles/"+draft.ID, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "article_not_found", body["error"])
}

func TestRouter_PublicGet_CountsViews(t *testing.T) {
	s := newTestStack(t)
	article := s.seedArticle(t, "Counting Views", model.ArticleStatusPublished)

	status, _ := s.doJSON(t, http.MethodGet, "/api/articles/"+article.ID, nil)
	require.Equal(t, http.StatusOK, status)

	status, body := s.doJSON(t, http.MethodGet, "/api/articles/"+article.ID, nil)
	require.Equal(t, http.StatusOK, status)
	engagement, ok := body["engagement"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(2), engagement["views"])
	assert.Equal(t, false, engagement["liked"])
}

func TestRouter_Like_TogglesPerUser(t *testing.T) {
	s := newTestStack(t)
	article := s.seedArticle(t, "Likeable", model.ArticleStatusPublished)

	status, body := s.doJSON(t, http.MethodPost, "/api/articles/"+article.ID+"/like", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "authentication_required", body["error"])

	cookie := s.signIn(t, "reader-1")

	status, body = s.doJSON(t, http.MethodPost, "/api/articles/"+article.ID+"/like", nil, cookie)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["liked"])

	status, body = s.doJSON(t, http.MethodPost, "/api/articles/"+article.ID+"/like", nil, cookie)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, body["liked"])
}

func TestRouter_Newsletter(t *testing.T) {
	s := newTestStack(t)

	status, body := s.doJSON(t, http.MethodPost, "/api/newsletter/subscribe",
		map[string]string{"email": "Reader@Example.com"})
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "reader@example.com", body["email"])
	assert.Equal(t, []string{"reader@example.com"}, s.mailer.Sent)

	status, body = s.doJSON(t, http.MethodPost, "/api/newsletter/subscribe",
		map[string]string{"email": "reader@example.com"})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "already_subscribed", body["error"])

	status, body = s.doJSON(t, http.MethodPost, "/api/newsletter/subscribe",
		map[string]string{"email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "validation_failed", body["error"])

	status, body = s.doJSON(t, http.MethodPost, "/api/newsletter/unsubscribe",
		map[string]string{"email": "reader@example.com"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["unsubscribed"])

	status, body = s.doJSON(t, http.MethodPost, "/api/newsletter/unsubscribe",
		map[string]string{"email": "reader@example.com"})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "subscriber_not_found", body["error"])
}

func TestRouter_Categories(t *testing.T) {
	s := newTestStack(t)
	_, err := s.categories.Create(t.Context(), &model.CreateCategoryRequest{
		Name:        "Guides",
		Description: "Step by step guides",
		Color:       "#336699",
	})
	require.NoError(t, err)

	status, body := s.doJSON(t, http.MethodGet, "/api/categories", nil)
	require.Equal(t, http.StatusOK, status)
	categories, ok := body["categories"].([]any)
	require.True(t, ok)
	require.Len(t, categories, 1)
	first, ok := categories[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Guides", first["name"])
}

func TestRouter_AdminRequiresSession(t *testing.T) {
	s := newTestStack(t)

	status, body := s.doJSON(t, http.MethodGet, "/api/admin/analytics", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "authentication_required", body["error"])
}

func TestRouter_AdminDeniesDefaultRole(t *testing.T) {
	s := newTestStack(t)
	cookie := s.signIn(t, "plain-user")

	// Login provisions the default user role, which is not enough.
	status, body := s.doJSON(t, http.MethodGet, "/api/admin/analytics", nil, cookie)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "insufficient_permissions", body["error"])
}

func TestRouter_AdminAllowsAdminRole(t *testing.T) {
	s := newTestStack(t)
	cookie := s.signIn(t, "site-admin")
	_, err := s.roles.Set(t.Context(), "site-admin", domainauth.RoleAdmin)
	require.NoError(t, err)

	status, body := s.doJSON(t, http.MethodGet, "/api/admin/analytics", nil, cookie)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(3), body["published_articles"])
}

func TestRouter_RecheckPicksUpPromotion(t *testing.T) {
	s := newTestStack(t)
	cookie := s.signIn(t, "promoted-user")

	// Denied with the provisioned default role; the denial is cached per session.
	status, _ := s.doJSON(t, http.MethodGet, "/api/admin/analytics", nil, cookie)
	require.Equal(t, http.StatusForbidden, status)

	_, err := s.roles.Set(t.Context(), "promoted-user", domainauth.RoleAdmin)
	require.NoError(t, err)

	// Still denied until a recheck re-runs the role lookup.
	status, _ = s.doJSON(t, http.MethodGet, "/api/admin/analytics", nil, cookie)
	require.Equal(t, http.StatusForbidden, status)

	status, body := s.doJSON(t, http.MethodPost, "/auth/recheck", nil, cookie)
	require.Equal(t, http.StatusOK, status)
	authorization, ok := body["authorization"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "content", authorization["outcome"])
	assert.Equal(t, "admin", authorization["role"])

	status, _ = s.doJSON(t, http.MethodGet, "/api/admin/analytics", nil, cookie)
	assert.Equal(t, http.StatusOK, status)
}

func TestRouter_AdminArticleCRUD(t *testing.T) {
	s := newTestStack(t)
	cookie := s.signIn(t, "editor-admin")
	_, err := s.roles.Set(t.Context(), "editor-admin", domainauth.RoleAdmin)
	require.NoError(t, err)

	status, created := s.doJSON(t, http.MethodPost, "/api/admin/articles", map[string]any{
		"title":    "Operational Runbook",
		"excerpt":  "How to run the thing",
		"content":  "<p>Step one.</p>",
		"category": "Guides",
	}, cookie)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "draft", created["status"])
	articleID, ok := created["id"].(string)
	require.True(t, ok)

	// The draft is visible on the admin list but not on the public one.
	status, body := s.doJSON(t, http.MethodGet, "/api/admin/articles", nil, cookie)
	require.Equal(t, http.StatusOK, status)
	articles, ok := body["articles"].([]any)
	require.True(t, ok)
	assert.Len(t, articles, 1)

	status, body = s.doJSON(t, http.MethodGet, "/api/articles", nil)
	require.Equal(t, http.StatusOK, status)
	articles, ok = body["articles"].([]any)
	require.True(t, ok)
	assert.Empty(t, articles)

	status, updated := s.doJSON(t, http.MethodPut, "/api/admin/articles/"+articleID,
		map[string]any{"status": "published"}, cookie)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "published", updated["status"])

	status, body = s.doJSON(t, http.MethodDelete, "/api/admin/articles/"+articleID, nil, cookie)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["deleted"])

	status, body = s.doJSON(t, http.MethodDelete, "/api/admin/articles/"+articleID, nil, cookie)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "article_not_found", body["error"])
}

func TestRouter_SetRole(t *testing.T) {
	s := newTestStack(t)
	adminCookie := s.signIn(t, "root-admin")
	_, err := s.roles.Set(t.Context(), "root-admin", domainauth.RoleAdmin)
	require.NoError(t, err)

	s.signIn(t, "other-user")

	status, body := s.doJSON(t, http.MethodPut, "/api/admin/users/other-user/role",
		map[string]string{"role": "admin"}, adminCookie)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "admin", body["role"])

	status, body = s.doJSON(t, http.MethodPut, "/api/admin/users/other-user/role",
		map[string]string{"role": "superuser"}, adminCookie)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "validation_failed", body["error"])

	// An admin cannot remove their own admin role.
	status, body = s.doJSON(t, http.MethodPut, "/api/admin/users/root-admin/role",
		map[string]string{"role": "user"}, adminCookie)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "self_demotion", body["error"])
}

func TestRouter_AdminSubscribersAndUsers(t *testing.T) {
	s := newTestStack(t)
	cookie := s.signIn(t, "list-admin")
	_, err := s.roles.Set(t.Context(), "list-admin", domainauth.RoleAdmin)
	require.NoError(t, err)

	_, err = s.subscribers.Subscribe(t.Context(), "sub@example.com")
	require.NoError(t, err)

	status, body := s.doJSON(t, http.MethodGet, "/api/admin/subscribers", nil, cookie)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(1), body["total"])

	status, body = s.doJSON(t, http.MethodGet, "/api/admin/users", nil, cookie)
	require.Equal(t, http.StatusOK, status)
	users, ok := body["users"].([]any)
	require.True(t, ok)
	assert.Len(t, users, 1)
}
