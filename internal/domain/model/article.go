//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	maxArticleTitleLen   = 255
	maxArticleExcerptLen = 500
)

// ArticleStatus controls whether an article is publicly visible.
type ArticleStatus string

const (
	ArticleStatusDraft     ArticleStatus = "draft"
	ArticleStatusPublished ArticleStatus = "published"
)

// Valid reports whether the article status is supported.
func (s ArticleStatus) Valid() bool {
	switch s {
	case ArticleStatusDraft, ArticleStatusPublished:
		return true
	default:
		return false
	}
}

// ParseArticleStatus normalizes a status string and reports whether it is supported.
func ParseArticleStatus(value string) (ArticleStatus, bool) {
	status := ArticleStatus(strings.ToLower(strings.TrimSpace(value)))
	if status.Valid() {
		return status, true
	}
	return "", false
}

// Article is a knowledge-base article.
type Article struct {
	ID        string        `json:"id"         db:"id"`
	Title     string        `json:"title"      db:"title"`
	Excerpt   string        `json:"excerpt"    db:"excerpt"`
	Content   string        `json:"content"    db:"content"`
	Category  string        `json:"category"   db:"category"`
	Status    ArticleStatus `json:"status"     db:"status"`
	ReadTime  string        `json:"read_time"  db:"read_time"`
	Featured  bool          `json:"featured"   db:"featured"`
	CreatedAt time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt time.Time     `json:"updated_at" db:"updated_at"`
}

// ArticlesListOptions controls paging and filtering for listing articles.
// Q matches title and excerpt via ILIKE substring; Category and Status match
// exactly; Featured filters on the flag when set.
type ArticlesListOptions struct {
	Limit    int
	Offset   int
	Q        *string
	Category *string
	Status   *ArticleStatus
	Featured *bool
	Sort     string // allowed: "created_at", "title"
	Dir      string // allowed: "asc", "desc"
}

// CreateArticleRequest represents parameters to create an Article.
type CreateArticleRequest struct {
	Title    string        `json:"title"`
	Excerpt  string        `json:"excerpt"`
	Content  string        `json:"content"`
	Category string        `json:"category"`
	Status   ArticleStatus `json:"status,omitempty"`
	ReadTime string        `json:"read_time,omitempty"`
	Featured *bool         `json:"featured,omitempty"`
}

// UpdateArticleRequest represents parameters to update an Article.
type UpdateArticleRequest struct {
	Title    *string        `json:"title,omitempty"`
	Excerpt  *string        `json:"excerpt,omitempty"`
	Content  *string        `json:"content,omitempty"`
	Category *string        `json:"category,omitempty"`
	Status   *ArticleStatus `json:"status,omitempty"`
	ReadTime *string        `json:"read_time,omitempty"`
	Featured *bool          `json:"featured,omitempty"`
}

// Validate validates CreateArticleRequest.
func (r *CreateArticleRequest) Validate() error {
	title := strings.TrimSpace(r.Title)
	if title == "" {
		return errors.New("title is required and cannot be empty")
	}
	if utf8.RuneCountInString(title) > maxArticleTitleLen {
		return errors.New("title cannot exceed 255 characters")
	}
	if utf8.RuneCountInString(r.Excerpt) > maxArticleExcerptLen {
		return errors.New("excerpt cannot exceed 500 characters")
	}
	if strings.TrimSpace(r.Content) == "" {
		return errors.New("content is required")
	}
	if strings.TrimSpace(r.Category) == "" {
		return errors.New("category is required")
	}
	if r.Status == "" {
		r.Status = ArticleStatusDraft
	}
	if !r.Status.Valid() {
		return errors.New("invalid status")
	}
	return nil
}

// HasUpdates reports whether any field is set in UpdateArticleRequest.
func (r *UpdateArticleRequest) HasUpdates() bool {
	return r.Title != nil || r.Excerpt != nil || r.Content != nil || r.Category != nil ||
		r.Status != nil || r.ReadTime != nil || r.Featured != nil
}

// Validate validates UpdateArticleRequest, ensuring at least one field is set.
func (r *UpdateArticleRequest) Validate() error {
	if !r.HasUpdates() {
		return errors.New("at least one field must be updated")
	}
	if r.Title != nil {
		title := strings.TrimSpace(*r.Title)
		if title == "" {
			return errors.New("title cannot be empty")
		}
		if utf8.RuneCountInString(title) > maxArticleTitleLen {
			return errors.New("title cannot exceed 255 characters")
		}
	}
	if r.Excerpt != nil && utf8.RuneCountInString(*r.Excerpt) > maxArticleExcerptLen {
		return errors.New("excerpt cannot exceed 500 characters")
	}
	if r.Content != nil && strings.TrimSpace(*r.Content) == "" {
		return errors.New("content cannot be empty")
	}
	if r.Category != nil && strings.TrimSpace(*r.Category) == "" {
		return errors.New("category cannot be empty")
	}
	if r.Status != nil && !r.Status.Valid() {
		return errors.New("invalid status")
	}
	return nil
}
