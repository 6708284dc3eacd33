package model

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

const maxCategoryNameLen = 100

// Category groups articles for navigation. ArticleCount is derived at query
// time from published articles and never stored.
type Category struct {
	ID           string    `json:"id"            db:"id"`
	Name         string    `json:"name"          db:"name"`
	Description  string    `json:"description"   db:"description"`
	Icon         string    `json:"icon"          db:"icon"`
	Color        string    `json:"color"         db:"color"`
	ArticleCount int       `json:"article_count" db:"article_count"`
	CreatedAt    time.Time `json:"created_at"    db:"created_at"`
}

// CreateCategoryRequest represents parameters to create a Category.
type CreateCategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon,omitempty"`
	Color       string `json:"color,omitempty"`
}

// UpdateCategoryRequest represents parameters to update a Category.
type UpdateCategoryRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Icon        *string `json:"icon,omitempty"`
	Color       *string `json:"color,omitempty"`
}

// Validate validates CreateCategoryRequest.
func (r *CreateCategoryRequest) Validate() error {
	name := strings.TrimSpace(r.Name)
	if name == "" {
		return errors.New("name is required and cannot be empty")
	}
	if utf8.RuneCountInString(name) > maxCategoryNameLen {
		return errors.New("name cannot exceed 100 characters")
	}
	if r.Color == "" {
		r.Color = "bg-blue-500"
	}
	return nil
}

// HasUpdates reports whether any field is set in UpdateCategoryRequest.
func (r *UpdateCategoryRequest) HasUpdates() bool {
	return r.Name != nil || r.Description != nil || r.Icon != nil || r.Color != nil
}

// Validate validates UpdateCategoryRequest.
func (r *UpdateCategoryRequest) Validate() error {
	if !r.HasUpdates() {
		return errors.New("at least one field must be updated")
	}
	if r.Name != nil {
		name := strings.TrimSpace(*r.Name)
		if name == "" {
			return errors.New("name cannot be empty")
		}
		if utf8.RuneCountInString(name) > maxCategoryNameLen {
			return errors.New("name cannot exceed 100 characters")
		}
	}
	return nil
}
