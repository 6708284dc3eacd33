package service

import (
	"context"

	"github.com/techinsights/kbsite/internal/core"
	"github.com/techinsights/kbsite/internal/domain/model"
)

// CategoryServiceOptions groups dependencies for CategoryService.
type CategoryServiceOptions struct {
	Categories core.CategoryRepository
}

// CategoryService exposes category reads and admin CRUD.
type CategoryService struct {
	categories core.CategoryRepository
}

// NewCategoryService constructs a new CategoryService.
func NewCategoryService(opts CategoryServiceOptions) *CategoryService {
	return &CategoryService{categories: opts.Categories}
}

// List returns all categories with derived article counts.
func (s *CategoryService) List(ctx context.Context) ([]*model.Category, error) {
	return s.categories.List(ctx)
}

// GetByID retrieves a category by ID.
func (s *CategoryService) GetByID(ctx context.Context, id string) (*model.Category, error) {
	return s.categories.GetByID(ctx, id)
}

// Create creates a category.
func (s *CategoryService) Create(
	ctx context.Context,
	req *model.CreateCategoryRequest,
) (*model.Category, error) {
	return s.categories.Create(ctx, req)
}

// Update updates a category.
func (s *CategoryService) Update(
	ctx context.Context,
	id string,
	req model.UpdateCategoryRequest,
) (*model.Category, error) {
	return s.categories.Update(ctx, id, req)
}

// Delete deletes a category.
func (s *CategoryService) Delete(ctx context.Context, id string) (bool, error) {
	return s.categories.Delete(ctx, id)
}
