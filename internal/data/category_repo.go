package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/techinsights/kbsite/internal/domain/model"
)

// CategoryRepo provides database operations for categories. The article_count
// column is derived from published articles on every read so it can never
// drift from the articles table.
type CategoryRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewCategoryRepo creates a new CategoryRepo with real time provider.
func NewCategoryRepo(db *sql.DB) *CategoryRepo {
	return &CategoryRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewCategoryRepoWithTimeProvider creates a new CategoryRepo with a custom time provider.
func NewCategoryRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *CategoryRepo {
	return &CategoryRepo{DB: db, timeProvider: tp}
}

const categoryArticleCountExpr = `(
		SELECT COUNT(*) FROM articles a
		WHERE a.category = c.name AND a.status = 'published'
	)::int AS article_count`

const categorySelect = `
	SELECT c.id, c.name, c.description, c.icon, c.color, ` + categoryArticleCountExpr + `, c.created_at
	FROM categories c`

// Create inserts a new category.
func (r *CategoryRepo) Create(
	ctx context.Context,
	req *model.CreateCategoryRequest,
) (*model.Category, error) {
	if req == nil {
		return nil, errors.New("create category request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	id, err := queryScalar[string](ctx, r.DB, `
		INSERT INTO categories (name, description, icon, color, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		strings.TrimSpace(req.Name),
		req.Description,
		req.Icon,
		req.Color,
		r.timeProvider.Now().UTC(),
	)
	if err != nil {
		return nil, r.mapWriteErr(err, false)
	}
	return r.GetByID(ctx, id)
}

// GetByID retrieves a category by ID, with its derived article count.
func (r *CategoryRepo) GetByID(ctx context.Context, id string) (*model.Category, error) {
	var out model.Category
	if err := queryOne(ctx, r.DB, &out, categorySelect+` WHERE c.id = $1`, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category by ID: %w", err)
	}
	return &out, nil
}

// List retrieves all categories ordered by name.
func (r *CategoryRepo) List(ctx context.Context) ([]*model.Category, error) {
	rowsOut, err := queryMany[model.Category](ctx, r.DB, categorySelect+` ORDER BY c.name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	res := make([]*model.Category, len(rowsOut))
	for i := range rowsOut {
		res[i] = &rowsOut[i]
	}
	return res, nil
}

// Update updates fields of a category.
func (r *CategoryRepo) Update(
	ctx context.Context,
	id string,
	req model.UpdateCategoryRequest,
) (*model.Category, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	setParts := make([]string, 0, 4)
	args := make([]any, 0, 5)
	nextIdx := func() int { return len(args) + 1 }

	if req.Name != nil {
		setParts = append(setParts, fmt.Sprintf("name = $%d", nextIdx()))
		args = append(args, strings.TrimSpace(*req.Name))
	}
	if req.Description != nil {
		setParts = append(setParts, fmt.Sprintf("description = $%d", nextIdx()))
		args = append(args, *req.Description)
	}
	if req.Icon != nil {
		setParts = append(setParts, fmt.Sprintf("icon = $%d", nextIdx()))
		args = append(args, *req.Icon)
	}
	if req.Color != nil {
		setParts = append(setParts, fmt.Sprintf("color = $%d", nextIdx()))
		args = append(args, *req.Color)
	}

	args = append(args, id)
	query := "UPDATE categories SET " + strings.Join(setParts, ", ") +
		" WHERE id = $" + strconv.Itoa(len(args)) + " RETURNING id"

	updatedID, err := queryScalar[string](ctx, r.DB, query, args...)
	if err != nil {
		return nil, r.mapWriteErr(err, true)
	}
	return r.GetByID(ctx, updatedID)
}

// Delete deletes a category by ID. Articles keep their category name string;
// orphaned names simply stop appearing in navigation.
func (r *CategoryRepo) Delete(ctx context.Context, id string) (bool, error) {
	rows, err := execAffected(ctx, r.DB, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete category: %w", err)
	}
	return rows > 0, nil
}

func (r *CategoryRepo) mapWriteErr(err error, includeNotFound bool) error {
	if err == nil {
		return nil
	}
	if includeNotFound && errors.Is(err, pgx.ErrNoRows) {
		return ErrCategoryNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrCategoryExists
	}
	return err
}
