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
	"golang.org/x/net/html"

	"github.com/techinsights/kbsite/internal/data/database"
	"github.com/techinsights/kbsite/internal/domain/model"
)

const (
	sortDirAsc  = "ASC"
	sortDirDesc = "DESC"

	defaultListLimit = 50
)

// ArticleRepo provides database operations for articles.
type ArticleRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewArticleRepo creates a new ArticleRepo with real time provider.
func NewArticleRepo(db *sql.DB) *ArticleRepo {
	return &ArticleRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewArticleRepoWithTimeProvider creates a new ArticleRepo with a custom time provider (useful for tests).
func NewArticleRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *ArticleRepo {
	return &ArticleRepo{DB: db, timeProvider: tp}
}

// Create inserts a new article.
func (r *ArticleRepo) Create(
	ctx context.Context,
	req *model.CreateArticleRequest,
) (*model.Article, error) {
	if req == nil {
		return nil, errors.New("create article request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	featured := false
	if req.Featured != nil {
		featured = *req.Featured
	}
	readTime := strings.TrimSpace(req.ReadTime)
	if readTime == "" {
		readTime = estimateReadTime(req.Content)
	}

	now := r.timeProvider.Now().UTC()
	var out model.Article
	if err := queryOne(ctx, r.DB, &out, `
		INSERT INTO articles (
			title, excerpt, content, category, status, read_time, featured, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $8
		) RETURNING `+articleColumnList,
		strings.TrimSpace(req.Title),
		req.Excerpt,
		req.Content,
		strings.TrimSpace(req.Category),
		req.Status,
		readTime,
		featured,
		now,
	); err != nil {
		return nil, r.mapWriteErr(err, false)
	}
	return &out, nil
}

// GetByID retrieves an article by ID.
func (r *ArticleRepo) GetByID(ctx context.Context, id string) (*model.Article, error) {
	var out model.Article
	if err := queryOne(ctx, r.DB, &out, articleGetByIDQuery, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrArticleNotFound
		}
		return nil, fmt.Errorf("failed to get article by ID: %w", err)
	}
	return &out, nil
}

// List retrieves articles with optional filters, sorting, and pagination.
func (r *ArticleRepo) List(
	ctx context.Context,
	opts model.ArticlesListOptions,
) ([]*model.Article, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	offset := max(opts.Offset, 0)

	query, args := database.BuildListQuery(r.buildArticleQueryOptions(opts, limit, offset))

	rowsOut, err := queryMany[model.Article](ctx, r.DB, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}
	res := make([]*model.Article, len(rowsOut))
	for i := range rowsOut {
		res[i] = &rowsOut[i]
	}
	return res, nil
}

// Update updates fields of an article and bumps updated_at.
func (r *ArticleRepo) Update(
	ctx context.Context,
	id string,
	req model.UpdateArticleRequest,
) (*model.Article, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	setClause, args := r.buildUpdateClause(req)
	args = append(args, id)
	query := "UPDATE articles SET " + setClause + " WHERE id = $" + strconv.Itoa(len(args)) +
		" RETURNING " + articleColumnList

	var out model.Article
	if err := queryOne(ctx, r.DB, &out, query, args...); err != nil {
		return nil, r.mapWriteErr(err, true)
	}
	return &out, nil
}

// Delete deletes an article by ID.
func (r *ArticleRepo) Delete(ctx context.Context, id string) (bool, error) {
	rows, err := execAffected(ctx, r.DB, `DELETE FROM articles WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete article: %w", err)
	}
	return rows > 0, nil
}

// buildUpdateClause builds the SQL SET clause and args for updating an article.
func (r *ArticleRepo) buildUpdateClause(req model.UpdateArticleRequest) (string, []any) {
	setParts := make([]string, 0, 8)
	args := make([]any, 0, 8)
	nextIdx := func() int { return len(args) + 1 }

	if req.Title != nil {
		setParts = append(setParts, fmt.Sprintf("title = $%d", nextIdx()))
		args = append(args, strings.TrimSpace(*req.Title))
	}
	if req.Excerpt != nil {
		setParts = append(setParts, fmt.Sprintf("excerpt = $%d", nextIdx()))
		args = append(args, *req.Excerpt)
	}
	if req.Content != nil {
		setParts = append(setParts, fmt.Sprintf("content = $%d", nextIdx()))
		args = append(args, *req.Content)
	}
	if req.Category != nil {
		setParts = append(setParts, fmt.Sprintf("category = $%d", nextIdx()))
		args = append(args, strings.TrimSpace(*req.Category))
	}
	if req.Status != nil {
		setParts = append(setParts, fmt.Sprintf("status = $%d", nextIdx()))
		args = append(args, *req.Status)
	}
	if req.ReadTime != nil {
		setParts = append(setParts, fmt.Sprintf("read_time = $%d", nextIdx()))
		args = append(args, strings.TrimSpace(*req.ReadTime))
	}
	if req.Featured != nil {
		setParts = append(setParts, fmt.Sprintf("featured = $%d", nextIdx()))
		args = append(args, *req.Featured)
	}

	setParts = append(setParts, fmt.Sprintf("updated_at = $%d", nextIdx()))
	args = append(args, r.timeProvider.Now().UTC())

	return strings.Join(setParts, ", "), args
}

// --- helpers ---

const articleColumnList = "id, title, excerpt, content, category, status, read_time, featured, created_at, updated_at"

const articleGetByIDQuery = `
	SELECT ` + articleColumnList + `
	FROM articles
	WHERE id = $1`

func articleColumns() []string {
	return []string{
		"id",
		"title",
		"excerpt",
		"content",
		"category",
		"status",
		"read_time",
		"featured",
		"created_at",
		"updated_at",
	}
}

// buildArticleQueryOptions builds query options for article listing with filters and sorting.
func (r *ArticleRepo) buildArticleQueryOptions(
	opts model.ArticlesListOptions,
	limit, offset int,
) *database.ListQueryOptions {
	queryOpts := []database.ListQueryOption{
		database.WithColumns(articleColumns()...),
		database.WithLimit(limit),
		database.WithOffset(offset),
	}

	if opts.Q != nil && strings.TrimSpace(*opts.Q) != "" {
		needle := "%" + strings.TrimSpace(*opts.Q) + "%"
		queryOpts = append(queryOpts, database.WithCondition(
			database.WhereRawCond("(title ILIKE $1 OR excerpt ILIKE $1)", needle),
		))
	}
	if opts.Category != nil && strings.TrimSpace(*opts.Category) != "" {
		queryOpts = append(queryOpts, database.WithCondition(
			database.WhereCond("category", database.Equal, strings.TrimSpace(*opts.Category)),
		))
	}
	if opts.Status != nil {
		queryOpts = append(queryOpts, database.WithCondition(
			database.WhereCond("status", database.Equal, *opts.Status),
		))
	}
	if opts.Featured != nil {
		queryOpts = append(queryOpts, database.WithCondition(
			database.WhereCond("featured", database.Equal, *opts.Featured),
		))
	}

	sortCol, sortDir := validateSortOptions(opts.Sort, opts.Dir, map[string]string{
		"title":      "title",
		"created_at": "created_at",
	})
	queryOpts = append(queryOpts, database.WithOrderBy(sortCol, sortDir))

	return database.NewListQueryOptions("articles", queryOpts...)
}

// validateSortOptions validates and returns safe sort column and direction.
func validateSortOptions(sort, dir string, allowedSorts map[string]string) (string, string) {
	sortCol := "created_at"
	sortDir := sortDirDesc

	if sort != "" {
		if validSort, ok := allowedSorts[strings.ToLower(strings.TrimSpace(sort))]; ok {
			sortCol = validSort
		}
	}
	if dir != "" {
		allowedDirs := map[string]string{
			"asc":  sortDirAsc,
			"desc": sortDirDesc,
		}
		if validDir, ok := allowedDirs[strings.ToLower(strings.TrimSpace(dir))]; ok {
			sortDir = validDir
		}
	}
	return sortCol, sortDir
}

// estimateReadTime derives a display read time from content length at roughly
// 200 words per minute. Article bodies are stored as HTML; only rendered text
// counts toward the estimate.
func estimateReadTime(content string) string {
	words := contentWordCount(content)
	minutes := (words + 199) / 200
	if minutes < 1 {
		minutes = 1
	}
	return fmt.Sprintf("%d min read", minutes)
}

// contentWordCount counts words in the text nodes of an HTML fragment. Plain
// text passes through unchanged since it tokenizes as a single text run.
func contentWordCount(content string) int {
	tz := html.NewTokenizer(strings.NewReader(content))
	words := 0
	for {
		switch tz.Next() {
		case html.ErrorToken:
			return words
		case html.TextToken:
			words += len(strings.Fields(string(tz.Text())))
		default:
		}
	}
}

func (r *ArticleRepo) mapWriteErr(err error, includeNotFound bool) error {
	if err == nil {
		return nil
	}
	if includeNotFound && errors.Is(err, pgx.ErrNoRows) {
		return ErrArticleNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		return ErrCategoryNotFound
	}
	return err
}
