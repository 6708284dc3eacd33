package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildListQuery_Defaults(t *testing.T) {
	query, args := BuildListQuery(NewListQueryOptions("articles"))

	assert.Equal(t, `SELECT * FROM "articles"`, query)
	assert.Empty(t, args)
}

func TestBuildListQuery_ColumnsAndConditions(t *testing.T) {
	opts := NewListQueryOptions("articles",
		WithColumns("id", "title", "status"),
		WithCondition(WhereCond("status", Equal, "published")),
		WithCondition(WhereCond("category", NotEqual, "internal")),
		WithOrderBy("created_at", "desc"),
		WithLimit(10),
		WithOffset(20),
	)

	query, args := BuildListQuery(opts)

	assert.Equal(t,
		`SELECT "id", "title", "status" FROM "articles"`+
			` WHERE "status" = $1 AND "category" != $2`+
			` ORDER BY "created_at" DESC LIMIT $3 OFFSET $4`,
		query)
	assert.Equal(t, []any{"published", "internal", 10, 20}, args)
}

func TestBuildListQuery_RawConditionRenumbering(t *testing.T) {
	opts := NewListQueryOptions("articles",
		WithCondition(WhereCond("status", Equal, "published")),
		WithCondition(WhereRawCond("(title ILIKE $1 OR excerpt ILIKE $1)", "%redis%")),
	)

	query, args := BuildListQuery(opts)

	assert.Equal(t,
		`SELECT * FROM "articles" WHERE "status" = $1 AND (title ILIKE $2 OR excerpt ILIKE $2)`,
		query)
	assert.Equal(t, []any{"published", "%redis%"}, args)
}

func TestBuildListQuery_RawConditionMultipleParams(t *testing.T) {
	opts := NewListQueryOptions("article_views",
		WithCondition(WhereRawCond("viewed_at BETWEEN $1 AND $2", "2026-01-01", "2026-02-01")),
	)

	query, args := BuildListQuery(opts)

	assert.Equal(t, `SELECT * FROM "article_views" WHERE viewed_at BETWEEN $1 AND $2`, query)
	assert.Equal(t, []any{"2026-01-01", "2026-02-01"}, args)
}

func TestBuildListQuery_In(t *testing.T) {
	opts := NewListQueryOptions("articles",
		WithCondition(WhereIn("category", "guides", "troubleshooting")),
		WithLimit(5),
	)

	query, args := BuildListQuery(opts)

	assert.Equal(t, `SELECT * FROM "articles" WHERE "category" IN ($1, $2) LIMIT $3`, query)
	assert.Equal(t, []any{"guides", "troubleshooting", 5}, args)
}

func TestBuildListQuery_EmptyInSkipped(t *testing.T) {
	opts := NewListQueryOptions("articles",
		WithCondition(WhereIn("category")),
		WithCondition(WhereCond("status", Equal, "draft")),
	)

	query, args := BuildListQuery(opts)

	assert.Equal(t, `SELECT * FROM "articles" WHERE "status" = $1`, query)
	assert.Equal(t, []any{"draft"}, args)
}

func TestBuildListQuery_CountOnly(t *testing.T) {
	opts := NewListQueryOptions("newsletter_subscribers",
		WithCountOnly(),
		WithCondition(WhereCond("email", ILike, "%@example.com")),
		WithOrderBy("subscribed_at", "DESC"),
		WithLimit(10),
	)

	query, args := BuildListQuery(opts)

	assert.Equal(t,
		`SELECT COUNT(*) FROM "newsletter_subscribers" WHERE "email" ILIKE $1`,
		query)
	assert.Equal(t, []any{"%@example.com"}, args)
}

func TestBuildListQuery_SanitizesIdentifiers(t *testing.T) {
	opts := NewListQueryOptions("articles",
		WithColumns(`id"; DROP TABLE articles; --`),
		WithOrderBy("created_at; DELETE FROM articles", "DESC"),
	)

	query, _ := BuildListQuery(opts)

	assert.Contains(t, query, `"id""; DROP TABLE articles; --"`)
	assert.Contains(t, query, `"created_at; DELETE FROM articles"`)
}

func TestBuildListQuery_QualifiedIdentifiers(t *testing.T) {
	opts := NewListQueryOptions("articles",
		WithColumns("articles.id", "articles.title"),
		WithCondition(WhereCond("articles.status", Equal, "published")),
	)

	query, args := BuildListQuery(opts)

	assert.Equal(t,
		`SELECT "articles"."id", "articles"."title" FROM "articles" WHERE "articles"."status" = $1`,
		query)
	assert.Equal(t, []any{"published"}, args)
}

func TestBuildListQuery_InvalidOrderDirectionDropped(t *testing.T) {
	opts := NewListQueryOptions("articles",
		WithOrderBy("created_at", "SIDEWAYS; DROP TABLE articles"),
	)

	query, _ := BuildListQuery(opts)

	assert.Equal(t, `SELECT * FROM "articles" ORDER BY "created_at"`, query)
}

func TestBuildListQuery_ZeroLimitAndOffset(t *testing.T) {
	opts := NewListQueryOptions("articles",
		WithLimit(0),
		WithOffset(0),
	)

	query, args := BuildListQuery(opts)

	assert.Equal(t, `SELECT * FROM "articles" LIMIT $1 OFFSET $2`, query)
	assert.Equal(t, []any{0, 0}, args)
}

func TestBuildListQuery_NilOptions(t *testing.T) {
	query, args := BuildListQuery(nil)

	assert.Empty(t, query)
	assert.Nil(t, args)
}
