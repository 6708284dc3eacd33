// Package database builds parameterized list queries from repo filter
// options. Identifiers are sanitized with pgx.Identifier so repos can pass
// column names straight from request options without risking injection.
package database

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
)

// ConditionType is the SQL comparison operator of a Condition.
type ConditionType string

const (
	Equal    ConditionType = "="
	NotEqual ConditionType = "!="
	ILike    ConditionType = "ILIKE"

	inOp  ConditionType = "IN"
	rawOp ConditionType = "RAW"

	// unset marks Limit/Offset as not requested so zero stays usable.
	unset = -1
)

// Condition is a single WHERE predicate. Build them with WhereCond, WhereIn,
// or WhereRawCond; the zero value produces no SQL.
type Condition struct {
	field  string
	op     ConditionType
	value  any
	values []any
	rawSQL string
}

// WhereCond compares a column against a single value.
func WhereCond(field string, op ConditionType, value any) Condition {
	return Condition{field: field, op: op, value: value}
}

// WhereIn matches a column against any of the given values. A call with no
// values yields an empty condition, which BuildListQuery skips.
func WhereIn(field string, values ...any) Condition {
	return Condition{field: field, op: inOp, values: values}
}

// WhereRawCond embeds a hand-written predicate. Placeholders are written as
// $1..$n relative to params and renumbered into the final query; a repeated
// placeholder binds the same argument once.
func WhereRawCond(rawSQL string, params ...any) Condition {
	return Condition{op: rawOp, rawSQL: rawSQL, values: params}
}

// ListQueryOptions describes a SELECT over a single table.
type ListQueryOptions struct {
	Table      string
	Columns    []string
	CountOnly  bool
	Conditions []Condition
	OrderBy    string
	OrderDir   string
	Limit      int
	Offset     int
}

// ListQueryOption mutates ListQueryOptions during construction.
type ListQueryOption func(*ListQueryOptions)

// NewListQueryOptions creates options for the given table and applies opts.
func NewListQueryOptions(table string, opts ...ListQueryOption) *ListQueryOptions {
	options := &ListQueryOptions{
		Table:  table,
		Limit:  unset,
		Offset: unset,
	}
	for _, opt := range opts {
		opt(options)
	}
	return options
}

// WithColumns sets the columns to select. Without it the query selects *.
func WithColumns(cols ...string) ListQueryOption {
	return func(o *ListQueryOptions) {
		o.Columns = cols
	}
}

// WithCondition appends one predicate; predicates are ANDed together.
func WithCondition(cond Condition) ListQueryOption {
	return func(o *ListQueryOptions) {
		o.Conditions = append(o.Conditions, cond)
	}
}

// WithOrderBy sets the ordering column and direction ("ASC" or "DESC").
func WithOrderBy(column, direction string) ListQueryOption {
	return func(o *ListQueryOptions) {
		o.OrderBy = column
		o.OrderDir = direction
	}
}

// WithLimit sets the limit. Zero is a valid limit; negatives are ignored.
func WithLimit(limit int) ListQueryOption {
	return func(o *ListQueryOptions) {
		if limit >= 0 {
			o.Limit = limit
		}
	}
}

// WithOffset sets the offset. Zero is valid; negatives are ignored.
func WithOffset(offset int) ListQueryOption {
	return func(o *ListQueryOptions) {
		if offset >= 0 {
			o.Offset = offset
		}
	}
}

// WithCountOnly makes the query SELECT COUNT(*), dropping columns, ordering,
// and pagination.
func WithCountOnly() ListQueryOption {
	return func(o *ListQueryOptions) {
		o.CountOnly = true
	}
}

// BuildListQuery renders the options into a SQL string and its arguments.
func BuildListQuery(options *ListQueryOptions) (string, []any) {
	if options == nil {
		return "", nil
	}

	var query strings.Builder
	query.WriteString(selectClause(options))
	query.WriteString(" FROM ")
	query.WriteString(sanitizeIdent(options.Table))

	whereSQL, args := whereClause(options.Conditions)
	if whereSQL != "" {
		query.WriteString(" WHERE ")
		query.WriteString(whereSQL)
	}
	if options.CountOnly {
		return query.String(), args
	}

	if options.OrderBy != "" {
		query.WriteString(" ORDER BY ")
		query.WriteString(sanitizeIdent(options.OrderBy))
		if dir := strings.ToUpper(options.OrderDir); dir == "ASC" || dir == "DESC" {
			query.WriteString(" ")
			query.WriteString(dir)
		}
	}
	if options.Limit != unset {
		query.WriteString(fmt.Sprintf(" LIMIT $%d", len(args)+1))
		args = append(args, options.Limit)
	}
	if options.Offset != unset {
		query.WriteString(fmt.Sprintf(" OFFSET $%d", len(args)+1))
		args = append(args, options.Offset)
	}
	return query.String(), args
}

func selectClause(options *ListQueryOptions) string {
	if options.CountOnly {
		return "SELECT COUNT(*)"
	}
	if len(options.Columns) == 0 {
		return "SELECT *"
	}
	cols := make([]string, len(options.Columns))
	for i, col := range options.Columns {
		cols[i] = sanitizeIdent(col)
	}
	return "SELECT " + strings.Join(cols, ", ")
}

func whereClause(conditions []Condition) (string, []any) {
	parts := make([]string, 0, len(conditions))
	args := []any{}
	for _, cond := range conditions {
		sql, condArgs := renderCondition(cond, len(args)+1)
		if sql == "" {
			continue
		}
		parts = append(parts, sql)
		args = append(args, condArgs...)
	}
	return strings.Join(parts, " AND "), args
}

func renderCondition(cond Condition, nextParam int) (string, []any) {
	switch cond.op {
	case rawOp:
		return renumberRaw(cond.rawSQL, cond.values, nextParam)
	case inOp:
		if cond.field == "" || len(cond.values) == 0 {
			return "", nil
		}
		placeholders := make([]string, len(cond.values))
		for i := range cond.values {
			placeholders[i] = fmt.Sprintf("$%d", nextParam+i)
		}
		sql := fmt.Sprintf("%s IN (%s)", sanitizeIdent(cond.field), strings.Join(placeholders, ", "))
		return sql, cond.values
	case Equal, NotEqual, ILike:
		if cond.field == "" {
			return "", nil
		}
		return fmt.Sprintf("%s %s $%d", sanitizeIdent(cond.field), cond.op, nextParam), []any{cond.value}
	}
	return "", nil
}

var placeholderRe = regexp.MustCompile(`\$(\d+)`)

// renumberRaw shifts $1..$n placeholders in a raw predicate so they continue
// the outer query's numbering. Each distinct placeholder binds its parameter
// exactly once, so repeats like "(title ILIKE $1 OR excerpt ILIKE $1)" work.
func renumberRaw(rawSQL string, params []any, nextParam int) (string, []any) {
	if rawSQL == "" {
		return "", nil
	}
	args := []any{}
	renumbered := map[int]int{}
	sql := placeholderRe.ReplaceAllStringFunc(rawSQL, func(m string) string {
		n, err := strconv.Atoi(m[1:])
		if err != nil || n < 1 || n > len(params) {
			return m
		}
		if _, ok := renumbered[n]; !ok {
			renumbered[n] = nextParam + len(args)
			args = append(args, params[n-1])
		}
		return fmt.Sprintf("$%d", renumbered[n])
	})
	return sql, args
}

// sanitizeIdent quotes an identifier, splitting qualified names like
// "articles.category" into separately quoted parts.
func sanitizeIdent(ident string) string {
	return pgx.Identifier(strings.Split(ident, ".")).Sanitize()
}
