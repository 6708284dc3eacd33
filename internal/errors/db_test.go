package errors

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestMapDBError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode ErrorCode
	}{
		{
			name:     "no rows maps to not found",
			err:      pgx.ErrNoRows,
			wantCode: ErrCodeNotFound,
		},
		{
			name:     "deadline maps to timeout",
			err:      context.DeadlineExceeded,
			wantCode: ErrCodeTimeout,
		},
		{
			name:     "cancellation maps to canceled",
			err:      context.Canceled,
			wantCode: ErrCodeCanceled,
		},
		{
			name: "unique violation maps to conflict",
			err: &pgconn.PgError{
				Code:   pgerrcode.UniqueViolation,
				Detail: `Key (email)=(reader@example.com) already exists.`,
			},
			wantCode: ErrCodeConflict,
		},
		{
			name: "foreign key violation maps to foreign key",
			err: &pgconn.PgError{
				Code:   pgerrcode.ForeignKeyViolation,
				Detail: `Key (article_id)=(abc) is not present in table "articles".`,
			},
			wantCode: ErrCodeForeignKey,
		},
		{
			name: "check violation maps to validation",
			err: &pgconn.PgError{
				Code:       pgerrcode.CheckViolation,
				ColumnName: "status",
			},
			wantCode: ErrCodeValidation,
		},
		{
			name: "unknown pg error maps to internal",
			err: &pgconn.PgError{
				Code: pgerrcode.SerializationFailure,
			},
			wantCode: ErrCodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mapped := MapDBError(tt.err)
			var appErr *AppError
			if !errors.As(mapped, &appErr) {
				t.Fatalf("expected AppError, got %T", mapped)
			}
			if appErr.Code != tt.wantCode {
				t.Errorf("code = %v, want %v", appErr.Code, tt.wantCode)
			}
		})
	}
}

func TestMapDBError_Passthrough(t *testing.T) {
	orig := errors.New("not a database error")
	if got := MapDBError(orig); got != orig {
		t.Errorf("expected original error back, got %v", got)
	}
	if MapDBError(nil) != nil {
		t.Error("expected nil for nil input")
	}
}

func TestMapUniqueViolation_FieldFromDetail(t *testing.T) {
	pgErr := &pgconn.PgError{
		Code:   pgerrcode.UniqueViolation,
		Detail: `Key (name)=(Guides) already exists.`,
	}
	var appErr *AppError
	if !errors.As(MapDBError(pgErr), &appErr) {
		t.Fatal("expected AppError")
	}
	if appErr.Field != "name" {
		t.Errorf("field = %q, want %q", appErr.Field, "name")
	}
}

func TestMapTableToDomain(t *testing.T) {
	if got := mapTableToDomain("newsletter_subscribers"); got != "Newsletter Subscriber" {
		t.Errorf("got %q", got)
	}
	if got := mapTableToDomain("unknown_things"); got != "Unknown Things" {
		t.Errorf("fallback got %q", got)
	}
}
