package data

import (
	"context"
	"database/sql"

	"github.com/jackc/pgx/v5"

	"github.com/techinsights/kbsite/internal/data/pgxutil"
)

// queryOne runs a query expected to yield exactly one row and scans it into
// dst by column name. Returns pgx.ErrNoRows (wrapped) when no row matches.
func queryOne[T any](ctx context.Context, db *sql.DB, dst *T, query string, args ...any) error {
	return pgxutil.WithPgxConn(ctx, db, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[T])
		if err != nil {
			return err
		}
		*dst = out
		return nil
	})
}

// queryMany runs a query and collects all rows into structs by column name.
func queryMany[T any](ctx context.Context, db *sql.DB, query string, args ...any) ([]T, error) {
	var out []T
	err := pgxutil.WithPgxConn(ctx, db, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectRows(rows, pgx.RowToStructByName[T])
		return err
	})
	return out, err
}

// queryScalar runs a query returning a single scalar value.
func queryScalar[T any](ctx context.Context, db *sql.DB, query string, args ...any) (T, error) {
	var out T
	err := pgxutil.WithPgxConn(ctx, db, func(conn *pgx.Conn) error {
		return conn.QueryRow(ctx, query, args...).Scan(&out)
	})
	return out, err
}

// execAffected executes a statement and returns the number of affected rows.
func execAffected(ctx context.Context, db *sql.DB, query string, args ...any) (int64, error) {
	var rows int64
	err := pgxutil.WithPgxConn(ctx, db, func(conn *pgx.Conn) error {
		ct, err := conn.Exec(ctx, query, args...)
		if err != nil {
			return err
		}
		rows = ct.RowsAffected()
		return nil
	})
	return rows, err
}
