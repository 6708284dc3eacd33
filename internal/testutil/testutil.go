// Package testutil provides database and redis fixtures for integration
// tests. Tests skip when a backing service is unreachable unless the
// TEST_REQUIRE_* variables demand it, so unit-only runs stay green without
// docker-compose.
package testutil

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"testing"
	"time"

	// Registers the pgx driver with database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"

	"github.com/techinsights/kbsite/internal/migrate"
)

const (
	pingTimeout  = 2 * time.Second
	setupTimeout = 15 * time.Second
)

// TestTime is the fixed instant fixtures are stamped with.
func TestTime() time.Time {
	return time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
}

// BoolPtr returns a pointer to b, for optional JSON fields in test payloads.
func BoolPtr(b bool) *bool { return &b }

// dbDSN assembles the test database URL from TEST_DB_* variables. The 55432
// default matches the docker-compose test profile; CI overrides TEST_DB_PORT.
func dbDSN() string {
	u := &url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(envOr("TEST_DB_USER", "kbsite"), envOr("TEST_DB_PASSWORD", "kbsite")),
		Host: net.JoinHostPort(
			envOr("TEST_DB_HOST", "localhost"),
			envOr("TEST_DB_PORT", "55432"),
		),
		Path:     "/" + envOr("TEST_DB_NAME", "kbsite"),
		RawQuery: url.Values{"sslmode": []string{envOr("DB_SSL_MODE", "disable")}}.Encode(),
	}
	return u.String()
}

// SkipIfNoTestDB skips the test when the test database cannot be reached.
// With TEST_REQUIRE_DB or TEST_REQUIRE_INFRA set it fails instead, so CI
// cannot silently skip the integration suite.
func SkipIfNoTestDB(t *testing.T) {
	t.Helper()

	db, err := sql.Open("pgx", dbDSN())
	if err != nil {
		unavailable(t, "TEST_REQUIRE_DB", "test database", err)
		return
	}
	defer func() { _ = db.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		unavailable(t, "TEST_REQUIRE_DB", "test database", err)
	}
}

func unavailable(t *testing.T, requireVar, what string, err error) {
	t.Helper()
	if envBool(requireVar) || envBool("TEST_REQUIRE_INFRA") {
		t.Fatalf("%s required but not available: %v", what, err)
	}
	t.Skipf("%s not available: %v", what, err)
}

// WithAutoDB hands fn a migrated database connection. When TEST_DB_EPHEMERAL
// is set each test runs in its own schema, dropped afterwards, so packages
// can run in parallel against one server. Otherwise the shared test database
// is used and its tables are emptied before and after the test.
func WithAutoDB(t *testing.T, fn func(*sql.DB)) {
	t.Helper()
	SkipIfNoTestDB(t)
	if envBool("TEST_DB_EPHEMERAL") {
		fn(ephemeralSchemaDB(t))
		return
	}
	fn(sharedDB(t))
}

func sharedDB(t *testing.T) *sql.DB {
	t.Helper()

	db := openDB(t, dbDSN())
	ctx, cancel := context.WithTimeout(context.Background(), setupTimeout)
	defer cancel()
	if err := migrate.Run(ctx, db); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	truncateAll(t, db)

	t.Cleanup(func() {
		truncateAll(t, db)
		_ = db.Close()
	})
	return db
}

// truncateAll empties every table the repositories write to. Listing the
// referencing tables alongside their targets lets TRUNCATE proceed without
// CASCADE.
func truncateAll(t *testing.T, db *sql.DB) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), setupTimeout)
	defer cancel()
	_, err := db.ExecContext(ctx,
		`TRUNCATE article_likes, article_views, articles, categories,
		         newsletter_subscribers, user_roles, profiles`)
	if err != nil {
		t.Fatalf("truncate test tables: %v", err)
	}
}

// ephemeralSchemaDB creates a throwaway schema, points search_path at it,
// migrates it, and registers a cleanup that drops it again.
func ephemeralSchemaDB(t *testing.T) *sql.DB {
	t.Helper()

	schema := randomSchemaName()
	admin := openDB(t, dbDSN())

	ctx, cancel := context.WithTimeout(context.Background(), setupTimeout)
	defer cancel()
	if _, err := admin.ExecContext(ctx, "CREATE SCHEMA "+schema); err != nil {
		_ = admin.Close()
		t.Fatalf("create schema %s: %v", schema, err)
	}

	u, err := url.Parse(dbDSN())
	if err != nil {
		t.Fatalf("parse test dsn: %v", err)
	}
	q := u.Query()
	q.Set("search_path", schema+",public")
	u.RawQuery = q.Encode()
	db := openDB(t, u.String())

	t.Cleanup(func() {
		_ = db.Close()
		dropCtx, dropCancel := context.WithTimeout(context.Background(), setupTimeout)
		defer dropCancel()
		if _, err := admin.ExecContext(dropCtx, "DROP SCHEMA IF EXISTS "+schema+" CASCADE"); err != nil {
			t.Logf("drop schema %s: %v", schema, err)
		}
		_ = admin.Close()
	})

	if err := migrate.Run(ctx, db); err != nil {
		t.Fatalf("migrate schema %s: %v", schema, err)
	}
	return db
}

func randomSchemaName() string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("t_%d", time.Now().UnixNano())
	}
	return "t_" + hex.EncodeToString(b)
}

func openDB(t *testing.T, dsn string) *sql.DB {
	t.Helper()
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		t.Fatalf("ping test database: %v", err)
	}
	return db
}

// SetupTestRedis returns a client on a reserved redis database, flushed
// before use. The reservation is a lock key in DB 0 so concurrent test
// packages on the same server do not flush each other's data.
func SetupTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	addr, err := redisAddr()
	if err != nil {
		unavailable(t, "TEST_REQUIRE_REDIS", "redis", err)
		return nil
	}

	client := redis.NewClient(&redis.Options{Addr: addr, DB: reserveRedisDB(t, addr)})
	t.Cleanup(func() { _ = client.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		unavailable(t, "TEST_REQUIRE_REDIS", "redis", err)
		return nil
	}
	client.FlushDB(ctx)
	return client
}

// redisAddr probes REDIS_ADDR and the usual local addresses and returns the
// first one that answers a ping.
func redisAddr() (string, error) {
	candidates := []string{"redis:6379", "localhost:6379", "localhost:56379"}
	if env := os.Getenv("REDIS_ADDR"); env != "" {
		candidates = []string{env}
	}

	var lastErr error
	for _, addr := range candidates {
		c := redis.NewClient(&redis.Options{Addr: addr})
		ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
		err := c.Ping(ctx).Err()
		cancel()
		_ = c.Close()
		if err == nil {
			return addr, nil
		}
		lastErr = err
	}
	return "", lastErr
}

// reserveRedisDB picks a database index 1-15 by taking a SetNX lock in DB 0.
// TEST_REDIS_DB short-circuits the selection for CI jobs that partition
// databases themselves.
func reserveRedisDB(t *testing.T, addr string) int {
	t.Helper()

	if v := os.Getenv("TEST_REDIS_DB"); v != "" {
		if i, err := strconv.Atoi(v); err == nil && i >= 0 {
			return i
		}
		t.Logf("ignoring invalid TEST_REDIS_DB=%q", v)
	}

	meta := redis.NewClient(&redis.Options{Addr: addr})
	lockVal := fmt.Sprintf("%d:%d", os.Getpid(), time.Now().UnixNano())
	for i := 1; i <= 15; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
		lockKey := fmt.Sprintf("kbsite:testutil:db_lock:%d", i)
		ok, err := meta.SetNX(ctx, lockKey, lockVal, 30*time.Minute).Result()
		cancel()
		if err != nil || !ok {
			continue
		}
		t.Cleanup(func() {
			ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
			defer cancel()
			if err := meta.Del(ctx, lockKey).Err(); err != nil {
				t.Logf("release redis db lock %s: %v", lockKey, err)
			}
			_ = meta.Close()
		})
		return i
	}
	_ = meta.Close()
	return 1
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string) bool {
	switch os.Getenv(key) {
	case "1", "true", "TRUE", "yes", "y":
		return true
	}
	return false
}
