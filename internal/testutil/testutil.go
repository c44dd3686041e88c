// Package testutil provides helpers for database-backed tests.
package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/recipebox/recipebox/internal/model"
	"github.com/redis/go-redis/v9"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

const advisoryLockID int64 = 640640

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// ResetSchema drops and recreates every table for tests. Down migrations
// apply newest first and up migrations oldest first so foreign keys
// resolve in both directions.
func ResetSchema(ctx context.Context, pool *pgxpool.Pool) error {
	root, err := ProjectRoot()
	if err != nil {
		return err
	}

	downs, err := filepath.Glob(filepath.Join(root, "migrations", "*.down.sql"))
	if err != nil {
		return fmt.Errorf("list down migrations: %w", err)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(downs)))

	for _, path := range downs {
		if err := applyMigrationFile(ctx, pool, path); err != nil {
			return err
		}
	}

	ups, err := filepath.Glob(filepath.Join(root, "migrations", "*.up.sql"))
	if err != nil {
		return fmt.Errorf("list up migrations: %w", err)
	}
	sort.Strings(ups)

	for _, path := range ups {
		if err := applyMigrationFile(ctx, pool, path); err != nil {
			return err
		}
	}

	return nil
}

func applyMigrationFile(ctx context.Context, pool *pgxpool.Pool, path string) error {
	sql, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read migration %s: %w", filepath.Base(path), err)
	}
	if _, err := pool.Exec(ctx, string(sql)); err != nil {
		return fmt.Errorf("apply migration %s: %w", filepath.Base(path), err)
	}
	return nil
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

// ProjectRoot returns the project root directory.
func ProjectRoot() (string, error) {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return "", fmt.Errorf("failed to resolve testutil path")
	}
	root := filepath.Clean(filepath.Join(filepath.Dir(filename), "..", ".."))
	return root, nil
}

// ============================================================================
// Test Data Factories
// ============================================================================

var uniqueCounter atomic.Int64

// UniqueID returns an identifier that will not collide within a test run.
func UniqueID(prefix string) string {
	return fmt.Sprintf("%s-%d-%d", prefix, time.Now().UnixNano(), uniqueCounter.Add(1))
}

// UniqueEmail returns an address that will not collide within a test run.
func UniqueEmail(t testing.TB, prefix string) string {
	t.Helper()
	return fmt.Sprintf("%s-%d-%d@example.com", prefix, time.Now().UnixNano(), uniqueCounter.Add(1))
}

// NewTestUser creates a test user with sensible defaults. The password
// hash is a placeholder; tests that verify credentials must hash a real
// password instead.
func NewTestUser(t testing.TB, email string) *model.User {
	t.Helper()
	now := time.Now().UTC()
	return &model.User{
		Email:        email,
		PasswordHash: fmt.Sprintf("hash-%d", now.UnixNano()),
		FirstName:    "Test",
		LastName:     "User",
		IsActive:     true,
	}
}

// NewTestRecipe creates a test recipe owned by the given user.
func NewTestRecipe(t testing.TB, userID int64) *model.Recipe {
	t.Helper()
	return &model.Recipe{
		UserID:          userID,
		Title:           "Sample recipe",
		Description:     "A sample recipe used in tests",
		Price:           "5.25",
		DurationMinutes: 22,
	}
}

// NewTestAuthToken creates a token row for the given user. The hash is a
// placeholder; middleware tests that verify tokens must hash a real secret.
func NewTestAuthToken(t testing.TB, userID int64) *model.AuthToken {
	t.Helper()
	return &model.AuthToken{
		ID:          UniqueID("tok"),
		UserID:      userID,
		TokenHash:   UniqueID("hash"),
		TokenPrefix: "abc123",
		CreatedAt:   time.Now().UTC(),
	}
}
