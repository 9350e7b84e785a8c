package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/librarydb/librarydb/internal/model"
	"github.com/librarydb/librarydb/migrations"
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

const advisoryLockID int64 = 420420

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

// ResetSchema rolls the embedded migrations all the way down and up again.
func ResetSchema(databaseURL string) error {
	if err := migrations.Down(databaseURL); err != nil {
		return fmt.Errorf("reset schema: %w", err)
	}
	if err := migrations.Up(databaseURL); err != nil {
		return fmt.Errorf("reset schema: %w", err)
	}
	return nil
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

// ============================================================================
// Test Data Factories
// ============================================================================

// NewTestUser creates a test user with sensible defaults.
// The password hash is a placeholder; hash real passwords with auth.HashPassword.
func NewTestUser(t testing.TB, email string) *model.User {
	t.Helper()
	return &model.User{
		Name:         "Test",
		Surname:      "Reader",
		Email:        email,
		PasswordHash: fmt.Sprintf("hash-%d", time.Now().UnixNano()),
		Birthday:     "2000-06-15",
		UserType:     model.UserTypeMember,
		CreatedAt:    time.Now().UTC(),
	}
}

// InsertMedia inserts a media item directly and returns its ID.
func InsertMedia(ctx context.Context, pool *pgxpool.Pool, title string, ageLimit int) (int64, error) {
	var id int64
	err := pool.QueryRow(ctx,
		`INSERT INTO media (title, age_limit) VALUES ($1, $2) RETURNING id`,
		title, ageLimit,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert media: %w", err)
	}
	return id, nil
}

// InsertAuthor inserts an author directly and returns its ID.
func InsertAuthor(ctx context.Context, pool *pgxpool.Pool, name, surname string) (int64, error) {
	var id int64
	err := pool.QueryRow(ctx,
		`INSERT INTO authors (name, surname) VALUES ($1, $2) RETURNING id`,
		name, surname,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert author: %w", err)
	}
	return id, nil
}

// UniqueEmail generates a unique email address for tests.
func UniqueEmail(prefix string) string {
	return fmt.Sprintf("%s-%d@example.com", prefix, time.Now().UnixNano())
}
