package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/librarydb/librarydb/internal/model"
)

const (
	// sessionKeyPrefix is the Redis key prefix for sessions.
	sessionKeyPrefix = "session:"
)

// ErrSessionNotFound is returned when no session exists for a token.
var ErrSessionNotFound = errors.New("session not found")

// SessionStore keeps sessions in Redis hashes with a sliding TTL.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionStore creates a SessionStore backed by the cache's client.
func NewSessionStore(c *Cache, ttl time.Duration) *SessionStore {
	return &SessionStore{client: c.client, ttl: ttl}
}

// Get loads the session for token and extends its TTL.
// Returns ErrSessionNotFound if it does not exist or has expired.
func (s *SessionStore) Get(ctx context.Context, token string) (*model.Session, error) {
	key := sessionKey(token)

	res := s.client.HGetAll(ctx, key)
	if err := res.Err(); err != nil {
		return nil, fmt.Errorf("redis hgetall failed: %w", err)
	}
	if len(res.Val()) == 0 {
		return nil, ErrSessionNotFound
	}

	var cached model.CachedSession
	if err := res.Scan(&cached); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}

	// Sliding expiry; a failure here only shortens the session.
	_ = s.client.Expire(ctx, key, s.ttl).Err()

	return cached.ToSession(token), nil
}

// Save writes the whole session and resets its TTL.
func (s *SessionStore) Save(ctx context.Context, session *model.Session) error {
	key := sessionKey(session.Token)

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, session.ToCachedSession())
		pipe.Expire(ctx, key, s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Delete removes the session for token.
func (s *SessionStore) Delete(ctx context.Context, token string) error {
	return s.client.Del(ctx, sessionKey(token)).Err()
}

// TTL returns the configured session lifetime.
func (s *SessionStore) TTL() time.Duration {
	return s.ttl
}

// sessionKey derives the Redis key from a token so raw tokens are never stored.
func sessionKey(token string) string {
	hash := sha256.Sum256([]byte(token))
	return sessionKeyPrefix + hex.EncodeToString(hash[:16])
}
