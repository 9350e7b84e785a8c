package cache

import (
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestHashIP_Deterministic(t *testing.T) {
	t.Parallel()

	ip := "192.168.1.100"

	hash1 := hashIP(ip)
	hash2 := hashIP(ip)

	if hash1 != hash2 {
		t.Error("Same IP should produce same hash")
	}
}

func TestHashIP_Length(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ip   string
	}{
		{"IPv4", "192.168.1.1"},
		{"IPv4 localhost", "127.0.0.1"},
		{"IPv6 localhost", "::1"},
		{"IPv6 full", "2001:0db8:85a3:0000:0000:8a2e:0370:7334"},
		{"empty", ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			hash := hashIP(tt.ip)
			// hashIP uses first 8 bytes of SHA256, encoded as 16 hex chars
			if len(hash) != 16 {
				t.Errorf("hashIP(%q) length = %d, want 16", tt.ip, len(hash))
			}
		})
	}
}

func TestHashIP_Different(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ip1  string
		ip2  string
	}{
		{"different IPv4", "192.168.1.1", "192.168.1.2"},
		{"different last octet", "10.0.0.1", "10.0.0.2"},
		{"IPv4 vs IPv6", "127.0.0.1", "::1"},
		{"public vs private", "8.8.8.8", "192.168.1.1"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			hash1 := hashIP(tt.ip1)
			hash2 := hashIP(tt.ip2)

			if hash1 == hash2 {
				t.Errorf("Different IPs should produce different hashes: %q and %q both produced %s", tt.ip1, tt.ip2, hash1)
			}
		})
	}
}

func TestSessionKey(t *testing.T) {
	t.Parallel()

	token := "3f9a1c0d2b7e4a5f8c6d1e0b9a8f7e6d"

	key := sessionKey(token)
	if key != sessionKey(token) {
		t.Error("Same token should produce same key")
	}
	if !strings.HasPrefix(key, sessionKeyPrefix) {
		t.Errorf("key %q should start with %q", key, sessionKeyPrefix)
	}
	if strings.Contains(key, token) {
		t.Error("Raw token must not appear in the Redis key")
	}
	if len(key) != len(sessionKeyPrefix)+32 {
		t.Errorf("key length = %d, want %d", len(key), len(sessionKeyPrefix)+32)
	}
	if sessionKey("other") == key {
		t.Error("Different tokens should produce different keys")
	}
}

func TestRateLimitKey(t *testing.T) {
	t.Parallel()

	key := rateLimitKey("search", "10.0.0.1")
	if !strings.HasPrefix(key, "ratelimit:search:") {
		t.Errorf("key %q should start with ratelimit:search:", key)
	}
	if strings.Contains(key, "10.0.0.1") {
		t.Error("Raw IP must not appear in the Redis key")
	}
	if rateLimitKey("login", "10.0.0.1") == key {
		t.Error("Buckets must not share keys")
	}
}

func TestBucketTTL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		rate  float64
		burst int
		want  int
	}{
		{20, 10, 2},
		{1, 10, 11},
		{3, 10, 5},
		{100, 1, 2},
	}

	for _, tt := range tests {
		tt := tt
		if got := bucketTTL(tt.rate, tt.burst); got != tt.want {
			t.Errorf("bucketTTL(%v, %d) = %d, want %d", tt.rate, tt.burst, got, tt.want)
		}
	}
}

func TestApplyPoolDefaults(t *testing.T) {
	t.Parallel()

	opt, err := redis.ParseURL("redis://localhost:6379/0?pool_size=50")
	if err != nil {
		t.Fatalf("ParseURL() error = %v", err)
	}
	applyPoolDefaults(opt)

	if opt.PoolSize != 50 {
		t.Errorf("PoolSize = %d, want URL value 50", opt.PoolSize)
	}
	if opt.MinIdleConns != minIdleConns {
		t.Errorf("MinIdleConns = %d, want %d", opt.MinIdleConns, minIdleConns)
	}
	if opt.ConnMaxIdleTime != connMaxIdleTime {
		t.Errorf("ConnMaxIdleTime = %v, want %v", opt.ConnMaxIdleTime, connMaxIdleTime)
	}
}

func TestSessionStore_TTL(t *testing.T) {
	t.Parallel()

	store := NewSessionStore(&Cache{}, 90*time.Minute)
	if got := store.TTL(); got != 90*time.Minute {
		t.Errorf("TTL() = %v, want %v", got, 90*time.Minute)
	}
}
