package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
)

// rateLimitPrefix namespaces token buckets: ratelimit:<bucket>:<hashed ip>.
const rateLimitPrefix = "ratelimit:"

// RateLimitResult contains the result of a rate limit check.
type RateLimitResult struct {
	Allowed    bool
	Remaining  int64
	ResetAt    time.Time
	RetryAfter time.Duration
}

// tokenBucketScript refills and takes one token atomically.
// ARGV: rate (tokens/s), burst, now (fractional seconds), ttl (seconds).
// Returns {allowed, retry_after_seconds, remaining_tokens}.
var tokenBucketScript = redis.NewScript(`
	local key = KEYS[1]
	local rate = tonumber(ARGV[1])
	local burst = tonumber(ARGV[2])
	local now = tonumber(ARGV[3])
	local ttl = tonumber(ARGV[4])

	local data = redis.call('HMGET', key, 'tokens', 'ts')
	local tokens = tonumber(data[1]) or burst
	local ts = tonumber(data[2]) or now

	tokens = math.min(burst, tokens + (math.max(0, now - ts) * rate))

	local allowed = 0
	local retry_after = 0
	if tokens >= 1 then
		tokens = tokens - 1
		allowed = 1
	else
		retry_after = math.ceil((1 - tokens) / rate)
	end

	redis.call('HSET', key, 'tokens', tokens, 'ts', now)
	redis.call('EXPIRE', key, ttl)

	return {allowed, retry_after, math.floor(tokens)}
`)

// CheckIPRateLimit takes one token from the bucket of ip within the named
// bucket (e.g. "search"). The IP is hashed so raw addresses never reach Redis.
// Redis failures are returned; callers decide whether to fail open.
func (c *Cache) CheckIPRateLimit(ctx context.Context, bucket, ip string, ratePerSecond, burst int) (*RateLimitResult, error) {
	if ratePerSecond <= 0 || burst <= 0 {
		return nil, fmt.Errorf("invalid rate limit %d/s burst %d", ratePerSecond, burst)
	}

	now := time.Now()
	rate := float64(ratePerSecond)

	res, err := tokenBucketScript.Run(ctx, c.client,
		[]string{rateLimitKey(bucket, ip)},
		rate, burst, float64(now.UnixMilli())/1000, bucketTTL(rate, burst),
	).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("rate limit %s: %w", bucket, err)
	}

	return &RateLimitResult{
		Allowed:    res[0] == 1,
		Remaining:  res[2],
		ResetAt:    now.Add(time.Duration(float64(time.Second) / rate)),
		RetryAfter: time.Duration(res[1]) * time.Second,
	}, nil
}

func rateLimitKey(bucket, ip string) string {
	return rateLimitPrefix + bucket + ":" + hashIP(ip)
}

// bucketTTL is how long an idle bucket lives: long enough to refill from
// empty, after which a missing key and a full bucket are the same thing.
func bucketTTL(rate float64, burst int) int {
	return int(math.Ceil(float64(burst)/rate)) + 1
}

// hashIP creates a truncated SHA256 hash of an IP address.
func hashIP(ip string) string {
	hash := sha256.Sum256([]byte(ip))
	return hex.EncodeToString(hash[:8])
}
