package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// slidingWindow trims, counts and records in one step so replicas cannot
// admit past the limit between the read and the write.
//
// KEYS[1] window key
// ARGV    now_ms, floor_ms, limit, member, window_ms
// returns {allowed, used, retry_ms}
var slidingWindow = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local limit = tonumber(ARGV[3])
local window = tonumber(ARGV[5])

redis.call('ZREMRANGEBYSCORE', key, '-inf', '(' .. ARGV[2])
local used = redis.call('ZCARD', key)
if used >= limit then
	local retry = window
	local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
	if oldest[2] then
		retry = tonumber(oldest[2]) + window - now
	end
	return {0, used, retry}
end

redis.call('ZADD', key, now, ARGV[4])
redis.call('PEXPIRE', key, window)
return {1, used + 1, 0}
`)

// RedisLimiter enforces a sliding window shared by every replica through a
// Redis sorted set per key. Members are request ids scored by arrival time
// in milliseconds.
type RedisLimiter struct {
	client    redis.Scripter
	keyPrefix string
	limit     int
	window    time.Duration
	now       func() time.Time
}

// NewRedisLimiter allows limit requests per sliding window
func NewRedisLimiter(client redis.Scripter, keyPrefix string, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{
		client:    client,
		keyPrefix: keyPrefix,
		limit:     limit,
		window:    window,
		now:       time.Now,
	}
}

// Allow records the attempt when it fits inside the window
func (l *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	now := l.now().UnixMilli()
	windowMs := l.window.Milliseconds()

	res, err := slidingWindow.Run(ctx, l.client, []string{l.key(key)},
		now, now-windowMs, l.limit, uuid.NewString(), windowMs,
	).Int64Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("redis sliding window: %w", err)
	}
	if len(res) != 3 {
		return Decision{}, fmt.Errorf("redis sliding window: unexpected reply %v", res)
	}

	used := int(res[1])
	if res[0] == 0 {
		retry := time.Duration(res[2]) * time.Millisecond
		if retry < 0 {
			retry = 0
		}
		return Decision{Allowed: false, Limit: l.limit, RetryAfter: retry}, nil
	}

	return Decision{Allowed: true, Limit: l.limit, Remaining: l.limit - used}, nil
}

func (l *RedisLimiter) key(identifier string) string {
	if l.keyPrefix == "" {
		return "ratelimit:" + identifier
	}
	return l.keyPrefix + ":ratelimit:" + identifier
}
