package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// slidingWindowScript keeps one sorted-set member per accepted hit, scored in
// milliseconds. It returns {allowed, resetAtMillis}.
var slidingWindowScript = redis.NewScript(`
local key    = KEYS[1]
local now    = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit  = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)

if redis.call('ZCARD', key) >= limit then
    local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
    if #oldest == 2 then
        return {0, tonumber(oldest[2]) + window}
    end
    return {0, now + window}
end

redis.call('ZADD', key, now, ARGV[4])
redis.call('PEXPIRE', key, window + 1000)
return {1, now + window}
`)

// RateLimiter bounds OTP sends and webhook bursts per key.
type RateLimiter struct {
	client *redis.Client
	now    func() time.Time
}

func NewRateLimiter(client *redis.Client) *RateLimiter {
	return &RateLimiter{client: client, now: time.Now}
}

func rateLimitKey(key string) string {
	return "ratelimit:" + key
}

// CheckLimit records a hit and reports whether it fits in the window. Redis
// errors deny the hit.
func (rl *RateLimiter) CheckLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, time.Time) {
	now := rl.now()
	denied := now.Add(window)

	res, err := slidingWindowScript.Run(ctx, rl.client,
		[]string{rateLimitKey(key)},
		now.UnixMilli(), window.Milliseconds(), limit, uuid.NewString(),
	).Int64Slice()
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("rate limit check failed, denying")
		return false, denied
	}
	if len(res) != 2 {
		log.Warn().Str("key", key).Int("len", len(res)).Msg("malformed rate limit reply, denying")
		return false, denied
	}

	allowed := res[0] == 1
	if !allowed {
		rateLimitDeniedCounter.Inc()
	}
	return allowed, time.UnixMilli(res[1])
}

// Reset forgets every hit recorded for key.
func (rl *RateLimiter) Reset(ctx context.Context, key string) error {
	return rl.client.Del(ctx, rateLimitKey(key)).Err()
}
