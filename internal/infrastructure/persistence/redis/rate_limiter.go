package redis

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"

	pkgtracer "focustube-ml/pkg/tracer"
)

// slidingWindowScript 裁剪窗口外记录，未超限时记入本次请求
// KEYS[1] 限流键; ARGV: now_ms, window_ms, limit, member
var slidingWindowScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
local count = redis.call('ZCARD', key)
if count >= limit then
	return {0, count}
end
redis.call('ZADD', key, now, ARGV[4])
redis.call('PEXPIRE', key, window * 2)
return {1, count + 1}
`)

// RateLimiter 基于 ZSET 的滑动窗口限流
type RateLimiter struct {
	client *Client
	now    func() time.Time
}

func NewRateLimiter(client *Client) *RateLimiter {
	return &RateLimiter{client: client, now: time.Now}
}

// Allow 窗口内请求数未达 limit 时放行并计数
func (l *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	ctx, span := tracer.Start(ctx, "redis.RateLimiter.Allow")
	defer span.End()
	span.SetAttributes(
		attribute.String("ratelimit.key", key),
		attribute.Int("ratelimit.limit", limit),
	)

	if limit <= 0 {
		return false, nil
	}

	// member 需唯一，同一毫秒内的请求才不会互相覆盖
	res, err := slidingWindowScript.Run(ctx, l.client.rdb, []string{key},
		l.now().UnixMilli(), window.Milliseconds(), limit, uuid.NewString(),
	).Int64Slice()
	if err != nil {
		pkgtracer.RecordError(span, err)
		return false, err
	}

	allowed := len(res) == 2 && res[0] == 1
	span.SetAttributes(attribute.Bool("ratelimit.allowed", allowed))
	if len(res) == 2 {
		span.SetAttributes(attribute.Int64("ratelimit.count", res[1]))
	}
	return allowed, nil
}

// BuildRateLimitKey subject 为 viewer id 或 "ip:<addr>"
func BuildRateLimitKey(subject, endpoint string) string {
	return "ratelimit:" + subject + ":" + endpoint
}
