package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var cacheTracer = otel.Tracer("redis.cache")

// VectorCache 二进制向量缓存，批量读写
type VectorCache struct {
	client *Client
}

// NewVectorCache 创建向量缓存
func NewVectorCache(client *Client) *VectorCache {
	return &VectorCache{client: client}
}

// MGet 批量读取，未命中位置为 nil
func (c *VectorCache) MGet(ctx context.Context, keys []string) ([][]byte, error) {
	ctx, span := cacheTracer.Start(ctx, "cache.MGet",
		trace.WithAttributes(attribute.Int("cache.key_count", len(keys))))
	defer span.End()

	out := make([][]byte, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	vals, err := c.client.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	hits := 0
	for i, v := range vals {
		// MGET 返回 string 或 nil
		if s, ok := v.(string); ok {
			out[i] = []byte(s)
			hits++
		}
	}
	span.SetAttributes(attribute.Int("cache.hits", hits))
	return out, nil
}

// SetMany 通过 pipeline 批量写入，统一 TTL
func (c *VectorCache) SetMany(ctx context.Context, entries map[string][]byte, ttl time.Duration) error {
	ctx, span := cacheTracer.Start(ctx, "cache.SetMany",
		trace.WithAttributes(
			attribute.Int("cache.key_count", len(entries)),
			attribute.Int64("cache.ttl_ms", ttl.Milliseconds()),
		))
	defer span.End()

	if len(entries) == 0 {
		return nil
	}

	_, err := c.client.rdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for k, v := range entries {
			pipe.Set(ctx, k, v, ttl)
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
	}
	return err
}
