// Package redis 提供 Redis 缓存、限流与统计存储实现
package redis

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"

	"focustube-ml/internal/config"
	pkgtracer "focustube-ml/pkg/tracer"
)

var tracer = otel.Tracer("redis")

const defaultDialTimeout = 5 * time.Second

// Client 共享连接，供缓存、限流、统计与消息流复用
type Client struct {
	rdb *redis.Client
}

func options(cfg *config.RedisConfig) *redis.Options {
	opts := &redis.Options{
		Addr:         net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	if opts.DialTimeout <= 0 {
		opts.DialTimeout = defaultDialTimeout
	}
	return opts
}

// NewClient 连接并 PING 一次，失败时不返回半初始化的客户端
func NewClient(ctx context.Context, cfg *config.RedisConfig) (*Client, error) {
	opts := options(cfg)
	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, opts.DialTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis unreachable at %s: %w", opts.Addr, err)
	}
	return &Client{rdb: rdb}, nil
}

// Wrap 包装已有连接（测试容器等场景）
func Wrap(rdb *redis.Client) *Client {
	return &Client{rdb: rdb}
}

func (c *Client) Redis() *redis.Client {
	return c.rdb
}

func (c *Client) Close() error {
	return c.rdb.Close()
}

// HealthCheck 供 /ready 使用
func (c *Client) HealthCheck(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "redis.HealthCheck")
	defer span.End()

	if err := c.rdb.Ping(ctx).Err(); err != nil {
		pkgtracer.RecordError(span, err)
		return err
	}
	return nil
}
