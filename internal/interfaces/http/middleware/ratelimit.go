package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"focustube-ml/internal/interfaces/http/dto"
	apperrors "focustube-ml/pkg/errors"
	"focustube-ml/pkg/logger"
)

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerSecond int
}

// RateLimiter 限流器接口
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// KeyBuilder 构建限流 key
type KeyBuilder func(subject, endpoint string) string

// RateLimit 按观众（或客户端 IP）和路由限流
func RateLimit(cfg RateLimitConfig, limiter RateLimiter, buildKey KeyBuilder) gin.HandlerFunc {
	if !cfg.Enabled || limiter == nil || buildKey == nil {
		return func(c *gin.Context) { c.Next() }
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 100
	}

	return func(c *gin.Context) {
		subject := GetViewerIDFromGin(c)
		if subject == "" {
			subject = "ip:" + c.ClientIP()
		}
		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = c.Request.URL.Path
		}

		allowed, err := limiter.Allow(c.Request.Context(), buildKey(subject, endpoint), cfg.RequestsPerSecond, time.Second)
		if err != nil {
			// 限流器故障时放行
			logger.Warn(c.Request.Context(), "rate limiter unavailable", "error", err.Error())
			c.Next()
			return
		}
		if !allowed {
			dto.AbortWithError(c, apperrors.ErrTooManyRequests)
			return
		}

		c.Next()
	}
}
