// Package middleware 提供 HTTP 中间件
package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"focustube-ml/internal/interfaces/http/dto"
	apperrors "focustube-ml/pkg/errors"
	"focustube-ml/pkg/logger"
	"focustube-ml/pkg/utils"
)

const viewerIDKey = "viewer_id"

// AuthConfig 认证配置
type AuthConfig struct {
	Enabled bool
	Secret  string
	Issuer  string
	// SkipPaths 按前缀跳过认证
	SkipPaths []string
}

// DefaultSkipPaths 默认跳过认证的路径
var DefaultSkipPaths = []string{
	"/health",
	"/ready",
	"/live",
	"/metrics",
}

// Auth 观众令牌认证中间件
// 令牌中的 user_id 作为 viewer id 注入上下文
func Auth(cfg AuthConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) { c.Next() }
	}

	jwtManager := utils.NewJWTManager(cfg.Secret, cfg.Issuer)
	skipPaths := cfg.SkipPaths
	if skipPaths == nil {
		skipPaths = DefaultSkipPaths
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if path == "/" {
			c.Next()
			return
		}
		for _, p := range skipPaths {
			if strings.HasPrefix(path, p) {
				c.Next()
				return
			}
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			dto.AbortWithError(c, apperrors.ErrTokenMissing)
			return
		}

		scheme, token, ok := strings.Cut(authHeader, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			dto.AbortWithError(c, apperrors.ErrTokenInvalid.WithDetail("invalid authorization format"))
			return
		}

		claims, err := jwtManager.ParseToken(strings.TrimSpace(token))
		if err != nil {
			if errors.Is(err, utils.ErrExpiredToken) {
				dto.AbortWithError(c, apperrors.ErrTokenExpired)
				return
			}
			dto.AbortWithError(c, apperrors.ErrTokenInvalid)
			return
		}
		if claims.ViewerID == "" {
			dto.AbortWithError(c, apperrors.ErrTokenInvalid.WithDetail("token has no viewer"))
			return
		}

		c.Set(viewerIDKey, claims.ViewerID)
		ctx := logger.WithContext(c.Request.Context(), logger.ViewerIDKey, claims.ViewerID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// GetViewerIDFromGin 读取认证得到的 viewer id，未认证时为空
func GetViewerIDFromGin(c *gin.Context) string {
	return c.GetString(viewerIDKey)
}
