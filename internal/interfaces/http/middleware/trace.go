package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/trace"

	"focustube-ml/pkg/logger"
)

// TraceIDHeader 响应中回写的 trace id
const TraceIDHeader = "X-Trace-ID"

// untracedPrefixes 探针与指标抓取不产生 span
var untracedPrefixes = []string{"/health", "/ready", "/live", "/metrics"}

// Trace otelgin 中间件，跳过探针路径
func Trace(serviceName string) gin.HandlerFunc {
	return otelgin.Middleware(serviceName, otelgin.WithFilter(func(r *http.Request) bool {
		for _, p := range untracedPrefixes {
			if strings.HasPrefix(r.URL.Path, p) {
				return false
			}
		}
		return true
	}))
}

// TraceContext 须在 Trace 之后注册
func TraceContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		sc := trace.SpanContextFromContext(c.Request.Context())
		if !sc.IsValid() {
			c.Next()
			return
		}

		traceID := sc.TraceID().String()
		ctx := logger.WithContext(c.Request.Context(), logger.TraceIDKey, traceID)
		ctx = logger.WithContext(ctx, logger.SpanIDKey, sc.SpanID().String())
		c.Request = c.Request.WithContext(ctx)
		c.Set("trace_id", traceID)
		c.Header(TraceIDHeader, traceID)

		c.Next()
	}
}
