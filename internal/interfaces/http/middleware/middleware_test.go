package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"focustube-ml/pkg/logger"
	"focustube-ml/pkg/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuth(t *testing.T) {
	manager := utils.NewJWTManager("secret", "focustube")
	valid, _ := manager.GenerateToken("viewer-1", time.Minute)
	expired, _ := manager.GenerateToken("viewer-1", -time.Minute)

	r := gin.New()
	r.Use(Auth(AuthConfig{Enabled: true, Secret: "secret", Issuer: "focustube"}))
	handler := func(c *gin.Context) {
		fromCtx, _ := c.Request.Context().Value(logger.ViewerIDKey).(string)
		c.String(http.StatusOK, GetViewerIDFromGin(c)+"|"+fromCtx)
	}
	r.GET("/api/videos", handler)
	r.GET("/health", handler)

	tests := []struct {
		name     string
		path     string
		header   string
		wantCode int
		wantBody string
	}{
		{"valid token", "/api/videos", "Bearer " + valid, http.StatusOK, "viewer-1|viewer-1"},
		{"lowercase scheme", "/api/videos", "bearer " + valid, http.StatusOK, "viewer-1|viewer-1"},
		{"missing header", "/api/videos", "", http.StatusUnauthorized, ""},
		{"wrong scheme", "/api/videos", "Basic abc", http.StatusUnauthorized, ""},
		{"expired", "/api/videos", "Bearer " + expired, http.StatusUnauthorized, ""},
		{"garbage", "/api/videos", "Bearer nope", http.StatusUnauthorized, ""},
		{"skip path", "/health", "", http.StatusOK, "|"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := serve(r, req)
			if w.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d, body = %s", w.Code, tt.wantCode, w.Body.String())
			}
			if tt.wantBody != "" && w.Body.String() != tt.wantBody {
				t.Errorf("body = %q, want %q", w.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestAuthDisabled(t *testing.T) {
	r := gin.New()
	r.Use(Auth(AuthConfig{Enabled: false}))
	r.GET("/api/videos", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	if w := serve(r, httptest.NewRequest(http.MethodGet, "/api/videos", nil)); w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", w.Code)
	}
}

type countingLimiter struct {
	limit int
	seen  map[string]int
	err   error
}

func (l *countingLimiter) Allow(_ context.Context, key string, _ int, _ time.Duration) (bool, error) {
	if l.err != nil {
		return false, l.err
	}
	l.seen[key]++
	return l.seen[key] <= l.limit, nil
}

func TestRateLimit(t *testing.T) {
	limiter := &countingLimiter{limit: 2, seen: map[string]int{}}
	keyFn := func(subject, endpoint string) string { return subject + "|" + endpoint }

	r := gin.New()
	r.Use(RateLimit(RateLimitConfig{Enabled: true, RequestsPerSecond: 2}, limiter, keyFn))
	r.GET("/api/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		codes = append(codes, serve(r, req).Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Errorf("codes = %v", codes)
	}
	if limiter.seen["ip:10.0.0.1|/api/ping"] != 3 {
		t.Errorf("keys = %v", limiter.seen)
	}
}

func TestRateLimitFailsOpen(t *testing.T) {
	limiter := &countingLimiter{err: errors.New("redis down")}
	r := gin.New()
	r.Use(RateLimit(RateLimitConfig{Enabled: true}, limiter, func(s, e string) string { return s + e }))
	r.GET("/api/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	if w := serve(r, httptest.NewRequest(http.MethodGet, "/api/ping", nil)); w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) {
		v, _ := c.Request.Context().Value(logger.RequestIDKey).(string)
		c.String(http.StatusOK, v)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	w := serve(r, req)
	if w.Body.String() != "req-123" || w.Header().Get(RequestIDHeader) != "req-123" {
		t.Errorf("propagated id = %q / %q", w.Body.String(), w.Header().Get(RequestIDHeader))
	}

	w = serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	if len(w.Body.String()) != 36 {
		t.Errorf("generated id = %q, want uuid", w.Body.String())
	}
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(Recovery())
	r.GET("/", func(*gin.Context) { panic("boom") })

	if w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil)); w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}
