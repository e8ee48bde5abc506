package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) HealthCheck(ctx context.Context) error { return f(ctx) }

type breakerState string

func (b breakerState) BreakerState() string { return string(b) }

func (b breakerState) Available() bool { return b != "open" }

func TestReady(t *testing.T) {
	ok := pingerFunc(func(context.Context) error { return nil })
	down := pingerFunc(func(context.Context) error { return errors.New("connection refused") })

	tests := []struct {
		name          string
		redis         Pinger
		breaker       BreakerReporter
		wantCode      int
		wantRedis     string
		wantEmbedding string
	}{
		{"no dependencies", nil, nil, http.StatusOK, "disabled", "disabled"},
		{"all healthy", ok, breakerState("closed"), http.StatusOK, "ok", "ok"},
		{"redis down", down, breakerState("closed"), http.StatusServiceUnavailable, "error", "ok"},
		{"breaker open stays ready", ok, breakerState("open"), http.StatusOK, "ok", "degraded"},
		{"breaker half-open stays ready", ok, breakerState("half-open"), http.StatusOK, "ok", "ok"},
		{"breaker disabled", ok, breakerState("disabled"), http.StatusOK, "ok", "disabled"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(tt.redis, tt.breaker, "focustube-ml", "test")
			r := gin.New()
			r.GET("/ready", h.Ready)

			w := doJSON(t, r, http.MethodGet, "/ready", "")
			if w.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantCode)
			}

			var resp readinessResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if got := resp.Checks["redis"].Status; got != tt.wantRedis {
				t.Errorf("redis = %q, want %q", got, tt.wantRedis)
			}
			if got := resp.Checks["embedding"].Status; got != tt.wantEmbedding {
				t.Errorf("embedding = %q, want %q", got, tt.wantEmbedding)
			}
		})
	}
}

func TestHealthAndRoot(t *testing.T) {
	h := NewHealthHandler(nil, nil, "focustube-ml", "v1.2.3")
	r := gin.New()
	r.GET("/", h.Root)
	r.GET("/health", h.Health)
	r.GET("/live", h.Live)

	for _, path := range []string{"/", "/health", "/live"} {
		if w := doJSON(t, r, http.MethodGet, path, ""); w.Code != http.StatusOK {
			t.Errorf("GET %s status = %d", path, w.Code)
		}
	}

	w := doJSON(t, r, http.MethodGet, "/health", "")
	var resp HealthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Version != "v1.2.3" {
		t.Errorf("version = %q", resp.Version)
	}
}
