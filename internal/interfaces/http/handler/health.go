package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger 可做连通性检查的依赖
type Pinger interface {
	HealthCheck(ctx context.Context) error
}

// BreakerReporter 报告 embedding 熔断器状态
type BreakerReporter interface {
	BreakerState() string
	// Available 熔断器是否放行请求
	Available() bool
}

// HealthHandler 健康检查处理器
type HealthHandler struct {
	redis   Pinger
	breaker BreakerReporter
	name    string
	version string
}

// NewHealthHandler 创建健康检查处理器，redis 为 nil 表示未启用
func NewHealthHandler(redis Pinger, breaker BreakerReporter, name, version string) *HealthHandler {
	return &HealthHandler{
		redis:   redis,
		breaker: breaker,
		name:    name,
		version: version,
	}
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

type readinessCheck struct {
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
	LatencyMs int64  `json:"latency_ms,omitempty"`
}

type readinessResponse struct {
	Status string                     `json:"status"`
	Checks map[string]*readinessCheck `json:"checks,omitempty"`
}

// Root 服务说明
func (h *HealthHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": h.name + " is running"})
}

// Health 健康检查
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok", Version: h.version})
}

// Live 存活检查
// @Router /live [get]
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// Ready 就绪检查
// redis 故障时不就绪；熔断器打开只作为降级信息展示
// @Router /ready [get]
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := map[string]*readinessCheck{
		"redis":     {Status: "disabled"},
		"embedding": {Status: "disabled"},
	}
	ready := true

	if h.redis != nil {
		start := time.Now()
		err := h.redis.HealthCheck(ctx)
		checks["redis"].LatencyMs = time.Since(start).Milliseconds()
		if err != nil {
			checks["redis"].Status = "error"
			checks["redis"].Error = err.Error()
			ready = false
		} else {
			checks["redis"].Status = "ok"
		}
	}

	if h.breaker != nil {
		state := h.breaker.BreakerState()
		switch {
		case !h.breaker.Available():
			checks["embedding"].Status = "degraded"
			checks["embedding"].Error = "circuit breaker " + state
		case state != "disabled":
			checks["embedding"].Status = "ok"
		}
	}

	resp := readinessResponse{Status: "ok", Checks: checks}
	if !ready {
		resp.Status = "not_ready"
		c.JSON(http.StatusServiceUnavailable, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}
