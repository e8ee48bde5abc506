package embedding

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/semaphore"

	"focustube-ml/internal/config"
	apperrors "focustube-ml/pkg/errors"
	"focustube-ml/pkg/logger"
	"focustube-ml/pkg/metrics"
	"focustube-ml/pkg/tracer"
)

// Guard 限制模型并发、熔断，并在请求结束时放弃仍在进行的调用
type Guard struct {
	next     Embedder
	provider string
	// dimension 期望的向量维度，0 表示不校验
	dimension int
	sem       *semaphore.Weighted
	breaker   *gobreaker.CircuitBreaker[[][]float32]
}

// NewGuard 包装底层 provider
func NewGuard(next Embedder, cfg *config.EmbeddingConfig) *Guard {
	limit := cfg.MaxConcurrency
	if limit <= 0 {
		limit = 4
	}
	g := &Guard{
		next:      next,
		provider:  cfg.Provider,
		dimension: cfg.Dimension,
		sem:       semaphore.NewWeighted(int64(limit)),
	}
	if cfg.Breaker.Enabled {
		g.breaker = newBreaker("embedding-"+cfg.Provider, cfg.Breaker)
	}
	return g
}

func newBreaker(name string, cfg config.BreakerConfig) *gobreaker.CircuitBreaker[[][]float32] {
	threshold := cfg.ConsecutiveFailures
	if threshold == 0 {
		threshold = 5
	}
	metrics.EmbeddingBreakerState.WithLabelValues(name).Set(0)
	return gobreaker.NewCircuitBreaker[[][]float32](gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.EmbeddingBreakerState.WithLabelValues(name).Set(breakerStateValue(to))
			logger.Warn(context.Background(), "embedding circuit breaker state changed",
				"breaker", name, "from", from.String(), "to", to.String())
		},
	})
}

func breakerStateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

type embedResult struct {
	vecs [][]float32
	err  error
}

// Embed 获取并发许可后在独立 goroutine 中调用模型
// ctx 结束时立即返回 ctx.Err()，调用结果被丢弃，许可在调用真正结束后才归还
func (g *Guard) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	ctx, span := tracer.Start(ctx, "embedding.Embed")
	defer span.End()
	span.SetAttributes(
		attribute.String("embedding.provider", g.provider),
		attribute.Int("embedding.texts", len(texts)),
	)

	if err := g.sem.Acquire(ctx, 1); err != nil {
		tracer.RecordError(span, err)
		return nil, err
	}

	done := make(chan embedResult, 1)
	callCtx := context.WithoutCancel(ctx)
	go func() {
		defer g.sem.Release(1)
		vecs, err := g.call(callCtx, texts)
		done <- embedResult{vecs: vecs, err: err}
	}()

	select {
	case <-ctx.Done():
		tracer.RecordError(span, ctx.Err())
		logger.Warn(ctx, "embedding call abandoned", "provider", g.provider, "texts", len(texts))
		return nil, ctx.Err()
	case res := <-done:
		if res.err != nil {
			tracer.RecordError(span, res.err)
			return nil, res.err
		}
		return res.vecs, nil
	}
}

func (g *Guard) call(ctx context.Context, texts []string) ([][]float32, error) {
	start := time.Now()
	metrics.EmbeddingTextsTotal.WithLabelValues(g.provider).Add(float64(len(texts)))

	var (
		vecs [][]float32
		err  error
	)
	if g.breaker != nil {
		vecs, err = g.breaker.Execute(func() ([][]float32, error) {
			return g.embedChecked(ctx, texts)
		})
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			err = apperrors.Wrap(err, apperrors.CodeServiceUnavailable, "embedding service unavailable")
		}
	} else {
		vecs, err = g.embedChecked(ctx, texts)
	}

	status := "success"
	if err != nil {
		status = "error"
		logger.Error(ctx, "embedding call failed", err, "provider", g.provider, "texts", len(texts))
	}
	metrics.EmbeddingCallDuration.WithLabelValues(g.provider, status).Observe(time.Since(start).Seconds())
	return vecs, err
}

// embedChecked 维度不符视为模型故障，同样计入熔断
func (g *Guard) embedChecked(ctx context.Context, texts []string) ([][]float32, error) {
	vecs, err := g.next.Embed(ctx, texts)
	if err != nil || g.dimension <= 0 {
		return vecs, err
	}
	for i, v := range vecs {
		if len(v) != g.dimension {
			return nil, apperrors.New(apperrors.CodeEmbeddingFailed, "embedding inference failed").
				WithDetail(fmt.Sprintf("vector %d has dimension %d, want %d", i, len(v), g.dimension))
		}
	}
	return vecs, nil
}

// BreakerState 熔断器状态，未启用时为 disabled
func (g *Guard) BreakerState() string {
	if g.breaker == nil {
		return "disabled"
	}
	return g.breaker.State().String()
}

// Available 熔断器未打开
func (g *Guard) Available() bool {
	return g.breaker == nil || g.breaker.State() != gobreaker.StateOpen
}
