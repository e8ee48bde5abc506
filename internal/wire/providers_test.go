package wire

import (
	"context"
	"math"
	"strings"
	"testing"

	"focustube-ml/internal/application/curation"
	"focustube-ml/internal/config"
	"focustube-ml/internal/domain/entity"
)

func testConfig() *config.Config {
	return &config.Config{
		App:       config.AppConfig{Name: "focustube-ml", Env: "test"},
		Embedding: config.EmbeddingConfig{Provider: "http", Endpoint: "http://127.0.0.1:1/embed", MaxConcurrency: 2},
		Curation:  config.CurationConfig{SemanticThreshold: 0.6, MaxCandidates: 10, MaxDisinterests: 5},
		Ranking: config.RankingConfig{Markers: []config.MarkerConfig{
			{Term: "tutorial", Weight: 10},
		}},
		Observability: config.ObservabilityConfig{
			Metrics: config.MetricsConfig{Enabled: true},
		},
	}
}

func TestInitializeAppWithoutRedis(t *testing.T) {
	r, cleanup, err := InitializeApp(context.Background(), testConfig())
	if err != nil {
		t.Fatalf("InitializeApp() error = %v", err)
	}
	defer cleanup()

	if r.Engine() == nil {
		t.Fatal("engine is nil")
	}
	routes := map[string]bool{}
	for _, ri := range r.Engine().Routes() {
		routes[ri.Method+" "+ri.Path] = true
	}
	for _, want := range []string{
		"POST /api/videos/rank",
		"POST /api/videos/search",
		"GET /api/viewers/:vid/stats",
		"GET /",
		"GET /health",
		"GET /live",
		"GET /ready",
		"GET /metrics",
	} {
		if !routes[want] {
			t.Errorf("route %s not registered", want)
		}
	}
}

func TestInitializeStatsWorkerRequiresRedis(t *testing.T) {
	if _, _, err := InitializeStatsWorker(context.Background(), testConfig()); err == nil {
		t.Fatal("expected error when redis is disabled")
	}
}

func TestOptionalProvidersWithoutRedis(t *testing.T) {
	cfg := testConfig()
	cfg.Features.FilterEvents.Enabled = true

	if ProvideEventPublisher(cfg, nil) != nil {
		t.Error("publisher should be nil without redis")
	}
	if ProvideVectorCache(nil) != nil {
		t.Error("cache should be nil without redis")
	}
	if ProvideStatsRepository(nil) != nil {
		t.Error("stats repository should be nil without redis")
	}
	if ProvidePinger(nil) != nil {
		t.Error("pinger should be nil without redis")
	}
	if deps := ProvideRouterDeps(cfg, nil); deps.RateLimiter != nil {
		t.Error("rate limiter should be nil without redis")
	}
}

func TestProvidePipelineAppliesConfiguredThreshold(t *testing.T) {
	// 与 "gaming" 的余弦相似度：close 为 0.65，far 为 0.55
	embedder := curation.EmbedderFunc(func(_ context.Context, texts []string) ([][]float32, error) {
		out := make([][]float32, len(texts))
		for i, text := range texts {
			switch {
			case text == "gaming":
				out[i] = []float32{1, 0}
			case strings.HasPrefix(text, "Close"):
				out[i] = []float32{0.65, float32(math.Sqrt(1 - 0.65*0.65))}
			default:
				out[i] = []float32{0.55, float32(math.Sqrt(1 - 0.55*0.55))}
			}
		}
		return out, nil
	})

	p := ProvidePipeline(testConfig(), embedder, nil)
	out, err := p.Search(context.Background(), curation.SearchInput{
		Disinterests: []string{"gaming"},
		Candidates: []entity.Video{
			{ID: "close", Title: "Close"},
			{ID: "far", Title: "Far"},
		},
	})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if out.BlockedCount != 1 || out.Blocked[0].Video.ID != "close" {
		t.Errorf("blocked = %+v, want only close", out.Blocked)
	}
	if len(out.Videos) != 1 || out.Videos[0].ID != "far" {
		t.Errorf("videos = %+v, want only far", out.Videos)
	}
}
