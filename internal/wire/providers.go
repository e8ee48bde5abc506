package wire

import (
	"context"
	"fmt"

	"focustube-ml/internal/application/curation"
	"focustube-ml/internal/application/viewerstats"
	"focustube-ml/internal/config"
	"focustube-ml/internal/domain/repository"
	"focustube-ml/internal/infrastructure/embedding"
	"focustube-ml/internal/infrastructure/messaging"
	"focustube-ml/internal/infrastructure/persistence/redis"
	"focustube-ml/internal/interfaces/http/handler"
	"focustube-ml/internal/interfaces/http/middleware"
	"focustube-ml/internal/interfaces/http/router"
	"focustube-ml/pkg/logger"
)

// StatsWorker stats-worker 依赖容器
type StatsWorker struct {
	Redis *redis.Client
	Stats *viewerstats.Service
}

// ProvideRedisClient Redis 未启用时返回 nil，依赖它的组件随之关闭
func ProvideRedisClient(ctx context.Context, cfg *config.Config) (*redis.Client, func(), error) {
	if !cfg.Cache.Redis.Enabled {
		logger.Info(ctx, "redis disabled, cache/rate limit/filter events/stats are off")
		return nil, func() {}, nil
	}
	client, err := redis.NewClient(ctx, &cfg.Cache.Redis)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		_ = client.Close()
	}
	return client, cleanup, nil
}

// ProvideRequiredRedisClient stats-worker 必须有 Redis
func ProvideRequiredRedisClient(ctx context.Context, cfg *config.Config) (*redis.Client, func(), error) {
	if !cfg.Cache.Redis.Enabled {
		return nil, nil, fmt.Errorf("stats-worker requires cache.redis.enabled")
	}
	return ProvideRedisClient(ctx, cfg)
}

func ProvideVectorCache(client *redis.Client) embedding.KVCache {
	if client == nil {
		return nil
	}
	return redis.NewVectorCache(client)
}

func ProvideStatsRepository(client *redis.Client) repository.ViewerStatsRepository {
	if client == nil {
		return nil
	}
	return redis.NewStatsStore(client)
}

func ProvidePinger(client *redis.Client) handler.Pinger {
	if client == nil {
		return nil
	}
	return client
}

// ProvideRouterDeps 认证与限流依赖
func ProvideRouterDeps(cfg *config.Config, client *redis.Client) router.RouterDeps {
	deps := router.RouterDeps{
		Auth: middleware.AuthConfig{
			Enabled:   cfg.Security.JWT.Enabled,
			Secret:    cfg.Security.JWT.Secret,
			Issuer:    cfg.Security.JWT.Issuer,
			SkipPaths: middleware.DefaultSkipPaths,
		},
		KeyBuilder: redis.BuildRateLimitKey,
	}
	if client != nil {
		deps.RateLimiter = redis.NewRateLimiter(client)
	}
	return deps
}

func ProvideEmbeddingProvider(ctx context.Context, cfg *config.Config) (embedding.Embedder, error) {
	return embedding.NewProvider(ctx, &cfg.Embedding)
}

func ProvideEmbeddingStack(provider embedding.Embedder, cfg *config.Config, cache embedding.KVCache) *embedding.Stack {
	return embedding.NewStack(provider, cfg, cache)
}

func ProvideCurationEmbedder(stack *embedding.Stack) curation.Embedder {
	return stack.Embedder
}

func ProvideBreakerReporter(stack *embedding.Stack) handler.BreakerReporter {
	return stack.Guard
}

// ProvideEventPublisher 过滤事件开关关闭或无 Redis 时不投递
func ProvideEventPublisher(cfg *config.Config, client *redis.Client) curation.EventPublisher {
	if client == nil || !cfg.Features.FilterEvents.Enabled {
		return nil
	}
	return messaging.NewProducer(client.Redis(), int64(cfg.Messaging.RedisStream.MaxLen))
}

// ProvidePipeline 组装过滤管线
func ProvidePipeline(cfg *config.Config, embedder curation.Embedder, publisher curation.EventPublisher) *curation.Pipeline {
	markers := make([]curation.Marker, 0, len(cfg.Ranking.Markers))
	for _, m := range cfg.Ranking.Markers {
		markers = append(markers, curation.Marker{Term: m.Term, Weight: m.Weight})
	}

	opts := []curation.Option{
		curation.WithLimits(curation.Limits{
			MaxCandidates:   cfg.Curation.MaxCandidates,
			MaxDisinterests: cfg.Curation.MaxDisinterests,
		}),
	}
	if publisher != nil {
		opts = append(opts, curation.WithEventPublisher(publisher))
	}

	return curation.NewPipeline(embedder, curation.NewLexicalScorer(markers), cfg.Curation.SemanticThreshold, opts...)
}

func ProvideHealthHandler(cfg *config.Config, pinger handler.Pinger, breaker handler.BreakerReporter) *handler.HealthHandler {
	return handler.NewHealthHandler(pinger, breaker, cfg.App.Name, cfg.App.Version)
}
