//go:build wireinject
// +build wireinject

// Package wire 提供依赖注入配置
package wire

import (
	"context"

	"github.com/google/wire"

	"focustube-ml/internal/application/viewerstats"
	"focustube-ml/internal/config"
	"focustube-ml/internal/interfaces/http/handler"
	"focustube-ml/internal/interfaces/http/router"
)

// InitializeApp 初始化 ml-svc（带路由器）
func InitializeApp(ctx context.Context, cfg *config.Config) (*router.Router, func(), error) {
	wire.Build(
		RedisSet,
		EmbeddingSet,
		CurationSet,
		StatsSet,
		RouterSet,
	)
	return nil, nil, nil
}

// InitializeStatsWorker 初始化 stats-worker 依赖
func InitializeStatsWorker(ctx context.Context, cfg *config.Config) (*StatsWorker, func(), error) {
	wire.Build(
		ProvideRequiredRedisClient,
		ProvideStatsRepository,
		viewerstats.NewService,
		wire.Struct(new(StatsWorker), "*"),
	)
	return nil, nil, nil
}

// RedisSet Redis 及其派生组件
var RedisSet = wire.NewSet(
	ProvideRedisClient,
	ProvideVectorCache,
	ProvideRouterDeps,
)

// EmbeddingSet embedding 调用链
var EmbeddingSet = wire.NewSet(
	ProvideEmbeddingProvider,
	ProvideEmbeddingStack,
	ProvideCurationEmbedder,
	ProvideBreakerReporter,
)

// CurationSet 过滤管线
var CurationSet = wire.NewSet(
	ProvideEventPublisher,
	ProvidePipeline,
)

// StatsSet 观众统计
var StatsSet = wire.NewSet(
	ProvideStatsRepository,
	viewerstats.NewService,
)

// RouterSet 路由器提供者集合
var RouterSet = wire.NewSet(
	ProvidePinger,
	ProvideHealthHandler,
	handler.NewVideoHandler,
	handler.NewViewerHandler,
	wire.Struct(new(router.RouterHandlers), "*"),
	router.NewWithDeps,
)
