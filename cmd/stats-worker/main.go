// Package main 观众统计消费者入口（stats-worker）
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"focustube-ml/internal/config"
	"focustube-ml/internal/infrastructure/messaging"
	"focustube-ml/internal/wire"
	"focustube-ml/pkg/logger"
	"focustube-ml/pkg/tracer"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Observability.Logging.Level, cfg.Observability.Logging.Format)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdown, err := tracer.Init(ctx, tracer.Config{
		ServiceName:    "stats-worker",
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Env,
		Endpoint:       cfg.Observability.Tracing.Endpoint,
		SampleRate:     cfg.Observability.Tracing.SampleRate,
		Enabled:        cfg.Observability.Tracing.Enabled,
	})
	if err != nil {
		logger.Fatal(ctx, "failed to init tracer", err)
	}
	defer func() { _ = shutdown(context.Background()) }()

	deps, cleanup, err := wire.InitializeStatsWorker(ctx, cfg)
	if err != nil {
		logger.Fatal(ctx, "failed to initialize stats-worker", err)
	}
	defer cleanup()

	streamCfg := cfg.Messaging.RedisStream
	consumer := messaging.NewConsumer(deps.Redis.Redis(), messaging.ConsumerConfig{
		Stream:        messaging.StreamCurationFiltered,
		Group:         messaging.ConsumerGroupStatsWorker.WithPrefix(streamCfg.ConsumerGroupPrefix),
		ConsumerName:  hostnameConsumerName(),
		BlockTimeout:  streamCfg.BlockTimeout,
		ClaimInterval: streamCfg.ClaimInterval,
		RetryLimit:    streamCfg.RetryLimit,
		Backoff: messaging.BackoffConfig{
			Initial:    streamCfg.RetryBackoff.Initial,
			Max:        streamCfg.RetryBackoff.Max,
			Multiplier: streamCfg.RetryBackoff.Multiplier,
		},
	})

	consumer.RegisterHandler(messaging.TypeSearchFiltered, func(ctx context.Context, msg *messaging.Message) error {
		var payload messaging.SearchFilteredPayload
		if err := msg.UnmarshalPayload(&payload); err != nil {
			return err
		}
		if payload.ViewerID == "" {
			payload.ViewerID = msg.ViewerID
		}
		return deps.Stats.Record(ctx, msg.ID, payload.Delta())
	})

	if err := consumer.Start(ctx); err != nil {
		logger.Fatal(ctx, "failed to start consumer", err)
	}
	go consumer.MonitorDLQ(ctx, 100)

	logger.Info(ctx, "stats-worker started", "stream", messaging.StreamCurationFiltered)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info(ctx, "stats-worker shutting down")
	consumer.Stop()
}

func hostnameConsumerName() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "worker"
	}
	return fmt.Sprintf("%s-%d", host, os.Getpid())
}
