package embedding

import (
	"context"
	"fmt"

	"focustube-ml/internal/config"
)

// NewProvider 按配置创建底层模型客户端
func NewProvider(ctx context.Context, cfg *config.EmbeddingConfig) (Embedder, error) {
	switch cfg.Provider {
	case "", "http":
		return NewClient(cfg), nil
	case "openai":
		return NewEinoEmbedder(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}
}

// Stack 组装后的 embedding 调用链：cache -> guard -> provider
type Stack struct {
	Embedder Embedder
	Guard    *Guard
}

// NewStack cache 为 nil 时不启用缓存
func NewStack(provider Embedder, cfg *config.Config, cache KVCache) *Stack {
	guard := NewGuard(provider, &cfg.Embedding)
	var top Embedder = guard
	if cache != nil && cfg.Cache.Embedding.Enabled {
		top = NewCachedEmbedder(guard, cache, cfg.Embedding.Model, cfg.Cache.Embedding.TTL)
	}
	return &Stack{Embedder: top, Guard: guard}
}
