package embedding

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/embedding/openai"
	"github.com/cloudwego/eino/components/embedding"

	"focustube-ml/internal/config"
)

// EinoEmbedder 将 eino Embedder (float64) 适配为 float32 向量
type EinoEmbedder struct {
	inner     embedding.Embedder
	batchSize int
}

// NewEinoEmbedder 创建基于 Eino OpenAI 兼容接口的 Embedder
func NewEinoEmbedder(ctx context.Context, cfg *config.EmbeddingConfig) (*EinoEmbedder, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("embedding endpoint is required")
	}

	inner, err := openai.NewEmbedder(ctx, &openai.EmbeddingConfig{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.Endpoint,
		Model:   cfg.Model,
		Timeout: cfg.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create eino embedder: %w", err)
	}

	return NewEinoAdapter(inner, cfg.BatchSize), nil
}

// NewEinoAdapter 包装任意 eino Embedder
func NewEinoAdapter(inner embedding.Embedder, batchSize int) *EinoEmbedder {
	if batchSize <= 0 {
		batchSize = 32
	}
	return &EinoEmbedder{inner: inner, batchSize: batchSize}
}

func (e *EinoEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	out := make([][]float32, 0, len(texts))
	for i := 0; i < len(texts); i += e.batchSize {
		end := min(i+e.batchSize, len(texts))
		vecs, err := e.inner.EmbedStrings(ctx, texts[i:end])
		if err != nil {
			return nil, fmt.Errorf("eino embed failed: %w", err)
		}
		if len(vecs) != end-i {
			return nil, fmt.Errorf("eino embedder returned %d vectors for %d texts", len(vecs), end-i)
		}
		for _, v := range vecs {
			f := make([]float32, len(v))
			for j, x := range v {
				f[j] = float32(x)
			}
			out = append(out, f)
		}
	}
	return out, nil
}
