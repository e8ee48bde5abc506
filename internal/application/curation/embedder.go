package curation

import (
	"context"
	"fmt"
	"math"
)

// Embedder 文本向量化端口，实现由基础设施层提供
// 返回向量与输入一一对应、顺序一致
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// EmbedderFunc 函数适配器
type EmbedderFunc func(ctx context.Context, texts []string) ([][]float32, error)

func (f EmbedderFunc) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	return f(ctx, texts)
}

// embedUnit 调用模型并校验数量与维度，返回 L2 归一化后的副本
// 空输入不调用模型
func embedUnit(ctx context.Context, e Embedder, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, NewModelInferenceError(err)
	}

	raw, err := e.Embed(ctx, texts)
	if err != nil {
		return nil, NewModelInferenceError(err)
	}
	if len(raw) != len(texts) {
		return nil, NewModelInferenceError(fmt.Errorf("embedder returned %d vectors for %d texts", len(raw), len(texts)))
	}

	dim := len(raw[0])
	if dim == 0 {
		return nil, NewModelInferenceError(fmt.Errorf("embedder returned empty vector"))
	}
	out := make([][]float32, len(raw))
	for i, v := range raw {
		if len(v) != dim {
			return nil, NewModelInferenceError(fmt.Errorf("vector %d has dimension %d, want %d", i, len(v), dim))
		}
		out[i] = Normalize(v)
	}
	return out, nil
}

// Normalize 返回单位长度副本，零向量保持为零
func Normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	out := make([]float32, len(v))
	if sum == 0 {
		return out
	}
	inv := 1 / math.Sqrt(sum)
	for i, x := range v {
		out[i] = float32(float64(x) * inv)
	}
	return out
}
