package curation

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"focustube-ml/pkg/tracer"
)

// SemanticMatch 单个文本的语义判定
type SemanticMatch struct {
	Blocked bool
	Score   float64
	Phrase  string
}

// SimilarityBlocker 基于 embedding 余弦相似度的屏蔽器
type SimilarityBlocker struct {
	embedder Embedder
}

func NewSimilarityBlocker(embedder Embedder) *SimilarityBlocker {
	return &SimilarityBlocker{embedder: embedder}
}

// ValidateThreshold 阈值必须在 [0,1] 内
func ValidateThreshold(threshold float64) error {
	if math.IsNaN(threshold) || threshold < 0 || threshold > 1 {
		return NewValidationError(fmt.Sprintf("threshold must be within [0,1], got %v", threshold))
	}
	return nil
}

// BlockMask 返回与 texts 等长的屏蔽掩码
func (b *SimilarityBlocker) BlockMask(ctx context.Context, texts, disinterests []string, threshold float64) ([]bool, error) {
	matches, err := b.Evaluate(ctx, texts, disinterests, threshold)
	if err != nil {
		return nil, err
	}
	mask := make([]bool, len(matches))
	for i, m := range matches {
		mask[i] = m.Blocked
	}
	return mask, nil
}

// Evaluate 计算每个文本与 disinterest 的最大相似度，>= threshold 即屏蔽
// disinterest 或 texts 为空时不调用模型
func (b *SimilarityBlocker) Evaluate(ctx context.Context, texts, disinterests []string, threshold float64) ([]SemanticMatch, error) {
	if err := ValidateThreshold(threshold); err != nil {
		return nil, err
	}
	matches := make([]SemanticMatch, len(texts))
	phrases := NormalizePhrases(disinterests)
	if len(texts) == 0 || len(phrases) == 0 {
		return matches, nil
	}

	ctx, span := tracer.Start(ctx, "curation.SimilarityBlocker.Evaluate")
	defer span.End()

	var textVecs, phraseVecs [][]float32
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		textVecs, err = embedUnit(gctx, b.embedder, texts)
		return err
	})
	g.Go(func() error {
		var err error
		phraseVecs, err = embedUnit(gctx, b.embedder, phrases)
		return err
	})
	if err := g.Wait(); err != nil {
		tracer.RecordError(span, err)
		return nil, err
	}
	if len(textVecs[0]) != len(phraseVecs[0]) {
		err := NewModelInferenceError(fmt.Errorf("text dimension %d != phrase dimension %d", len(textVecs[0]), len(phraseVecs[0])))
		tracer.RecordError(span, err)
		return nil, err
	}

	for i, tv := range textVecs {
		best, bestIdx := math.Inf(-1), 0
		for j, pv := range phraseVecs {
			if s := dot(tv, pv); s > best {
				best, bestIdx = s, j
			}
		}
		best = clamp(best)
		matches[i] = SemanticMatch{
			Blocked: best >= threshold,
			Score:   best,
			Phrase:  phrases[bestIdx],
		}
	}
	return matches, nil
}

// CosineSimilarity 余弦相似度，范围 [-1,1]；任一为零向量时为 0
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var ab, aa, bb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		ab += x * y
		aa += x * x
		bb += y * y
	}
	if aa == 0 || bb == 0 {
		return 0
	}
	return clamp(ab / (math.Sqrt(aa) * math.Sqrt(bb)))
}

// dot 单位向量的点积即余弦相似度
func dot(a, b []float32) float64 {
	var s float64
	for i := range a {
		s += float64(a[i]) * float64(b[i])
	}
	return s
}

func clamp(s float64) float64 {
	switch {
	case s > 1:
		return 1
	case s < -1:
		return -1
	default:
		return s
	}
}
