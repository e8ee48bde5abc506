package curation

import (
	"context"
	"math"
	"testing"
)

func TestNormalize(t *testing.T) {
	got := Normalize([]float32{3, 4})
	if math.Abs(float64(got[0])-0.6) > 1e-6 || math.Abs(float64(got[1])-0.8) > 1e-6 {
		t.Errorf("Normalize([3 4]) = %v", got)
	}

	zero := Normalize([]float32{0, 0, 0})
	for i, x := range zero {
		if x != 0 {
			t.Errorf("zero[%d] = %v, want 0", i, x)
		}
	}
}

func TestEmbedUnitValidatesProviderOutput(t *testing.T) {
	tests := []struct {
		name string
		emb  Embedder
	}{
		{
			name: "wrong count",
			emb: EmbedderFunc(func(context.Context, []string) ([][]float32, error) {
				return [][]float32{{1, 0}}, nil
			}),
		},
		{
			name: "inconsistent dimension",
			emb: EmbedderFunc(func(context.Context, []string) ([][]float32, error) {
				return [][]float32{{1, 0}, {1, 0, 0}}, nil
			}),
		},
		{
			name: "empty vector",
			emb: EmbedderFunc(func(context.Context, []string) ([][]float32, error) {
				return [][]float32{{}, {}}, nil
			}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := embedUnit(context.Background(), tt.emb, []string{"a", "b"})
			if !IsModelInferenceError(err) {
				t.Errorf("error = %v, want model inference error", err)
			}
		})
	}
}

func TestEmbedUnitEmptyInputSkipsModel(t *testing.T) {
	emb := newBagEmbedder("x")
	out, err := embedUnit(context.Background(), emb, nil)
	if err != nil {
		t.Fatalf("embedUnit() error = %v", err)
	}
	if len(out) != 0 || emb.Calls() != 0 {
		t.Errorf("out = %v, calls = %d", out, emb.Calls())
	}
}

func TestEmbedUnitCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	emb := newBagEmbedder("x")
	if _, err := embedUnit(ctx, emb, []string{"a"}); !IsModelInferenceError(err) {
		t.Errorf("error = %v, want model inference error", err)
	}
	if emb.Calls() != 0 {
		t.Errorf("embedder called %d times, want 0", emb.Calls())
	}
}
