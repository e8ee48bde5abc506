package embedding

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/components/embedding"
)

type fakeEino struct {
	batches [][]string
	err     error
}

func (f *fakeEino) EmbedStrings(_ context.Context, texts []string, _ ...embedding.Option) ([][]float64, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.batches = append(f.batches, texts)
	out := make([][]float64, len(texts))
	for i := range texts {
		out[i] = []float64{0.5, float64(len(texts[i]))}
	}
	return out, nil
}

func TestEinoAdapterConvertsAndBatches(t *testing.T) {
	inner := &fakeEino{}
	e := NewEinoAdapter(inner, 2)

	vecs, err := e.Embed(context.Background(), []string{"a", "bb", "ccc"})
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	if len(inner.batches) != 2 {
		t.Errorf("batches = %d, want 2", len(inner.batches))
	}
	if len(vecs) != 3 || vecs[2][1] != 3 || vecs[0][0] != 0.5 {
		t.Errorf("vecs = %v", vecs)
	}
}

func TestEinoAdapterError(t *testing.T) {
	e := NewEinoAdapter(&fakeEino{err: errors.New("401 unauthorized")}, 8)
	if _, err := e.Embed(context.Background(), []string{"a"}); err == nil {
		t.Fatal("expected error")
	}
}
