package eino

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cloudwego/eino/components/embedding"
)

func TestElapsedSeconds(t *testing.T) {
	if got := elapsedSeconds(context.Background()); got != 0 {
		t.Errorf("elapsedSeconds() without start = %v, want 0", got)
	}

	ctx := context.WithValue(context.Background(), startTimeKey{}, time.Now().Add(-time.Second))
	if got := elapsedSeconds(ctx); got < 1 {
		t.Errorf("elapsedSeconds() = %v, want >= 1", got)
	}
}

func TestModelNames(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"nil input", modelFromInput(nil), ""},
		{"input without config", modelFromInput(&embedding.CallbackInput{}), ""},
		{"input", modelFromInput(&embedding.CallbackInput{Config: &embedding.Config{Model: "m"}}), "m"},
		{"nil output", modelFromOutput(nil), ""},
		{"output", modelFromOutput(&embedding.CallbackOutput{Config: &embedding.Config{Model: "m2"}}), "m2"},
	}

	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s: got %q, want %q", tt.name, tt.got, tt.want)
		}
	}
}

func TestEmbeddingCallbackLifecycle(t *testing.T) {
	h := newEmbeddingCallbackHandler()
	ctx := h.OnStart(context.Background(), nil, &embedding.CallbackInput{Texts: []string{"a", "b"}})
	if _, ok := ctx.Value(startTimeKey{}).(time.Time); !ok {
		t.Fatal("OnStart should record start time")
	}

	h.OnEnd(ctx, nil, &embedding.CallbackOutput{
		Config:     &embedding.Config{Model: "m"},
		TokenUsage: &embedding.TokenUsage{PromptTokens: 4},
	})
	h.OnError(ctx, nil, errors.New("boom"))
}
