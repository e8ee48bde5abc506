package curation

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
)

// bagEmbedder 以词表计数作为向量，额外一维常量偏置避免零向量
type bagEmbedder struct {
	vocab []string
	calls atomic.Int32
	mu    sync.Mutex
	seen  [][]string
}

func newBagEmbedder(vocab ...string) *bagEmbedder {
	return &bagEmbedder{vocab: vocab}
}

func (e *bagEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	e.calls.Add(1)
	e.mu.Lock()
	e.seen = append(e.seen, append([]string(nil), texts...))
	e.mu.Unlock()

	out := make([][]float32, len(texts))
	for i, t := range texts {
		lower := strings.ToLower(t)
		v := make([]float32, len(e.vocab)+1)
		for j, w := range e.vocab {
			v[j] = float32(strings.Count(lower, w))
		}
		v[len(e.vocab)] = 0.1
		out[i] = v
	}
	return out, nil
}

func (e *bagEmbedder) Calls() int {
	return int(e.calls.Load())
}

// fixedEmbedder 按文本查表返回向量
type fixedEmbedder map[string][]float32

func (e fixedEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = e[t]
	}
	return out, nil
}

type failingEmbedder struct {
	err   error
	calls atomic.Int32
}

func (e *failingEmbedder) Embed(context.Context, []string) ([][]float32, error) {
	e.calls.Add(1)
	return nil, e.err
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []*FilterEvent
	err    error
}

func (p *recordingPublisher) PublishSearchFiltered(_ context.Context, event *FilterEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}
