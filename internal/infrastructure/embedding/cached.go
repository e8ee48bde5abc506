package embedding

import (
	"context"
	"crypto/sha1"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"focustube-ml/pkg/logger"
	"focustube-ml/pkg/metrics"
)

const cacheKeyPrefix = "emb:"

// KVCache 向量缓存存储，MGet 对未命中的键返回 nil
type KVCache interface {
	MGet(ctx context.Context, keys []string) ([][]byte, error)
	SetMany(ctx context.Context, entries map[string][]byte, ttl time.Duration) error
}

// CachedEmbedder 按 sha1(model|text) 缓存向量；缓存故障按未命中处理
type CachedEmbedder struct {
	next  Embedder
	cache KVCache
	model string
	ttl   time.Duration
	group singleflight.Group
}

func NewCachedEmbedder(next Embedder, cache KVCache, model string, ttl time.Duration) *CachedEmbedder {
	return &CachedEmbedder{
		next:  next,
		cache: cache,
		model: model,
		ttl:   ttl,
	}
}

// CacheKey 内容寻址的缓存键
func CacheKey(model, text string) string {
	sum := sha1.Sum([]byte(model + "|" + text))
	return cacheKeyPrefix + hex.EncodeToString(sum[:])
}

func (c *CachedEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	keys := make([]string, len(texts))
	for i, t := range texts {
		keys[i] = CacheKey(c.model, t)
	}

	out := make([][]float32, len(texts))
	cached, err := c.cache.MGet(ctx, keys)
	if err != nil || len(cached) != len(keys) {
		metrics.EmbeddingCacheTotal.WithLabelValues("error").Inc()
		logger.Warn(ctx, "embedding cache read failed, falling back to model", "error", fmt.Sprint(err))
		cached = make([][]byte, len(keys))
	}

	// 同一批内重复文本只计算一次
	missIdx := make(map[string][]int)
	var missKeys, missTexts []string
	for i, raw := range cached {
		if raw != nil {
			if vec, ok := decodeVector(raw); ok {
				out[i] = vec
				metrics.EmbeddingCacheTotal.WithLabelValues("hit").Inc()
				continue
			}
		}
		metrics.EmbeddingCacheTotal.WithLabelValues("miss").Inc()
		if _, seen := missIdx[keys[i]]; !seen {
			missKeys = append(missKeys, keys[i])
			missTexts = append(missTexts, texts[i])
		}
		missIdx[keys[i]] = append(missIdx[keys[i]], i)
	}
	if len(missTexts) == 0 {
		return out, nil
	}

	vecs, err := c.load(ctx, missKeys, missTexts)
	if err != nil {
		return nil, err
	}

	entries := make(map[string][]byte, len(missKeys))
	for j, key := range missKeys {
		for _, i := range missIdx[key] {
			out[i] = cloneVector(vecs[j])
		}
		entries[key] = encodeVector(vecs[j])
	}
	if err := c.cache.SetMany(ctx, entries, c.ttl); err != nil {
		metrics.EmbeddingCacheTotal.WithLabelValues("error").Inc()
		logger.Warn(ctx, "embedding cache write failed", "error", err.Error(), "entries", len(entries))
	}
	return out, nil
}

// load 合并并发的相同未命中批次
func (c *CachedEmbedder) load(ctx context.Context, keys, texts []string) ([][]float32, error) {
	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan(strings.Join(keys, ","), func() (any, error) {
		vecs, err := c.next.Embed(shared, texts)
		if err != nil {
			return nil, err
		}
		if len(vecs) != len(texts) {
			return nil, fmt.Errorf("embedder returned %d vectors for %d texts", len(vecs), len(texts))
		}
		return vecs, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([][]float32), nil
	}
}

func encodeVector(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, x := range v {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(x))
	}
	return buf
}

func decodeVector(b []byte) ([]float32, bool) {
	if len(b) == 0 || len(b)%4 != 0 {
		return nil, false
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
	}
	return v, true
}

func cloneVector(v []float32) []float32 {
	return append([]float32(nil), v...)
}
