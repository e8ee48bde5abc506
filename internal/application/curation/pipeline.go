package curation

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"focustube-ml/internal/domain/entity"
	"focustube-ml/pkg/logger"
	"focustube-ml/pkg/metrics"
	"focustube-ml/pkg/tracer"
)

// FilterEvent 一次过滤的摘要，用于异步统计
type FilterEvent struct {
	ViewerID   string
	Query      string
	Candidates int
	Blocked    int
	// Reasons 按屏蔽原因计数，键为 BlockReason.String()
	Reasons    map[string]int
	OccurredAt time.Time
}

// EventPublisher 过滤事件投递端口
type EventPublisher interface {
	PublishSearchFiltered(ctx context.Context, event *FilterEvent) error
}

// Limits 单次请求规模上限，<=0 表示不限
type Limits struct {
	MaxCandidates   int
	MaxDisinterests int
}

// Pipeline 关键词 + 语义双路过滤，再排序
type Pipeline struct {
	similarity *SimilarityBlocker
	ranker     *Ranker
	threshold  float64
	limits     Limits
	publisher  EventPublisher
}

type Option func(*Pipeline)

func WithEventPublisher(p EventPublisher) Option {
	return func(pl *Pipeline) { pl.publisher = p }
}

func WithLimits(l Limits) Option {
	return func(pl *Pipeline) { pl.limits = l }
}

// NewPipeline 创建过滤管线，threshold 为默认语义阈值
func NewPipeline(embedder Embedder, scorer Scorer, threshold float64, opts ...Option) *Pipeline {
	p := &Pipeline{
		similarity: NewSimilarityBlocker(embedder),
		ranker:     NewRanker(scorer),
		threshold:  threshold,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Rank 只排序不过滤
func (p *Pipeline) Rank(ctx context.Context, videos []entity.Video) ([]entity.Video, error) {
	if err := p.checkCandidates(len(videos)); err != nil {
		return nil, err
	}
	_, span := tracer.Start(ctx, "curation.Pipeline.Rank")
	defer span.End()
	span.SetAttributes(attribute.Int("curation.candidates", len(videos)))

	return p.ranker.Rank(videos), nil
}

// Search 过滤并排序；embedding 失败时整个请求失败，不返回部分结果
func (p *Pipeline) Search(ctx context.Context, in SearchInput) (*SearchOutput, error) {
	start := time.Now()
	out, err := p.search(ctx, in)
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.CurationSearchDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())
	return out, err
}

func (p *Pipeline) search(ctx context.Context, in SearchInput) (*SearchOutput, error) {
	threshold := p.threshold
	if in.Threshold != nil {
		threshold = *in.Threshold
	}
	if err := ValidateThreshold(threshold); err != nil {
		return nil, err
	}
	if err := p.checkCandidates(len(in.Candidates)); err != nil {
		return nil, err
	}
	if p.limits.MaxDisinterests > 0 && len(in.Disinterests) > p.limits.MaxDisinterests {
		return nil, NewValidationError(fmt.Sprintf("too many disinterests: %d > %d", len(in.Disinterests), p.limits.MaxDisinterests))
	}

	ctx, span := tracer.Start(ctx, "curation.Pipeline.Search")
	defer span.End()

	phrases := NormalizePhrases(in.Disinterests)
	span.SetAttributes(
		attribute.Int("curation.candidates", len(in.Candidates)),
		attribute.Int("curation.disinterests", len(phrases)),
		attribute.Float64("curation.threshold", threshold),
	)

	if len(in.Candidates) == 0 {
		return &SearchOutput{Videos: []entity.Video{}, Blocked: []BlockedVideo{}}, nil
	}

	keywordTexts := make([]string, len(in.Candidates))
	embeddingTexts := make([]string, len(in.Candidates))
	for i, v := range in.Candidates {
		keywordTexts[i] = v.KeywordText()
		embeddingTexts[i] = v.EmbeddingText()
	}

	matcher := NewKeywordMatcher(phrases)
	semantic, err := p.similarity.Evaluate(ctx, embeddingTexts, phrases, threshold)
	if err != nil {
		tracer.RecordError(span, err)
		logger.Warn(ctx, "semantic evaluation failed", "error", err.Error(), "candidates", len(in.Candidates))
		return nil, err
	}

	out := &SearchOutput{
		Videos:  make([]entity.Video, 0, len(in.Candidates)),
		Blocked: []BlockedVideo{},
	}
	reasons := make(map[string]int)
	for i, v := range in.Candidates {
		verdict := Verdict{Score: semantic[i].Score}
		if phrase, ok := matcher.Match(keywordTexts[i]); ok {
			verdict.Blocked = true
			verdict.Reason |= ReasonKeyword
			verdict.Phrase = phrase
		}
		if semantic[i].Blocked {
			verdict.Blocked = true
			verdict.Reason |= ReasonSemantic
			if verdict.Phrase == "" {
				verdict.Phrase = semantic[i].Phrase
			}
		}

		if !verdict.Blocked {
			out.Videos = append(out.Videos, v)
			continue
		}
		out.Blocked = append(out.Blocked, BlockedVideo{Video: v, Verdict: verdict})
		reasons[verdict.Reason.String()]++
	}
	out.BlockedCount = len(out.Blocked)
	out.Videos = p.ranker.Rank(out.Videos)

	metrics.CurationCandidatesTotal.Add(float64(len(in.Candidates)))
	for reason, n := range reasons {
		metrics.CurationBlockedTotal.WithLabelValues(reason).Add(float64(n))
	}
	span.SetAttributes(attribute.Int("curation.blocked", out.BlockedCount))

	logger.Debug(ctx, "search filtered",
		"query", in.Query,
		"candidates", len(in.Candidates),
		"blocked", out.BlockedCount,
		"threshold", threshold,
	)

	p.publish(ctx, in, out, reasons)
	return out, nil
}

func (p *Pipeline) checkCandidates(n int) error {
	if p.limits.MaxCandidates > 0 && n > p.limits.MaxCandidates {
		return NewValidationError(fmt.Sprintf("too many videos: %d > %d", n, p.limits.MaxCandidates))
	}
	return nil
}

// publish 投递失败只记录日志
func (p *Pipeline) publish(ctx context.Context, in SearchInput, out *SearchOutput, reasons map[string]int) {
	if p.publisher == nil || in.ViewerID == "" {
		return
	}
	event := &FilterEvent{
		ViewerID:   in.ViewerID,
		Query:      in.Query,
		Candidates: len(in.Candidates),
		Blocked:    out.BlockedCount,
		Reasons:    reasons,
		OccurredAt: time.Now().UTC(),
	}
	if err := p.publisher.PublishSearchFiltered(ctx, event); err != nil {
		logger.Warn(ctx, "failed to publish filter event", "error", err.Error(), "viewer_id", in.ViewerID)
	}
}
