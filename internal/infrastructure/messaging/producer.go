package messaging

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"focustube-ml/internal/application/curation"
	"focustube-ml/pkg/logger"
	pkgtracer "focustube-ml/pkg/tracer"
)

var tracer = otel.Tracer("messaging")

// Producer 消息生产者
type Producer struct {
	client *redis.Client
	maxLen int64
}

// NewProducer 创建消息生产者
func NewProducer(client *redis.Client, maxLen int64) *Producer {
	if maxLen <= 0 {
		maxLen = 100000
	}
	return &Producer{
		client: client,
		maxLen: maxLen,
	}
}

// Publish 发布消息到指定流
func (p *Producer) Publish(ctx context.Context, stream Stream, msg *Message) (string, error) {
	ctx, span := tracer.Start(ctx, "producer.Publish",
		trace.WithAttributes(
			attribute.String("stream", string(stream)),
			attribute.String("message.id", msg.ID),
			attribute.String("message.type", msg.Type),
		))
	defer span.End()

	data, err := msg.marshal()
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to marshal message: %w", err)
	}

	result, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: string(stream),
		MaxLen: p.maxLen,
		Approx: true,
		Values: map[string]any{
			"data": data,
		},
	}).Result()
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to publish message: %w", err)
	}

	span.SetAttributes(attribute.String("stream.message_id", result))
	return result, nil
}

// PublishSearchFiltered 投递过滤事件，供统计 worker 消费
func (p *Producer) PublishSearchFiltered(ctx context.Context, event *curation.FilterEvent) error {
	msg, err := NewMessage("", TypeSearchFiltered, event.ViewerID, toPayload(event))
	if err != nil {
		return err
	}
	attachContext(ctx, msg)

	_, err = p.Publish(ctx, StreamCurationFiltered, msg)
	return err
}

func toPayload(event *curation.FilterEvent) *SearchFilteredPayload {
	return &SearchFilteredPayload{
		ViewerID:   event.ViewerID,
		Query:      event.Query,
		Candidates: event.Candidates,
		Blocked:    event.Blocked,
		Reasons:    event.Reasons,
		OccurredAt: event.OccurredAt,
	}
}

// attachContext 把 request_id / trace_id 带到消费端日志
func attachContext(ctx context.Context, msg *Message) {
	if reqID, ok := ctx.Value(logger.RequestIDKey).(string); ok && reqID != "" {
		msg.SetMetadata("request_id", reqID)
	}
	if traceID := pkgtracer.TraceID(ctx); traceID != "" {
		msg.SetMetadata("trace_id", traceID)
	}
}
