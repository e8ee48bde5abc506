// Package eino 为 eino 组件注册指标与追踪回调
package eino

import (
	"context"
	"time"

	einocb "github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components/embedding"
	cbtemplate "github.com/cloudwego/eino/utils/callbacks"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"focustube-ml/pkg/metrics"
	pkgtracer "focustube-ml/pkg/tracer"
)

// startTimeKey 记录调用开始时间，OnEnd/OnError 据此计算耗时
type startTimeKey struct{}

// newEmbeddingCallbackHandler 记录 eino embedding 调用的 span、耗时与 token 用量
func newEmbeddingCallbackHandler() *cbtemplate.EmbeddingCallbackHandler {
	return &cbtemplate.EmbeddingCallbackHandler{
		OnStart: func(ctx context.Context, info *einocb.RunInfo, input *embedding.CallbackInput) context.Context {
			ctx = context.WithValue(ctx, startTimeKey{}, time.Now())

			attrs := []attribute.KeyValue{
				attribute.String("embedding.model", modelFromInput(input)),
			}
			if input != nil {
				attrs = append(attrs, attribute.Int("embedding.texts", len(input.Texts)))
			}
			if info != nil {
				attrs = append(attrs,
					attribute.String("eino.node_name", info.Name),
					attribute.String("eino.type", info.Type),
				)
			}

			ctx, _ = otel.Tracer("eino").Start(ctx, "eino.embed", trace.WithAttributes(attrs...))
			return ctx
		},

		OnEnd: func(ctx context.Context, info *einocb.RunInfo, output *embedding.CallbackOutput) context.Context {
			model := modelFromOutput(output)
			metrics.EinoEmbeddingDuration.WithLabelValues(model, "success").Observe(elapsedSeconds(ctx))

			span := trace.SpanFromContext(ctx)
			if output != nil && output.TokenUsage != nil {
				metrics.EinoEmbeddingTokens.WithLabelValues(model).Add(float64(output.TokenUsage.PromptTokens))
				span.SetAttributes(attribute.Int("embedding.prompt_tokens", output.TokenUsage.PromptTokens))
			}
			span.End()
			return ctx
		},

		OnError: func(ctx context.Context, info *einocb.RunInfo, err error) context.Context {
			model := ""
			if info != nil {
				model = info.Type
			}
			metrics.EinoEmbeddingDuration.WithLabelValues(model, "error").Observe(elapsedSeconds(ctx))

			span := trace.SpanFromContext(ctx)
			pkgtracer.RecordError(span, err)
			span.End()
			return ctx
		},
	}
}

// elapsedSeconds 取不到开始时间时返回 0
func elapsedSeconds(ctx context.Context) float64 {
	start, ok := ctx.Value(startTimeKey{}).(time.Time)
	if !ok || start.IsZero() {
		return 0
	}
	return time.Since(start).Seconds()
}

func modelFromInput(in *embedding.CallbackInput) string {
	if in == nil || in.Config == nil {
		return ""
	}
	return in.Config.Model
}

func modelFromOutput(out *embedding.CallbackOutput) string {
	if out == nil || out.Config == nil {
		return ""
	}
	return out.Config.Model
}
