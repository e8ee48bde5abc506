package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"focustube-ml/pkg/logger"
	"focustube-ml/pkg/metrics"
	pkgtracer "focustube-ml/pkg/tracer"
)

var errRetriesExhausted = errors.New("message exceeded max retries")

// MessageHandler 消息处理函数
type MessageHandler func(ctx context.Context, msg *Message) error

// Consumer 基于消费者组的 Redis Streams 消费者，失败消息留在 PEL 中按退避重投
type Consumer struct {
	client *redis.Client
	cfg    ConsumerConfig
	// reclaimIdle 其他消费者的消息空闲超过该时长才接管
	reclaimIdle time.Duration

	mu       sync.RWMutex
	handlers map[string]MessageHandler
	cancel   context.CancelFunc
	done     chan struct{}
}

// ConsumerConfig 消费者配置，零值字段使用默认值
type ConsumerConfig struct {
	Stream        Stream
	Group         ConsumerGroup
	ConsumerName  string
	BlockTimeout  time.Duration
	ClaimInterval time.Duration
	RetryLimit    int
	Backoff       BackoffConfig
	// BatchSize 单次 XREADGROUP 读取条数
	BatchSize int64
}

func (cfg ConsumerConfig) withDefaults() ConsumerConfig {
	if cfg.BlockTimeout <= 0 {
		cfg.BlockTimeout = 5 * time.Second
	}
	if cfg.ClaimInterval <= 0 {
		cfg.ClaimInterval = 30 * time.Second
	}
	if cfg.RetryLimit <= 0 {
		cfg.RetryLimit = 3
	}
	if cfg.Backoff.Initial <= 0 {
		cfg.Backoff = DefaultBackoffConfig()
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 10
	}
	return cfg
}

func NewConsumer(client *redis.Client, cfg ConsumerConfig) *Consumer {
	cfg = cfg.withDefaults()
	return &Consumer{
		client:      client,
		cfg:         cfg,
		reclaimIdle: max(5*time.Minute, cfg.Backoff.Max*2),
		handlers:    make(map[string]MessageHandler),
	}
}

// RegisterHandler 按消息类型注册处理器，需在 Start 之前调用
func (c *Consumer) RegisterHandler(msgType string, handler MessageHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[msgType] = handler
}

func (c *Consumer) handler(msgType string) (MessageHandler, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	h, ok := c.handlers[msgType]
	return h, ok
}

// Start 确保消费者组存在，然后在后台消费直到 Stop 或 ctx 结束
func (c *Consumer) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		return errors.New("consumer already running")
	}

	err := c.client.XGroupCreateMkStream(ctx, c.streamName(), string(c.cfg.Group), "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("create consumer group %s: %w", c.cfg.Group, err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.done = make(chan struct{})
	go c.run(runCtx, c.done)
	return nil
}

// Stop 等待正在处理的批次结束
func (c *Consumer) Stop() {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.cancel = nil
	c.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (c *Consumer) streamName() string {
	return string(c.cfg.Stream)
}

func (c *Consumer) run(ctx context.Context, done chan<- struct{}) {
	defer close(done)

	logger.Info(ctx, "consumer started",
		"stream", c.cfg.Stream,
		"group", c.cfg.Group,
		"consumer", c.cfg.ConsumerName,
	)
	defer logger.Info(context.WithoutCancel(ctx), "consumer stopped", "stream", c.cfg.Stream)

	claimTicker := time.NewTicker(c.cfg.ClaimInterval)
	defer claimTicker.Stop()
	c.reclaimStale(ctx)

	for ctx.Err() == nil {
		select {
		case <-claimTicker.C:
			c.reclaimStale(ctx)
		default:
		}
		c.processDuePending(ctx)

		streams, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    string(c.cfg.Group),
			Consumer: c.cfg.ConsumerName,
			Streams:  []string{c.streamName(), ">"},
			Count:    c.cfg.BatchSize,
			Block:    c.cfg.BlockTimeout,
		}).Result()
		switch {
		case err == nil:
		case errors.Is(err, redis.Nil) || ctx.Err() != nil:
			continue
		default:
			logger.Error(ctx, "failed to read from stream", err, "stream", c.cfg.Stream)
			select {
			case <-ctx.Done():
			case <-time.After(time.Second):
			}
			continue
		}

		for _, s := range streams {
			for _, xmsg := range s.Messages {
				c.processMessage(ctx, xmsg)
			}
		}
	}
}

// decodeMessage 从流条目中取出 data 字段并解析
func decodeMessage(xmsg redis.XMessage) (*Message, error) {
	raw, ok := xmsg.Values["data"].(string)
	if !ok {
		return nil, fmt.Errorf("stream entry %s has no data field", xmsg.ID)
	}
	var msg Message
	if err := json.Unmarshal([]byte(raw), &msg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal message %s: %w", xmsg.ID, err)
	}
	return &msg, nil
}

// messageContext 把生产端带过来的标识注入日志上下文
func messageContext(ctx context.Context, msg *Message) context.Context {
	if msg.ViewerID != "" {
		ctx = logger.WithContext(ctx, logger.ViewerIDKey, msg.ViewerID)
	}
	if reqID := msg.GetMetadata("request_id"); reqID != "" {
		ctx = logger.WithContext(ctx, logger.RequestIDKey, reqID)
	}
	if traceID := msg.GetMetadata("trace_id"); traceID != "" {
		ctx = logger.WithContext(ctx, logger.TraceIDKey, traceID)
	}
	return ctx
}

func (c *Consumer) processMessage(ctx context.Context, xmsg redis.XMessage) {
	ctx, span := tracer.Start(ctx, "consumer.processMessage",
		trace.WithAttributes(
			attribute.String("stream", c.streamName()),
			attribute.String("stream.message_id", xmsg.ID),
		))
	defer span.End()

	msg, err := decodeMessage(xmsg)
	if err != nil {
		// 格式错误的条目重试也无法恢复
		logger.Error(ctx, "dropping malformed stream entry", err, "message_id", xmsg.ID)
		c.record("malformed")
		c.ack(ctx, xmsg.ID)
		return
	}

	ctx = messageContext(ctx, msg)
	span.SetAttributes(
		attribute.String("message.id", msg.ID),
		attribute.String("message.type", msg.Type),
	)

	h, ok := c.handler(msg.Type)
	if !ok {
		logger.Warn(ctx, "no handler for message type", "type", msg.Type)
		c.record("skipped")
		c.ack(ctx, xmsg.ID)
		return
	}

	if err := h(ctx, msg); err != nil {
		pkgtracer.RecordError(span, err)
		logger.Error(ctx, "handler failed", err, "message_id", msg.ID)
		c.record("failed")
		c.handleFailure(ctx, xmsg, msg, err)
		return
	}

	c.record("success")
	c.ack(ctx, xmsg.ID)
}

func (c *Consumer) record(status string) {
	metrics.RedisStreamProcessed.WithLabelValues(c.streamName(), status).Inc()
}

// ack 在消费者停止时也要完成
func (c *Consumer) ack(ctx context.Context, id string) {
	if err := c.client.XAck(context.WithoutCancel(ctx), c.streamName(), string(c.cfg.Group), id).Err(); err != nil {
		logger.Error(ctx, "failed to ack message", err, "message_id", id)
	}
}

func (c *Consumer) handleFailure(ctx context.Context, xmsg redis.XMessage, msg *Message, err error) {
	retryCount := c.getRetryCount(ctx, xmsg.ID)

	if retryCount >= c.cfg.RetryLimit {
		logger.Warn(ctx, "message moved to DLQ after max retries",
			"message_id", msg.ID,
			"retry_count", retryCount,
		)
		c.moveToDLQ(ctx, msg, err)
		c.ack(ctx, xmsg.ID)
		return
	}
	logger.Info(ctx, "message left pending for retry",
		"message_id", msg.ID,
		"retry_count", retryCount,
	)
}

// getRetryCount 通过 XPENDING 获取投递次数
func (c *Consumer) getRetryCount(ctx context.Context, messageID string) int {
	pending, err := c.client.XPendingExt(ctx, &redis.XPendingExtArgs{
		Stream: c.streamName(),
		Group:  string(c.cfg.Group),
		Start:  messageID,
		End:    messageID,
		Count:  1,
	}).Result()
	if err != nil || len(pending) == 0 {
		return 0
	}
	return int(pending[0].RetryCount)
}

func (c *Consumer) moveToDLQ(ctx context.Context, msg *Message, cause error) {
	dlqStream := c.cfg.Stream.DLQStream()

	data, err := json.Marshal(map[string]any{
		"original_stream": c.streamName(),
		"data":            msg,
		"error":           cause.Error(),
		"failed_at":       time.Now().Unix(),
	})
	if err != nil {
		logger.Error(ctx, "failed to marshal DLQ entry", err, "message_id", msg.ID)
		return
	}

	err = c.client.XAdd(ctx, &redis.XAddArgs{
		Stream: dlqStream,
		Values: map[string]any{"data": string(data)},
	}).Err()
	if err != nil {
		logger.Error(ctx, "failed to write DLQ entry", err, "message_id", msg.ID)
		return
	}
	c.record("dead_lettered")
}

// claim 把消息转给当前消费者
func (c *Consumer) claim(ctx context.Context, id string, minIdle time.Duration) []redis.XMessage {
	claimed, err := c.client.XClaim(ctx, &redis.XClaimArgs{
		Stream:   c.streamName(),
		Group:    string(c.cfg.Group),
		Consumer: c.cfg.ConsumerName,
		MinIdle:  minIdle,
		Messages: []string{id},
	}).Result()
	if err != nil {
		logger.Error(ctx, "failed to claim pending message", err, "message_id", id)
		return nil
	}
	return claimed
}

// deadLetter 认领超出重试上限的消息并转入死信队列
func (c *Consumer) deadLetter(ctx context.Context, id string, minIdle time.Duration) {
	for _, xmsg := range c.claim(ctx, id, minIdle) {
		if msg, err := decodeMessage(xmsg); err == nil {
			c.moveToDLQ(ctx, msg, errRetriesExhausted)
		}
		c.ack(ctx, xmsg.ID)
	}
}

func (c *Consumer) pending(ctx context.Context, consumer string) []redis.XPendingExt {
	pending, err := c.client.XPendingExt(ctx, &redis.XPendingExtArgs{
		Stream:   c.streamName(),
		Group:    string(c.cfg.Group),
		Start:    "-",
		End:      "+",
		Count:    20,
		Consumer: consumer,
	}).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
			logger.Error(ctx, "failed to query pending messages", err, "stream", c.cfg.Stream)
		}
		return nil
	}
	return pending
}

// processDuePending 按退避时间重投本消费者名下的待确认消息
func (c *Consumer) processDuePending(ctx context.Context) {
	for _, p := range c.pending(ctx, c.cfg.ConsumerName) {
		retryCount := int(p.RetryCount)
		if retryCount >= c.cfg.RetryLimit {
			c.deadLetter(ctx, p.ID, 0)
			continue
		}

		backoff := c.cfg.Backoff.CalculateBackoff(retryCount)
		if p.Idle < backoff {
			continue
		}
		for _, xmsg := range c.claim(ctx, p.ID, backoff) {
			c.processMessage(ctx, xmsg)
		}
	}
}

// reclaimStale 接管其他消费者长时间未确认的消息
func (c *Consumer) reclaimStale(ctx context.Context) {
	if c.reclaimIdle <= 0 {
		return
	}

	for _, p := range c.pending(ctx, "") {
		if p.Consumer == c.cfg.ConsumerName || p.Idle < c.reclaimIdle {
			continue
		}
		if int(p.RetryCount) >= c.cfg.RetryLimit {
			c.deadLetter(ctx, p.ID, c.reclaimIdle)
			continue
		}
		for _, xmsg := range c.claim(ctx, p.ID, c.reclaimIdle) {
			c.processMessage(ctx, xmsg)
		}
	}
}

// MonitorDLQ 每分钟上报死信队列长度，超过阈值时告警
func (c *Consumer) MonitorDLQ(ctx context.Context, alertThreshold int64) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	dlq := c.cfg.Stream.DLQStream()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		length, err := c.client.XLen(ctx, dlq).Result()
		if err != nil {
			if ctx.Err() == nil {
				logger.Warn(ctx, "failed to read DLQ length", "stream", dlq, "error", err.Error())
			}
			continue
		}
		metrics.RedisStreamDLQLength.WithLabelValues(string(c.cfg.Stream)).Set(float64(length))
		if length > alertThreshold {
			logger.Warn(ctx, "DLQ has pending messages", "stream", dlq, "count", length)
		}
	}
}
