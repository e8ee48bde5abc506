// Package messaging 提供基于 Redis Stream 的消息队列实现
package messaging

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"focustube-ml/internal/domain/entity"
)

// Message 消息结构
type Message struct {
	ID        string            `json:"id"`
	Type      string            `json:"type"`
	ViewerID  string            `json:"viewer_id,omitempty"`
	Payload   json.RawMessage   `json:"payload"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// NewMessage 创建新消息，ID 为空时自动生成
func NewMessage(id, msgType, viewerID string, payload any) (*Message, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	if id == "" {
		id = uuid.NewString()
	}

	return &Message{
		ID:        id,
		Type:      msgType,
		ViewerID:  viewerID,
		Payload:   payloadBytes,
		Metadata:  make(map[string]string),
		CreatedAt: time.Now().UTC(),
	}, nil
}

// SetMetadata 设置元数据
func (m *Message) SetMetadata(key, value string) {
	if m.Metadata == nil {
		m.Metadata = make(map[string]string)
	}
	m.Metadata[key] = value
}

// GetMetadata 获取元数据
func (m *Message) GetMetadata(key string) string {
	return m.Metadata[key]
}

// UnmarshalPayload 解析消息载荷
func (m *Message) UnmarshalPayload(v any) error {
	return json.Unmarshal(m.Payload, v)
}

// Stream 流定义
type Stream string

const (
	StreamCurationFiltered Stream = "stream:curation:filtered"
)

// DLQStream 获取对应的死信队列流名称
func (s Stream) DLQStream() string {
	return "dlq:" + string(s)
}

// ConsumerGroup 消费者组定义
type ConsumerGroup string

const (
	ConsumerGroupStatsWorker ConsumerGroup = "cg-stats-worker"
)

// WithPrefix 按部署前缀隔离消费者组
func (g ConsumerGroup) WithPrefix(prefix string) ConsumerGroup {
	if prefix == "" {
		return g
	}
	return ConsumerGroup(prefix + ":" + string(g))
}

// 消息类型
const (
	TypeSearchFiltered = "search_filtered"
)

// SearchFilteredPayload 一次过滤的统计摘要
type SearchFilteredPayload struct {
	ViewerID   string         `json:"viewer_id"`
	Query      string         `json:"query,omitempty"`
	Candidates int            `json:"candidates"`
	Blocked    int            `json:"blocked"`
	Reasons    map[string]int `json:"reasons,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// BackoffConfig 退避配置
type BackoffConfig struct {
	Initial    time.Duration
	Max        time.Duration
	Multiplier float64
}

// DefaultBackoffConfig 默认退避配置
func DefaultBackoffConfig() BackoffConfig {
	return BackoffConfig{
		Initial:    time.Second,
		Max:        time.Minute,
		Multiplier: 2,
	}
}

// CalculateBackoff 计算第 retryCount 次重试前的等待时间
func (c BackoffConfig) CalculateBackoff(retryCount int) time.Duration {
	backoff := c.Initial
	for i := 0; i < retryCount; i++ {
		backoff = time.Duration(float64(backoff) * c.Multiplier)
		if backoff > c.Max {
			return c.Max
		}
	}
	return backoff
}

func (m *Message) marshal() (string, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Delta 转换为统计增量
func (p *SearchFilteredPayload) Delta() *entity.ViewerStatsDelta {
	byReason := make(map[string]int64, len(p.Reasons))
	for r, n := range p.Reasons {
		byReason[r] = int64(n)
	}
	return &entity.ViewerStatsDelta{
		ViewerID:   p.ViewerID,
		Blocked:    int64(p.Blocked),
		ByReason:   byReason,
		OccurredAt: p.OccurredAt,
	}
}
