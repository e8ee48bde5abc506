package redis

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"

	"focustube-ml/internal/domain/entity"
)

const (
	fieldBlockedTotal  = "blocked_total"
	fieldSearchesTotal = "searches_total"
	fieldLastSearchAt  = "last_search_at"
	reasonFieldPrefix  = "reason:"
)

// applyStatsScript 以消息 ID 去重后累加统计，重复投递不会重复计数
// KEYS[1] 统计 hash, KEYS[2] 去重标记
// ARGV[1] 去重标记 TTL(秒), ARGV[2] 最近搜索时间, ARGV[3..] field/increment 对
var applyStatsScript = redis.NewScript(`
if not redis.call('SET', KEYS[2], '1', 'NX', 'EX', ARGV[1]) then
  return 0
end
for i = 3, #ARGV, 2 do
  redis.call('HINCRBY', KEYS[1], ARGV[i], ARGV[i + 1])
end
redis.call('HSET', KEYS[1], 'last_search_at', ARGV[2])
return 1
`)

// StatsStore 观众统计存储
type StatsStore struct {
	client   *Client
	dedupTTL time.Duration
}

// NewStatsStore 创建统计存储
func NewStatsStore(client *Client) *StatsStore {
	return &StatsStore{client: client, dedupTTL: 24 * time.Hour}
}

// StatsKey 统计 hash 键
func StatsKey(viewerID string) string {
	return fmt.Sprintf("viewer:%s:stats", viewerID)
}

func appliedKey(viewerID, messageID string) string {
	return fmt.Sprintf("viewer:%s:applied:%s", viewerID, messageID)
}

// Apply 累加一次过滤的统计；messageID 相同的重复调用返回 false 且不计数
func (s *StatsStore) Apply(ctx context.Context, messageID string, delta *entity.ViewerStatsDelta) (bool, error) {
	ctx, span := tracer.Start(ctx, "stats.Apply")
	span.SetAttributes(
		attribute.String("stats.viewer_id", delta.ViewerID),
		attribute.String("stats.message_id", messageID),
	)
	defer span.End()

	args := []any{
		int64(s.dedupTTL / time.Second),
		delta.OccurredAt.UTC().Format(time.RFC3339Nano),
		fieldSearchesTotal, 1,
		fieldBlockedTotal, delta.Blocked,
	}
	reasons := make([]string, 0, len(delta.ByReason))
	for r := range delta.ByReason {
		reasons = append(reasons, r)
	}
	sort.Strings(reasons)
	for _, r := range reasons {
		args = append(args, reasonFieldPrefix+r, delta.ByReason[r])
	}

	keys := []string{StatsKey(delta.ViewerID), appliedKey(delta.ViewerID, messageID)}
	applied, err := applyStatsScript.Run(ctx, s.client.rdb, keys, args...).Int()
	if err != nil {
		span.RecordError(err)
		return false, fmt.Errorf("apply viewer stats: %w", err)
	}
	span.SetAttributes(attribute.Bool("stats.applied", applied == 1))
	return applied == 1, nil
}

// Get 读取观众统计，不存在时返回零值统计
func (s *StatsStore) Get(ctx context.Context, viewerID string) (*entity.ViewerStats, error) {
	ctx, span := tracer.Start(ctx, "stats.Get")
	span.SetAttributes(attribute.String("stats.viewer_id", viewerID))
	defer span.End()

	fields, err := s.client.rdb.HGetAll(ctx, StatsKey(viewerID)).Result()
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("get viewer stats: %w", err)
	}
	return parseStats(viewerID, fields), nil
}

func parseStats(viewerID string, fields map[string]string) *entity.ViewerStats {
	stats := &entity.ViewerStats{
		ViewerID: viewerID,
		ByReason: make(map[string]int64),
	}
	for k, v := range fields {
		switch {
		case k == fieldBlockedTotal:
			stats.BlockedTotal, _ = strconv.ParseInt(v, 10, 64)
		case k == fieldSearchesTotal:
			stats.SearchesTotal, _ = strconv.ParseInt(v, 10, 64)
		case k == fieldLastSearchAt:
			if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
				stats.LastSearchAt = &t
			}
		case strings.HasPrefix(k, reasonFieldPrefix):
			n, _ := strconv.ParseInt(v, 10, 64)
			stats.ByReason[strings.TrimPrefix(k, reasonFieldPrefix)] = n
		}
	}
	return stats
}
