// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"focustube-ml/internal/domain/entity"
)

// ViewerStatsRepository 观众统计仓储接口
type ViewerStatsRepository interface {
	// Apply 以 messageID 去重累加一次过滤统计，重复消息返回 false
	Apply(ctx context.Context, messageID string, delta *entity.ViewerStatsDelta) (bool, error)
	// Get 读取统计，不存在时返回零值统计
	Get(ctx context.Context, viewerID string) (*entity.ViewerStats, error)
}
