// Package viewerstats 汇总观众的过滤统计
package viewerstats

import (
	"context"
	"strings"
	"time"

	"focustube-ml/internal/domain/entity"
	"focustube-ml/internal/domain/repository"
	apperrors "focustube-ml/pkg/errors"
	"focustube-ml/pkg/logger"
)

// Service 观众统计服务
// repo 为 nil 时（未启用 Redis）写入静默跳过，读取返回服务不可用
type Service struct {
	repo repository.ViewerStatsRepository
	now  func() time.Time
}

// NewService 创建观众统计服务
func NewService(repo repository.ViewerStatsRepository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Record 累加一次过滤的统计
func (s *Service) Record(ctx context.Context, messageID string, delta *entity.ViewerStatsDelta) error {
	if s == nil || s.repo == nil || delta == nil {
		return nil
	}

	delta.ViewerID = strings.TrimSpace(delta.ViewerID)
	if delta.ViewerID == "" {
		logger.Warn(ctx, "dropping stats delta without viewer id", "message_id", messageID)
		return nil
	}
	if messageID == "" {
		return apperrors.ErrInvalidParam.WithDetail("message id is required")
	}
	if delta.Blocked < 0 {
		return apperrors.ErrInvalidParam.WithDetail("blocked count must be non-negative")
	}
	for reason, n := range delta.ByReason {
		if n < 0 {
			return apperrors.ErrInvalidParam.WithDetail("negative count for reason " + reason)
		}
	}
	if delta.OccurredAt.IsZero() {
		delta.OccurredAt = s.now()
	}

	applied, err := s.repo.Apply(ctx, messageID, delta)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeCacheError, "failed to record viewer stats")
	}
	if !applied {
		logger.Debug(ctx, "duplicate stats delta ignored", "message_id", messageID)
		return nil
	}

	logger.Debug(ctx, "viewer stats recorded",
		"message_id", messageID,
		"blocked", delta.Blocked,
	)
	return nil
}

// Get 读取观众统计
func (s *Service) Get(ctx context.Context, viewerID string) (*entity.ViewerStats, error) {
	viewerID = strings.TrimSpace(viewerID)
	if viewerID == "" {
		return nil, apperrors.ErrInvalidParam.WithDetail("viewer id is required")
	}
	if s == nil || s.repo == nil {
		return nil, apperrors.ErrServiceUnavailable.WithDetail("viewer stats store is not configured")
	}

	stats, err := s.repo.Get(ctx, viewerID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeCacheError, "failed to read viewer stats")
	}
	return stats, nil
}
