package handler

import (
	"github.com/gin-gonic/gin"

	"focustube-ml/internal/application/viewerstats"
	"focustube-ml/internal/interfaces/http/dto"
	"focustube-ml/internal/interfaces/http/middleware"
	apperrors "focustube-ml/pkg/errors"
)

// ViewerHandler 观众统计处理器
type ViewerHandler struct {
	stats *viewerstats.Service
}

// NewViewerHandler 创建观众统计处理器
func NewViewerHandler(stats *viewerstats.Service) *ViewerHandler {
	return &ViewerHandler{stats: stats}
}

// Stats 查询观众累计屏蔽统计
// 启用认证时只能查询自己的统计
// @Summary 观众统计
// @Tags Viewers
// @Produce json
// @Param vid path string true "观众 ID"
// @Success 200 {object} dto.Response[entity.ViewerStats]
// @Failure 403 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /api/viewers/{vid}/stats [get]
func (h *ViewerHandler) Stats(c *gin.Context) {
	viewerID := c.Param("vid")
	if authed := middleware.GetViewerIDFromGin(c); authed != "" && authed != viewerID {
		dto.AbortWithError(c, apperrors.ErrForbidden)
		return
	}

	stats, err := h.stats.Get(c.Request.Context(), viewerID)
	if err != nil {
		respondError(c, "failed to get viewer stats", err)
		return
	}
	dto.Success(c, stats)
}
