package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"focustube-ml/internal/application/curation"
	"focustube-ml/internal/interfaces/http/dto"
	"focustube-ml/internal/interfaces/http/middleware"
)

// VideoHandler 视频过滤与排序处理器
type VideoHandler struct {
	pipeline *curation.Pipeline
}

// NewVideoHandler 创建视频处理器
func NewVideoHandler(pipeline *curation.Pipeline) *VideoHandler {
	return &VideoHandler{pipeline: pipeline}
}

// Rank 对候选视频排序
// @Summary 视频排序
// @Tags Videos
// @Accept json
// @Produce json
// @Param body body dto.RankRequest true "候选视频"
// @Success 200 {array} entity.Video
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/videos/rank [post]
func (h *VideoHandler) Rank(c *gin.Context) {
	var req dto.RankRequest
	if !bindJSON(c, &req) {
		return
	}

	ranked, err := h.pipeline.Rank(c.Request.Context(), dto.ToVideos(req.Videos))
	if err != nil {
		respondError(c, "failed to rank videos", err)
		return
	}
	c.JSON(http.StatusOK, ranked)
}

// Search 过滤掉命中不感兴趣内容的视频后排序
// @Summary 过滤并排序
// @Tags Videos
// @Accept json
// @Produce json
// @Param body body dto.SearchRequest true "查询、不感兴趣短语与候选视频"
// @Success 200 {object} dto.SearchResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /api/videos/search [post]
func (h *VideoHandler) Search(c *gin.Context) {
	var req dto.SearchRequest
	if !bindJSON(c, &req) {
		return
	}

	out, err := h.pipeline.Search(c.Request.Context(), req.ToSearchInput(middleware.GetViewerIDFromGin(c)))
	if err != nil {
		respondError(c, "failed to filter videos", err)
		return
	}
	c.JSON(http.StatusOK, dto.ToSearchResponse(out))
}
