package dto

import (
	"focustube-ml/internal/application/curation"
	"focustube-ml/internal/domain/entity"
)

// VideoRequest 候选视频
type VideoRequest struct {
	ID           string `json:"id" binding:"required"`
	Title        string `json:"title" binding:"required"`
	Description  string `json:"description"`
	ChannelTitle string `json:"channelTitle"`
	Thumbnail    string `json:"thumbnail,omitempty"`
	PublishedAt  string `json:"publishedAt,omitempty"`
}

// RankRequest 排序请求
type RankRequest struct {
	Videos []VideoRequest `json:"videos" binding:"required,dive"`
}

// SearchRequest 过滤并排序请求
type SearchRequest struct {
	Query        string         `json:"query"`
	Disinterests []string       `json:"disinterests"`
	Videos       []VideoRequest `json:"videos" binding:"required,dive"`
	Threshold    *float64       `json:"threshold,omitempty" binding:"omitempty,gte=0,lte=1"`
	ViewerID     string         `json:"viewer_id,omitempty" binding:"max=128"`
}

// BlockedVideoResponse 被屏蔽的视频及原因
type BlockedVideoResponse struct {
	ID     string  `json:"id"`
	Reason string  `json:"reason"`
	Score  float64 `json:"score"`
	Phrase string  `json:"phrase,omitempty"`
}

// SearchResponse 过滤结果
type SearchResponse struct {
	Videos       []entity.Video          `json:"videos"`
	BlockedCount int                     `json:"blocked_count"`
	Blocked      []*BlockedVideoResponse `json:"blocked"`
}

func (v VideoRequest) toEntity() entity.Video {
	return entity.Video{
		ID:           v.ID,
		Title:        v.Title,
		Description:  v.Description,
		ChannelTitle: v.ChannelTitle,
		Thumbnail:    v.Thumbnail,
		PublishedAt:  v.PublishedAt,
	}
}

// ToVideos 转换为实体列表
func ToVideos(in []VideoRequest) []entity.Video {
	out := make([]entity.Video, len(in))
	for i := range in {
		out[i] = in[i].toEntity()
	}
	return out
}

// ToSearchInput 转换为过滤输入，viewerID 为鉴权得到的观众时优先于请求体
func (r *SearchRequest) ToSearchInput(viewerID string) curation.SearchInput {
	if viewerID == "" {
		viewerID = r.ViewerID
	}
	return curation.SearchInput{
		Query:        r.Query,
		Disinterests: r.Disinterests,
		Candidates:   ToVideos(r.Videos),
		Threshold:    r.Threshold,
		ViewerID:     viewerID,
	}
}

// ToSearchResponse 转换过滤结果
func ToSearchResponse(out *curation.SearchOutput) *SearchResponse {
	resp := &SearchResponse{
		Videos:       out.Videos,
		BlockedCount: out.BlockedCount,
		Blocked:      make([]*BlockedVideoResponse, 0, len(out.Blocked)),
	}
	if resp.Videos == nil {
		resp.Videos = []entity.Video{}
	}
	for _, b := range out.Blocked {
		resp.Blocked = append(resp.Blocked, &BlockedVideoResponse{
			ID:     b.Video.ID,
			Reason: b.Verdict.Reason.String(),
			Score:  b.Verdict.Score,
			Phrase: b.Verdict.Phrase,
		})
	}
	return resp
}
