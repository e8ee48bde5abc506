package curation

import (
	"strings"

	"focustube-ml/internal/domain/entity"
)

// BlockReason 屏蔽原因位集合，两路信号可同时命中
type BlockReason uint8

const (
	ReasonKeyword BlockReason = 1 << iota
	ReasonSemantic
)

// Has 是否包含指定原因
func (r BlockReason) Has(o BlockReason) bool {
	return r&o != 0
}

func (r BlockReason) String() string {
	parts := make([]string, 0, 2)
	if r.Has(ReasonKeyword) {
		parts = append(parts, "keyword")
	}
	if r.Has(ReasonSemantic) {
		parts = append(parts, "semantic")
	}
	return strings.Join(parts, "+")
}

// Verdict 单个候选的屏蔽判定
type Verdict struct {
	Blocked bool
	Reason  BlockReason
	// Score 与所有 disinterest 的最大余弦相似度，未做语义判定时为 0
	Score float64
	// Phrase 命中的短语（关键词优先）
	Phrase string
}

type BlockedVideo struct {
	Video   entity.Video
	Verdict Verdict
}

// SearchInput 过滤+排序输入
type SearchInput struct {
	Query        string
	Disinterests []string
	Candidates   []entity.Video
	// Threshold 为 nil 时使用默认阈值
	Threshold *float64
	ViewerID  string
}

// SearchOutput 过滤+排序结果，BlockedCount+len(Videos) 恒等于候选数
type SearchOutput struct {
	Videos       []entity.Video
	BlockedCount int
	Blocked      []BlockedVideo
}
