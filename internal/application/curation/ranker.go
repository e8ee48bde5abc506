package curation

import (
	"sort"
	"strings"

	"focustube-ml/internal/domain/entity"
)

// Scorer 单个候选的相关性打分，必须是纯函数
type Scorer interface {
	Score(v entity.Video) float64
}

// Marker 排序关键词及权重
type Marker struct {
	Term   string
	Weight float64
}

// DefaultMarkers 教学类内容优先
var DefaultMarkers = []Marker{
	{Term: "tutorial", Weight: 10},
	{Term: "course", Weight: 10},
	{Term: "learn", Weight: 5},
	{Term: "react", Weight: 2},
}

// LexicalScorer 在小写的 "title description" 上做子串匹配并累加权重
type LexicalScorer struct {
	markers []Marker
}

// NewLexicalScorer markers 为空时使用 DefaultMarkers
func NewLexicalScorer(markers []Marker) *LexicalScorer {
	if len(markers) == 0 {
		markers = DefaultMarkers
	}
	ms := make([]Marker, 0, len(markers))
	for _, m := range markers {
		term := strings.ToLower(strings.TrimSpace(m.Term))
		if term == "" {
			continue
		}
		ms = append(ms, Marker{Term: term, Weight: m.Weight})
	}
	return &LexicalScorer{markers: ms}
}

func (s *LexicalScorer) Score(v entity.Video) float64 {
	text := v.RankText()
	var score float64
	for _, m := range s.markers {
		if strings.Contains(text, m.Term) {
			score += m.Weight
		}
	}
	return score
}

// Ranker 按分数降序稳定排序
type Ranker struct {
	scorer Scorer
}

func NewRanker(scorer Scorer) *Ranker {
	if scorer == nil {
		scorer = NewLexicalScorer(nil)
	}
	return &Ranker{scorer: scorer}
}

// Rank 返回新切片，同分保持输入顺序；每个候选只打分一次
func (r *Ranker) Rank(videos []entity.Video) []entity.Video {
	type scored struct {
		video entity.Video
		score float64
	}
	items := make([]scored, len(videos))
	for i, v := range videos {
		items[i] = scored{video: v, score: r.scorer.Score(v)}
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].score > items[j].score
	})

	out := make([]entity.Video, len(items))
	for i, it := range items {
		out[i] = it.video
	}
	return out
}
