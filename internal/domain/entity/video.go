// Package entity 定义领域实体
package entity

import "strings"

// Video 候选视频元数据
// 一次请求内只做过滤和重排，不修改字段
type Video struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	ChannelTitle string `json:"channelTitle"`
	Thumbnail    string `json:"thumbnail,omitempty"`
	PublishedAt  string `json:"publishedAt,omitempty"`
}

// KeywordText 关键词匹配用文本：小写的 "title description channel"
func (v Video) KeywordText() string {
	return strings.ToLower(v.Title + " " + v.Description + " " + v.ChannelTitle)
}

// EmbeddingText 语义编码用文本，空字段省略
func (v Video) EmbeddingText() string {
	var b strings.Builder
	for _, part := range []string{strings.TrimSpace(v.Title), strings.TrimSpace(v.Description)} {
		if part == "" {
			continue
		}
		b.WriteString(part)
		b.WriteString(". ")
	}
	if ch := strings.TrimSpace(v.ChannelTitle); ch != "" {
		b.WriteString("Channel name: ")
		b.WriteString(ch)
		b.WriteString(".")
	}
	return strings.TrimSpace(b.String())
}

// RankText 排序打分用文本：小写的 "title description"
func (v Video) RankText() string {
	return strings.ToLower(v.Title + " " + v.Description)
}
