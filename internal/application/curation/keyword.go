package curation

import (
	"github.com/cloudflare/ahocorasick"
)

// KeywordMatcher 针对一组 disinterest 短语的大小写无关子串匹配器
// 每个请求构建一次，可并发使用
type KeywordMatcher struct {
	matcher *ahocorasick.Matcher
	// phrases 与自动机字典下标一一对应，保存归一化后的原短语用于诊断
	phrases []string
}

// NewKeywordMatcher 构建匹配器，空短语集合返回永不命中的匹配器
func NewKeywordMatcher(disinterests []string) *KeywordMatcher {
	normalized := NormalizePhrases(disinterests)
	if len(normalized) == 0 {
		return &KeywordMatcher{}
	}

	dict := make([]string, 0, len(normalized))
	phrases := make([]string, 0, len(normalized))
	seen := make(map[string]struct{}, len(normalized))
	for _, p := range normalized {
		folded := foldText(p)
		if _, ok := seen[folded]; ok {
			continue
		}
		seen[folded] = struct{}{}
		dict = append(dict, folded)
		phrases = append(phrases, p)
	}

	return &KeywordMatcher{
		matcher: ahocorasick.NewStringMatcher(dict),
		phrases: phrases,
	}
}

// Match 返回文本中命中的第一个短语（按 disinterest 顺序）
func (m *KeywordMatcher) Match(text string) (string, bool) {
	if m == nil || m.matcher == nil || text == "" {
		return "", false
	}
	hits := m.matcher.MatchThreadSafe([]byte(foldText(text)))
	if len(hits) == 0 {
		return "", false
	}
	first := hits[0]
	for _, idx := range hits[1:] {
		if idx < first {
			first = idx
		}
	}
	return m.phrases[first], true
}

// Mask 对每个文本给出是否命中
func (m *KeywordMatcher) Mask(texts []string) []bool {
	mask := make([]bool, len(texts))
	for i, t := range texts {
		_, mask[i] = m.Match(t)
	}
	return mask
}

// IsBlocked 任一短语是文本的子串即屏蔽，空集合永不屏蔽
func IsBlocked(text string, disinterests []string) bool {
	_, ok := NewKeywordMatcher(disinterests).Match(text)
	return ok
}
