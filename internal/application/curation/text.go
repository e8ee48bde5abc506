package curation

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizePhrases NFKC 归一化、去首尾空白、丢弃空串并去重，保持首次出现顺序
// 空短语是任何文本的子串，必须在两路信号之前剔除
// 内部空白原样保留，候选文本一侧不折叠空白，折叠会漏掉字面子串
func NormalizePhrases(phrases []string) []string {
	if len(phrases) == 0 {
		return nil
	}
	out := make([]string, 0, len(phrases))
	seen := make(map[string]struct{}, len(phrases))
	for _, p := range phrases {
		p = strings.TrimSpace(norm.NFKC.String(p))
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// foldText 匹配前的统一折叠：NFKC + 小写
func foldText(s string) string {
	return strings.ToLower(norm.NFKC.String(s))
}
