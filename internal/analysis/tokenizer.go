// Package analysis 实现了梦境文本的结构化分析：分词、符号匹配、
// 字段抽取与摘要合成。所有函数都是纯函数，不依赖外部状态。
package analysis

import (
	"regexp"
	"strings"
)

var (
	// 中英文句读与控制字符
	punctPattern = regexp.MustCompile(`[，。！？、\n\r\t]+`)
	// 既不是字母也不是数字的其余字符（Unicode 语义）
	nonWordPattern = regexp.MustCompile(`[^\p{L}\p{N}\s]`)
	spacePattern   = regexp.MustCompile(`\s+`)
)

// Tokenize 将原始文本切分为去重后的小写词元集合，保留首次出现的顺序。
// 空输入返回空集合，没有失败路径。
func Tokenize(text string) []string {
	cleaned := punctPattern.ReplaceAllString(text, " ")
	cleaned = nonWordPattern.ReplaceAllString(cleaned, " ")
	cleaned = strings.ToLower(cleaned)

	seen := make(map[string]struct{})
	var tokens []string
	for _, part := range spacePattern.Split(cleaned, -1) {
		if part == "" {
			continue
		}
		if _, ok := seen[part]; ok {
			continue
		}
		seen[part] = struct{}{}
		tokens = append(tokens, part)
	}
	return tokens
}
