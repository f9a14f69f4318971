package analysis

import (
	"strings"

	"dreamtrace-go/internal/model"
)

// Hints 是随分析结果一起给用户的引导提示。
type Hints struct {
	Questions []string `json:"questions"`
	Comforts  []string `json:"comforts"`
	Steps     []string `json:"steps"`
}

const maxHints = 2

// ComposeSummary 用模板把分析结果拼装为两三句摘要。
// 相同输入永远产出相同文本，不依赖随机数或外部调用。
func ComposeSummary(extracted model.Extracted, matched []model.DictionaryEntry) string {
	var lead string
	switch {
	case len(extracted.Symbols) > 0:
		lead = strings.Join(extracted.Symbols, "、")
	case len(extracted.Actions) > 0:
		lead = strings.Join(extracted.Actions, "、")
	default:
		lead = "一些特别的意象"
	}

	emotionPart := "某种内心的感受"
	if names := extracted.EmotionNames(); len(names) > 0 {
		emotionPart = strings.Join(names, "或")
	}

	closer := "这是一个探索潜意识的好机会。"
	if len(matched) > 0 && matched[0].Interpretation != "" {
		closer = matched[0].Interpretation
	}

	return "你梦到了" + lead + "，这似乎与" + emotionPart + "有关。" + closer
}

// ComposeHints 汇总命中条目的引导问题、安抚语和小步建议，各取前两条，
// 为空时使用通用默认值。
func ComposeHints(matched []model.DictionaryEntry) Hints {
	hints := Hints{
		Questions: collectHints(matched, func(e model.DictionaryEntry) []string { return e.Questions }),
		Comforts:  collectHints(matched, func(e model.DictionaryEntry) []string { return e.Comforts }),
		Steps:     collectHints(matched, func(e model.DictionaryEntry) []string { return e.Steps }),
	}

	if len(hints.Questions) == 0 {
		hints.Questions = []string{"这个梦里有什么让你印象最深的地方吗？"}
	}
	if len(hints.Comforts) == 0 {
		hints.Comforts = []string{"无论梦境如何，你的感受都是真实的，接纳它们就好。"}
	}
	if len(hints.Steps) == 0 {
		hints.Steps = []string{"试着把这个梦记录下来，或者画一幅画。"}
	}
	return hints
}

func collectHints(matched []model.DictionaryEntry, pick func(model.DictionaryEntry) []string) []string {
	var out []string
	for _, entry := range matched {
		out = append(out, pick(entry)...)
		if len(out) >= maxHints {
			break
		}
	}
	if len(out) > maxHints {
		out = out[:maxHints]
	}
	return out
}
