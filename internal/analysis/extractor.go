package analysis

import (
	"strings"

	"dreamtrace-go/internal/model"
)

// 启发式的封闭词表：人称/称谓、动作动词、地点名词。
var (
	peopleWords = []string{"我", "你", "他", "她", "父母", "妈妈", "爸爸", "朋友", "前任"}
	actionWords = []string{"追赶", "追", "跑", "飞", "坠落", "跳"}
	sceneWords  = []string{"海", "山", "学校", "家", "医院"}
)

const (
	maxKeywords = 8
	maxEmotions = 4
	// 没有任何符号命中候选情绪时的占位情绪
	neutralEmotion = "neutral"
)

// Extract 对一段梦境文本做结构化抽取，返回分析结果与命中的词典条目。
// entries 为空时使用内置兜底条目；空文本产出除情绪占位外全空的结果，
// 但永远不会返回未定义的形态。
func Extract(text string, entries []model.DictionaryEntry) (model.Extracted, []model.DictionaryEntry) {
	tokens := Tokenize(text)
	matched := Match(tokens, entries)

	var symbols, scenes, keywords, people, actions []string

	// 命中条目：符号名、分类、辅助关键词
	for _, entry := range matched {
		if entry.Keyword != "" {
			symbols = append(symbols, entry.Keyword)
		}
		if entry.Category != "" {
			scenes = append(scenes, entry.Category)
		}
		keywords = append(keywords, entry.Keywords...)
	}

	// 第二遍启发式：未被分类的词元落到 人物/动作/场景/关键词
	for _, t := range tokens {
		switch {
		case containsExact(peopleWords, t):
			people = append(people, t)
		case containsSubstring(actionWords, t):
			actions = append(actions, t)
		case containsSubstring(sceneWords, t):
			scenes = append(scenes, t)
		default:
			keywords = append(keywords, t)
		}
	}

	emotions := collectEmotions(matched)

	extracted := model.Extracted{
		Keywords: truncate(dedupe(keywords), maxKeywords),
		Emotions: emotions,
		People:   dedupe(people),
		Actions:  dedupe(actions),
		Scenes:   dedupe(scenes),
		Symbols:  dedupe(symbols),
	}
	return extracted, matched
}

// collectEmotions 取所有命中条目声明的候选情绪的并集，最多 4 个；
// 为空时退回到中性占位情绪。
func collectEmotions(matched []model.DictionaryEntry) []model.EmotionLabel {
	var names []string
	for _, entry := range matched {
		names = append(names, entry.Emotions...)
	}
	names = truncate(dedupe(names), maxEmotions)
	if len(names) == 0 {
		names = []string{neutralEmotion}
	}

	labels := make([]model.EmotionLabel, 0, len(names))
	for _, n := range names {
		labels = append(labels, model.EmotionLabel{Name: n})
	}
	return labels
}

func containsExact(words []string, token string) bool {
	for _, w := range words {
		if w == token {
			return true
		}
	}
	return false
}

func containsSubstring(words []string, token string) bool {
	for _, w := range words {
		if strings.Contains(token, w) {
			return true
		}
	}
	return false
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func truncate(values []string, max int) []string {
	if len(values) > max {
		return values[:max]
	}
	return values
}
