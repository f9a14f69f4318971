package analysis

import (
	"strings"

	"dreamtrace-go/internal/model"
)

// FallbackEntries 返回内置的兜底符号条目。词典为空或加载失败时使用，
// 保证分析管道永远不会产出完全空白的结果。
func FallbackEntries() []model.DictionaryEntry {
	return []model.DictionaryEntry{
		{
			ID:             "fallback-exam",
			Keyword:        "考试",
			Interpretation: "梦见考试通常反映了对失败的恐惧、对自身能力的怀疑，或者在现实中正面临某种形式的考验和评估。",
			Category:       "场景",
			Keywords:       model.StringList{"exam", "考试", "成绩", "测验"},
			Emotions:       model.StringList{"anxiety", "stress"},
			Questions:      model.StringList{"最近有让你担心的评估或任务吗？"},
			Comforts:       model.StringList{"很多人都会有这种紧张，慢慢来。"},
			Steps:          model.StringList{"拆小步，先做第一件事。"},
		},
		{
			ID:             "fallback-chase",
			Keyword:        "追赶",
			Interpretation: "被追赶往往代表你在现实生活中正在逃避某个问题、责任或不愿面对的情绪。",
			Category:       "噩梦",
			Keywords:       model.StringList{"chase", "追赶", "被追"},
			Emotions:       model.StringList{"fear", "anxiety"},
			Questions:      model.StringList{"有没有什么你一直在回避的事？"},
			Comforts:       model.StringList{"你不是在逃，你是在自我保护。"},
			Steps:          model.StringList{"先写下最小的一步。"},
		},
	}
}

// Match 将词元集合与词典条目做低成本的召回式匹配：任一词元是条目
// 符号名的子串、符号名是词元的子串、或词元命中条目的辅助关键词，
// 即视为命中；每个条目找到第一个命中的词元即停止。
// 词典为空时退回内置兜底条目。调用方决定是否在条目层面去重。
func Match(tokens []string, entries []model.DictionaryEntry) []model.DictionaryEntry {
	if len(entries) == 0 {
		entries = FallbackEntries()
	}

	var matched []model.DictionaryEntry
	for _, entry := range entries {
		name := strings.ToLower(entry.Keyword)
		if name == "" {
			continue
		}
		keywords := make([]string, 0, len(entry.Keywords))
		for _, k := range entry.Keywords {
			keywords = append(keywords, strings.ToLower(k))
		}

		for _, t := range tokens {
			if strings.Contains(name, t) || strings.Contains(t, name) || anyContains(keywords, t) {
				matched = append(matched, entry)
				break
			}
		}
	}
	return matched
}

func anyContains(keywords []string, token string) bool {
	for _, k := range keywords {
		if strings.Contains(k, token) {
			return true
		}
	}
	return false
}
