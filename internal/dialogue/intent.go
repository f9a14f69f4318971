// Package dialogue 实现了梦境引导对话的意图识别与阶段状态机。
// 状态机是 (当前阶段, 已积累文本, 本轮输入) 的确定性函数，便于测试，
// 也保证刷新后能从持久化的消息列表重放出同样的上下文。
package dialogue

import "strings"

// Intent 是单轮用户输入的意图分类。
type Intent string

const (
	IntentDreamDesc       Intent = "dream_desc"
	IntentEmotionExpr     Intent = "emotion_expr"
	IntentHesitation      Intent = "hesitation"
	IntentAnxious         Intent = "anxious"
	IntentRequestAnalysis Intent = "request_analysis"
	IntentOther           Intent = "other"
)

// 封闭词表，按优先级排列：犹豫 > 焦虑 > 情绪表达 > 请求解析 > 梦境叙述。
var (
	hesitationMarkers = []string{"不知道", "忘了", "不确定", "...", "也许", "记不清"}
	anxiousMarkers    = []string{"害怕", "恐惧", "担心", "焦虑", "紧张", "不安", "吓人"}
	emotionMarkers    = []string{"开心", "快乐", "平静", "舒服", "奇怪", "难过", "悲伤", "愤怒", "生气"}
	analysisMarkers   = []string{"分析", "意思", "解读", "结果", "为什么"}
	dreamMarkers      = []string{"梦", "看见", "走到", "飞", "掉"}
)

// 超过该长度的输入即便没有叙述标记也按梦境叙述处理
const dreamDescMinRunes = 10

// ClassifyIntent 对单轮输入做意图分类，按固定优先级取第一个命中。
func ClassifyIntent(text string) Intent {
	t := strings.ToLower(text)

	switch {
	case containsAny(t, hesitationMarkers):
		return IntentHesitation
	case containsAny(t, anxiousMarkers):
		return IntentAnxious
	case containsAny(t, emotionMarkers):
		return IntentEmotionExpr
	case containsAny(t, analysisMarkers):
		return IntentRequestAnalysis
	case len([]rune(t)) > dreamDescMinRunes || containsAny(t, dreamMarkers):
		return IntentDreamDesc
	}
	return IntentOther
}

func containsAny(text string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(text, m) {
			return true
		}
	}
	return false
}
