// Package emotion 基于外部大模型对梦境文本做主情绪判定。
package emotion

import (
	"context"
	"encoding/json"
	"strings"

	"dreamtrace-go/pkg/llm"
	"dreamtrace-go/pkg/log"
)

// 判定结果只允许这七个标签。
var ValidEmotions = []string{"快乐", "平静", "焦虑", "悲伤", "恐惧", "愤怒", "混合"}

// FallbackLabel 是所有失败路径（无凭证、网络错误、非法 JSON、非法标签）
// 统一回退到的兜底标签。
const FallbackLabel = "混合"

const systemPrompt = `你是一位心理学取向的梦境情绪判断助手。
请根据用户的梦境描述，判断其【主要情绪状态】。

【规则】
1. 只能从以下情绪中选择一个作为 primaryEmotion：
   快乐、平静、焦虑、悲伤、恐惧、愤怒、混合
2. 若存在明显多重或矛盾情绪，请选择「混合」
3. confidence 为 0~1 之间的小数
4. 只输出 JSON，不要任何解释文字

【输出示例】
{
  "primaryEmotion": "焦虑",
  "confidence": 0.82
}`

// Result 是一次情绪判定的结果。失败回退与低置信度成功在形态上不可区分，
// 下游代码不需要对失败做特殊分支。
type Result struct {
	PrimaryEmotion string  `json:"primaryEmotion"`
	Confidence     float64 `json:"confidence"`
}

// Classifier 定义了情绪判定的接口。
type Classifier interface {
	Classify(ctx context.Context, dreamText string) Result
}

type classifier struct {
	llmClient llm.Client
}

// NewClassifier 创建一个新的 Classifier 实例。
func NewClassifier(llmClient llm.Client) Classifier {
	return &classifier{llmClient: llmClient}
}

func fallback() Result {
	return Result{PrimaryEmotion: FallbackLabel, Confidence: 0.5}
}

// Classify 将梦境文本交给大模型判定主情绪。任何失败都返回确定性的兜底结果。
func (c *classifier) Classify(ctx context.Context, dreamText string) Result {
	if strings.TrimSpace(dreamText) == "" {
		return fallback()
	}

	temperature := 0.3
	messages := []llm.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: "梦境内容：\n\"\"\"" + dreamText + "\"\"\""},
	}

	raw, err := c.llmClient.Chat(ctx, messages, &llm.GenerationParams{Temperature: &temperature})
	if err != nil {
		log.Errorf("情绪判定调用失败，使用兜底结果: %v", err)
		return fallback()
	}

	return Parse(raw)
}

// Parse 从模型的原始回复中解析情绪判定结果。
// 模型可能在 JSON 外包裹说明文字，这里取第一个配平的大括号子串做严格解码。
func Parse(raw string) Result {
	jsonPart := extractJSON(raw)
	if jsonPart == "" {
		log.Warnf("情绪判定回复中未找到 JSON: %q", raw)
		return fallback()
	}

	var parsed struct {
		PrimaryEmotion string      `json:"primaryEmotion"`
		Confidence     json.Number `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(jsonPart), &parsed); err != nil {
		log.Warnf("情绪判定回复 JSON 解析失败: %v", err)
		return fallback()
	}

	if !isValidEmotion(parsed.PrimaryEmotion) {
		log.Warnf("情绪判定返回了非法标签: %q", parsed.PrimaryEmotion)
		return fallback()
	}
	confidence, err := parsed.Confidence.Float64()
	if err != nil {
		return fallback()
	}

	// 置信度收敛到 [0,1]
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}
	return Result{PrimaryEmotion: parsed.PrimaryEmotion, Confidence: confidence}
}

func isValidEmotion(label string) bool {
	for _, v := range ValidEmotions {
		if v == label {
			return true
		}
	}
	return false
}

// extractJSON 返回文本中第一个大括号配平的子串，找不到则返回空串。
func extractJSON(raw string) string {
	start := strings.IndexByte(raw, '{')
	if start < 0 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(raw); i++ {
		ch := raw[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return raw[start : i+1]
			}
		}
	}
	return ""
}
