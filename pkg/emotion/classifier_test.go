package emotion

import (
	"context"
	"errors"
	"os"
	"testing"

	"dreamtrace-go/pkg/llm"
	"dreamtrace-go/pkg/log"

	"github.com/stretchr/testify/assert"
)

func TestMain(m *testing.M) {
	log.Init("error", "console", "")
	os.Exit(m.Run())
}

// stubLLMClient 返回固定的回复或错误。
type stubLLMClient struct {
	reply string
	err   error
}

func (s *stubLLMClient) Chat(ctx context.Context, messages []llm.Message, gen *llm.GenerationParams) (string, error) {
	return s.reply, s.err
}

func (s *stubLLMClient) StreamChatMessages(ctx context.Context, messages []llm.Message, gen *llm.GenerationParams, writer llm.MessageWriter) error {
	return errors.New("not implemented")
}

func TestClassifyEmptyTextFallsBack(t *testing.T) {
	c := NewClassifier(&stubLLMClient{err: errors.New("should not be called")})
	result := c.Classify(context.Background(), "   ")

	assert.Equal(t, FallbackLabel, result.PrimaryEmotion)
	assert.Equal(t, 0.5, result.Confidence)
}

func TestClassifyClientErrorFallsBack(t *testing.T) {
	c := NewClassifier(&stubLLMClient{err: errors.New("connection refused")})
	result := c.Classify(context.Background(), "我梦见被人追赶")

	assert.Equal(t, FallbackLabel, result.PrimaryEmotion)
	assert.Equal(t, 0.5, result.Confidence)
}

func TestClassifyValidReply(t *testing.T) {
	c := NewClassifier(&stubLLMClient{reply: `{"primaryEmotion":"焦虑","confidence":0.82}`})
	result := c.Classify(context.Background(), "我梦见被人追赶")

	assert.Equal(t, "焦虑", result.PrimaryEmotion)
	assert.Equal(t, 0.82, result.Confidence)
}

func TestParseJSONWrappedInProse(t *testing.T) {
	raw := "根据描述，判断结果如下：\n{\"primaryEmotion\": \"恐惧\", \"confidence\": 0.9}\n希望对你有帮助。"
	result := Parse(raw)

	assert.Equal(t, "恐惧", result.PrimaryEmotion)
	assert.Equal(t, 0.9, result.Confidence)
}

func TestParseMalformedRepliesFallBack(t *testing.T) {
	cases := []string{
		"",
		"完全没有 JSON 的回复",
		"{断开的 JSON",
		`{"primaryEmotion": "狂喜", "confidence": 0.8}`, // 非法标签
		`{"primaryEmotion": "焦虑", "confidence": "高"}`, // 非数字置信度
	}

	for _, raw := range cases {
		result := Parse(raw)
		assert.Equal(t, FallbackLabel, result.PrimaryEmotion, "raw=%q", raw)
		assert.Equal(t, 0.5, result.Confidence, "raw=%q", raw)
	}
}

func TestParseClampsConfidence(t *testing.T) {
	result := Parse(`{"primaryEmotion":"快乐","confidence":1.7}`)
	assert.Equal(t, 1.0, result.Confidence)

	result = Parse(`{"primaryEmotion":"快乐","confidence":-0.2}`)
	assert.Equal(t, 0.0, result.Confidence)
}

func TestParseNestedBracesInsideString(t *testing.T) {
	raw := `说明 {"primaryEmotion":"平静","confidence":0.6,"note":"包含{大括号}的字符串"} 结束`
	result := Parse(raw)
	assert.Equal(t, "平静", result.PrimaryEmotion)
	assert.Equal(t, 0.6, result.Confidence)
}
