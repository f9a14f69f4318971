package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmotionLabelUnmarshalLegacyString(t *testing.T) {
	var label EmotionLabel
	require.NoError(t, json.Unmarshal([]byte(`"焦虑"`), &label))
	assert.Equal(t, "焦虑", label.Name)
	assert.Equal(t, 0, label.Score)
}

func TestEmotionLabelUnmarshalObject(t *testing.T) {
	var label EmotionLabel
	require.NoError(t, json.Unmarshal([]byte(`{"name":"恐惧","score":85}`), &label))
	assert.Equal(t, "恐惧", label.Name)
	assert.Equal(t, 85, label.Score)
}

func TestEmotionLabelUnmarshalInvalid(t *testing.T) {
	var label EmotionLabel
	assert.Error(t, json.Unmarshal([]byte(`[1,2]`), &label))
}

func TestExtractedMixedEmotionShapes(t *testing.T) {
	raw := `{"keywords":[],"emotions":["焦虑",{"name":"恐惧","score":70}],"people":[],"actions":[],"scenes":[],"symbols":[]}`
	var extracted Extracted
	require.NoError(t, json.Unmarshal([]byte(raw), &extracted))

	require.Len(t, extracted.Emotions, 2)
	assert.Equal(t, "焦虑", extracted.Emotions[0].Name)
	assert.Equal(t, "恐惧", extracted.Emotions[1].Name)
	assert.Equal(t, 70, extracted.Emotions[1].Score)
	assert.Equal(t, []string{"焦虑", "恐惧"}, extracted.EmotionNames())
}

func TestAppendMessageMaintainsRawText(t *testing.T) {
	record := &DreamRecord{ID: "r1", UserID: 1}
	record.AppendMessage("user", "我梦见在飞")
	record.AppendMessage("assistant", "嗯，我在听")
	record.AppendMessage("user", "后来掉下来了")

	assert.Equal(t, "用户：我梦见在飞\nAI：嗯，我在听\n用户：后来掉下来了", record.RawText)
	assert.Len(t, record.Messages, 3)
}

func TestUserTextOnlyUserTurns(t *testing.T) {
	record := &DreamRecord{}
	record.AppendMessage("user", "第一段叙述")
	record.AppendMessage("assistant", "追问")
	record.AppendMessage("user", "第二段叙述")

	assert.Equal(t, "第一段叙述\n第二段叙述", record.UserText())
}

func TestMessageListRoundTripThroughColumn(t *testing.T) {
	list := MessageList{{Role: "user", Content: "你好"}}
	value, err := list.Value()
	require.NoError(t, err)

	var restored MessageList
	require.NoError(t, restored.Scan(value))
	require.Len(t, restored, 1)
	assert.Equal(t, "你好", restored[0].Content)
}
