package analysis

import (
	"testing"

	"dreamtrace-go/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEntries() []model.DictionaryEntry {
	return []model.DictionaryEntry{
		{
			ID: "exam", Keyword: "考试", Category: "场景",
			Interpretation: "考试的梦往往与自我评价有关。",
			Keywords:       model.StringList{"考试", "成绩"},
			Emotions:       model.StringList{"anxiety", "stress"},
			Questions:      model.StringList{"最近有让你担心的评估吗？"},
		},
		{
			ID: "chase", Keyword: "追赶", Category: "噩梦",
			Interpretation: "被追赶通常代表逃避。",
			Keywords:       model.StringList{"追赶", "被追"},
			Emotions:       model.StringList{"fear"},
		},
	}
}

func TestExtractExamScenario(t *testing.T) {
	extracted, matched := Extract("我梦见考试没写完，特别紧张", testEntries())

	require.NotEmpty(t, matched)
	assert.Contains(t, extracted.Symbols, "考试")
	assert.Contains(t, extracted.EmotionNames(), "anxiety")
	assert.LessOrEqual(t, len(extracted.Keywords), 8)

	summary := ComposeSummary(extracted, matched)
	assert.NotEmpty(t, summary)
	assert.Contains(t, summary, "考试")
}

func TestExtractHeuristicBuckets(t *testing.T) {
	extracted, _ := Extract("我，跑，学校", nil)

	assert.Contains(t, extracted.People, "我")
	assert.Contains(t, extracted.Actions, "跑")
	assert.Contains(t, extracted.Scenes, "学校")
}

func TestExtractEmptyTextHasNeutralEmotion(t *testing.T) {
	extracted, _ := Extract("", testEntries())

	require.Len(t, extracted.Emotions, 1)
	assert.Equal(t, "neutral", extracted.Emotions[0].Name)
	assert.Empty(t, extracted.Symbols)
}

func TestExtractEmotionsCappedAtFour(t *testing.T) {
	entries := []model.DictionaryEntry{
		{ID: "a", Keyword: "飞", Emotions: model.StringList{"e1", "e2", "e3"}},
		{ID: "b", Keyword: "海", Emotions: model.StringList{"e4", "e5", "e6"}},
	}
	extracted, _ := Extract("我梦见在海上飞", entries)
	assert.LessOrEqual(t, len(extracted.Emotions), 4)
}

func TestMatchFallsBackWhenNoEntries(t *testing.T) {
	matched := Match([]string{"考试"}, nil)
	require.NotEmpty(t, matched)
	assert.Equal(t, "考试", matched[0].Keyword)
}

func TestComposeHintsDefaults(t *testing.T) {
	hints := ComposeHints(nil)
	assert.NotEmpty(t, hints.Questions)
	assert.NotEmpty(t, hints.Comforts)
	assert.NotEmpty(t, hints.Steps)
}

func TestComposeHintsCapped(t *testing.T) {
	entries := []model.DictionaryEntry{
		{ID: "a", Questions: model.StringList{"q1", "q2", "q3"}},
		{ID: "b", Questions: model.StringList{"q4"}},
	}
	hints := ComposeHints(entries)
	assert.Len(t, hints.Questions, 2)
}
