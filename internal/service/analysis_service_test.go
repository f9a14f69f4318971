package service

import (
	"context"
	"testing"

	"dreamtrace-go/internal/model"
	"dreamtrace-go/pkg/emotion"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeDictRepo 返回固定的词典条目。
type fakeDictRepo struct {
	entries []model.DictionaryEntry
}

func (f *fakeDictRepo) LoadAll(ctx context.Context) []model.DictionaryEntry {
	return f.entries
}

func (f *fakeDictRepo) FindByID(ctx context.Context, id string) (*model.DictionaryEntry, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeDictRepo) SeedDefaults() error { return nil }

// fakeClassifier 返回固定的情绪判定结果。
type fakeClassifier struct {
	result emotion.Result
}

func (f *fakeClassifier) Classify(ctx context.Context, dreamText string) emotion.Result {
	return f.result
}

func examEntry() model.DictionaryEntry {
	return model.DictionaryEntry{
		ID: "exam", Keyword: "考试", Category: "场景",
		Interpretation: "考试的梦往往与自我评价有关。",
		Keywords:       model.StringList{"考试", "成绩"},
		Emotions:       model.StringList{"anxiety", "stress"},
	}
}

func TestAnalyzeOracleEmotionLeads(t *testing.T) {
	svc := NewAnalysisService(
		&fakeDictRepo{entries: []model.DictionaryEntry{examEntry()}},
		&fakeClassifier{result: emotion.Result{PrimaryEmotion: "焦虑", Confidence: 0.8}},
	)

	result := svc.Analyze(context.Background(), "我梦见考试没写完", "我梦见考试没写完")

	assert.Equal(t, "焦虑", result.Emotion.PrimaryEmotion)
	assert.Contains(t, result.Extracted.Symbols, "考试")
	assert.NotEmpty(t, result.Summary)
	assert.NotEmpty(t, result.Hints.Questions)

	// 判定结论不在词典候选中时插到最前面
	require.NotEmpty(t, result.Extracted.Emotions)
	assert.Equal(t, "焦虑", result.Extracted.Emotions[0].Name)
	assert.Equal(t, 80, result.Extracted.Emotions[0].Score)
}

func TestAnalyzeNoDuplicateWhenOracleAgrees(t *testing.T) {
	entry := examEntry()
	entry.Emotions = model.StringList{"焦虑"}
	svc := NewAnalysisService(
		&fakeDictRepo{entries: []model.DictionaryEntry{entry}},
		&fakeClassifier{result: emotion.Result{PrimaryEmotion: "焦虑", Confidence: 0.9}},
	)

	result := svc.Analyze(context.Background(), "我梦见考试没写完", "我梦见考试没写完")

	count := 0
	for _, l := range result.Extracted.Emotions {
		if l.Name == "焦虑" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestAnalyzeFallbackClassifierStillCompletes(t *testing.T) {
	svc := NewAnalysisService(
		&fakeDictRepo{},
		&fakeClassifier{result: emotion.Result{PrimaryEmotion: emotion.FallbackLabel, Confidence: 0.5}},
	)

	result := svc.Analyze(context.Background(), "一段完全匹配不到词典的叙述内容", "一段完全匹配不到词典的叙述内容")

	assert.Equal(t, emotion.FallbackLabel, result.Emotion.PrimaryEmotion)
	assert.NotEmpty(t, result.Summary)
	assert.NotEmpty(t, result.Extracted.Emotions)
}
