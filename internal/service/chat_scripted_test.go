package service

import (
	"context"
	"testing"

	"dreamtrace-go/internal/dialogue"
	"dreamtrace-go/internal/model"
	"dreamtrace-go/pkg/emotion"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// memDreamRepo 把记录放在内存里，并记下每次部分字段更新。
type memDreamRepo struct {
	records map[string]*model.DreamRecord
	updates []map[string]interface{}
}

func newMemDreamRepo() *memDreamRepo {
	return &memDreamRepo{records: map[string]*model.DreamRecord{}}
}

func (r *memDreamRepo) FindByID(id string) (*model.DreamRecord, error) {
	rec, ok := r.records[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return rec, nil
}

func (r *memDreamRepo) FindByUser(userID uint) ([]model.DreamRecord, error) {
	var out []model.DreamRecord
	for _, rec := range r.records {
		if rec.UserID == userID {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (r *memDreamRepo) Save(record *model.DreamRecord) error {
	r.records[record.ID] = record
	return nil
}

func (r *memDreamRepo) UpdateFields(id string, updates map[string]interface{}) error {
	rec, ok := r.records[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if v, ok := updates["status"].(string); ok {
		rec.Status = v
	}
	if v, ok := updates["summary"].(string); ok {
		rec.Summary = v
	}
	if v, ok := updates["emotion"].(string); ok {
		rec.Emotion = v
	}
	if v, ok := updates["extracted"].(*model.Extracted); ok {
		rec.Extracted = v
	}
	r.updates = append(r.updates, updates)
	return nil
}

func (r *memDreamRepo) Delete(id string, userID uint) error {
	delete(r.records, id)
	return nil
}

// memSessionRepo 用内存 map 代替 Redis 的会话指针。
type memSessionRepo struct {
	current map[uint]string
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{current: map[uint]string{}}
}

func (r *memSessionRepo) GetCurrentRecordID(ctx context.Context, userID uint) (string, error) {
	return r.current[userID], nil
}

func (r *memSessionRepo) SetCurrentRecordID(ctx context.Context, userID uint, recordID string) error {
	r.current[userID] = recordID
	return nil
}

func (r *memSessionRepo) ClearCurrentRecordID(ctx context.Context, userID uint) error {
	delete(r.current, userID)
	return nil
}

// recordingAnalysis 记录分析实际拿到的两段文本。
type recordingAnalysis struct {
	extractText string
	emotionText string
}

func (a *recordingAnalysis) Analyze(ctx context.Context, extractText, emotionText string) AnalysisResult {
	a.extractText = extractText
	a.emotionText = emotionText
	return AnalysisResult{
		Summary: "一段测试摘要",
		Emotion: emotion.Result{PrimaryEmotion: "焦虑", Confidence: 0.8},
	}
}

// driveScriptedToAnalysis 推进三轮对话直到触发解析：叙述、犹豫、请求解析。
// 犹豫的那轮故意提到"考试"，它不属于梦境正文。
func driveScriptedToAnalysis(t *testing.T, svc ChatService) *ScriptedReply {
	t.Helper()
	ctx := context.Background()

	_, err := svc.ScriptedTurn(ctx, 1, "我梦见自己在学校里迷路了，走廊一直走不到头")
	require.NoError(t, err)

	_, err = svc.ScriptedTurn(ctx, 1, "不知道，考试的事我忘了")
	require.NoError(t, err)

	resp, err := svc.ScriptedTurn(ctx, 1, "能分析一下吗")
	require.NoError(t, err)
	require.Equal(t, dialogue.ActionShowAnalysis, resp.Action)
	require.NotNil(t, resp.Analysis)
	return resp
}

func TestScriptedTurnExtractsFromDreamBufferOnly(t *testing.T) {
	analyzer := &recordingAnalysis{}
	svc := NewChatService(newMemDreamRepo(), newMemSessionRepo(), analyzer, nil)

	driveScriptedToAnalysis(t, svc)

	// 抽取只看积累的梦境正文，犹豫轮的措辞不掺进去
	assert.Contains(t, analyzer.extractText, "迷路")
	assert.NotContains(t, analyzer.extractText, "考试")
	// 情绪判定看全部用户叙述
	assert.Contains(t, analyzer.emotionText, "考试")
}

func TestScriptedTurnFinalizeUsesPartialUpdate(t *testing.T) {
	dreamRepo := newMemDreamRepo()
	sessionRepo := newMemSessionRepo()
	svc := NewChatService(dreamRepo, sessionRepo, &recordingAnalysis{}, nil)

	resp := driveScriptedToAnalysis(t, svc)

	record, err := dreamRepo.FindByID(resp.RecordID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, record.Status)
	assert.Equal(t, "一段测试摘要", record.Summary)
	assert.Equal(t, "焦虑", record.Emotion)
	require.NotNil(t, record.Extracted)

	// 收尾只合并分析相关的四个字段，不整条覆盖
	require.Len(t, dreamRepo.updates, 1)
	keys := make([]string, 0, len(dreamRepo.updates[0]))
	for k := range dreamRepo.updates[0] {
		keys = append(keys, k)
	}
	assert.ElementsMatch(t, []string{"status", "summary", "emotion", "extracted"}, keys)

	// 会话指针已清除，下一轮会开新记录
	current, err := sessionRepo.GetCurrentRecordID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "", current)
}
