package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"dreamtrace-go/internal/config"
	"dreamtrace-go/internal/dialogue"
	"dreamtrace-go/internal/model"
	"dreamtrace-go/internal/repository"
	"dreamtrace-go/pkg/es"
	"dreamtrace-go/pkg/log"
)

// ErrRecordNotFound 表示记录不存在或不属于当前用户。
var ErrRecordNotFound = errors.New("梦境记录不存在")

// 列表中的展示状态文案。
const (
	statusTextInProgress = "正在倾听"
	statusTextCompleted  = "已被回应"
)

// DreamListItem 是梦境日记列表中的单项。
type DreamListItem struct {
	ID         string    `json:"id"`
	Snippet    string    `json:"snippet"`
	Status     string    `json:"status"`
	StatusText string    `json:"statusText"`
	Emotion    string    `json:"emotion,omitempty"`
	Summary    string    `json:"summary,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// DreamDetail 是单条记录的完整视图，附带从消息投影出的对话状态。
type DreamDetail struct {
	Record    *model.DreamRecord `json:"record"`
	Stage     dialogue.Stage     `json:"stage"`
	TurnCount int                `json:"turnCount"`
}

// TrendPoint 是情绪趋势中的一天。
type TrendPoint struct {
	Date     string         `json:"date"`
	Emotions map[string]int `json:"emotions"`
	Total    int            `json:"total"`
}

// DreamStats 是日记的汇总统计。
type DreamStats struct {
	Total           int            `json:"total"`
	Completed       int            `json:"completed"`
	EmotionCounts   map[string]int `json:"emotionCounts"`
	SymbolFrequency map[string]int `json:"symbolFrequency"`
}

// DreamService 提供梦境日记的查询、删除、导出、搜索与统计。
type DreamService interface {
	List(userID uint) ([]DreamListItem, error)
	Get(id string, userID uint) (*DreamDetail, error)
	Delete(ctx context.Context, id string, userID uint) error
	Export(userID uint) ([]byte, error)
	Search(ctx context.Context, userID uint, query string, size int) ([]model.DreamDocument, error)
	Trends(userID uint, days int) ([]TrendPoint, error)
	Stats(userID uint) (*DreamStats, error)
}

type dreamService struct {
	dreamRepo   repository.DreamRepository
	sessionRepo repository.SessionRepository
}

// NewDreamService 创建一个新的 DreamService 实例。
func NewDreamService(dreamRepo repository.DreamRepository, sessionRepo repository.SessionRepository) DreamService {
	return &dreamService{dreamRepo: dreamRepo, sessionRepo: sessionRepo}
}

// List 返回用户的日记列表，按创建时间倒序。
func (s *dreamService) List(userID uint) ([]DreamListItem, error) {
	records, err := s.dreamRepo.FindByUser(userID)
	if err != nil {
		return nil, err
	}

	items := make([]DreamListItem, 0, len(records))
	for _, r := range records {
		items = append(items, DreamListItem{
			ID:         r.ID,
			Snippet:    snippet(&r),
			Status:     r.Status,
			StatusText: statusText(r.Status),
			Emotion:    r.Emotion,
			Summary:    r.Summary,
			CreatedAt:  r.CreatedAt,
		})
	}
	return items, nil
}

// Get 返回单条记录及其投影出的对话状态。
func (s *dreamService) Get(id string, userID uint) (*DreamDetail, error) {
	record, err := s.findOwned(id, userID)
	if err != nil {
		return nil, err
	}

	ctx := dialogue.ProjectContext(record.Messages)
	return &DreamDetail{
		Record:    record,
		Stage:     ctx.Stage,
		TurnCount: ctx.TurnCount,
	}, nil
}

// Delete 删除用户自己的一条记录；若该记录正是活跃会话则一并清除指针。
func (s *dreamService) Delete(ctx context.Context, id string, userID uint) error {
	if _, err := s.findOwned(id, userID); err != nil {
		return err
	}
	if err := s.dreamRepo.Delete(id, userID); err != nil {
		return err
	}

	current, err := s.sessionRepo.GetCurrentRecordID(ctx, userID)
	if err == nil && current == id {
		if err := s.sessionRepo.ClearCurrentRecordID(ctx, userID); err != nil {
			log.Warnf("清除活跃会话指针失败: userID=%d, %v", userID, err)
		}
	}
	return nil
}

// Export 将用户的全部记录导出为 JSON。
func (s *dreamService) Export(userID uint) ([]byte, error) {
	records, err := s.dreamRepo.FindByUser(userID)
	if err != nil {
		return nil, err
	}

	payload := map[string]interface{}{
		"exportedAt": time.Now(),
		"count":      len(records),
		"records":    records,
	}
	return json.MarshalIndent(payload, "", "  ")
}

// Search 在用户已完成的记录中做全文搜索。
func (s *dreamService) Search(ctx context.Context, userID uint, query string, size int) ([]model.DreamDocument, error) {
	return es.SearchDreams(ctx, config.Conf.Elasticsearch.IndexName, userID, query, size)
}

// Trends 返回最近 days 天的逐日情绪分布（只统计已完成的记录）。
func (s *dreamService) Trends(userID uint, days int) ([]TrendPoint, error) {
	if days <= 0 {
		days = 30
	}
	records, err := s.dreamRepo.FindByUser(userID)
	if err != nil {
		return nil, err
	}

	cutoff := time.Now().AddDate(0, 0, -days)
	byDay := make(map[string]*TrendPoint)
	for _, r := range records {
		if r.Status != model.StatusCompleted || r.Emotion == "" {
			continue
		}
		if r.CreatedAt.Before(cutoff) {
			continue
		}
		day := r.CreatedAt.Format("2006-01-02")
		point, ok := byDay[day]
		if !ok {
			point = &TrendPoint{Date: day, Emotions: make(map[string]int)}
			byDay[day] = point
		}
		point.Emotions[r.Emotion]++
		point.Total++
	}

	// 逐日补全区间内的空点，保证前端拿到连续序列
	points := make([]TrendPoint, 0, days)
	for i := days - 1; i >= 0; i-- {
		day := time.Now().AddDate(0, 0, -i).Format("2006-01-02")
		if p, ok := byDay[day]; ok {
			points = append(points, *p)
		} else {
			points = append(points, TrendPoint{Date: day, Emotions: map[string]int{}})
		}
	}
	return points, nil
}

// Stats 返回情绪分布与高频符号。
func (s *dreamService) Stats(userID uint) (*DreamStats, error) {
	records, err := s.dreamRepo.FindByUser(userID)
	if err != nil {
		return nil, err
	}

	stats := &DreamStats{
		Total:           len(records),
		EmotionCounts:   make(map[string]int),
		SymbolFrequency: make(map[string]int),
	}
	for _, r := range records {
		if r.Status != model.StatusCompleted {
			continue
		}
		stats.Completed++
		if r.Emotion != "" {
			stats.EmotionCounts[r.Emotion]++
		}
		if r.Extracted != nil {
			for _, sym := range r.Extracted.Symbols {
				stats.SymbolFrequency[sym]++
			}
		}
	}
	return stats, nil
}

// findOwned 加载记录并校验归属，避免横向越权访问。
func (s *dreamService) findOwned(id string, userID uint) (*model.DreamRecord, error) {
	record, err := s.dreamRepo.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrRecordNotFound, id)
	}
	if record.UserID != userID {
		return nil, ErrRecordNotFound
	}
	return record, nil
}

// snippet 取首条用户发言的前若干字作为列表摘要。
func snippet(r *model.DreamRecord) string {
	const maxRunes = 50
	var text string
	for _, m := range r.Messages {
		if m.Role == "user" {
			text = m.Content
			break
		}
	}
	if text == "" {
		text = r.RawText
	}
	runes := []rune(text)
	if len(runes) > maxRunes {
		return string(runes[:maxRunes]) + "…"
	}
	return text
}

func statusText(status string) string {
	if status == model.StatusCompleted {
		return statusTextCompleted
	}
	return statusTextInProgress
}
