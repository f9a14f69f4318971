package service

import (
	"context"
	"strings"

	"dreamtrace-go/internal/model"
	"dreamtrace-go/internal/repository"
)

// DictionaryService 提供符号词典的浏览与检索。
type DictionaryService interface {
	List(ctx context.Context) []model.DictionaryEntry
	Get(ctx context.Context, id string) (*model.DictionaryEntry, error)
	Search(ctx context.Context, keyword string) []model.DictionaryEntry
}

type dictionaryService struct {
	dictRepo repository.DictionaryRepository
}

// NewDictionaryService 创建一个新的 DictionaryService 实例。
func NewDictionaryService(dictRepo repository.DictionaryRepository) DictionaryService {
	return &dictionaryService{dictRepo: dictRepo}
}

// List 返回全部词典条目。
func (s *dictionaryService) List(ctx context.Context) []model.DictionaryEntry {
	return s.dictRepo.LoadAll(ctx)
}

// Get 根据 ID 返回单个词典条目。
func (s *dictionaryService) Get(ctx context.Context, id string) (*model.DictionaryEntry, error) {
	return s.dictRepo.FindByID(ctx, id)
}

// Search 在条目名、辅助关键词和释义上做包含匹配。
// 空关键词退化为 List。
func (s *dictionaryService) Search(ctx context.Context, keyword string) []model.DictionaryEntry {
	entries := s.dictRepo.LoadAll(ctx)
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	if keyword == "" {
		return entries
	}

	var out []model.DictionaryEntry
	for _, e := range entries {
		if entryMatches(e, keyword) {
			out = append(out, e)
		}
	}
	return out
}

func entryMatches(e model.DictionaryEntry, keyword string) bool {
	if strings.Contains(strings.ToLower(e.Keyword), keyword) {
		return true
	}
	if strings.Contains(strings.ToLower(e.Interpretation), keyword) {
		return true
	}
	for _, k := range e.Keywords {
		if strings.Contains(strings.ToLower(k), keyword) {
			return true
		}
	}
	return false
}
