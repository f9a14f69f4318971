package service

import (
	"context"

	"dreamtrace-go/internal/analysis"
	"dreamtrace-go/internal/model"
	"dreamtrace-go/internal/repository"
	"dreamtrace-go/pkg/emotion"
)

// AnalysisResult 是一段梦境文本的完整分析产物：结构化抽取、模板摘要、
// 引导提示以及大模型给出的主情绪判定。
type AnalysisResult struct {
	Extracted model.Extracted `json:"extracted"`
	Summary   string          `json:"summary"`
	Hints     analysis.Hints  `json:"hints"`
	Emotion   emotion.Result  `json:"emotion"`
}

// AnalysisService 把词典匹配、模板摘要和情绪判定编排成单次分析调用。
// extractText 是做结构化抽取的文本（概要或转写），emotionText 只含
// 用户自己的叙述——情绪判定不应被助手的措辞带偏。
type AnalysisService interface {
	Analyze(ctx context.Context, extractText, emotionText string) AnalysisResult
}

type analysisService struct {
	dictRepo   repository.DictionaryRepository
	classifier emotion.Classifier
}

// NewAnalysisService 创建一个新的 AnalysisService 实例。
func NewAnalysisService(dictRepo repository.DictionaryRepository, classifier emotion.Classifier) AnalysisService {
	return &analysisService{dictRepo: dictRepo, classifier: classifier}
}

// Analyze 对文本做词典抽取与情绪判定。两条路径的失败都各自兜底，
// 调用方永远得到一个完整的结果。
func (s *analysisService) Analyze(ctx context.Context, extractText, emotionText string) AnalysisResult {
	entries := s.dictRepo.LoadAll(ctx)
	extracted, matched := analysis.Extract(extractText, entries)

	result := s.classifier.Classify(ctx, emotionText)

	// 情绪判定的结论优先于词典候选：不在候选列表中时插到最前面
	if !containsEmotion(extracted.Emotions, result.PrimaryEmotion) {
		oracle := model.EmotionLabel{
			Name:  result.PrimaryEmotion,
			Score: int(result.Confidence * 100),
		}
		extracted.Emotions = append([]model.EmotionLabel{oracle}, extracted.Emotions...)
	}

	return AnalysisResult{
		Extracted: extracted,
		Summary:   analysis.ComposeSummary(extracted, matched),
		Hints:     analysis.ComposeHints(matched),
		Emotion:   result,
	}
}

func containsEmotion(labels []model.EmotionLabel, name string) bool {
	for _, l := range labels {
		if l.Name == name {
			return true
		}
	}
	return false
}
