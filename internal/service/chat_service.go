package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"dreamtrace-go/internal/config"
	"dreamtrace-go/internal/dialogue"
	"dreamtrace-go/internal/model"
	"dreamtrace-go/internal/repository"
	"dreamtrace-go/pkg/es"
	"dreamtrace-go/pkg/kafka"
	"dreamtrace-go/pkg/llm"
	"dreamtrace-go/pkg/log"
	"dreamtrace-go/pkg/tasks"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// 引导式对话的内置提示词与完成标记，config.Chat 缺省时生效。
const (
	defaultGuidePrompt = `你是一位温柔、专业的梦境陪伴者。用户会向你讲述自己的梦，
你的任务是通过提问帮助对方回忆细节、觉察情绪，每次回复保持在三句话以内。
当你认为信息已经足够、用户也愿意听取解读时，给出一段完整的梦境解读，
并在解读末尾另起一行输出「【梦境概要】」加上一句话的梦境概括，
然后在最后单独输出标记 [分析完成]。在此之前绝不要输出这个标记。`
	defaultDoneMarker     = "[分析完成]"
	defaultSynopsisHeader = "【梦境概要】"

	// 大模型不可用时持久化的兜底回复，会话保持进行中
	replyOracleDown = "抱歉，我这边出了一点小状况，暂时没法回应。你刚才说的我都记下了，稍后再试试好吗？"
)

// ScriptedReply 是脚本化对话单轮的响应。
type ScriptedReply struct {
	RecordID string          `json:"recordId"`
	Reply    string          `json:"reply"`
	Stage    dialogue.Stage  `json:"stage"`
	Action   dialogue.Action `json:"action"`
	Analysis *AnalysisResult `json:"analysis,omitempty"`
}

// ChatService 承载两种对话模式：脚本化状态机对话与大模型引导式流式对话。
type ChatService interface {
	ScriptedTurn(ctx context.Context, userID uint, input string) (*ScriptedReply, error)
	GuidedTurn(ctx context.Context, user *model.User, input string, ws *websocket.Conn) error
}

type chatService struct {
	dreamRepo       repository.DreamRepository
	sessionRepo     repository.SessionRepository
	analysisService AnalysisService
	llmClient       llm.Client
}

// NewChatService 创建一个新的 ChatService 实例。
func NewChatService(
	dreamRepo repository.DreamRepository,
	sessionRepo repository.SessionRepository,
	analysisService AnalysisService,
	llmClient llm.Client,
) ChatService {
	return &chatService{
		dreamRepo:       dreamRepo,
		sessionRepo:     sessionRepo,
		analysisService: analysisService,
		llmClient:       llmClient,
	}
}

// ScriptedTurn 用内置状态机推进一轮对话。用户消息先落库再计算回复，
// 崩溃时最多丢一条助手回复，不会丢用户的叙述。
func (s *chatService) ScriptedTurn(ctx context.Context, userID uint, input string) (*ScriptedReply, error) {
	record, err := s.currentRecord(ctx, userID)
	if err != nil {
		return nil, err
	}

	// 投影出上一轮为止的对话状态，再推进本轮
	prevCtx := dialogue.ProjectContext(record.Messages)

	record.AppendMessage("user", input)
	if err := s.dreamRepo.Save(record); err != nil {
		return nil, err
	}

	reply := dialogue.Advance(input, prevCtx)

	record.AppendMessage("assistant", reply.Text)
	if err := s.dreamRepo.Save(record); err != nil {
		return nil, err
	}

	resp := &ScriptedReply{
		RecordID: record.ID,
		Reply:    reply.Text,
		Stage:    reply.NewContext.Stage,
		Action:   reply.Action,
	}

	if reply.Action == dialogue.ActionShowAnalysis {
		// 抽取只吃状态机积累的梦境正文，犹豫和元评论不进入分析；
		// 一句正文都没有时退回全部用户叙述
		extractText := strings.TrimSpace(reply.NewContext.DreamText)
		if extractText == "" {
			extractText = record.UserText()
		}
		result := s.finalizeRecord(ctx, record, extractText, record.UserText())
		resp.Analysis = &result
	}
	return resp, nil
}

// GuidedTurn 把一轮输入交给大模型流式回复。完成标记被拦截器扣留，
// 永远不会下发给客户端；识别到标记后走与脚本化模式相同的收尾流程。
func (s *chatService) GuidedTurn(ctx context.Context, user *model.User, input string, ws *websocket.Conn) error {
	record, err := s.currentRecord(ctx, user.ID)
	if err != nil {
		return err
	}

	record.AppendMessage("user", input)
	if err := s.dreamRepo.Save(record); err != nil {
		return err
	}

	messages := s.composeGuidedMessages(record)
	interceptor := newMarkerInterceptor(ws, doneMarker())

	if err := s.llmClient.StreamChatMessages(ctx, messages, nil, interceptor); err != nil {
		log.Errorf("引导式对话流式调用失败: recordID=%s, %v", record.ID, err)
		// 兜底回复也要落库，会话保持进行中，用户稍后可以继续
		record.AppendMessage("assistant", replyOracleDown)
		if saveErr := s.dreamRepo.Save(record); saveErr != nil {
			log.Errorf("保存兜底回复失败: recordID=%s, %v", record.ID, saveErr)
		}
		return err
	}

	interceptor.Flush()
	sendCompletion(ws)

	visible := strings.TrimSpace(strings.ReplaceAll(interceptor.Full(), doneMarker(), ""))
	if visible != "" {
		record.AppendMessage("assistant", visible)
		if err := s.dreamRepo.Save(record); err != nil {
			log.Errorf("保存助手回复失败: recordID=%s, %v", record.ID, err)
		}
	}

	if interceptor.MarkerFound() {
		// 概要段比整段转写更干净，存在时优先作为抽取输入；
		// 情绪判定只看用户自己的叙述
		extractText := extractSynopsis(visible, synopsisHeader())
		if extractText == "" {
			extractText = record.RawText
		}
		// 即使连接随后断开，收尾也要完成
		s.finalizeRecord(context.Background(), record, extractText, record.UserText())
	}
	return nil
}

// currentRecord 返回用户当前进行中的记录，没有则新建一条并登记会话指针。
func (s *chatService) currentRecord(ctx context.Context, userID uint) (*model.DreamRecord, error) {
	recordID, err := s.sessionRepo.GetCurrentRecordID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if recordID != "" {
		record, err := s.dreamRepo.FindByID(recordID)
		if err == nil && record.Status == model.StatusInProgress {
			return record, nil
		}
		// 指针指向的记录已完成或已丢失，当作没有会话处理
	}

	record := &model.DreamRecord{
		ID:     uuid.NewString(),
		UserID: userID,
		Status: model.StatusInProgress,
	}
	if err := s.dreamRepo.Save(record); err != nil {
		return nil, err
	}
	if err := s.sessionRepo.SetCurrentRecordID(ctx, userID, record.ID); err != nil {
		log.Warnf("登记会话指针失败: userID=%d, %v", userID, err)
	}
	return record, nil
}

// finalizeRecord 执行记录收尾：分析、落库、索引、归档、清除会话指针。
// 分析失败有自己的兜底，索引与归档失败只记日志，不阻塞对话响应。
func (s *chatService) finalizeRecord(ctx context.Context, record *model.DreamRecord, extractText, emotionText string) AnalysisResult {
	result := s.analysisService.Analyze(ctx, extractText, emotionText)

	record.Extracted = &result.Extracted
	record.Summary = result.Summary
	record.Emotion = result.Emotion.PrimaryEmotion
	record.Status = model.StatusCompleted
	// 分析产物只动这四个字段，消息列表此前已各自落库
	updates := map[string]interface{}{
		"extracted": record.Extracted,
		"summary":   record.Summary,
		"emotion":   record.Emotion,
		"status":    record.Status,
	}
	if err := s.dreamRepo.UpdateFields(record.ID, updates); err != nil {
		log.Errorf("保存分析结果失败: recordID=%s, %v", record.ID, err)
	}

	doc := model.DreamDocument{
		RecordID:   record.ID,
		UserID:     record.UserID,
		Transcript: record.RawText,
		Summary:    record.Summary,
		Symbols:    result.Extracted.Symbols,
		Emotion:    record.Emotion,
		CreatedAt:  record.CreatedAt,
	}
	if err := es.IndexDream(ctx, config.Conf.Elasticsearch.IndexName, doc); err != nil {
		log.Errorf("索引梦境记录失败: recordID=%s, %v", record.ID, err)
	}

	if err := kafka.ProduceArchiveTask(tasks.RecordArchiveTask{RecordID: record.ID, UserID: record.UserID}); err != nil {
		log.Errorf("发送归档任务失败: recordID=%s, %v", record.ID, err)
	}

	if err := s.sessionRepo.ClearCurrentRecordID(ctx, record.UserID); err != nil {
		log.Warnf("清除会话指针失败: userID=%d, %v", record.UserID, err)
	}
	return result
}

// composeGuidedMessages 构建 system + 历史消息。本轮用户输入已在历史末尾。
func (s *chatService) composeGuidedMessages(record *model.DreamRecord) []llm.Message {
	msgs := make([]llm.Message, 0, len(record.Messages)+1)
	msgs = append(msgs, llm.Message{Role: "system", Content: guidePrompt()})
	for _, m := range record.Messages {
		msgs = append(msgs, llm.Message{Role: m.Role, Content: m.Content})
	}
	return msgs
}

// extractSynopsis 取概要标题之后的文本，没有标题时返回空串。
func extractSynopsis(text, header string) string {
	idx := strings.LastIndex(text, header)
	if idx < 0 {
		return ""
	}
	return strings.TrimSpace(text[idx+len(header):])
}

func guidePrompt() string {
	if p := config.Conf.Chat.GuidePrompt; p != "" {
		return p
	}
	return defaultGuidePrompt
}

func doneMarker() string {
	if m := config.Conf.Chat.DoneMarker; m != "" {
		return m
	}
	return defaultDoneMarker
}

func synopsisHeader() string {
	if h := config.Conf.Chat.SynopsisHeader; h != "" {
		return h
	}
	return defaultSynopsisHeader
}

// markerInterceptor 封装 websocket 连接：捕获完整答案，并扣住可能是
// 完成标记前缀的尾部字节，保证标记本身永远不会泄露到客户端。
// 标记出现之后的所有内容也一并吞掉。
type markerInterceptor struct {
	conn    *websocket.Conn
	full    strings.Builder
	pending string
	marker  string
	found   bool
}

func newMarkerInterceptor(conn *websocket.Conn, marker string) *markerInterceptor {
	return &markerInterceptor{conn: conn, marker: marker}
}

// WriteMessage 满足 llm.MessageWriter 接口。
func (w *markerInterceptor) WriteMessage(messageType int, data []byte) error {
	w.full.Write(data)
	if w.found {
		return nil
	}

	buf := w.pending + string(data)
	if idx := strings.Index(buf, w.marker); idx >= 0 {
		w.found = true
		w.pending = ""
		if idx > 0 {
			return w.sendChunk(messageType, buf[:idx])
		}
		return nil
	}

	// 扣住可能是标记开头的尾部，其余照常下发
	hold := prefixOverlap(buf, w.marker)
	w.pending = buf[len(buf)-hold:]
	if out := buf[:len(buf)-hold]; out != "" {
		return w.sendChunk(messageType, out)
	}
	return nil
}

// Flush 把流结束后仍被扣住的尾部下发（此时它确定不是标记）。
func (w *markerInterceptor) Flush() {
	if w.found || w.pending == "" {
		return
	}
	if err := w.sendChunk(websocket.TextMessage, w.pending); err != nil {
		log.Warnf("下发扣留尾部失败: %v", err)
	}
	w.pending = ""
}

// Full 返回捕获到的完整原始答案（含标记）。
func (w *markerInterceptor) Full() string {
	return w.full.String()
}

// MarkerFound 报告流中是否出现过完成标记。
func (w *markerInterceptor) MarkerFound() bool {
	return w.found
}

func (w *markerInterceptor) sendChunk(messageType int, text string) error {
	payload := map[string]string{"chunk": text}
	b, _ := json.Marshal(payload)
	return w.conn.WriteMessage(messageType, b)
}

// prefixOverlap 返回 buf 的最长后缀长度，该后缀同时是 marker 的前缀。
func prefixOverlap(buf, marker string) int {
	max := len(marker) - 1
	if max > len(buf) {
		max = len(buf)
	}
	for n := max; n > 0; n-- {
		if strings.HasPrefix(marker, buf[len(buf)-n:]) {
			return n
		}
	}
	return 0
}

// sendCompletion 发送完成通知 JSON。
func sendCompletion(ws *websocket.Conn) {
	notif := map[string]interface{}{
		"type":      "completion",
		"status":    "finished",
		"message":   "响应已完成",
		"timestamp": time.Now().UnixMilli(),
	}
	b, _ := json.Marshal(notif)
	_ = ws.WriteMessage(websocket.TextMessage, b)
}
