package dialogue

import "dreamtrace-go/internal/model"

// Stage 是对话信息收集的阶段。
type Stage string

const (
	StageInitial          Stage = "initial"
	StageDreamCollecting  Stage = "dream_collecting"
	StageEmotionExploring Stage = "emotion_exploring"
	StageDeepening        Stage = "deepening"
	StageReadyForAnalysis Stage = "ready_for_analysis"
)

// Action 是状态机随回复一起发出的动作信号。
type Action string

const (
	ActionNone         Action = "none"
	ActionShowAnalysis Action = "show_analysis"
)

// deepening 阶段的轮次阈值，超过即进入 ready_for_analysis
const deepeningTurnLimit = 3

// ChatContext 是每次对话的临时状态，从持久化的消息列表投影得到，
// 自身从不单独持久化。
type ChatContext struct {
	Stage     Stage  `json:"stage"`
	DreamText string `json:"dreamText"`
	TurnCount int    `json:"turnCount"`
}

// NewContext 返回一个初始阶段的空上下文。
func NewContext() ChatContext {
	return ChatContext{Stage: StageInitial}
}

// Reply 是状态机单轮推进的结果。Text 永远非空。
type Reply struct {
	Text       string      `json:"text"`
	NewContext ChatContext `json:"newContext"`
	Action     Action      `json:"action"`
}

// 固定回复文案。
const (
	replyHesitation      = "没关系，梦境有时就是朦朦胧胧的。我们可以只聊聊你记得的任何一个片段，或者一种感觉。不用急，慢慢来。"
	replyAnxious         = "听到你这么说，我能感觉到那一刻的不安。深呼吸……在这里你是安全的。那种紧张感现在还在吗？还是只留在了梦里？"
	replyAnalysisStart   = "好的，结合你告诉我的这些，我为你整理了一份解析。希望能帮你理清思绪。"
	replyAskAtmosphere   = "嗯……我听到了。这个梦发生的时候，周围的氛围是怎样的？或者说，它给了你一种什么样的直观感觉？（是压抑、自由，还是别的？）"
	replyAskFirstPicture = "嗯，我在听。昨晚的梦里有什么特别的画面吗？"
	replyAskDetails      = "还有其他的细节吗？比如颜色、声音，或者当时你身边有谁？"
	replyEmotionDeepen   = "这种感觉确实很强烈……拥抱这种情绪。除此之外，梦里还有什么让你印象深刻的细节吗？比如某个特定的物品或场景？"
	replyEmotionLocate   = "这种感觉伴随着梦境的哪个部分最强烈呢？"
	replyOfferAnalysis   = "谢谢你跟我分享这些。我觉得我已经大概理解了这个梦对你的意义。你想现在看看解析吗？"
	replyMetaphorProbe   = "这很有意思……仿佛是一个隐喻。你觉得这和现实生活中的某件事有联系吗？"
	replyShowAnalysis    = "好的，我们来看看这个梦可能想告诉你什么。"
	replyListening       = "嗯，请继续说，我在听。"
)

// Advance 根据当前上下文和本轮输入推进状态机。
// 每次调用轮次计数恰好加一；任何分支都返回非空回复。
func Advance(input string, ctx ChatContext) Reply {
	intent := ClassifyIntent(input)
	next := ctx
	next.TurnCount = ctx.TurnCount + 1

	// 看起来是内容而非元评论或纯情绪词时，积累进梦境文本
	if intent == IntentDreamDesc || intent == IntentOther {
		next.DreamText += " " + input
	}

	var reply string
	action := ActionNone

	switch intent {
	case IntentHesitation:
		reply = replyHesitation
	case IntentAnxious:
		reply = replyAnxious
		if ctx.Stage == StageInitial {
			next.Stage = StageEmotionExploring
		}
	case IntentRequestAnalysis:
		reply = replyAnalysisStart
		action = ActionShowAnalysis
		next.Stage = StageReadyForAnalysis
	default:
		switch ctx.Stage {
		case StageInitial:
			if intent == IntentDreamDesc {
				reply = replyAskAtmosphere
				next.Stage = StageEmotionExploring
			} else {
				reply = replyAskFirstPicture
			}
		case StageDreamCollecting:
			reply = replyAskDetails
			next.Stage = StageEmotionExploring
		case StageEmotionExploring:
			if intent == IntentEmotionExpr {
				reply = replyEmotionDeepen
				next.Stage = StageDeepening
			} else {
				reply = replyEmotionLocate
			}
		case StageDeepening:
			if ctx.TurnCount > deepeningTurnLimit {
				reply = replyOfferAnalysis
				next.Stage = StageReadyForAnalysis
			} else {
				reply = replyMetaphorProbe
			}
		case StageReadyForAnalysis:
			reply = replyShowAnalysis
			action = ActionShowAnalysis
		}
	}

	if reply == "" {
		reply = replyListening
	}

	return Reply{Text: reply, NewContext: next, Action: action}
}

// ProjectContext 从持久化的消息列表确定性地重建对话上下文：
// 把每条用户发言按顺序重放给状态机。上下文从不单独存储，
// 避免与消息列表出现两份状态的一致性缝隙。
func ProjectContext(messages []model.ChatMessage) ChatContext {
	ctx := NewContext()
	for _, m := range messages {
		if m.Role != "user" {
			continue
		}
		ctx = Advance(m.Content, ctx).NewContext
	}
	return ctx
}
