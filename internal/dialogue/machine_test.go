package dialogue

import (
	"fmt"
	"testing"
	"time"

	"dreamtrace-go/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdvanceAlwaysReplies(t *testing.T) {
	stages := []Stage{StageInitial, StageDreamCollecting, StageEmotionExploring, StageDeepening, StageReadyForAnalysis}
	inputs := []string{
		"",
		"不知道",
		"好害怕",
		"很开心",
		"帮我分析一下",
		"我梦见自己在一片海上飞",
		"嗯",
	}

	for _, stage := range stages {
		for turn := 0; turn <= 5; turn++ {
			for _, input := range inputs {
				ctx := ChatContext{Stage: stage, TurnCount: turn}
				reply := Advance(input, ctx)
				assert.NotEmpty(t, reply.Text, "stage=%s turn=%d input=%q", stage, turn, input)
				assert.Equal(t, turn+1, reply.NewContext.TurnCount)
			}
		}
	}
}

func TestAdvanceInitialDreamDesc(t *testing.T) {
	reply := Advance("我梦见自己被一群人追赶，跑不动", NewContext())

	assert.Equal(t, StageEmotionExploring, reply.NewContext.Stage)
	assert.Equal(t, replyAskAtmosphere, reply.Text)
	assert.Contains(t, reply.NewContext.DreamText, "追赶")
}

func TestAdvanceHesitationKeepsStage(t *testing.T) {
	ctx := ChatContext{Stage: StageEmotionExploring, TurnCount: 2}
	reply := Advance("不知道，记不清了", ctx)

	assert.Equal(t, replyHesitation, reply.Text)
	assert.Equal(t, StageEmotionExploring, reply.NewContext.Stage)
	assert.Equal(t, ActionNone, reply.Action)
}

func TestAdvanceAnxiousFromInitial(t *testing.T) {
	reply := Advance("好害怕", NewContext())

	assert.Equal(t, replyAnxious, reply.Text)
	assert.Equal(t, StageEmotionExploring, reply.NewContext.Stage)
}

func TestAdvanceRequestAnalysis(t *testing.T) {
	ctx := ChatContext{Stage: StageEmotionExploring, TurnCount: 2}
	reply := Advance("帮我分析一下这个梦是什么意思", ctx)

	assert.Equal(t, ActionShowAnalysis, reply.Action)
	assert.Equal(t, StageReadyForAnalysis, reply.NewContext.Stage)
}

func TestAdvanceEmotionExprDeepens(t *testing.T) {
	ctx := ChatContext{Stage: StageEmotionExploring, TurnCount: 1}
	reply := Advance("整个梦里都很平静", ctx)

	assert.Equal(t, replyEmotionDeepen, reply.Text)
	assert.Equal(t, StageDeepening, reply.NewContext.Stage)
}

func TestAdvanceDeepeningThreshold(t *testing.T) {
	// 轮次未过阈值：继续追问隐喻
	ctx := ChatContext{Stage: StageDeepening, TurnCount: 2}
	reply := Advance("梦里那扇门一直打不开", ctx)
	assert.Equal(t, replyMetaphorProbe, reply.Text)
	assert.Equal(t, StageDeepening, reply.NewContext.Stage)

	// 轮次已过阈值：主动提出解析
	ctx = ChatContext{Stage: StageDeepening, TurnCount: 4}
	reply = Advance("梦里那扇门一直打不开", ctx)
	assert.Equal(t, replyOfferAnalysis, reply.Text)
	assert.Equal(t, StageReadyForAnalysis, reply.NewContext.Stage)
}

func TestAdvanceReadyForAnalysisShows(t *testing.T) {
	ctx := ChatContext{Stage: StageReadyForAnalysis, TurnCount: 5}
	reply := Advance("嗯好的呀，那就看看吧", ctx)

	assert.Equal(t, replyShowAnalysis, reply.Text)
	assert.Equal(t, ActionShowAnalysis, reply.Action)
}

func TestAdvanceAccumulatesDreamText(t *testing.T) {
	ctx := NewContext()
	reply := Advance("我梦见一条很长的走廊", ctx)
	reply = Advance("走廊尽头有一扇红色的门", reply.NewContext)

	assert.Contains(t, reply.NewContext.DreamText, "走廊")
	assert.Contains(t, reply.NewContext.DreamText, "红色的门")
}

func TestProjectContextDeterministic(t *testing.T) {
	messages := model.MessageList{}
	userTurns := []string{
		"我梦见自己在学校的走廊里走",
		"周围很安静，有点奇怪",
		"后来有人在后面追我",
	}
	for i, u := range userTurns {
		messages = append(messages, model.ChatMessage{Role: "user", Content: u, Timestamp: time.Now()})
		messages = append(messages, model.ChatMessage{Role: "assistant", Content: fmt.Sprintf("回复%d", i), Timestamp: time.Now()})
	}

	first := ProjectContext(messages)
	second := ProjectContext(messages)

	require.Equal(t, first, second)
	assert.Equal(t, len(userTurns), first.TurnCount)

	// 助手消息不参与投影
	withExtra := append(model.MessageList{}, messages...)
	withExtra = append(withExtra, model.ChatMessage{Role: "assistant", Content: "补充回复"})
	assert.Equal(t, first, ProjectContext(withExtra))
}

func TestClassifyIntentPriority(t *testing.T) {
	// 犹豫优先于焦虑
	assert.Equal(t, IntentHesitation, ClassifyIntent("不知道，有点害怕"))
	// 焦虑优先于情绪表达
	assert.Equal(t, IntentAnxious, ClassifyIntent("很紧张也很难过"))
	// 情绪表达优先于请求解析
	assert.Equal(t, IntentEmotionExpr, ClassifyIntent("很奇怪，为什么会这样"))
	// 长文本按梦境叙述处理
	assert.Equal(t, IntentDreamDesc, ClassifyIntent("昨天晚上睡得很晚然后就开始做那个"))
	// 短且无标记
	assert.Equal(t, IntentOther, ClassifyIntent("嗯"))
}
