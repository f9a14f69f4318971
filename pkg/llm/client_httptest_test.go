package llm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"dreamtrace-go/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chunkCollector 收集流式写入的分块。
type chunkCollector struct {
	chunks []string
}

func (c *chunkCollector) WriteMessage(messageType int, data []byte) error {
	c.chunks = append(c.chunks, string(data))
	return nil
}

func newTestClient(baseURL string) Client {
	return NewClient(config.LLMConfig{
		APIKey:  "test-key",
		BaseURL: baseURL,
		Model:   "test-model",
	})
}

func TestChatReturnsFullContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"完整的回复内容"}}]}`))
	}))
	defer srv.Close()

	content, err := newTestClient(srv.URL).Chat(context.Background(), []Message{
		{Role: "user", Content: "你好"},
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, "完整的回复内容", content)
}

func TestChatNon200IsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Chat(context.Background(), []Message{
		{Role: "user", Content: "你好"},
	}, nil)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "non-200")
}

func TestChatMissingAPIKey(t *testing.T) {
	client := NewClient(config.LLMConfig{BaseURL: "http://127.0.0.1:1", Model: "m"})
	_, err := client.Chat(context.Background(), []Message{{Role: "user", Content: "你好"}}, nil)
	assert.Error(t, err)
}

func TestStreamChatMessagesWritesChunks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = w.Write([]byte(
			"data: {\"choices\":[{\"delta\":{\"content\":\"第一\"}}]}\n" +
				"data: {\"choices\":[{\"delta\":{\"content\":\"第二\"}}]}\n" +
				"data: {\"choices\":[{\"delta\":{\"content\":\"\"}}]}\n" +
				"data: [DONE]\n"))
	}))
	defer srv.Close()

	collector := &chunkCollector{}
	err := newTestClient(srv.URL).StreamChatMessages(context.Background(), []Message{
		{Role: "user", Content: "你好"},
	}, nil, collector)

	require.NoError(t, err)
	assert.Equal(t, []string{"第一", "第二"}, collector.chunks)
}

func TestStreamRejectsInvalidMessagesLocally(t *testing.T) {
	// 不启动任何服务端：非法消息必须在发起网络调用前被拒绝
	client := newTestClient("http://127.0.0.1:1")
	err := client.StreamChatMessages(context.Background(), []Message{
		{Role: "bot", Content: "非法角色"},
	}, nil, &chunkCollector{})

	assert.ErrorIs(t, err, ErrInvalidMessage)
}
