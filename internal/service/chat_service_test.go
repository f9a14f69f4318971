package service

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"dreamtrace-go/pkg/log"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	log.Init("error", "console", "")
	os.Exit(m.Run())
}

// newWSPair 建立一对真实的 websocket 连接，返回 (服务端, 客户端)。
func newWSPair(t *testing.T) (*websocket.Conn, *websocket.Conn) {
	t.Helper()
	serverConns := make(chan *websocket.Conn, 1)
	up := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := up.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		serverConns <- conn
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	server := <-serverConns
	t.Cleanup(func() { server.Close() })
	return server, client
}

func readChunk(t *testing.T, conn *websocket.Conn) string {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var payload map[string]string
	require.NoError(t, json.Unmarshal(data, &payload))
	return payload["chunk"]
}

func TestMarkerInterceptorWithholdsMarkerAcrossChunks(t *testing.T) {
	server, client := newWSPair(t)
	w := newMarkerInterceptor(server, "[分析完成]")

	// 标记被拆在两个分块里
	require.NoError(t, w.WriteMessage(websocket.TextMessage, []byte("解读完毕。[分")))
	require.NoError(t, w.WriteMessage(websocket.TextMessage, []byte("析完成]这些不该下发")))
	require.NoError(t, w.WriteMessage(websocket.TextMessage, []byte("标记之后的内容也不该下发")))
	w.Flush()

	assert.Equal(t, "解读完毕。", readChunk(t, client))

	// 客户端不应再收到任何分块
	require.NoError(t, client.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err := client.ReadMessage()
	assert.Error(t, err)

	assert.True(t, w.MarkerFound())
	assert.Equal(t, "解读完毕。[分析完成]这些不该下发标记之后的内容也不该下发", w.Full())
}

func TestMarkerInterceptorFlushesFalseAlarmTail(t *testing.T) {
	server, client := newWSPair(t)
	w := newMarkerInterceptor(server, "[分析完成]")

	// 尾部像标记开头但流在此结束：Flush 后必须下发
	require.NoError(t, w.WriteMessage(websocket.TextMessage, []byte("平常回复[")))
	w.Flush()

	assert.Equal(t, "平常回复", readChunk(t, client))
	assert.Equal(t, "[", readChunk(t, client))
	assert.False(t, w.MarkerFound())
}

func TestMarkerInterceptorMarkerInSingleChunk(t *testing.T) {
	server, client := newWSPair(t)
	w := newMarkerInterceptor(server, "[分析完成]")

	require.NoError(t, w.WriteMessage(websocket.TextMessage, []byte("这是解读。[分析完成]")))
	w.Flush()

	assert.Equal(t, "这是解读。", readChunk(t, client))
	assert.True(t, w.MarkerFound())
}

func TestPrefixOverlap(t *testing.T) {
	marker := "[分析完成]"

	assert.Equal(t, 0, prefixOverlap("没有重叠", marker))
	assert.Equal(t, len("[分"), prefixOverlap("结尾是[分", marker))
	assert.Equal(t, len("[分析完成"), prefixOverlap("[分析完成", marker))
	// 完整标记不算前缀重叠，由 Index 分支处理
	assert.Equal(t, 0, prefixOverlap("x[", "["))
}

func TestExtractSynopsis(t *testing.T) {
	header := "【梦境概要】"

	assert.Equal(t, "", extractSynopsis("没有概要的回复", header))
	assert.Equal(t, "在海上飞翔的梦", extractSynopsis("解读……\n【梦境概要】在海上飞翔的梦", header))
	// 有多个标题时取最后一个
	assert.Equal(t, "第二段", extractSynopsis("【梦境概要】第一段\n【梦境概要】第二段", header))
}
