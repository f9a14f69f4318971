package handler

import (
	"net/http"

	"dreamtrace-go/internal/service"
	"dreamtrace-go/pkg/log"
	"dreamtrace-go/pkg/token"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // 允许所有来源
	},
}

// ChatHandler 负责处理脚本化对话请求与引导式 WebSocket 对话连接。
type ChatHandler struct {
	chatService service.ChatService
	userService service.UserService
	jwtManager  *token.JWTManager
}

// NewChatHandler 创建一个新的 ChatHandler。
func NewChatHandler(chatService service.ChatService, userService service.UserService, jwtManager *token.JWTManager) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		userService: userService,
		jwtManager:  jwtManager,
	}
}

// MessageRequest 定义了脚本化对话 API 的请求体结构。
type MessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// PostMessage 处理脚本化对话的单轮请求。
func (h *ChatHandler) PostMessage(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req MessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "无效的请求负载：content 不能为空"})
		return
	}

	reply, err := h.chatService.ScriptedTurn(c.Request.Context(), user.ID, req.Content)
	if err != nil {
		log.Errorf("PostMessage: 对话处理失败, userID=%d, error: %v", user.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "对话处理失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "data": reply, "message": "success"})
}

// HandleGuided 处理一个传入的引导式对话 WebSocket 连接。
// token 走路径参数，因为浏览器的 WebSocket API 无法自定义请求头。
func (h *ChatHandler) HandleGuided(c *gin.Context) {
	tokenString := c.Param("token")
	claims, err := h.jwtManager.VerifyToken(tokenString)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"code": http.StatusUnauthorized, "message": "无效的 token", "data": nil})
		return
	}

	user, err := h.userService.GetProfile(claims.Username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "无法获取用户信息", "data": nil})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("WebSocket 升级失败", err)
		return
	}
	defer conn.Close()

	log.Infof("WebSocket 连接已建立，用户: %s", claims.Username)

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			log.Warnf("从 WebSocket 读取消息失败: %v", err)
			break
		}

		input := string(message)
		if input == "" {
			continue
		}

		if err := h.chatService.GuidedTurn(c.Request.Context(), user, input, conn); err != nil {
			log.Errorf("处理引导式对话失败: %v", err)
			_ = conn.WriteJSON(gin.H{"error": "AI服务暂时不可用，请稍后重试"})
		}
	}
}
