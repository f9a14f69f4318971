package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"dreamtrace-go/internal/model"
	"dreamtrace-go/internal/service"
	"dreamtrace-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// DreamHandler 负责处理梦境日记相关的 API 请求。
type DreamHandler struct {
	dreamService service.DreamService
}

// NewDreamHandler 创建一个新的 DreamHandler 实例。
func NewDreamHandler(dreamService service.DreamService) *DreamHandler {
	return &DreamHandler{dreamService: dreamService}
}

// currentUser 取出 AuthMiddleware 注入的用户对象。
func currentUser(c *gin.Context) (*model.User, bool) {
	userValue, exists := c.Get("user")
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "无法获取用户信息"})
		return nil, false
	}
	user, ok := userValue.(*model.User)
	if !ok || user == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "用户数据类型错误"})
		return nil, false
	}
	return user, true
}

// List 返回当前用户的日记列表。
func (h *DreamHandler) List(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	items, err := h.dreamService.List(user.ID)
	if err != nil {
		log.Errorf("List: 获取日记列表失败, userID=%d, error: %v", user.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "获取日记列表失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "data": items, "message": "success"})
}

// Get 返回单条记录的详情。
func (h *DreamHandler) Get(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	detail, err := h.dreamService.Get(c.Param("id"), user.ID)
	if err != nil {
		if errors.Is(err, service.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"code": http.StatusNotFound, "message": "梦境记录不存在"})
			return
		}
		log.Errorf("Get: 获取记录失败, id=%s, error: %v", c.Param("id"), err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "获取记录失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "data": detail, "message": "success"})
}

// Delete 删除当前用户的一条记录。
func (h *DreamHandler) Delete(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.dreamService.Delete(c.Request.Context(), c.Param("id"), user.ID); err != nil {
		if errors.Is(err, service.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"code": http.StatusNotFound, "message": "梦境记录不存在"})
			return
		}
		log.Errorf("Delete: 删除记录失败, id=%s, error: %v", c.Param("id"), err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "删除记录失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "删除成功"})
}

// Export 导出当前用户的全部记录为 JSON 附件。
func (h *DreamHandler) Export(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	data, err := h.dreamService.Export(user.ID)
	if err != nil {
		log.Errorf("Export: 导出失败, userID=%d, error: %v", user.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "导出失败"})
		return
	}

	fileName := "dreams-" + time.Now().Format("20060102") + ".json"
	c.Header("Content-Disposition", "attachment; filename="+fileName)
	c.Data(http.StatusOK, "application/json", data)
}

// Search 在当前用户的已完成记录中做全文搜索。
func (h *DreamHandler) Search(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "搜索关键词不能为空"})
		return
	}
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))

	docs, err := h.dreamService.Search(c.Request.Context(), user.ID, query, size)
	if err != nil {
		log.Errorf("Search: 搜索失败, userID=%d, query=%s, error: %v", user.ID, query, err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "搜索失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "data": docs, "message": "success"})
}

// Trends 返回最近若干天的逐日情绪分布。
func (h *DreamHandler) Trends(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	days, _ := strconv.Atoi(c.DefaultQuery("days", "30"))
	points, err := h.dreamService.Trends(user.ID, days)
	if err != nil {
		log.Errorf("Trends: 获取趋势失败, userID=%d, error: %v", user.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "获取趋势失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "data": points, "message": "success"})
}

// Stats 返回日记的汇总统计。
func (h *DreamHandler) Stats(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	stats, err := h.dreamService.Stats(user.ID)
	if err != nil {
		log.Errorf("Stats: 获取统计失败, userID=%d, error: %v", user.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "获取统计失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "data": stats, "message": "success"})
}
