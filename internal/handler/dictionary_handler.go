package handler

import (
	"net/http"

	"dreamtrace-go/internal/service"

	"github.com/gin-gonic/gin"
)

// DictionaryHandler 负责处理梦境符号词典的浏览与检索请求。
type DictionaryHandler struct {
	dictionaryService service.DictionaryService
}

// NewDictionaryHandler 创建一个新的 DictionaryHandler 实例。
func NewDictionaryHandler(dictionaryService service.DictionaryService) *DictionaryHandler {
	return &DictionaryHandler{dictionaryService: dictionaryService}
}

// List 返回全部词典条目，支持可选的 keyword 过滤。
func (h *DictionaryHandler) List(c *gin.Context) {
	keyword := c.Query("keyword")

	var entries interface{}
	if keyword != "" {
		entries = h.dictionaryService.Search(c.Request.Context(), keyword)
	} else {
		entries = h.dictionaryService.List(c.Request.Context())
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "data": entries, "message": "success"})
}

// Get 返回单个词典条目。
func (h *DictionaryHandler) Get(c *gin.Context) {
	id := c.Param("id")
	entry, err := h.dictionaryService.Get(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"code": http.StatusNotFound, "message": "词典条目不存在"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "data": entry, "message": "success"})
}
