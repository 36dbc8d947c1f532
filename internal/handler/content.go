package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/opencodefirst/codefirst/internal/domain"
	"github.com/opencodefirst/codefirst/internal/repository"
	"github.com/opencodefirst/codefirst/internal/service/export"
	"github.com/opencodefirst/codefirst/internal/service/modelfactory"
	"k8s.io/klog/v2"
)

type ContentHandler struct {
	factory  *modelfactory.Factory
	exporter *export.Service
}

func NewContentHandler(factory *modelfactory.Factory, exporter *export.Service) *ContentHandler {
	return &ContentHandler{factory: factory, exporter: exporter}
}

func (h *ContentHandler) RegisterRoutes(router *gin.RouterGroup) {
	contents := router.Group("/contents")
	{
		contents.GET("/:id/model", h.Model)
		contents.GET("/:id/export", h.Export)
	}
}

// Model 解析内容对应的模型，可通过 version 参数指定历史版本
func (h *ContentHandler) Model(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid content id"})
		return
	}

	var version *uuid.UUID
	if v := c.Query("version"); v != "" {
		parsed, err := uuid.Parse(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid version"})
			return
		}
		version = &parsed
	}

	m, err := h.factory.FromDatabase(c.Request.Context(), id, version)
	if err != nil {
		h.writeError(c, "contents.Model", id, err)
		return
	}

	node := m.Node()
	c.JSON(http.StatusOK, gin.H{
		"id":         node.ID,
		"alias":      node.Alias,
		"name":       node.Name,
		"version":    node.Version,
		"model":      fmt.Sprintf("%T", m),
		"properties": node.Properties,
	})
}

func (h *ContentHandler) Export(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid content id"})
		return
	}

	result, err := h.exporter.Export(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, "contents.Export", id, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *ContentHandler) writeError(c *gin.Context, op string, id int, err error) {
	switch {
	case errors.Is(err, domain.ErrModelNotFound):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		klog.Errorf("[%s] 处理失败: id=%d, error=%v", op, id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
