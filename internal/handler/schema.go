package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/opencodefirst/codefirst/internal/domain"
	"github.com/opencodefirst/codefirst/internal/pkg/registry"
	"github.com/opencodefirst/codefirst/internal/repository"
	"k8s.io/klog/v2"
)

// SchemaHandler 只读查看已安装的结构和已注册的声明
type SchemaHandler struct {
	store    *repository.Store
	registry registry.Registry
}

func NewSchemaHandler(store *repository.Store, reg registry.Registry) *SchemaHandler {
	return &SchemaHandler{store: store, registry: reg}
}

func (h *SchemaHandler) RegisterRoutes(router *gin.RouterGroup) {
	schema := router.Group("/schema")
	{
		schema.GET("/templates", h.Templates)
		schema.GET("/data-types", h.DataTypes)
		schema.GET("/content-types", h.ContentTypes)
		schema.GET("/content-types/:alias", h.ContentType)
		schema.GET("/declarations", h.Declarations)
	}
}

func (h *SchemaHandler) Templates(c *gin.Context) {
	templates, err := h.store.Templates.List(c.Request.Context())
	if err != nil {
		klog.Errorf("[schema.Templates] 获取模板失败: error=%v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, templates)
}

func (h *SchemaHandler) DataTypes(c *gin.Context) {
	dataTypes, err := h.store.DataTypes.List(c.Request.Context())
	if err != nil {
		klog.Errorf("[schema.DataTypes] 获取数据类型失败: error=%v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, dataTypes)
}

func (h *SchemaHandler) ContentTypes(c *gin.Context) {
	contentTypes, err := h.store.ContentTypes.List(c.Request.Context())
	if err != nil {
		klog.Errorf("[schema.ContentTypes] 获取内容类型失败: error=%v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, contentTypes)
}

// ContentType 内容类型详情：属性、标签页、允许的子类型和模板
func (h *SchemaHandler) ContentType(c *gin.Context) {
	ctx := c.Request.Context()
	alias := c.Param("alias")

	contentType, err := h.store.ContentTypes.GetByAlias(ctx, alias)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "content type not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	properties, err := h.store.ContentTypes.GetPropertyTypes(ctx, contentType.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	tabs, err := h.store.ContentTypes.GetTabs(ctx, contentType.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	children, err := h.store.ContentTypes.GetAllowedChildIDs(ctx, contentType.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	templates, err := h.store.ContentTypes.GetAllowedTemplateIDs(ctx, contentType.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"content_type":      contentType,
		"properties":        properties,
		"tabs":              tabs,
		"allowed_children":  children,
		"allowed_templates": templates,
	})
}

// Declarations 当前注册的全部声明
func (h *SchemaHandler) Declarations(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"templates":            h.registry.Discover(domain.KindTemplate),
		"document_types":       h.registry.Discover(domain.KindDocumentType),
		"data_types":           h.registry.DataTypes(),
		"macro_property_types": h.registry.MacroPropertyTypes(),
	})
}
