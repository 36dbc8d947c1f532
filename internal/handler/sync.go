package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	syncdto "github.com/opencodefirst/codefirst/internal/dto/sync"
	"github.com/opencodefirst/codefirst/internal/model"
	"github.com/opencodefirst/codefirst/internal/repository"
	"k8s.io/klog/v2"
)

// RunSource 提供最近一次同步结果
type RunSource interface {
	LastRun() *model.SyncRun
}

type SyncHandler struct {
	runs    RunSource
	runRepo repository.SyncRunRepository
}

func NewSyncHandler(runs RunSource, runRepo repository.SyncRunRepository) *SyncHandler {
	return &SyncHandler{runs: runs, runRepo: runRepo}
}

func (h *SyncHandler) RegisterRoutes(router *gin.RouterGroup) {
	syncGroup := router.Group("/sync")
	{
		syncGroup.GET("/status", h.Status)
		syncGroup.GET("/runs", h.List)
		syncGroup.GET("/runs/:id", h.Get)
	}
}

// Status 当前进程的同步结果
func (h *SyncHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, syncdto.StatusResponse{Code: "OK", Data: syncdto.NewRunData(h.runs.LastRun())})
}

// List 历史执行记录，最新的在前
func (h *SyncHandler) List(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
		return
	}

	runs, err := h.runRepo.List(c.Request.Context(), limit)
	if err != nil {
		klog.Errorf("[sync.List] 获取同步记录失败: error=%v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	data := make([]syncdto.RunData, 0, len(runs))
	for i := range runs {
		data = append(data, *syncdto.NewRunData(&runs[i]))
	}
	c.JSON(http.StatusOK, syncdto.RunListResponse{Code: "OK", Data: data})
}

func (h *SyncHandler) Get(c *gin.Context) {
	run, err := h.runRepo.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "sync run not found"})
			return
		}
		klog.Errorf("[sync.Get] 获取同步记录失败: id=%s, error=%v", c.Param("id"), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, syncdto.StatusResponse{Code: "OK", Data: syncdto.NewRunData(run)})
}
