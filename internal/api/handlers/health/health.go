package health

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"recipe-calculator/internal/core/cache"
	"recipe-calculator/internal/core/ocr"
	"recipe-calculator/internal/infrastructure/config"
)

// OCRStatusProvider 提供 OCR 服務狀態
type OCRStatusProvider interface {
	Status() ocr.Status
}

// CacheStatsProvider 提供快取統計，未啟用快取時回傳 nil
type CacheStatsProvider interface {
	CacheStats() *cache.Stats
}

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Uptime    string                 `json:"uptime"`
	Runtime   map[string]interface{} `json:"runtime"`
	OCR       *ocr.Status            `json:"ocr,omitempty"`
	Cache     *cache.Stats           `json:"cache,omitempty"`
}

// Handler 健康檢查處理程序
type Handler struct {
	cfg     *config.Config
	ocr     OCRStatusProvider
	cache   CacheStatsProvider
	started time.Time
}

// NewHandler 創建健康檢查處理程序，ocr 與 cache 可為 nil
func NewHandler(cfg *config.Config, ocrStatus OCRStatusProvider, cacheStats CacheStatsProvider) *Handler {
	return &Handler{
		cfg:     cfg,
		ocr:     ocrStatus,
		cache:   cacheStats,
		started: time.Now(),
	}
}

// HealthCheck 健康檢查；OCR 引擎不可用時狀態為 degraded（網址與文字解析仍可用）
func (h *Handler) HealthCheck(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   h.cfg.App.Version,
		Uptime:    time.Since(h.started).Round(time.Second).String(),
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":       m.Alloc,
				"total_alloc": m.TotalAlloc,
				"sys":         m.Sys,
				"num_gc":      m.NumGC,
			},
		},
	}

	if h.ocr != nil {
		status := h.ocr.Status()
		response.OCR = &status
		if !status.Available {
			response.Status = "degraded"
		}
	} else {
		response.Status = "degraded"
	}
	if h.cache != nil {
		response.Cache = h.cache.CacheStats()
	}

	c.JSON(http.StatusOK, response)
}

// ReadinessCheck 就緒檢查
func (h *Handler) ReadinessCheck(c *gin.Context) {
	ocrReady := h.ocr != nil && h.ocr.Status().Available
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"checks": gin.H{
			"ocr": ocrReady,
		},
	})
}

// LivenessCheck 存活檢查
func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}
