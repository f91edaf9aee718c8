package api

import (
	"context"
	"errors"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"recipe-calculator/internal/api/handlers/health"
	recipeHandler "recipe-calculator/internal/api/handlers/recipe"
	"recipe-calculator/internal/api/middleware"
	"recipe-calculator/internal/core/ocr"
	recipeService "recipe-calculator/internal/core/recipe"
	"recipe-calculator/internal/infrastructure/config"
	"recipe-calculator/internal/pkg/common"
)

const (
	// 超時設置（涵蓋抓取重試與 OCR）
	timeoutDuration = 90 * time.Second
	// multipart 與 data URL 的額外空間
	bodyOverhead = 1 << 20
)

// Services 路由需要的服務
type Services struct {
	Recipes *recipeService.Service
	OCR     *ocr.Service // 可為 nil
}

// SetupRouter 設置路由；ctx 結束時中間件停止背景清理
func SetupRouter(ctx context.Context, cfg *config.Config, svc Services) (*gin.Engine, error) {
	if svc.Recipes == nil {
		return nil, errors.New("recipe service is required")
	}

	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(middleware.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(common.GenerateUUID)))
	router.Use(middleware.Logger())
	router.Use(cors.New(corsConfig(cfg.CORS)))
	router.Use(middleware.BodySizeLimit(maxBodySize(cfg.Image)))
	router.Use(middleware.Timeout(timeoutDuration))

	var ocrStatus health.OCRStatusProvider
	if svc.OCR != nil {
		ocrStatus = svc.OCR
	}
	healthHandler := health.NewHandler(cfg, ocrStatus, svc.Recipes)

	router.GET("/health", healthHandler.HealthCheck)
	router.GET("/ready", healthHandler.ReadinessCheck)
	router.GET("/live", healthHandler.LivenessCheck)

	h := recipeHandler.NewHandler(svc.Recipes)

	parse := router.Group("/")
	if cfg.RateLimit.Enabled {
		parse.Use(middleware.RateLimit(ctx, cfg.RateLimit))
	}
	{
		parse.POST("/parse-image", h.HandleParseImage)
		parse.POST("/parse-url", middleware.Deduplication(ctx, cfg.DedupWindow), h.HandleParseURL)
		parse.POST("/parse-text", h.HandleParseText)
		parse.GET("/test-parsing", h.HandleTestParsing)
		parse.GET("/test-title", h.HandleTestTitle)
	}

	common.LogInfo("Router setup completed successfully",
		zap.Strings("allowed_origins", cfg.CORS.AllowedOrigins),
		zap.Bool("rate_limit", cfg.RateLimit.Enabled),
		zap.Bool("ocr_available", svc.OCR != nil && svc.OCR.Status().Available),
		zap.Duration("timeout", timeoutDuration),
		zap.Int64("max_body_size", maxBodySize(cfg.Image)),
	)

	return router, nil
}

// corsConfig 允許設定的來源；沒有設定來源時允許全部
func corsConfig(cfg config.CORSConfig) cors.Config {
	c := cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 0 {
		c.AllowAllOrigins = true
		c.AllowCredentials = false
	} else {
		c.AllowOrigins = cfg.AllowedOrigins
	}
	return c
}

// maxBodySize data URL 以 base64 傳送，需多留 1/3 空間
func maxBodySize(cfg config.ImageConfig) int64 {
	return cfg.MaxSizeBytes*4/3 + bodyOverhead
}
