package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"recipe-calculator/internal/api"
	"recipe-calculator/internal/core/cache"
	"recipe-calculator/internal/core/image"
	"recipe-calculator/internal/core/lexicon"
	"recipe-calculator/internal/core/ocr"
	"recipe-calculator/internal/core/parser"
	"recipe-calculator/internal/core/recipe"
	"recipe-calculator/internal/core/scraper"
	"recipe-calculator/internal/infrastructure/config"
	"recipe-calculator/internal/pkg/common"
)

func main() {
	// 載入設定（含 .env）
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化 logger（需在載入 config 後）
	if err := common.InitLogger(cfg.LogLevel); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	common.LogInfo("載入設定",
		zap.Int("port", cfg.Server.Port),
		zap.String("ocr_language", cfg.OCR.Language),
		zap.Int("ocr_psm", cfg.OCR.PageSegMode),
		zap.Bool("cache_enabled", cfg.Cache.Enabled),
		zap.String("cache_backend", cfg.Cache.Backend),
	)

	// OCR 引擎找不到時仍啟動，網址與文字解析照常可用
	engine, err := ocr.NewEngine(cfg.OCR)
	if err != nil {
		common.LogWarn("OCR 引擎不可用，圖片解析將回傳錯誤", zap.Error(err))
		engine = nil
	}
	ocrService := ocr.NewService(engine, cfg.OCR)
	defer ocrService.Close()

	// 初始化快取
	store, err := cache.NewStore(cfg.Cache)
	if err != nil {
		common.LogFatal("Failed to initialize cache", zap.Error(err))
	}
	defer store.Close()

	p := parser.New(lexicon.Danish())
	recipeSvc := recipe.NewService(
		p,
		image.NewService(cfg.Image),
		ocrService,
		scraper.New(scraper.NewFetcher(cfg.Scraper), scraper.NewExtractor(p)),
		store,
	)

	// 伺服器關閉後停止中間件的背景清理
	appCtx, cancelApp := context.WithCancel(context.Background())
	defer cancelApp()

	router, err := api.SetupRouter(appCtx, cfg, api.Services{
		Recipes: recipeSvc,
		OCR:     ocrService,
	})
	if err != nil {
		common.LogError("Failed to setup router", zap.Error(err))
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		common.LogInfo("啟動應用",
			zap.String("version", cfg.App.Version),
			zap.String("env", cfg.App.Env),
			zap.String("addr", srv.Addr),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			common.LogFatal("Failed to start server", zap.Error(err))
		}
	}()

	// 等待中斷信號
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	common.LogInfo("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		common.LogError("Server forced to shutdown", zap.Error(err))
	}

	common.LogInfo("Server exited")
}
