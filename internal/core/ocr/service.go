package ocr

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"recipe-calculator/internal/infrastructure/config"
	"recipe-calculator/internal/pkg/common"
)

// Status OCR 服務狀態
type Status struct {
	Engine        string `json:"engine"`
	Available     bool   `json:"available"`
	InFlight      int64  `json:"in_flight"`
	Processed     int64  `json:"processed"`
	Failed        int64  `json:"failed"`
	MaxConcurrent int64  `json:"max_concurrent"`
}

// Service 限制同時辨識數量的 OCR 服務
type Service struct {
	engine        Engine
	opts          Options
	sem           *semaphore.Weighted
	maxConcurrent int64
	timeout       time.Duration

	inFlight  atomic.Int64
	processed atomic.Int64
	failed    atomic.Int64
}

// NewService 創建 OCR 服務，engine 為 nil 時所有請求回傳 ErrOCRUnavailable
func NewService(engine Engine, cfg config.OCRConfig) *Service {
	maxConcurrent := cfg.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &Service{
		engine: engine,
		opts: Options{
			Language:    cfg.Language,
			PageSegMode: cfg.PageSegMode,
		},
		sem:           semaphore.NewWeighted(maxConcurrent),
		maxConcurrent: maxConcurrent,
		timeout:       cfg.Timeout,
	}
}

// Extract 辨識圖片文字
// 等待空位時若 ctx 結束，回傳 ErrOCRBusy
func (s *Service) Extract(ctx context.Context, img []byte) (string, error) {
	if s.engine == nil {
		return "", common.ErrOCRUnavailable
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	if err := s.sem.Acquire(ctx, 1); err != nil {
		return "", common.ErrOCRBusy.Wrap(err)
	}
	defer s.sem.Release(1)

	s.inFlight.Add(1)
	defer s.inFlight.Add(-1)

	start := time.Now()
	text, err := s.engine.Recognize(ctx, img, s.opts)
	if err != nil {
		s.failed.Add(1)
		common.LogError("文字辨識失敗",
			zap.String("engine", s.engine.Name()),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", common.ErrGatewayTimeout.Wrap(err)
		}
		return "", common.ErrOCRFailed.Wrap(err)
	}

	s.processed.Add(1)
	common.LogDebug("文字辨識完成",
		zap.String("engine", s.engine.Name()),
		zap.Int("image_bytes", len(img)),
		zap.Int("text_length", len(text)),
		zap.Duration("duration", time.Since(start)),
	)
	return text, nil
}

// Status 獲取服務狀態
func (s *Service) Status() Status {
	status := Status{
		Available:     s.engine != nil,
		InFlight:      s.inFlight.Load(),
		Processed:     s.processed.Load(),
		Failed:        s.failed.Load(),
		MaxConcurrent: s.maxConcurrent,
	}
	if s.engine != nil {
		status.Engine = s.engine.Name()
	}
	return status
}

// Close 關閉引擎
func (s *Service) Close() error {
	if s.engine == nil {
		return nil
	}
	return s.engine.Close()
}
