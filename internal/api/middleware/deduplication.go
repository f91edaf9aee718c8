package middleware

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"recipe-calculator/internal/pkg/common"
)

const defaultDedupWindow = time.Second

// Deduplicator 記錄最近的 POST 請求指紋，擋下時間窗內的重複送出
type Deduplicator struct {
	window time.Duration
	now    func() time.Time

	mu       sync.Mutex
	requests map[string]time.Time

	sweeper *sweeper
}

// NewDeduplicator 創建去重器，window <= 0 時使用 1 秒
func NewDeduplicator(window time.Duration) *Deduplicator {
	if window <= 0 {
		window = defaultDedupWindow
	}
	return &Deduplicator{
		window:   window,
		now:      time.Now,
		requests: make(map[string]time.Time),
		sweeper:  newSweeper(),
	}
}

// Seen 回傳指紋是否在時間窗內出現過，並記錄這次請求
func (d *Deduplicator) Seen(fingerprint string) bool {
	now := d.now()

	d.mu.Lock()
	defer d.mu.Unlock()

	if last, exists := d.requests[fingerprint]; exists && now.Sub(last) <= d.window {
		return true
	}
	d.requests[fingerprint] = now
	return false
}

// Cleanup 清除超過十倍時間窗的指紋
func (d *Deduplicator) Cleanup() int {
	now := d.now()

	d.mu.Lock()
	defer d.mu.Unlock()

	removed := 0
	for k, t := range d.requests {
		if now.Sub(t) > 10*d.window {
			delete(d.requests, k)
			removed++
		}
	}
	return removed
}

// startCleanup 定期清理，直到 Close
func (d *Deduplicator) startCleanup(interval time.Duration) {
	d.sweeper.start(interval, func() { d.Cleanup() })
}

// Close 停止背景清理
func (d *Deduplicator) Close() error {
	d.sweeper.Close()
	return nil
}

// Deduplication 請求去重中間件，ctx 結束時停止背景清理
// 指紋包含客戶端 IP、路徑、查詢字串與請求體雜湊，只處理 POST
func Deduplication(ctx context.Context, window time.Duration) gin.HandlerFunc {
	return startDeduplicator(ctx, window).Handler()
}

func startDeduplicator(ctx context.Context, window time.Duration) *Deduplicator {
	d := NewDeduplicator(window)
	d.startCleanup(10 * time.Minute)
	d.sweeper.stopWith(ctx)
	return d
}

// Handler 回傳使用此去重器的中間件
func (d *Deduplicator) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		fingerprint := c.ClientIP() + ":" + c.Request.URL.Path + "?" + c.Request.URL.RawQuery
		if c.Request.Body != nil {
			body, err := io.ReadAll(c.Request.Body)
			if err != nil {
				common.LogError("Failed to read request body", zap.Error(err))
				c.AbortWithStatusJSON(http.StatusBadRequest, common.ErrInvalidRequest.Wrap(err).ToResponse())
				return
			}
			c.Request.Body = io.NopCloser(bytes.NewReader(body))
			if len(body) > 0 {
				fingerprint += ":" + common.HashBytes(body)
			}
		}

		if d.Seen(fingerprint) {
			common.LogWarn("重複請求已略過",
				zap.String("path", c.Request.URL.Path),
				zap.String("ip", c.ClientIP()),
			)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, common.ErrTooManyRequests.ToResponse())
			return
		}

		c.Next()
	}
}
