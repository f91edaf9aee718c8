package middleware

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"recipe-calculator/internal/infrastructure/config"
	"recipe-calculator/internal/pkg/common"
)

// visitor 單一 IP 的限流器
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
	mu       sync.Mutex
}

// RateLimiter 依客戶端 IP 分別限流
type RateLimiter struct {
	visitors sync.Map // ip -> *visitor
	every    time.Duration
	burst    int
	now      func() time.Time
	sweeper  *sweeper
}

// NewRateLimiter 創建新的限流器，window 內最多 requests 次，另允許 burst 次突發
func NewRateLimiter(requests int, window time.Duration, burst int) *RateLimiter {
	if requests <= 0 {
		requests = 1
	}
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		every: window / time.Duration(requests),
		burst:   burst,
		now:     time.Now,
		sweeper: newSweeper(),
	}
}

// Allow 檢查此 IP 是否允許請求
func (rl *RateLimiter) Allow(ip string) bool {
	v, _ := rl.visitors.LoadOrStore(ip, &visitor{
		limiter: rate.NewLimiter(rate.Every(rl.every), rl.burst),
	})
	vis := v.(*visitor)

	now := rl.now()
	vis.mu.Lock()
	vis.lastSeen = now
	vis.mu.Unlock()

	return vis.limiter.AllowN(now, 1)
}

// Sweep 移除閒置超過 idle 的 IP，回傳移除數量
func (rl *RateLimiter) Sweep(idle time.Duration) int {
	cutoff := rl.now().Add(-idle)
	removed := 0
	rl.visitors.Range(func(key, value any) bool {
		vis := value.(*visitor)
		vis.mu.Lock()
		stale := vis.lastSeen.Before(cutoff)
		vis.mu.Unlock()
		if stale {
			rl.visitors.Delete(key)
			removed++
		}
		return true
	})
	return removed
}

// startSweeper 定期清理閒置的 IP，直到 Close
func (rl *RateLimiter) startSweeper(interval, idle time.Duration) {
	rl.sweeper.start(interval, func() {
		if n := rl.Sweep(idle); n > 0 {
			common.LogDebug("清除閒置限流器", zap.Int("count", n))
		}
	})
}

// Close 停止背景清理
func (rl *RateLimiter) Close() error {
	rl.sweeper.Close()
	return nil
}

// RateLimit 限流中間件，每個客戶端 IP 各自計算；ctx 結束時停止背景清理
func RateLimit(ctx context.Context, cfg config.RateLimitConfig) gin.HandlerFunc {
	return rateLimitHandler(startRateLimiter(ctx, cfg), cfg.Window)
}

func startRateLimiter(ctx context.Context, cfg config.RateLimitConfig) *RateLimiter {
	limiter := NewRateLimiter(cfg.Requests, cfg.Window, cfg.Burst)
	limiter.startSweeper(cfg.Window*10, cfg.Window*10)
	limiter.sweeper.stopWith(ctx)
	return limiter
}

func rateLimitHandler(limiter *RateLimiter, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !limiter.Allow(ip) {
			common.LogWarn("Rate limit exceeded",
				zap.String("ip", ip),
				zap.String("path", c.Request.URL.Path),
			)

			c.Header("Retry-After", fmt.Sprintf("%d", int(window.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, common.ErrTooManyRequests.ToResponse())
			return
		}

		c.Next()
	}
}
