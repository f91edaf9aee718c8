package middleware

import (
	"context"
	"sync"
	"time"
)

// sweeper 定期執行清理函式，直到 Close 或 context 結束
type sweeper struct {
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

func newSweeper() *sweeper {
	return &sweeper{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
}

// start 在背景每隔 interval 呼叫 fn
func (s *sweeper) start(interval time.Duration, fn func()) {
	go func() {
		defer close(s.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				fn()
			case <-s.stop:
				return
			}
		}
	}()
}

// stopWith ctx 結束時停止清理
func (s *sweeper) stopWith(ctx context.Context) {
	context.AfterFunc(ctx, s.Close)
}

// Close 停止清理，可重複呼叫
func (s *sweeper) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
}
