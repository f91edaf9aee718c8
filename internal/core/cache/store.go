// Package cache 保存解析結果，避免同一網址或同一張圖片重複處理。
package cache

import (
	"context"
	"fmt"

	"recipe-calculator/internal/infrastructure/config"
	"recipe-calculator/internal/pkg/common"
)

// Store 快取介面，值為序列化後的位元組
// 未命中時 Get 回傳 common.ErrCacheMiss
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Stats() Stats
	Close() error
}

// Stats 快取統計
type Stats struct {
	Backend   string  `json:"backend"`
	Size      int     `json:"size"`
	MaxSize   int     `json:"max_size,omitempty"`
	Hits      int64   `json:"hits"`
	Misses    int64   `json:"misses"`
	Evictions int64   `json:"evictions"`
	Errors    int64   `json:"errors"`
	HitRatio  float64 `json:"hit_ratio"`
}

func hitRatio(hits, misses int64) float64 {
	if hits+misses == 0 {
		return 0
	}
	return float64(hits) / float64(hits+misses)
}

// NewStore 依設定建立快取；停用時回傳永遠未命中的 store
func NewStore(cfg config.CacheConfig) (Store, error) {
	if !cfg.Enabled {
		common.LogInfo("快取已停用")
		return disabledStore{}, nil
	}

	switch cfg.Backend {
	case config.CacheBackendMemory, "":
		return NewManager(cfg), nil
	case config.CacheBackendRedis:
		return NewRedisStore(cfg)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

// URLKey 網址結果的快取鍵
func URLKey(url string) string {
	return "url:" + common.HashBytes([]byte(url))
}

// ImageKey 圖片結果的快取鍵
func ImageKey(data []byte) string {
	return "image:" + common.HashBytes(data)
}

// disabledStore 快取停用時使用
type disabledStore struct{}

func (disabledStore) Get(context.Context, string) ([]byte, error) {
	return nil, common.ErrCacheDisabled
}

func (disabledStore) Set(context.Context, string, []byte) error {
	return nil
}

func (disabledStore) Stats() Stats {
	return Stats{Backend: "disabled"}
}

func (disabledStore) Close() error {
	return nil
}
