package cache

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"recipe-calculator/internal/infrastructure/config"
	"recipe-calculator/internal/pkg/common"
)

const redisKeyPrefix = "recipe-calculator:"

// RedisStore 以 Redis 保存快取，多個實例可共用
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration

	hits   atomic.Int64
	misses atomic.Int64
	errors atomic.Int64
}

// NewRedisStore 連線 Redis，連不上時回傳錯誤
func NewRedisStore(cfg config.CacheConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	common.LogInfo("Redis 快取已連線", zap.String("addr", cfg.RedisAddr), zap.Int("db", cfg.RedisDB))
	return &RedisStore{client: client, ttl: cfg.TTL}, nil
}

// Get 獲取緩存
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			s.misses.Add(1)
			common.LogCacheMiss("redis", key)
			return nil, common.ErrCacheMiss
		}
		s.errors.Add(1)
		return nil, fmt.Errorf("failed to get cache: %w", err)
	}
	s.hits.Add(1)
	common.LogCacheHit("redis", key)
	return data, nil
}

// Set 設置緩存
func (s *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, redisKeyPrefix+key, value, s.ttl).Err(); err != nil {
		s.errors.Add(1)
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

// Stats 獲取統計；Size 為目前資料庫的鍵數量
func (s *RedisStore) Stats() Stats {
	stats := Stats{
		Backend: config.CacheBackendRedis,
		Hits:    s.hits.Load(),
		Misses:  s.misses.Load(),
		Errors:  s.errors.Load(),
	}
	stats.HitRatio = hitRatio(stats.Hits, stats.Misses)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if size, err := s.client.DBSize(ctx).Result(); err == nil {
		stats.Size = int(size)
	}
	return stats
}

// Close 關閉連線
func (s *RedisStore) Close() error {
	return s.client.Close()
}
