package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, "dan", cfg.OCR.Language)
	assert.Equal(t, 6, cfg.OCR.PageSegMode)
	assert.Equal(t, int64(2), cfg.OCR.MaxConcurrent)
	assert.Equal(t, CacheBackendMemory, cfg.Cache.Backend)
	assert.Equal(t, 6*time.Hour, cfg.Cache.TTL)
	assert.Equal(t, uint(3), cfg.Scraper.Attempts)
	assert.Equal(t, time.Second, cfg.DedupWindow)
	assert.Contains(t, cfg.CORS.AllowedOrigins, "http://localhost:3000")
	assert.Len(t, cfg.CORS.AllowedOrigins, 3)
}

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("CACHE_BACKEND", "redis")
	t.Setenv("REDIS_ADDR", "cache:6379")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("APP_OCR_PSM", "4")
	t.Setenv("DEDUP_WINDOW", "2s")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, CacheBackendRedis, cfg.Cache.Backend)
	assert.Equal(t, "cache:6379", cfg.Cache.RedisAddr)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 4, cfg.OCR.PageSegMode)
	assert.Equal(t, 2*time.Second, cfg.DedupWindow)
}

func TestLoadConfig_InvalidBackend(t *testing.T) {
	t.Setenv("CACHE_BACKEND", "memcached")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown cache backend")
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "defaults are valid", mutate: func(c *Config) {}},
		{name: "missing port", mutate: func(c *Config) { c.Server.Port = 0 }, wantErr: "server port"},
		{name: "missing language", mutate: func(c *Config) { c.OCR.Language = "" }, wantErr: "ocr language"},
		{name: "zero ocr concurrency", mutate: func(c *Config) { c.OCR.MaxConcurrent = 0 }, wantErr: "ocr max concurrent"},
		{name: "zero cache size", mutate: func(c *Config) { c.Cache.MaxSize = 0 }, wantErr: "cache max size"},
		{name: "disabled cache skips checks", mutate: func(c *Config) {
			c.Cache.Enabled = false
			c.Cache.MaxSize = 0
			c.Cache.Backend = ""
		}},
		{name: "redis without address", mutate: func(c *Config) {
			c.Cache.Backend = CacheBackendRedis
			c.Cache.RedisAddr = ""
		}, wantErr: "redis address"},
		{name: "bad rate limit", mutate: func(c *Config) { c.RateLimit.Requests = 0 }, wantErr: "rate limit"},
		{name: "bad image size", mutate: func(c *Config) { c.Image.MaxSizeBytes = 0 }, wantErr: "image max size"},
		{name: "negative pixel cap", mutate: func(c *Config) { c.Image.MaxPixels = -1 }, wantErr: "image max pixels"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := validateConfig(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
