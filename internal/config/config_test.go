package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "memory", cfg.Backend)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, 100, cfg.Image.TargetKB)
	assert.Equal(t, 1000, cfg.Image.MaxWidth)
	assert.Equal(t, 85, cfg.Image.InitialQuality)
	assert.Equal(t, 10, cfg.Image.QualityFloor)
	assert.Equal(t, 5, cfg.Image.QualityStep)

	assert.Equal(t, LimitConfig{MaxRequests: 30, Window: time.Minute, KeyPrefix: "search_limit"}, cfg.RateLimits.Search)
	assert.Equal(t, LimitConfig{MaxRequests: 100, Window: time.Minute, KeyPrefix: "api_limit"}, cfg.RateLimits.API)
	assert.Equal(t, LimitConfig{MaxRequests: 10, Window: time.Minute, KeyPrefix: "strict_limit"}, cfg.RateLimits.Strict)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("BACKEND", "redis")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("LOG_JSON", "false")
	t.Setenv("IMAGE_TARGET_KB", "250")
	t.Setenv("RATE_LIMIT_API_MAX", "5")
	t.Setenv("RATE_LIMIT_API_WINDOW", "30")
	t.Setenv("RATE_LIMIT_SEARCH_WINDOW", "2m")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "redis", cfg.Backend)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.False(t, cfg.LogJSON)
	assert.Equal(t, 250, cfg.Image.TargetKB)
	assert.Equal(t, int64(5), cfg.RateLimits.API.MaxRequests)
	assert.Equal(t, 30*time.Second, cfg.RateLimits.API.Window)
	assert.Equal(t, 2*time.Minute, cfg.RateLimits.Search.Window)
}

func TestInvalidValuesFallBack(t *testing.T) {
	t.Setenv("REDIS_DB", "three")
	t.Setenv("RATE_LIMIT_STRICT_WINDOW", "-4")

	cfg := Load()

	assert.Equal(t, 0, cfg.RedisDB)
	assert.Equal(t, time.Minute, cfg.RateLimits.Strict.Window)
}
