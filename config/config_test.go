package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig(t *testing.T) {
	// Test with default values
	config := LoadConfig()
	assert.Equal(t, "localhost:6379", config.RedisAddr)
	assert.Equal(t, 0, config.RedisDB)
	assert.Equal(t, "hotdeals", config.RedisStream)
	assert.Equal(t, "localhost:11211", config.MemcacheAddr)
	assert.Equal(t, "data/hotdeals.db", config.DBPath)
	assert.Equal(t, "gemini-1.5-flash", config.GeminiModel)
	assert.Equal(t, 300*time.Second, config.CrawlInterval)

	// Test with environment variables
	os.Setenv("REDIS_ADDR", "redis.example.com:6379")
	os.Setenv("DB_PATH", "/var/lib/hotdeals.db")
	os.Setenv("CRAWL_INTERVAL_SECONDS", "30")
	os.Setenv("FMKOREA_URL", "https://example.com/fmkorea")

	config = LoadConfig()
	assert.Equal(t, "redis.example.com:6379", config.RedisAddr)
	assert.Equal(t, "/var/lib/hotdeals.db", config.DBPath)
	assert.Equal(t, 30*time.Second, config.CrawlInterval)
	assert.Equal(t, "https://example.com/fmkorea", config.FMKoreaURL)

	// Clean up
	os.Unsetenv("REDIS_ADDR")
	os.Unsetenv("DB_PATH")
	os.Unsetenv("CRAWL_INTERVAL_SECONDS")
	os.Unsetenv("FMKOREA_URL")
}

func TestValidate(t *testing.T) {
	cfg := LoadConfig()
	cfg.TelegramBotToken = "token"
	cfg.TelegramAdminID = "12345"
	assert.NoError(t, cfg.Validate())

	cfg.TelegramAdminID = ""
	assert.Error(t, cfg.Validate())

	cfg.TelegramAdminID = "12345"
	cfg.CrawlInterval = 0
	assert.Error(t, cfg.Validate())
}
