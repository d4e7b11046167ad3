package config

import (
	"os"
	"strconv"
	"time"

	"sjsage522/hotdealbot/pkg/errors"
)

// Config represents the application configuration
type Config struct {
	// Telegram configuration; all alerts and commands are restricted to the
	// single admin identity
	TelegramBotToken string
	TelegramAdminID  string

	// Gemini configuration
	GeminiAPIKey string
	GeminiModel  string

	// Deal store configuration
	DBPath string

	// Memcache configuration (crawler rate-limit gate)
	MemcacheAddr string

	// Redis configuration (qualifying-deal stream)
	RedisAddr         string
	RedisDB           int
	RedisStream       string
	RedisStreamMaxLen int64

	// Crawler configuration
	CrawlInterval time.Duration

	// URLs for different crawlers
	FMKoreaURL    string
	TheQooURL     string
	ArcaURL       string
	QuasarURL     string
	HotdealZipURL string

	// Environment
	Environment string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() Config {
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	redisStreamMaxLen, _ := strconv.ParseInt(getEnv("REDIS_STREAM_MAXLEN", "500"), 10, 64)
	crawlInterval, _ := strconv.Atoi(getEnv("CRAWL_INTERVAL_SECONDS", "300"))

	return Config{
		TelegramBotToken:  getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramAdminID:   getEnv("TELEGRAM_ADMIN_ID", ""),
		GeminiAPIKey:      getEnv("GEMINI_API_KEY", ""),
		GeminiModel:       getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		DBPath:            getEnv("DB_PATH", "data/hotdeals.db"),
		MemcacheAddr:      getEnv("MEMCACHE_ADDR", "localhost:11211"),
		RedisAddr:         getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:           redisDB,
		RedisStream:       getEnv("REDIS_STREAM", "hotdeals"),
		RedisStreamMaxLen: redisStreamMaxLen,
		CrawlInterval:     time.Duration(crawlInterval) * time.Second,
		FMKoreaURL:        getEnv("FMKOREA_URL", "https://www.fmkorea.com/hotdeal"),
		TheQooURL:         getEnv("THEQOO_URL", "https://theqoo.net/theqdeal"),
		ArcaURL:           getEnv("ARCA_URL", "https://arca.live/b/hotdeal"),
		QuasarURL:         getEnv("QUASAR_URL", "https://quasarzone.com/bbs/qb_saleinfo"),
		HotdealZipURL:     getEnv("HOTDEALZIP_URL", "https://hotdeal.zip/"),
		Environment:       getEnv("HOTDEAL_ENVIRONMENT", "development"),
	}
}

// Validate checks that the configuration is usable. A missing Gemini key is
// not fatal here: the scorer degrades to its zero-score fallback at call time.
func (c *Config) Validate() error {
	if c.TelegramBotToken == "" || c.TelegramAdminID == "" {
		return errors.NewConfiguration("TELEGRAM_BOT_TOKEN and TELEGRAM_ADMIN_ID are required", nil)
	}
	if c.CrawlInterval <= 0 {
		return errors.NewConfiguration("crawl interval must be positive", nil)
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
