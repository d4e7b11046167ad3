package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"sjsage522/hotdealbot/config"
	"sjsage522/hotdealbot/internal/crawler"
	"sjsage522/hotdealbot/logger"
	"sjsage522/hotdealbot/services/bot"
	"sjsage522/hotdealbot/services/cache"
	"sjsage522/hotdealbot/services/publisher"
	"sjsage522/hotdealbot/services/scorer"
	"sjsage522/hotdealbot/services/store"
	"sjsage522/hotdealbot/services/worker"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	godotenv.Load()

	// Initialize logger first
	logger.Init()
	log := logger.Default

	// Load and validate configuration
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	log.Info().
		Str("environment", cfg.Environment).
		Dur("crawl_interval", cfg.CrawlInterval).
		Msg("Starting application")

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Open the deal store
	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("Failed to create database directory")
		}
	}
	dealStore, err := store.NewBoltStore(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("Failed to open deal store")
	}
	defer dealStore.Close()

	// Initialize cache service (crawler rate-limit gate)
	cacheService := cache.NewMemcacheService(cfg.MemcacheAddr)
	logger.Info("Connected to Memcache at %s", cfg.MemcacheAddr)

	// Initialize publisher (qualifying-deal stream)
	redisPublisher := publisher.NewRedisPublisher(
		ctx,
		cfg.RedisAddr,
		cfg.RedisDB,
		cfg.RedisStream,
		cfg.RedisStreamMaxLen,
	)
	defer redisPublisher.Close()
	logger.Info("Connected to Redis at %s (DB: %d, Stream: %s)",
		cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream)

	// Create crawlers
	crawlers := crawler.CreateCrawlers(&cfg, cacheService)
	if len(crawlers) == 0 {
		log.Fatal().Msg("No crawlers were created")
	}

	// Scoring engine backed by Gemini
	engine := scorer.NewEngine(scorer.NewGeminiClient("", cfg.GeminiModel, cfg.GeminiAPIKey))

	// Telegram bot for triage
	telegramBot := bot.NewTelegramBot("", cfg.TelegramBotToken, cfg.TelegramAdminID, dealStore)

	// Create the ingestion worker
	w := worker.NewWorker(
		ctx,
		crawlers,
		dealStore,
		engine,
		telegramBot,
		redisPublisher,
		cfg.CrawlInterval,
	)

	// Start worker and bot listener; both share only the store
	workerDone := make(chan error, 1)
	go func() {
		log.Info().Msg("Starting hot deal worker")
		workerDone <- w.Start()
	}()

	botDone := make(chan error, 1)
	go func() {
		log.Info().Msg("Starting telegram listener")
		botDone <- telegramBot.Poll(ctx)
	}()

	// Wait for shutdown signal or task error
	select {
	case sig := <-sigChan:
		log.Info().
			Str("signal", sig.String()).
			Msg("Received shutdown signal")
		cancel()
	case err := <-workerDone:
		if err != nil && err != context.Canceled {
			log.Error().Err(err).Msg("Worker exited with error")
		} else {
			log.Info().Msg("Worker exited normally")
		}
		cancel()
	case err := <-botDone:
		if err != nil && err != context.Canceled {
			log.Error().Err(err).Msg("Telegram listener exited with error")
		} else {
			log.Info().Msg("Telegram listener exited normally")
		}
		cancel()
	}

	// Graceful shutdown
	log.Info().Msg("Shutting down gracefully...")
}
