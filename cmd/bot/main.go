package main

import (
	"context"
	"os"

	"finnow/internal/advisor"
	"finnow/internal/bot"
	"finnow/internal/config"
	"finnow/internal/marketdata"
	"finnow/internal/models"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

func main() {
	// A .env file is optional in production.
	_ = godotenv.Load()

	cfg := config.Load()
	log := newLogger(cfg.LogLevel)

	if err := cfg.RequireBotToken(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	universe, err := models.LoadUniverseFromJSON(cfg.UniverseFile)
	if err != nil {
		log.Fatal().Err(err).Str("file", cfg.UniverseFile).Msg("failed to load instrument universe")
	}

	market := marketdata.NewService(marketdata.ServiceConfig{
		Universe:     universe,
		HTTPTimeout:  cfg.HTTPTimeout,
		TTL:          cfg.CacheTTL,
		MOEXBaseURL:  cfg.MOEXBaseURL,
		MOEXProxyURL: cfg.MOEXProxyURL,
		Log:          log,
	})

	adv := advisor.New(advisor.Config{
		APIKey:  cfg.HFAPIKey,
		BaseURL: cfg.HFBaseURL,
		Model:   cfg.HFModel,
		Market:  market,
		Log:     log,
	})

	b, err := bot.New(cfg.TelegramBotToken, market, adv, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create bot")
	}

	ctx := context.Background()

	// Warm the caches once at startup, then keep them fresh on the same
	// cadence as the freshness window.
	market.RefreshAll(ctx)
	scheduler := cron.New()
	if _, err := scheduler.AddFunc("@every 5m", func() { market.RefreshAll(ctx) }); err != nil {
		log.Fatal().Err(err).Msg("failed to schedule market refresh")
	}
	scheduler.Start()
	defer scheduler.Stop()

	b.Start(ctx)
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(os.Stdout).Level(lvl).With().Timestamp().Logger()
}
