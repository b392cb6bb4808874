package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"finnow/internal/config"
	"finnow/internal/marketdata"
	"finnow/internal/models"
	"finnow/internal/proxy"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

func main() {
	// A .env file is optional in production.
	_ = godotenv.Load()

	cfg := config.Load()
	log := newLogger(cfg.LogLevel)

	universe, err := models.LoadUniverseFromJSON(cfg.UniverseFile)
	if err != nil {
		log.Fatal().Err(err).Str("file", cfg.UniverseFile).Msg("failed to load instrument universe")
	}

	var moexOpts []marketdata.MOEXOption
	if cfg.MOEXBaseURL != "" {
		moexOpts = append(moexOpts, marketdata.WithMOEXBaseURL(cfg.MOEXBaseURL))
	}
	moex := marketdata.NewMOEXClient(universe.StockTickers, universe.BondTickers, cfg.HTTPTimeout, log, moexOpts...)

	handler := proxy.NewHandler(moex, log)
	router := proxy.NewRouter(handler)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Info().Int("port", cfg.Port).Msg("MOEX proxy listening")
	if err := srv.ListenAndServe(); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(os.Stdout).Level(lvl).With().Timestamp().Logger()
}
