// Package config provides environment-based configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds application configuration for both executables.
type Config struct {
	TelegramBotToken string
	HFAPIKey         string // empty disables the remote model
	HFModel          string
	HFBaseURL        string
	MOEXBaseURL      string // ISS base URL override, empty for production
	MOEXProxyURL     string // fetch MOEX quotes through the CORS proxy when set
	UniverseFile     string // optional JSON override of the instrument lists
	Port             int
	HTTPTimeout      time.Duration
	CacheTTL         time.Duration
	LogLevel         string
}

// Load reads configuration from the environment. Only RequireBotToken
// callers treat a missing Telegram token as an error; the proxy does not
// need one.
func Load() Config {
	return Config{
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		HFAPIKey:         os.Getenv("HF_API_KEY"),
		HFModel:          os.Getenv("HF_MODEL"),
		HFBaseURL:        os.Getenv("HF_BASE_URL"),
		MOEXBaseURL:      os.Getenv("MOEX_BASE_URL"),
		MOEXProxyURL:     os.Getenv("MOEX_PROXY_URL"),
		UniverseFile:     os.Getenv("UNIVERSE_FILE"),
		Port:             envInt("PORT", 8080),
		HTTPTimeout:      envDuration("HTTP_TIMEOUT", 10*time.Second),
		CacheTTL:         envDuration("CACHE_TTL", 5*time.Minute),
		LogLevel:         envString("LOG_LEVEL", "info"),
	}
}

// RequireBotToken validates that the Telegram token is present.
func (c Config) RequireBotToken() error {
	if c.TelegramBotToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN is not set")
	}
	return nil
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
