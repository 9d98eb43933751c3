package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	TelegramToken string
	OpenAIKey     string
	VisionModel   string

	HermesURL   string
	ChainID     int64
	AssetSymbol string

	// Optional; history falls back to the in-memory store when unset.
	SupabaseURL string
	SupabaseKey string
}

func Load() (*Config, error) {
	// .env is optional outside local development
	_ = godotenv.Load()

	cfg := &Config{
		TelegramToken: os.Getenv("TELEGRAM_TOKEN"),
		OpenAIKey:     os.Getenv("OPENAI_API_KEY"),
		VisionModel:   getEnvDefault("VISION_MODEL", "gpt-4o-mini"),
		HermesURL:     getEnvDefault("HERMES_URL", "https://hermes.pyth.network"),
		AssetSymbol:   getEnvDefault("ASSET_SYMBOL", "ETH"),
		SupabaseURL:   os.Getenv("SUPABASE_URL"),
		SupabaseKey:   os.Getenv("SUPABASE_KEY"),
	}

	chainID, err := strconv.ParseInt(getEnvDefault("CHAIN_ID", "84532"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid CHAIN_ID: %w", err)
	}
	cfg.ChainID = chainID

	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN is required")
	}
	if cfg.OpenAIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}

	return cfg, nil
}

func getEnvDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
