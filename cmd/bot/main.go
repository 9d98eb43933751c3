package main

import (
	"context"
	"os"

	"github.com/rs/zerolog"

	"github.com/splitchain/splitbot/internal/bot"
	"github.com/splitchain/splitbot/internal/charts"
	"github.com/splitchain/splitbot/internal/config"
	"github.com/splitchain/splitbot/internal/conversation"
	"github.com/splitchain/splitbot/internal/fetch"
	"github.com/splitchain/splitbot/internal/pricing"
	"github.com/splitchain/splitbot/internal/repository"
	"github.com/splitchain/splitbot/internal/vision"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	repo, err := buildRepository(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init repository")
	}

	deps := bot.Deps{
		Config: conversation.Config{
			ChainID:     cfg.ChainID,
			AssetSymbol: cfg.AssetSymbol,
		},
		Pipeline: vision.NewPipeline(
			fetch.New(log),
			vision.NewExtractor(cfg.OpenAIKey, cfg.VisionModel, log),
			log,
		),
		Oracle: pricing.NewClient(cfg.HermesURL, log),
		Repo:   repo,
		Charts: charts.NewChartGenerator(),
	}

	b, err := bot.NewBot(cfg.TelegramToken, deps, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init bot")
	}

	if err := b.Start(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("bot stopped")
	}
}

func buildRepository(cfg *config.Config, log zerolog.Logger) (repository.Repository, error) {
	if cfg.SupabaseURL == "" {
		log.Info().Msg("SUPABASE_URL not set, history kept in memory")
		return repository.NewMemoryRepository(), nil
	}
	return repository.NewSupabaseRepository(cfg.SupabaseURL, cfg.SupabaseKey)
}
