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

// Request is the API gateway envelope for an incoming webhook call.
type Request struct {
	Body string `json:"body"`
}

// Response is the API gateway reply envelope.
type Response struct {
	StatusCode int               `json:"statusCode"`
	Body       string            `json:"body"`
	Headers    map[string]string `json:"headers,omitempty"`
}

// Handler processes one Telegram webhook update per invocation.
func Handler(ctx context.Context, request Request) (*Response, error) {
	log := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		return errorResponse(err)
	}

	var repo repository.Repository
	if cfg.SupabaseURL != "" {
		repo, err = repository.NewSupabaseRepository(cfg.SupabaseURL, cfg.SupabaseKey)
		if err != nil {
			return errorResponse(err)
		}
	} else {
		repo = repository.NewMemoryRepository()
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
		return errorResponse(err)
	}

	if err := b.HandleWebhook(ctx, []byte(request.Body)); err != nil {
		return errorResponse(err)
	}

	return &Response{
		StatusCode: 200,
		Headers:    map[string]string{"Content-Type": "application/json"},
	}, nil
}

func errorResponse(err error) (*Response, error) {
	return &Response{
		StatusCode: 500,
		Body:       err.Error(),
		Headers:    map[string]string{"Content-Type": "application/json"},
	}, nil
}

func main() {
	// Entry point for local builds; cloud deployments invoke Handler directly.
}
