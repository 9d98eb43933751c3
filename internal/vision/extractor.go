package vision

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"

	"github.com/splitchain/splitbot/internal/retry"
)

const extractionPrompt = `Analyze this image carefully.

First decide whether the image shows a purchase receipt. Then extract the
following information:
- Total amount
- Tax amount
- Date of transaction
- Merchant/store name
- List of items with their individual prices and quantities

Structure the output as a single JSON object with this exact format:
{
    "is_receipt": true,
    "merchant": "Store Name",
    "date": "YYYY-MM-DD",
    "total": 0.00,
    "tax": 0.00,
    "currency": "USD",
    "items": [
        {
            "name": "Item Name",
            "price": 0.00,
            "quantity": 1
        }
    ]
}
If the image is not a receipt, return:
{"is_receipt": false, "message": "short explanation for the user"}

Ensure numerical values are numbers, not strings. If any field is missing,
try to calculate it. Include ALL items from the receipt.`

// completionClient is the slice of the OpenAI client the extractor uses.
// *openai.Client satisfies it.
type completionClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Extractor submits a receipt image to a vision-capable model and returns the
// raw model text. This is the most failure-prone step of the pipeline; the
// retry envelope is the primary defense against provider flakiness.
type Extractor struct {
	client   completionClient
	model    string
	strategy retry.Strategy
	log      zerolog.Logger
}

func NewExtractor(apiKey, model string, log zerolog.Logger) *Extractor {
	return newExtractor(openai.NewClient(apiKey), model, log, retry.Strategy{
		MaxAttempts: 5,
		BaseDelay:   2 * time.Second,
		MaxDelay:    20 * time.Second,
	})
}

func newExtractor(client completionClient, model string, log zerolog.Logger, strategy retry.Strategy) *Extractor {
	strategy.Retryable = isRetryableProviderErr
	return &Extractor{
		client:   client,
		model:    model,
		strategy: strategy,
		log:      log.With().Str("component", "vision").Logger(),
	}
}

func isRetryableProviderErr(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == 429 || apiErr.HTTPStatusCode >= 500
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		// status 0 means the request never got a response
		return reqErr.HTTPStatusCode == 0 || reqErr.HTTPStatusCode == 429 || reqErr.HTTPStatusCode >= 500
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	// Empty/truncated responses count as transient provider noise.
	return errors.Is(err, errEmptyCompletion)
}

var errEmptyCompletion = errors.New("model returned an empty completion")

// Extract sends the image with the structured instruction and returns the raw
// response text. Temperature is fixed at 0. Rate-limit and transient API
// failures are retried with exponential backoff; after the budget is spent the
// last cause is wrapped in ExtractionError.
func (e *Extractor) Extract(ctx context.Context, image []byte, mimeType string) (string, error) {
	dataURL := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(image))

	var raw string
	attempt := 0
	err := e.strategy.Do(ctx, func() error {
		attempt++
		resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:       e.model,
			Temperature: 0,
			MaxTokens:   1024,
			Messages: []openai.ChatCompletionMessage{
				{
					Role: openai.ChatMessageRoleUser,
					MultiContent: []openai.ChatMessagePart{
						{
							Type:     openai.ChatMessagePartTypeImageURL,
							ImageURL: &openai.ChatMessageImageURL{URL: dataURL},
						},
						{
							Type: openai.ChatMessagePartTypeText,
							Text: extractionPrompt,
						},
					},
				},
			},
		})
		if err != nil {
			e.log.Warn().Err(err).Int("attempt", attempt).Msg("vision call failed")
			return err
		}
		if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
			e.log.Warn().Int("attempt", attempt).Msg("vision call returned no content")
			return errEmptyCompletion
		}
		raw = resp.Choices[0].Message.Content
		return nil
	})
	if err != nil {
		return "", &ExtractionError{Err: err}
	}

	e.log.Debug().Int("attempts", attempt).Int("chars", len(raw)).Msg("vision extraction done")
	return raw, nil
}
