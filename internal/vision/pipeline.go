package vision

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/splitchain/splitbot/internal/model"
)

// ImageSource resolves a file URL into raw bytes plus a MIME type.
type ImageSource interface {
	Fetch(ctx context.Context, url string) ([]byte, string, error)
}

// TextExtractor turns an image into raw model text.
type TextExtractor interface {
	Extract(ctx context.Context, image []byte, mimeType string) (string, error)
}

// Pipeline chains fetch, model extraction, normalization and validation into
// the single operation the conversation engine runs per uploaded image.
type Pipeline struct {
	source    ImageSource
	extractor TextExtractor
	log       zerolog.Logger
}

func NewPipeline(source ImageSource, extractor TextExtractor, log zerolog.Logger) *Pipeline {
	return &Pipeline{
		source:    source,
		extractor: extractor,
		log:       log.With().Str("component", "pipeline").Logger(),
	}
}

// Process resolves the image behind url into a validated ReceiptRecord.
func (p *Pipeline) Process(ctx context.Context, url string) (*model.ReceiptRecord, error) {
	image, mime, err := p.source.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	raw, err := p.extractor.Extract(ctx, image, mime)
	if err != nil {
		return nil, err
	}

	payload, err := Normalize(raw)
	if err != nil {
		p.log.Warn().Err(err).Str("raw", truncate(raw, 200)).Msg("model response not parseable")
		return nil, err
	}

	record, err := Validate(payload)
	if err != nil {
		return nil, err
	}

	p.log.Info().
		Bool("is_receipt", record.IsReceipt).
		Str("merchant", record.Merchant).
		Int("items", len(record.Items)).
		Msg("receipt processed")
	return record, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
