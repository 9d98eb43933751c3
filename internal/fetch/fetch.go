// Package fetch retrieves receipt images over HTTP and sniffs their type.
package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/splitchain/splitbot/internal/retry"
)

// ErrUnsupportedFormat marks content the pipeline cannot process (PDF).
// Not a transient condition, never retried.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// Error reports a failed download after retries were exhausted.
type Error struct {
	URL string
	Err error
}

func (e *Error) Error() string { return fmt.Sprintf("fetch %s: %v", e.URL, e.Err) }
func (e *Error) Unwrap() error { return e.Err }

var (
	pngMagic = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}
	pdfMagic = []byte("%PDF")
)

// Fetcher downloads image bytes with bounded retry on transient failures.
// Images are held in memory only.
type Fetcher struct {
	client   *http.Client
	strategy retry.Strategy
	log      zerolog.Logger
}

func New(log zerolog.Logger) *Fetcher {
	return NewWithStrategy(log, retry.Strategy{
		MaxAttempts: 3,
		BaseDelay:   2 * time.Second,
		MaxDelay:    10 * time.Second,
	})
}

// NewWithStrategy exists so tests can shrink the backoff delays.
func NewWithStrategy(log zerolog.Logger, strategy retry.Strategy) *Fetcher {
	strategy.Retryable = isTransient
	return &Fetcher{
		client:   &http.Client{Timeout: 30 * time.Second},
		strategy: strategy,
		log:      log.With().Str("component", "fetch").Logger(),
	}
}

// statusError distinguishes HTTP status failures from transport failures so
// the predicate can treat 4xx as permanent.
type statusError struct {
	code int
}

func (e *statusError) Error() string { return fmt.Sprintf("unexpected status %d", e.code) }

func isTransient(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.code >= 500
	}
	// Everything else here is a transport-level failure.
	return true
}

// Fetch downloads the image at url and returns its bytes together with the
// sniffed MIME type. Connection errors and 5xx responses are retried with
// exponential backoff; 4xx responses fail immediately. PDF content is
// rejected with ErrUnsupportedFormat without any retry.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, string, error) {
	var body []byte
	attempt := 0
	err := f.strategy.Do(ctx, func() error {
		attempt++
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		resp, err := f.client.Do(req)
		if err != nil {
			f.log.Warn().Err(err).Int("attempt", attempt).Msg("image download failed")
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			err := &statusError{code: resp.StatusCode}
			f.log.Warn().Int("status", resp.StatusCode).Int("attempt", attempt).Msg("image download rejected")
			return err
		}

		body, err = io.ReadAll(resp.Body)
		return err
	})
	if err != nil {
		return nil, "", &Error{URL: url, Err: err}
	}

	mime, err := sniffMIME(body)
	if err != nil {
		return nil, "", err
	}
	f.log.Debug().Str("mime", mime).Int("bytes", len(body)).Msg("image fetched")
	return body, mime, nil
}

func sniffMIME(data []byte) (string, error) {
	switch {
	case bytes.HasPrefix(data, pdfMagic):
		return "", ErrUnsupportedFormat
	case bytes.HasPrefix(data, pngMagic):
		return "image/png", nil
	default:
		return "image/jpeg", nil
	}
}
