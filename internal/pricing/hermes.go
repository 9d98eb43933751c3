// Package pricing looks up spot prices from the Pyth Hermes API.
package pricing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// ErrPriceUnavailable wraps any oracle failure. A payment amount must never
// be computed from a stale or missing quote, so callers end the flow instead
// of retrying.
var ErrPriceUnavailable = errors.New("current price unavailable")

// ErrUnsupportedAsset is returned for symbols without a known feed.
var ErrUnsupportedAsset = errors.New("unsupported asset symbol")

// Pyth price feed IDs against USD.
var feedIDs = map[string]string{
	"ETH": "ff61491a931112ddf1bd8147cd1b641375f79f5825126d665480874634fd0ace",
}

// Client queries the Hermes "latest price update" endpoint. Every call is a
// fresh quote; nothing is cached.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger
}

func NewClient(baseURL string, log zerolog.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		log:        log.With().Str("component", "pricing").Logger(),
	}
}

type hermesResponse struct {
	Parsed []struct {
		ID    string `json:"id"`
		Price struct {
			Price       string `json:"price"`
			Expo        int32  `json:"expo"`
			PublishTime int64  `json:"publish_time"`
		} `json:"price"`
	} `json:"parsed"`
}

// Rate returns the current USD price of one unit of the asset. The quote is
// assembled from Pyth's (price, expo) integer pair without any float hop.
func (c *Client) Rate(ctx context.Context, symbol string) (decimal.Decimal, error) {
	feedID, ok := feedIDs[symbol]
	if !ok {
		return decimal.Decimal{}, fmt.Errorf("%w: %s", ErrUnsupportedAsset, symbol)
	}

	endpoint := fmt.Sprintf("%s/v2/updates/price/latest?ids[]=%s&parsed=true", c.baseURL, url.QueryEscape(feedID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %v", ErrPriceUnavailable, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error().Err(err).Str("symbol", symbol).Msg("hermes request failed")
		return decimal.Decimal{}, fmt.Errorf("%w: %v", ErrPriceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.Error().Int("status", resp.StatusCode).Str("symbol", symbol).Msg("hermes returned error status")
		return decimal.Decimal{}, fmt.Errorf("%w: status %d", ErrPriceUnavailable, resp.StatusCode)
	}

	var parsed hermesResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %v", ErrPriceUnavailable, err)
	}
	if len(parsed.Parsed) == 0 {
		return decimal.Decimal{}, fmt.Errorf("%w: empty feed response", ErrPriceUnavailable)
	}

	mantissa, err := decimal.NewFromString(parsed.Parsed[0].Price.Price)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: bad price %q", ErrPriceUnavailable, parsed.Parsed[0].Price.Price)
	}
	rate := mantissa.Shift(parsed.Parsed[0].Price.Expo)
	if !rate.IsPositive() {
		return decimal.Decimal{}, fmt.Errorf("%w: non-positive rate %s", ErrPriceUnavailable, rate)
	}

	c.log.Info().Str("symbol", symbol).Str("rate", rate.String()).Msg("price fetched")
	return rate, nil
}
