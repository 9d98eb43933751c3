package pricing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestRateParsesHermesResponse(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Contains(t, r.URL.RawQuery, "ff61491a")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"parsed": [
				{
					"id": "ff61491a931112ddf1bd8147cd1b641375f79f5825126d665480874634fd0ace",
					"price": {"price": "336712345678", "conf": "12345678", "expo": -8, "publish_time": 1756600000}
				}
			]
		}`))
	}))
	defer srv.Close()

	rate, err := NewClient(srv.URL, zerolog.Nop()).Rate(context.Background(), "ETH")
	require.NoError(t, err)
	require.Equal(t, "3367.12345678", rate.String())
}

func TestRateFailsOnServerError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, zerolog.Nop()).Rate(context.Background(), "ETH")
	require.ErrorIs(t, err, ErrPriceUnavailable)
}

func TestRateFailsOnEmptyFeed(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"parsed": []}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, zerolog.Nop()).Rate(context.Background(), "ETH")
	require.ErrorIs(t, err, ErrPriceUnavailable)
}

func TestRateRejectsUnknownSymbol(t *testing.T) {
	t.Parallel()

	_, err := NewClient("http://localhost:0", zerolog.Nop()).Rate(context.Background(), "DOGE")
	require.ErrorIs(t, err, ErrUnsupportedAsset)
}
