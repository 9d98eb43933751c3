package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/splitchain/splitbot/internal/retry"
)

func testFetcher() *Fetcher {
	return NewWithStrategy(zerolog.Nop(), retry.Strategy{
		MaxAttempts: 3,
		BaseDelay:   time.Millisecond,
		MaxDelay:    5 * time.Millisecond,
	})
}

func TestFetchRetriesServerErrors(t *testing.T) {
	t.Parallel()

	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte{0xff, 0xd8, 0xff, 0xe0})
	}))
	defer srv.Close()

	data, mime, err := testFetcher().Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Equal(t, "image/jpeg", mime)
	require.Equal(t, []byte{0xff, 0xd8, 0xff, 0xe0}, data)
	require.Equal(t, 3, calls)
}

func TestFetchDoesNotRetryClientErrors(t *testing.T) {
	t.Parallel()

	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, _, err := testFetcher().Fetch(context.Background(), srv.URL)
	var fetchErr *Error
	require.ErrorAs(t, err, &fetchErr)
	require.Equal(t, 1, calls)
}

func TestFetchExhaustsRetryBudget(t *testing.T) {
	t.Parallel()

	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, _, err := testFetcher().Fetch(context.Background(), srv.URL)
	var fetchErr *Error
	require.ErrorAs(t, err, &fetchErr)
	require.Equal(t, 3, calls)
}

func TestFetchRejectsPDFWithoutRetry(t *testing.T) {
	t.Parallel()

	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		_, _ = w.Write([]byte("%PDF-1.7 ..."))
	}))
	defer srv.Close()

	_, _, err := testFetcher().Fetch(context.Background(), srv.URL)
	require.ErrorIs(t, err, ErrUnsupportedFormat)
	require.Equal(t, 1, calls)
}

func TestSniffMIME(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"png signature", []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0x00}, "image/png"},
		{"jpeg default", []byte{0xff, 0xd8, 0xff}, "image/jpeg"},
		{"unknown defaults to jpeg", []byte("whatever"), "image/jpeg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mime, err := sniffMIME(tt.data)
			require.NoError(t, err)
			require.Equal(t, tt.want, mime)
		})
	}

	_, err := sniffMIME([]byte("%PDF-1.4"))
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}
