package holidays

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFetcher(t *testing.T, handler http.HandlerFunc) *Fetcher {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	f := NewFetcher(nil, "test-key", zerolog.Nop())
	f.baseURL = srv.URL
	f.now = func() time.Time {
		return time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	}
	return f
}

func TestFetchAnnotatesAndDefaults(t *testing.T) {
	f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("apiKey"))
		w.Write([]byte(`[
			{"name": "Labor Day", "date": "2026-09-07", "status": "closed", "exchange": "NYSE"},
			{"name": "Thanksgiving", "date": "2026-11-26"},
			{"name": "No Date Holiday"}
		]`))
	})

	got, err := f.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, Holiday{
		Name:     "Labor Day",
		Date:     "2026-09-07",
		Status:   "closed",
		Exchange: "NYSE",
		Year:     2026,
	}, got[0])

	// Missing status and exchange fall back to defaults
	assert.Equal(t, "closed", got[1].Status)
	assert.Equal(t, "NYSE", got[1].Exchange)
	assert.Equal(t, 2026, got[1].Year)
}

func TestFetchRequiresAPIKey(t *testing.T) {
	f := NewFetcher(nil, "", zerolog.Nop())

	_, err := f.Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "POLYGON_API_KEY")
}

func TestFetchRejectsBadStatus(t *testing.T) {
	f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := f.Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestFetchRejectsMalformedBody(t *testing.T) {
	f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"not": "a list"}`))
	})

	_, err := f.Fetch(context.Background())
	require.Error(t, err)
}
