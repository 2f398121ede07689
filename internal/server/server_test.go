package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketdash/marketdash/internal/config"
	"github.com/marketdash/marketdash/internal/database"
	"github.com/marketdash/marketdash/internal/modules/earnings"
	"github.com/marketdash/marketdash/internal/modules/economic"
	"github.com/marketdash/marketdash/internal/modules/holidays"
	"github.com/marketdash/marketdash/internal/modules/premarket"
	"github.com/marketdash/marketdash/internal/modules/sentiment"
	"github.com/marketdash/marketdash/internal/scheduler"
)

func newTestServer(t *testing.T, opts ...func(*Config)) *Server {
	t.Helper()

	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, earnings.InitSchema(db.Conn()))
	require.NoError(t, economic.InitSchema(db.Conn()))
	require.NoError(t, sentiment.InitSchema(db.Conn()))
	require.NoError(t, holidays.InitSchema(db.Conn()))
	require.NoError(t, premarket.InitSchema(db.Conn()))

	log := zerolog.Nop()
	cfg := Config{
		Port:      0,
		DevMode:   true,
		Log:       log,
		DB:        db,
		Config:    &config.Config{Port: 0},
		Scheduler: scheduler.New(log),

		EarningsHandler:  earnings.NewHandler(earnings.NewRepository(db.Conn(), log), log),
		EconomicHandler:  economic.NewHandler(economic.NewRepository(db.Conn(), log), log),
		SentimentHandler: sentiment.NewHandler(sentiment.NewRepository(db.Conn(), log), log),
		HolidaysHandler:  holidays.NewHandler(holidays.NewRepository(db.Conn(), log), log),
		PremarketHandler: premarket.NewHandler(premarket.NewRepository(db.Conn(), log), log),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return New(cfg)
}

func doRequest(t *testing.T, s *Server, method, path string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	req := httptest.NewRequest(method, path, nil)
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)

	var body map[string]interface{}
	if rr.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	}
	return rr, body
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(t)

	rr, body := doRequest(t, s, http.MethodGet, "/health")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "marketdash", body["service"])
}

func TestHandleSystemStatus(t *testing.T) {
	s := newTestServer(t)

	rr, body := doRequest(t, s, http.MethodGet, "/api/system/status")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "success", body["status"])

	data, ok := body["data"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "healthy", data["database"])
	assert.Contains(t, data, "uptime_seconds")
	assert.Contains(t, data, "goroutines")
}

func TestDataRoutesRespond(t *testing.T) {
	s := newTestServer(t)

	paths := []string{
		"/api/earnings",
		"/api/economic-events",
		"/api/fear-greed",
		"/api/market-holidays",
		"/api/premarket",
		"/api/premarket/gainers",
		"/api/premarket/losers",
	}

	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			rr, body := doRequest(t, s, http.MethodGet, path)
			assert.Equal(t, http.StatusOK, rr.Code)
			assert.Equal(t, "success", body["status"])
		})
	}
}

func TestInvalidLimitRejected(t *testing.T) {
	s := newTestServer(t)

	rr, _ := doRequest(t, s, http.MethodGet, "/api/earnings?limit=0")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr, _ = doRequest(t, s, http.MethodGet, "/api/earnings?limit=5000")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

type slowJob struct {
	name  string
	sleep time.Duration
}

func (j *slowJob) Name() string { return j.name }

func (j *slowJob) Run() error {
	time.Sleep(j.sleep)
	return nil
}

func TestScrapersRunOutlivesRequestTimeout(t *testing.T) {
	sched := scheduler.New(zerolog.Nop())
	require.NoError(t, sched.AddJob("@hourly", &slowJob{name: "earnings", sleep: 200 * time.Millisecond}))

	s := newTestServer(t, func(cfg *Config) {
		cfg.Scheduler = sched
		cfg.RequestTimeout = 50 * time.Millisecond
	})

	// The batch takes longer than the request timeout; the trigger route is
	// exempt so the caller still gets the full result map.
	rr, body := doRequest(t, s, http.MethodPost, "/api/scrapers/run")
	assert.Equal(t, http.StatusOK, rr.Code)

	data, ok := body["data"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "success", data["earnings"])
}

func TestScrapersStatusAndRun(t *testing.T) {
	s := newTestServer(t)

	rr, body := doRequest(t, s, http.MethodGet, "/api/scrapers/status")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "success", body["status"])

	// No jobs registered yet, trigger-all reports an empty result map
	rr, body = doRequest(t, s, http.MethodPost, "/api/scrapers/run")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "success", body["status"])
	assert.Empty(t, body["data"])
}
