package premarket

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultBaseURL = "https://api.polygon.io"
	gainersPath    = "/v2/snapshot/locale/us/markets/stocks/gainers"
	losersPath     = "/v2/snapshot/locale/us/markets/stocks/losers"
)

// snapshotResponse is the Polygon.io snapshot payload. Day is a pointer so a
// ticker missing its session aggregates can be told apart from a zero price.
type snapshotResponse struct {
	Tickers []struct {
		Ticker           string  `json:"ticker"`
		TodaysChange     float64 `json:"todaysChange"`
		TodaysChangePerc float64 `json:"todaysChangePerc"`
		Day              *struct {
			Close  float64 `json:"c"`
			Volume float64 `json:"v"`
		} `json:"day"`
	} `json:"tickers"`
}

// Fetcher pulls pre-market gainers and losers from the Polygon.io JSON API
type Fetcher struct {
	repo      *Repository
	apiKey    string
	baseURL   string
	maxMovers int
	client    *http.Client
	log       zerolog.Logger
	now       func() time.Time
}

// NewFetcher creates a new premarket movers fetcher
func NewFetcher(repo *Repository, apiKey string, maxMovers int, log zerolog.Logger) *Fetcher {
	return &Fetcher{
		repo:      repo,
		apiKey:    apiKey,
		baseURL:   defaultBaseURL,
		maxMovers: maxMovers,
		client:    &http.Client{Timeout: 30 * time.Second},
		log:       log.With().Str("job", "premarket_movers").Logger(),
		now:       time.Now,
	}
}

// Name implements scheduler.Job
func (f *Fetcher) Name() string {
	return "premarket_movers"
}

// Run implements scheduler.Job: fetch both mover lists and upsert them
func (f *Fetcher) Run() error {
	start := time.Now()

	movers, err := f.Fetch(context.Background())
	if err != nil {
		f.log.Error().Err(err).Dur("elapsed", time.Since(start)).Msg("Premarket fetch failed")
		return err
	}

	records := append(movers.Gainers, movers.Losers...)
	if len(records) == 0 {
		f.log.Warn().Msg("No premarket movers returned")
		return nil
	}

	if err := f.repo.Upsert(records); err != nil {
		return fmt.Errorf("failed to store premarket movers: %w", err)
	}

	f.log.Info().
		Int("gainers", len(movers.Gainers)).
		Int("losers", len(movers.Losers)).
		Dur("elapsed", time.Since(start)).
		Msg("Premarket fetch finished")

	return nil
}

// Fetch retrieves gainers and losers separately, truncating each list to the
// configured maximum and tagging every record with today's date.
func (f *Fetcher) Fetch(ctx context.Context) (Movers, error) {
	if f.apiKey == "" {
		return Movers{}, fmt.Errorf("POLYGON_API_KEY is not configured")
	}

	today := f.now().Format("2006-01-02")

	gainers, err := f.fetchDirection(ctx, f.baseURL+gainersPath, Gainer, today)
	if err != nil {
		return Movers{}, fmt.Errorf("gainers: %w", err)
	}

	losers, err := f.fetchDirection(ctx, f.baseURL+losersPath, Loser, today)
	if err != nil {
		return Movers{}, fmt.Errorf("losers: %w", err)
	}

	return Movers{Gainers: gainers, Losers: losers}, nil
}

func (f *Fetcher) fetchDirection(ctx context.Context, endpoint string, direction Direction, date string) ([]Mover, error) {
	params := url.Values{
		"apiKey":      {f.apiKey},
		"include_otc": {"false"},
		"session":     {"pre-market"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch snapshot: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var payload snapshotResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot response: %w", err)
	}

	movers := make([]Mover, 0, len(payload.Tickers))
	for _, t := range payload.Tickers {
		if len(movers) >= f.maxMovers {
			break
		}
		if t.Ticker == "" || t.Day == nil {
			f.log.Warn().Str("ticker", t.Ticker).Msg("Mover missing session data, skipping")
			continue
		}
		movers = append(movers, Mover{
			Symbol:        t.Ticker,
			Price:         t.Day.Close,
			Change:        t.TodaysChange,
			ChangePercent: t.TodaysChangePerc,
			Volume:        int64(t.Day.Volume),
			Direction:     direction,
			Date:          date,
		})
	}

	return movers, nil
}
