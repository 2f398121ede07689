package holidays

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
)

const upcomingURL = "https://api.polygon.io/v1/marketstatus/upcoming"

// upcomingHoliday is the Polygon.io market status payload
type upcomingHoliday struct {
	Name     string `json:"name"`
	Date     string `json:"date"`
	Status   string `json:"status"`
	Exchange string `json:"exchange"`
}

// Fetcher pulls upcoming exchange holidays from the Polygon.io JSON API.
// No browser involved; this feed is plain HTTP.
type Fetcher struct {
	repo    *Repository
	apiKey  string
	baseURL string
	client  *http.Client
	log     zerolog.Logger
	now     func() time.Time
}

// NewFetcher creates a new holidays fetcher
func NewFetcher(repo *Repository, apiKey string, log zerolog.Logger) *Fetcher {
	return &Fetcher{
		repo:    repo,
		apiKey:  apiKey,
		baseURL: upcomingURL,
		client:  &http.Client{Timeout: 30 * time.Second},
		log:     log.With().Str("job", "market_holidays").Logger(),
	}
}

// Name implements scheduler.Job
func (f *Fetcher) Name() string {
	return "market_holidays"
}

// Run implements scheduler.Job: fetch the holiday list and upsert it
func (f *Fetcher) Run() error {
	start := time.Now()

	records, err := f.Fetch(context.Background())
	if err != nil {
		f.log.Error().Err(err).Dur("elapsed", time.Since(start)).Msg("Holiday fetch failed")
		return err
	}
	if len(records) == 0 {
		f.log.Warn().Msg("No market holidays returned")
		return nil
	}

	if err := f.repo.Upsert(records); err != nil {
		return fmt.Errorf("failed to store market holidays: %w", err)
	}

	f.log.Info().
		Int("count", len(records)).
		Dur("elapsed", time.Since(start)).
		Msg("Holiday fetch finished")

	return nil
}

// Fetch retrieves the upcoming holiday list, annotating each record with the
// current calendar year and defaulting missing fields.
func (f *Fetcher) Fetch(ctx context.Context) ([]Holiday, error) {
	if f.apiKey == "" {
		return nil, fmt.Errorf("POLYGON_API_KEY is not configured")
	}

	reqURL := f.baseURL + "?apiKey=" + url.QueryEscape(f.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch market holidays: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var payload []upcomingHoliday
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to parse holiday response: %w", err)
	}

	currentYear := f.currentTime().Year()
	records := make([]Holiday, 0, len(payload))
	for _, h := range payload {
		if h.Date == "" {
			f.log.Warn().Str("name", h.Name).Msg("Holiday missing date, skipping")
			continue
		}
		records = append(records, Holiday{
			Name:     defaultString(h.Name, "Unknown"),
			Date:     h.Date,
			Status:   defaultString(h.Status, "closed"),
			Exchange: defaultString(h.Exchange, "NYSE"),
			Year:     currentYear,
		})
	}

	return records, nil
}

func (f *Fetcher) currentTime() time.Time {
	if f.now != nil {
		return f.now()
	}
	return time.Now()
}

func defaultString(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
