// Package server provides the HTTP server and routing for MarketDash.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/marketdash/marketdash/internal/config"
	"github.com/marketdash/marketdash/internal/database"
	"github.com/marketdash/marketdash/internal/modules/earnings"
	"github.com/marketdash/marketdash/internal/modules/economic"
	"github.com/marketdash/marketdash/internal/modules/holidays"
	"github.com/marketdash/marketdash/internal/modules/premarket"
	"github.com/marketdash/marketdash/internal/modules/sentiment"
	"github.com/marketdash/marketdash/internal/scheduler"
)

// Config holds server configuration
type Config struct {
	Log       zerolog.Logger
	DB        *database.DB
	Config    *config.Config
	Port      int
	DevMode   bool
	Scheduler *scheduler.Scheduler

	// RequestTimeout bounds every route except the scraper trigger, which
	// drives live browser scrapes and runs as long as the batch takes.
	// Zero means the 60 second default.
	RequestTimeout time.Duration

	EarningsHandler  *earnings.Handler
	EconomicHandler  *economic.Handler
	SentimentHandler *sentiment.Handler
	HolidaysHandler  *holidays.Handler
	PremarketHandler *premarket.Handler
}

// Server represents the HTTP server
type Server struct {
	router    *chi.Mux
	server    *http.Server
	log       zerolog.Logger
	db        *database.DB
	cfg       *config.Config
	scheduler *scheduler.Scheduler
	startedAt time.Time

	requestTimeout time.Duration

	earningsHandler  *earnings.Handler
	economicHandler  *economic.Handler
	sentimentHandler *sentiment.Handler
	holidaysHandler  *holidays.Handler
	premarketHandler *premarket.Handler
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = 60 * time.Second
	}

	s := &Server{
		router:           chi.NewRouter(),
		log:              cfg.Log.With().Str("component", "server").Logger(),
		db:               cfg.DB,
		cfg:              cfg.Config,
		scheduler:        cfg.Scheduler,
		startedAt:        time.Now(),
		requestTimeout:   cfg.RequestTimeout,
		earningsHandler:  cfg.EarningsHandler,
		economicHandler:  cfg.EconomicHandler,
		sentimentHandler: cfg.SentimentHandler,
		holidaysHandler:  cfg.HolidaysHandler,
		premarketHandler: cfg.PremarketHandler,
	}

	s.setupMiddleware(cfg.DevMode)
	s.setupRoutes()

	// WriteTimeout stays off: the scraper trigger responds only after the
	// batch finishes, which can take minutes. Fast routes are bounded by the
	// per-route timeout middleware instead.
	s.server = &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.Port),
		Handler:     s.router,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	return s
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(devMode bool) {
	// Recovery from panics
	s.router.Use(middleware.Recoverer)

	// Request ID
	s.router.Use(middleware.RequestID)

	// Real IP
	s.router.Use(middleware.RealIP)

	// Logging
	s.router.Use(s.loggingMiddleware)

	// CORS
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Compress responses
	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	// Fast routes, bounded by the request timeout
	s.router.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(s.requestTimeout))

		// Health check
		r.Get("/health", s.handleHealth)

		r.Route("/api", func(r chi.Router) {
			r.Get("/system/status", s.handleSystemStatus)

			// Scraped data (read only)
			r.Get("/earnings", s.earningsHandler.HandleGetLatest)
			r.Get("/economic-events", s.economicHandler.HandleGetLatest)
			r.Get("/fear-greed", s.sentimentHandler.HandleGetLatest)
			r.Get("/market-holidays", s.holidaysHandler.HandleGetUpcoming)
			r.Get("/premarket", s.premarketHandler.HandleGetLatest)
			r.Get("/premarket/gainers", s.premarketHandler.HandleGetGainers)
			r.Get("/premarket/losers", s.premarketHandler.HandleGetLosers)

			r.Get("/scrapers/status", s.handleScrapersStatus)
		})
	})

	// Trigger-all runs the whole scrape batch synchronously and responds
	// when it finishes, so it is exempt from the request timeout.
	s.router.Post("/api/scrapers/run", s.handleScrapersRun)
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Int("port", s.cfg.Port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
