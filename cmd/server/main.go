// Package main is the entry point for the MarketDash scraping service.
// It wires the SQLite store, the shared headless browser, the scrape and
// fetch jobs, the cron scheduler and the read-only HTTP API, then blocks
// until a shutdown signal arrives.
package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/marketdash/marketdash/internal/browser"
	"github.com/marketdash/marketdash/internal/config"
	"github.com/marketdash/marketdash/internal/database"
	"github.com/marketdash/marketdash/internal/modules/earnings"
	"github.com/marketdash/marketdash/internal/modules/economic"
	"github.com/marketdash/marketdash/internal/modules/holidays"
	"github.com/marketdash/marketdash/internal/modules/premarket"
	"github.com/marketdash/marketdash/internal/modules/sentiment"
	"github.com/marketdash/marketdash/internal/scheduler"
	"github.com/marketdash/marketdash/internal/server"
	"github.com/marketdash/marketdash/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{
			Level:  "info",
			Pretty: true,
		})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})

	log.Info().Msg("Starting MarketDash")

	// Database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DatabasePath).Msg("Failed to open database")
	}
	defer db.Close()

	if err := initSchemas(db.Conn()); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database schema")
	}

	// Shared headless browser, one process for all scraping jobs
	driver := browser.NewDriver(browser.Config{
		Headless:        cfg.BrowserHeadless,
		NavigateTimeout: time.Duration(cfg.NavigateTimeout) * time.Second,
		SelectorTimeout: time.Duration(cfg.SelectorTimeout) * time.Second,
	}, log)
	defer driver.Close()

	// Repositories
	earningsRepo := earnings.NewRepository(db.Conn(), log)
	economicRepo := economic.NewRepository(db.Conn(), log)
	sentimentRepo := sentiment.NewRepository(db.Conn(), log)
	holidaysRepo := holidays.NewRepository(db.Conn(), log)
	premarketRepo := premarket.NewRepository(db.Conn(), log)

	// Jobs
	earningsJob := earnings.NewScraper(driver, earningsRepo, earnings.ThisWeek, log)
	nextWeekEarningsJob := earnings.NewScraper(driver, earningsRepo, earnings.NextWeek, log)
	economicJob := economic.NewScraper(driver, economicRepo, log)
	sentimentJob := sentiment.NewScraper(driver, sentimentRepo, log)
	holidaysJob := holidays.NewFetcher(holidaysRepo, cfg.PolygonAPIKey, log)
	premarketJob := premarket.NewFetcher(premarketRepo, cfg.PolygonAPIKey, cfg.MaxMovers, log)
	maintenanceJob := scheduler.NewMaintenanceJob(db.Conn(), cfg.RetentionDays, log)

	// Scheduler
	sched := scheduler.New(log)

	jobs := []struct {
		schedule string
		job      scheduler.Job
	}{
		{cfg.EarningsSchedule, earningsJob},
		{cfg.NextWeekEarningsSchedule, nextWeekEarningsJob},
		{cfg.EconomicSchedule, economicJob},
		{cfg.SentimentSchedule, sentimentJob},
		{cfg.HolidaysSchedule, holidaysJob},
		{cfg.PremarketSchedule, premarketJob},
		{cfg.MaintenanceSchedule, maintenanceJob},
	}
	for _, j := range jobs {
		if err := sched.AddJob(j.schedule, j.job); err != nil {
			log.Fatal().Err(err).Str("job", j.job.Name()).Str("schedule", j.schedule).Msg("Failed to register job")
		}
	}

	sched.Start()
	defer sched.Stop()
	log.Info().Int("jobs", len(jobs)).Msg("Scheduler started")

	// HTTP server
	srv := server.New(server.Config{
		Port:      cfg.Port,
		DevMode:   cfg.DevMode,
		Log:       log,
		DB:        db,
		Config:    cfg,
		Scheduler: sched,

		EarningsHandler:  earnings.NewHandler(earningsRepo, log),
		EconomicHandler:  economic.NewHandler(economicRepo, log),
		SentimentHandler: sentiment.NewHandler(sentimentRepo, log),
		HolidaysHandler:  holidays.NewHandler(holidaysRepo, log),
		PremarketHandler: premarket.NewHandler(premarketRepo, log),
	})

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}

// initSchemas creates every module's tables on the shared database
func initSchemas(db *sql.DB) error {
	inits := []func(*sql.DB) error{
		earnings.InitSchema,
		economic.InitSchema,
		sentiment.InitSchema,
		holidays.InitSchema,
		premarket.InitSchema,
	}
	for _, init := range inits {
		if err := init(db); err != nil {
			return err
		}
	}
	return nil
}
