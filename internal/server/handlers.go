// Package server provides the HTTP server and routing for MarketDash.
package server

import (
	"encoding/json"
	"net/http"
	"runtime"
	"time"
)

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":  "healthy",
		"version": "1.0.0",
		"service": "marketdash",
	}

	s.writeJSON(w, http.StatusOK, response)
}

// handleSystemStatus reports process stats, database health and job state
func (s *Server) handleSystemStatus(w http.ResponseWriter, r *http.Request) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	dbStatus := "healthy"
	if err := s.db.Conn().Ping(); err != nil {
		dbStatus = "unhealthy: " + err.Error()
	}

	response := map[string]interface{}{
		"status": "success",
		"data": map[string]interface{}{
			"uptime_seconds": int64(time.Since(s.startedAt).Seconds()),
			"goroutines":     runtime.NumGoroutine(),
			"alloc_bytes":    mem.Alloc,
			"go_version":     runtime.Version(),
			"database":       dbStatus,
			"jobs":           s.scheduler.Jobs(),
		},
	}

	s.writeJSON(w, http.StatusOK, response)
}

// handleScrapersStatus reports each registered job's schedule and last run
func (s *Server) handleScrapersStatus(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status": "success",
		"data":   s.scheduler.Jobs(),
	}

	s.writeJSON(w, http.StatusOK, response)
}

// handleScrapersRun triggers every registered job and reports per-job results.
// Jobs run sequentially, so this can take minutes with a live browser.
func (s *Server) handleScrapersRun(w http.ResponseWriter, r *http.Request) {
	s.log.Info().Msg("Manual trigger of all scrapers requested")

	results := s.scheduler.TriggerAll()

	response := map[string]interface{}{
		"status": "success",
		"data":   results,
	}

	s.writeJSON(w, http.StatusOK, response)
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
