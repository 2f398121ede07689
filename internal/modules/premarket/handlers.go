package premarket

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"
)

// Handler handles premarket mover HTTP requests
type Handler struct {
	repo *Repository
	log  zerolog.Logger
}

// NewHandler creates a new premarket handler
func NewHandler(repo *Repository, log zerolog.Logger) *Handler {
	return &Handler{
		repo: repo,
		log:  log.With().Str("handler", "premarket").Logger(),
	}
}

// HandleGetLatest handles GET /api/premarket?limit=N
func (h *Handler) HandleGetLatest(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}

	movers, err := h.repo.GetLatest(limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get premarket movers")
		http.Error(w, "Failed to retrieve premarket movers", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, movers)
}

// HandleGetGainers handles GET /api/premarket/gainers?limit=N
func (h *Handler) HandleGetGainers(w http.ResponseWriter, r *http.Request) {
	h.handleDirection(w, r, Gainer)
}

// HandleGetLosers handles GET /api/premarket/losers?limit=N
func (h *Handler) HandleGetLosers(w http.ResponseWriter, r *http.Request) {
	h.handleDirection(w, r, Loser)
}

func (h *Handler) handleDirection(w http.ResponseWriter, r *http.Request, direction Direction) {
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}

	movers, err := h.repo.GetLatestByDirection(direction, limit)
	if err != nil {
		h.log.Error().Err(err).Str("direction", string(direction)).Msg("Failed to get premarket movers")
		http.Error(w, "Failed to retrieve premarket movers", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, movers)
}

func parseLimit(w http.ResponseWriter, r *http.Request) (int, bool) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil || l < 1 || l > 1000 {
			http.Error(w, "Invalid limit. Must be 1-1000", http.StatusBadRequest)
			return 0, false
		}
		limit = l
	}
	return limit, true
}

func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{
		"status": "success",
		"data":   data,
	}); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode premarket response")
	}
}
