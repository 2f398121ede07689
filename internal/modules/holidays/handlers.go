package holidays

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"
)

// Handler handles market holiday HTTP requests
type Handler struct {
	repo *Repository
	log  zerolog.Logger
}

// NewHandler creates a new holidays handler
func NewHandler(repo *Repository, log zerolog.Logger) *Handler {
	return &Handler{
		repo: repo,
		log:  log.With().Str("handler", "holidays").Logger(),
	}
}

// HandleGetUpcoming handles GET /api/market-holidays?limit=N
func (h *Handler) HandleGetUpcoming(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil || l < 1 || l > 1000 {
			http.Error(w, "Invalid limit. Must be 1-1000", http.StatusBadRequest)
			return
		}
		limit = l
	}

	records, err := h.repo.GetUpcoming(limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get market holidays")
		http.Error(w, "Failed to retrieve market holidays", http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []Holiday{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{
		"status": "success",
		"data":   records,
	}); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode holidays response")
	}
}
