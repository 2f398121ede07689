package sentiment

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"
)

// Handler handles fear & greed HTTP requests
type Handler struct {
	repo *Repository
	log  zerolog.Logger
}

// NewHandler creates a new sentiment handler
func NewHandler(repo *Repository, log zerolog.Logger) *Handler {
	return &Handler{
		repo: repo,
		log:  log.With().Str("handler", "sentiment").Logger(),
	}
}

// HandleGetLatest handles GET /api/fear-greed?limit=N
func (h *Handler) HandleGetLatest(w http.ResponseWriter, r *http.Request) {
	limit := 1
	if v := r.URL.Query().Get("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil || l < 1 || l > 1000 {
			http.Error(w, "Invalid limit. Must be 1-1000", http.StatusBadRequest)
			return
		}
		limit = l
	}

	readings, err := h.repo.GetLatest(limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get fear greed readings")
		http.Error(w, "Failed to retrieve fear greed readings", http.StatusInternalServerError)
		return
	}
	if readings == nil {
		readings = []Reading{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{
		"status": "success",
		"data":   readings,
	}); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode fear greed response")
	}
}
