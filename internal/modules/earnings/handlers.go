package earnings

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"
)

// Handler handles earnings HTTP requests
type Handler struct {
	repo *Repository
	log  zerolog.Logger
}

// NewHandler creates a new earnings handler
func NewHandler(repo *Repository, log zerolog.Logger) *Handler {
	return &Handler{
		repo: repo,
		log:  log.With().Str("handler", "earnings").Logger(),
	}
}

// HandleGetLatest handles GET /api/earnings?limit=N
func (h *Handler) HandleGetLatest(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil || l < 1 || l > 1000 {
			http.Error(w, "Invalid limit. Must be 1-1000", http.StatusBadRequest)
			return
		}
		limit = l
	}

	reports, err := h.repo.GetLatest(limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get earnings reports")
		http.Error(w, "Failed to retrieve earnings reports", http.StatusInternalServerError)
		return
	}
	if reports == nil {
		reports = []Report{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{
		"status": "success",
		"data":   reports,
	}); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode earnings response")
	}
}
