package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/saltyorg/cafedb/internal/database"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	db *database.DB
}

// New creates a new Handlers instance
func New(db *database.DB) *Handlers {
	return &Handlers{db: db}
}

// Health reports whether the database answers queries
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.db.HealthCheck(); err != nil {
		log.Error().Err(err).Msg("Health check failed")
		h.jsonError(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}
	h.jsonResponse(w, http.StatusOK, map[string]any{"status": "ok"})
}

// jsonResponse encodes v with the given status
func (h *Handlers) jsonResponse(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// jsonError sends a JSON error response
func (h *Handlers) jsonError(w http.ResponseWriter, message string, status int) {
	h.jsonResponse(w, status, map[string]string{"error": message})
}

// dbError maps a database error to a response. Bad identifiers and empty
// filters are the caller's fault; anything else is a server error.
func (h *Handlers) dbError(w http.ResponseWriter, err error) {
	if database.IsUsageError(err) {
		h.jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.jsonError(w, err.Error(), http.StatusInternalServerError)
}
