// handlers/health_handler.go
package handlers

import (
	"log"
	"net/http"

	"github.com/gewnthar/flightdelay/models"
)

// Root confirms the API is up.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, models.MessageResponse{Message: "API is functional"})
}

// Health pings the database when one is configured.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if h.deps.DB != nil {
		if err := h.deps.DB.PingContext(r.Context()); err != nil {
			log.Printf("Handler: Health check failed: DB ping error: %v", err)
			respondWithJSON(w, http.StatusInternalServerError, models.HealthResponse{Status: "error", Message: "database connection error"})
			return
		}
	}
	respondWithJSON(w, http.StatusOK, models.HealthResponse{Status: "ok", Message: "flight delay backend is healthy"})
}
