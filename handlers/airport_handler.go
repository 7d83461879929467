// handlers/airport_handler.go
package handlers

import (
	"fmt"
	"net/http"

	"github.com/gewnthar/flightdelay/models"
	"github.com/gewnthar/flightdelay/utils"
)

// Airports handles GET /api/airports.
func (h *Handler) Airports(w http.ResponseWriter, r *http.Request) {
	if h.deps.Encoder == nil {
		respondWithError(w, http.StatusServiceUnavailable, "Airport encodings are not loaded.")
		return
	}
	respondWithJSON(w, http.StatusOK, models.AirportListResponse{Airports: h.deps.Encoder.Airports()})
}

// AirportEncoding handles GET /api/airports/{code}/encoding.
func (h *Handler) AirportEncoding(w http.ResponseWriter, r *http.Request) {
	if h.deps.Encoder == nil {
		respondWithError(w, http.StatusServiceUnavailable, "Airport encodings are not loaded.")
		return
	}

	code := utils.NormalizeAirportCode(r.PathValue("code"))
	vec, ok := h.deps.Encoder.Encode(code)
	if !ok {
		respondWithError(w, http.StatusNotFound, fmt.Sprintf("Unknown arrival airport '%s'.", code))
		return
	}
	idx, _ := h.deps.Encoder.Index(code)

	respondWithJSON(w, http.StatusOK, models.AirportEncodingResponse{
		Airport:  code,
		Index:    idx,
		Encoding: vec,
	})
}
