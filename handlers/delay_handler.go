// handlers/delay_handler.go
package handlers

import (
	"log"
	"net/http"

	"github.com/gewnthar/flightdelay/models"
	"github.com/gewnthar/flightdelay/services"
)

// PredictDelays handles GET /predict/delays
// ?departure_airport=JFK&arrival_airport=LAX&departure_time=YYYY-MM-DD HH:MM:SS&arrival_time=YYYY-MM-DD HH:MM:SS
// and returns the mean departure delay of matching historical flights.
func (h *Handler) PredictDelays(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	depAirport := params.Get("departure_airport")
	arrAirport := params.Get("arrival_airport")
	depTime := params.Get("departure_time")
	arrTime := params.Get("arrival_time")

	log.Printf("Handler: Received predict request: %s, %s, %s, %s\n", depAirport, arrAirport, depTime, arrTime)

	query, err := services.NewDelayQuery(depAirport, arrAirport, depTime, arrTime)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	avg, err := h.deps.Delays.PredictDelay(r.Context(), query)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, models.PredictDelayResponse{AverageDepartureDelayMinutes: avg})
}
