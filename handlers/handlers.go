// handlers/handlers.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gewnthar/flightdelay/encoder"
	"github.com/gewnthar/flightdelay/models"
	"github.com/gewnthar/flightdelay/services"
	"golang.org/x/time/rate"
)

// InvalidDateFormatMessage is the client-facing message for a malformed query timestamp.
const InvalidDateFormatMessage = "Invalid date format. Use 'YYYY-MM-DD HH:MM:SS'."

// DelayPredictor is satisfied by *services.DelayService.
type DelayPredictor interface {
	PredictDelay(ctx context.Context, query models.DelayQuery) (float64, error)
}

// DatasetRefresher is satisfied by *services.DatasetRefresher.
type DatasetRefresher interface {
	Enabled() bool
	Refresh(ctx context.Context) (*models.RefreshResponse, error)
}

// VersionLister is satisfied by *database.VersionStore.
type VersionLister interface {
	GetDatasetVersions(ctx context.Context) ([]models.DatasetVersion, error)
}

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Deps are the collaborators of the HTTP layer. Only Delays is required.
type Deps struct {
	Delays    DelayPredictor
	Encoder   *encoder.AirportEncoder
	Refresher DatasetRefresher
	Versions  VersionLister
	DB        Pinger
}

// Handler serves the flight delay API.
type Handler struct {
	deps Deps
}

func New(deps Deps) *Handler {
	return &Handler{deps: deps}
}

// Routes registers every endpoint. When limiter is non-nil the prediction endpoint is rate limited.
func (h *Handler) Routes(limiter *rate.Limiter) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", h.Root)
	mux.HandleFunc("GET /api/health", h.Health)

	var predict http.Handler = http.HandlerFunc(h.PredictDelays)
	if limiter != nil {
		predict = RateLimit(limiter, predict)
	}
	mux.Handle("GET /predict/delays", predict)

	mux.HandleFunc("GET /api/airports", h.Airports)
	mux.HandleFunc("GET /api/airports/{code}/encoding", h.AirportEncoding)

	// Admin routes for managing the dataset
	mux.HandleFunc("POST /api/admin/refresh-dataset", h.RefreshDataset)
	mux.HandleFunc("GET /api/admin/dataset-versions", h.DatasetVersions)

	return mux
}

// Helper to respond with JSON
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Printf("ERROR Handler: Marshalling JSON response: %v", err)
		http.Error(w, `{"error":"Failed to marshal JSON response"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// Helper to respond with an error
func respondWithError(w http.ResponseWriter, code int, message string) {
	log.Printf("Handler: API Error %d: %s", code, message)
	respondWithJSON(w, code, models.ErrorResponse{Error: message})
}

// respondWithServiceError maps the service error kinds onto HTTP status codes.
func respondWithServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrTimeFormat):
		respondWithError(w, http.StatusBadRequest, InvalidDateFormatMessage)
	case errors.Is(err, services.ErrFormat):
		respondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrNotFound):
		respondWithError(w, http.StatusNotFound, "No data found for the specified parameters.")
	case errors.Is(err, services.ErrSourceUnavailable):
		log.Printf("ERROR Handler: %v", err)
		respondWithError(w, http.StatusServiceUnavailable, "Flight data source is unavailable.")
	case errors.Is(err, services.ErrRefreshInProgress):
		respondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, context.Canceled):
		// Client went away; there is nobody to answer.
		log.Printf("Handler: request canceled: %v", err)
	case errors.Is(err, context.DeadlineExceeded):
		respondWithError(w, http.StatusGatewayTimeout, "Request timed out.")
	default:
		log.Printf("ERROR Handler: unexpected error: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error.")
	}
}
