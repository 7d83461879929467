// models/api_models.go
package models

// PredictDelayResponse is the JSON body returned by /predict/delays.
type PredictDelayResponse struct {
	AverageDepartureDelayMinutes float64 `json:"average_departure_delay_minutes"`
}

// MessageResponse is used by the root endpoint and admin endpoints.
type MessageResponse struct {
	Message string `json:"message"`
}

// HealthResponse is returned by /api/health.
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// AirportListResponse lists the encodable airports ordered by vector position.
type AirportListResponse struct {
	Airports []string `json:"airports"`
}

// AirportEncodingResponse carries the one-hot vector for an arrival airport.
type AirportEncodingResponse struct {
	Airport  string    `json:"airport"`
	Index    int       `json:"index"`
	Encoding []float64 `json:"encoding"`
}

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// RefreshResponse reports the outcome of POST /api/admin/refresh-dataset.
type RefreshResponse struct {
	SourceURL    string `json:"source_url"`
	Path         string `json:"path"`
	Bytes        int64  `json:"bytes"`
	SHA256       string `json:"sha256"`
	RowsImported int64  `json:"rows_imported"`
}
