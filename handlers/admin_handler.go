// handlers/admin_handler.go
package handlers

import (
	"net/http"

	"github.com/gewnthar/flightdelay/models"
)

// RefreshDataset handles POST /api/admin/refresh-dataset: discover, download and import the dataset.
func (h *Handler) RefreshDataset(w http.ResponseWriter, r *http.Request) {
	if h.deps.Refresher == nil || !h.deps.Refresher.Enabled() {
		respondWithError(w, http.StatusNotImplemented, "Dataset refresh is not configured.")
		return
	}

	result, err := h.deps.Refresher.Refresh(r.Context())
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

// DatasetVersions handles GET /api/admin/dataset-versions.
func (h *Handler) DatasetVersions(w http.ResponseWriter, r *http.Request) {
	if h.deps.Versions == nil {
		respondWithError(w, http.StatusNotImplemented, "Dataset version tracking requires a database.")
		return
	}

	versions, err := h.deps.Versions.GetDatasetVersions(r.Context())
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	if versions == nil { // Ensure we always return an array for JSON, even if empty
		versions = []models.DatasetVersion{}
	}
	respondWithJSON(w, http.StatusOK, versions)
}
