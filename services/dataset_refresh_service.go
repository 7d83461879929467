// services/dataset_refresh_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gewnthar/flightdelay/config"
	"github.com/gewnthar/flightdelay/datasource"
	"github.com/gewnthar/flightdelay/models"
	"github.com/gewnthar/flightdelay/scraper"
)

// ErrRefreshInProgress is returned when a refresh is requested while another one is running.
var ErrRefreshInProgress = errors.New("dataset refresh already in progress")

const sourceFlights = "FLIGHTS"

// FlightImporter loads parsed rows into persistent storage (database.FlightStore).
type FlightImporter interface {
	ReplaceFlightRecords(ctx context.Context, sourceFile string, scan func(context.Context, func(models.FlightRow) error) error) (int64, error)
}

// VersionLogger records dataset refreshes (database.VersionStore).
type VersionLogger interface {
	LogDatasetVersion(ctx context.Context, v models.DatasetVersion) error
}

// DatasetRefresher discovers, downloads and (for the mysql format) imports the flight dataset.
type DatasetRefresher struct {
	client   *http.Client
	refresh  config.RefreshConfig
	dataset  config.DatasetConfig
	importer FlightImporter // nil unless dataset.format is mysql
	versions VersionLogger  // nil when no database is configured

	mu sync.Mutex
}

// NewDatasetRefresher wires a refresher. importer and versions may be nil.
func NewDatasetRefresher(refresh config.RefreshConfig, dataset config.DatasetConfig, importer FlightImporter, versions VersionLogger) *DatasetRefresher {
	timeout := refresh.DownloadTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &DatasetRefresher{
		client:   &http.Client{Timeout: timeout},
		refresh:  refresh,
		dataset:  dataset,
		importer: importer,
		versions: versions,
	}
}

// Enabled reports whether a dataset location is configured.
func (r *DatasetRefresher) Enabled() bool {
	return r.refresh.IndexPageURL != "" || r.refresh.DatasetURL != ""
}

// Refresh runs the full pipeline once. Concurrent calls fail fast with ErrRefreshInProgress.
func (r *DatasetRefresher) Refresh(ctx context.Context) (*models.RefreshResponse, error) {
	if !r.mu.TryLock() {
		return nil, ErrRefreshInProgress
	}
	defer r.mu.Unlock()

	if !r.Enabled() {
		return nil, fmt.Errorf("%w: neither refresh.index_page_url nor refresh.dataset_url is configured", ErrInvalidArgument)
	}
	if r.dataset.Path == "" {
		return nil, fmt.Errorf("%w: dataset.path is not configured", ErrInvalidArgument)
	}

	// Step 1: Work out which file to download. Only files the configured format can read qualify.
	extensions := r.dataset.FileExtensions()
	sourceURL := r.refresh.DatasetURL
	if r.refresh.IndexPageURL != "" {
		link, err := scraper.FindDatasetLink(ctx, r.client, r.refresh.IndexPageURL, r.refresh.LinkSelector, extensions)
		if err != nil {
			return nil, fmt.Errorf("failed to discover dataset link: %w", err)
		}
		sourceURL = link
	}
	if !scraper.HasDatasetExtension(sourceURL, extensions) {
		return nil, fmt.Errorf("%w: %s is not a %s dataset (want %s)",
			ErrInvalidArgument, sourceURL, r.dataset.Format, strings.Join(extensions, ", "))
	}

	// Step 2: Download into place.
	dl, err := scraper.DownloadFile(ctx, r.client, sourceURL, r.dataset.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to download dataset: %w", err)
	}

	result := &models.RefreshResponse{
		SourceURL: sourceURL,
		Path:      dl.Path,
		Bytes:     dl.Bytes,
		SHA256:    dl.SHA256,
	}

	// Step 3: Import into the database when it is the record source.
	if r.dataset.Format == config.FormatMySQL && r.importer != nil {
		scan := fileScanner(sourceURL, dl.Path)
		n, err := r.importer.ReplaceFlightRecords(ctx, filepath.Base(dl.Path), scan)
		if err != nil {
			return nil, fmt.Errorf("failed to import dataset into database: %w", err)
		}
		result.RowsImported = n
	}

	// Step 4: Record the version.
	if r.versions != nil {
		now := time.Now().UTC()
		err := r.versions.LogDatasetVersion(ctx, models.DatasetVersion{
			SourceName:         sourceFlights,
			SourceFileURL:      sourceURL,
			DownloadedFilename: filepath.Base(dl.Path),
			DownloadedAt:       &now,
			RowsImported:       result.RowsImported,
			DataHash:           dl.SHA256,
		})
		if err != nil {
			// The dataset itself is already in place.
			log.Printf("WARN Service: dataset refreshed but version not logged: %v", err)
		}
	}

	log.Printf("Service: Dataset refresh complete from %s (%d bytes, %d rows imported)\n",
		sourceURL, result.Bytes, result.RowsImported)
	return result, nil
}

// fileScanner picks the row decoder from the extension of the URL the file was downloaded from,
// since the local path may carry any name.
func fileScanner(sourceURL, path string) func(context.Context, func(models.FlightRow) error) error {
	if scraper.HasDatasetExtension(sourceURL, []string{".csv"}) {
		return datasource.NewCSVSource(path).EachRow
	}
	return datasource.NewNDJSONSource(path).EachRow
}
