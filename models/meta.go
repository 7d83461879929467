// models/meta.go
package models

import "time"

// DatasetVersion tracks when the flight dataset was last discovered, downloaded and imported.
type DatasetVersion struct {
	ID                 int        `db:"id" json:"id"`
	SourceName         string     `db:"source_name" json:"source_name"` // e.g. "FLIGHTS_CSV"
	SourceFileURL      string     `db:"source_file_url" json:"source_file_url"`
	DownloadedFilename string     `db:"last_downloaded_filename" json:"last_downloaded_filename,omitempty"`
	DownloadedAt       *time.Time `db:"last_successfully_downloaded_at" json:"last_successfully_downloaded_at,omitempty"`
	RowsImported       int64      `db:"rows_imported" json:"rows_imported"`
	DataHash           string     `db:"data_hash" json:"data_hash,omitempty"` // sha256 of the file
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at" json:"updated_at"`
}
