// database/version_store.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/gewnthar/flightdelay/models"
)

// VersionStore records dataset refreshes in the data_source_versions table.
type VersionStore struct {
	db *sql.DB
}

func NewVersionStore(db *sql.DB) *VersionStore {
	return &VersionStore{db: db}
}

// LogDatasetVersion inserts or updates the data_source_versions row for v.SourceName.
func (s *VersionStore) LogDatasetVersion(ctx context.Context, v models.DatasetVersion) error {
	var downloadedAt sql.NullTime
	if v.DownloadedAt != nil {
		downloadedAt = sql.NullTime{Time: *v.DownloadedAt, Valid: true}
	}
	var filename, hash sql.NullString
	if v.DownloadedFilename != "" {
		filename = sql.NullString{String: v.DownloadedFilename, Valid: true}
	}
	if v.DataHash != "" {
		hash = sql.NullString{String: v.DataHash, Valid: true}
	}

	query := `
		INSERT INTO data_source_versions (
			source_name, source_file_url, last_downloaded_filename,
			last_successfully_downloaded_at, rows_imported, data_hash, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, NOW())
		ON DUPLICATE KEY UPDATE
			source_file_url = VALUES(source_file_url),
			last_downloaded_filename = VALUES(last_downloaded_filename),
			last_successfully_downloaded_at = VALUES(last_successfully_downloaded_at),
			rows_imported = VALUES(rows_imported),
			data_hash = VALUES(data_hash),
			updated_at = NOW()
	`
	_, err := s.db.ExecContext(ctx, query,
		v.SourceName, v.SourceFileURL, filename, downloadedAt, v.RowsImported, hash,
	)
	if err != nil {
		log.Printf("ERROR Database: Failed to log dataset version for '%s': %v", v.SourceName, err)
		return fmt.Errorf("failed to log dataset version for %s: %w", v.SourceName, err)
	}

	log.Printf("Database: Logged dataset version for '%s' (hash %s, %d rows imported)\n",
		v.SourceName, v.DataHash, v.RowsImported)
	return nil
}

// GetDatasetVersions returns every tracked dataset, ordered by name.
func (s *VersionStore) GetDatasetVersions(ctx context.Context) ([]models.DatasetVersion, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source_name, source_file_url, last_downloaded_filename,
		       last_successfully_downloaded_at, rows_imported, data_hash, created_at, updated_at
		FROM data_source_versions
		ORDER BY source_name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query data_source_versions: %w", err)
	}
	defer rows.Close()

	var versions []models.DatasetVersion
	for rows.Next() {
		var v models.DatasetVersion
		var downloadedAt sql.NullTime
		var filename, hash sql.NullString

		err := rows.Scan(
			&v.ID, &v.SourceName, &v.SourceFileURL, &filename,
			&downloadedAt, &v.RowsImported, &hash, &v.CreatedAt, &v.UpdatedAt,
		)
		if err != nil {
			log.Printf("ERROR Database: Failed to scan data_source_versions row: %v", err)
			continue
		}
		v.DownloadedFilename = filename.String
		v.DataHash = hash.String
		if downloadedAt.Valid {
			v.DownloadedAt = &downloadedAt.Time
		}
		versions = append(versions, v)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating data_source_versions rows: %w", err)
	}
	return versions, nil
}
