// database/flight_store.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/gewnthar/flightdelay/models"
)

const selectFlightColumns = `
	SELECT origin, destination, flight_year, flight_month, day_of_month,
	       crs_dep_time, crs_arr_time, dep_delay
	FROM flight_records`

// FlightStore serves flight rows from the flight_records table.
type FlightStore struct {
	db *sql.DB
}

func NewFlightStore(db *sql.DB) *FlightStore {
	return &FlightStore{db: db}
}

func (s *FlightStore) Name() string {
	return "mysql:flight_records"
}

// EachRow streams the whole table in insertion order.
func (s *FlightStore) EachRow(ctx context.Context, fn func(models.FlightRow) error) error {
	rows, err := s.db.QueryContext(ctx, selectFlightColumns+` ORDER BY id`)
	if err != nil {
		return fmt.Errorf("failed to query flight_records: %w", err)
	}
	return scanFlightRows(rows, fn)
}

// EachRouteRow streams only the rows of one origin/destination pair, using the route index.
func (s *FlightStore) EachRouteRow(ctx context.Context, origin, destination string, fn func(models.FlightRow) error) error {
	rows, err := s.db.QueryContext(ctx, selectFlightColumns+`
	WHERE origin = ? AND destination = ?
	ORDER BY id`, origin, destination)
	if err != nil {
		return fmt.Errorf("failed to query flight_records for %s-%s: %w", origin, destination, err)
	}
	return scanFlightRows(rows, fn)
}

func scanFlightRows(rows *sql.Rows, fn func(models.FlightRow) error) error {
	defer rows.Close()

	for rows.Next() {
		var r models.FlightRow
		var year, month, day, dep, arr sql.NullInt64
		var delay sql.NullFloat64
		err := rows.Scan(&r.Origin, &r.Destination, &year, &month, &day, &dep, &arr, &delay)
		if err != nil {
			log.Printf("ERROR Database: Failed to scan flight_records row: %v", err)
			continue
		}
		r.Year = intPtr(year)
		r.Month = intPtr(month)
		r.DayOfMonth = intPtr(day)
		r.CRSDepTime = intPtr(dep)
		r.CRSArrTime = intPtr(arr)
		if delay.Valid {
			r.DepDelay = &delay.Float64
		}
		if err := fn(r); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating flight_records rows: %w", err)
	}
	return nil
}

// ReplaceFlightRecords deletes every row previously loaded from sourceFile and inserts the rows
// produced by scan, in one transaction ("clear and load"). It returns the number of inserted rows.
func (s *FlightStore) ReplaceFlightRecords(ctx context.Context, sourceFile string, scan func(context.Context, func(models.FlightRow) error) error) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction for flight records: %w", err)
	}
	defer tx.Rollback()

	// Step 1: Delete existing rows for this sourceFile.
	if _, err := tx.ExecContext(ctx, "DELETE FROM flight_records WHERE source_file = ?", sourceFile); err != nil {
		return 0, fmt.Errorf("failed to delete old flight records for source %s: %w", sourceFile, err)
	}
	log.Printf("Database: Cleared existing flight records for source: %s\n", sourceFile)

	// Step 2: Insert new rows
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO flight_records (
			origin, destination, flight_year, flight_month, day_of_month,
			crs_dep_time, crs_arr_time, dep_delay, source_file
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare flight record insert statement: %w", err)
	}
	defer stmt.Close()

	var inserted int64
	err = scan(ctx, func(r models.FlightRow) error {
		_, err := stmt.ExecContext(ctx,
			r.Origin, r.Destination, nullInt(r.Year), nullInt(r.Month), nullInt(r.DayOfMonth),
			nullInt(r.CRSDepTime), nullInt(r.CRSArrTime), nullFloat(r.DepDelay), sourceFile,
		)
		if err != nil {
			log.Printf("ERROR Database: saving flight record: %+v, Error: %v", r, err)
			return fmt.Errorf("failed to insert flight record %s-%s: %w", r.Origin, r.Destination, err)
		}
		inserted++
		return nil
	})
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction for flight records: %w", err)
	}

	log.Printf("Database: Successfully saved %d flight records from source: %s\n", inserted, sourceFile)
	return inserted, nil
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

func nullFloat(p *float64) sql.NullFloat64 {
	if p == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *p, Valid: true}
}
