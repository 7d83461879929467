// datasource/csv.go
package datasource

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/gewnthar/flightdelay/models"
	"github.com/jszwec/csvutil"
)

// CSVSource reads flight rows from an on-time performance CSV export.
// Header names must match the FlightRow csv tags (ORIGIN, DEST, YEAR, ...); extra columns are ignored.
type CSVSource struct {
	path string
}

// NewCSVSource returns a source reading from path.
func NewCSVSource(path string) *CSVSource {
	return &CSVSource{path: path}
}

func (s *CSVSource) Name() string {
	return "csv:" + s.path
}

// EachRow opens the file and streams it through DecodeCSV.
func (s *CSVSource) EachRow(ctx context.Context, fn func(models.FlightRow) error) error {
	file, err := os.Open(s.path)
	if err != nil {
		return fmt.Errorf("failed to open dataset %s: %w", s.path, err)
	}
	defer file.Close()

	if err := DecodeCSV(ctx, file, fn); err != nil {
		return fmt.Errorf("dataset %s: %w", s.path, err)
	}
	return nil
}

// DecodeCSV decodes flight rows from reader one at a time.
// Rows whose cells do not convert to the field types are skipped, like any other malformed row.
func DecodeCSV(ctx context.Context, reader io.Reader, fn func(models.FlightRow) error) error {
	// csvutil assumes the first line is a header and maps columns by the `csv:"..."` tags.
	decoder, err := csvutil.NewDecoder(csv.NewReader(reader))
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil // empty file, no header
		}
		return fmt.Errorf("failed to create CSV decoder for flights: %w", err)
	}

	rowNo, skipped := 0, 0
	for {
		rowNo++
		if rowNo%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		var row models.FlightRow
		err := decoder.Decode(&row)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var typeErr *csvutil.UnmarshalTypeError
			if errors.As(err, &typeErr) || errors.Is(err, csv.ErrFieldCount) {
				skipped++
				continue
			}
			return fmt.Errorf("failed to decode flight CSV at row %d: %w", rowNo, err)
		}
		if err := fn(row); err != nil {
			return err
		}
	}

	if skipped > 0 {
		log.Printf("WARN Datasource: skipped %d CSV rows with unparsable cells", skipped)
	}
	return ctx.Err()
}
