// datasource/ndjson.go
package datasource

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/gewnthar/flightdelay/models"
)

// maxLineBytes bounds a single NDJSON record.
const maxLineBytes = 1 << 20

// NDJSONSource reads flight rows from a newline-delimited JSON file, one object per line.
// The file is opened per call, so concurrent scans and file replacement are safe.
type NDJSONSource struct {
	path string
}

// NewNDJSONSource returns a source reading from path.
func NewNDJSONSource(path string) *NDJSONSource {
	return &NDJSONSource{path: path}
}

func (s *NDJSONSource) Name() string {
	return "ndjson:" + s.path
}

// EachRow streams the file line by line. Lines that are not valid JSON objects, or that are
// longer than maxLineBytes, are logged and skipped.
func (s *NDJSONSource) EachRow(ctx context.Context, fn func(models.FlightRow) error) error {
	file, err := os.Open(s.path)
	if err != nil {
		return fmt.Errorf("failed to open dataset %s: %w", s.path, err)
	}
	defer file.Close()

	reader := bufio.NewReaderSize(file, 64*1024)

	lineNo, skipped := 0, 0
	for {
		raw, tooLong, readErr := readLine(reader, maxLineBytes)
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return fmt.Errorf("failed reading dataset %s at line %d: %w", s.path, lineNo+1, readErr)
		}
		if len(raw) > 0 || tooLong {
			lineNo++
			if lineNo%1024 == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}

			line := bytes.TrimSpace(raw)
			switch {
			case tooLong:
				skipped++
			case len(line) == 0:
			default:
				var row models.FlightRow
				if err := json.Unmarshal(line, &row); err != nil {
					skipped++
					break
				}
				if err := fn(row); err != nil {
					return err
				}
			}
		}
		if readErr != nil {
			break
		}
	}

	if skipped > 0 {
		log.Printf("WARN Datasource: skipped %d unparsable lines in %s", skipped, s.path)
	}
	return ctx.Err()
}

// readLine returns the next line including its newline. Once a line grows past limit its bytes
// are discarded and tooLong is set; the reader is still advanced to the end of the line.
func readLine(r *bufio.Reader, limit int) (line []byte, tooLong bool, err error) {
	for {
		chunk, err := r.ReadSlice('\n')
		if !tooLong {
			if len(line)+len(chunk) > limit {
				tooLong = true
				line = nil
			} else {
				line = append(line, chunk...)
			}
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		return line, tooLong, err
	}
}
