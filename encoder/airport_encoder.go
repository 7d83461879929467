// encoder/airport_encoder.go
package encoder

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"sort"

	"github.com/gewnthar/flightdelay/utils"
)

// AirportEncoder one-hot encodes arrival airports served from a departure airport.
// It is read-only after construction and safe for concurrent use.
type AirportEncoder struct {
	index map[string]int
}

// New builds an encoder from an airport code -> vector position mapping.
// Positions must cover exactly 0..len(mapping)-1.
func New(mapping map[string]int) (*AirportEncoder, error) {
	n := len(mapping)
	index := make(map[string]int, n)
	taken := make(map[int]string, n)
	for code, pos := range mapping {
		norm := utils.NormalizeAirportCode(code)
		if norm == "" {
			return nil, fmt.Errorf("empty airport code in encoding table")
		}
		if pos < 0 || pos >= n {
			return nil, fmt.Errorf("airport %s has index %d outside [0, %d)", code, pos, n)
		}
		if other, dup := taken[pos]; dup {
			return nil, fmt.Errorf("airports %s and %s share index %d", other, code, pos)
		}
		if _, dup := index[norm]; dup {
			return nil, fmt.Errorf("airport %s appears twice in encoding table", norm)
		}
		taken[pos] = code
		index[norm] = pos
	}
	return &AirportEncoder{index: index}, nil
}

// Load reads a JSON object such as {"LAX": 0, "SFO": 1} from r.
func Load(r io.Reader) (*AirportEncoder, error) {
	var mapping map[string]int
	if err := json.NewDecoder(r).Decode(&mapping); err != nil {
		return nil, fmt.Errorf("failed to decode airport encodings: %w", err)
	}
	return New(mapping)
}

// LoadFile reads the encoding table from path.
func LoadFile(path string) (*AirportEncoder, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open airport encodings %s: %w", path, err)
	}
	defer f.Close()

	enc, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	log.Printf("Encoder: loaded %d airport encodings from %s", enc.Len(), path)
	return enc, nil
}

// Len is the length of every encoding vector.
func (e *AirportEncoder) Len() int {
	return len(e.index)
}

// Index returns the vector position of airport.
func (e *AirportEncoder) Index(airport string) (int, bool) {
	pos, ok := e.index[utils.NormalizeAirportCode(airport)]
	return pos, ok
}

// Encode returns a vector of Len() zeros with a single 1 at the airport's position.
// It reports false for an airport that is not in the table.
func (e *AirportEncoder) Encode(airport string) ([]float64, bool) {
	pos, ok := e.Index(airport)
	if !ok {
		return nil, false
	}
	vec := make([]float64, len(e.index))
	vec[pos] = 1
	return vec, true
}

// Airports lists the known codes ordered by vector position.
func (e *AirportEncoder) Airports() []string {
	codes := make([]string, 0, len(e.index))
	for code := range e.index {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool { return e.index[codes[i]] < e.index[codes[j]] })
	return codes
}
