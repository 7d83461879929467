// services/delay_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log"
	"time"

	"github.com/gewnthar/flightdelay/models"
)

// RecordSource streams flight rows from a dataset (file, database, ...).
// Implementations must be safe for concurrent EachRow calls.
type RecordSource interface {
	Name() string
	// EachRow calls fn for every row in source order. An error returned by fn stops the scan
	// and is returned unchanged.
	EachRow(ctx context.Context, fn func(models.FlightRow) error) error
}

// RouteSource is implemented by sources that can restrict a scan to one origin/destination pair
// on their side (an indexed database query). Rows are still matched by the Matcher.
type RouteSource interface {
	EachRouteRow(ctx context.Context, origin, destination string, fn func(models.FlightRow) error) error
}

// Matcher decides whether a flight row belongs to a DelayQuery.
type Matcher struct {
	query     models.DelayQuery
	tolerance time.Duration
}

// NewMatcher returns a Matcher with the given tolerance window in seconds.
func NewMatcher(query models.DelayQuery, toleranceSeconds int) (*Matcher, error) {
	if toleranceSeconds < 0 {
		return nil, fmt.Errorf("%w: tolerance must be >= 0 seconds, got %d", ErrInvalidArgument, toleranceSeconds)
	}
	return &Matcher{query: query, tolerance: time.Duration(toleranceSeconds) * time.Second}, nil
}

// Match reports whether row is a well-formed record on the query's route whose scheduled
// departure and arrival are both within the tolerance window (inclusive).
func (m *Matcher) Match(row models.FlightRow) (models.FlightRecord, bool) {
	rec, ok := row.Record()
	if !ok {
		return models.FlightRecord{}, false
	}
	if rec.Origin != m.query.DepartureAirport || rec.Destination != m.query.ArrivalAirport {
		return models.FlightRecord{}, false
	}
	if !within(rec.ScheduledDeparture, m.query.DepartureTime, m.tolerance) {
		return models.FlightRecord{}, false
	}
	if !within(rec.ScheduledArrival, m.query.ArrivalTime, m.tolerance) {
		return models.FlightRecord{}, false
	}
	return rec, true
}

// FilterMatching returns the records from rows that match query, in input order.
// Malformed rows are skipped.
func FilterMatching(rows iter.Seq[models.FlightRow], query models.DelayQuery, toleranceSeconds int) ([]models.FlightRecord, error) {
	m, err := NewMatcher(query, toleranceSeconds)
	if err != nil {
		return nil, err
	}
	var matched []models.FlightRecord
	for row := range rows {
		if rec, ok := m.Match(row); ok {
			matched = append(matched, rec)
		}
	}
	return matched, nil
}

// AverageDelay returns the arithmetic mean departure delay in minutes.
// An empty input is ErrNotFound, never a zero mean.
func AverageDelay(records []models.FlightRecord) (float64, error) {
	var acc delayAccumulator
	for _, rec := range records {
		acc.add(rec)
	}
	return acc.mean()
}

// PredictDelay is AverageDelay over FilterMatching with the default 900 second window.
func PredictDelay(rows iter.Seq[models.FlightRow], query models.DelayQuery) (float64, error) {
	matched, err := FilterMatching(rows, query, DefaultToleranceSeconds)
	if err != nil {
		return 0, err
	}
	return AverageDelay(matched)
}

// DefaultToleranceSeconds is the 15 minute matching window.
const DefaultToleranceSeconds = 900

// DelayService answers delay predictions from a RecordSource. It holds no per-query state.
type DelayService struct {
	source           RecordSource
	toleranceSeconds int
}

// NewDelayService wires a record source with a tolerance window.
func NewDelayService(source RecordSource, toleranceSeconds int) (*DelayService, error) {
	if source == nil {
		return nil, fmt.Errorf("%w: record source is nil", ErrInvalidArgument)
	}
	if toleranceSeconds < 0 {
		return nil, fmt.Errorf("%w: tolerance must be >= 0 seconds, got %d", ErrInvalidArgument, toleranceSeconds)
	}
	return &DelayService{source: source, toleranceSeconds: toleranceSeconds}, nil
}

// SourceName returns the name of the underlying record source.
func (s *DelayService) SourceName() string {
	return s.source.Name()
}

// PredictDelay streams the record source once and returns the mean delay of matching flights.
// Rows are not retained, only a running sum and count.
func (s *DelayService) PredictDelay(ctx context.Context, query models.DelayQuery) (float64, error) {
	m, err := NewMatcher(query, s.toleranceSeconds)
	if err != nil {
		return 0, err
	}

	scan := s.source.EachRow
	if rs, ok := s.source.(RouteSource); ok {
		scan = func(ctx context.Context, fn func(models.FlightRow) error) error {
			return rs.EachRouteRow(ctx, query.DepartureAirport, query.ArrivalAirport, fn)
		}
	}

	var acc delayAccumulator
	err = scan(ctx, func(row models.FlightRow) error {
		if rec, ok := m.Match(row); ok {
			acc.add(rec)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return 0, err
		}
		log.Printf("ERROR Service: reading flight records from %s: %v", s.source.Name(), err)
		return 0, fmt.Errorf("%w: %s: %v", ErrSourceUnavailable, s.source.Name(), err)
	}

	avg, err := acc.mean()
	if err != nil {
		log.Printf("Service: no flights matched %s-%s dep %s arr %s (tolerance %ds)\n",
			query.DepartureAirport, query.ArrivalAirport,
			query.DepartureTime.Format(QueryTimeLayout), query.ArrivalTime.Format(QueryTimeLayout), s.toleranceSeconds)
		return 0, err
	}
	log.Printf("Service: %d flights matched %s-%s, average departure delay %.2f min\n",
		acc.count, query.DepartureAirport, query.ArrivalAirport, avg)
	return avg, nil
}

type delayAccumulator struct {
	sum   float64
	count int
}

func (a *delayAccumulator) add(rec models.FlightRecord) {
	a.sum += rec.DepartureDelayMinutes
	a.count++
}

func (a *delayAccumulator) mean() (float64, error) {
	if a.count == 0 {
		return 0, fmt.Errorf("%w: no data found for the specified parameters", ErrNotFound)
	}
	return a.sum / float64(a.count), nil
}

// within reports whether t lies in [ref-tol, ref+tol]. Time.Sub saturates for instants
// about 292 years apart, so the bounds are compared instead of the difference.
func within(t, ref time.Time, tol time.Duration) bool {
	return !t.Before(ref.Add(-tol)) && !t.After(ref.Add(tol))
}
