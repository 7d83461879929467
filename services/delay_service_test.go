package services

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gewnthar/flightdelay/models"
)

// ---------------------------------------------------------------------------
// Test Helpers
// ---------------------------------------------------------------------------

func intp(v int) *int { return &v }
func floatp(v float64) *float64 { return &v }

func row(origin, dest string, year, month, day, dep, arr int, delay float64) models.FlightRow {
	return models.FlightRow{
		Origin:      origin,
		Destination: dest,
		Year:        intp(year),
		Month:       intp(month),
		DayOfMonth:  intp(day),
		CRSDepTime:  intp(dep),
		CRSArrTime:  intp(arr),
		DepDelay:    floatp(delay),
	}
}

// jfkLax departs 10:30 and arrives 13:30 on 2023-12-10.
func jfkLax(delay float64) models.FlightRow {
	return row("JFK", "LAX", 2023, 12, 10, 1030, 1330, delay)
}

func jfkLaxQuery() models.DelayQuery {
	return models.DelayQuery{
		DepartureAirport: "JFK",
		ArrivalAirport:   "LAX",
		DepartureTime:    time.Date(2023, 12, 10, 10, 30, 0, 0, time.UTC),
		ArrivalTime:      time.Date(2023, 12, 10, 13, 30, 0, 0, time.UTC),
	}
}

type sliceSource struct {
	rows []models.FlightRow
	err  error
}

func (s *sliceSource) Name() string { return "slice" }

func (s *sliceSource) EachRow(ctx context.Context, fn func(models.FlightRow) error) error {
	for _, r := range s.rows {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(r); err != nil {
			return err
		}
	}
	return s.err
}

// ---------------------------------------------------------------------------
// FilterMatching
// ---------------------------------------------------------------------------

func TestFilterMatchingExactMatchAlwaysIncluded(t *testing.T) {
	r := jfkLax(12)
	rec, ok := r.Record()
	require.True(t, ok)

	q := models.DelayQuery{
		DepartureAirport: rec.Origin,
		ArrivalAirport:   rec.Destination,
		DepartureTime:    rec.ScheduledDeparture,
		ArrivalTime:      rec.ScheduledArrival,
	}
	for _, tol := range []int{0, 1, 60, 900, 86400} {
		got, err := FilterMatching(slices.Values([]models.FlightRow{r}), q, tol)
		require.NoError(t, err)
		assert.Equal(t, []models.FlightRecord{rec}, got, "tolerance %d", tol)
	}
}

func TestFilterMatchingBoundaryIsInclusive(t *testing.T) {
	q := jfkLaxQuery()
	q.DepartureTime = q.DepartureTime.Add(15 * time.Minute)
	q.ArrivalTime = q.ArrivalTime.Add(-15 * time.Minute)

	got, err := FilterMatching(slices.Values([]models.FlightRow{jfkLax(5)}), q, 900)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestFilterMatchingBeyondBoundaryExcluded(t *testing.T) {
	rows := []models.FlightRow{jfkLax(5)}

	depLate := jfkLaxQuery()
	depLate.DepartureTime = depLate.DepartureTime.Add(15*time.Minute + time.Second)
	got, err := FilterMatching(slices.Values(rows), depLate, 900)
	require.NoError(t, err)
	assert.Empty(t, got)

	arrEarly := jfkLaxQuery()
	arrEarly.ArrivalTime = arrEarly.ArrivalTime.Add(-15*time.Minute - time.Second)
	got, err = FilterMatching(slices.Values(rows), arrEarly, 900)
	require.NoError(t, err)
	assert.Empty(t, got)

	// One minute off with a zero window.
	q := jfkLaxQuery()
	q.DepartureTime = q.DepartureTime.Add(time.Minute)
	got, err = FilterMatching(slices.Values(rows), q, 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFilterMatchingFarFutureQueryExcluded(t *testing.T) {
	rows := []models.FlightRow{jfkLax(10), jfkLax(20)}

	for _, year := range []int{2500, 9999} {
		q := jfkLaxQuery()
		q.DepartureTime = time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
		q.ArrivalTime = time.Date(year, 1, 1, 3, 0, 0, 0, time.UTC)

		got, err := FilterMatching(slices.Values(rows), q, 900)
		require.NoError(t, err)
		assert.Empty(t, got, "year %d", year)
	}

	// Far in the past as well.
	q := jfkLaxQuery()
	q.DepartureTime = time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC)
	q.ArrivalTime = time.Date(1, 1, 1, 3, 0, 0, 0, time.UTC)
	got, err := FilterMatching(slices.Values(rows), q, 900)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFilterMatchingRouteMismatchExcludes(t *testing.T) {
	rows := []models.FlightRow{
		row("JFK", "SFO", 2023, 12, 10, 1030, 1330, 1),
		row("EWR", "LAX", 2023, 12, 10, 1030, 1330, 1),
		row("LAX", "JFK", 2023, 12, 10, 1030, 1330, 1),
	}
	got, err := FilterMatching(slices.Values(rows), jfkLaxQuery(), 86400)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFilterMatchingPreservesOrder(t *testing.T) {
	a := jfkLax(1)
	b := row("JFK", "SFO", 2023, 12, 10, 1030, 1330, 2)
	c := row("JFK", "LAX", 2023, 12, 10, 1040, 1335, 3)

	got, err := FilterMatching(slices.Values([]models.FlightRow{a, b, c}), jfkLaxQuery(), 900)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 1.0, got[0].DepartureDelayMinutes)
	assert.Equal(t, 3.0, got[1].DepartureDelayMinutes)
}

func TestFilterMatchingSkipsMalformedRows(t *testing.T) {
	missingDelay := jfkLax(0)
	missingDelay.DepDelay = nil
	missingYear := jfkLax(0)
	missingYear.Year = nil
	missingOrigin := jfkLax(0)
	missingOrigin.Origin = ""

	rows := []models.FlightRow{
		missingDelay,
		missingYear,
		missingOrigin,
		row("JFK", "LAX", 2023, 12, 10, 2400, 1330, 0),
		row("JFK", "LAX", 2023, 12, 10, 1060, 1330, 0),
		row("JFK", "LAX", 2023, 2, 30, 1030, 1330, 0),
		row("JFK", "LAX", 2023, 13, 10, 1030, 1330, 0),
		row("JFK", "LAX", 2023, 12, 10, -5, 1330, 0),
		jfkLax(7),
	}
	got, err := FilterMatching(slices.Values(rows), jfkLaxQuery(), 86400*400)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 7.0, got[0].DepartureDelayMinutes)
}

func TestFilterMatchingNegativeTolerance(t *testing.T) {
	_, err := FilterMatching(slices.Values([]models.FlightRow{jfkLax(1)}), jfkLaxQuery(), -1)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestFilterMatchingIsLazy(t *testing.T) {
	seen := 0
	rows := func(yield func(models.FlightRow) bool) {
		for i := 0; i < 3; i++ {
			seen++
			if !yield(jfkLax(float64(i))) {
				return
			}
		}
	}
	got, err := FilterMatching(rows, jfkLaxQuery(), 900)
	require.NoError(t, err)
	assert.Len(t, got, 3)
	assert.Equal(t, 3, seen)
}

// ---------------------------------------------------------------------------
// AverageDelay / PredictDelay
// ---------------------------------------------------------------------------

func TestAverageDelayMean(t *testing.T) {
	var recs []models.FlightRecord
	for _, d := range []float64{10, -5, 20} {
		rec, ok := jfkLax(d).Record()
		require.True(t, ok)
		recs = append(recs, rec)
	}
	avg, err := AverageDelay(recs)
	require.NoError(t, err)
	assert.Equal(t, 25.0/3.0, avg)
	assert.InDelta(t, 8.3333333, avg, 1e-6)
}

func TestAverageDelayEmptyIsNotFound(t *testing.T) {
	avg, err := AverageDelay(nil)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, avg)

	_, err = AverageDelay([]models.FlightRecord{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPredictDelayComposite(t *testing.T) {
	rows := []models.FlightRow{
		jfkLax(10),
		row("JFK", "LAX", 2023, 12, 10, 1045, 1345, -5), // exactly 15 min on both
		row("JFK", "LAX", 2023, 12, 10, 1046, 1330, 100), // 16 min off
		row("JFK", "LAX", 2023, 12, 11, 1030, 1330, 100), // next day
		jfkLax(20),
	}
	avg, err := PredictDelay(slices.Values(rows), jfkLaxQuery())
	require.NoError(t, err)
	assert.Equal(t, 25.0/3.0, avg)

	_, err = PredictDelay(slices.Values(rows[2:4]), jfkLaxQuery())
	assert.ErrorIs(t, err, ErrNotFound)
}

// ---------------------------------------------------------------------------
// DelayService
// ---------------------------------------------------------------------------

func TestDelayServicePredictDelay(t *testing.T) {
	src := &sliceSource{rows: []models.FlightRow{jfkLax(10), jfkLax(-5), jfkLax(20)}}
	svc, err := NewDelayService(src, DefaultToleranceSeconds)
	require.NoError(t, err)
	assert.Equal(t, "slice", svc.SourceName())

	avg, err := svc.PredictDelay(context.Background(), jfkLaxQuery())
	require.NoError(t, err)
	assert.Equal(t, 25.0/3.0, avg)
}

func TestDelayServiceNoMatch(t *testing.T) {
	svc, err := NewDelayService(&sliceSource{}, DefaultToleranceSeconds)
	require.NoError(t, err)

	_, err = svc.PredictDelay(context.Background(), jfkLaxQuery())
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrSourceUnavailable)
}

func TestDelayServiceFarFutureQueryIsNotFound(t *testing.T) {
	svc, err := NewDelayService(&sliceSource{rows: []models.FlightRow{jfkLax(10), jfkLax(20)}}, DefaultToleranceSeconds)
	require.NoError(t, err)

	q, err := NewDelayQuery("JFK", "LAX", "9999-12-31 23:59:59", "9999-12-31 23:59:59")
	require.NoError(t, err)
	_, err = svc.PredictDelay(context.Background(), q)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDelayServiceSourceUnavailable(t *testing.T) {
	src := &sliceSource{rows: []models.FlightRow{jfkLax(1)}, err: errors.New("disk on fire")}
	svc, err := NewDelayService(src, DefaultToleranceSeconds)
	require.NoError(t, err)

	_, err = svc.PredictDelay(context.Background(), jfkLaxQuery())
	assert.ErrorIs(t, err, ErrSourceUnavailable)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "disk on fire")
}

func TestDelayServiceCanceledContext(t *testing.T) {
	svc, err := NewDelayService(&sliceSource{rows: []models.FlightRow{jfkLax(1)}}, DefaultToleranceSeconds)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = svc.PredictDelay(ctx, jfkLaxQuery())
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrSourceUnavailable)
}

func TestNewDelayServiceRejectsBadArguments(t *testing.T) {
	_, err := NewDelayService(nil, 900)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = NewDelayService(&sliceSource{}, -10)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestDelayServiceConcurrentCalls(t *testing.T) {
	src := &sliceSource{rows: []models.FlightRow{jfkLax(10), jfkLax(-5), jfkLax(20)}}
	svc, err := NewDelayService(src, DefaultToleranceSeconds)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]float64, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			avg, err := svc.PredictDelay(context.Background(), jfkLaxQuery())
			assert.NoError(t, err)
			results[i] = avg
		}(i)
	}
	wg.Wait()
	for _, avg := range results {
		assert.Equal(t, 25.0/3.0, avg)
	}
}

type routeSource struct {
	sliceSource
	origin, destination string
}

func (s *routeSource) EachRouteRow(ctx context.Context, origin, destination string, fn func(models.FlightRow) error) error {
	s.origin, s.destination = origin, destination
	return s.EachRow(ctx, fn)
}

func TestDelayServiceUsesRouteSource(t *testing.T) {
	src := &routeSource{sliceSource: sliceSource{rows: []models.FlightRow{jfkLax(4)}}}
	svc, err := NewDelayService(src, DefaultToleranceSeconds)
	require.NoError(t, err)

	avg, err := svc.PredictDelay(context.Background(), jfkLaxQuery())
	require.NoError(t, err)
	assert.Equal(t, 4.0, avg)
	assert.Equal(t, "JFK", src.origin)
	assert.Equal(t, "LAX", src.destination)
}
