// models/flight.go
package models

import (
	"strings"
	"time"
)

// FlightRow is one flight leg as it appears in the on-time performance dataset
// (one NDJSON line, one CSV row or one flight_records table row).
// Every field is optional on the wire; use Record to obtain a well-formed FlightRecord.
type FlightRow struct {
	Origin      string   `json:"ORIGIN" csv:"ORIGIN" db:"origin"`
	Destination string   `json:"DEST" csv:"DEST" db:"destination"`
	Year        *int     `json:"YEAR" csv:"YEAR" db:"flight_year"`
	Month       *int     `json:"MONTH" csv:"MONTH" db:"flight_month"`
	DayOfMonth  *int     `json:"DAY_OF_MONTH" csv:"DAY_OF_MONTH" db:"day_of_month"`
	CRSDepTime  *int     `json:"CRS_DEP_TIME" csv:"CRS_DEP_TIME" db:"crs_dep_time"` // HHMM
	CRSArrTime  *int     `json:"CRS_ARR_TIME" csv:"CRS_ARR_TIME" db:"crs_arr_time"` // HHMM
	DepDelay    *float64 `json:"DEP_DELAY" csv:"DEP_DELAY" db:"dep_delay"`          // minutes, negative when early
}

// FlightRecord is a well-formed scheduled flight leg.
type FlightRecord struct {
	Origin                string
	Destination           string
	ScheduledDeparture    time.Time
	ScheduledArrival      time.Time
	DepartureDelayMinutes float64
}

// DelayQuery is the per-request lookup key for a delay prediction.
type DelayQuery struct {
	DepartureAirport string
	ArrivalAirport   string
	DepartureTime    time.Time
	ArrivalTime      time.Time
}

// Record converts the row into a FlightRecord. The second return value is false
// when a field is missing or the date/time components are out of range.
func (r FlightRow) Record() (FlightRecord, bool) {
	origin := strings.TrimSpace(r.Origin)
	dest := strings.TrimSpace(r.Destination)
	if origin == "" || dest == "" {
		return FlightRecord{}, false
	}
	if r.Year == nil || r.Month == nil || r.DayOfMonth == nil ||
		r.CRSDepTime == nil || r.CRSArrTime == nil || r.DepDelay == nil {
		return FlightRecord{}, false
	}

	dep, ok := ScheduledInstant(*r.Year, *r.Month, *r.DayOfMonth, *r.CRSDepTime)
	if !ok {
		return FlightRecord{}, false
	}
	arr, ok := ScheduledInstant(*r.Year, *r.Month, *r.DayOfMonth, *r.CRSArrTime)
	if !ok {
		return FlightRecord{}, false
	}

	return FlightRecord{
		Origin:                origin,
		Destination:           dest,
		ScheduledDeparture:    dep,
		ScheduledArrival:      arr,
		DepartureDelayMinutes: *r.DepDelay,
	}, true
}

// ScheduledInstant composes a calendar date and an HHMM-encoded time of day into a UTC instant.
// It reports false for anything that is not a real calendar date and time (hour 24, minute 60, Feb 30).
func ScheduledInstant(year, month, day, hhmm int) (time.Time, bool) {
	if hhmm < 0 {
		return time.Time{}, false
	}
	hour, minute := hhmm/100, hhmm%100
	if hour > 23 || minute > 59 {
		return time.Time{}, false
	}
	if year < 1 || year > 9999 || month < 1 || month > 12 || day < 1 {
		return time.Time{}, false
	}

	t := time.Date(year, time.Month(month), day, hour, minute, 0, 0, time.UTC)
	// time.Date normalizes overflow, so a changed day means the date did not exist.
	if t.Day() != day || t.Month() != time.Month(month) {
		return time.Time{}, false
	}
	return t, true
}
