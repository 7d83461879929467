// services/query.go
package services

import (
	"fmt"
	"regexp"
	"time"

	"github.com/gewnthar/flightdelay/models"
	"github.com/gewnthar/flightdelay/utils"
)

// QueryTimeLayout is the only accepted textual form of a query timestamp: YYYY-MM-DD HH:MM:SS.
const QueryTimeLayout = "2006-01-02 15:04:05"

// time.Parse accepts a single-digit hour for "15", so the fixed width is checked first.
var queryTimeRegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}$`)

// ParseQueryTime parses a query timestamp as a UTC instant.
func ParseQueryTime(value string) (time.Time, error) {
	if !queryTimeRegex.MatchString(value) {
		return time.Time{}, fmt.Errorf("%w: timestamp %q does not match YYYY-MM-DD HH:MM:SS", ErrTimeFormat, value)
	}
	t, err := time.Parse(QueryTimeLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: timestamp %q: %v", ErrTimeFormat, value, err)
	}
	return t, nil
}

// NewDelayQuery validates raw request values and builds a DelayQuery.
// Airport codes are normalized (trimmed, upper-cased, US ICAO "K" prefix dropped).
func NewDelayQuery(departureAirport, arrivalAirport, departureTime, arrivalTime string) (models.DelayQuery, error) {
	dep, err := airportParam("departure_airport", departureAirport)
	if err != nil {
		return models.DelayQuery{}, err
	}
	arr, err := airportParam("arrival_airport", arrivalAirport)
	if err != nil {
		return models.DelayQuery{}, err
	}

	depTime, err := ParseQueryTime(departureTime)
	if err != nil {
		return models.DelayQuery{}, fmt.Errorf("departure_time: %w", err)
	}
	arrTime, err := ParseQueryTime(arrivalTime)
	if err != nil {
		return models.DelayQuery{}, fmt.Errorf("arrival_time: %w", err)
	}

	return models.DelayQuery{
		DepartureAirport: dep,
		ArrivalAirport:   arr,
		DepartureTime:    depTime,
		ArrivalTime:      arrTime,
	}, nil
}

func airportParam(name, value string) (string, error) {
	code := utils.NormalizeAirportCode(value)
	if code == "" {
		return "", fmt.Errorf("%w: %s is required", ErrFormat, name)
	}
	if !utils.IsAirportCode(code) {
		return "", fmt.Errorf("%w: %s %q is not an airport code", ErrFormat, name, value)
	}
	return code, nil
}
