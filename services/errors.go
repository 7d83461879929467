// services/errors.go
package services

import (
	"errors"
	"fmt"
)

// Error kinds returned by the delay aggregator. Callers classify with errors.Is;
// the HTTP layer maps each kind to a status code.
var (
	// ErrFormat means a query value could not be parsed (client input error).
	ErrFormat = errors.New("invalid format")
	// ErrNotFound means no flight record matched the query.
	ErrNotFound = errors.New("no matching flights")
	// ErrSourceUnavailable means the flight record source could not be read.
	ErrSourceUnavailable = errors.New("flight record source unavailable")
	// ErrInvalidArgument is a programming error in an internal call.
	ErrInvalidArgument = errors.New("invalid argument")
)

// ErrTimeFormat is the ErrFormat raised for a query timestamp that is not YYYY-MM-DD HH:MM:SS.
var ErrTimeFormat = fmt.Errorf("%w: invalid date format", ErrFormat)
