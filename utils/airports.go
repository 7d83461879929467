// utils/airports.go
package utils

import (
	"regexp"
	"strings"
)

var airportCodeRegex = regexp.MustCompile(`^[A-Z0-9]{3,4}$`)

// NormalizeAirportCode converts 4-letter US ICAO codes (e.g., "KJFK") to the 3-letter codes ("JFK")
// used by the on-time dataset. Other codes are only trimmed and upper-cased.
func NormalizeAirportCode(code string) string {
	upperCode := strings.ToUpper(strings.TrimSpace(code))
	if len(upperCode) == 4 && strings.HasPrefix(upperCode, "K") {
		return upperCode[1:]
	}
	return upperCode
}

// IsAirportCode reports whether an already normalized code looks like an IATA/ICAO identifier.
func IsAirportCode(code string) bool {
	return airportCodeRegex.MatchString(code)
}
