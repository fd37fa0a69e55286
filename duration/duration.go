// Package duration parses the human-readable TTL grammar used throughout
// the configuration surface: bare seconds ("900"), or a count plus a unit
// suffix ("15m", "7d"). Malformed input never fails; it degrades to the
// caller's default so a bad environment variable cannot block startup.
package duration

import (
	"regexp"
	"strconv"
	"strings"
)

// DefaultSeconds is the fallback TTL: 7 days.
const DefaultSeconds int64 = 7 * 24 * 3600

var (
	allDigits = regexp.MustCompile(`^\d+$`)
	unitForm  = regexp.MustCompile(`^(\d+)([smhd])$`)
)

// Parse converts a TTL string to seconds, falling back to [DefaultSeconds].
func Parse(v string) int64 {
	return ParseDefault(v, DefaultSeconds)
}

// ParseDefault converts a TTL string to seconds.
//
// Rules, in order: empty input returns def; an all-digit string is already
// seconds; "N" + one of s/m/h/d multiplies by the unit; anything else
// (including malformed unit suffixes) returns def. ParseDefault never
// returns an error.
func ParseDefault(v string, def int64) int64 {
	s := strings.TrimSpace(v)
	if s == "" {
		return def
	}

	if allDigits.MatchString(s) {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return def
		}
		return n
	}

	m := unitForm.FindStringSubmatch(s)
	if m == nil {
		return def
	}

	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return def
	}
	switch m[2] {
	case "s":
		return n
	case "m":
		return n * 60
	case "h":
		return n * 3600
	case "d":
		return n * 24 * 3600
	}
	return def
}
