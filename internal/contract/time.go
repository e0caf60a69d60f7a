package contract

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidGapThreshold is returned when a session gap threshold is
// non-numeric, zero or negative.
var ErrInvalidGapThreshold = errors.New("invalid gap threshold")

// relativeTimeRe captures "N [units] ago", e.g. "2 years ago" or "1 week ago".
var relativeTimeRe = regexp.MustCompile(`^(\d+)\s+(year|month|week|day|hour|minute)s?\s+ago$`)

// gapThresholdRe captures "N [units]", e.g. "90 minutes" or "2 hours".
var gapThresholdRe = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*(minute|min|hour|hr)s?$`)

// maxRelativeValue keeps "N hours ago" within the range of time.Duration.
const maxRelativeValue = 1_000_000

// ParseRelativeTime converts strings like "2 years ago" into a time.Time in the past.
func ParseRelativeTime(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	matches := relativeTimeRe.FindStringSubmatch(s)
	if len(matches) == 0 {
		return time.Time{}, fmt.Errorf("invalid relative time format: %s", s)
	}

	value, err := strconv.Atoi(matches[1])
	if err != nil || value > maxRelativeValue {
		return time.Time{}, fmt.Errorf("relative time value too large: %s", matches[1])
	}
	switch matches[2] {
	case "year":
		return now.AddDate(-value, 0, 0), nil
	case "month":
		return now.AddDate(0, -value, 0), nil
	case "week":
		return now.AddDate(0, 0, -7*value), nil
	case "day":
		return now.AddDate(0, 0, -value), nil
	case "hour":
		return now.Add(time.Duration(-value) * time.Hour), nil
	default: // minute
		return now.Add(time.Duration(-value) * time.Minute), nil
	}
}

// ParseGapThreshold converts a session gap threshold into minutes.
// It accepts a bare number of minutes ("90"), a Go duration ("90m", "2h30m")
// or a human-readable form ("90 minutes", "2 hours"). Anything that does not
// resolve to a positive number of minutes wraps ErrInvalidGapThreshold.
func ParseGapThreshold(s string) (float64, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return 0, fmt.Errorf("%w: empty value", ErrInvalidGapThreshold)
	}

	minutes, err := gapMinutes(s)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(minutes) || math.IsInf(minutes, 0) || minutes <= 0 {
		return 0, fmt.Errorf("%w: %q must be greater than zero", ErrInvalidGapThreshold, s)
	}
	return minutes, nil
}

func gapMinutes(s string) (float64, error) {
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v, nil
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d.Minutes(), nil
	}
	matches := gapThresholdRe.FindStringSubmatch(s)
	if len(matches) == 0 {
		return 0, fmt.Errorf("%w: %q is not a number of minutes or a duration", ErrInvalidGapThreshold, s)
	}
	value, _ := strconv.ParseFloat(matches[1], 64)
	switch matches[2] {
	case "hour", "hr":
		return value * 60, nil
	default:
		return value, nil
	}
}
