package contract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, time.November, 3, 10, 0, 0, 0, time.UTC)

func TestParseRelativeTime(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    time.Time
		expectError bool
	}{
		{"plural months mixed case", "3 MoNtHs AgO", fixedNow.AddDate(0, -3, 0), false},
		{"singular week", "1 Week Ago", fixedNow.Add(-7 * 24 * time.Hour), false},
		{"days upper case", "10 DAYS AGO", fixedNow.Add(-10 * 24 * time.Hour), false},
		{"hours", "5 hours ago", fixedNow.Add(-5 * time.Hour), false},
		{"minutes", "45 minutes ago", fixedNow.Add(-45 * time.Minute), false},
		{"missing ago", "2 years", time.Time{}, true},
		{"bad unit", "4 decades ago", time.Time{}, true},
		{"non-numeric value", "one year ago", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRelativeTime(tt.input, fixedNow)
			if tt.expectError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParseGapThreshold(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"90", 90},
		{" 45 ", 45},
		{"7.5", 7.5},
		{"90m", 90},
		{"2h", 120},
		{"1h30m", 90},
		{"90 minutes", 90},
		{"1 minute", 1},
		{"30 min", 30},
		{"2 hours", 120},
		{"1 HOUR", 60},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseGapThreshold(tt.input)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestParseGapThresholdRejects(t *testing.T) {
	for _, input := range []string{"", "0", "-5", "0m", "-1h", "soon", "two hours", "90 days", "NaN", "inf"} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseGapThreshold(input)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidGapThreshold)
		})
	}
}

func TestParseRelativeTimeRejectsHugeValues(t *testing.T) {
	_, err := ParseRelativeTime("99999999999999999999 hours ago", time.Now())
	assert.ErrorContains(t, err, "too large")

	_, err = ParseRelativeTime("2000000 hours ago", time.Now())
	assert.Error(t, err)
}
