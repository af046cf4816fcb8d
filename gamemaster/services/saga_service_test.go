package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTPGainFloorsPartialIntervals(t *testing.T) {
	cases := []struct {
		name          string
		elapsed       time.Duration
		hoursPerPoint int
		want          int
	}{
		{"two and a half hours floors to two", 2*time.Hour + 30*time.Minute, 1, 2},
		{"under one interval gains nothing", 59 * time.Minute, 1, 0},
		{"exact interval gains one", time.Hour, 1, 1},
		{"five hours at two per point", 5 * time.Hour, 2, 2},
		{"just under two intervals", 3*time.Hour + 59*time.Minute, 2, 1},
		{"zero elapsed", 0, 1, 0},
		{"negative elapsed", -time.Hour, 1, 0},
		{"zero interval config", 3 * time.Hour, 0, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tpGain(tc.elapsed, tc.hoursPerPoint))
		})
	}
}

func TestDateOfRollsOverAtUTCMidnight(t *testing.T) {
	before := time.Date(2026, 8, 28, 23, 59, 0, 0, time.UTC)
	after := time.Date(2026, 8, 29, 0, 1, 0, 0, time.UTC)

	assert.NotEqual(t, dateOf(before), dateOf(after))
	assert.Equal(t, dateOf(after), dateOf(after.Add(12*time.Hour)))

	// Local-zone instants compare on their UTC day.
	zone := time.FixedZone("UTC+10", 10*3600)
	assert.Equal(t, "2026-08-28", dateOf(time.Date(2026, 8, 29, 5, 0, 0, 0, zone)))
}
