package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/divijg19/Gamemaster-sub000/gamemaster/database/models"
)

func TestPeriodStartDaily(t *testing.T) {
	now := time.Date(2026, 8, 29, 17, 42, 3, 0, time.UTC)
	got := periodStart(models.TaskTypeDaily, now)
	assert.Equal(t, time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC), got)
}

func TestPeriodStartWeekly(t *testing.T) {
	// 2026-08-29 is a Saturday; the week started Monday the 24th.
	saturday := time.Date(2026, 8, 29, 17, 0, 0, 0, time.UTC)
	assert.Equal(t,
		time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC),
		periodStart(models.TaskTypeWeekly, saturday))

	// A Monday is its own week start.
	monday := time.Date(2026, 8, 24, 0, 0, 1, 0, time.UTC)
	assert.Equal(t,
		time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC),
		periodStart(models.TaskTypeWeekly, monday))

	// Sunday still belongs to the week that started six days earlier.
	sunday := time.Date(2026, 8, 30, 23, 59, 0, 0, time.UTC)
	assert.Equal(t,
		time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC),
		periodStart(models.TaskTypeWeekly, sunday))
}
