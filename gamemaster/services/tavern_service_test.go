package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/divijg19/Gamemaster-sub000/gamemaster/database/models"
)

func TestHireCostRoundsUpToFive(t *testing.T) {
	cases := []struct {
		rarity models.Rarity
		want   int64
	}{
		{models.RarityCommon, 250},
		{models.RarityRare, 290},
		{models.RarityEpic, 340},
		{models.RarityLegendary, 415},
		{models.RarityFabled, 690},
	}
	for _, tc := range cases {
		got := HireCost(tc.rarity)
		assert.Equal(t, tc.want, got, "rarity %s", tc.rarity)
		assert.Zero(t, got%5, "cost must be a multiple of 5")
	}
}

func TestFavorTier(t *testing.T) {
	tier, progress := favorTier(0)
	assert.Equal(t, 0, tier)
	assert.Zero(t, progress)

	tier, progress = favorTier(25)
	assert.Equal(t, 0, tier)
	assert.InDelta(t, 0.5, progress, 1e-9)

	tier, _ = favorTier(50)
	assert.Equal(t, 1, tier)

	tier, _ = favorTier(399)
	assert.Equal(t, 2, tier)

	tier, progress = favorTier(1000)
	assert.Equal(t, 3, tier)
	assert.Equal(t, 1.0, progress, "top tier reports full progress")
}

func TestVisibilityCap(t *testing.T) {
	assert.Equal(t, 5, visibilityCap(0))
	assert.Equal(t, 5, visibilityCap(2))
	assert.Equal(t, 6, visibilityCap(3))
	assert.Equal(t, 7, visibilityCap(6))
	assert.Equal(t, 7, visibilityCap(50))
}

func TestDayKeyUsesUTC(t *testing.T) {
	east := time.FixedZone("UTC+10", 10*3600)
	// 2026-03-01 05:00 +10 is 2026-02-28 19:00 UTC.
	local := time.Date(2026, 3, 1, 5, 0, 0, 0, east)
	assert.Equal(t, "2026-02-28", dayKey(local))
}

func TestSortRotationDeterministicPerUserDay(t *testing.T) {
	mk := func() []*models.Unit {
		return []*models.Unit{
			{UnitID: 1, Rarity: models.RarityCommon},
			{UnitID: 2, Rarity: models.RarityRare},
			{UnitID: 3, Rarity: models.RarityEpic},
			{UnitID: 4, Rarity: models.RarityLegendary},
			{UnitID: 5, Rarity: models.RarityCommon},
		}
	}
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

	a, b := mk(), mk()
	sortRotation(a, "user-1", now, 4)
	sortRotation(b, "user-1", now, 4)
	require.Equal(t, len(a), len(b))
	for i := range a {
		assert.Equal(t, a[i].UnitID, b[i].UnitID, "same user and day must sort identically")
	}

	// A later call on the same calendar day keeps the order.
	c := mk()
	sortRotation(c, "user-1", now.Add(7*time.Hour), 4)
	for i := range a {
		assert.Equal(t, a[i].UnitID, c[i].UnitID)
	}
}

func TestSortRotationVariesAcrossUsers(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	orders := make(map[string]bool)
	for _, user := range []string{"a", "b", "c", "d", "e", "f"} {
		units := []*models.Unit{
			{UnitID: 1, Rarity: models.RarityCommon},
			{UnitID: 2, Rarity: models.RarityCommon},
			{UnitID: 3, Rarity: models.RarityCommon},
			{UnitID: 4, Rarity: models.RarityCommon},
		}
		sortRotation(units, user, now, 0)
		key := ""
		for _, u := range units {
			key += string(rune('0' + u.UnitID))
		}
		orders[key] = true
	}
	assert.Greater(t, len(orders), 1, "different users should see different orders")
}

func TestJitterRange(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		h := rapid.Uint64().Draw(t, "h")
		j := jitter(h)
		assert.GreaterOrEqual(t, j, 0.0)
		assert.Less(t, j, 1.0)
	})
}

func TestHash64Deterministic(t *testing.T) {
	assert.Equal(t, hash64(2026, 241, 7), hash64(2026, 241, 7))
	assert.NotEqual(t, hash64(2026, 241, 7), hash64(2026, 241, 8))
	assert.NotEqual(t, hash64String("a", 1), hash64String("b", 1))
}
