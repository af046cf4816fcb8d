package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/divijg19/Gamemaster-sub000/gamemaster/database/models"
)

func TestComputeEquipmentBonusKnownValues(t *testing.T) {
	// Common level 1: factor = 0.05 + 1.0/10 = 0.15.
	bonus := ComputeEquipmentBonus(10, 10, 100, 1, models.RarityCommon)
	assert.Equal(t, 2, bonus.Attack)  // ceil(1.5)
	assert.Equal(t, 2, bonus.Defense) // ceil(1.2)
	assert.Equal(t, 18, bonus.Health) // ceil(18.0)

	// Legendary level 4: factor = 0.18 + 2.0/10 = 0.38.
	bonus = ComputeEquipmentBonus(20, 15, 120, 4, models.RarityLegendary)
	assert.Equal(t, 8, bonus.Attack)  // ceil(7.6)
	assert.Equal(t, 5, bonus.Defense) // ceil(4.56)
	assert.Equal(t, 55, bonus.Health) // ceil(54.72)
}

func TestComputeEquipmentBonusMonotoneInLevel(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		atk := rapid.IntRange(1, 500).Draw(t, "atk")
		def := rapid.IntRange(1, 500).Draw(t, "def")
		hp := rapid.IntRange(1, 5000).Draw(t, "hp")
		level := rapid.IntRange(1, 99).Draw(t, "level")

		lo := ComputeEquipmentBonus(atk, def, hp, level, models.RarityCommon)
		hi := ComputeEquipmentBonus(atk, def, hp, level+1, models.RarityCommon)

		assert.GreaterOrEqual(t, hi.Attack, lo.Attack)
		assert.GreaterOrEqual(t, hi.Defense, lo.Defense)
		assert.GreaterOrEqual(t, hi.Health, lo.Health)
		assert.Positive(t, lo.Attack, "a live pet always contributes something")
	})
}

func TestComputeEquipmentBonusRarityOrdering(t *testing.T) {
	common := ComputeEquipmentBonus(50, 50, 500, 10, models.RarityCommon)
	fabled := ComputeEquipmentBonus(50, 50, 500, 10, models.RarityFabled)
	assert.Greater(t, fabled.Attack, common.Attack)
	assert.Greater(t, fabled.Health, common.Health)
}
