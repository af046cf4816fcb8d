package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/divijg19/Gamemaster-sub000/gamemaster/database/models"
)

func TestParchmentFor(t *testing.T) {
	_, needed := parchmentFor(models.RarityCommon)
	assert.False(t, needed, "commons draft without parchment")

	item, needed := parchmentFor(models.RarityRare)
	assert.True(t, needed)
	assert.Equal(t, models.ItemForestParchment, item)

	for _, rarity := range []models.Rarity{
		models.RarityEpic, models.RarityLegendary,
		models.RarityUnique, models.RarityMythical, models.RarityFabled,
	} {
		item, needed := parchmentFor(rarity)
		assert.True(t, needed)
		assert.Equal(t, models.ItemFrontierParchment, item, "rarity %s", rarity)
	}
}

func TestDefeatThresholdsAscendWithRarity(t *testing.T) {
	prev := 0
	for _, rarity := range models.AllRarities {
		required := rarity.DefeatsRequired()
		assert.Greater(t, required, prev, "rarity %s", rarity)
		prev = required
	}
}
