package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemRegistryComplete(t *testing.T) {
	for id, info := range AllItems() {
		assert.Equal(t, id, info.ID)
		assert.NotEmpty(t, info.DisplayName, "item %s", id)
		assert.NotEmpty(t, info.Description, "item %s", id)
		assert.NotEmpty(t, info.Category, "item %s", id)
	}
}

func TestResearchItemsRoundTrip(t *testing.T) {
	for id, info := range AllItems() {
		if info.ResearchUnitName == "" {
			continue
		}
		got, ok := ResearchItemForUnit(info.ResearchUnitName)
		require.True(t, ok)
		assert.Equal(t, id, got)
		assert.Equal(t, CategoryResearch, info.Category)
	}
}

func TestBattleUsableItemsHeal(t *testing.T) {
	for _, id := range BattleUsableItems {
		require.True(t, IsBattleUsable(id))
		info, ok := GetItemInfo(id)
		require.True(t, ok)
		assert.Greater(t, info.HealAmount, 0)
	}
	assert.False(t, IsBattleUsable(ItemGem))
}
