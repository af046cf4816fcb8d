package leveling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestXPForLevel(t *testing.T) {
	c := NewCalculator(nil)
	assert.Equal(t, int64(125), c.XPForLevel(1))
	assert.Equal(t, int64(150), c.XPForLevel(2))
	assert.Equal(t, int64(350), c.XPForLevel(10))
}

func TestApplySingleLevelUp(t *testing.T) {
	// A level 1 unit holding 80 XP gains 50: threshold 125, remainder 5.
	c := NewCalculator(nil)
	res := c.Apply(1, 80, 50)

	require.True(t, res.LeveledUp())
	assert.Equal(t, 2, res.NewLevel)
	assert.Equal(t, int64(5), res.NewXP)
	assert.Equal(t, 2, res.AttackGain)
	assert.Equal(t, 1, res.DefenseGain)
	assert.Equal(t, 10, res.HealthGain)
}

func TestApplyNoLevelUp(t *testing.T) {
	c := NewCalculator(nil)
	res := c.Apply(3, 10, 40)

	assert.False(t, res.LeveledUp())
	assert.Equal(t, 3, res.NewLevel)
	assert.Equal(t, int64(50), res.NewXP)
	assert.Zero(t, res.AttackGain)
}

func TestApplyMultiLevelUp(t *testing.T) {
	// 125 + 150 = 275 clears two levels from scratch.
	c := NewCalculator(nil)
	res := c.Apply(1, 0, 300)

	assert.Equal(t, 3, res.NewLevel)
	assert.Equal(t, int64(25), res.NewXP)
	assert.Equal(t, 4, res.AttackGain)
	assert.Equal(t, 2, res.DefenseGain)
	assert.Equal(t, 20, res.HealthGain)
}

func TestApplyProperties(t *testing.T) {
	c := NewCalculator(nil)
	rapid.Check(t, func(t *rapid.T) {
		level := rapid.IntRange(1, 50).Draw(t, "level")
		xp := rapid.Int64Range(0, c.XPForLevel(level)-1).Draw(t, "xp")
		gained := rapid.Int64Range(0, 100_000).Draw(t, "gained")

		res := c.Apply(level, xp, gained)

		// Level never regresses, XP remainder stays in range.
		require.GreaterOrEqual(t, res.NewLevel, level)
		require.GreaterOrEqual(t, res.NewXP, int64(0))
		require.Less(t, res.NewXP, c.XPForLevel(res.NewLevel))

		// Gains scale exactly with levels gained.
		gainedLevels := res.NewLevel - res.OldLevel
		require.Equal(t, 2*gainedLevels, res.AttackGain)
		require.Equal(t, gainedLevels, res.DefenseGain)
		require.Equal(t, 10*gainedLevels, res.HealthGain)
	})
}
