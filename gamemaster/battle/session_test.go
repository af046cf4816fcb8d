package battle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unit(name string, hp, atk, def int) *Unit {
	return &Unit{Name: name, CurrentHP: hp, MaxHP: hp, Attack: atk, Defense: def}
}

func TestDamageFloorsAtOne(t *testing.T) {
	weak := unit("weak", 10, 2, 0)
	tank := unit("tank", 10, 0, 99)

	dealt, mitigated := damage(weak, tank)
	assert.Equal(t, 1, dealt)
	assert.Equal(t, 1, mitigated)
}

func TestPlayerAttackToVictory(t *testing.T) {
	s := NewSeededSession(
		[]*Unit{unit("Knight", 30, 10, 3)},
		[]*Unit{unit("Bandit", 5, 4, 2)},
		false, 1,
	)

	s.PlayerAttack()

	assert.Equal(t, PhaseVictory, s.Phase)
	assert.True(t, s.Finished())
	require.NotEmpty(t, s.Log)
	assert.Contains(t, s.Log[len(s.Log)-1], "Victory")
}

func TestTurnAlternation(t *testing.T) {
	s := NewSeededSession(
		[]*Unit{unit("Knight", 50, 5, 2)},
		[]*Unit{unit("Ogre", 50, 5, 2)},
		false, 7,
	)

	s.PlayerAttack()
	assert.Equal(t, PhaseEnemyTurn, s.Phase)

	s.ResolveEnemyTurn()
	assert.Equal(t, PhasePlayerTurn, s.Phase)
}

func TestEnemyTurnDefeatAndMitigation(t *testing.T) {
	s := NewSeededSession(
		[]*Unit{unit("Squire", 3, 1, 4)},
		[]*Unit{unit("Ogre", 50, 10, 2)},
		false, 7,
	)
	s.Phase = PhaseEnemyTurn

	s.ResolveEnemyTurn()

	assert.Equal(t, PhaseDefeat, s.Phase)
	// Damage 10-4=6 killed the squire; 4 points were mitigated.
	assert.Equal(t, 4, s.VitalityMitigated)
}

func TestItemSelectionSubState(t *testing.T) {
	s := NewSeededSession(
		[]*Unit{unit("Knight", 30, 5, 2)},
		[]*Unit{unit("Bandit", 30, 5, 2)},
		false, 3,
	)

	s.BeginItemSelection()
	assert.Equal(t, PhasePlayerSelectingItem, s.Phase)
	s.CancelItemSelection()
	assert.Equal(t, PhasePlayerTurn, s.Phase)
}

func TestApplyHealTargetsFirstInjured(t *testing.T) {
	healthy := unit("Healthy", 30, 5, 2)
	hurt := unit("Hurt", 30, 5, 2)
	hurt.CurrentHP = 10

	s := NewSeededSession(
		[]*Unit{healthy, hurt},
		[]*Unit{unit("Bandit", 30, 5, 2)},
		false, 3,
	)

	ok := s.ApplyHeal("Health Potion", 25)
	require.True(t, ok)
	assert.Equal(t, 30, hurt.CurrentHP, "heal clamps to max HP")
	assert.Equal(t, PhaseEnemyTurn, s.Phase, "item use spends the turn")
}

func TestApplyHealNoTargetAborts(t *testing.T) {
	s := NewSeededSession(
		[]*Unit{unit("Fresh", 30, 5, 2)},
		[]*Unit{unit("Bandit", 30, 5, 2)},
		false, 3,
	)

	ok := s.ApplyHeal("Health Potion", 25)
	assert.False(t, ok)
	assert.Equal(t, PhasePlayerTurn, s.Phase, "aborted item use keeps the turn")
}

func TestFleeTerminates(t *testing.T) {
	s := NewSeededSession(
		[]*Unit{unit("Knight", 30, 5, 2)},
		[]*Unit{unit("Bandit", 30, 5, 2)},
		false, 3,
	)

	s.Flee()
	assert.Equal(t, PhaseFled, s.Phase)
	assert.True(t, s.Finished())
}

func TestLivingHumanEnemy(t *testing.T) {
	pet := unit("Wolf", 20, 4, 1)
	human := unit("Mercenary", 20, 4, 1)
	human.IsHuman = true
	dead := unit("Scout", 0, 4, 1)
	dead.IsHuman = true

	s := NewSeededSession(
		[]*Unit{unit("Knight", 30, 5, 2)},
		[]*Unit{dead, pet, human},
		false, 3,
	)

	got := s.LivingHumanEnemy()
	require.NotNil(t, got)
	assert.Equal(t, "Mercenary", got.Name)

	assert.Equal(t, "Wolf", s.FirstLivingEnemy().Name)
}
