// Package battle implements the per-encounter combat state machine. A
// session consumes a party snapshot and produces a victory or defeat
// outcome; persistence happens outside, after the session resolves.
package battle

import (
	"fmt"
	"math/rand"
	"time"
)

// Phase is the session state. PlayerSelectingItem is a sub-state of the
// player turn entered while an item pick is pending.
type Phase int

const (
	PhasePlayerTurn Phase = iota
	PhasePlayerSelectingItem
	PhaseEnemyTurn
	PhaseVictory
	PhaseDefeat
	PhaseFled
)

func (p Phase) String() string {
	switch p {
	case PhasePlayerTurn:
		return "PlayerTurn"
	case PhasePlayerSelectingItem:
		return "PlayerSelectingItem"
	case PhaseEnemyTurn:
		return "EnemyTurn"
	case PhaseVictory:
		return "Victory"
	case PhaseDefeat:
		return "Defeat"
	case PhaseFled:
		return "Fled"
	default:
		return "Unknown"
	}
}

// Unit is a combat snapshot of a party member or enemy.
type Unit struct {
	Name          string
	UnitID        int
	PlayerUnitID  int64
	CurrentHP     int
	MaxHP         int
	Attack        int
	Defense       int
	IsRecruitable bool
	IsHuman       bool
}

func (u *Unit) Alive() bool {
	return u.CurrentHP > 0
}

// Session is one running battle.
type Session struct {
	PlayerParty []*Unit
	EnemyParty  []*Unit
	Phase       Phase
	Log         []string

	// VitalityMitigated totals the damage the player party's defense
	// absorbed, reported in the victory log.
	VitalityMitigated int

	// QuestBattle disables contract drafting mid-fight.
	QuestBattle bool

	rng *rand.Rand
}

func NewSession(playerParty, enemyParty []*Unit, questBattle bool) *Session {
	return newSession(playerParty, enemyParty, questBattle, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewSeededSession fixes the RNG for reproducible resolution.
func NewSeededSession(playerParty, enemyParty []*Unit, questBattle bool, seed int64) *Session {
	return newSession(playerParty, enemyParty, questBattle, rand.New(rand.NewSource(seed)))
}

func newSession(playerParty, enemyParty []*Unit, questBattle bool, rng *rand.Rand) *Session {
	return &Session{
		PlayerParty: playerParty,
		EnemyParty:  enemyParty,
		Phase:       PhasePlayerTurn,
		QuestBattle: questBattle,
		rng:         rng,
	}
}

func (s *Session) Finished() bool {
	return s.Phase == PhaseVictory || s.Phase == PhaseDefeat || s.Phase == PhaseFled
}

func (s *Session) logf(format string, args ...any) {
	s.Log = append(s.Log, fmt.Sprintf(format, args...))
}

func alive(units []*Unit) []*Unit {
	out := make([]*Unit, 0, len(units))
	for _, u := range units {
		if u.Alive() {
			out = append(out, u)
		}
	}
	return out
}

// damage is the core exchange: at least one point always lands.
func damage(attacker, defender *Unit) (dealt, mitigated int) {
	dealt = attacker.Attack - defender.Defense
	if dealt < 1 {
		dealt = 1
	}
	mitigated = attacker.Attack - dealt
	if mitigated < 0 {
		mitigated = 0
	}
	return dealt, mitigated
}

// PlayerAttack resolves the whole player volley: every living party member
// strikes a random living enemy. Ends the battle on a wipe, otherwise hands
// the turn to the enemy.
func (s *Session) PlayerAttack() {
	if s.Phase != PhasePlayerTurn {
		return
	}

	for _, attacker := range alive(s.PlayerParty) {
		targets := alive(s.EnemyParty)
		if len(targets) == 0 {
			break
		}
		target := targets[s.rng.Intn(len(targets))]
		dealt, _ := damage(attacker, target)
		target.CurrentHP -= dealt
		if target.CurrentHP < 0 {
			target.CurrentHP = 0
		}
		s.logf("%s hits %s for %d damage.", attacker.Name, target.Name, dealt)
		if !target.Alive() {
			s.logf("%s is defeated!", target.Name)
		}
	}

	if len(alive(s.EnemyParty)) == 0 {
		s.Phase = PhaseVictory
		s.logf("Victory!")
		return
	}
	s.Phase = PhaseEnemyTurn
}

// ResolveEnemyTurn mirrors the player volley with the parties swapped.
func (s *Session) ResolveEnemyTurn() {
	if s.Phase != PhaseEnemyTurn {
		return
	}

	for _, attacker := range alive(s.EnemyParty) {
		targets := alive(s.PlayerParty)
		if len(targets) == 0 {
			break
		}
		target := targets[s.rng.Intn(len(targets))]
		dealt, mitigated := damage(attacker, target)
		target.CurrentHP -= dealt
		if target.CurrentHP < 0 {
			target.CurrentHP = 0
		}
		s.VitalityMitigated += mitigated
		s.logf("%s hits %s for %d damage.", attacker.Name, target.Name, dealt)
		if !target.Alive() {
			s.logf("%s falls!", target.Name)
		}
	}

	if len(alive(s.PlayerParty)) == 0 {
		s.Phase = PhaseDefeat
		s.logf("Your party has been defeated.")
		return
	}
	s.Phase = PhasePlayerTurn
}

// BeginItemSelection enters the item sub-state.
func (s *Session) BeginItemSelection() {
	if s.Phase == PhasePlayerTurn {
		s.Phase = PhasePlayerSelectingItem
	}
}

// CancelItemSelection returns to the player turn without consuming anything.
func (s *Session) CancelItemSelection() {
	if s.Phase == PhasePlayerSelectingItem {
		s.Phase = PhasePlayerTurn
	}
}

// HealTarget returns the first living ally missing health, or nil when the
// item would be wasted.
func (s *Session) HealTarget() *Unit {
	for _, u := range s.PlayerParty {
		if u.Alive() && u.CurrentHP < u.MaxHP {
			return u
		}
	}
	return nil
}

// ApplyHeal heals the first injured living ally and spends the turn. The
// caller has already consumed the item transactionally.
func (s *Session) ApplyHeal(itemName string, amount int) bool {
	target := s.HealTarget()
	if target == nil {
		return false
	}
	target.CurrentHP += amount
	if target.CurrentHP > target.MaxHP {
		target.CurrentHP = target.MaxHP
	}
	s.logf("%s restores %d HP to %s.", itemName, amount, target.Name)
	s.Phase = PhaseEnemyTurn
	return true
}

// FirstLivingEnemy is the recruit/contract target.
func (s *Session) FirstLivingEnemy() *Unit {
	living := alive(s.EnemyParty)
	if len(living) == 0 {
		return nil
	}
	return living[0]
}

// LivingHumanEnemy returns the first living human enemy for contract
// drafting, if any.
func (s *Session) LivingHumanEnemy() *Unit {
	for _, u := range alive(s.EnemyParty) {
		if u.IsHuman {
			return u
		}
	}
	return nil
}

// RecordOutcome appends a service-produced line (draft result, taming
// result) without advancing the turn.
func (s *Session) RecordOutcome(line string) {
	s.Log = append(s.Log, line)
}

// EndEarly terminates the session out of band (successful taming).
func (s *Session) EndEarly(message string) {
	s.logf("%s", message)
	s.Phase = PhaseVictory
}

// Flee ends the battle immediately with no rewards.
func (s *Session) Flee() {
	s.logf("You fled the battle.")
	s.Phase = PhaseFled
}
