// Package leveling implements the owned-unit level-up algorithm applied when
// battle XP is credited.
package leveling

// Calculator applies XP to a unit's (level, xp) pair and accumulates the
// resulting stat gains.
type Calculator struct {
	config *Config
}

func NewCalculator(config *Config) *Calculator {
	if config == nil {
		config = NewDefaultConfig()
	}
	return &Calculator{config: config}
}

// XPForLevel is the XP required to advance out of the given level.
func (c *Calculator) XPForLevel(level int) int64 {
	return c.config.XPBase + int64(level)*c.config.XPPerLevel
}

// Result describes the outcome of a single XP application.
type Result struct {
	PlayerUnitID int64
	Name         string

	OldLevel int
	NewLevel int
	NewXP    int64

	AttackGain  int
	DefenseGain int
	HealthGain  int
}

func (r Result) LeveledUp() bool {
	return r.NewLevel > r.OldLevel
}

// Apply adds gained XP to (level, xp), consuming thresholds until the
// remainder no longer covers the next level. Gains accumulate so the caller
// can persist everything with a single UPDATE.
func (c *Calculator) Apply(level int, xp int64, gained int64) Result {
	res := Result{OldLevel: level, NewLevel: level}
	newXP := xp + gained

	for newXP >= c.XPForLevel(res.NewLevel) {
		newXP -= c.XPForLevel(res.NewLevel)
		res.NewLevel++
		res.AttackGain += c.config.AttackPerLevel
		res.DefenseGain += c.config.DefensePerLevel
		res.HealthGain += c.config.HealthPerLevel
	}

	res.NewXP = newXP
	return res
}
