package leveling

// Config holds the level-up tuning knobs.
type Config struct {
	// XP needed to leave level L is XPBase + L*XPPerLevel.
	XPBase     int64
	XPPerLevel int64

	// Stat gains applied once per level gained.
	AttackPerLevel  int
	DefensePerLevel int
	HealthPerLevel  int
}

func NewDefaultConfig() *Config {
	return &Config{
		XPBase:          100,
		XPPerLevel:      25,
		AttackPerLevel:  2,
		DefensePerLevel: 1,
		HealthPerLevel:  10,
	}
}
