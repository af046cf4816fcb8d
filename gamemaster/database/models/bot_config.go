package models

import (
	"github.com/uptrace/bun"
)

// BotConfig is a key/value row for runtime tunables.
type BotConfig struct {
	bun.BaseModel `bun:"table:bot_config,alias:bc"`

	Key   string `bun:"key,pk"`
	Value string `bun:"value,notnull"`
}

// Runtime tunable keys with their defaults.
const (
	ConfigResearchTargetCommon = "research_target_common" // default 5
	ConfigResearchTargetRare   = "research_target_rare"   // default 10
	ConfigResearchTargetEpic   = "research_target_epic"   // default 18
	ConfigResearchTargetHigh   = "research_target_high"   // default 0 (no research needed)
	ConfigStarterUnitID        = "starter_unit_id"
	ConfigVerboseContracts     = "progress_verbose_contracts" // "0"/"1"
)
