package config

import "time"

// Party and army limits
const (
	MaxPartySize = 5
	MaxArmySize  = 10
)

// Tavern tunables
const (
	TavernBaseRotation   = 5
	TavernMaxDaily       = 25
	TavernRerollCost     = 150
	TavernMaxDailyRerolls = 3
	HireCostBase         = 250

	// Pets only appear in the tavern past this story progress.
	TavernPetStoryGate = 5
)

// FavorTiers are the fame thresholds for tiers 0..3.
var FavorTiers = [4]int{0, 50, 150, 400}

// Saga resources
const (
	TPReplenishHours = 1
	DefaultMaxAP     = 5
	DefaultMaxTP     = 5
)

// Feature flags
const (
	// EnableParchmentGating requires contract parchments when drafting
	// Rare (Forest) and Epic+ (Frontier) humans.
	EnableParchmentGating = true
)

// Taming
const (
	// TamingResearchCost is the research-item count consumed per attempt,
	// alongside one taming lure.
	TamingResearchCost = 10
)

// Cache TTLs
const (
	SagaProfileCacheTTL    = 30 * time.Second
	ContractStatusCacheTTL = 60 * time.Second
	ResearchCacheTTL       = 60 * time.Second
	EquipmentBonusCacheTTL = 60 * time.Second
	TaskBoardCacheTTL      = 30 * time.Second
	QuestBoardCacheTTL     = 30 * time.Second
	ConfigCacheTTL         = 5 * time.Minute
)

// Timeouts
const (
	DefaultTxTimeout        = 10 * time.Second
	CommandExecutionTimeout = 10 * time.Second
)

// Quest board
const (
	QuestBoardSize   = 3
	DailyTaskCount   = 2
	WeeklyTaskCount  = 1
)

// Embed colors
const (
	SuccessColor = 0x57F287
	ErrorColor   = 0xED4245
	WarningColor = 0xFEE75C
	InfoColor    = 0x5865F2
)

// Work
const (
	WorkBasePay       = 60
	WorkStreakBonus   = 10
	WorkStreakCap     = 10
	WorkCooldown      = 20 * time.Hour
	WorkJobXPPerShift = 15
)
