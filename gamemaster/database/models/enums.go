package models

// UnitKind discriminates the two acquisition pipelines: humans are recruited
// through defeat contracts, pets through research taming.
type UnitKind string

const (
	KindHuman UnitKind = "Human"
	KindPet   UnitKind = "Pet"
)

// Rarity is an ordered tier. Ordering is a domain invariant, so comparisons
// go through Rank() rather than string comparison or declaration order.
type Rarity string

const (
	RarityCommon    Rarity = "Common"
	RarityRare      Rarity = "Rare"
	RarityEpic      Rarity = "Epic"
	RarityLegendary Rarity = "Legendary"
	RarityUnique    Rarity = "Unique"
	RarityMythical  Rarity = "Mythical"
	RarityFabled    Rarity = "Fabled"
)

var rarityRanks = map[Rarity]int{
	RarityCommon:    0,
	RarityRare:      1,
	RarityEpic:      2,
	RarityLegendary: 3,
	RarityUnique:    4,
	RarityMythical:  5,
	RarityFabled:    6,
}

// AllRarities in ascending order.
var AllRarities = []Rarity{
	RarityCommon, RarityRare, RarityEpic, RarityLegendary,
	RarityUnique, RarityMythical, RarityFabled,
}

// Rank returns the ordinal position of the rarity, Common=0 .. Fabled=6.
// Unknown rarities rank below Common so they never satisfy a gate.
func (r Rarity) Rank() int {
	if rank, ok := rarityRanks[r]; ok {
		return rank
	}
	return -1
}

func (r Rarity) Valid() bool {
	_, ok := rarityRanks[r]
	return ok
}

// DefeatsRequired is the number of recorded defeats before a human of this
// rarity can be drafted.
func (r Rarity) DefeatsRequired() int {
	switch r {
	case RarityCommon:
		return 2
	case RarityRare:
		return 3
	case RarityEpic:
		return 5
	case RarityLegendary:
		return 7
	case RarityUnique:
		return 9
	case RarityMythical:
		return 12
	case RarityFabled:
		return 15
	default:
		return 15
	}
}

// HireCostMultiplier scales the base tavern hire cost by rarity.
func (r Rarity) HireCostMultiplier() float64 {
	switch r {
	case RarityCommon:
		return 1.0
	case RarityRare:
		return 1.15
	case RarityEpic:
		return 1.35
	case RarityLegendary:
		return 1.65
	case RarityUnique:
		return 1.95
	case RarityMythical:
		return 2.25
	case RarityFabled:
		return 2.75
	default:
		return 1.0
	}
}

// TavernWeight biases the daily rotation re-sort towards higher tiers.
func (r Rarity) TavernWeight() float64 {
	switch r {
	case RarityCommon:
		return 1.0
	case RarityRare:
		return 1.1
	case RarityEpic:
		return 1.2
	case RarityLegendary:
		return 1.3
	case RarityUnique:
		return 1.4
	case RarityMythical:
		return 1.5
	case RarityFabled:
		return 1.6
	default:
		return 1.0
	}
}

// EquipBonusMultiplier is the rarity component of the equippable bond stat
// bonus formula.
func (r Rarity) EquipBonusMultiplier() float64 {
	switch r {
	case RarityCommon:
		return 0.05
	case RarityRare:
		return 0.08
	case RarityEpic:
		return 0.12
	case RarityLegendary:
		return 0.18
	case RarityUnique:
		return 0.24
	case RarityMythical:
		return 0.30
	case RarityFabled:
		return 0.40
	default:
		return 0.05
	}
}

// ResearchDropChance is the probability a defeated pet of this rarity drops
// its research item. Legendary and above never drop research items: those
// pets join the party directly instead of going through taming.
func (r Rarity) ResearchDropChance() float64 {
	switch r {
	case RarityCommon:
		return 0.55
	case RarityRare:
		return 0.45
	case RarityEpic:
		return 0.30
	default:
		return 0.0
	}
}

// PartyEligiblePet reports whether a pet of this rarity may join the party.
// Sub-Legendary pets only contribute research progress.
func (r Rarity) PartyEligiblePet() bool {
	return r.Rank() >= RarityLegendary.Rank()
}

// TrainingStat is the stat a unit trains while is_training is set.
type TrainingStat string

const (
	TrainAttack  TrainingStat = "attack"
	TrainDefense TrainingStat = "defense"
)

type TaskType string

const (
	TaskTypeDaily  TaskType = "Daily"
	TaskTypeWeekly TaskType = "Weekly"
)

type QuestType string

const (
	QuestTypeBattle QuestType = "Battle"
	QuestTypeRiddle QuestType = "Riddle"
)

// QuestStatus is the player-quest state machine:
// Offered -> Accepted -> Completed | Failed.
type QuestStatus string

const (
	QuestOffered   QuestStatus = "Offered"
	QuestAccepted  QuestStatus = "Accepted"
	QuestCompleted QuestStatus = "Completed"
	QuestFailed    QuestStatus = "Failed"
)
