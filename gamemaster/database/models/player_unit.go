package models

import (
	"time"

	"github.com/uptrace/bun"
)

// PlayerUnit is an owned unit instance. Stats diverge from the master after
// training and leveling. Invariant: IsTraining is true iff TrainingStat and
// TrainingEndsAt are both set.
type PlayerUnit struct {
	bun.BaseModel `bun:"table:player_units,alias:pu"`

	PlayerUnitID   int64         `bun:"player_unit_id,pk,autoincrement"`
	UserID         string        `bun:"user_id,notnull"`
	UnitID         int           `bun:"unit_id,notnull"`
	Nickname       string        `bun:"nickname,notnull"`
	CurrentLevel   int           `bun:"current_level,notnull,default:1"`
	CurrentXP      int64         `bun:"current_xp,notnull,default:0"`
	CurrentAttack  int           `bun:"current_attack,notnull"`
	CurrentDefense int           `bun:"current_defense,notnull"`
	CurrentHealth  int           `bun:"current_health,notnull"`
	IsInParty      bool          `bun:"is_in_party,notnull,default:false"`
	IsTraining     bool          `bun:"is_training,notnull,default:false"`
	TrainingStat   *TrainingStat `bun:"training_stat"`
	TrainingEndsAt *time.Time    `bun:"training_ends_at"`
	Rarity         Rarity        `bun:"rarity,notnull"`

	Unit *Unit `bun:"rel:belongs-to,join:unit_id=unit_id"`
}

// NewPlayerUnit snapshots a master into a fresh owned instance.
func NewPlayerUnit(userID string, master *Unit, inParty bool) *PlayerUnit {
	return &PlayerUnit{
		UserID:         userID,
		UnitID:         master.UnitID,
		Nickname:       master.Name,
		CurrentLevel:   1,
		CurrentXP:      0,
		CurrentAttack:  master.BaseAttack,
		CurrentDefense: master.BaseDefense,
		CurrentHealth:  master.BaseHealth,
		IsInParty:      inParty,
		Rarity:         master.Rarity,
	}
}
