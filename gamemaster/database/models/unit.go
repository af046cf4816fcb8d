package models

import (
	"github.com/uptrace/bun"
)

// Unit is a shared catalog entry. Player-owned instances snapshot its stats
// into PlayerUnit rows at acquisition time.
type Unit struct {
	bun.BaseModel `bun:"table:units,alias:un"`

	UnitID        int      `bun:"unit_id,pk,autoincrement"`
	Name          string   `bun:"name,notnull"`
	Description   string   `bun:"description,notnull,default:''"`
	BaseAttack    int      `bun:"base_attack,notnull"`
	BaseDefense   int      `bun:"base_defense,notnull"`
	BaseHealth    int      `bun:"base_health,notnull"`
	IsRecruitable bool     `bun:"is_recruitable,notnull,default:false"`
	Kind          UnitKind `bun:"kind,notnull"`
	Rarity        Rarity   `bun:"rarity,notnull"`
}
