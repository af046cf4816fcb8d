package models

import (
	"time"

	"github.com/uptrace/bun"
)

// TavernFavor tracks per-user tavern standing and daily reroll usage.
type TavernFavor struct {
	bun.BaseModel `bun:"table:tavern_fame,alias:tf"`

	UserID       string     `bun:"user_id,pk"`
	Fame         int        `bun:"fame,notnull,default:0"`
	DailyRerolls int        `bun:"daily_rerolls,notnull,default:0"`
	LastReroll   *time.Time `bun:"last_reroll"`
}

// TavernRotation is the per-user daily ordered list of unit ids on offer.
// Regenerated on day change, overwritten by a successful reroll.
type TavernRotation struct {
	bun.BaseModel `bun:"table:tavern_user_rotation,alias:tr"`

	UserID      string    `bun:"user_id,pk"`
	Rotation    []int     `bun:"rotation,array,notnull"`
	Day         time.Time `bun:"day,notnull,type:date"`
	GeneratedAt time.Time `bun:"generated_at,notnull"`
}
