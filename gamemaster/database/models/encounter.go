package models

import (
	"time"

	"github.com/uptrace/bun"
)

// HumanEncounter counts battle defeats of a human unit per user. Defeats
// gate contract drafting.
type HumanEncounter struct {
	bun.BaseModel `bun:"table:human_encounters,alias:he"`

	UserID         string    `bun:"user_id,pk"`
	UnitID         int       `bun:"unit_id,pk"`
	Defeats        int       `bun:"defeats,notnull,default:0"`
	LastDefeatedAt time.Time `bun:"last_defeated_at,notnull"`
}

// DraftedContract is an unconsumed intent to recruit a human. At most one
// non-consumed row per (user, unit).
type DraftedContract struct {
	bun.BaseModel `bun:"table:drafted_human_contracts,alias:dc"`

	UserID    string    `bun:"user_id,pk"`
	UnitID    int       `bun:"unit_id,pk"`
	DraftedAt time.Time `bun:"drafted_at,notnull"`
	Consumed  bool      `bun:"consumed,notnull,default:false"`
}
