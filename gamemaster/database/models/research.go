package models

import (
	"time"

	"github.com/uptrace/bun"
)

// ResearchProgress accumulates tame attempts per (user, pet). Sub-Legendary
// pets need a rarity-specific tamed count before they can join the party.
type ResearchProgress struct {
	bun.BaseModel `bun:"table:unit_research_progress,alias:rp"`

	UserID      string    `bun:"user_id,pk"`
	UnitID      int       `bun:"unit_id,pk"`
	TamedCount  int       `bun:"tamed_count,notnull,default:0"`
	LastUpdated time.Time `bun:"last_updated,notnull"`
}
