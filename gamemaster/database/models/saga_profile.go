package models

import (
	"time"

	"github.com/uptrace/bun"
)

// SagaProfile holds the per-user saga resources. Created lazily on first
// read. StoryProgress is monotone non-decreasing for the lifetime of the row.
type SagaProfile struct {
	bun.BaseModel `bun:"table:player_saga_profile,alias:sp"`

	UserID        string    `bun:"user_id,pk"`
	CurrentAP     int       `bun:"current_ap,notnull,default:5"`
	MaxAP         int       `bun:"max_ap,notnull,default:5"`
	CurrentTP     int       `bun:"current_tp,notnull,default:5"`
	MaxTP         int       `bun:"max_tp,notnull,default:5"`
	LastTPUpdate  time.Time `bun:"last_tp_update,notnull"`
	StoryProgress int       `bun:"story_progress,notnull,default:0"`
}
