package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Profile is the coin-economy row, one per user. Balance must never go
// negative after a committed transaction.
type Profile struct {
	bun.BaseModel `bun:"table:profiles,alias:p"`

	UserID     string     `bun:"user_id,pk"`
	Balance    int64      `bun:"balance,notnull,default:0"`
	LastWork   *time.Time `bun:"last_work"`
	WorkStreak int        `bun:"work_streak,notnull,default:0"`

	// Job progression
	FishingXP    int64 `bun:"fishing_xp,notnull,default:0"`
	FishingLevel int   `bun:"fishing_level,notnull,default:1"`
	MiningXP     int64 `bun:"mining_xp,notnull,default:0"`
	MiningLevel  int   `bun:"mining_level,notnull,default:1"`
	CodingXP     int64 `bun:"coding_xp,notnull,default:0"`
	CodingLevel  int   `bun:"coding_level,notnull,default:1"`
}
