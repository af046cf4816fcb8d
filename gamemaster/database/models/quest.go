package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Quest is a board quest template.
type Quest struct {
	bun.BaseModel `bun:"table:quests,alias:q"`

	QuestID     int       `bun:"quest_id,pk,autoincrement"`
	Type        QuestType `bun:"quest_type,notnull"`
	Name        string    `bun:"name,notnull"`
	Description string    `bun:"description,notnull,default:''"`
	// Battle quests reference a map node; riddle quests carry an answer.
	NodeID *int    `bun:"node_id"`
	Answer *string `bun:"answer"`
}

// QuestReward is one entry of a quest's reward bundle.
type QuestReward struct {
	bun.BaseModel `bun:"table:quest_rewards,alias:qr"`

	QuestID  int     `bun:"quest_id,pk"`
	Coins    int64   `bun:"coins,notnull,default:0"`
	ItemID   *ItemID `bun:"item_id,pk"`
	Quantity int64   `bun:"quantity,notnull,default:0"`
}

// PlayerQuest tracks a quest through Offered -> Accepted -> Completed|Failed.
type PlayerQuest struct {
	bun.BaseModel `bun:"table:player_quests,alias:pq"`

	PlayerQuestID int64       `bun:"player_quest_id,pk,autoincrement"`
	UserID        string      `bun:"user_id,notnull"`
	QuestID       int         `bun:"quest_id,notnull"`
	Status        QuestStatus `bun:"status,notnull,default:'Offered'"`
	OfferedAt     time.Time   `bun:"offered_at,notnull"`
	AcceptedAt    *time.Time  `bun:"accepted_at"`
	ResolvedAt    *time.Time  `bun:"resolved_at"`

	Quest *Quest `bun:"rel:belongs-to,join:quest_id=quest_id"`
}
