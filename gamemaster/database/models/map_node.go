package models

import (
	"github.com/uptrace/bun"
)

// MapNode is a story-map location with a scripted encounter. Completing it
// advances story progress to its id.
type MapNode struct {
	bun.BaseModel `bun:"table:map_nodes,alias:mn"`

	NodeID               int    `bun:"node_id,pk"`
	AreaID               int    `bun:"area_id,notnull"`
	Name                 string `bun:"name,notnull"`
	StoryProgressRequired int   `bun:"story_progress_required,notnull,default:0"`
	RewardCoins          int64  `bun:"reward_coins,notnull,default:0"`
	RewardUnitXP         int64  `bun:"reward_unit_xp,notnull,default:0"`
}

// NodeEnemy joins a node to its encounter units.
type NodeEnemy struct {
	bun.BaseModel `bun:"table:node_enemies,alias:ne"`

	NodeID int `bun:"node_id,pk"`
	UnitID int `bun:"unit_id,pk"`

	Unit *Unit `bun:"rel:belongs-to,join:unit_id=unit_id"`
}

// NodeReward is one loot-table row for a node.
type NodeReward struct {
	bun.BaseModel `bun:"table:node_rewards,alias:nr"`

	NodeID     int     `bun:"node_id,pk"`
	ItemID     ItemID  `bun:"item_id,pk"`
	Quantity   int64   `bun:"quantity,notnull,default:1"`
	DropChance float64 `bun:"drop_chance,notnull"`
}
