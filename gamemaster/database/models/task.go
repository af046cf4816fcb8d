package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Task is a daily/weekly objective template. ObjectiveKey is a string
// discriminator matched by progress events, e.g. "WinBattle" or
// "WinBattle:3" for a specific node.
type Task struct {
	bun.BaseModel `bun:"table:tasks,alias:tk"`

	TaskID       int      `bun:"task_id,pk,autoincrement"`
	Type         TaskType `bun:"task_type,notnull"`
	Name         string   `bun:"name,notnull"`
	ObjectiveKey string   `bun:"objective_key,notnull"`
	ObjectiveGoal int     `bun:"objective_goal,notnull"`
	RewardCoins  int64    `bun:"reward_coins,notnull,default:0"`
	RewardItem   *ItemID  `bun:"reward_item"`
	RewardItemQty int64   `bun:"reward_item_qty,notnull,default:0"`
}

// PlayerTask is a per-user assignment of a Task for the current period.
type PlayerTask struct {
	bun.BaseModel `bun:"table:player_tasks,alias:pt"`

	PlayerTaskID int64      `bun:"player_task_id,pk,autoincrement"`
	UserID       string     `bun:"user_id,notnull"`
	TaskID       int        `bun:"task_id,notnull"`
	AssignedAt   time.Time  `bun:"assigned_at,notnull"`
	Progress     int        `bun:"progress,notnull,default:0"`
	Completed    bool       `bun:"completed,notnull,default:false"`
	ClaimedAt    *time.Time `bun:"claimed_at"`

	Task *Task `bun:"rel:belongs-to,join:task_id=task_id"`
}
