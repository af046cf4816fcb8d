package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"log/slog"

	"github.com/uptrace/bun"

	"github.com/divijg19/Gamemaster-sub000/gamemaster/cache"
	"github.com/divijg19/Gamemaster-sub000/gamemaster/config"
	"github.com/divijg19/Gamemaster-sub000/gamemaster/database"
	"github.com/divijg19/Gamemaster-sub000/gamemaster/database/models"
	"github.com/divijg19/Gamemaster-sub000/gamemaster/database/repositories"
)

// TaskService assigns and resolves daily/weekly tasks.
type TaskService struct {
	db    *bun.DB
	tasks repositories.TaskRepository

	boardCache *cache.TTL[string, *TaskBoard]
	userCaches *cache.UserCaches
}

func NewTaskService(db *bun.DB, tasks repositories.TaskRepository, userCaches *cache.UserCaches) *TaskService {
	s := &TaskService{
		db:         db,
		tasks:      tasks,
		boardCache: cache.NewTTL[string, *TaskBoard](),
		userCaches: userCaches,
	}
	userCaches.Register(s.boardCache)
	return s
}

// TaskBoard is the user's current assignments grouped by period.
type TaskBoard struct {
	Daily  []*models.PlayerTask
	Weekly []*models.PlayerTask
}

// periodStart truncates now to the start of the task period: midnight UTC for
// dailies, the most recent Monday midnight UTC for weeklies.
func periodStart(taskType models.TaskType, now time.Time) time.Time {
	now = now.UTC()
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if taskType == models.TaskTypeDaily {
		return day
	}
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// GetOrAssignPlayerTasks returns the current board, drawing fresh random
// assignments for any period that has none yet.
func (s *TaskService) GetOrAssignPlayerTasks(ctx context.Context, userID string) (*TaskBoard, error) {
	if cached, ok := s.boardCache.GetWithTTL(userID, config.TaskBoardCacheTTL); ok {
		return cached, nil
	}

	now := time.Now().UTC()
	daily, err := s.assignForPeriod(ctx, userID, models.TaskTypeDaily, config.DailyTaskCount, now)
	if err != nil {
		return nil, err
	}
	weekly, err := s.assignForPeriod(ctx, userID, models.TaskTypeWeekly, config.WeeklyTaskCount, now)
	if err != nil {
		return nil, err
	}

	board := &TaskBoard{Daily: daily, Weekly: weekly}
	s.boardCache.Insert(userID, board)
	return board, nil
}

func (s *TaskService) assignForPeriod(ctx context.Context, userID string, taskType models.TaskType, count int, now time.Time) ([]*models.PlayerTask, error) {
	since := periodStart(taskType, now)
	assigned, err := s.tasks.ListAssigned(ctx, userID, taskType, since)
	if err != nil {
		return nil, err
	}
	if len(assigned) > 0 {
		return assigned, nil
	}

	templates, err := s.tasks.GetRandomTemplates(ctx, taskType, count)
	if err != nil {
		return nil, err
	}
	for _, tpl := range templates {
		assignment := &models.PlayerTask{
			UserID:     userID,
			TaskID:     tpl.TaskID,
			AssignedAt: now,
		}
		if err := s.tasks.Assign(ctx, assignment); err != nil {
			return nil, err
		}
	}

	// Re-read with the Task relation populated.
	assigned, err = s.tasks.ListAssigned(ctx, userID, taskType, since)
	if err != nil {
		return nil, err
	}
	slog.Debug("Assigned tasks",
		slog.String("type", "sys"),
		slog.String("user_id", userID),
		slog.String("task_type", string(taskType)),
		slog.Int("count", len(assigned)))
	return assigned, nil
}

// UpdateTaskProgress applies one progress event against every matching
// uncompleted assignment.
func (s *TaskService) UpdateTaskProgress(ctx context.Context, userID, objectiveKey string, delta int) error {
	if err := s.tasks.IncrementProgress(ctx, userID, objectiveKey, delta); err != nil {
		return err
	}
	s.boardCache.Remove(userID)
	return nil
}

// ClaimTaskReward pays out a completed, unclaimed assignment exactly once.
func (s *TaskService) ClaimTaskReward(ctx context.Context, userID string, playerTaskID int64) (*models.Task, error) {
	assignment, err := s.tasks.GetAssignment(ctx, userID, playerTaskID)
	if err != nil {
		return nil, ErrNotFound
	}
	tpl := assignment.Task
	if tpl == nil {
		return nil, ErrNotFound
	}

	err = s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if err := database.AcquireUserLock(ctx, tx, userID); err != nil {
			return err
		}

		// The conditional stamp is the claim gate: zero rows means either
		// not completed yet or already claimed.
		res, err := tx.NewUpdate().
			Model((*models.PlayerTask)(nil)).
			Set("claimed_at = ?", time.Now().UTC()).
			Where("player_task_id = ? AND user_id = ? AND completed AND claimed_at IS NULL", playerTaskID, userID).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to stamp task claim: %w", err)
		}
		if affected, _ := res.RowsAffected(); affected == 0 {
			if assignment.ClaimedAt != nil {
				return fmt.Errorf("%w: reward already claimed", ErrConflict)
			}
			return Validationf("%s isn't finished yet (%d/%d).", tpl.Name, assignment.Progress, tpl.ObjectiveGoal)
		}

		if tpl.RewardCoins > 0 {
			profile := &models.Profile{UserID: userID, Balance: tpl.RewardCoins, FishingLevel: 1, MiningLevel: 1, CodingLevel: 1}
			if _, err := tx.NewInsert().
				Model(profile).
				On("CONFLICT (user_id) DO UPDATE").
				Set("balance = p.balance + EXCLUDED.balance").
				Exec(ctx); err != nil {
				return fmt.Errorf("failed to credit task coins: %w", err)
			}
		}
		if tpl.RewardItem != nil && tpl.RewardItemQty > 0 {
			if err := repositories.AddInventory(ctx, tx, userID, *tpl.RewardItem, tpl.RewardItemQty); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.userCaches.InvalidateUser(userID)
	slog.Info("Task reward claimed",
		slog.String("type", "cmd"),
		slog.String("user_id", userID),
		slog.String("task", tpl.Name))
	return tpl, nil
}
