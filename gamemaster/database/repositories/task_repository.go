package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/divijg19/Gamemaster-sub000/gamemaster/database/models"
)

type TaskRepository interface {
	GetTemplates(ctx context.Context, taskType models.TaskType) ([]*models.Task, error)
	GetRandomTemplates(ctx context.Context, taskType models.TaskType, count int) ([]*models.Task, error)
	ListAssigned(ctx context.Context, userID string, taskType models.TaskType, since time.Time) ([]*models.PlayerTask, error)
	Assign(ctx context.Context, assignment *models.PlayerTask) error
	// IncrementProgress bumps every not-completed assignment matching the
	// objective key, clamps to the goal, and marks reached goals completed.
	// One statement, so concurrent events cannot double-complete.
	IncrementProgress(ctx context.Context, userID, objectiveKey string, delta int) error
	GetAssignment(ctx context.Context, userID string, playerTaskID int64) (*models.PlayerTask, error)
}

type taskRepository struct {
	db *bun.DB
}

func NewTaskRepository(db *bun.DB) TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) GetTemplates(ctx context.Context, taskType models.TaskType) ([]*models.Task, error) {
	var tasks []*models.Task
	err := r.db.NewSelect().
		Model(&tasks).
		Where("task_type = ?", taskType).
		Order("task_id ASC").
		Scan(ctx)
	return tasks, err
}

func (r *taskRepository) GetRandomTemplates(ctx context.Context, taskType models.TaskType, count int) ([]*models.Task, error) {
	var tasks []*models.Task
	err := r.db.NewSelect().
		Model(&tasks).
		Where("task_type = ?", taskType).
		OrderExpr("RANDOM()").
		Limit(count).
		Scan(ctx)
	return tasks, err
}

func (r *taskRepository) ListAssigned(ctx context.Context, userID string, taskType models.TaskType, since time.Time) ([]*models.PlayerTask, error) {
	var assigned []*models.PlayerTask
	err := r.db.NewSelect().
		Model(&assigned).
		Relation("Task").
		Where("pt.user_id = ?", userID).
		Where("task.task_type = ?", taskType).
		Where("pt.assigned_at >= ?", since).
		Order("pt.player_task_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list assigned tasks: %w", err)
	}
	return assigned, nil
}

func (r *taskRepository) Assign(ctx context.Context, assignment *models.PlayerTask) error {
	_, err := r.db.NewInsert().
		Model(assignment).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to assign task: %w", err)
	}
	return nil
}

func (r *taskRepository) IncrementProgress(ctx context.Context, userID, objectiveKey string, delta int) error {
	_, err := r.db.NewUpdate().
		Model((*models.PlayerTask)(nil)).
		TableExpr("tasks AS tk").
		Set("progress = LEAST(pt.progress + ?, tk.objective_goal)", delta).
		Set("completed = pt.progress + ? >= tk.objective_goal", delta).
		Where("pt.task_id = tk.task_id").
		Where("pt.user_id = ?", userID).
		Where("tk.objective_key = ?", objectiveKey).
		Where("NOT pt.completed").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update task progress: %w", err)
	}
	return nil
}

func (r *taskRepository) GetAssignment(ctx context.Context, userID string, playerTaskID int64) (*models.PlayerTask, error) {
	assignment := new(models.PlayerTask)
	err := r.db.NewSelect().
		Model(assignment).
		Relation("Task").
		Where("pt.player_task_id = ? AND pt.user_id = ?", playerTaskID, userID).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("task assignment %d not found: %w", playerTaskID, err)
	}
	return assignment, nil
}
