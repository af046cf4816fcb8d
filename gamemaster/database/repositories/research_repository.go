package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/divijg19/Gamemaster-sub000/gamemaster/database/models"
)

type ResearchRepository interface {
	Get(ctx context.Context, userID string, unitID int) (*models.ResearchProgress, error)
	ListByUser(ctx context.Context, userID string) ([]*models.ResearchProgress, error)
}

type researchRepository struct {
	db *bun.DB
}

func NewResearchRepository(db *bun.DB) ResearchRepository {
	return &researchRepository{db: db}
}

func (r *researchRepository) Get(ctx context.Context, userID string, unitID int) (*models.ResearchProgress, error) {
	progress := new(models.ResearchProgress)
	err := r.db.NewSelect().
		Model(progress).
		Where("user_id = ? AND unit_id = ?", userID, unitID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load research progress: %w", err)
	}
	return progress, nil
}

func (r *researchRepository) ListByUser(ctx context.Context, userID string) ([]*models.ResearchProgress, error) {
	var rows []*models.ResearchProgress
	err := r.db.NewSelect().
		Model(&rows).
		Where("user_id = ?", userID).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list research progress: %w", err)
	}
	return rows, nil
}
