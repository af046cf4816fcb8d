package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/divijg19/Gamemaster-sub000/gamemaster/database/models"
)

type ContractRepository interface {
	GetEncounter(ctx context.Context, userID string, unitID int) (*models.HumanEncounter, error)
	ListEncounters(ctx context.Context, userID string) ([]*models.HumanEncounter, error)
	RecordDefeat(ctx context.Context, userID string, unitID int, at time.Time) error
	GetActiveDraft(ctx context.Context, userID string, unitID int) (*models.DraftedContract, error)
	ListActiveDrafts(ctx context.Context, userID string) ([]*models.DraftedContract, error)
}

type contractRepository struct {
	db *bun.DB
}

func NewContractRepository(db *bun.DB) ContractRepository {
	return &contractRepository{db: db}
}

func (r *contractRepository) GetEncounter(ctx context.Context, userID string, unitID int) (*models.HumanEncounter, error) {
	enc := new(models.HumanEncounter)
	err := r.db.NewSelect().
		Model(enc).
		Where("user_id = ? AND unit_id = ?", userID, unitID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load encounter: %w", err)
	}
	return enc, nil
}

func (r *contractRepository) ListEncounters(ctx context.Context, userID string) ([]*models.HumanEncounter, error) {
	var encounters []*models.HumanEncounter
	err := r.db.NewSelect().
		Model(&encounters).
		Where("user_id = ?", userID).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list encounters: %w", err)
	}
	return encounters, nil
}

// RecordDefeat upserts the (user, unit) encounter row, incrementing defeats.
func (r *contractRepository) RecordDefeat(ctx context.Context, userID string, unitID int, at time.Time) error {
	enc := &models.HumanEncounter{
		UserID:         userID,
		UnitID:         unitID,
		Defeats:        1,
		LastDefeatedAt: at,
	}
	_, err := r.db.NewInsert().
		Model(enc).
		On("CONFLICT (user_id, unit_id) DO UPDATE").
		Set("defeats = he.defeats + 1").
		Set("last_defeated_at = EXCLUDED.last_defeated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to record defeat: %w", err)
	}
	return nil
}

func (r *contractRepository) GetActiveDraft(ctx context.Context, userID string, unitID int) (*models.DraftedContract, error) {
	draft := new(models.DraftedContract)
	err := r.db.NewSelect().
		Model(draft).
		Where("user_id = ? AND unit_id = ? AND NOT consumed", userID, unitID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load draft: %w", err)
	}
	return draft, nil
}

func (r *contractRepository) ListActiveDrafts(ctx context.Context, userID string) ([]*models.DraftedContract, error) {
	var drafts []*models.DraftedContract
	err := r.db.NewSelect().
		Model(&drafts).
		Where("user_id = ? AND NOT consumed", userID).
		Order("drafted_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list drafts: %w", err)
	}
	return drafts, nil
}
