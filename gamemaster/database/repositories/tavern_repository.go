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

type TavernRepository interface {
	GetOrCreateFavor(ctx context.Context, userID string) (*models.TavernFavor, error)
	AddFame(ctx context.Context, userID string, delta int) error
	GetRotation(ctx context.Context, userID string) (*models.TavernRotation, error)
	UpsertRotation(ctx context.Context, userID string, rotation []int, day time.Time) error
}

type tavernRepository struct {
	db *bun.DB
}

func NewTavernRepository(db *bun.DB) TavernRepository {
	return &tavernRepository{db: db}
}

func (r *tavernRepository) GetOrCreateFavor(ctx context.Context, userID string) (*models.TavernFavor, error) {
	favor := new(models.TavernFavor)
	err := r.db.NewSelect().
		Model(favor).
		Where("user_id = ?", userID).
		Scan(ctx)
	if err == nil {
		return favor, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to load tavern favor: %w", err)
	}

	favor = &models.TavernFavor{UserID: userID}
	if _, err := r.db.NewInsert().
		Model(favor).
		On("CONFLICT (user_id) DO NOTHING").
		Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to create tavern favor: %w", err)
	}
	if err := r.db.NewSelect().Model(favor).Where("user_id = ?", userID).Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to reload tavern favor: %w", err)
	}
	return favor, nil
}

// AddFame counts successful hires toward the favor tiers.
func (r *tavernRepository) AddFame(ctx context.Context, userID string, delta int) error {
	favor := &models.TavernFavor{UserID: userID, Fame: delta}
	_, err := r.db.NewInsert().
		Model(favor).
		On("CONFLICT (user_id) DO UPDATE").
		Set("fame = tf.fame + ?", delta).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to add fame: %w", err)
	}
	return nil
}

func (r *tavernRepository) GetRotation(ctx context.Context, userID string) (*models.TavernRotation, error) {
	rotation := new(models.TavernRotation)
	err := r.db.NewSelect().
		Model(rotation).
		Where("user_id = ?", userID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load rotation: %w", err)
	}
	return rotation, nil
}

func (r *tavernRepository) UpsertRotation(ctx context.Context, userID string, ids []int, day time.Time) error {
	rotation := &models.TavernRotation{
		UserID:      userID,
		Rotation:    ids,
		Day:         day,
		GeneratedAt: time.Now(),
	}
	_, err := r.db.NewInsert().
		Model(rotation).
		On("CONFLICT (user_id) DO UPDATE").
		Set("rotation = EXCLUDED.rotation").
		Set("day = EXCLUDED.day").
		Set("generated_at = EXCLUDED.generated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert rotation: %w", err)
	}
	return nil
}
