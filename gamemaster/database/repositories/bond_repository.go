package repositories

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/divijg19/Gamemaster-sub000/gamemaster/database/models"
)

type BondRepository interface {
	// ListActiveByUser returns every equipped bond whose host belongs to the
	// user, with host and equipped units loaded.
	ListActiveByUser(ctx context.Context, userID string) ([]*models.EquippableBond, error)
	ListAllByUser(ctx context.Context, userID string) ([]*models.EquippableBond, error)
}

type bondRepository struct {
	db *bun.DB
}

func NewBondRepository(db *bun.DB) BondRepository {
	return &bondRepository{db: db}
}

func (r *bondRepository) ListActiveByUser(ctx context.Context, userID string) ([]*models.EquippableBond, error) {
	var bonds []*models.EquippableBond
	err := r.db.NewSelect().
		Model(&bonds).
		Relation("Host").
		Relation("Host.Unit").
		Relation("Equipped").
		Relation("Equipped.Unit").
		Where("eb.is_equipped").
		Where("host.user_id = ?", userID).
		Order("eb.created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load active bonds: %w", err)
	}
	return bonds, nil
}

func (r *bondRepository) ListAllByUser(ctx context.Context, userID string) ([]*models.EquippableBond, error) {
	var bonds []*models.EquippableBond
	err := r.db.NewSelect().
		Model(&bonds).
		Relation("Host").
		Relation("Equipped").
		Where("host.user_id = ?", userID).
		Order("eb.created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load bond history: %w", err)
	}
	return bonds, nil
}
