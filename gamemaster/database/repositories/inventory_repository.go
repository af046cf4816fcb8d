package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/divijg19/Gamemaster-sub000/gamemaster/database/models"
)

type InventoryRepository interface {
	GetQuantity(ctx context.Context, userID string, itemID models.ItemID) (int64, error)
	ListByUser(ctx context.Context, userID string) ([]*models.InventoryEntry, error)
	Add(ctx context.Context, userID string, itemID models.ItemID, qty int64) error
}

type inventoryRepository struct {
	db *bun.DB
}

func NewInventoryRepository(db *bun.DB) InventoryRepository {
	return &inventoryRepository{db: db}
}

func (r *inventoryRepository) GetQuantity(ctx context.Context, userID string, itemID models.ItemID) (int64, error) {
	entry := new(models.InventoryEntry)
	err := r.db.NewSelect().
		Model(entry).
		Where("user_id = ? AND item_id = ?", userID, itemID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to load inventory entry: %w", err)
	}
	return entry.Quantity, nil
}

func (r *inventoryRepository) ListByUser(ctx context.Context, userID string) ([]*models.InventoryEntry, error) {
	var entries []*models.InventoryEntry
	err := r.db.NewSelect().
		Model(&entries).
		Where("user_id = ? AND quantity > 0", userID).
		Order("item_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory: %w", err)
	}
	return entries, nil
}

// Add upserts (user, item) with a quantity delta. Callers needing an atomic
// check-and-consume run inside a transaction via txops instead.
func (r *inventoryRepository) Add(ctx context.Context, userID string, itemID models.ItemID, qty int64) error {
	return AddInventory(ctx, r.db, userID, itemID, qty)
}

// AddInventory is the shared upsert used both directly and inside service
// transactions (idb may be a *bun.DB or a bun.Tx).
func AddInventory(ctx context.Context, idb bun.IDB, userID string, itemID models.ItemID, qty int64) error {
	entry := &models.InventoryEntry{UserID: userID, ItemID: itemID, Quantity: qty}
	_, err := idb.NewInsert().
		Model(entry).
		On("CONFLICT (user_id, item_id) DO UPDATE").
		Set("quantity = inv.quantity + EXCLUDED.quantity").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to add inventory: %w", err)
	}
	return nil
}

// ConsumeInventory decrements qty inside the caller's transaction after a
// FOR UPDATE check. Returns false when the user lacks the items.
func ConsumeInventory(ctx context.Context, tx bun.Tx, userID string, itemID models.ItemID, qty int64) (bool, error) {
	entry := new(models.InventoryEntry)
	err := tx.NewSelect().
		Model(entry).
		Where("user_id = ? AND item_id = ?", userID, itemID).
		For("UPDATE").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to lock inventory entry: %w", err)
	}
	if entry.Quantity < qty {
		return false, nil
	}

	_, err = tx.NewUpdate().
		Model((*models.InventoryEntry)(nil)).
		Set("quantity = quantity - ?", qty).
		Where("user_id = ? AND item_id = ?", userID, itemID).
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to consume inventory: %w", err)
	}
	return true, nil
}
