package database

import (
	"context"
	"fmt"
	"time"

	"log/slog"

	"github.com/divijg19/Gamemaster-sub000/gamemaster/database/models"
)

// InitializeSchema creates all required tables and indexes. Idempotent:
// everything runs with IF NOT EXISTS so restarts are cheap.
func (db *DB) InitializeSchema(ctx context.Context) error {
	start := time.Now()

	// Table creation order respects foreign key dependencies.
	tables := []interface{}{
		(*models.Profile)(nil),
		(*models.SagaProfile)(nil),
		(*models.Unit)(nil),
		(*models.PlayerUnit)(nil),
		(*models.EquippableBond)(nil),
		(*models.HumanEncounter)(nil),
		(*models.DraftedContract)(nil),
		(*models.ResearchProgress)(nil),
		(*models.TavernFavor)(nil),
		(*models.TavernRotation)(nil),
		(*models.Item)(nil),
		(*models.InventoryEntry)(nil),
		(*models.MapNode)(nil),
		(*models.NodeEnemy)(nil),
		(*models.NodeReward)(nil),
		(*models.Recipe)(nil),
		(*models.RecipeIngredient)(nil),
		(*models.Task)(nil),
		(*models.PlayerTask)(nil),
		(*models.Quest)(nil),
		(*models.QuestReward)(nil),
		(*models.PlayerQuest)(nil),
		(*models.BotConfig)(nil),
	}

	for _, table := range tables {
		if _, err := db.bunDB.NewCreateTable().
			Model(table).
			IfNotExists().
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to create table for %T: %w", table, err)
		}
	}

	indexes := []string{
		// One non-consumed draft per (user, unit).
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_drafted_contracts_active
			ON drafted_human_contracts (user_id, unit_id) WHERE NOT consumed`,
		// One equipped bond per host.
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_bonds_host_equipped
			ON equippable_unit_bonds (host_player_unit_id) WHERE is_equipped`,
		// One equipped bond per equipped unit.
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_bonds_equipped_active
			ON equippable_unit_bonds (equipped_player_unit_id) WHERE is_equipped`,
		`CREATE INDEX IF NOT EXISTS idx_player_units_user ON player_units (user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_player_units_training
			ON player_units (user_id) WHERE is_training`,
		`CREATE INDEX IF NOT EXISTS idx_player_tasks_user ON player_tasks (user_id, assigned_at)`,
		`CREATE INDEX IF NOT EXISTS idx_player_quests_user ON player_quests (user_id, status)`,
	}
	for _, idx := range indexes {
		if _, err := db.bunDB.ExecContext(ctx, idx); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	if err := db.seedItems(ctx); err != nil {
		return err
	}

	slog.Info("Database schema initialized",
		slog.String("type", "db"),
		slog.Int("tables", len(tables)),
		slog.Duration("took", time.Since(start)))
	return nil
}

// seedItems mirrors the closed item registry into the items relation so
// inventory foreign keys have rows to point at.
func (db *DB) seedItems(ctx context.Context) error {
	for _, info := range models.AllItems() {
		item := &models.Item{
			ItemID:      info.ID,
			DisplayName: info.DisplayName,
			Rarity:      info.Rarity,
			Category:    info.Category,
			Sellable:    info.Sellable,
			Tradeable:   info.Tradeable,
			BuyPrice:    info.BuyPrice,
			SellPrice:   info.SellPrice,
		}
		if _, err := db.bunDB.NewInsert().
			Model(item).
			On("CONFLICT (item_id) DO UPDATE").
			Set("display_name = EXCLUDED.display_name").
			Set("rarity = EXCLUDED.rarity").
			Set("category = EXCLUDED.category").
			Set("sellable = EXCLUDED.sellable").
			Set("tradeable = EXCLUDED.tradeable").
			Set("buy_price = EXCLUDED.buy_price").
			Set("sell_price = EXCLUDED.sell_price").
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to seed item %s: %w", info.ID, err)
		}
	}
	return nil
}
