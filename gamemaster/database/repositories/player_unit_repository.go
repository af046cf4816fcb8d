package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"log/slog"

	"github.com/uptrace/bun"

	"github.com/divijg19/Gamemaster-sub000/gamemaster/database/models"
)

type PlayerUnitRepository interface {
	GetByUser(ctx context.Context, userID string) ([]*models.PlayerUnit, error)
	GetParty(ctx context.Context, userID string) ([]*models.PlayerUnit, error)
	GetByID(ctx context.Context, userID string, playerUnitID int64) (*models.PlayerUnit, error)
	CompleteDueTraining(ctx context.Context, userID string, now time.Time) (int, error)
}

type playerUnitRepository struct {
	db *bun.DB
}

func NewPlayerUnitRepository(db *bun.DB) PlayerUnitRepository {
	return &playerUnitRepository{db: db}
}

func (r *playerUnitRepository) GetByUser(ctx context.Context, userID string) ([]*models.PlayerUnit, error) {
	var units []*models.PlayerUnit
	err := r.db.NewSelect().
		Model(&units).
		Relation("Unit").
		Where("pu.user_id = ?", userID).
		Order("pu.is_in_party DESC", "pu.current_level DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load player units: %w", err)
	}
	return units, nil
}

func (r *playerUnitRepository) GetParty(ctx context.Context, userID string) ([]*models.PlayerUnit, error) {
	var units []*models.PlayerUnit
	err := r.db.NewSelect().
		Model(&units).
		Relation("Unit").
		Where("pu.user_id = ? AND pu.is_in_party", userID).
		Order("pu.current_level DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load party: %w", err)
	}
	return units, nil
}

func (r *playerUnitRepository) GetByID(ctx context.Context, userID string, playerUnitID int64) (*models.PlayerUnit, error) {
	unit := new(models.PlayerUnit)
	err := r.db.NewSelect().
		Model(unit).
		Relation("Unit").
		Where("pu.player_unit_id = ? AND pu.user_id = ?", playerUnitID, userID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("player unit %d not found", playerUnitID)
		}
		return nil, err
	}
	return unit, nil
}

// CompleteDueTraining finalizes every finished training session for the user:
// clears the training fields and adds +1 to the trained stat. Each stat is a
// single UPDATE, so a unit is either fully completed or untouched. Rows with
// an unknown training_stat are skipped.
func (r *playerUnitRepository) CompleteDueTraining(ctx context.Context, userID string, now time.Time) (int, error) {
	total := 0
	for _, stat := range []models.TrainingStat{models.TrainAttack, models.TrainDefense} {
		column := "current_attack"
		if stat == models.TrainDefense {
			column = "current_defense"
		}
		res, err := r.db.NewUpdate().
			Model((*models.PlayerUnit)(nil)).
			Set(column+" = "+column+" + 1").
			Set("is_training = FALSE").
			Set("training_stat = NULL").
			Set("training_ends_at = NULL").
			Where("user_id = ?", userID).
			Where("is_training").
			Where("training_stat = ?", stat).
			Where("training_ends_at <= ?", now).
			Exec(ctx)
		if err != nil {
			return total, fmt.Errorf("failed to complete %s training: %w", stat, err)
		}
		if affected, _ := res.RowsAffected(); affected > 0 {
			total += int(affected)
		}
	}

	if total > 0 {
		slog.Debug("Completed training sessions",
			slog.String("type", "db"),
			slog.String("user_id", userID),
			slog.Int("count", total))
	}
	return total, nil
}
