package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/divijg19/Gamemaster-sub000/gamemaster/database/models"
)

type ConfigRepository interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

type configRepository struct {
	db *bun.DB
}

func NewConfigRepository(db *bun.DB) ConfigRepository {
	return &configRepository{db: db}
}

func (r *configRepository) Get(ctx context.Context, key string) (string, bool, error) {
	row := new(models.BotConfig)
	err := r.db.NewSelect().
		Model(row).
		Where("key = ?", key).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to load config key %s: %w", key, err)
	}
	return row.Value, true, nil
}

func (r *configRepository) Set(ctx context.Context, key, value string) error {
	row := &models.BotConfig{Key: key, Value: value}
	_, err := r.db.NewInsert().
		Model(row).
		On("CONFLICT (key) DO UPDATE").
		Set("value = EXCLUDED.value").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to set config key %s: %w", key, err)
	}
	return nil
}
