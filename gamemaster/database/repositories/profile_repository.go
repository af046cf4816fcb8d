package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"log/slog"

	"github.com/divijg19/Gamemaster-sub000/gamemaster/database/models"
	"github.com/uptrace/bun"
)

type ProfileRepository interface {
	GetOrCreate(ctx context.Context, userID string) (*models.Profile, error)
	GetBalance(ctx context.Context, userID string) (int64, error)
	AddBalance(ctx context.Context, userID string, delta int64) error
	UpdateWork(ctx context.Context, profile *models.Profile) error
}

type profileRepository struct {
	db *bun.DB
}

func NewProfileRepository(db *bun.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) GetOrCreate(ctx context.Context, userID string) (*models.Profile, error) {
	profile := new(models.Profile)
	err := r.db.NewSelect().
		Model(profile).
		Where("user_id = ?", userID).
		Scan(ctx)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	profile = &models.Profile{
		UserID:       userID,
		FishingLevel: 1,
		MiningLevel:  1,
		CodingLevel:  1,
	}
	_, err = r.db.NewInsert().
		Model(profile).
		On("CONFLICT (user_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	// Re-read: a concurrent creator may have won the insert.
	if err := r.db.NewSelect().Model(profile).Where("user_id = ?", userID).Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to reload profile: %w", err)
	}

	slog.Debug("Created profile",
		slog.String("type", "db"),
		slog.String("user_id", userID))
	return profile, nil
}

func (r *profileRepository) GetBalance(ctx context.Context, userID string) (int64, error) {
	profile, err := r.GetOrCreate(ctx, userID)
	if err != nil {
		return 0, err
	}
	return profile.Balance, nil
}

func (r *profileRepository) AddBalance(ctx context.Context, userID string, delta int64) error {
	res, err := r.db.NewUpdate().
		Model((*models.Profile)(nil)).
		Set("balance = balance + ?", delta).
		Where("user_id = ?", userID).
		Where("balance + ? >= 0", delta).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update balance: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return fmt.Errorf("balance update rejected for user %s", userID)
	}
	return nil
}

func (r *profileRepository) UpdateWork(ctx context.Context, profile *models.Profile) error {
	_, err := r.db.NewUpdate().
		Model(profile).
		Column("balance", "last_work", "work_streak",
			"fishing_xp", "fishing_level", "mining_xp", "mining_level",
			"coding_xp", "coding_level").
		WherePK().
		Exec(ctx)
	return err
}
