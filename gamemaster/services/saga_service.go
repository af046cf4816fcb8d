package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"log/slog"

	"github.com/uptrace/bun"

	"github.com/divijg19/Gamemaster-sub000/gamemaster/cache"
	"github.com/divijg19/Gamemaster-sub000/gamemaster/config"
	"github.com/divijg19/Gamemaster-sub000/gamemaster/database/models"
	"github.com/divijg19/Gamemaster-sub000/gamemaster/database/repositories"
)

// SagaService owns the per-user saga profile: lazy creation, AP/TP recharge,
// training completion, and story progress.
type SagaService struct {
	db          *bun.DB
	playerUnits repositories.PlayerUnitRepository
	units       repositories.UnitRepository
	configSvc   *ConfigService

	profileCache *cache.TTL[string, *models.SagaProfile]
	userCaches   *cache.UserCaches
}

func NewSagaService(
	db *bun.DB,
	playerUnits repositories.PlayerUnitRepository,
	units repositories.UnitRepository,
	configSvc *ConfigService,
	userCaches *cache.UserCaches,
) *SagaService {
	s := &SagaService{
		db:           db,
		playerUnits:  playerUnits,
		units:        units,
		configSvc:    configSvc,
		profileCache: cache.NewTTL[string, *models.SagaProfile](),
		userCaches:   userCaches,
	}
	userCaches.Register(s.profileCache)
	return s
}

// UpdateAndGetProfile is the canonical saga profile read path. It applies
// completed training, recharges TP by whole elapsed hours, and resets AP on
// the first read of a new day.
func (s *SagaService) UpdateAndGetProfile(ctx context.Context, userID string) (*models.SagaProfile, error) {
	if cached, ok := s.profileCache.GetWithTTL(userID, config.SagaProfileCacheTTL); ok {
		return cached, nil
	}

	now := time.Now().UTC()

	// Training completion runs before the profile transaction: each stat is
	// a single UPDATE, so a failure here leaves no partial stat changes.
	if _, err := s.playerUnits.CompleteDueTraining(ctx, userID, now); err != nil {
		return nil, fmt.Errorf("failed to complete training: %w", err)
	}

	var profile *models.SagaProfile
	err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		created, err := s.lockOrCreateProfile(ctx, tx, userID, now)
		if err != nil {
			return err
		}
		profile = created.profile

		changed := false
		if gain := tpGain(now.Sub(profile.LastTPUpdate), config.TPReplenishHours); gain > 0 {
			if profile.CurrentTP < profile.MaxTP {
				profile.CurrentTP = min(profile.CurrentTP+gain, profile.MaxTP)
			}
			changed = true
		}
		if dateOf(now) != dateOf(profile.LastTPUpdate) {
			profile.CurrentAP = profile.MaxAP
			changed = true
		}

		if changed {
			profile.LastTPUpdate = now
			if _, err := tx.NewUpdate().
				Model(profile).
				Column("current_ap", "current_tp", "last_tp_update").
				WherePK().
				Exec(ctx); err != nil {
				return fmt.Errorf("failed to persist recharge: %w", err)
			}
		}

		if created.isNew {
			return s.grantStarterUnit(ctx, tx, userID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.profileCache.Insert(userID, profile)
	return profile, nil
}

type lockedProfile struct {
	profile *models.SagaProfile
	isNew   bool
}

func (s *SagaService) lockOrCreateProfile(ctx context.Context, tx bun.Tx, userID string, now time.Time) (lockedProfile, error) {
	profile := new(models.SagaProfile)
	err := tx.NewSelect().
		Model(profile).
		Where("user_id = ?", userID).
		For("UPDATE").
		Scan(ctx)
	if err == nil {
		return lockedProfile{profile: profile}, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return lockedProfile{}, fmt.Errorf("failed to lock saga profile: %w", err)
	}

	profile = &models.SagaProfile{
		UserID:       userID,
		CurrentAP:    config.DefaultMaxAP,
		MaxAP:        config.DefaultMaxAP,
		CurrentTP:    config.DefaultMaxTP,
		MaxTP:        config.DefaultMaxTP,
		LastTPUpdate: now,
	}
	if _, err := tx.NewInsert().
		Model(profile).
		On("CONFLICT (user_id) DO NOTHING").
		Exec(ctx); err != nil {
		return lockedProfile{}, fmt.Errorf("failed to create saga profile: %w", err)
	}
	// Lock the row we just created (or the one a concurrent creator won).
	if err := tx.NewSelect().
		Model(profile).
		Where("user_id = ?", userID).
		For("UPDATE").
		Scan(ctx); err != nil {
		return lockedProfile{}, fmt.Errorf("failed to reload saga profile: %w", err)
	}

	slog.Info("Created saga profile",
		slog.String("type", "db"),
		slog.String("user_id", userID))
	return lockedProfile{profile: profile, isNew: true}, nil
}

// grantStarterUnit gives a fresh saga profile its configured starter unit.
func (s *SagaService) grantStarterUnit(ctx context.Context, tx bun.Tx, userID string) error {
	raw, err := s.configSvc.Get(ctx, models.ConfigStarterUnitID, "")
	if err != nil || raw == "" {
		return nil
	}
	starterID, err := strconv.Atoi(raw)
	if err != nil {
		slog.Warn("Invalid starter_unit_id config value",
			slog.String("type", "sys"),
			slog.String("value", raw))
		return nil
	}
	master, err := s.units.GetByID(ctx, starterID)
	if err != nil {
		return nil
	}

	unit := models.NewPlayerUnit(userID, master, true)
	if _, err := tx.NewInsert().Model(unit).Exec(ctx); err != nil {
		return fmt.Errorf("failed to grant starter unit: %w", err)
	}
	slog.Info("Granted starter unit",
		slog.String("type", "sys"),
		slog.String("user_id", userID),
		slog.String("unit", master.Name))
	return nil
}

// SpendActionPoints is the canonical conditional spend: one UPDATE guarded
// by current_ap >= amount. Zero rows affected means "insufficient".
func (s *SagaService) SpendActionPoints(ctx context.Context, userID string, amount int) (bool, error) {
	res, err := s.db.NewUpdate().
		Model((*models.SagaProfile)(nil)).
		Set("current_ap = current_ap - ?", amount).
		Where("user_id = ?", userID).
		Where("current_ap >= ?", amount).
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to spend AP: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected > 0 {
		s.profileCache.Remove(userID)
	}
	return affected > 0, nil
}

// SpendTrainingPoints mirrors SpendActionPoints for TP.
func (s *SagaService) SpendTrainingPoints(ctx context.Context, userID string, amount int) (bool, error) {
	res, err := s.db.NewUpdate().
		Model((*models.SagaProfile)(nil)).
		Set("current_tp = current_tp - ?", amount).
		Where("user_id = ?", userID).
		Where("current_tp >= ?", amount).
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to spend TP: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected > 0 {
		s.profileCache.Remove(userID)
	}
	return affected > 0, nil
}

// AdvanceStoryProgress raises story progress monotonically; stale or equal
// values are no-ops.
func (s *SagaService) AdvanceStoryProgress(ctx context.Context, userID string, newProgress int) error {
	_, err := s.db.NewUpdate().
		Model((*models.SagaProfile)(nil)).
		Set("story_progress = ?", newProgress).
		Where("user_id = ?", userID).
		Where("story_progress < ?", newProgress).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to advance story progress: %w", err)
	}
	s.profileCache.Remove(userID)
	return nil
}

// tpGain converts elapsed time into whole recharged training points. Partial
// intervals never count.
func tpGain(elapsed time.Duration, hoursPerPoint int) int {
	if hoursPerPoint <= 0 || elapsed <= 0 {
		return 0
	}
	return int(elapsed.Hours()) / hoursPerPoint
}

// dateOf truncates an instant to its UTC calendar day.
func dateOf(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
