package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"log/slog"

	"github.com/uptrace/bun"

	"github.com/divijg19/Gamemaster-sub000/gamemaster/cache"
	"github.com/divijg19/Gamemaster-sub000/gamemaster/config"
	"github.com/divijg19/Gamemaster-sub000/gamemaster/database"
	"github.com/divijg19/Gamemaster-sub000/gamemaster/database/models"
)

// Job names a work profession with its own XP track.
type Job string

const (
	JobFishing Job = "fishing"
	JobMining  Job = "mining"
	JobCoding  Job = "coding"
)

func ParseJob(s string) (Job, bool) {
	switch Job(s) {
	case JobFishing, JobMining, JobCoding:
		return Job(s), true
	}
	return "", false
}

// WorkService handles the daily work shift: streaked coin payout plus job XP.
type WorkService struct {
	db *bun.DB

	userCaches *cache.UserCaches
}

func NewWorkService(db *bun.DB, userCaches *cache.UserCaches) *WorkService {
	return &WorkService{db: db, userCaches: userCaches}
}

// WorkResult reports one shift's payout.
type WorkResult struct {
	Job      Job
	Coins    int64
	Streak   int
	JobXP    int64
	JobLevel int
	LeveledUp bool
}

// jobXPForLevel mirrors the unit curve at half scale.
func jobXPForLevel(level int) int64 {
	return 50 + int64(level)*25
}

// Work runs one shift. Shifts are gated by a cooldown; a streak holds as
// long as shifts come within twice the cooldown, and each streak step adds a
// bonus up to the cap.
func (s *WorkService) Work(ctx context.Context, userID string, job Job) (*WorkResult, error) {
	result := &WorkResult{Job: job}
	now := time.Now().UTC()

	err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if err := database.AcquireUserLock(ctx, tx, userID); err != nil {
			return err
		}

		profile := new(models.Profile)
		err := tx.NewSelect().
			Model(profile).
			Where("user_id = ?", userID).
			For("UPDATE").
			Scan(ctx)
		if err != nil {
			if !errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("failed to lock profile: %w", err)
			}
			profile = &models.Profile{UserID: userID, FishingLevel: 1, MiningLevel: 1, CodingLevel: 1}
			if _, err := tx.NewInsert().
				Model(profile).
				On("CONFLICT (user_id) DO NOTHING").
				Exec(ctx); err != nil {
				return fmt.Errorf("failed to create profile: %w", err)
			}
			if err := tx.NewSelect().
				Model(profile).
				Where("user_id = ?", userID).
				For("UPDATE").
				Scan(ctx); err != nil {
				return fmt.Errorf("failed to relock profile: %w", err)
			}
		}

		if profile.LastWork != nil {
			elapsed := now.Sub(*profile.LastWork)
			if elapsed < config.WorkCooldown {
				wait := config.WorkCooldown - elapsed
				return Validationf("You're exhausted. Come back in %s.", wait.Round(time.Minute))
			}
			if elapsed <= 2*config.WorkCooldown {
				profile.WorkStreak++
			} else {
				profile.WorkStreak = 1
			}
		} else {
			profile.WorkStreak = 1
		}

		streakBonus := profile.WorkStreak - 1
		if streakBonus > config.WorkStreakCap {
			streakBonus = config.WorkStreakCap
		}
		pay := int64(config.WorkBasePay + streakBonus*config.WorkStreakBonus)

		profile.Balance += pay
		profile.LastWork = &now

		xp, level := jobTrack(profile, job)
		xp += config.WorkJobXPPerShift
		for xp >= jobXPForLevel(level) {
			xp -= jobXPForLevel(level)
			level++
			result.LeveledUp = true
		}
		setJobTrack(profile, job, xp, level)

		if _, err := tx.NewUpdate().
			Model(profile).
			Column("balance", "last_work", "work_streak",
				"fishing_xp", "fishing_level", "mining_xp", "mining_level",
				"coding_xp", "coding_level").
			WherePK().
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to persist work shift: %w", err)
		}

		result.Coins = pay
		result.Streak = profile.WorkStreak
		result.JobXP = xp
		result.JobLevel = level
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.userCaches.InvalidateUser(userID)
	slog.Info("Work shift completed",
		slog.String("type", "cmd"),
		slog.String("user_id", userID),
		slog.String("job", string(job)),
		slog.Int64("coins", result.Coins))
	return result, nil
}

func jobTrack(p *models.Profile, job Job) (int64, int) {
	switch job {
	case JobMining:
		return p.MiningXP, p.MiningLevel
	case JobCoding:
		return p.CodingXP, p.CodingLevel
	default:
		return p.FishingXP, p.FishingLevel
	}
}

func setJobTrack(p *models.Profile, job Job, xp int64, level int) {
	switch job {
	case JobMining:
		p.MiningXP, p.MiningLevel = xp, level
	case JobCoding:
		p.CodingXP, p.CodingLevel = xp, level
	default:
		p.FishingXP, p.FishingLevel = xp, level
	}
}
