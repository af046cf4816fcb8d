package services

import (
	"context"
	"database/sql"
	"fmt"
	"hash/fnv"
	"math/rand"
	"sort"
	"time"

	"log/slog"

	"github.com/uptrace/bun"

	"github.com/divijg19/Gamemaster-sub000/gamemaster/cache"
	"github.com/divijg19/Gamemaster-sub000/gamemaster/config"
	"github.com/divijg19/Gamemaster-sub000/gamemaster/database"
	"github.com/divijg19/Gamemaster-sub000/gamemaster/database/models"
	"github.com/divijg19/Gamemaster-sub000/gamemaster/database/repositories"
)

// TavernService serves the daily hire rotation, favor, and rerolls.
type TavernService struct {
	db       *bun.DB
	units    repositories.UnitRepository
	profiles repositories.ProfileRepository
	tavern   repositories.TavernRepository
	saga     *SagaService

	dailyPool  *cache.Daily[[]int]
	userCaches *cache.UserCaches
}

func NewTavernService(
	db *bun.DB,
	units repositories.UnitRepository,
	profiles repositories.ProfileRepository,
	tavern repositories.TavernRepository,
	saga *SagaService,
	userCaches *cache.UserCaches,
) *TavernService {
	return &TavernService{
		db:         db,
		units:      units,
		profiles:   profiles,
		tavern:     tavern,
		saga:       saga,
		dailyPool:  cache.NewDaily[[]int](),
		userCaches: userCaches,
	}
}

// HireCost scales the base cost by rarity and rounds up to a multiple of 5.
func HireCost(rarity models.Rarity) int64 {
	cost := float64(config.HireCostBase) * rarity.HireCostMultiplier()
	return ((int64(cost) + 4) / 5) * 5
}

// dayKey identifies a UTC calendar day.
func dayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// hash64 is the deterministic 64-bit mix behind daily ordering and jitter.
func hash64(parts ...int) uint64 {
	h := fnv.New64a()
	var buf [8]byte
	for _, p := range parts {
		v := uint64(int64(p))
		for i := 0; i < 8; i++ {
			buf[i] = byte(v >> (8 * i))
		}
		h.Write(buf[:])
	}
	return h.Sum64()
}

func hash64String(s string, parts ...int) uint64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	var buf [8]byte
	for _, p := range parts {
		v := uint64(int64(p))
		for i := 0; i < 8; i++ {
			buf[i] = byte(v >> (8 * i))
		}
		h.Write(buf[:])
	}
	return h.Sum64()
}

// jitter maps a hash to [0, 1).
func jitter(h uint64) float64 {
	return float64(h>>11) / float64(1<<53)
}

// GetDailyRecruits returns today's global recruit pool: every recruitable
// unit ordered by a hash of (year, day ordinal, unit id), truncated to the
// daily cap. Cached process-wide per day.
func (s *TavernService) GetDailyRecruits(ctx context.Context, now time.Time) ([]int, error) {
	return s.dailyPool.GetOrFill(dayKey(now), func() ([]int, error) {
		units, err := s.units.GetAllRecruitable(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load recruitable units: %w", err)
		}

		utc := now.UTC()
		year, ordinal := utc.Year(), utc.YearDay()
		sort.SliceStable(units, func(i, j int) bool {
			return hash64(year, ordinal, units[i].UnitID) < hash64(year, ordinal, units[j].UnitID)
		})

		if len(units) > config.TavernMaxDaily {
			units = units[:config.TavernMaxDaily]
		}
		ids := make([]int, len(units))
		for i, u := range units {
			ids[i] = u.UnitID
		}
		return ids, nil
	})
}

// GetOrGenerateRotation returns the user's stored rotation for today,
// regenerating from the global pool on day change.
func (s *TavernService) GetOrGenerateRotation(ctx context.Context, userID string, now time.Time) ([]int, error) {
	stored, err := s.tavern.GetRotation(ctx, userID)
	if err != nil {
		return nil, err
	}
	if stored != nil && dayKey(stored.Day) == dayKey(now) {
		return stored.Rotation, nil
	}

	daily, err := s.GetDailyRecruits(ctx, now)
	if err != nil {
		return nil, err
	}
	if err := s.tavern.UpsertRotation(ctx, userID, daily, now.UTC().Truncate(24*time.Hour)); err != nil {
		return nil, err
	}
	return daily, nil
}

// TavernMeta is the state strip rendered beside the rotation.
type TavernMeta struct {
	Balance          int64
	Favor            int
	FavorTier        int
	FavorProgress    float64
	DailyRerollsUsed int
	MaxDailyRerolls  int
	RerollCost       int64
	CanReroll        bool
}

// TavernState is the composed tavern view model.
type TavernState struct {
	Units []*models.Unit
	Meta  TavernMeta
}

// BuildTavernState composes the visible rotation for a user: pet story
// gating, deterministic weighted re-sort, and the visibility cap. Calling it
// twice on the same (user, day) without mutations yields the same prefix.
func (s *TavernService) BuildTavernState(ctx context.Context, userID string) (*TavernState, error) {
	now := time.Now()

	profile, err := s.profiles.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	saga, err := s.saga.UpdateAndGetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	rotation, err := s.GetOrGenerateRotation(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	units, err := s.units.GetByIDs(ctx, rotation)
	if err != nil {
		return nil, err
	}

	// Pets unlock at story progress 5.
	if saga.StoryProgress < config.TavernPetStoryGate {
		filtered := units[:0]
		for _, u := range units {
			if u.Kind != models.KindPet {
				filtered = append(filtered, u)
			}
		}
		units = filtered
	}

	favor, err := s.tavern.GetOrCreateFavor(ctx, userID)
	if err != nil {
		return nil, err
	}
	rerollsUsed := favor.DailyRerolls
	if favor.LastReroll == nil || dayKey(*favor.LastReroll) != dayKey(now) {
		rerollsUsed = 0
	}

	sortRotation(units, userID, now, saga.StoryProgress)

	cap := visibilityCap(saga.StoryProgress)
	if len(units) > cap {
		units = units[:cap]
	}

	tier, progress := favorTier(favor.Fame)
	meta := TavernMeta{
		Balance:          profile.Balance,
		Favor:            favor.Fame,
		FavorTier:        tier,
		FavorProgress:    progress,
		DailyRerollsUsed: rerollsUsed,
		MaxDailyRerolls:  config.TavernMaxDailyRerolls,
		RerollCost:       config.TavernRerollCost,
		CanReroll:        rerollsUsed < config.TavernMaxDailyRerolls,
	}
	return &TavernState{Units: units, Meta: meta}, nil
}

// sortRotation orders units by score = jitter * weight, descending. The
// jitter is a pure function of (user, day, unit), so the order is stable for
// a given day.
func sortRotation(units []*models.Unit, userID string, now time.Time, storyProgress int) {
	utc := now.UTC()
	year, ordinal := utc.Year(), utc.YearDay()
	storyBonus := float64(storyProgress) / 20
	if storyBonus > 0.6 {
		storyBonus = 0.6
	}

	score := func(u *models.Unit) float64 {
		weight := u.Rarity.TavernWeight() + storyBonus
		return jitter(hash64String(userID, year, ordinal, u.UnitID)) * weight
	}
	sort.SliceStable(units, func(i, j int) bool {
		return score(units[i]) > score(units[j])
	})
}

// visibilityCap widens the rotation window at story milestones 3 and 6.
func visibilityCap(storyProgress int) int {
	cap := config.TavernBaseRotation
	if storyProgress >= 3 {
		cap++
	}
	if storyProgress >= 6 {
		cap++
	}
	return cap
}

// favorTier maps fame onto tier 0..3 plus progress toward the next tier.
func favorTier(fame int) (int, float64) {
	tiers := config.FavorTiers
	tier := 0
	for i := len(tiers) - 1; i >= 0; i-- {
		if fame >= tiers[i] {
			tier = i
			break
		}
	}
	if tier == len(tiers)-1 {
		return tier, 1.0
	}
	span := float64(tiers[tier+1] - tiers[tier])
	return tier, float64(fame-tiers[tier]) / span
}

// AddFame credits favor, typically one per successful hire.
func (s *TavernService) AddFame(ctx context.Context, userID string, delta int) error {
	return s.tavern.AddFame(ctx, userID, delta)
}

// CanReroll reports whether the user has a reroll slot left today.
func (s *TavernService) CanReroll(ctx context.Context, userID string) (bool, error) {
	favor, err := s.tavern.GetOrCreateFavor(ctx, userID)
	if err != nil {
		return false, err
	}
	if favor.LastReroll == nil || dayKey(*favor.LastReroll) != dayKey(time.Now()) {
		return true, nil
	}
	return favor.DailyRerolls < config.TavernMaxDailyRerolls, nil
}

// Reroll samples a fresh rotation from today's pool and applies it
// transactionally.
func (s *TavernService) Reroll(ctx context.Context, userID string) error {
	now := time.Now()
	daily, err := s.GetDailyRecruits(ctx, now)
	if err != nil {
		return err
	}

	// Shuffle in a tight block; the RNG never crosses an await.
	fresh := make([]int, len(daily))
	copy(fresh, daily)
	rand.Shuffle(len(fresh), func(i, j int) { fresh[i], fresh[j] = fresh[j], fresh[i] })

	return s.TransactionalReroll(ctx, userID, fresh, config.TavernRerollCost, config.TavernMaxDailyRerolls)
}

// TransactionalReroll deducts the cost, overwrites today's rotation, and
// bumps the daily counter in a single transaction. Failure at any step
// leaves balance, rotation, and counters untouched.
func (s *TavernService) TransactionalReroll(ctx context.Context, userID string, newRotation []int, cost int64, maxDaily int) error {
	now := time.Now()
	err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if err := database.AcquireUserLock(ctx, tx, userID); err != nil {
			return err
		}

		favor := new(models.TavernFavor)
		err := tx.NewSelect().
			Model(favor).
			Where("user_id = ?", userID).
			For("UPDATE").
			Scan(ctx)
		if err != nil {
			// Initialize the favor row inside the transaction.
			favor = &models.TavernFavor{UserID: userID}
			if _, err := tx.NewInsert().
				Model(favor).
				On("CONFLICT (user_id) DO NOTHING").
				Exec(ctx); err != nil {
				return fmt.Errorf("failed to initialize favor: %w", err)
			}
			if err := tx.NewSelect().
				Model(favor).
				Where("user_id = ?", userID).
				For("UPDATE").
				Scan(ctx); err != nil {
				return fmt.Errorf("failed to lock favor: %w", err)
			}
		}

		sameDay := favor.LastReroll != nil && dayKey(*favor.LastReroll) == dayKey(now)
		if sameDay && favor.DailyRerolls >= maxDaily {
			// Surfaced as the not-found sentinel: no reroll slot today.
			return ErrNotFound
		}

		res, err := tx.NewUpdate().
			Model((*models.Profile)(nil)).
			Set("balance = balance - ?", cost).
			Where("user_id = ?", userID).
			Where("balance >= ?", cost).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to deduct reroll cost: %w", err)
		}
		if affected, _ := res.RowsAffected(); affected == 0 {
			return Validationf("You don't have enough coins.")
		}

		rotation := &models.TavernRotation{
			UserID:      userID,
			Rotation:    newRotation,
			Day:         now.UTC().Truncate(24 * time.Hour),
			GeneratedAt: now,
		}
		if _, err := tx.NewInsert().
			Model(rotation).
			On("CONFLICT (user_id) DO UPDATE").
			Set("rotation = EXCLUDED.rotation").
			Set("day = EXCLUDED.day").
			Set("generated_at = EXCLUDED.generated_at").
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to overwrite rotation: %w", err)
		}

		newCount := 1
		if sameDay {
			newCount = favor.DailyRerolls + 1
		}
		if _, err := tx.NewUpdate().
			Model((*models.TavernFavor)(nil)).
			Set("daily_rerolls = ?", newCount).
			Set("last_reroll = ?", now).
			Where("user_id = ?", userID).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to bump reroll counter: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.userCaches.InvalidateUser(userID)
	slog.Info("Tavern rerolled",
		slog.String("type", "cmd"),
		slog.String("user_id", userID))
	return nil
}
