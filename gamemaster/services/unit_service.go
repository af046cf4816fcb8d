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
	"github.com/divijg19/Gamemaster-sub000/gamemaster/database/repositories"
	"github.com/divijg19/Gamemaster-sub000/gamemaster/leveling"
)

// UnitService owns the roster: hiring, taming, bonding, party membership,
// training, and battle reward application.
type UnitService struct {
	db          *bun.DB
	units       repositories.UnitRepository
	playerUnits repositories.PlayerUnitRepository
	bonds       repositories.BondRepository
	research    repositories.ResearchRepository
	saga        *SagaService
	configSvc   *ConfigService
	calculator  *leveling.Calculator

	bonusCache    *cache.TTL[string, map[int64]EquipmentBonus]
	researchCache *cache.TTL[string, []*models.ResearchProgress]
	userCaches    *cache.UserCaches
}

func NewUnitService(
	db *bun.DB,
	units repositories.UnitRepository,
	playerUnits repositories.PlayerUnitRepository,
	bonds repositories.BondRepository,
	research repositories.ResearchRepository,
	saga *SagaService,
	configSvc *ConfigService,
	userCaches *cache.UserCaches,
) *UnitService {
	s := &UnitService{
		db:            db,
		units:         units,
		playerUnits:   playerUnits,
		bonds:         bonds,
		research:      research,
		saga:          saga,
		configSvc:     configSvc,
		calculator:    leveling.NewCalculator(nil),
		bonusCache:    cache.NewTTL[string, map[int64]EquipmentBonus](),
		researchCache: cache.NewTTL[string, []*models.ResearchProgress](),
		userCaches:    userCaches,
	}
	userCaches.Register(s.bonusCache)
	userCaches.Register(s.researchCache)
	return s
}

func (s *UnitService) GetPlayerUnits(ctx context.Context, userID string) ([]*models.PlayerUnit, error) {
	return s.playerUnits.GetByUser(ctx, userID)
}

func (s *UnitService) GetUserParty(ctx context.Context, userID string) ([]*models.PlayerUnit, error) {
	return s.playerUnits.GetParty(ctx, userID)
}

// HireUnit buys a unit from the tavern. Serialized per user via the advisory
// lock so parallel hires cannot overrun the army cap or the balance.
func (s *UnitService) HireUnit(ctx context.Context, userID string, unitID int, cost int64) (string, error) {
	var name string
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
			if errors.Is(err, sql.ErrNoRows) {
				return Validationf("You don't have enough coins.")
			}
			return fmt.Errorf("failed to lock profile: %w", err)
		}
		if profile.Balance < cost {
			return Validationf("You don't have enough coins.")
		}

		armySize, err := countArmy(ctx, tx, userID)
		if err != nil {
			return err
		}
		if err := armyCapacityError(armySize); err != nil {
			return err
		}

		master, err := s.units.GetByID(ctx, unitID)
		if err != nil {
			return ErrNotFound
		}
		name = master.Name

		if _, err := tx.NewUpdate().
			Model((*models.Profile)(nil)).
			Set("balance = balance - ?", cost).
			Where("user_id = ?", userID).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to deduct hire cost: %w", err)
		}

		inParty := false
		if master.Kind == models.KindHuman {
			partySize, err := countParty(ctx, tx, userID)
			if err != nil {
				return err
			}
			inParty = partySize < config.MaxPartySize
		}

		unit := models.NewPlayerUnit(userID, master, inParty)
		if _, err := tx.NewInsert().Model(unit).Exec(ctx); err != nil {
			return fmt.Errorf("failed to insert player unit: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	s.userCaches.InvalidateUser(userID)
	slog.Info("Unit hired",
		slog.String("type", "cmd"),
		slog.String("user_id", userID),
		slog.String("unit", name))
	return name, nil
}

// AttemptRecruitUnit is the pet taming path. Consumes one taming lure and
// ten research items; sub-Legendary pets only accumulate research progress.
func (s *UnitService) AttemptRecruitUnit(ctx context.Context, userID string, unitID int) (string, error) {
	var message string
	err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if err := database.AcquireUserLock(ctx, tx, userID); err != nil {
			return err
		}

		master, err := s.units.GetByID(ctx, unitID)
		if err != nil {
			return ErrNotFound
		}
		if master.Kind == models.KindHuman {
			return Validationf("Humans can't be tamed. Defeat them and draft a contract instead.")
		}
		if !master.IsRecruitable {
			return Validationf("%s can't be tamed.", master.Name)
		}

		partyEligible := master.Rarity.PartyEligiblePet()
		if partyEligible {
			armySize, err := countArmy(ctx, tx, userID)
			if err != nil {
				return err
			}
			if err := armyCapacityError(armySize); err != nil {
				return err
			}
		}

		researchItem, ok := models.ResearchItemForUnit(master.Name)
		if !ok {
			// Should not happen for a recruitable pet; log and refuse.
			slog.Error("No research item mapping for recruitable pet",
				slog.String("type", "err"),
				slog.String("unit", master.Name))
			return Validationf("%s can't be researched right now.", master.Name)
		}

		if ok, err := repositories.ConsumeInventory(ctx, tx, userID, models.ItemTamingLure, 1); err != nil {
			return err
		} else if !ok {
			return Validationf("You need a Taming Lure.")
		}
		if ok, err := repositories.ConsumeInventory(ctx, tx, userID, researchItem, config.TamingResearchCost); err != nil {
			return err
		} else if !ok {
			info, _ := models.GetItemInfo(researchItem)
			return Validationf("You need %d %s.", config.TamingResearchCost, info.DisplayName)
		}

		if partyEligible {
			unit := models.NewPlayerUnit(userID, master, true)
			if _, err := tx.NewInsert().Model(unit).Exec(ctx); err != nil {
				return fmt.Errorf("failed to insert tamed unit: %w", err)
			}
			message = fmt.Sprintf("%s joins your party!", master.Name)
			return nil
		}

		// Sub-Legendary pets accumulate research. Reaching the rarity's
		// research target completes the taming: the pet joins the army but
		// stays out of the party.
		tamed, err := incrementResearch(ctx, tx, userID, unitID)
		if err != nil {
			return err
		}
		target, err := s.configSvc.ResearchTarget(ctx, master.Rarity)
		if err != nil {
			return err
		}
		if target > 0 && tamed == target {
			// The roster ceiling holds here too. The rollback refunds the
			// lure and research items and undoes the progress increment, so
			// the player retries after making room.
			armySize, err := countArmy(ctx, tx, userID)
			if err != nil {
				return err
			}
			if err := armyCapacityError(armySize); err != nil {
				return err
			}
			unit := models.NewPlayerUnit(userID, master, false)
			if _, err := tx.NewInsert().Model(unit).Exec(ctx); err != nil {
				return fmt.Errorf("failed to insert researched unit: %w", err)
			}
			message = fmt.Sprintf("Research complete! %s joins your army.", master.Name)
			return nil
		}
		message = fmt.Sprintf("%s tamed (+1 research progress).", master.Name)
		return nil
	})
	if err != nil {
		return "", err
	}

	s.userCaches.InvalidateUser(userID)
	return message, nil
}

// incrementResearch upserts the research row and returns the new count.
func incrementResearch(ctx context.Context, tx bun.Tx, userID string, unitID int) (int, error) {
	row := &models.ResearchProgress{
		UserID:      userID,
		UnitID:      unitID,
		TamedCount:  1,
		LastUpdated: time.Now(),
	}
	_, err := tx.NewInsert().
		Model(row).
		On("CONFLICT (user_id, unit_id) DO UPDATE").
		Set("tamed_count = rp.tamed_count + 1").
		Set("last_updated = EXCLUDED.last_updated").
		Returning("tamed_count").
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to increment research: %w", err)
	}
	return row.TamedCount, nil
}

// BondUnits equips a pet onto a host. The equipped unit leaves active play.
func (s *UnitService) BondUnits(ctx context.Context, userID string, hostID, equippedID int64) error {
	if hostID == equippedID {
		return Validationf("A unit can't be bonded to itself.")
	}

	err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if err := database.AcquireUserLock(ctx, tx, userID); err != nil {
			return err
		}

		host, err := lockOwnedUnit(ctx, tx, userID, hostID)
		if err != nil {
			return err
		}
		equipped, err := lockOwnedUnit(ctx, tx, userID, equippedID)
		if err != nil {
			return err
		}

		master, err := s.units.GetByID(ctx, equipped.UnitID)
		if err != nil {
			return ErrNotFound
		}
		if master.Kind != models.KindPet {
			return Validationf("Only pets can be equipped.")
		}
		if equipped.Rarity.Rank() > host.Rarity.Rank() {
			return Validationf("Equipped unit's rarity exceeds host unit's rarity.")
		}

		if exists, err := hasActiveBond(ctx, tx, "host_player_unit_id", hostID); err != nil {
			return err
		} else if exists {
			return Validationf("Host already has an equipped unit.")
		}
		if exists, err := hasActiveBond(ctx, tx, "equipped_player_unit_id", equippedID); err != nil {
			return err
		} else if exists {
			return Validationf("That unit is already bonded.")
		}

		bond := &models.EquippableBond{
			HostPlayerUnitID:     hostID,
			EquippedPlayerUnitID: equippedID,
			CreatedAt:            time.Now(),
			IsEquipped:           true,
		}
		if _, err := tx.NewInsert().Model(bond).Exec(ctx); err != nil {
			return fmt.Errorf("failed to insert bond: %w", err)
		}

		// Equipped units leave the party while bonded.
		if _, err := tx.NewUpdate().
			Model((*models.PlayerUnit)(nil)).
			Set("is_in_party = FALSE").
			Where("player_unit_id = ?", equippedID).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to bench equipped unit: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.userCaches.InvalidateUser(userID)
	return nil
}

// UnequipEquippable deactivates the host's bond. The row stays for history.
func (s *UnitService) UnequipEquippable(ctx context.Context, userID string, hostID int64) error {
	err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if err := database.AcquireUserLock(ctx, tx, userID); err != nil {
			return err
		}
		if _, err := lockOwnedUnit(ctx, tx, userID, hostID); err != nil {
			return err
		}

		res, err := tx.NewUpdate().
			Model((*models.EquippableBond)(nil)).
			Set("is_equipped = FALSE").
			Where("host_player_unit_id = ? AND is_equipped", hostID).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to unequip bond: %w", err)
		}
		if affected, _ := res.RowsAffected(); affected == 0 {
			return Validationf("That unit has nothing equipped.")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.userCaches.InvalidateUser(userID)
	return nil
}

// SetUnitPartyStatus toggles party membership. Joining enforces the pet
// rarity gate and the party cap; leaving is unconditional.
func (s *UnitService) SetUnitPartyStatus(ctx context.Context, userID string, playerUnitID int64, inParty bool) error {
	err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if err := database.AcquireUserLock(ctx, tx, userID); err != nil {
			return err
		}

		unit, err := lockOwnedUnit(ctx, tx, userID, playerUnitID)
		if err != nil {
			return err
		}

		if inParty {
			master, err := s.units.GetByID(ctx, unit.UnitID)
			if err != nil {
				return ErrNotFound
			}
			if master.Kind == models.KindPet && !unit.Rarity.PartyEligiblePet() {
				return Validationf("Only Legendary or higher pets can join the party.")
			}
			partySize, err := countParty(ctx, tx, userID)
			if err != nil {
				return err
			}
			if partySize >= config.MaxPartySize {
				return Validationf("Your party is full (%d/%d).", partySize, config.MaxPartySize)
			}
		}

		if _, err := tx.NewUpdate().
			Model((*models.PlayerUnit)(nil)).
			Set("is_in_party = ?", inParty).
			Where("player_unit_id = ?", playerUnitID).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to set party status: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.userCaches.InvalidateUser(userID)
	return nil
}

// StartTraining spends TP and puts the unit into a timed training session.
func (s *UnitService) StartTraining(ctx context.Context, userID string, playerUnitID int64, stat models.TrainingStat, durationHours int, tpCost int) error {
	if stat != models.TrainAttack && stat != models.TrainDefense {
		return Validationf("You can only train attack or defense.")
	}

	unit, err := s.playerUnits.GetByID(ctx, userID, playerUnitID)
	if err != nil {
		return ErrNotFound
	}
	if unit.IsTraining {
		return Validationf("%s is already training.", unit.Nickname)
	}

	ok, err := s.saga.SpendTrainingPoints(ctx, userID, tpCost)
	if err != nil {
		return err
	}
	if !ok {
		return Validationf("You don't have enough TP (%d needed).", tpCost)
	}

	endsAt := time.Now().UTC().Add(time.Duration(durationHours) * time.Hour)
	if _, err := s.db.NewUpdate().
		Model((*models.PlayerUnit)(nil)).
		Set("is_training = TRUE").
		Set("training_stat = ?", stat).
		Set("training_ends_at = ?", endsAt).
		Where("player_unit_id = ? AND user_id = ?", playerUnitID, userID).
		Exec(ctx); err != nil {
		return fmt.Errorf("failed to start training: %w", err)
	}

	s.userCaches.InvalidateUser(userID)
	return nil
}

// DismissUnit removes an owned unit permanently. Bonded units must be
// unequipped first so bond history stays consistent.
func (s *UnitService) DismissUnit(ctx context.Context, userID string, playerUnitID int64) (string, error) {
	var name string
	err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if err := database.AcquireUserLock(ctx, tx, userID); err != nil {
			return err
		}

		unit, err := lockOwnedUnit(ctx, tx, userID, playerUnitID)
		if err != nil {
			return err
		}
		name = unit.Nickname

		if exists, err := hasActiveBond(ctx, tx, "host_player_unit_id", playerUnitID); err != nil {
			return err
		} else if exists {
			return Validationf("Unequip %s's bond before dismissing.", unit.Nickname)
		}
		if exists, err := hasActiveBond(ctx, tx, "equipped_player_unit_id", playerUnitID); err != nil {
			return err
		} else if exists {
			return Validationf("%s is equipped to another unit.", unit.Nickname)
		}

		if _, err := tx.NewDelete().
			Model((*models.PlayerUnit)(nil)).
			Where("player_unit_id = ?", playerUnitID).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to dismiss unit: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	s.userCaches.InvalidateUser(userID)
	return name, nil
}

// ApplyBattleRewards credits coins, loot, and per-unit XP in one
// transaction. Returns the level-up results for the victory log.
func (s *UnitService) ApplyBattleRewards(
	ctx context.Context,
	userID string,
	coins int64,
	loot map[models.ItemID]int64,
	unitIDs []int64,
	xpPerUnit int64,
) ([]leveling.Result, error) {
	var results []leveling.Result
	err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if coins > 0 {
			profile := &models.Profile{UserID: userID, Balance: coins, FishingLevel: 1, MiningLevel: 1, CodingLevel: 1}
			if _, err := tx.NewInsert().
				Model(profile).
				On("CONFLICT (user_id) DO UPDATE").
				Set("balance = p.balance + EXCLUDED.balance").
				Exec(ctx); err != nil {
				return fmt.Errorf("failed to credit coins: %w", err)
			}
		}

		for itemID, qty := range loot {
			if err := repositories.AddInventory(ctx, tx, userID, itemID, qty); err != nil {
				return err
			}
		}

		for _, id := range unitIDs {
			unit, err := lockOwnedUnit(ctx, tx, userID, id)
			if err != nil {
				return err
			}

			res := s.calculator.Apply(unit.CurrentLevel, unit.CurrentXP, xpPerUnit)
			res.PlayerUnitID = unit.PlayerUnitID
			res.Name = unit.Nickname

			if _, err := tx.NewUpdate().
				Model((*models.PlayerUnit)(nil)).
				Set("current_level = ?", res.NewLevel).
				Set("current_xp = ?", res.NewXP).
				Set("current_attack = current_attack + ?", res.AttackGain).
				Set("current_defense = current_defense + ?", res.DefenseGain).
				Set("current_health = current_health + ?", res.HealthGain).
				Where("player_unit_id = ?", id).
				Exec(ctx); err != nil {
				return fmt.Errorf("failed to persist level-up: %w", err)
			}
			results = append(results, res)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.userCaches.InvalidateUser(userID)
	return results, nil
}

// GetEquipmentBonuses computes the host bonuses of every active bond.
func (s *UnitService) GetEquipmentBonuses(ctx context.Context, userID string) (map[int64]EquipmentBonus, error) {
	if cached, ok := s.bonusCache.GetWithTTL(userID, config.EquipmentBonusCacheTTL); ok {
		return cached, nil
	}

	bonds, err := s.bonds.ListActiveByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	bonuses := make(map[int64]EquipmentBonus, len(bonds))
	for _, bond := range bonds {
		eq := bond.Equipped
		if eq == nil {
			continue
		}
		bonuses[bond.HostPlayerUnitID] = ComputeEquipmentBonus(
			eq.CurrentAttack, eq.CurrentDefense, eq.CurrentHealth,
			eq.CurrentLevel, eq.Rarity,
		)
	}

	s.bonusCache.Insert(userID, bonuses)
	return bonuses, nil
}

// BondDetail pairs a bond with the bonus it currently grants.
type BondDetail struct {
	Bond  *models.EquippableBond
	Bonus EquipmentBonus
}

func (s *UnitService) ListActiveBondsDetailed(ctx context.Context, userID string) ([]BondDetail, error) {
	bonds, err := s.bonds.ListActiveByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	details := make([]BondDetail, 0, len(bonds))
	for _, bond := range bonds {
		detail := BondDetail{Bond: bond}
		if eq := bond.Equipped; eq != nil {
			detail.Bonus = ComputeEquipmentBonus(
				eq.CurrentAttack, eq.CurrentDefense, eq.CurrentHealth,
				eq.CurrentLevel, eq.Rarity,
			)
		}
		details = append(details, detail)
	}
	return details, nil
}

// ListBondContributions reports bond history including unequipped rows.
func (s *UnitService) ListBondContributions(ctx context.Context, userID string) ([]*models.EquippableBond, error) {
	return s.bonds.ListAllByUser(ctx, userID)
}

// GetResearchProgress lists the user's taming progress, cached.
func (s *UnitService) GetResearchProgress(ctx context.Context, userID string) ([]*models.ResearchProgress, error) {
	if cached, ok := s.researchCache.GetWithTTL(userID, config.ResearchCacheTTL); ok {
		return cached, nil
	}
	rows, err := s.research.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.researchCache.Insert(userID, rows)
	return rows, nil
}

// --- transaction-scoped helpers shared across services ---

func lockOwnedUnit(ctx context.Context, tx bun.Tx, userID string, playerUnitID int64) (*models.PlayerUnit, error) {
	unit := new(models.PlayerUnit)
	err := tx.NewSelect().
		Model(unit).
		Where("player_unit_id = ? AND user_id = ?", playerUnitID, userID).
		For("UPDATE").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, Validationf("You don't own that unit.")
		}
		return nil, fmt.Errorf("failed to lock player unit: %w", err)
	}
	return unit, nil
}

func hasActiveBond(ctx context.Context, tx bun.Tx, column string, playerUnitID int64) (bool, error) {
	exists, err := tx.NewSelect().
		Model((*models.EquippableBond)(nil)).
		Where(column+" = ? AND is_equipped", playerUnitID).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check bond: %w", err)
	}
	return exists, nil
}

// armyCapacityError guards the roster ceiling. Every path that inserts a
// player_unit row must pass the current count through here first.
func armyCapacityError(armySize int) error {
	if armySize >= config.MaxArmySize {
		return Validationf("Your army is full (%d/%d).", armySize, config.MaxArmySize)
	}
	return nil
}

func countArmy(ctx context.Context, tx bun.Tx, userID string) (int, error) {
	count, err := tx.NewSelect().
		Model((*models.PlayerUnit)(nil)).
		Where("user_id = ?", userID).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count army: %w", err)
	}
	return count, nil
}

func countParty(ctx context.Context, tx bun.Tx, userID string) (int, error) {
	count, err := tx.NewSelect().
		Model((*models.PlayerUnit)(nil)).
		Where("user_id = ? AND is_in_party", userID).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count party: %w", err)
	}
	return count, nil
}
