package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"log/slog"

	"github.com/uptrace/bun"

	"github.com/divijg19/Gamemaster-sub000/gamemaster/cache"
	"github.com/divijg19/Gamemaster-sub000/gamemaster/config"
	"github.com/divijg19/Gamemaster-sub000/gamemaster/database"
	"github.com/divijg19/Gamemaster-sub000/gamemaster/database/models"
	"github.com/divijg19/Gamemaster-sub000/gamemaster/database/repositories"
)

// ContractService runs the human recruitment-by-defeat pipeline:
// defeat tracking, contract drafting, and acceptance.
type ContractService struct {
	db          *bun.DB
	units       repositories.UnitRepository
	contracts   repositories.ContractRepository
	playerUnits repositories.PlayerUnitRepository

	statusCache *cache.TTL[string, []ContractStatus]
	userCaches  *cache.UserCaches
}

func NewContractService(
	db *bun.DB,
	units repositories.UnitRepository,
	contracts repositories.ContractRepository,
	playerUnits repositories.PlayerUnitRepository,
	userCaches *cache.UserCaches,
) *ContractService {
	s := &ContractService{
		db:          db,
		units:       units,
		contracts:   contracts,
		playerUnits: playerUnits,
		statusCache: cache.NewTTL[string, []ContractStatus](),
		userCaches:  userCaches,
	}
	userCaches.Register(s.statusCache)
	return s
}

// DefeatsRequiredFor exposes the rarity defeat thresholds.
func (s *ContractService) DefeatsRequiredFor(rarity models.Rarity) int {
	return rarity.DefeatsRequired()
}

// RecordHumanDefeat upserts the encounter row for a defeated human.
// Non-human units are ignored.
func (s *ContractService) RecordHumanDefeat(ctx context.Context, userID string, unit *models.Unit) error {
	if unit.Kind != models.KindHuman {
		return nil
	}
	if err := s.contracts.RecordDefeat(ctx, userID, unit.UnitID, time.Now().UTC()); err != nil {
		return err
	}
	s.statusCache.Remove(userID)
	return nil
}

// DraftContract creates a recruitment draft once the defeat threshold is met.
// Rare humans consume a Forest parchment, Epic and above a Frontier
// parchment, when parchment gating is enabled.
func (s *ContractService) DraftContract(ctx context.Context, userID string, unitID int) error {
	master, err := s.units.GetByID(ctx, unitID)
	if err != nil {
		return ErrNotFound
	}
	if master.Kind != models.KindHuman {
		return Validationf("Only humans can be drafted.")
	}

	err = s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if err := database.AcquireUserLock(ctx, tx, userID); err != nil {
			return err
		}

		encounter, err := s.contracts.GetEncounter(ctx, userID, unitID)
		if err != nil {
			return err
		}
		defeats := 0
		if encounter != nil {
			defeats = encounter.Defeats
		}
		required := master.Rarity.DefeatsRequired()
		if defeats < required {
			return Validationf("Need %d defeats, you have %d.", required, defeats)
		}

		draft, err := s.contracts.GetActiveDraft(ctx, userID, unitID)
		if err != nil {
			return err
		}
		if draft != nil {
			return fmt.Errorf("%w: contract already drafted for %s", ErrConflict, master.Name)
		}

		if config.EnableParchmentGating {
			if parchment, needed := parchmentFor(master.Rarity); needed {
				ok, err := repositories.ConsumeInventory(ctx, tx, userID, parchment, 1)
				if err != nil {
					return err
				}
				if !ok {
					info, _ := models.GetItemInfo(parchment)
					return Validationf("You need a %s to draft %s.", info.DisplayName, master.Name)
				}
			}
		}

		contract := &models.DraftedContract{
			UserID:    userID,
			UnitID:    unitID,
			DraftedAt: time.Now().UTC(),
		}
		if _, err := tx.NewInsert().Model(contract).Exec(ctx); err != nil {
			return fmt.Errorf("failed to insert draft: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.userCaches.InvalidateUser(userID)
	slog.Info("Contract drafted",
		slog.String("type", "cmd"),
		slog.String("user_id", userID),
		slog.String("unit", master.Name))
	return nil
}

// parchmentFor maps rarity to the required contract parchment. Commons need
// none.
func parchmentFor(rarity models.Rarity) (models.ItemID, bool) {
	switch {
	case rarity == models.RarityCommon:
		return "", false
	case rarity == models.RarityRare:
		return models.ItemForestParchment, true
	default:
		return models.ItemFrontierParchment, true
	}
}

// AcceptDraftedContract consumes a draft and adds the human to the roster,
// joining the party only when there is room.
func (s *ContractService) AcceptDraftedContract(ctx context.Context, userID string, unitID int) (string, error) {
	master, err := s.units.GetByID(ctx, unitID)
	if err != nil {
		return "", ErrNotFound
	}

	err = s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if err := database.AcquireUserLock(ctx, tx, userID); err != nil {
			return err
		}

		// Lock the draft row so two accepts cannot both consume it.
		draft := new(models.DraftedContract)
		err := tx.NewSelect().
			Model(draft).
			Where("user_id = ? AND unit_id = ? AND NOT consumed", userID, unitID).
			For("UPDATE").
			Scan(ctx)
		if err != nil {
			return fmt.Errorf("%w: no drafted contract for %s", ErrNotFound, master.Name)
		}

		armySize, err := countArmy(ctx, tx, userID)
		if err != nil {
			return err
		}
		if err := armyCapacityError(armySize); err != nil {
			return err
		}

		partySize, err := countParty(ctx, tx, userID)
		if err != nil {
			return err
		}

		unit := models.NewPlayerUnit(userID, master, partySize < config.MaxPartySize)
		if _, err := tx.NewInsert().Model(unit).Exec(ctx); err != nil {
			return fmt.Errorf("failed to insert recruited human: %w", err)
		}

		if _, err := tx.NewUpdate().
			Model((*models.DraftedContract)(nil)).
			Set("consumed = TRUE").
			Where("user_id = ? AND unit_id = ? AND NOT consumed", userID, unitID).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to consume draft: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	s.userCaches.InvalidateUser(userID)
	return master.Name, nil
}

// ContractStatus is the per-human view row for the contract board.
type ContractStatus struct {
	Unit          *models.Unit
	Defeats       int
	Required      int
	DraftedActive bool
	Recruited     bool
	LastDefeatAt  *time.Time
}

// ListContractStatus reports progress toward every human master, cached.
func (s *ContractService) ListContractStatus(ctx context.Context, userID string) ([]ContractStatus, error) {
	if cached, ok := s.statusCache.GetWithTTL(userID, config.ContractStatusCacheTTL); ok {
		return cached, nil
	}

	humans, err := s.units.GetHumans(ctx)
	if err != nil {
		return nil, err
	}
	encounters, err := s.contracts.ListEncounters(ctx, userID)
	if err != nil {
		return nil, err
	}
	drafts, err := s.contracts.ListActiveDrafts(ctx, userID)
	if err != nil {
		return nil, err
	}
	owned, err := s.playerUnits.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	encByUnit := make(map[int]*models.HumanEncounter, len(encounters))
	for _, e := range encounters {
		encByUnit[e.UnitID] = e
	}
	draftByUnit := make(map[int]bool, len(drafts))
	for _, d := range drafts {
		draftByUnit[d.UnitID] = true
	}
	ownedByUnit := make(map[int]bool, len(owned))
	for _, u := range owned {
		ownedByUnit[u.UnitID] = true
	}

	statuses := make([]ContractStatus, 0, len(humans))
	for _, human := range humans {
		status := ContractStatus{
			Unit:          human,
			Required:      human.Rarity.DefeatsRequired(),
			DraftedActive: draftByUnit[human.UnitID],
			Recruited:     ownedByUnit[human.UnitID],
		}
		if enc := encByUnit[human.UnitID]; enc != nil {
			status.Defeats = enc.Defeats
			t := enc.LastDefeatedAt
			status.LastDefeatAt = &t
		}
		statuses = append(statuses, status)
	}

	s.statusCache.Insert(userID, statuses)
	return statuses, nil
}

// ListDraftedContracts returns the user's unconsumed drafts.
func (s *ContractService) ListDraftedContracts(ctx context.Context, userID string) ([]*models.DraftedContract, error) {
	return s.contracts.ListActiveDrafts(ctx, userID)
}
