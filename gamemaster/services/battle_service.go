package services

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"

	"log/slog"

	"github.com/uptrace/bun"

	"github.com/divijg19/Gamemaster-sub000/gamemaster/battle"
	"github.com/divijg19/Gamemaster-sub000/gamemaster/database/models"
	"github.com/divijg19/Gamemaster-sub000/gamemaster/database/repositories"
	"github.com/divijg19/Gamemaster-sub000/gamemaster/leveling"
)

// BattleService resolves node encounters: enemy loading, the victory
// transaction, and the battle-item path.
type BattleService struct {
	db        *bun.DB
	nodes     repositories.NodeRepository
	units     repositories.UnitRepository
	unitSvc   *UnitService
	saga      *SagaService
	contracts *ContractService
	tasks     *TaskService
}

func NewBattleService(
	db *bun.DB,
	nodes repositories.NodeRepository,
	units repositories.UnitRepository,
	unitSvc *UnitService,
	saga *SagaService,
	contracts *ContractService,
	tasks *TaskService,
) *BattleService {
	return &BattleService{
		db:        db,
		nodes:     nodes,
		units:     units,
		unitSvc:   unitSvc,
		saga:      saga,
		contracts: contracts,
		tasks:     tasks,
	}
}

// LoadEncounter builds the battle snapshot for a node: party on one side,
// the node's enemies on the other. Nodes without declared enemies get a
// generated group that is persisted for determinism on revisits.
func (s *BattleService) LoadEncounter(ctx context.Context, userID string, nodeID int) (*battle.Session, *models.MapNode, []int, error) {
	node, err := s.nodes.GetNode(ctx, nodeID)
	if err != nil {
		return nil, nil, nil, ErrNotFound
	}

	party, err := s.unitSvc.GetUserParty(ctx, userID)
	if err != nil {
		return nil, nil, nil, err
	}
	if len(party) == 0 {
		return nil, nil, nil, Validationf("You need at least one unit in your party.")
	}

	enemies, err := s.nodes.GetEnemies(ctx, nodeID)
	if err != nil {
		return nil, nil, nil, err
	}
	var enemyMasters []*models.Unit
	for _, e := range enemies {
		if e.Unit != nil {
			enemyMasters = append(enemyMasters, e.Unit)
		}
	}
	if len(enemyMasters) == 0 {
		enemyMasters, err = s.generateNodeEnemies(ctx, node)
		if err != nil {
			return nil, nil, nil, err
		}
	}
	if len(enemyMasters) == 0 {
		return nil, nil, nil, Validationf("%s holds no enemies to fight.", node.Name)
	}

	bonuses, err := s.unitSvc.GetEquipmentBonuses(ctx, userID)
	if err != nil {
		return nil, nil, nil, err
	}

	playerUnits := make([]*battle.Unit, 0, len(party))
	for _, pu := range party {
		bonus := bonuses[pu.PlayerUnitID]
		hp := pu.CurrentHealth + bonus.Health
		playerUnits = append(playerUnits, &battle.Unit{
			Name:         pu.Nickname,
			UnitID:       pu.UnitID,
			PlayerUnitID: pu.PlayerUnitID,
			CurrentHP:    hp,
			MaxHP:        hp,
			Attack:       pu.CurrentAttack + bonus.Attack,
			Defense:      pu.CurrentDefense + bonus.Defense,
		})
	}

	enemyUnits := make([]*battle.Unit, 0, len(enemyMasters))
	enemyIDs := make([]int, 0, len(enemyMasters))
	for _, master := range enemyMasters {
		enemyUnits = append(enemyUnits, &battle.Unit{
			Name:          master.Name,
			UnitID:        master.UnitID,
			CurrentHP:     master.BaseHealth,
			MaxHP:         master.BaseHealth,
			Attack:        master.BaseAttack,
			Defense:       master.BaseDefense,
			IsRecruitable: master.IsRecruitable,
			IsHuman:       master.Kind == models.KindHuman,
		})
		enemyIDs = append(enemyIDs, master.UnitID)
	}

	return battle.NewSession(playerUnits, enemyUnits, false), node, enemyIDs, nil
}

// generateNodeEnemies fills an empty node with up to 3 non-human units at or
// above a tier derived from the node's story requirement, persisting the
// join rows so later visits meet the same group.
func (s *BattleService) generateNodeEnemies(ctx context.Context, node *models.MapNode) ([]*models.Unit, error) {
	all, err := s.units.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	minRank := node.StoryProgressRequired / 4
	if minRank > models.RarityLegendary.Rank() {
		minRank = models.RarityLegendary.Rank()
	}

	var pool []*models.Unit
	for _, u := range all {
		if u.Kind != models.KindHuman && u.Rarity.Rank() >= minRank {
			pool = append(pool, u)
		}
	}
	if len(pool) == 0 {
		return nil, nil
	}

	// Shuffle in a tight block before any further I/O.
	rand.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	if len(pool) > 3 {
		pool = pool[:3]
	}

	err = s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		for _, u := range pool {
			enemy := &models.NodeEnemy{NodeID: node.NodeID, UnitID: u.UnitID}
			if _, err := tx.NewInsert().
				Model(enemy).
				On("CONFLICT (node_id, unit_id) DO NOTHING").
				Exec(ctx); err != nil {
				return fmt.Errorf("failed to persist generated enemy: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Debug("Generated node enemies",
		slog.String("type", "sys"),
		slog.Int("node_id", node.NodeID),
		slog.Int("count", len(pool)))
	return pool, nil
}

// VictoryLog enumerates everything a node victory granted.
type VictoryLog struct {
	NodeName          string
	Coins             int64
	Loot              map[models.ItemID]int64
	VitalityMitigated int
	LevelUps          []leveling.Result
}

// ResolveNodeVictory applies the full victory transaction: loot rolls,
// research drops, human defeat recording, reward credit, story advance, and
// task progress events.
func (s *BattleService) ResolveNodeVictory(
	ctx context.Context,
	userID string,
	nodeID int,
	nodeName string,
	partyUnitIDs []int64,
	vitalityMitigated int,
	enemyUnitIDs []int,
	focusActive bool,
) (*VictoryLog, error) {
	node, err := s.nodes.GetNode(ctx, nodeID)
	if err != nil {
		return nil, ErrNotFound
	}
	rewards, err := s.nodes.GetRewards(ctx, nodeID)
	if err != nil {
		return nil, err
	}
	enemies, err := s.units.GetByIDs(ctx, enemyUnitIDs)
	if err != nil {
		return nil, err
	}

	// All rolls happen in one tight block; the RNG is not held across any
	// database call below.
	loot := make(map[models.ItemID]int64)
	for _, reward := range rewards {
		if rand.Float64() < reward.DropChance {
			loot[reward.ItemID] += reward.Quantity
		}
	}
	var researchDrops []models.ItemID
	for _, enemy := range enemies {
		if enemy.Kind != models.KindPet {
			continue
		}
		item, ok := models.ResearchItemForUnit(enemy.Name)
		if !ok {
			continue
		}
		if chance := enemy.Rarity.ResearchDropChance(); chance > 0 && rand.Float64() < chance {
			researchDrops = append(researchDrops, item)
		}
	}
	for _, item := range researchDrops {
		loot[item]++
	}

	// Defeat recording runs sequentially after the rolls.
	for _, enemy := range enemies {
		if enemy.Kind == models.KindHuman {
			if err := s.contracts.RecordHumanDefeat(ctx, userID, enemy); err != nil {
				return nil, err
			}
		}
	}

	xp := node.RewardUnitXP
	if focusActive {
		xp += xp / 2
	}

	levelUps, err := s.unitSvc.ApplyBattleRewards(ctx, userID, node.RewardCoins, loot, partyUnitIDs, xp)
	if err != nil {
		return nil, err
	}

	if err := s.saga.AdvanceStoryProgress(ctx, userID, nodeID); err != nil {
		return nil, err
	}

	// Task events fire after the reward commit; a lost event cannot corrupt
	// state.
	if err := s.tasks.UpdateTaskProgress(ctx, userID, fmt.Sprintf("WinBattle:%d", nodeID), 1); err != nil {
		slog.Warn("Failed to record node task progress",
			slog.String("type", "err"),
			slog.String("user_id", userID),
			slog.Any("error", err))
	}
	if err := s.tasks.UpdateTaskProgress(ctx, userID, "WinBattle", 1); err != nil {
		slog.Warn("Failed to record battle task progress",
			slog.String("type", "err"),
			slog.String("user_id", userID),
			slog.Any("error", err))
	}

	name := nodeName
	if name == "" {
		name = node.Name
	}
	return &VictoryLog{
		NodeName:          name,
		Coins:             node.RewardCoins,
		Loot:              loot,
		VitalityMitigated: vitalityMitigated,
		LevelUps:          levelUps,
	}, nil
}

// UseBattleItem consumes a whitelisted potion transactionally and applies
// the heal to the session. Nothing is consumed when no ally needs healing.
func (s *BattleService) UseBattleItem(ctx context.Context, userID string, session *battle.Session, itemID models.ItemID) error {
	if !models.IsBattleUsable(itemID) {
		return Validationf("That item can't be used in battle.")
	}
	info, ok := models.GetItemInfo(itemID)
	if !ok {
		return ErrNotFound
	}
	if session.HealTarget() == nil {
		session.CancelItemSelection()
		return Validationf("Nobody needs healing right now.")
	}

	err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		ok, err := repositories.ConsumeInventory(ctx, tx, userID, itemID, 1)
		if err != nil {
			return err
		}
		if !ok {
			return Validationf("You don't have a %s.", info.DisplayName)
		}
		return nil
	})
	if err != nil {
		return err
	}

	session.ApplyHeal(info.DisplayName, info.HealAmount)
	return nil
}

// AttemptContract drafts the first living human enemy mid-battle. The turn
// does not advance either way. Disabled during quest battles.
func (s *BattleService) AttemptContract(ctx context.Context, userID string, session *battle.Session) {
	if session.QuestBattle {
		session.RecordOutcome("Contracts are sealed during quest battles.")
		return
	}
	target := session.LivingHumanEnemy()
	if target == nil {
		session.RecordOutcome("No human enemy to draft.")
		return
	}

	if err := s.contracts.DraftContract(ctx, userID, target.UnitID); err != nil {
		if IsUserFacing(err) {
			session.RecordOutcome(err.Error())
		} else {
			slog.Error("Draft failed",
				slog.String("type", "err"),
				slog.String("user_id", userID),
				slog.Any("error", err))
			session.RecordOutcome("The contract slipped away. Please try again.")
		}
		return
	}
	session.RecordOutcome(fmt.Sprintf("Contract drafted for %s!", target.Name))
}

// AttemptRecruit targets the first living enemy: humans go through the
// draft pipeline, pets through taming. A successful taming ends the battle
// early.
func (s *BattleService) AttemptRecruit(ctx context.Context, userID string, session *battle.Session) {
	target := session.FirstLivingEnemy()
	if target == nil {
		session.RecordOutcome("No enemy left to recruit.")
		return
	}

	if target.IsHuman {
		s.AttemptContract(ctx, userID, session)
		return
	}

	message, err := s.unitSvc.AttemptRecruitUnit(ctx, userID, target.UnitID)
	if err != nil {
		if IsUserFacing(err) {
			session.RecordOutcome(err.Error())
		} else {
			slog.Error("Recruit failed",
				slog.String("type", "err"),
				slog.String("user_id", userID),
				slog.Any("error", err))
			session.RecordOutcome("The taming failed. Please try again.")
		}
		return
	}
	session.EndEarly(message)
}
