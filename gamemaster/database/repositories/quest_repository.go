package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/divijg19/Gamemaster-sub000/gamemaster/database/models"
)

type QuestRepository interface {
	GetQuest(ctx context.Context, questID int) (*models.Quest, error)
	GetRewards(ctx context.Context, questID int) ([]*models.QuestReward, error)
	// ListNeverOffered returns up to limit quest templates the user has no
	// player_quests row for, in random order.
	ListNeverOffered(ctx context.Context, userID string, limit int) ([]*models.Quest, error)
	ListByStatus(ctx context.Context, userID string, status models.QuestStatus) ([]*models.PlayerQuest, error)
	GetPlayerQuest(ctx context.Context, userID string, questID int) (*models.PlayerQuest, error)
	Offer(ctx context.Context, pq *models.PlayerQuest) error
}

type questRepository struct {
	db *bun.DB
}

func NewQuestRepository(db *bun.DB) QuestRepository {
	return &questRepository{db: db}
}

func (r *questRepository) GetQuest(ctx context.Context, questID int) (*models.Quest, error) {
	quest := new(models.Quest)
	err := r.db.NewSelect().
		Model(quest).
		Where("quest_id = ?", questID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("quest %d not found", questID)
		}
		return nil, err
	}
	return quest, nil
}

func (r *questRepository) GetRewards(ctx context.Context, questID int) ([]*models.QuestReward, error) {
	var rewards []*models.QuestReward
	err := r.db.NewSelect().
		Model(&rewards).
		Where("quest_id = ?", questID).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load quest rewards: %w", err)
	}
	return rewards, nil
}

func (r *questRepository) ListNeverOffered(ctx context.Context, userID string, limit int) ([]*models.Quest, error) {
	var quests []*models.Quest
	err := r.db.NewSelect().
		Model(&quests).
		Where("quest_id NOT IN (?)",
			r.db.NewSelect().
				Model((*models.PlayerQuest)(nil)).
				Column("quest_id").
				Where("user_id = ?", userID)).
		OrderExpr("RANDOM()").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list unoffered quests: %w", err)
	}
	return quests, nil
}

func (r *questRepository) ListByStatus(ctx context.Context, userID string, status models.QuestStatus) ([]*models.PlayerQuest, error) {
	var quests []*models.PlayerQuest
	err := r.db.NewSelect().
		Model(&quests).
		Relation("Quest").
		Where("pq.user_id = ? AND pq.status = ?", userID, status).
		Order("pq.offered_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list player quests: %w", err)
	}
	return quests, nil
}

func (r *questRepository) GetPlayerQuest(ctx context.Context, userID string, questID int) (*models.PlayerQuest, error) {
	pq := new(models.PlayerQuest)
	err := r.db.NewSelect().
		Model(pq).
		Relation("Quest").
		Where("pq.user_id = ? AND pq.quest_id = ?", userID, questID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load player quest: %w", err)
	}
	return pq, nil
}

func (r *questRepository) Offer(ctx context.Context, pq *models.PlayerQuest) error {
	_, err := r.db.NewInsert().
		Model(pq).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to offer quest: %w", err)
	}
	return nil
}
