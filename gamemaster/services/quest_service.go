package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"log/slog"

	"github.com/uptrace/bun"

	"github.com/divijg19/Gamemaster-sub000/gamemaster/cache"
	"github.com/divijg19/Gamemaster-sub000/gamemaster/config"
	"github.com/divijg19/Gamemaster-sub000/gamemaster/database"
	"github.com/divijg19/Gamemaster-sub000/gamemaster/database/models"
	"github.com/divijg19/Gamemaster-sub000/gamemaster/database/repositories"
)

// QuestService runs the quest board: offers, acceptance, and completion.
type QuestService struct {
	db     *bun.DB
	quests repositories.QuestRepository

	boardCache *cache.TTL[string, []*models.PlayerQuest]
	userCaches *cache.UserCaches
}

func NewQuestService(db *bun.DB, quests repositories.QuestRepository, userCaches *cache.UserCaches) *QuestService {
	s := &QuestService{
		db:         db,
		quests:     quests,
		boardCache: cache.NewTTL[string, []*models.PlayerQuest](),
		userCaches: userCaches,
	}
	userCaches.Register(s.boardCache)
	return s
}

// GetOrRefreshQuestBoard returns the user's offered quests, drawing new ones
// from the never-offered pool when the board is empty. A quest is offered to
// a user at most once, ever.
func (s *QuestService) GetOrRefreshQuestBoard(ctx context.Context, userID string) ([]*models.PlayerQuest, error) {
	if cached, ok := s.boardCache.GetWithTTL(userID, config.QuestBoardCacheTTL); ok {
		return cached, nil
	}

	offered, err := s.quests.ListByStatus(ctx, userID, models.QuestOffered)
	if err != nil {
		return nil, err
	}
	if len(offered) == 0 {
		fresh, err := s.quests.ListNeverOffered(ctx, userID, config.QuestBoardSize)
		if err != nil {
			return nil, err
		}
		now := time.Now().UTC()
		for _, quest := range fresh {
			pq := &models.PlayerQuest{
				UserID:    userID,
				QuestID:   quest.QuestID,
				Status:    models.QuestOffered,
				OfferedAt: now,
			}
			if err := s.quests.Offer(ctx, pq); err != nil {
				return nil, err
			}
		}
		if len(fresh) > 0 {
			offered, err = s.quests.ListByStatus(ctx, userID, models.QuestOffered)
			if err != nil {
				return nil, err
			}
			slog.Debug("Quest board refreshed",
				slog.String("type", "sys"),
				slog.String("user_id", userID),
				slog.Int("offers", len(offered)))
		}
	}

	s.boardCache.Insert(userID, offered)
	return offered, nil
}

// AcceptQuest moves an offered quest to Accepted.
func (s *QuestService) AcceptQuest(ctx context.Context, userID string, questID int) (*models.Quest, error) {
	quest, err := s.quests.GetQuest(ctx, questID)
	if err != nil {
		return nil, ErrNotFound
	}

	res, err := s.db.NewUpdate().
		Model((*models.PlayerQuest)(nil)).
		Set("status = ?", models.QuestAccepted).
		Set("accepted_at = ?", time.Now().UTC()).
		Where("user_id = ? AND quest_id = ? AND status = ?", userID, questID, models.QuestOffered).
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to accept quest: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return nil, Validationf("That quest isn't on your board.")
	}

	s.boardCache.Remove(userID)
	return quest, nil
}

// QuestOutcome summarizes a completed quest's payout.
type QuestOutcome struct {
	Quest *models.Quest
	Coins int64
	Items map[models.ItemID]int64
}

// CompleteQuest resolves an accepted quest and pays the reward bundle in one
// transaction. Battle quests are completed by the battle flow after the node
// victory; riddle quests verify the answer here.
func (s *QuestService) CompleteQuest(ctx context.Context, userID string, questID int, answer string) (*QuestOutcome, error) {
	quest, err := s.quests.GetQuest(ctx, questID)
	if err != nil {
		return nil, ErrNotFound
	}
	pq, err := s.quests.GetPlayerQuest(ctx, userID, questID)
	if err != nil {
		return nil, err
	}
	if pq == nil || pq.Status != models.QuestAccepted {
		return nil, Validationf("You haven't accepted that quest.")
	}

	if quest.Type == models.QuestTypeRiddle {
		if quest.Answer == nil || !strings.EqualFold(strings.TrimSpace(answer), *quest.Answer) {
			return nil, Validationf("That's not the answer.")
		}
	}

	rewards, err := s.quests.GetRewards(ctx, questID)
	if err != nil {
		return nil, err
	}

	outcome := &QuestOutcome{Quest: quest, Items: make(map[models.ItemID]int64)}
	err = s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if err := database.AcquireUserLock(ctx, tx, userID); err != nil {
			return err
		}

		// The status flip is the payout gate against double completion.
		res, err := tx.NewUpdate().
			Model((*models.PlayerQuest)(nil)).
			Set("status = ?", models.QuestCompleted).
			Set("resolved_at = ?", time.Now().UTC()).
			Where("user_id = ? AND quest_id = ? AND status = ?", userID, questID, models.QuestAccepted).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to complete quest: %w", err)
		}
		if affected, _ := res.RowsAffected(); affected == 0 {
			return fmt.Errorf("%w: quest already resolved", ErrConflict)
		}

		for _, reward := range rewards {
			if reward.Coins > 0 {
				outcome.Coins += reward.Coins
				profile := &models.Profile{UserID: userID, Balance: reward.Coins, FishingLevel: 1, MiningLevel: 1, CodingLevel: 1}
				if _, err := tx.NewInsert().
					Model(profile).
					On("CONFLICT (user_id) DO UPDATE").
					Set("balance = p.balance + EXCLUDED.balance").
					Exec(ctx); err != nil {
					return fmt.Errorf("failed to credit quest coins: %w", err)
				}
			}
			if reward.ItemID != nil && reward.Quantity > 0 {
				outcome.Items[*reward.ItemID] += reward.Quantity
				if err := repositories.AddInventory(ctx, tx, userID, *reward.ItemID, reward.Quantity); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.userCaches.InvalidateUser(userID)
	slog.Info("Quest completed",
		slog.String("type", "cmd"),
		slog.String("user_id", userID),
		slog.String("quest", quest.Name))
	return outcome, nil
}

// FailQuest marks an accepted quest Failed (battle quest lost or abandoned).
func (s *QuestService) FailQuest(ctx context.Context, userID string, questID int) error {
	res, err := s.db.NewUpdate().
		Model((*models.PlayerQuest)(nil)).
		Set("status = ?", models.QuestFailed).
		Set("resolved_at = ?", time.Now().UTC()).
		Where("user_id = ? AND quest_id = ? AND status = ?", userID, questID, models.QuestAccepted).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to fail quest: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return Validationf("You haven't accepted that quest.")
	}
	s.boardCache.Remove(userID)
	return nil
}

// ListAcceptedQuests returns the user's in-flight quests.
func (s *QuestService) ListAcceptedQuests(ctx context.Context, userID string) ([]*models.PlayerQuest, error) {
	return s.quests.ListByStatus(ctx, userID, models.QuestAccepted)
}
