package commands

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/divijg19/Gamemaster-sub000/gamemaster"
	"github.com/divijg19/Gamemaster-sub000/gamemaster/battle"
	"github.com/divijg19/Gamemaster-sub000/gamemaster/config"
	"github.com/divijg19/Gamemaster-sub000/gamemaster/database/models"
	"github.com/divijg19/Gamemaster-sub000/gamemaster/services"
	"github.com/divijg19/Gamemaster-sub000/gamemaster/utils"
)

var Battle = discord.SlashCommandCreate{
	Name:        "battle",
	Description: "⚔️ Fight a story map node (costs 1 AP)",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionInt{
			Name:        "node",
			Description: "Map node id",
			Required:    true,
			MinValue:    intPtr(1),
		},
	},
}

// encounterState is one user's running battle plus what victory resolution
// needs.
type encounterState struct {
	session      *battle.Session
	nodeID       int
	nodeName     string
	partyUnitIDs []int64
	enemyUnitIDs []int
	startedAt    time.Time
}

// encounters holds at most one running battle per user.
type encounterStore struct {
	mu       sync.Mutex
	sessions map[string]*encounterState
}

var encounters = &encounterStore{sessions: make(map[string]*encounterState)}

func (s *encounterStore) get(userID string) (*encounterState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.sessions[userID]
	if ok && time.Since(state.startedAt) > 15*time.Minute {
		delete(s.sessions, userID)
		return nil, false
	}
	return state, ok
}

func (s *encounterStore) put(userID string, state *encounterState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[userID] = state
}

func (s *encounterStore) remove(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
}

func BattleHandler(b *gamemaster.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := context.WithTimeout(context.Background(), config.CommandExecutionTimeout)
		defer cancel()
		userID := e.User().ID.String()
		nodeID := e.SlashCommandInteractionData().Int("node")

		if _, running := encounters.get(userID); running {
			return utils.EH.CreateWarningEmbed(e, "You're already in a battle. Finish it first.")
		}

		// Gate by story progress before spending anything.
		profile, err := b.SagaService.UpdateAndGetProfile(ctx, userID)
		if err != nil {
			return utils.EH.CreateErrorEmbed(e, "Failed to load your saga profile. Please try again later.")
		}

		session, node, enemyIDs, err := b.BattleService.LoadEncounter(ctx, userID, nodeID)
		if err != nil {
			return respondServiceError(e, err, "The encounter failed to load. Please try again later.")
		}
		if profile.StoryProgress < node.StoryProgressRequired {
			return utils.EH.CreateWarningEmbed(e,
				fmt.Sprintf("**%s** requires story progress %d (you have %d).",
					node.Name, node.StoryProgressRequired, profile.StoryProgress))
		}

		ok, err := b.SagaService.SpendActionPoints(ctx, userID, 1)
		if err != nil {
			return utils.EH.CreateErrorEmbed(e, "Failed to spend AP. Please try again later.")
		}
		if !ok {
			return utils.EH.CreateWarningEmbed(e, "You're out of AP. It resets daily.")
		}

		partyIDs := make([]int64, 0, len(session.PlayerParty))
		for _, u := range session.PlayerParty {
			partyIDs = append(partyIDs, u.PlayerUnitID)
		}
		encounters.put(userID, &encounterState{
			session:      session,
			nodeID:       node.NodeID,
			nodeName:     node.Name,
			partyUnitIDs: partyIDs,
			enemyUnitIDs: enemyIDs,
			startedAt:    time.Now(),
		})

		return e.CreateMessage(discord.MessageCreate{
			Embeds:     []discord.Embed{battleEmbed(node.Name, session)},
			Components: battleComponents(session),
		})
	}
}

// BattleComponentHandler routes the in-battle buttons. The custom id suffix
// is the action: attack, item, use-item/<id>, cancel-item, contract, recruit,
// flee.
func BattleComponentHandler(b *gamemaster.Bot) handler.ComponentHandler {
	return func(e *handler.ComponentEvent) error {
		ctx, cancel := context.WithTimeout(context.Background(), config.CommandExecutionTimeout)
		defer cancel()
		userID := e.User().ID.String()
		action := strings.TrimPrefix(e.Data.CustomID(), "/battle/")

		state, ok := encounters.get(userID)
		if !ok {
			return utils.EH.CreateEphemeralError(e, "No running battle. Start one with /battle.")
		}
		session := state.session

		switch {
		case action == "attack":
			session.PlayerAttack()
			if !session.Finished() {
				session.ResolveEnemyTurn()
			}

		case action == "item":
			session.BeginItemSelection()

		case action == "cancel-item":
			session.CancelItemSelection()

		case strings.HasPrefix(action, "use-item/"):
			itemID := models.ItemID(strings.TrimPrefix(action, "use-item/"))
			if err := b.BattleService.UseBattleItem(ctx, userID, session, itemID); err != nil {
				if services.IsUserFacing(err) {
					session.RecordOutcome(err.Error())
				} else {
					session.RecordOutcome("The item slipped from your fingers. Try again.")
				}
			} else if !session.Finished() {
				session.ResolveEnemyTurn()
			}

		case action == "contract":
			b.BattleService.AttemptContract(ctx, userID, session)

		case action == "recruit":
			b.BattleService.AttemptRecruit(ctx, userID, session)

		case action == "flee":
			session.Flee()
		}

		if !session.Finished() {
			components := battleComponents(session)
			return e.UpdateMessage(discord.MessageUpdate{
				Embeds:     &[]discord.Embed{battleEmbed(state.nodeName, session)},
				Components: &components,
			})
		}

		encounters.remove(userID)

		switch session.Phase {
		case battle.PhaseVictory:
			// A taming that ended the battle early leaves enemies standing;
			// node rewards only pay out for a full clear.
			if session.FirstLivingEnemy() != nil {
				return e.UpdateMessage(discord.MessageUpdate{
					Embeds:     &[]discord.Embed{battleEmbed(state.nodeName, session)},
					Components: &[]discord.ContainerComponent{},
				})
			}
			log, err := b.BattleService.ResolveNodeVictory(ctx, userID,
				state.nodeID, state.nodeName, state.partyUnitIDs,
				session.VitalityMitigated, state.enemyUnitIDs, false)
			if err != nil {
				return utils.EH.CreateEphemeralError(e, "Victory resolution failed. Please contact an admin.")
			}
			return e.UpdateMessage(discord.MessageUpdate{
				Embeds:     &[]discord.Embed{victoryEmbed(log, session)},
				Components: &[]discord.ContainerComponent{},
			})

		default: // Defeat or Fled
			return e.UpdateMessage(discord.MessageUpdate{
				Embeds:     &[]discord.Embed{battleEmbed(state.nodeName, session)},
				Components: &[]discord.ContainerComponent{},
			})
		}
	}
}

func battleEmbed(nodeName string, s *battle.Session) discord.Embed {
	var sb strings.Builder

	sb.WriteString("**Your Party**\n")
	for _, u := range s.PlayerParty {
		fmt.Fprintf(&sb, "%s %s — %d/%d HP\n", hpIcon(u), u.Name, u.CurrentHP, u.MaxHP)
	}
	sb.WriteString("\n**Enemies**\n")
	for _, u := range s.EnemyParty {
		fmt.Fprintf(&sb, "%s %s — %d/%d HP\n", hpIcon(u), u.Name, u.CurrentHP, u.MaxHP)
	}

	if len(s.Log) > 0 {
		sb.WriteString("\n```\n")
		start := len(s.Log) - 6
		if start < 0 {
			start = 0
		}
		for _, line := range s.Log[start:] {
			sb.WriteString(line + "\n")
		}
		sb.WriteString("```")
	}

	color := config.InfoColor
	switch s.Phase {
	case battle.PhaseVictory:
		color = config.SuccessColor
	case battle.PhaseDefeat, battle.PhaseFled:
		color = config.ErrorColor
	}

	return discord.Embed{
		Title:       fmt.Sprintf("⚔️ %s — %s", nodeName, s.Phase),
		Description: sb.String(),
		Color:       color,
	}
}

func hpIcon(u *battle.Unit) string {
	if !u.Alive() {
		return "💀"
	}
	if u.CurrentHP*2 < u.MaxHP {
		return "🩸"
	}
	return "❤"
}

func battleComponents(s *battle.Session) []discord.ContainerComponent {
	if s.Phase == battle.PhasePlayerSelectingItem {
		row := discord.ActionRowComponent{}
		for _, itemID := range models.BattleUsableItems {
			info, _ := models.GetItemInfo(itemID)
			row = row.AddComponents(
				discord.NewPrimaryButton(info.DisplayName, "/battle/use-item/"+string(itemID)))
		}
		row = row.AddComponents(discord.NewSecondaryButton("Back", "/battle/cancel-item"))
		return []discord.ContainerComponent{row}
	}

	row := discord.ActionRowComponent{}
	row = row.AddComponents(
		discord.NewPrimaryButton("Attack", "/battle/attack"),
		discord.NewSecondaryButton("Use Item", "/battle/item"),
	)
	if human := s.LivingHumanEnemy(); human != nil && !s.QuestBattle {
		row = row.AddComponents(discord.NewSuccessButton("Draft Contract", "/battle/contract"))
	}
	if target := s.FirstLivingEnemy(); target != nil && target.IsRecruitable && !target.IsHuman {
		row = row.AddComponents(discord.NewSuccessButton("Tame", "/battle/recruit"))
	}
	row = row.AddComponents(discord.NewDangerButton("Flee", "/battle/flee"))
	return []discord.ContainerComponent{row}
}

func victoryEmbed(log *services.VictoryLog, s *battle.Session) discord.Embed {
	var sb strings.Builder
	fmt.Fprintf(&sb, "**%s cleared!**\n\n", log.NodeName)
	fmt.Fprintf(&sb, "🪙 %d coins\n", log.Coins)
	for itemID, qty := range log.Loot {
		if info, ok := models.GetItemInfo(itemID); ok {
			fmt.Fprintf(&sb, "📦 %s ×%d\n", info.DisplayName, qty)
		}
	}
	if log.VitalityMitigated > 0 {
		fmt.Fprintf(&sb, "🛡 Your defenses absorbed %d damage\n", log.VitalityMitigated)
	}

	if len(log.LevelUps) > 0 {
		sb.WriteString("\n**Experience**\n")
		for _, res := range log.LevelUps {
			if res.LeveledUp() {
				fmt.Fprintf(&sb, "⬆️ %s: Lv.%d → Lv.%d (+%d⚔ +%d🛡 +%d❤)\n",
					res.Name, res.OldLevel, res.NewLevel,
					res.AttackGain, res.DefenseGain, res.HealthGain)
			} else {
				fmt.Fprintf(&sb, "• %s: +XP (Lv.%d)\n", res.Name, res.NewLevel)
			}
		}
	}

	return discord.Embed{
		Title:       "🏆 Victory!",
		Description: sb.String(),
		Color:       config.SuccessColor,
	}
}
