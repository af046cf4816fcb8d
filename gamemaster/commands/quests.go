package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/divijg19/Gamemaster-sub000/gamemaster"
	"github.com/divijg19/Gamemaster-sub000/gamemaster/config"
	"github.com/divijg19/Gamemaster-sub000/gamemaster/database/models"
	"github.com/divijg19/Gamemaster-sub000/gamemaster/utils"
)

var Quests = discord.SlashCommandCreate{
	Name:        "quests",
	Description: "🗺️ The quest board",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionSubCommand{
			Name:        "board",
			Description: "Show offered and accepted quests",
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "accept",
			Description: "Accept an offered quest",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionInt{
					Name:        "id",
					Description: "Quest id",
					Required:    true,
				},
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "complete",
			Description: "Turn in an accepted quest",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionInt{
					Name:        "id",
					Description: "Quest id",
					Required:    true,
				},
				discord.ApplicationCommandOptionString{
					Name:        "answer",
					Description: "Riddle answer, if the quest asks one",
					Required:    false,
				},
			},
		},
	},
}

func QuestsHandler(b *gamemaster.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := context.WithTimeout(context.Background(), config.CommandExecutionTimeout)
		defer cancel()
		userID := e.User().ID.String()
		data := e.SlashCommandInteractionData()

		switch *data.SubCommandName {
		case "accept":
			quest, err := b.QuestService.AcceptQuest(ctx, userID, data.Int("id"))
			if err != nil {
				return respondServiceError(e, err, "Failed to accept the quest. Please try again later.")
			}
			return utils.EH.CreateSuccessEmbed(e, fmt.Sprintf("🗺️ Accepted **%s**. Good luck!", quest.Name))

		case "complete":
			answer, _ := data.OptString("answer")
			outcome, err := b.QuestService.CompleteQuest(ctx, userID, data.Int("id"), answer)
			if err != nil {
				return respondServiceError(e, err, "Failed to complete the quest. Please try again later.")
			}

			var sb strings.Builder
			fmt.Fprintf(&sb, "🎉 **%s** complete!\n", outcome.Quest.Name)
			if outcome.Coins > 0 {
				fmt.Fprintf(&sb, "🪙 %d coins\n", outcome.Coins)
			}
			for itemID, qty := range outcome.Items {
				if info, ok := models.GetItemInfo(itemID); ok {
					fmt.Fprintf(&sb, "📦 %s ×%d\n", info.DisplayName, qty)
				}
			}
			return utils.EH.CreateSuccessEmbed(e, sb.String())

		default:
			return questBoard(ctx, b, e, userID)
		}
	}
}

func questBoard(ctx context.Context, b *gamemaster.Bot, e *handler.CommandEvent, userID string) error {
	offered, err := b.QuestService.GetOrRefreshQuestBoard(ctx, userID)
	if err != nil {
		return utils.EH.CreateErrorEmbed(e, "Failed to load the quest board. Please try again later.")
	}
	accepted, err := b.QuestService.ListAcceptedQuests(ctx, userID)
	if err != nil {
		return utils.EH.CreateErrorEmbed(e, "Failed to load your quests. Please try again later.")
	}

	var sb strings.Builder
	sb.WriteString("**Offered**\n")
	if len(offered) == 0 {
		sb.WriteString("*The board is bare. Come back after your next adventure.*\n")
	}
	for _, pq := range offered {
		if pq.Quest == nil {
			continue
		}
		fmt.Fprintf(&sb, "`#%d` **%s** (%s)\n%s\n", pq.QuestID, pq.Quest.Name, pq.Quest.Type, pq.Quest.Description)
	}

	if len(accepted) > 0 {
		sb.WriteString("\n**Accepted**\n")
		for _, pq := range accepted {
			if pq.Quest == nil {
				continue
			}
			fmt.Fprintf(&sb, "`#%d` **%s** (%s)\n", pq.QuestID, pq.Quest.Name, pq.Quest.Type)
		}
	}

	return e.CreateMessage(discord.MessageCreate{
		Embeds: []discord.Embed{{
			Title:       "🗺️ Quest Board",
			Description: sb.String(),
			Color:       config.InfoColor,
		}},
	})
}
