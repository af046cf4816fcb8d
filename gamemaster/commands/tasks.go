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

var Tasks = discord.SlashCommandCreate{
	Name:        "tasks",
	Description: "📋 Daily and weekly tasks",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionSubCommand{
			Name:        "view",
			Description: "Show your current tasks",
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "claim",
			Description: "Claim a completed task's reward",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionInt{
					Name:        "id",
					Description: "Task assignment id",
					Required:    true,
				},
			},
		},
	},
}

func TasksHandler(b *gamemaster.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := context.WithTimeout(context.Background(), config.CommandExecutionTimeout)
		defer cancel()
		userID := e.User().ID.String()
		data := e.SlashCommandInteractionData()

		if *data.SubCommandName == "claim" {
			tpl, err := b.TaskService.ClaimTaskReward(ctx, userID, int64(data.Int("id")))
			if err != nil {
				return respondServiceError(e, err, "The claim failed. Please try again later.")
			}

			var sb strings.Builder
			fmt.Fprintf(&sb, "✅ **%s** claimed!\n", tpl.Name)
			if tpl.RewardCoins > 0 {
				fmt.Fprintf(&sb, "🪙 %d coins\n", tpl.RewardCoins)
			}
			if tpl.RewardItem != nil && tpl.RewardItemQty > 0 {
				if info, ok := models.GetItemInfo(*tpl.RewardItem); ok {
					fmt.Fprintf(&sb, "📦 %s ×%d\n", info.DisplayName, tpl.RewardItemQty)
				}
			}
			return utils.EH.CreateSuccessEmbed(e, sb.String())
		}

		board, err := b.TaskService.GetOrAssignPlayerTasks(ctx, userID)
		if err != nil {
			return utils.EH.CreateErrorEmbed(e, "Failed to load your tasks. Please try again later.")
		}

		var sb strings.Builder
		writeTasks := func(header string, tasks []*models.PlayerTask) {
			fmt.Fprintf(&sb, "**%s**\n", header)
			if len(tasks) == 0 {
				sb.WriteString("*none*\n")
			}
			for _, t := range tasks {
				if t.Task == nil {
					continue
				}
				switch {
				case t.ClaimedAt != nil:
					fmt.Fprintf(&sb, "✅ `#%d` %s — claimed\n", t.PlayerTaskID, t.Task.Name)
				case t.Completed:
					fmt.Fprintf(&sb, "🎁 `#%d` %s — done! /tasks claim\n", t.PlayerTaskID, t.Task.Name)
				default:
					bar := utils.ProgressBar(float64(t.Progress)/float64(t.Task.ObjectiveGoal), 10)
					fmt.Fprintf(&sb, "▫️ `#%d` %s — %d/%d %s\n",
						t.PlayerTaskID, t.Task.Name, t.Progress, t.Task.ObjectiveGoal, bar)
				}
			}
			sb.WriteString("\n")
		}
		writeTasks("Daily", board.Daily)
		writeTasks("Weekly", board.Weekly)

		return e.CreateMessage(discord.MessageCreate{
			Embeds: []discord.Embed{{
				Title:       "📋 Tasks",
				Description: sb.String(),
				Color:       config.InfoColor,
			}},
		})
	}
}
