package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/divijg19/Gamemaster-sub000/gamemaster"
	"github.com/divijg19/Gamemaster-sub000/gamemaster/config"
	"github.com/divijg19/Gamemaster-sub000/gamemaster/services"
	"github.com/divijg19/Gamemaster-sub000/gamemaster/utils"
)

var Work = discord.SlashCommandCreate{
	Name:        "work",
	Description: "⛏️ Work a shift for coins and job experience",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionString{
			Name:        "job",
			Description: "Profession to work",
			Required:    true,
			Choices: []discord.ApplicationCommandOptionChoiceString{
				{Name: "🎣 Fishing", Value: string(services.JobFishing)},
				{Name: "⛏️ Mining", Value: string(services.JobMining)},
				{Name: "💻 Coding", Value: string(services.JobCoding)},
			},
		},
	},
}

func WorkHandler(b *gamemaster.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := context.WithTimeout(context.Background(), config.CommandExecutionTimeout)
		defer cancel()
		userID := e.User().ID.String()

		job, ok := services.ParseJob(e.SlashCommandInteractionData().String("job"))
		if !ok {
			return utils.EH.CreateWarningEmbed(e, "That's not a profession here.")
		}

		result, err := b.WorkService.Work(ctx, userID, job)
		if err != nil {
			return respondServiceError(e, err, "The shift fell through. Please try again later.")
		}

		var sb strings.Builder
		fmt.Fprintf(&sb, "🪙 Earned **%d** coins\n", result.Coins)
		fmt.Fprintf(&sb, "🔥 Streak: %d\n", result.Streak)
		jobName := jobDisplayName(result.Job)
		if result.LeveledUp {
			fmt.Fprintf(&sb, "⬆️ %s level up! Now Lv.%d\n", jobName, result.JobLevel)
		} else {
			fmt.Fprintf(&sb, "📈 %s Lv.%d (%d XP toward next)\n", jobName, result.JobLevel, result.JobXP)
		}

		return e.CreateMessage(discord.MessageCreate{
			Embeds: []discord.Embed{{
				Title:       "⛏️ Shift Complete",
				Description: sb.String(),
				Color:       config.SuccessColor,
			}},
		})
	}
}

func jobDisplayName(job services.Job) string {
	switch job {
	case services.JobMining:
		return "Mining"
	case services.JobCoding:
		return "Coding"
	default:
		return "Fishing"
	}
}
