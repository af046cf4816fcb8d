package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/divijg19/Gamemaster-sub000/gamemaster"
	"github.com/divijg19/Gamemaster-sub000/gamemaster/config"
	"github.com/divijg19/Gamemaster-sub000/gamemaster/utils"
)

var Saga = discord.SlashCommandCreate{
	Name:        "saga",
	Description: "📜 View your saga profile: AP, TP, story progress, and party",
}

func SagaHandler(b *gamemaster.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := context.WithTimeout(context.Background(), config.CommandExecutionTimeout)
		defer cancel()
		userID := e.User().ID.String()

		profile, err := b.SagaService.UpdateAndGetProfile(ctx, userID)
		if err != nil {
			return utils.EH.CreateErrorEmbed(e, "Failed to load your saga profile. Please try again later.")
		}
		balance, err := b.ProfileRepository.GetBalance(ctx, userID)
		if err != nil {
			return utils.EH.CreateErrorEmbed(e, "Failed to load your balance. Please try again later.")
		}
		party, err := b.UnitService.GetUserParty(ctx, userID)
		if err != nil {
			return utils.EH.CreateErrorEmbed(e, "Failed to load your party. Please try again later.")
		}

		var sb strings.Builder
		fmt.Fprintf(&sb, "**AP** %d/%d %s\n",
			profile.CurrentAP, profile.MaxAP,
			utils.ProgressBar(float64(profile.CurrentAP)/float64(profile.MaxAP), 10))
		fmt.Fprintf(&sb, "**TP** %d/%d %s\n",
			profile.CurrentTP, profile.MaxTP,
			utils.ProgressBar(float64(profile.CurrentTP)/float64(profile.MaxTP), 10))
		fmt.Fprintf(&sb, "**Story Progress** node %d\n", profile.StoryProgress)
		fmt.Fprintf(&sb, "**Coins** %d\n\n", balance)

		if len(party) == 0 {
			sb.WriteString("*Your party is empty. Visit the tavern!*")
		} else {
			fmt.Fprintf(&sb, "**Party (%d/%d)**\n", len(party), config.MaxPartySize)
			for _, u := range party {
				fmt.Fprintf(&sb, "• %s — Lv.%d %s (⚔%d 🛡%d ❤%d)\n",
					u.Nickname, u.CurrentLevel, u.Rarity,
					u.CurrentAttack, u.CurrentDefense, u.CurrentHealth)
				if u.IsTraining && u.TrainingEndsAt != nil {
					fmt.Fprintf(&sb, "  ↳ training %s until <t:%d:R>\n",
						*u.TrainingStat, u.TrainingEndsAt.Unix())
				}
			}
		}

		now := time.Now()
		return e.CreateMessage(discord.MessageCreate{
			Embeds: []discord.Embed{{
				Title:       "📜 Saga Profile",
				Description: sb.String(),
				Color:       config.InfoColor,
				Footer: &discord.EmbedFooter{
					Text: fmt.Sprintf("Requested by %s", e.User().Username),
				},
				Timestamp: &now,
			}},
		})
	}
}
