package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/divijg19/Gamemaster-sub000/gamemaster"
	"github.com/divijg19/Gamemaster-sub000/gamemaster/config"
	"github.com/divijg19/Gamemaster-sub000/gamemaster/services"
	"github.com/divijg19/Gamemaster-sub000/gamemaster/utils"
)

var Tavern = discord.SlashCommandCreate{
	Name:        "tavern",
	Description: "🍺 Browse today's recruits",
}

var Hire = discord.SlashCommandCreate{
	Name:        "hire",
	Description: "🪙 Hire a recruit from today's tavern rotation",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionString{
			Name:        "name",
			Description: "Recruit name",
			Required:    true,
		},
	},
}

var Reroll = discord.SlashCommandCreate{
	Name:        "reroll",
	Description: "🎲 Reroll today's tavern rotation",
}

func TavernHandler(b *gamemaster.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := context.WithTimeout(context.Background(), config.CommandExecutionTimeout)
		defer cancel()

		state, err := b.TavernService.BuildTavernState(ctx, e.User().ID.String())
		if err != nil {
			return respondServiceError(e, err, "The tavern is closed right now. Please try again later.")
		}

		var sb strings.Builder
		if len(state.Units) == 0 {
			sb.WriteString("*Nobody worth hiring today. Try a reroll.*\n")
		}
		for _, u := range state.Units {
			fmt.Fprintf(&sb, "**%s** — %s %s • ⚔%d 🛡%d ❤%d • %d coins\n",
				u.Name, u.Rarity, u.Kind,
				u.BaseAttack, u.BaseDefense, u.BaseHealth,
				services.HireCost(u.Rarity))
		}

		meta := state.Meta
		sb.WriteString("\n")
		fmt.Fprintf(&sb, "Favor tier %d %s\n", meta.FavorTier, utils.ProgressBar(meta.FavorProgress, 10))
		fmt.Fprintf(&sb, "Rerolls used today: %d/%d (cost %d coins)\n",
			meta.DailyRerollsUsed, meta.MaxDailyRerolls, meta.RerollCost)
		fmt.Fprintf(&sb, "Your coins: %d", meta.Balance)

		now := time.Now()
		return e.CreateMessage(discord.MessageCreate{
			Embeds: []discord.Embed{{
				Title:       "🍺 The Wandering Gamemaster's Tavern",
				Description: sb.String(),
				Color:       config.SuccessColor,
				Timestamp:   &now,
			}},
		})
	}
}

func HireHandler(b *gamemaster.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := context.WithTimeout(context.Background(), config.CommandExecutionTimeout)
		defer cancel()
		userID := e.User().ID.String()
		query := e.SlashCommandInteractionData().String("name")

		state, err := b.TavernService.BuildTavernState(ctx, userID)
		if err != nil {
			return respondServiceError(e, err, "The tavern is closed right now. Please try again later.")
		}

		unit, ok := utils.FindUnitByName(state.Units, query)
		if !ok {
			return utils.EH.CreateWarningEmbed(e, fmt.Sprintf("Nobody called '%s' is in the tavern today.", query))
		}

		cost := services.HireCost(unit.Rarity)
		name, err := b.UnitService.HireUnit(ctx, userID, unit.UnitID, cost)
		if err != nil {
			return respondServiceError(e, err, "The hire fell through. Please try again later.")
		}

		if err := b.TavernService.AddFame(ctx, userID, 1); err == nil {
			_ = b.TaskService.UpdateTaskProgress(ctx, userID, "HireUnit", 1)
		}

		return utils.EH.CreateSuccessEmbed(e,
			fmt.Sprintf("🤝 **%s** joins you for %d coins!", name, cost))
	}
}

func RerollHandler(b *gamemaster.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := context.WithTimeout(context.Background(), config.CommandExecutionTimeout)
		defer cancel()
		userID := e.User().ID.String()

		err := b.TavernService.Reroll(ctx, userID)
		if err != nil {
			if errors.Is(err, services.ErrNotFound) {
				return utils.EH.CreateWarningEmbed(e,
					fmt.Sprintf("No rerolls left today (%d/%d).",
						config.TavernMaxDailyRerolls, config.TavernMaxDailyRerolls))
			}
			return respondServiceError(e, err, "The reroll failed. Please try again later.")
		}

		return utils.EH.CreateSuccessEmbed(e,
			fmt.Sprintf("🎲 Rotation rerolled for %d coins. Check /tavern!", config.TavernRerollCost))
	}
}
