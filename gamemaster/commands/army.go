package commands

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/paginator"

	"github.com/divijg19/Gamemaster-sub000/gamemaster"
	"github.com/divijg19/Gamemaster-sub000/gamemaster/config"
	"github.com/divijg19/Gamemaster-sub000/gamemaster/database/models"
	"github.com/divijg19/Gamemaster-sub000/gamemaster/utils"
)

const unitsPerPage = 5

var Army = discord.SlashCommandCreate{
	Name:        "army",
	Description: "⚔️ View every unit you own",
}

var Party = discord.SlashCommandCreate{
	Name:        "party",
	Description: "🛡️ Manage your active party",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionSubCommand{
			Name:        "add",
			Description: "Move a unit into your party",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionString{
					Name:        "name",
					Description: "Unit name",
					Required:    true,
				},
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "remove",
			Description: "Move a unit out of your party",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionString{
					Name:        "name",
					Description: "Unit name",
					Required:    true,
				},
			},
		},
	},
}

var Train = discord.SlashCommandCreate{
	Name:        "train",
	Description: "🏋️ Send a unit to train attack or defense",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionString{
			Name:        "name",
			Description: "Unit name",
			Required:    true,
		},
		discord.ApplicationCommandOptionString{
			Name:        "stat",
			Description: "Stat to train",
			Required:    true,
			Choices: []discord.ApplicationCommandOptionChoiceString{
				{Name: "Attack", Value: string(models.TrainAttack)},
				{Name: "Defense", Value: string(models.TrainDefense)},
			},
		},
		discord.ApplicationCommandOptionInt{
			Name:        "hours",
			Description: "Training duration (1 TP per hour)",
			Required:    false,
			MinValue:    intPtr(1),
			MaxValue:    intPtr(8),
		},
	},
}

var Bond = discord.SlashCommandCreate{
	Name:        "bond",
	Description: "🔗 Equip a pet onto a host unit, or unequip it",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionSubCommand{
			Name:        "equip",
			Description: "Bond a pet to a host",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionString{
					Name:        "host",
					Description: "Host unit name",
					Required:    true,
				},
				discord.ApplicationCommandOptionString{
					Name:        "pet",
					Description: "Pet to equip",
					Required:    true,
				},
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "unequip",
			Description: "Remove the host's equipped pet",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionString{
					Name:        "host",
					Description: "Host unit name",
					Required:    true,
				},
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "list",
			Description: "Show active bonds and their bonuses",
		},
	},
}

var Dismiss = discord.SlashCommandCreate{
	Name:        "dismiss",
	Description: "👋 Dismiss a unit from your army permanently",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionString{
			Name:        "name",
			Description: "Unit name",
			Required:    true,
		},
	},
}

func intPtr(v int) *int {
	return &v
}

func ArmyHandler(b *gamemaster.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := context.WithTimeout(context.Background(), config.CommandExecutionTimeout)
		defer cancel()
		userID := e.User().ID.String()

		units, err := b.UnitService.GetPlayerUnits(ctx, userID)
		if err != nil {
			return utils.EH.CreateErrorEmbed(e, "Failed to load your army. Please try again later.")
		}
		if len(units) == 0 {
			return utils.EH.CreateWarningEmbed(e, "You don't own any units yet. Visit /tavern!")
		}

		bonuses, err := b.UnitService.GetEquipmentBonuses(ctx, userID)
		if err != nil {
			return utils.EH.CreateErrorEmbed(e, "Failed to load your bonds. Please try again later.")
		}

		totalPages := int(math.Ceil(float64(len(units)) / float64(unitsPerPage)))
		return b.Paginator.Create(e.Respond, paginator.Pages{
			ID:      e.ID().String(),
			Creator: e.User().ID,
			PageFunc: func(page int, embed *discord.EmbedBuilder) {
				startIdx := page * unitsPerPage
				endIdx := min(startIdx+unitsPerPage, len(units))

				var sb strings.Builder
				for _, u := range units[startIdx:endIdx] {
					marker := ""
					if u.IsInParty {
						marker = " 🛡️"
					}
					fmt.Fprintf(&sb, "**%s**%s — Lv.%d %s\n", u.Nickname, marker, u.CurrentLevel, u.Rarity)
					fmt.Fprintf(&sb, "⚔%d 🛡%d ❤%d • XP %d\n", u.CurrentAttack, u.CurrentDefense, u.CurrentHealth, u.CurrentXP)
					if bonus, ok := bonuses[u.PlayerUnitID]; ok {
						fmt.Fprintf(&sb, "🔗 bond: +%d⚔ +%d🛡 +%d❤\n", bonus.Attack, bonus.Defense, bonus.Health)
					}
					if u.IsTraining && u.TrainingEndsAt != nil {
						fmt.Fprintf(&sb, "🏋️ training %s until <t:%d:R>\n", *u.TrainingStat, u.TrainingEndsAt.Unix())
					}
					sb.WriteString("\n")
				}

				embed.
					SetTitle(fmt.Sprintf("⚔️ Your Army (%d/%d)", len(units), config.MaxArmySize)).
					SetDescription(sb.String()).
					SetColor(config.InfoColor).
					SetFooter(fmt.Sprintf("Page %d/%d", page+1, totalPages), "")
			},
			Pages:      totalPages,
			ExpireMode: paginator.ExpireModeAfterLastUsage,
		}, false)
	}
}

// resolveOwnedUnit finds the player's unit by nickname, fuzzy-matched.
func resolveOwnedUnit(ctx context.Context, b *gamemaster.Bot, userID, query string) (*models.PlayerUnit, error) {
	units, err := b.UnitService.GetPlayerUnits(ctx, userID)
	if err != nil {
		return nil, err
	}
	unit, ok := utils.FindPlayerUnitByName(units, query)
	if !ok {
		return nil, fmt.Errorf("no unit named '%s'", query)
	}
	return unit, nil
}

func PartyHandler(b *gamemaster.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := context.WithTimeout(context.Background(), config.CommandExecutionTimeout)
		defer cancel()
		userID := e.User().ID.String()
		data := e.SlashCommandInteractionData()

		unit, err := resolveOwnedUnit(ctx, b, userID, data.String("name"))
		if err != nil {
			return utils.EH.CreateWarningEmbed(e, err.Error())
		}

		join := *data.SubCommandName == "add"
		if err := b.UnitService.SetUnitPartyStatus(ctx, userID, unit.PlayerUnitID, join); err != nil {
			return respondServiceError(e, err, "Failed to update your party. Please try again later.")
		}

		if join {
			return utils.EH.CreateSuccessEmbed(e, fmt.Sprintf("🛡️ **%s** joins your party.", unit.Nickname))
		}
		return utils.EH.CreateSuccessEmbed(e, fmt.Sprintf("**%s** returns to the army reserve.", unit.Nickname))
	}
}

func TrainHandler(b *gamemaster.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := context.WithTimeout(context.Background(), config.CommandExecutionTimeout)
		defer cancel()
		userID := e.User().ID.String()
		data := e.SlashCommandInteractionData()

		unit, err := resolveOwnedUnit(ctx, b, userID, data.String("name"))
		if err != nil {
			return utils.EH.CreateWarningEmbed(e, err.Error())
		}

		hours := 1
		if v, ok := data.OptInt("hours"); ok {
			hours = v
		}
		stat := models.TrainingStat(data.String("stat"))

		if err := b.UnitService.StartTraining(ctx, userID, unit.PlayerUnitID, stat, hours, hours); err != nil {
			return respondServiceError(e, err, "Training could not start. Please try again later.")
		}

		return utils.EH.CreateSuccessEmbed(e,
			fmt.Sprintf("🏋️ **%s** trains %s for %dh (%d TP). +1 %s on completion.",
				unit.Nickname, stat, hours, hours, stat))
	}
}

func BondHandler(b *gamemaster.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := context.WithTimeout(context.Background(), config.CommandExecutionTimeout)
		defer cancel()
		userID := e.User().ID.String()
		data := e.SlashCommandInteractionData()

		switch *data.SubCommandName {
		case "equip":
			host, err := resolveOwnedUnit(ctx, b, userID, data.String("host"))
			if err != nil {
				return utils.EH.CreateWarningEmbed(e, err.Error())
			}
			pet, err := resolveOwnedUnit(ctx, b, userID, data.String("pet"))
			if err != nil {
				return utils.EH.CreateWarningEmbed(e, err.Error())
			}
			if err := b.UnitService.BondUnits(ctx, userID, host.PlayerUnitID, pet.PlayerUnitID); err != nil {
				return respondServiceError(e, err, "The bond failed. Please try again later.")
			}
			return utils.EH.CreateSuccessEmbed(e,
				fmt.Sprintf("🔗 **%s** is now equipped to **%s**.", pet.Nickname, host.Nickname))

		case "unequip":
			host, err := resolveOwnedUnit(ctx, b, userID, data.String("host"))
			if err != nil {
				return utils.EH.CreateWarningEmbed(e, err.Error())
			}
			if err := b.UnitService.UnequipEquippable(ctx, userID, host.PlayerUnitID); err != nil {
				return respondServiceError(e, err, "The unequip failed. Please try again later.")
			}
			return utils.EH.CreateSuccessEmbed(e, fmt.Sprintf("**%s** fights alone again.", host.Nickname))

		default: // list
			details, err := b.UnitService.ListActiveBondsDetailed(ctx, userID)
			if err != nil {
				return utils.EH.CreateErrorEmbed(e, "Failed to load your bonds. Please try again later.")
			}
			if len(details) == 0 {
				return utils.EH.CreateWarningEmbed(e, "No active bonds. Use /bond equip.")
			}

			var sb strings.Builder
			for _, d := range details {
				host, equipped := "?", "?"
				if d.Bond.Host != nil {
					host = d.Bond.Host.Nickname
				}
				if d.Bond.Equipped != nil {
					equipped = d.Bond.Equipped.Nickname
				}
				fmt.Fprintf(&sb, "**%s** ← %s: +%d⚔ +%d🛡 +%d❤\n",
					host, equipped, d.Bonus.Attack, d.Bonus.Defense, d.Bonus.Health)
			}
			return e.CreateMessage(discord.MessageCreate{
				Embeds: []discord.Embed{{
					Title:       "🔗 Active Bonds",
					Description: sb.String(),
					Color:       config.InfoColor,
				}},
			})
		}
	}
}

func DismissHandler(b *gamemaster.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := context.WithTimeout(context.Background(), config.CommandExecutionTimeout)
		defer cancel()
		userID := e.User().ID.String()

		unit, err := resolveOwnedUnit(ctx, b, userID, e.SlashCommandInteractionData().String("name"))
		if err != nil {
			return utils.EH.CreateWarningEmbed(e, err.Error())
		}

		name, err := b.UnitService.DismissUnit(ctx, userID, unit.PlayerUnitID)
		if err != nil {
			return respondServiceError(e, err, "The dismissal failed. Please try again later.")
		}
		return utils.EH.CreateSuccessEmbed(e, fmt.Sprintf("👋 **%s** has left your army.", name))
	}
}
