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
	"github.com/divijg19/Gamemaster-sub000/gamemaster/utils"
)

var Contracts = discord.SlashCommandCreate{
	Name:        "contracts",
	Description: "📜 Human recruitment contracts",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionSubCommand{
			Name:        "status",
			Description: "Defeat progress toward every human",
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "draft",
			Description: "Draft a contract for a defeated human",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionString{
					Name:        "name",
					Description: "Human name",
					Required:    true,
				},
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "accept",
			Description: "Accept a drafted contract",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionString{
					Name:        "name",
					Description: "Human name",
					Required:    true,
				},
			},
		},
	},
}

const contractsPerPage = 6

func ContractsHandler(b *gamemaster.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := context.WithTimeout(context.Background(), config.CommandExecutionTimeout)
		defer cancel()
		userID := e.User().ID.String()
		data := e.SlashCommandInteractionData()

		switch *data.SubCommandName {
		case "draft":
			return contractDraft(ctx, b, e, userID, data.String("name"))
		case "accept":
			return contractAccept(ctx, b, e, userID, data.String("name"))
		default:
			return contractStatus(ctx, b, e, userID)
		}
	}
}

func contractStatus(ctx context.Context, b *gamemaster.Bot, e *handler.CommandEvent, userID string) error {
	statuses, err := b.ContractService.ListContractStatus(ctx, userID)
	if err != nil {
		return utils.EH.CreateErrorEmbed(e, "Failed to load contract progress. Please try again later.")
	}
	if len(statuses) == 0 {
		return utils.EH.CreateWarningEmbed(e, "No humans roam the map yet.")
	}

	totalPages := int(math.Ceil(float64(len(statuses)) / float64(contractsPerPage)))
	return b.Paginator.Create(e.Respond, paginator.Pages{
		ID:      e.ID().String(),
		Creator: e.User().ID,
		PageFunc: func(page int, embed *discord.EmbedBuilder) {
			startIdx := page * contractsPerPage
			endIdx := min(startIdx+contractsPerPage, len(statuses))

			var sb strings.Builder
			for _, st := range statuses[startIdx:endIdx] {
				switch {
				case st.Recruited:
					fmt.Fprintf(&sb, "✅ **%s** (%s) — recruited\n", st.Unit.Name, st.Unit.Rarity)
				case st.DraftedActive:
					fmt.Fprintf(&sb, "📜 **%s** (%s) — contract drafted, /contracts accept\n",
						st.Unit.Name, st.Unit.Rarity)
				default:
					bar := utils.ProgressBar(float64(st.Defeats)/float64(st.Required), 10)
					fmt.Fprintf(&sb, "⚔ **%s** (%s) — %d/%d defeats %s\n",
						st.Unit.Name, st.Unit.Rarity, st.Defeats, st.Required, bar)
				}
			}

			embed.
				SetTitle("📜 Contract Board").
				SetDescription(sb.String()).
				SetColor(config.InfoColor).
				SetFooter(fmt.Sprintf("Page %d/%d", page+1, totalPages), "")
		},
		Pages:      totalPages,
		ExpireMode: paginator.ExpireModeAfterLastUsage,
	}, false)
}

func contractDraft(ctx context.Context, b *gamemaster.Bot, e *handler.CommandEvent, userID, query string) error {
	humans, err := b.UnitRepository.GetHumans(ctx)
	if err != nil {
		return utils.EH.CreateErrorEmbed(e, "Failed to load humans. Please try again later.")
	}
	human, ok := utils.FindUnitByName(humans, query)
	if !ok {
		return utils.EH.CreateWarningEmbed(e, fmt.Sprintf("No human called '%s'.", query))
	}

	if err := b.ContractService.DraftContract(ctx, userID, human.UnitID); err != nil {
		return respondServiceError(e, err, "The draft failed. Please try again later.")
	}
	return utils.EH.CreateSuccessEmbed(e,
		fmt.Sprintf("📜 Contract drafted for **%s**! Accept it with /contracts accept.", human.Name))
}

func contractAccept(ctx context.Context, b *gamemaster.Bot, e *handler.CommandEvent, userID, query string) error {
	humans, err := b.UnitRepository.GetHumans(ctx)
	if err != nil {
		return utils.EH.CreateErrorEmbed(e, "Failed to load humans. Please try again later.")
	}
	human, ok := utils.FindUnitByName(humans, query)
	if !ok {
		return utils.EH.CreateWarningEmbed(e, fmt.Sprintf("No human called '%s'.", query))
	}

	name, err := b.ContractService.AcceptDraftedContract(ctx, userID, human.UnitID)
	if err != nil {
		return respondServiceError(e, err, "The acceptance failed. Please try again later.")
	}
	return utils.EH.CreateSuccessEmbed(e, fmt.Sprintf("🤝 **%s** signs on and joins your forces!", name))
}
