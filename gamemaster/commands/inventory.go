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

var Inventory = discord.SlashCommandCreate{
	Name:        "inventory",
	Description: "🎒 Your items",
}

const itemsPerPage = 8

func InventoryHandler(b *gamemaster.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := context.WithTimeout(context.Background(), config.CommandExecutionTimeout)
		defer cancel()
		userID := e.User().ID.String()

		entries, err := b.InventoryRepository.ListByUser(ctx, userID)
		if err != nil {
			return utils.EH.CreateErrorEmbed(e, "Failed to load your inventory. Please try again later.")
		}
		if len(entries) == 0 {
			return utils.EH.CreateWarningEmbed(e, "Your bag is empty. Battles and quests fill it.")
		}

		totalPages := int(math.Ceil(float64(len(entries)) / float64(itemsPerPage)))
		return b.Paginator.Create(e.Respond, paginator.Pages{
			ID:      e.ID().String(),
			Creator: e.User().ID,
			PageFunc: func(page int, embed *discord.EmbedBuilder) {
				startIdx := page * itemsPerPage
				endIdx := min(startIdx+itemsPerPage, len(entries))

				var sb strings.Builder
				for _, entry := range entries[startIdx:endIdx] {
					info, ok := models.GetItemInfo(entry.ItemID)
					if !ok {
						continue
					}
					fmt.Fprintf(&sb, "**%s** ×%d\n%s\n\n", info.DisplayName, entry.Quantity, info.Description)
				}

				embed.
					SetTitle("🎒 Inventory").
					SetDescription(sb.String()).
					SetColor(config.InfoColor).
					SetFooter(fmt.Sprintf("Page %d/%d", page+1, totalPages), "")
			},
			Pages:      totalPages,
			ExpireMode: paginator.ExpireModeAfterLastUsage,
		}, false)
	}
}
