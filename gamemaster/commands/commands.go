package commands

import (
	"github.com/disgoorg/disgo/discord"
)

// Commands is the full slash-command surface synced on startup.
var Commands = []discord.ApplicationCommandCreate{
	Saga,
	Tavern,
	Hire,
	Reroll,
	Army,
	Party,
	Train,
	Bond,
	Dismiss,
	Battle,
	Contracts,
	Quests,
	Tasks,
	Inventory,
	Work,
	Metrics,
}
