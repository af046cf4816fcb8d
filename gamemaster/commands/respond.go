package commands

import (
	"github.com/disgoorg/disgo/handler"

	"github.com/divijg19/Gamemaster-sub000/gamemaster/services"
	"github.com/divijg19/Gamemaster-sub000/gamemaster/utils"
)

// respondServiceError renders rule violations verbatim and hides everything
// else behind a generic message.
func respondServiceError(e *handler.CommandEvent, err error, fallback string) error {
	if services.IsUserFacing(err) {
		return utils.EH.CreateWarningEmbed(e, err.Error())
	}
	return utils.EH.CreateErrorEmbed(e, fallback)
}
