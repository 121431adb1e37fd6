package components

import (
	"context"
	"errors"
	"fmt"

	"github.com/disgoorg/disgo/handler"

	"github.com/wardenbot/warden/warden"
	"github.com/wardenbot/warden/warden/commands"
	"github.com/wardenbot/warden/warden/config"
	"github.com/wardenbot/warden/warden/database/repositories"
	"github.com/wardenbot/warden/warden/permissions"
	"github.com/wardenbot/warden/warden/utils"
)

// TicketCloseHandler backs the close button posted in every ticket channel.
func TicketCloseHandler(b *warden.Bot) handler.ComponentHandler {
	return func(e *handler.ComponentEvent) error {
		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()

		ticket, err := b.TicketRepository.GetOpenByChannel(ctx, e.ChannelID().String())
		if err != nil {
			if errors.Is(err, repositories.ErrTicketNotFound) {
				return utils.EH.CreateEphemeralError(e, "This channel is not an open ticket.")
			}
			return utils.EH.CreateEphemeralError(e, "Failed to look up this ticket.")
		}

		if !commands.CanCloseTicket(ticket, e.User().ID, permissions.SnapshotOf(*e.Member()), b.Perms) {
			return utils.EH.CreateEphemeralError(e, "Only the ticket owner or staff can close this ticket.")
		}

		if err := commands.CloseTicket(ctx, b, ticket, e.User().ID); err != nil {
			if errors.Is(err, repositories.ErrTicketAlreadyClosed) {
				return utils.EH.CreateEphemeralError(e, "This ticket is already being closed.")
			}
			return utils.EH.CreateEphemeralError(e, "Failed to close the ticket.")
		}

		return utils.EH.CreateEphemeralSuccess(e,
			fmt.Sprintf("Ticket closed. This channel will be deleted in %s.", utils.FormatDuration(config.TicketDeleteDelay)))
	}
}
