package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"

	"github.com/wardenbot/warden/warden"
	"github.com/wardenbot/warden/warden/config"
	"github.com/wardenbot/warden/warden/database/models"
	"github.com/wardenbot/warden/warden/database/repositories"
	"github.com/wardenbot/warden/warden/permissions"
	"github.com/wardenbot/warden/warden/utils"
)

var Ticket = discord.SlashCommandCreate{
	Name:         "ticket",
	Description:  "Support ticket management",
	DMPermission: boolPtr(false),
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionSubCommand{
			Name:        "create",
			Description: "Open a new support ticket",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionString{
					Name:        "category",
					Description: "What the ticket is about",
					Required:    true,
					Choices: []discord.ApplicationCommandOptionChoiceString{
						{Name: "General Support", Value: "general"},
						{Name: "Bug Report", Value: "bug"},
						{Name: "Feature Request", Value: "feature"},
						{Name: "Appeal", Value: "appeal"},
						{Name: "Other", Value: "other"},
					},
				},
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "close",
			Description: "Close the ticket in this channel",
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "add",
			Description: "Add a user to the ticket in this channel",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionUser{
					Name:        "user",
					Description: "The user to add",
					Required:    true,
				},
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "remove",
			Description: "Remove a user from the ticket in this channel",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionUser{
					Name:        "user",
					Description: "The user to remove",
					Required:    true,
				},
			},
		},
	},
}

func TicketCreateHandler(b *warden.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()

		userID := e.User().ID
		guildID := *e.GuildID()

		if result := b.Admission.Check(ctx, userID.String(), "ticket"); !result.Allowed {
			return utils.EH.CreateBusinessLogicError(e,
				fmt.Sprintf("You can open another ticket in %s.", utils.FormatDuration(result.Remaining)))
		}

		if err := ensureNoOpenTicket(ctx, b.TicketRepository, userID.String(), guildID.String()); err != nil {
			if errors.Is(err, errTicketAlreadyOpen) {
				return utils.EH.CreateBusinessLogicError(e, "You already have an open ticket.")
			}
			return utils.EH.CreateSystemError(e, "Failed to look up your tickets.")
		}

		category := e.SlashCommandInteractionData().String("category")

		overwrites := ticketOverwrites(guildID, userID, e.Client().ApplicationID(), b.Cfg.Roles.Moderator, b.Cfg.Roles.Admin)

		channel, err := e.Client().Rest().CreateGuildChannel(guildID, discord.GuildTextChannelCreate{
			Name:                 ticketChannelName(e.User().Username),
			ParentID:             b.Cfg.Channels.TicketCategory,
			Topic:                fmt.Sprintf("%s ticket for %s", models.TicketCategoryName(category), e.User().Username),
			PermissionOverwrites: overwrites,
		})
		if err != nil {
			return utils.EH.CreateSystemError(e, "Failed to create the ticket channel.")
		}

		ticket := &models.Ticket{
			TicketID:  e.ID().String(),
			OwnerID:   userID.String(),
			GuildID:   guildID.String(),
			ChannelID: channel.ID().String(),
			Category:  category,
		}
		if err := b.TicketRepository.Create(ctx, ticket); err != nil {
			// The channel exists but the row does not; remove the channel
			// so the user is not left with an untracked ticket.
			_ = e.Client().Rest().DeleteChannel(channel.ID())
			return utils.EH.CreateSystemError(e, "Failed to record the ticket.")
		}

		b.Admission.Arm(ctx, userID.String(), guildID.String(), "ticket", time.Duration(b.Cfg.Cooldowns.Ticket)*time.Minute)

		if _, err := e.Client().Rest().CreateMessage(channel.ID(), discord.MessageCreate{
			Content: fmt.Sprintf("<@%s>", userID),
			Embeds: []discord.Embed{{
				Title:       fmt.Sprintf("🎫 %s", models.TicketCategoryName(category)),
				Description: "A staff member will be with you shortly. Describe your issue in as much detail as you can.",
				Color:       config.InfoColor,
			}},
			Components: []discord.ContainerComponent{
				discord.NewActionRow(
					discord.NewDangerButton("🔒 Close Ticket", "/ticket/close"),
				),
			},
		}); err != nil {
			return utils.EH.CreateSystemError(e, "Ticket created, but the welcome message failed.")
		}

		return utils.EH.CreateSuccessEmbed(e, fmt.Sprintf("Your ticket is ready: <#%s>", channel.ID()))
	}
}

func TicketCloseHandler(b *warden.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()

		ticket, err := b.TicketRepository.GetOpenByChannel(ctx, e.ChannelID().String())
		if err != nil {
			if errors.Is(err, repositories.ErrTicketNotFound) {
				return utils.EH.CreateNotFoundError(e, "This channel is not an open ticket.")
			}
			return utils.EH.CreateSystemError(e, "Failed to look up this ticket.")
		}

		if !CanCloseTicket(ticket, e.User().ID, permissions.SnapshotOf(*e.Member()), b.Perms) {
			return utils.EH.CreatePermissionError(e, "Only the ticket owner or staff can close this ticket.")
		}

		if err := CloseTicket(ctx, b, ticket, e.User().ID); err != nil {
			if errors.Is(err, repositories.ErrTicketAlreadyClosed) {
				return utils.EH.CreateBusinessLogicError(e, "This ticket is already being closed.")
			}
			return utils.EH.CreateSystemError(e, "Failed to close the ticket.")
		}

		return utils.EH.CreateSuccessEmbed(e,
			fmt.Sprintf("Ticket closed. This channel will be deleted in %s.", utils.FormatDuration(config.TicketDeleteDelay)))
	}
}

func TicketAddHandler(b *warden.Bot) handler.CommandHandler {
	return ticketMembershipHandler(b, true)
}

func TicketRemoveHandler(b *warden.Bot) handler.CommandHandler {
	return ticketMembershipHandler(b, false)
}

func ticketMembershipHandler(b *warden.Bot, add bool) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()

		ticket, err := b.TicketRepository.GetOpenByChannel(ctx, e.ChannelID().String())
		if err != nil {
			if errors.Is(err, repositories.ErrTicketNotFound) {
				return utils.EH.CreateNotFoundError(e, "This channel is not an open ticket.")
			}
			return utils.EH.CreateSystemError(e, "Failed to look up this ticket.")
		}

		if !b.Perms.Has(permissions.SnapshotOf(*e.Member()), permissions.LevelModerator) {
			return utils.EH.CreatePermissionError(e, "Only staff can manage ticket participants.")
		}

		target := e.SlashCommandInteractionData().User("user")
		if add {
			err = e.Client().Rest().UpdatePermissionOverwrite(e.ChannelID(), target.ID, discord.MemberPermissionOverwriteUpdate{
				Allow: permissionsPtr(discord.PermissionViewChannel | discord.PermissionSendMessages | discord.PermissionReadMessageHistory),
			})
		} else {
			if target.ID.String() == ticket.OwnerID {
				return utils.EH.CreateUserError(e, "The ticket owner cannot be removed.")
			}
			err = e.Client().Rest().DeletePermissionOverwrite(e.ChannelID(), target.ID)
		}
		if err != nil {
			return utils.EH.CreateSystemError(e, "Failed to update channel access.")
		}

		if add {
			return utils.EH.CreateSuccessEmbed(e, fmt.Sprintf("Added <@%s> to the ticket.", target.ID))
		}
		return utils.EH.CreateSuccessEmbed(e, fmt.Sprintf("Removed <@%s> from the ticket.", target.ID))
	}
}

var errTicketAlreadyOpen = errors.New("owner already has an open ticket")

// ensureNoOpenTicket enforces the one-open-ticket-per-owner rule before a
// new row is inserted.
func ensureNoOpenTicket(ctx context.Context, repo repositories.TicketRepository, ownerID, guildID string) error {
	_, err := repo.GetOpenByOwner(ctx, ownerID, guildID)
	if err == nil {
		return errTicketAlreadyOpen
	}
	if errors.Is(err, repositories.ErrTicketNotFound) {
		return nil
	}
	return err
}

// ticketOverwrites builds the channel permission set for a fresh ticket:
// @everyone is shut out, the owner and the bot can see and post, and the
// staff roles can see and post. The bot also needs ManageChannels so the
// deferred deletion can run without guild-wide Administrator.
func ticketOverwrites(guildID, ownerID, botID, moderatorRole, adminRole snowflake.ID) []discord.PermissionOverwrite {
	memberAccess := discord.PermissionViewChannel | discord.PermissionSendMessages | discord.PermissionReadMessageHistory

	overwrites := []discord.PermissionOverwrite{
		discord.RolePermissionOverwrite{
			// @everyone shares its ID with the guild
			RoleID: guildID,
			Deny:   discord.PermissionViewChannel,
		},
		discord.MemberPermissionOverwrite{
			UserID: ownerID,
			Allow:  memberAccess,
		},
		discord.MemberPermissionOverwrite{
			UserID: botID,
			Allow:  memberAccess | discord.PermissionManageChannels,
		},
	}
	for _, role := range []snowflake.ID{moderatorRole, adminRole} {
		if role != 0 {
			overwrites = append(overwrites, discord.RolePermissionOverwrite{
				RoleID: role,
				Allow:  memberAccess,
			})
		}
	}
	return overwrites
}

// CanCloseTicket reports whether the caller may close the ticket. Closing
// is limited to the ticket owner and moderators.
func CanCloseTicket(ticket *models.Ticket, caller snowflake.ID, snap permissions.Snapshot, perms permissions.Resolver) bool {
	return ticket.OwnerID == caller.String() || perms.Has(snap, permissions.LevelModerator)
}

// CloseTicket closes the ticket row and schedules the channel deletion.
// The delay gives participants a moment to save anything they need.
func CloseTicket(ctx context.Context, b *warden.Bot, ticket *models.Ticket, closedBy snowflake.ID) error {
	if err := b.TicketRepository.Close(ctx, ticket.TicketID, closedBy.String()); err != nil {
		return err
	}

	channelID := snowflake.MustParse(ticket.ChannelID)
	client := b.Client
	b.Scheduler.Schedule(config.TicketDeleteDelay, func() {
		if err := client.Rest().DeleteChannel(channelID); err != nil && !isChannelGone(err) {
			slog.Error("Failed to delete ticket channel",
				slog.String("type", "error"),
				slog.String("channel_id", channelID.String()),
				slog.Any("error", err),
			)
		}
	})
	return nil
}

// isChannelGone reports whether the API says the channel no longer
// exists, which makes a failed deletion harmless.
func isChannelGone(err error) bool {
	var restErr rest.Error
	return errors.As(err, &restErr) && restErr.Response != nil && restErr.Response.StatusCode == http.StatusNotFound
}

func ticketChannelName(username string) string {
	name := strings.ToLower(username)
	name = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			return r
		}
		return -1
	}, name)
	if name == "" {
		name = "user"
	}
	return "ticket-" + name
}

func permissionsPtr(p discord.Permissions) *discord.Permissions {
	return &p
}
