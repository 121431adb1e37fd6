package components

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"

	"github.com/wardenbot/warden/warden"
	"github.com/wardenbot/warden/warden/config"
	"github.com/wardenbot/warden/warden/database/models"
	"github.com/wardenbot/warden/warden/database/repositories"
	"github.com/wardenbot/warden/warden/utils"
)

// roleManager is the slice of the REST API the leave-expiry callback
// touches.
type roleManager interface {
	GetMember(guildID snowflake.ID, userID snowflake.ID, opts ...rest.RequestOpt) (*discord.Member, error)
	RemoveMemberRole(guildID snowflake.ID, userID snowflake.ID, roleID snowflake.ID, opts ...rest.RequestOpt) error
	CreateDMChannel(userID snowflake.ID, opts ...rest.RequestOpt) (*discord.DMChannel, error)
	CreateMessage(channelID snowflake.ID, messageCreate discord.MessageCreate, opts ...rest.RequestOpt) (*discord.Message, error)
}

// LeaveDecisionHandler backs the approve and deny buttons on posted leave
// requests. Only configured approvers may decide.
func LeaveDecisionHandler(b *warden.Bot) handler.ComponentHandler {
	return func(e *handler.ComponentEvent) error {
		decision := e.Vars["decision"]
		if decision != "approve" && decision != "deny" {
			return utils.EH.CreateEphemeralError(e, "Unknown decision.")
		}

		if !slices.Contains(b.Cfg.Leave.Approvers, e.User().ID) {
			return utils.EH.CreateEphemeralError(e, "You are not on the leave approver list.")
		}

		requestID, err := strconv.ParseInt(e.Vars["id"], 10, 64)
		if err != nil {
			return utils.EH.CreateEphemeralError(e, "Malformed request reference.")
		}

		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()

		request, err := b.LeaveRepository.GetByID(ctx, requestID)
		if err != nil {
			if errors.Is(err, repositories.ErrLeaveNotFound) {
				return utils.EH.CreateEphemeralError(e, "This leave request no longer exists.")
			}
			return utils.EH.CreateEphemeralError(e, "Failed to load the request.")
		}

		status := models.LeaveStatusDenied
		if decision == "approve" {
			status = models.LeaveStatusApproved
		}

		if err := b.LeaveRepository.Resolve(ctx, requestID, status, e.User().ID.String()); err != nil {
			if errors.Is(err, repositories.ErrLeaveAlreadyResolved) {
				return utils.EH.CreateEphemeralError(e, "Someone already decided this request.")
			}
			return utils.EH.CreateEphemeralError(e, "Failed to resolve the request.")
		}

		requesterID := snowflake.MustParse(request.RequesterID)
		guildID := *e.GuildID()

		if status == models.LeaveStatusApproved && b.Cfg.Roles.OnLeave != 0 {
			if err := b.Client.Rest().AddMemberRole(guildID, requesterID, b.Cfg.Roles.OnLeave); err == nil {
				duration := time.Duration(request.Days) * 24 * time.Hour
				b.Scheduler.Schedule(duration, leaveExpiryFunc(b.Client.Rest(), guildID, requesterID, b.Cfg.Roles.OnLeave))
			}
		}

		notifyRequester(b, requesterID, request, status, e.User().ID)

		embeds := e.Message.Embeds
		if len(embeds) > 0 {
			embeds[0] = markDecision(embeds[0], status, e.User().ID)
		}

		// Buttons come off so the decision cannot be re-pressed.
		return e.UpdateMessage(discord.MessageUpdate{
			Embeds:     &embeds,
			Components: &[]discord.ContainerComponent{},
		})
	}
}

// leaveExpiryFunc returns the callback that lifts the on-leave role once
// the approved period ends and tells the requester their leave is over.
// The member is re-fetched first: if they left the guild or the role was
// removed by hand, the callback does nothing.
func leaveExpiryFunc(rm roleManager, guildID, userID, role snowflake.ID) func() {
	return func() {
		member, err := rm.GetMember(guildID, userID)
		if err != nil {
			return
		}
		if !slices.Contains(member.RoleIDs, role) {
			return
		}
		if err := rm.RemoveMemberRole(guildID, userID, role); err != nil {
			return
		}

		// DMs are best effort; many users have them closed.
		dm, err := rm.CreateDMChannel(userID)
		if err != nil {
			return
		}
		_, _ = rm.CreateMessage(dm.ID(), discord.MessageCreate{
			Content: "Your leave of absence has ended. Welcome back!",
		})
	}
}

func markDecision(embed discord.Embed, status string, decidedBy snowflake.ID) discord.Embed {
	var label string
	switch status {
	case models.LeaveStatusApproved:
		label = fmt.Sprintf("Approved by <@%s>", decidedBy)
		embed.Color = config.SuccessColor
	default:
		label = fmt.Sprintf("Denied by <@%s>", decidedBy)
		embed.Color = config.ErrorColor
	}

	for i, field := range embed.Fields {
		if field.Name == "Status" {
			embed.Fields[i].Value = label
			return embed
		}
	}
	embed.Fields = append(embed.Fields, discord.EmbedField{Name: "Status", Value: label})
	return embed
}

func notifyRequester(b *warden.Bot, requesterID snowflake.ID, request *models.LeaveRequest, status string, decidedBy snowflake.ID) {
	// DMs are best effort; many users have them closed.
	dm, err := b.Client.Rest().CreateDMChannel(requesterID)
	if err != nil {
		return
	}

	var message string
	if status == models.LeaveStatusApproved {
		message = fmt.Sprintf("Your leave request #%d for %d days was **approved** by <@%s>. Enjoy your time off!",
			request.ID, request.Days, decidedBy)
	} else {
		message = fmt.Sprintf("Your leave request #%d was **denied** by <@%s>.", request.ID, decidedBy)
	}

	_, _ = b.Client.Rest().CreateMessage(dm.ID(), discord.MessageCreate{Content: message})
}
