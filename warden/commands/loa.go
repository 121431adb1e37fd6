package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/wardenbot/warden/warden"
	"github.com/wardenbot/warden/warden/config"
	"github.com/wardenbot/warden/warden/database/models"
	"github.com/wardenbot/warden/warden/database/repositories"
	"github.com/wardenbot/warden/warden/utils"
)

var RequestLOA = discord.SlashCommandCreate{
	Name:         "requestloa",
	Description:  "Request a leave of absence",
	DMPermission: boolPtr(false),
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionString{
			Name:        "reason",
			Description: "Why you need the leave",
			Required:    true,
			MaxLength:   intPtr(500),
		},
		discord.ApplicationCommandOptionInt{
			Name:        "days",
			Description: "Length of the leave in days",
			Required:    true,
			MinValue:    intPtr(models.MinLeaveDays),
			MaxValue:    intPtr(models.MaxLeaveDays),
		},
	},
}

func RequestLOAHandler(b *warden.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()

		userID := e.User().ID
		guildID := *e.GuildID()

		if result := b.Admission.Check(ctx, userID.String(), "loa"); !result.Allowed {
			return utils.EH.CreateBusinessLogicError(e,
				fmt.Sprintf("You can request another leave in %s.", utils.FormatDuration(result.Remaining)))
		}

		data := e.SlashCommandInteractionData()
		request := &models.LeaveRequest{
			RequesterID: userID.String(),
			GuildID:     guildID.String(),
			Reason:      data.String("reason"),
			Days:        data.Int("days"),
		}

		if err := b.LeaveRepository.Create(ctx, request); err != nil {
			if errors.Is(err, repositories.ErrInvalidLeaveDays) {
				return utils.EH.CreateUserError(e,
					fmt.Sprintf("Leave must be between %d and %d days.", models.MinLeaveDays, models.MaxLeaveDays))
			}
			return utils.EH.CreateSystemError(e, "Failed to save your leave request.")
		}

		b.Admission.Arm(ctx, userID.String(), guildID.String(), "loa", time.Duration(b.Cfg.Cooldowns.LeaveRequest)*time.Minute)

		channelID := b.Cfg.Channels.LeaveRequests
		if channelID == 0 {
			channelID = e.ChannelID()
		}

		if _, err := e.Client().Rest().CreateMessage(channelID, discord.MessageCreate{
			Embeds: []discord.Embed{{
				Title:       fmt.Sprintf("📋 Leave Request #%d", request.ID),
				Description: request.Reason,
				Color:       config.WarningColor,
				Fields: []discord.EmbedField{
					{Name: "Requester", Value: fmt.Sprintf("<@%s>", userID), Inline: boolPtr(true)},
					{Name: "Duration", Value: fmt.Sprintf("%d days", request.Days), Inline: boolPtr(true)},
					{Name: "Status", Value: "Pending", Inline: boolPtr(true)},
				},
			}},
			Components: []discord.ContainerComponent{
				discord.NewActionRow(
					discord.NewSuccessButton("✅ Approve", fmt.Sprintf("/loa/approve/%d", request.ID)),
					discord.NewDangerButton("❌ Deny", fmt.Sprintf("/loa/deny/%d", request.ID)),
				),
			},
		}); err != nil {
			return utils.EH.CreateSystemError(e, "Request saved, but posting it for review failed.")
		}

		return utils.EH.CreateSuccessEmbed(e,
			fmt.Sprintf("Leave request #%d submitted for %d days. You will be notified once it is reviewed.", request.ID, request.Days))
	}
}
