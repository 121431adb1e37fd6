package commands

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"

	"github.com/wardenbot/warden/warden"
	"github.com/wardenbot/warden/warden/config"
	"github.com/wardenbot/warden/warden/database/models"
	"github.com/wardenbot/warden/warden/permissions"
	"github.com/wardenbot/warden/warden/utils"
)

var Mod = discord.SlashCommandCreate{
	Name:         "mod",
	Description:  "Moderation actions",
	DMPermission: boolPtr(false),
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionSubCommand{
			Name:        "kick",
			Description: "Kick a member from the server",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionUser{
					Name:        "user",
					Description: "The member to kick",
					Required:    true,
				},
				discord.ApplicationCommandOptionString{
					Name:        "reason",
					Description: "Why the member is being kicked",
					Required:    true,
					MaxLength:   intPtr(500),
				},
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "ban",
			Description: "Ban a member from the server",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionUser{
					Name:        "user",
					Description: "The member to ban",
					Required:    true,
				},
				discord.ApplicationCommandOptionString{
					Name:        "reason",
					Description: "Why the member is being banned",
					Required:    true,
					MaxLength:   intPtr(500),
				},
				discord.ApplicationCommandOptionInt{
					Name:        "delete_days",
					Description: "How many days of their messages to delete",
					Required:    false,
					MinValue:    intPtr(0),
					MaxValue:    intPtr(7),
				},
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "mute",
			Description: "Mute a member",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionUser{
					Name:        "user",
					Description: "The member to mute",
					Required:    true,
				},
				discord.ApplicationCommandOptionInt{
					Name:        "minutes",
					Description: "How long the mute lasts",
					Required:    true,
					MinValue:    intPtr(1),
					MaxValue:    intPtr(10080),
				},
				discord.ApplicationCommandOptionString{
					Name:        "reason",
					Description: "Why the member is being muted",
					Required:    false,
					MaxLength:   intPtr(500),
				},
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "unmute",
			Description: "Lift a member's mute",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionUser{
					Name:        "user",
					Description: "The member to unmute",
					Required:    true,
				},
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "clear",
			Description: "Bulk delete recent messages in this channel",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionInt{
					Name:        "amount",
					Description: "How many messages to delete",
					Required:    true,
					MinValue:    intPtr(1),
					MaxValue:    intPtr(config.MaxClearAmount),
				},
				discord.ApplicationCommandOptionUser{
					Name:        "user",
					Description: "Only delete messages from this member",
					Required:    false,
				},
			},
		},
	},
}

func ModKickHandler(b *warden.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		if !b.Perms.Has(permissions.SnapshotOf(*e.Member()), permissions.LevelModerator) {
			return utils.EH.CreatePermissionError(e, "You are not allowed to kick members.")
		}

		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()

		data := e.SlashCommandInteractionData()
		target := data.User("user")
		reason := data.String("reason")
		guildID := *e.GuildID()

		if target.ID == e.User().ID {
			return utils.EH.CreateUserError(e, "You cannot kick yourself.")
		}

		notifyTarget(e, target.ID, fmt.Sprintf("You were kicked from the server.\n**Reason:** %s", reason))

		if err := e.Client().Rest().RemoveMember(guildID, target.ID, rest.WithReason(reason)); err != nil {
			return utils.EH.CreateSystemError(e, "Failed to kick the member.")
		}

		recordModAction(ctx, b, guildID, target.ID, e.User().ID, models.ModActionKick, reason, 0)

		return utils.EH.CreateSuccessEmbed(e, fmt.Sprintf("Kicked <@%s>. Reason: %s", target.ID, reason))
	}
}

func ModBanHandler(b *warden.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		if !b.Perms.Has(permissions.SnapshotOf(*e.Member()), permissions.LevelModerator) {
			return utils.EH.CreatePermissionError(e, "You are not allowed to ban members.")
		}

		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()

		data := e.SlashCommandInteractionData()
		target := data.User("user")
		reason := data.String("reason")
		deleteDays, _ := data.OptInt("delete_days")
		guildID := *e.GuildID()

		if target.ID == e.User().ID {
			return utils.EH.CreateUserError(e, "You cannot ban yourself.")
		}

		notifyTarget(e, target.ID, fmt.Sprintf("You were banned from the server.\n**Reason:** %s", reason))

		if err := e.Client().Rest().AddBan(guildID, target.ID, time.Duration(deleteDays)*24*time.Hour, rest.WithReason(reason)); err != nil {
			return utils.EH.CreateSystemError(e, "Failed to ban the member.")
		}

		recordModAction(ctx, b, guildID, target.ID, e.User().ID, models.ModActionBan, reason, 0)

		return utils.EH.CreateSuccessEmbed(e, fmt.Sprintf("Banned <@%s>. Reason: %s", target.ID, reason))
	}
}

func ModMuteHandler(b *warden.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		if !b.Perms.Has(permissions.SnapshotOf(*e.Member()), permissions.LevelModerator) {
			return utils.EH.CreatePermissionError(e, "You are not allowed to mute members.")
		}
		if b.Cfg.Roles.Muted == 0 {
			return utils.EH.CreateSystemError(e, "No muted role is configured.")
		}

		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()

		data := e.SlashCommandInteractionData()
		target := data.User("user")
		minutes := data.Int("minutes")
		reason, _ := data.OptString("reason")
		guildID := *e.GuildID()

		if err := e.Client().Rest().AddMemberRole(guildID, target.ID, b.Cfg.Roles.Muted, rest.WithReason(reason)); err != nil {
			return utils.EH.CreateSystemError(e, "Failed to mute the member.")
		}

		duration := time.Duration(minutes) * time.Minute
		scheduleUnmute(b, guildID, target.ID, duration)

		recordModAction(ctx, b, guildID, target.ID, e.User().ID, models.ModActionMute, reason, int64(minutes))

		return utils.EH.CreateSuccessEmbed(e,
			fmt.Sprintf("Muted <@%s> for %s.", target.ID, utils.FormatDuration(duration)))
	}
}

func ModUnmuteHandler(b *warden.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		if !b.Perms.Has(permissions.SnapshotOf(*e.Member()), permissions.LevelModerator) {
			return utils.EH.CreatePermissionError(e, "You are not allowed to unmute members.")
		}
		if b.Cfg.Roles.Muted == 0 {
			return utils.EH.CreateSystemError(e, "No muted role is configured.")
		}

		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()

		target := e.SlashCommandInteractionData().User("user")
		guildID := *e.GuildID()

		if err := e.Client().Rest().RemoveMemberRole(guildID, target.ID, b.Cfg.Roles.Muted); err != nil {
			return utils.EH.CreateSystemError(e, "Failed to unmute the member.")
		}

		recordModAction(ctx, b, guildID, target.ID, e.User().ID, models.ModActionUnmute, "", 0)

		return utils.EH.CreateSuccessEmbed(e, fmt.Sprintf("Unmuted <@%s>.", target.ID))
	}
}

func ModClearHandler(b *warden.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		if !b.Perms.Has(permissions.SnapshotOf(*e.Member()), permissions.LevelModerator) {
			return utils.EH.CreatePermissionError(e, "You are not allowed to clear messages.")
		}

		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()

		data := e.SlashCommandInteractionData()
		amount := data.Int("amount")
		channelID := e.ChannelID()
		guildID := *e.GuildID()

		var author snowflake.ID
		if target, ok := data.OptUser("user"); ok {
			author = target.ID
		}

		messages, err := e.Client().Rest().GetMessages(channelID, 0, 0, 0, amount)
		if err != nil {
			return utils.EH.CreateSystemError(e, "Failed to fetch messages.")
		}

		ids := deletableMessageIDs(messages, author, time.Now())
		if len(ids) == 0 {
			return utils.EH.CreateUserError(e, "No matching messages young enough to bulk delete were found.")
		}

		if len(ids) == 1 {
			err = e.Client().Rest().DeleteMessage(channelID, ids[0])
		} else {
			err = e.Client().Rest().BulkDeleteMessages(channelID, ids)
		}
		if err != nil {
			return utils.EH.CreateSystemError(e, "Failed to delete messages.")
		}

		logTarget := e.User().ID
		if author != 0 {
			logTarget = author
		}
		recordModAction(ctx, b, guildID, logTarget, e.User().ID, models.ModActionClear,
			fmt.Sprintf("cleared %d messages in <#%s>", len(ids), channelID), 0)

		return e.CreateMessage(discord.MessageCreate{
			Flags: discord.MessageFlagEphemeral,
			Embeds: []discord.Embed{{
				Description: fmt.Sprintf("🧹 Deleted %d messages.", len(ids)),
				Color:       config.SuccessColor,
			}},
		})
	}
}

// deletableMessageIDs filters out messages Discord refuses to bulk delete
// because they are older than two weeks, and keeps only the given author's
// messages when one is set. An author of 0 means no filter.
func deletableMessageIDs(messages []discord.Message, author snowflake.ID, now time.Time) []snowflake.ID {
	cutoff := now.Add(-config.BulkDeleteMaxAge)
	ids := make([]snowflake.ID, 0, len(messages))
	for _, msg := range messages {
		if author != 0 && msg.Author.ID != author {
			continue
		}
		if msg.CreatedAt.After(cutoff) {
			ids = append(ids, msg.ID)
		}
	}
	return ids
}

// memberRoles is the slice of the REST API the unmute callback touches.
type memberRoles interface {
	GetMember(guildID snowflake.ID, userID snowflake.ID, opts ...rest.RequestOpt) (*discord.Member, error)
	RemoveMemberRole(guildID snowflake.ID, userID snowflake.ID, roleID snowflake.ID, opts ...rest.RequestOpt) error
}

func scheduleUnmute(b *warden.Bot, guildID, userID snowflake.ID, duration time.Duration) {
	b.Scheduler.Schedule(duration, unmuteExpiryFunc(b.Client.Rest(), guildID, userID, b.Cfg.Roles.Muted))
}

// unmuteExpiryFunc returns the callback that lifts the muted role once the
// mute runs out. The member is re-fetched first: if they left the guild or
// were unmuted by hand, the callback does nothing.
func unmuteExpiryFunc(rm memberRoles, guildID, userID, mutedRole snowflake.ID) func() {
	return func() {
		member, err := rm.GetMember(guildID, userID)
		if err != nil {
			return
		}
		if !slices.Contains(member.RoleIDs, mutedRole) {
			return
		}
		_ = rm.RemoveMemberRole(guildID, userID, mutedRole)
	}
}

func recordModAction(ctx context.Context, b *warden.Bot, guildID, targetID, moderatorID snowflake.ID, action, reason string, durationMinutes int64) {
	entry := &models.ModerationLog{
		GuildID:     guildID.String(),
		TargetID:    targetID.String(),
		ModeratorID: moderatorID.String(),
		Action:      action,
		Reason:      reason,
		Duration:    durationMinutes,
	}
	if err := b.ModerationRepository.Insert(ctx, entry); err != nil {
		// The action itself already happened; losing the audit row is
		// logged but does not fail the command.
		slog.Error("Failed to record moderation action",
			slog.String("type", "error"),
			slog.String("action", action),
			slog.Any("error", err),
		)
	}
}

func notifyTarget(e *handler.CommandEvent, userID snowflake.ID, message string) {
	// DMs are best effort; many users have them closed.
	dm, err := e.Client().Rest().CreateDMChannel(userID)
	if err != nil {
		return
	}
	_, _ = e.Client().Rest().CreateMessage(dm.ID(), discord.MessageCreate{Content: message})
}
