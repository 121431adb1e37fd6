package commands

import (
	"fmt"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/snowflake/v2"
	"golang.org/x/sync/errgroup"

	"github.com/wardenbot/warden/warden"
	"github.com/wardenbot/warden/warden/config"
	"github.com/wardenbot/warden/warden/permissions"
	"github.com/wardenbot/warden/warden/utils"
)

var Lockdown = discord.SlashCommandCreate{
	Name:         "lockdown",
	Description:  "Lock or unlock every text channel",
	DMPermission: boolPtr(false),
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionSubCommand{
			Name:        "lock",
			Description: "Prevent everyone from sending messages",
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "unlock",
			Description: "Restore message sending",
		},
	},
}

func LockdownLockHandler(b *warden.Bot) handler.CommandHandler {
	return lockdownHandler(b, true)
}

func LockdownUnlockHandler(b *warden.Bot) handler.CommandHandler {
	return lockdownHandler(b, false)
}

func lockdownHandler(b *warden.Bot, lock bool) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		if !b.Perms.Has(permissions.SnapshotOf(*e.Member()), permissions.LevelAdmin) {
			return utils.EH.CreatePermissionError(e, "Only administrators can manage a lockdown.")
		}

		guildID := *e.GuildID()

		if err := e.DeferCreateMessage(false); err != nil {
			return fmt.Errorf("failed to defer message: %w", err)
		}

		channels, err := e.Client().Rest().GetGuildChannels(guildID)
		if err != nil {
			_, err = e.UpdateInteractionResponse(discord.MessageUpdate{
				Embeds: &[]discord.Embed{{
					Description: "Failed to list the guild channels.",
					Color:       config.ErrorColor,
				}},
			})
			return err
		}

		var g errgroup.Group
		g.SetLimit(4)

		var changed int
		for _, channel := range channels {
			if channel.Type() != discord.ChannelTypeGuildText {
				continue
			}
			changed++

			g.Go(func() error {
				return setChannelLock(b, guildID, channel, lock)
			})
		}

		verb := "locked"
		if !lock {
			verb = "unlocked"
		}

		if err := g.Wait(); err != nil {
			_, err = e.UpdateInteractionResponse(discord.MessageUpdate{
				Embeds: &[]discord.Embed{{
					Description: fmt.Sprintf("Some channels could not be %s: %s", verb, err),
					Color:       config.ErrorColor,
				}},
			})
			return err
		}

		_, err = e.UpdateInteractionResponse(discord.MessageUpdate{
			Embeds: &[]discord.Embed{{
				Title:       "🔒 Lockdown",
				Description: fmt.Sprintf("%d channels %s.", changed, verb),
				Color:       config.WarningColor,
			}},
		})
		return err
	}
}

// setChannelLock flips the @everyone SendMessages and AddReactions deny
// bits on one channel, preserving the rest of the overwrite.
func setChannelLock(b *warden.Bot, guildID snowflake.ID, channel discord.GuildChannel, lock bool) error {
	var allow, deny discord.Permissions
	for _, overwrite := range channel.PermissionOverwrites() {
		if role, ok := overwrite.(discord.RolePermissionOverwrite); ok && role.RoleID == guildID {
			allow = role.Allow
			deny = role.Deny
			break
		}
	}

	locked := discord.PermissionSendMessages | discord.PermissionAddReactions
	if lock {
		deny = deny.Add(locked)
		allow = allow.Remove(locked)
	} else {
		deny = deny.Remove(locked)
	}

	return b.Client.Rest().UpdatePermissionOverwrite(channel.ID(), guildID, discord.RolePermissionOverwriteUpdate{
		Allow: &allow,
		Deny:  &deny,
	})
}
