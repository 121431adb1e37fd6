package commands

import (
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/wardenbot/warden/warden"
	"github.com/wardenbot/warden/warden/config"
	"github.com/wardenbot/warden/warden/permissions"
	"github.com/wardenbot/warden/warden/utils"
)

var ServerWarning = discord.SlashCommandCreate{
	Name:         "serverwarning",
	Description:  "Post a server-wide warning announcement",
	DMPermission: boolPtr(false),
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionString{
			Name:        "message",
			Description: "The warning to announce",
			Required:    true,
			MaxLength:   intPtr(1500),
		},
		discord.ApplicationCommandOptionChannel{
			Name:        "channel",
			Description: "Where to post it (defaults to here)",
			Required:    false,
			ChannelTypes: []discord.ChannelType{
				discord.ChannelTypeGuildText,
			},
		},
	},
}

func ServerWarningHandler(b *warden.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		if !b.Perms.Has(permissions.SnapshotOf(*e.Member()), permissions.LevelAdmin) {
			return utils.EH.CreatePermissionError(e, "Only administrators can post server warnings.")
		}

		data := e.SlashCommandInteractionData()
		channelID := e.ChannelID()
		if channel, ok := data.OptChannel("channel"); ok {
			channelID = channel.ID
		}

		if _, err := e.Client().Rest().CreateMessage(channelID, discord.MessageCreate{
			Embeds: []discord.Embed{{
				Title:       "⚠️ Server Warning",
				Description: data.String("message"),
				Color:       config.WarningColor,
				Footer: &discord.EmbedFooter{
					Text: "Posted by the moderation team",
				},
			}},
		}); err != nil {
			return utils.EH.CreateSystemError(e, "Failed to post the warning.")
		}

		return e.CreateMessage(discord.MessageCreate{
			Content: "Warning posted.",
			Flags:   discord.MessageFlagEphemeral,
		})
	}
}
