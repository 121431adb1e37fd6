package commands

import (
	"slices"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/wardenbot/warden/warden"
	"github.com/wardenbot/warden/warden/utils"
)

var Say = discord.SlashCommandCreate{
	Name:         "say",
	Description:  "Post a message as the bot",
	DMPermission: boolPtr(false),
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionString{
			Name:        "message",
			Description: "What the bot should say",
			Required:    true,
			MaxLength:   intPtr(2000),
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

func SayHandler(b *warden.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		if !slices.Contains(b.Cfg.Leave.Approvers, e.User().ID) {
			return utils.EH.CreatePermissionError(e, "You are not allowed to speak through the bot.")
		}

		data := e.SlashCommandInteractionData()
		channelID := e.ChannelID()
		if channel, ok := data.OptChannel("channel"); ok {
			channelID = channel.ID
		}

		if _, err := e.Client().Rest().CreateMessage(channelID, discord.MessageCreate{
			Content: data.String("message"),
		}); err != nil {
			return utils.EH.CreateSystemError(e, "Failed to post the message.")
		}

		return e.CreateMessage(discord.MessageCreate{
			Content: "Sent.",
			Flags:   discord.MessageFlagEphemeral,
		})
	}
}
