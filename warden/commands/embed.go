package commands

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/wardenbot/warden/warden"
	"github.com/wardenbot/warden/warden/config"
	"github.com/wardenbot/warden/warden/permissions"
	"github.com/wardenbot/warden/warden/utils"
)

var Embed = discord.SlashCommandCreate{
	Name:         "embed",
	Description:  "Post a custom embed as the bot",
	DMPermission: boolPtr(false),
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionString{
			Name:        "title",
			Description: "Title of the embed",
			Required:    true,
			MaxLength:   intPtr(256),
		},
		discord.ApplicationCommandOptionString{
			Name:        "description",
			Description: "Body text of the embed",
			Required:    true,
			MaxLength:   intPtr(4000),
		},
		discord.ApplicationCommandOptionString{
			Name:        "color",
			Description: "Hex color like #FF0000 (defaults to the server color)",
			Required:    false,
		},
		discord.ApplicationCommandOptionString{
			Name:        "footer",
			Description: "Footer text",
			Required:    false,
			MaxLength:   intPtr(2048),
		},
		discord.ApplicationCommandOptionChannel{
			Name:        "channel",
			Description: "Where to post it (defaults to here)",
			Required:    false,
			ChannelTypes: []discord.ChannelType{
				discord.ChannelTypeGuildText,
			},
		},
		discord.ApplicationCommandOptionString{
			Name:        "thumbnail",
			Description: "URL for the thumbnail image",
			Required:    false,
		},
		discord.ApplicationCommandOptionString{
			Name:        "image",
			Description: "URL for the main image",
			Required:    false,
		},
	},
}

func EmbedHandler(b *warden.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		if !b.Perms.Has(permissions.SnapshotOf(*e.Member()), permissions.LevelModerator) {
			return utils.EH.CreatePermissionError(e, "Only staff can post embeds through the bot.")
		}

		data := e.SlashCommandInteractionData()

		color := config.InfoColor
		if raw, ok := data.OptString("color"); ok {
			parsed, err := parseEmbedColor(raw)
			if err != nil {
				return utils.EH.CreateUserError(e, "Invalid color. Use hex format like #FF0000.")
			}
			color = parsed
		}

		embed := discord.Embed{
			Title:       data.String("title"),
			Description: data.String("description"),
			Color:       color,
		}
		if footer, ok := data.OptString("footer"); ok {
			embed.Footer = &discord.EmbedFooter{Text: footer}
		}
		if thumbnail, ok := data.OptString("thumbnail"); ok {
			if !isHTTPURL(thumbnail) {
				return utils.EH.CreateUserError(e, "The thumbnail must be an http(s) URL.")
			}
			embed.Thumbnail = &discord.EmbedResource{URL: thumbnail}
		}
		if image, ok := data.OptString("image"); ok {
			if !isHTTPURL(image) {
				return utils.EH.CreateUserError(e, "The image must be an http(s) URL.")
			}
			embed.Image = &discord.EmbedResource{URL: image}
		}

		channelID := e.ChannelID()
		if channel, ok := data.OptChannel("channel"); ok {
			channelID = channel.ID
		}

		if _, err := e.Client().Rest().CreateMessage(channelID, discord.MessageCreate{
			Embeds: []discord.Embed{embed},
		}); err != nil {
			return utils.EH.CreateSystemError(e, "Failed to post the embed.")
		}

		return e.CreateMessage(discord.MessageCreate{
			Content: fmt.Sprintf("Embed posted in <#%s>.", channelID),
			Flags:   discord.MessageFlagEphemeral,
		})
	}
}

var embedColorPattern = regexp.MustCompile(`^[0-9A-Fa-f]{6}$`)

// parseEmbedColor turns a hex color, with or without the leading #, into
// the integer form embeds use.
func parseEmbedColor(raw string) (int, error) {
	hex := strings.TrimPrefix(raw, "#")
	if !embedColorPattern.MatchString(hex) {
		return 0, fmt.Errorf("invalid hex color %q", raw)
	}
	value, err := strconv.ParseInt(hex, 16, 32)
	if err != nil {
		return 0, err
	}
	return int(value), nil
}

func isHTTPURL(raw string) bool {
	return strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://")
}
