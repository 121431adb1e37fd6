package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/wardenbot/warden/warden"
	"github.com/wardenbot/warden/warden/config"
	"github.com/wardenbot/warden/warden/database/models"
	"github.com/wardenbot/warden/warden/utils"
)

var Suggest = discord.SlashCommandCreate{
	Name:         "suggest",
	Description:  "Submit a suggestion for the server",
	DMPermission: boolPtr(false),
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionString{
			Name:        "text",
			Description: "Your suggestion",
			Required:    true,
			MinLength:   intPtr(10),
			MaxLength:   intPtr(1000),
		},
	},
}

func SuggestHandler(b *warden.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()

		userID := e.User().ID
		guildID := *e.GuildID()

		if result := b.Admission.Check(ctx, userID.String(), "suggest"); !result.Allowed {
			return utils.EH.CreateBusinessLogicError(e,
				fmt.Sprintf("You can suggest again in %s.", utils.FormatDuration(result.Remaining)))
		}

		suggestion := &models.Suggestion{
			AuthorID: userID.String(),
			GuildID:  guildID.String(),
			Text:     e.SlashCommandInteractionData().String("text"),
		}
		if err := b.SuggestionRepository.Create(ctx, suggestion); err != nil {
			return utils.EH.CreateSystemError(e, "Failed to save your suggestion.")
		}

		b.Admission.Arm(ctx, userID.String(), guildID.String(), "suggest", time.Duration(b.Cfg.Cooldowns.Suggest)*time.Minute)

		channelID := b.Cfg.Channels.Suggestions
		if channelID == 0 {
			channelID = e.ChannelID()
		}

		if _, err := e.Client().Rest().CreateMessage(channelID, discord.MessageCreate{
			Embeds: []discord.Embed{{
				Title:       fmt.Sprintf("💡 Suggestion #%d", suggestion.ID),
				Description: suggestion.Text,
				Color:       config.InfoColor,
				Fields: []discord.EmbedField{
					{Name: "Author", Value: fmt.Sprintf("<@%s>", userID), Inline: boolPtr(true)},
					{Name: "Votes", Value: "👍 0 | 👎 0", Inline: boolPtr(true)},
				},
			}},
			Components: []discord.ContainerComponent{
				discord.NewActionRow(
					discord.NewSuccessButton("👍 Upvote", fmt.Sprintf("/suggestion/up/%d", suggestion.ID)),
					discord.NewDangerButton("👎 Downvote", fmt.Sprintf("/suggestion/down/%d", suggestion.ID)),
				),
			},
		}); err != nil {
			return utils.EH.CreateSystemError(e, "Suggestion saved, but posting it failed.")
		}

		return utils.EH.CreateSuccessEmbed(e, fmt.Sprintf("Suggestion #%d submitted.", suggestion.ID))
	}
}

func boolPtr(v bool) *bool {
	return &v
}
