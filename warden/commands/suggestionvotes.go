package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/wardenbot/warden/warden"
	"github.com/wardenbot/warden/warden/config"
	"github.com/wardenbot/warden/warden/database/models"
	"github.com/wardenbot/warden/warden/database/repositories"
	"github.com/wardenbot/warden/warden/utils"
)

var SuggestionVotes = discord.SlashCommandCreate{
	Name:         "suggestionvotes",
	Description:  "Show the vote tally for a suggestion",
	DMPermission: boolPtr(false),
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionInt{
			Name:        "id",
			Description: "The suggestion number",
			Required:    true,
			MinValue:    intPtr(1),
		},
	},
}

func SuggestionVotesHandler(b *warden.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()

		id := int64(e.SlashCommandInteractionData().Int("id"))

		suggestion, err := b.SuggestionRepository.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, repositories.ErrSuggestionNotFound) {
				return utils.EH.CreateNotFoundError(e, fmt.Sprintf("Suggestion #%d does not exist.", id))
			}
			return utils.EH.CreateSystemError(e, "Failed to load the suggestion.")
		}

		// Tally from the ballot table rather than the counters so a drifted
		// counter is visible instead of silently echoed.
		upvotes, err := b.SuggestionRepository.CountBallots(ctx, id, models.VoteUp)
		if err != nil {
			return utils.EH.CreateSystemError(e, "Failed to count votes.")
		}
		downvotes, err := b.SuggestionRepository.CountBallots(ctx, id, models.VoteDown)
		if err != nil {
			return utils.EH.CreateSystemError(e, "Failed to count votes.")
		}

		total := upvotes + downvotes
		score := upvotes - downvotes

		return e.CreateMessage(discord.MessageCreate{
			Embeds: []discord.Embed{{
				Title:       fmt.Sprintf("🗳️ Suggestion #%d", suggestion.ID),
				Description: utils.Truncate(suggestion.Text, 500),
				Color:       config.InfoColor,
				Fields: []discord.EmbedField{
					{Name: "Upvotes", Value: fmt.Sprintf("👍 %d", upvotes), Inline: boolPtr(true)},
					{Name: "Downvotes", Value: fmt.Sprintf("👎 %d", downvotes), Inline: boolPtr(true)},
					{Name: "Score", Value: fmt.Sprintf("%+d (%d total)", score, total), Inline: boolPtr(true)},
				},
			}},
		})
	}
}
