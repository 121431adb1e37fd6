package components

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/wardenbot/warden/warden"
	"github.com/wardenbot/warden/warden/config"
	"github.com/wardenbot/warden/warden/database/models"
	"github.com/wardenbot/warden/warden/database/repositories"
	"github.com/wardenbot/warden/warden/utils"
)

// SuggestionVoteHandler backs the vote buttons under every posted
// suggestion. The route carries the direction and suggestion ID.
func SuggestionVoteHandler(b *warden.Bot) handler.ComponentHandler {
	return func(e *handler.ComponentEvent) error {
		voteType := e.Vars["vote"]
		if voteType != models.VoteUp && voteType != models.VoteDown {
			return utils.EH.CreateEphemeralError(e, "Unknown vote type.")
		}

		suggestionID, err := strconv.ParseInt(e.Vars["id"], 10, 64)
		if err != nil {
			return utils.EH.CreateEphemeralError(e, "Malformed suggestion reference.")
		}

		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()

		suggestion, err := b.SuggestionRepository.CastBallot(ctx, suggestionID, e.User().ID.String(), voteType)
		if err != nil {
			switch {
			case errors.Is(err, repositories.ErrSelfVote):
				return utils.EH.CreateEphemeralError(e, "You cannot vote on your own suggestion.")
			case errors.Is(err, repositories.ErrDuplicateVote):
				return utils.EH.CreateEphemeralError(e, "You already voted this way. Press the other button to change your vote.")
			case errors.Is(err, repositories.ErrSuggestionNotFound):
				return utils.EH.CreateEphemeralError(e, "This suggestion no longer exists.")
			default:
				return utils.EH.CreateEphemeralError(e, "Failed to record your vote.")
			}
		}

		embeds := e.Message.Embeds
		if len(embeds) > 0 {
			embeds[0] = refreshVoteField(embeds[0], suggestion)
		}

		return e.UpdateMessage(discord.MessageUpdate{
			Embeds: &embeds,
		})
	}
}

// refreshVoteField rewrites the vote tally field with the counts the
// ballot transaction returned.
func refreshVoteField(embed discord.Embed, suggestion *models.Suggestion) discord.Embed {
	tally := fmt.Sprintf("👍 %d | 👎 %d", suggestion.Upvotes, suggestion.Downvotes)
	for i, field := range embed.Fields {
		if field.Name == "Votes" {
			embed.Fields[i].Value = tally
			return embed
		}
	}
	embed.Fields = append(embed.Fields, discord.EmbedField{Name: "Votes", Value: tally})
	return embed
}
