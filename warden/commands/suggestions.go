package commands

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/paginator"
	"github.com/sahilm/fuzzy"

	"github.com/wardenbot/warden/warden"
	"github.com/wardenbot/warden/warden/config"
	"github.com/wardenbot/warden/warden/database/models"
	"github.com/wardenbot/warden/warden/permissions"
	"github.com/wardenbot/warden/warden/utils"
)

var Suggestions = discord.SlashCommandCreate{
	Name:         "suggestions",
	Description:  "Browse server suggestions",
	DMPermission: boolPtr(false),
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionSubCommand{
			Name:        "list",
			Description: "List all suggestions",
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "search",
			Description: "Search suggestions by text",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionString{
					Name:        "query",
					Description: "Text to search for",
					Required:    true,
				},
			},
		},
	},
}

func SuggestionsListHandler(b *warden.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		if !b.Perms.Has(permissions.SnapshotOf(*e.Member()), permissions.LevelModerator) {
			return utils.EH.CreatePermissionError(e, "Only staff can browse suggestions.")
		}

		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()

		suggestions, err := b.SuggestionRepository.GetAllByGuild(ctx, e.GuildID().String())
		if err != nil {
			return utils.EH.CreateSystemError(e, "Failed to load suggestions.")
		}
		if len(suggestions) == 0 {
			return utils.EH.CreateInfoEmbed(e, "No suggestions yet. Be the first with /suggest!")
		}

		return paginateSuggestions(b, e, suggestions, "💡 Suggestions", "")
	}
}

func SuggestionsSearchHandler(b *warden.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		if !b.Perms.Has(permissions.SnapshotOf(*e.Member()), permissions.LevelModerator) {
			return utils.EH.CreatePermissionError(e, "Only staff can browse suggestions.")
		}

		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()

		query := e.SlashCommandInteractionData().String("query")

		suggestions, err := b.SuggestionRepository.GetAllByGuild(ctx, e.GuildID().String())
		if err != nil {
			return utils.EH.CreateSystemError(e, "Failed to load suggestions.")
		}

		matched := searchSuggestions(suggestions, query)
		if len(matched) == 0 {
			return utils.EH.CreateNotFoundError(e, fmt.Sprintf("No suggestions match `%s`.", query))
		}

		return paginateSuggestions(b, e, matched, "🔍 Suggestion Search", query)
	}
}

// searchSuggestions ranks suggestions against the query by fuzzy match
// and returns them best first.
func searchSuggestions(suggestions []*models.Suggestion, query string) []*models.Suggestion {
	texts := make([]string, len(suggestions))
	for i, s := range suggestions {
		texts[i] = s.Text
	}

	matches := fuzzy.Find(query, texts)
	result := make([]*models.Suggestion, len(matches))
	for i, match := range matches {
		result[i] = suggestions[match.Index]
	}
	return result
}

func paginateSuggestions(b *warden.Bot, e *handler.CommandEvent, suggestions []*models.Suggestion, title, query string) error {
	totalPages := int(math.Ceil(float64(len(suggestions)) / float64(config.DefaultPageSize)))

	return b.Paginator.Create(e.Respond, paginator.Pages{
		ID:      e.ID().String(),
		Creator: e.User().ID,
		PageFunc: func(page int, embed *discord.EmbedBuilder) {
			startIdx := page * config.DefaultPageSize
			endIdx := min(startIdx+config.DefaultPageSize, len(suggestions))

			var description strings.Builder
			if query != "" {
				description.WriteString(fmt.Sprintf("🔍 `%s`\n\n", query))
			}
			for _, s := range suggestions[startIdx:endIdx] {
				description.WriteString(fmt.Sprintf("**#%d** %s\n👍 %d | 👎 %d — <@%s>\n\n",
					s.ID, utils.Truncate(s.Text, 120), s.Upvotes, s.Downvotes, s.AuthorID))
			}

			embed.
				SetTitle(title).
				SetDescription(description.String()).
				SetColor(config.EmbedDefaultColor).
				SetFooter(fmt.Sprintf("Page %d/%d • Total: %d", page+1, totalPages, len(suggestions)), "")
		},
		Pages:      totalPages,
		ExpireMode: paginator.ExpireModeAfterLastUsage,
	}, false)
}
