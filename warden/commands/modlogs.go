package commands

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/paginator"

	"github.com/wardenbot/warden/warden"
	"github.com/wardenbot/warden/warden/config"
	"github.com/wardenbot/warden/warden/permissions"
	"github.com/wardenbot/warden/warden/utils"
)

var ModLogs = discord.SlashCommandCreate{
	Name:         "modlogs",
	Description:  "Browse moderation history",
	DMPermission: boolPtr(false),
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionUser{
			Name:        "user",
			Description: "Only show actions against this user",
			Required:    false,
		},
	},
}

const modLogFetchLimit = 200

func ModLogsHandler(b *warden.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		if !b.Perms.Has(permissions.SnapshotOf(*e.Member()), permissions.LevelModerator) {
			return utils.EH.CreatePermissionError(e, "Moderation history is staff only.")
		}

		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()

		var targetID string
		if target, ok := e.SlashCommandInteractionData().OptUser("user"); ok {
			targetID = target.ID.String()
		}

		entries, err := b.ModerationRepository.GetRecent(ctx, e.GuildID().String(), targetID, modLogFetchLimit)
		if err != nil {
			return utils.EH.CreateSystemError(e, "Failed to load moderation history.")
		}
		if len(entries) == 0 {
			return utils.EH.CreateInfoEmbed(e, "No moderation actions recorded.")
		}

		totalPages := int(math.Ceil(float64(len(entries)) / float64(config.LogsPerPage)))

		return b.Paginator.Create(e.Respond, paginator.Pages{
			ID:      e.ID().String(),
			Creator: e.User().ID,
			PageFunc: func(page int, embed *discord.EmbedBuilder) {
				startIdx := page * config.LogsPerPage
				endIdx := min(startIdx+config.LogsPerPage, len(entries))

				var description strings.Builder
				for _, entry := range entries[startIdx:endIdx] {
					description.WriteString(fmt.Sprintf("**%s** — <@%s>\nby <@%s> • <t:%d:R>\n",
						strings.ToUpper(entry.Action), entry.TargetID, entry.ModeratorID, entry.CreatedAt.Unix()))
					if entry.Reason != "" {
						description.WriteString(fmt.Sprintf("> %s\n", utils.Truncate(entry.Reason, 150)))
					}
					if entry.Duration > 0 {
						description.WriteString(fmt.Sprintf("> Duration: %d minutes\n", entry.Duration))
					}
					description.WriteString("\n")
				}

				embed.
					SetTitle("📜 Moderation History").
					SetDescription(description.String()).
					SetColor(config.EmbedDefaultColor).
					SetFooter(fmt.Sprintf("Page %d/%d • Total: %d", page+1, totalPages, len(entries)), "")
			},
			Pages:      totalPages,
			ExpireMode: paginator.ExpireModeAfterLastUsage,
		}, false)
	}
}
