package commands

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/wardenbot/warden/warden"
	"github.com/wardenbot/warden/warden/config"
	"github.com/wardenbot/warden/warden/database/repositories"
	"github.com/wardenbot/warden/warden/roblox"
	"github.com/wardenbot/warden/warden/utils"
)

var Stats = discord.SlashCommandCreate{
	Name:         "stats",
	Description:  "Show a member's linked Roblox profile",
	DMPermission: boolPtr(false),
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionUser{
			Name:        "user",
			Description: "The member to look up (defaults to you)",
			Required:    false,
		},
	},
}

const statsGroupLimit = 8

func StatsHandler(b *warden.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()

		target := e.User()
		if user, ok := e.SlashCommandInteractionData().OptUser("user"); ok {
			target = user
		}

		verification, err := b.VerificationRepository.GetByDiscordID(ctx, target.ID.String())
		if err != nil {
			if errors.Is(err, repositories.ErrVerificationNotFound) {
				return utils.EH.CreateNotFoundError(e,
					fmt.Sprintf("<@%s> has not linked a Roblox account. Use /verify to link one.", target.ID))
			}
			return utils.EH.CreateSystemError(e, "Failed to look up the verification.")
		}

		profile, err := b.Roblox.GetUser(ctx, verification.RobloxID)
		if err != nil {
			if errors.Is(err, roblox.ErrNotFound) {
				return utils.EH.CreateNotFoundError(e, "The linked Roblox account no longer exists.")
			}
			return utils.EH.CreateSystemError(e, "Roblox is not reachable right now. Try again later.")
		}

		fields := []discord.EmbedField{
			{Name: "Username", Value: fmt.Sprintf("[%s](%s)", profile.Name, roblox.ProfileURL(profile.ID)), Inline: boolPtr(true)},
			{Name: "Display Name", Value: profile.DisplayName, Inline: boolPtr(true)},
			{Name: "Joined Roblox", Value: fmt.Sprintf("<t:%d:D>", profile.Created.Unix()), Inline: boolPtr(true)},
		}

		// Groups are best effort; the profile still renders without them.
		if groups, err := b.Roblox.GetGroups(ctx, profile.ID); err == nil && len(groups) > 0 {
			fields = append(fields, discord.EmbedField{
				Name:  fmt.Sprintf("Groups (%d)", len(groups)),
				Value: formatGroups(groups),
			})
		}

		return e.CreateMessage(discord.MessageCreate{
			Embeds: []discord.Embed{{
				Title: fmt.Sprintf("📊 Roblox Profile — %s", profile.DisplayName),
				Color: config.InfoColor,
				Thumbnail: &discord.EmbedResource{
					URL: roblox.AvatarURL(profile.ID),
				},
				Fields: fields,
				Footer: &discord.EmbedFooter{
					Text: "Verified on " + verification.VerifiedAt.Format("Jan 2, 2006"),
				},
			}},
		})
	}
}

// formatGroups renders the highest-ranked group memberships, one per line.
func formatGroups(groups []roblox.GroupRole) string {
	sorted := make([]roblox.GroupRole, len(groups))
	copy(sorted, groups)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Rank > sorted[j].Rank })

	if len(sorted) > statsGroupLimit {
		sorted = sorted[:statsGroupLimit]
	}

	var sb strings.Builder
	for _, g := range sorted {
		sb.WriteString(fmt.Sprintf("%s — %s\n", g.GroupName, g.RoleName))
	}
	return sb.String()
}
