package commands

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/wardenbot/warden/warden"
	"github.com/wardenbot/warden/warden/config"
	"github.com/wardenbot/warden/warden/database/repositories"
	"github.com/wardenbot/warden/warden/roblox"
	"github.com/wardenbot/warden/warden/utils"
)

var Verify = discord.SlashCommandCreate{
	Name:         "verify",
	Description:  "Link your Roblox account",
	DMPermission: boolPtr(false),
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionString{
			Name:        "username",
			Description: "Your Roblox username",
			Required:    true,
		},
	},
}

func VerifyHandler(b *warden.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()

		userID := e.User().ID

		if result := b.Admission.Check(ctx, userID.String(), "verify"); !result.Allowed {
			return utils.EH.CreateBusinessLogicError(e,
				fmt.Sprintf("You can try verifying again in %s.", utils.FormatDuration(result.Remaining)))
		}

		if _, err := b.VerificationRepository.GetByDiscordID(ctx, userID.String()); err == nil {
			return utils.EH.CreateBusinessLogicError(e, "Your account is already verified.")
		} else if !errors.Is(err, repositories.ErrVerificationNotFound) {
			return utils.EH.CreateSystemError(e, "Failed to check your verification status.")
		}

		username := e.SlashCommandInteractionData().String("username")

		profile, err := b.Roblox.ResolveUsername(ctx, username)
		if err != nil {
			if errors.Is(err, roblox.ErrNotFound) {
				return utils.EH.CreateNotFoundError(e, fmt.Sprintf("No Roblox user named `%s` was found.", username))
			}
			return utils.EH.CreateSystemError(e, "Roblox is not reachable right now. Try again later.")
		}

		if _, err := b.VerificationRepository.GetByRobloxID(ctx, profile.ID); err == nil {
			return utils.EH.CreateBusinessLogicError(e, "That Roblox account is already linked to someone else.")
		} else if !errors.Is(err, repositories.ErrVerificationNotFound) {
			return utils.EH.CreateSystemError(e, "Failed to check the Roblox account.")
		}

		code := generateVerifyCode()

		b.Admission.Arm(ctx, userID.String(), e.GuildID().String(), "verify", time.Duration(b.Cfg.Cooldowns.Verify)*time.Minute)

		return e.CreateMessage(discord.MessageCreate{
			Flags: discord.MessageFlagEphemeral,
			Embeds: []discord.Embed{{
				Title: "🔗 Link your Roblox account",
				Description: fmt.Sprintf(
					"1. Open your [Roblox profile](%s)\n"+
						"2. Put this code anywhere in your **About** section:\n```\n%s\n```\n"+
						"3. Press **Confirm** below once it is saved.",
					roblox.ProfileURL(profile.ID), code),
				Color: config.InfoColor,
				Fields: []discord.EmbedField{
					{Name: "Account", Value: fmt.Sprintf("%s (@%s)", profile.DisplayName, profile.Name), Inline: boolPtr(true)},
				},
			}},
			Components: []discord.ContainerComponent{
				discord.NewActionRow(
					// The button is scoped to the requesting user so nobody
					// else can complete the link.
					discord.NewPrimaryButton("✅ Confirm", fmt.Sprintf("/verify/confirm/%s:%d:%s", userID, profile.ID, code)),
				),
			},
		})
	}
}

func generateVerifyCode() string {
	code := make([]byte, config.VerifyCodeLength)
	for i := range code {
		code[i] = config.VerifyCodeCharset[rand.Intn(len(config.VerifyCodeCharset))]
	}
	return string(code)
}
