package components

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/snowflake/v2"

	"github.com/wardenbot/warden/warden"
	"github.com/wardenbot/warden/warden/config"
	"github.com/wardenbot/warden/warden/database/models"
	"github.com/wardenbot/warden/warden/database/repositories"
	"github.com/wardenbot/warden/warden/roblox"
	"github.com/wardenbot/warden/warden/utils"
)

var (
	errCodeMissing   = errors.New("code not found in profile description")
	errAccountTaken  = errors.New("roblox account already linked")
	errProfileBanned = errors.New("roblox account is banned")
)

// VerifyConfirmHandler backs the confirm button of the verification flow.
// The route payload carries the requesting Discord user ID, the Roblox
// user ID and the challenge code, colon separated.
func VerifyConfirmHandler(b *warden.Bot) handler.ComponentHandler {
	return func(e *handler.ComponentEvent) error {
		actorID, robloxID, code, ok := parseVerifyPayload(e.Vars["payload"])
		if !ok {
			return utils.EH.CreateEphemeralError(e, "Malformed verification reference. Run /verify again.")
		}

		userID := e.User().ID
		if userID != actorID {
			return utils.EH.CreateEphemeralError(e, "This confirmation belongs to someone else. Run /verify yourself.")
		}

		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()

		if _, err := b.VerificationRepository.GetByDiscordID(ctx, userID.String()); err == nil {
			return utils.EH.CreateEphemeralError(e, "Your account is already verified.")
		} else if !errors.Is(err, repositories.ErrVerificationNotFound) {
			return utils.EH.CreateEphemeralError(e, "Failed to check your verification status.")
		}

		profile, err := b.Roblox.GetUser(ctx, robloxID)
		if err != nil {
			if errors.Is(err, roblox.ErrNotFound) {
				return utils.EH.CreateEphemeralError(e, "The Roblox account could not be found anymore. Run /verify again.")
			}
			return utils.EH.CreateEphemeralError(e, "Roblox is not reachable right now. Try again in a moment.")
		}

		if err := checkVerificationEligibility(ctx, b.VerificationRepository, profile, code); err != nil {
			switch {
			case errors.Is(err, errCodeMissing):
				return utils.EH.CreateEphemeralError(e,
					fmt.Sprintf("The code `%s` is not in your profile description yet. Save it and press Confirm again.", code))
			case errors.Is(err, errAccountTaken):
				return utils.EH.CreateEphemeralError(e, "That Roblox account is already linked to someone else.")
			case errors.Is(err, errProfileBanned):
				return utils.EH.CreateEphemeralError(e, "That Roblox account is banned and cannot be linked.")
			default:
				return utils.EH.CreateEphemeralError(e, "Failed to check the Roblox account.")
			}
		}

		verification := &models.Verification{
			DiscordID:      userID.String(),
			RobloxID:       profile.ID,
			RobloxUsername: profile.Name,
			GuildID:        e.GuildID().String(),
		}
		if err := b.VerificationRepository.Create(ctx, verification); err != nil {
			return utils.EH.CreateEphemeralError(e, "Failed to save the verification.")
		}

		if b.Cfg.Roles.Verified != 0 {
			// Role assignment failing does not undo the link; a moderator
			// can hand the role out later.
			_ = b.Client.Rest().AddMemberRole(*e.GuildID(), userID, b.Cfg.Roles.Verified)
		}

		return e.UpdateMessage(discord.MessageUpdate{
			Embeds: &[]discord.Embed{{
				Title:       "✅ Verified",
				Description: fmt.Sprintf("Your Discord account is now linked to **%s** (@%s). You can remove the code from your profile.", profile.DisplayName, profile.Name),
				Color:       config.SuccessColor,
			}},
			Components: &[]discord.ContainerComponent{},
		})
	}
}

// checkVerificationEligibility confirms the Roblox account is not banned,
// the challenge code is present in the profile description and the account
// is not linked already.
func checkVerificationEligibility(ctx context.Context, repo repositories.VerificationRepository, profile *roblox.Profile, code string) error {
	if profile.Banned {
		return errProfileBanned
	}
	if !strings.Contains(profile.Description, code) {
		return errCodeMissing
	}

	if _, err := repo.GetByRobloxID(ctx, profile.ID); err == nil {
		return errAccountTaken
	} else if !errors.Is(err, repositories.ErrVerificationNotFound) {
		return err
	}
	return nil
}

func parseVerifyPayload(payload string) (actorID snowflake.ID, robloxID int64, code string, ok bool) {
	parts := strings.SplitN(payload, ":", 3)
	if len(parts) != 3 || parts[2] == "" {
		return 0, 0, "", false
	}
	actor, err := snowflake.Parse(parts[0])
	if err != nil || actor == 0 {
		return 0, 0, "", false
	}
	id, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || id <= 0 {
		return 0, 0, "", false
	}
	return actor, id, parts[2], true
}
