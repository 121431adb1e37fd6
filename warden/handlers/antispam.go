package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/snowflake/v2"

	"github.com/wardenbot/warden/warden/config"
	"github.com/wardenbot/warden/warden/database/models"
	"github.com/wardenbot/warden/warden/database/repositories"
	"github.com/wardenbot/warden/warden/scheduler"
)

// AntiSpam tracks message bursts per user. A user who posts threshold
// messages inside the window trips the tracker once; their recorded
// message IDs are returned and the window resets so a mute is not
// re-applied on every following message.
type AntiSpam struct {
	mu        sync.Mutex
	threshold int
	window    time.Duration
	seen      map[snowflake.ID][]spamEntry
	now       func() time.Time
}

type spamEntry struct {
	messageID snowflake.ID
	at        time.Time
}

func NewAntiSpam(threshold int, window time.Duration) *AntiSpam {
	return &AntiSpam{
		threshold: threshold,
		window:    window,
		seen:      make(map[snowflake.ID][]spamEntry),
		now:       time.Now,
	}
}

// Record notes one message from userID. It returns the IDs of the user's
// messages inside the current window and true when the burst threshold
// was just reached.
func (a *AntiSpam) Record(userID, messageID snowflake.ID) ([]snowflake.ID, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.now()
	cutoff := now.Add(-a.window)

	entries := a.seen[userID]
	kept := entries[:0]
	for _, entry := range entries {
		if entry.at.After(cutoff) {
			kept = append(kept, entry)
		}
	}
	kept = append(kept, spamEntry{messageID: messageID, at: now})

	if len(kept) >= a.threshold {
		ids := make([]snowflake.ID, len(kept))
		for i, entry := range kept {
			ids[i] = entry.messageID
		}
		delete(a.seen, userID)
		return ids, true
	}

	a.seen[userID] = kept
	return nil, false
}

// AntiSpamSettings carries the tuning and guild wiring for the listener.
type AntiSpamSettings struct {
	Threshold    int
	Window       time.Duration
	MuteDuration time.Duration
	MutedRole    snowflake.ID
	ExemptRoles  []snowflake.ID
}

// NewAntiSpamListener returns a message listener that mutes users who
// flood a channel. The mute is lifted by an in-process timer; a restart
// drops pending unmutes, which moderators resolve by hand.
func NewAntiSpamListener(settings AntiSpamSettings, sched *scheduler.Scheduler, modLogs repositories.ModerationLogRepository) bot.EventListener {
	tracker := NewAntiSpam(settings.Threshold, settings.Window)

	return bot.NewListenerFunc(func(e *events.GuildMessageCreate) {
		if e.Message.Author.Bot || e.Message.Author.System {
			return
		}
		if e.Message.Member != nil && hasAnyRole(e.Message.Member.RoleIDs, settings.ExemptRoles) {
			return
		}

		ids, tripped := tracker.Record(e.Message.Author.ID, e.MessageID)
		if !tripped {
			return
		}

		client := e.Client()
		userID := e.Message.Author.ID
		guildID := e.GuildID

		if err := client.Rest().BulkDeleteMessages(e.ChannelID, ids); err != nil {
			slog.Error("Failed to delete spam messages",
				slog.String("type", "error"),
				slog.String("user_id", userID.String()),
				slog.Any("error", err),
			)
		}

		if settings.MutedRole != 0 {
			if err := client.Rest().AddMemberRole(guildID, userID, settings.MutedRole); err != nil {
				slog.Error("Failed to mute spamming user",
					slog.String("type", "error"),
					slog.String("user_id", userID.String()),
					slog.Any("error", err),
				)
				return
			}

			sched.Schedule(settings.MuteDuration, func() {
				if err := client.Rest().RemoveMemberRole(guildID, userID, settings.MutedRole); err != nil {
					slog.Error("Failed to lift spam mute",
						slog.String("type", "error"),
						slog.String("user_id", userID.String()),
						slog.Any("error", err),
					)
				}
			})
		}

		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()
		if err := modLogs.Insert(ctx, &models.ModerationLog{
			GuildID:     guildID.String(),
			TargetID:    userID.String(),
			ModeratorID: client.ApplicationID().String(),
			Action:      models.ModActionMute,
			Reason:      "Automatic mute: message flood",
			Duration:    int64(settings.MuteDuration.Minutes()),
		}); err != nil {
			slog.Error("Failed to record spam mute",
				slog.String("type", "error"),
				slog.Any("error", err),
			)
		}

		if _, err := client.Rest().CreateMessage(e.ChannelID, discord.MessageCreate{
			Embeds: []discord.Embed{{
				Title:       "🔇 Slow down",
				Description: fmt.Sprintf("<@%s> has been muted for %d minutes for flooding the channel.", userID, int(settings.MuteDuration.Minutes())),
				Color:       config.WarningColor,
			}},
		}); err != nil {
			slog.Error("Failed to post spam warning",
				slog.String("type", "error"),
				slog.Any("error", err),
			)
		}
	})
}

func hasAnyRole(roleIDs, wanted []snowflake.ID) bool {
	for _, have := range roleIDs {
		for _, want := range wanted {
			if want != 0 && have == want {
				return true
			}
		}
	}
	return false
}
