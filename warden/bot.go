package warden

import (
	"context"
	"log/slog"
	"time"

	"github.com/disgoorg/disgo"
	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/cache"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/disgo/gateway"
	"github.com/disgoorg/paginator"

	"github.com/wardenbot/warden/warden/admission"
	"github.com/wardenbot/warden/warden/database"
	"github.com/wardenbot/warden/warden/database/repositories"
	"github.com/wardenbot/warden/warden/permissions"
	"github.com/wardenbot/warden/warden/roblox"
	"github.com/wardenbot/warden/warden/scheduler"
)

func New(cfg Config, version string, commit string) *Bot {
	return &Bot{
		Cfg:       cfg,
		Paginator: paginator.New(),
		Scheduler: scheduler.New(),
		Roblox:    roblox.New(),
		Version:   version,
		Commit:    commit,
	}
}

type Bot struct {
	Cfg       Config
	Client    bot.Client
	Paginator *paginator.Manager
	Scheduler *scheduler.Scheduler
	Version   string
	Commit    string
	DB        *database.DB

	TicketRepository       repositories.TicketRepository
	SuggestionRepository   repositories.SuggestionRepository
	LeaveRepository        repositories.LeaveRepository
	VerificationRepository repositories.VerificationRepository
	ModerationRepository   repositories.ModerationLogRepository
	CooldownRepository     repositories.CooldownRepository

	Admission *admission.Service
	Perms     permissions.Resolver
	Roblox    *roblox.Client
}

func (b *Bot) SetupBot(listeners ...bot.EventListener) error {
	client, err := disgo.New(b.Cfg.Bot.Token,
		bot.WithGatewayConfigOpts(gateway.WithIntents(gateway.IntentGuilds, gateway.IntentGuildMessages, gateway.IntentMessageContent)),
		bot.WithCacheConfigOpts(cache.WithCaches(cache.FlagGuilds)),
		bot.WithEventListeners(b.Paginator),
		bot.WithEventListeners(listeners...),
	)
	if err != nil {
		return err
	}

	b.Client = client
	return nil
}

func (b *Bot) OnReady(_ *events.Ready) {
	slog.Info("Warden is now ready",
		slog.String("version", b.Version),
		slog.String("commit", b.Commit))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := b.Client.SetPresence(ctx,
		gateway.WithWatchingActivity("over the server"),
		gateway.WithOnlineStatus(discord.OnlineStatusOnline)); err != nil {
		slog.Error("Failed to set presence", slog.Any("error", err))
	}
}
