package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/snowflake/v2"

	"github.com/wardenbot/warden/warden"
	"github.com/wardenbot/warden/warden/admission"
	"github.com/wardenbot/warden/warden/commands"
	"github.com/wardenbot/warden/warden/components"
	"github.com/wardenbot/warden/warden/database"
	"github.com/wardenbot/warden/warden/database/repositories"
	"github.com/wardenbot/warden/warden/handlers"
	"github.com/wardenbot/warden/warden/logger"
	"github.com/wardenbot/warden/warden/permissions"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	shouldSyncCommands := flag.Bool("sync-commands", false, "Whether to sync commands to discord")
	path := flag.String("config", "config.toml", "path to config")
	flag.Parse()

	cfg, err := warden.LoadConfig(*path)
	if err != nil {
		slog.Error("Failed to load configuration", slog.Any("error", err))
		os.Exit(-1)
	}

	customHandler := logger.NewHandler(cfg.Log.Level)
	slog.SetDefault(slog.New(customHandler))

	slog.Info("Starting Warden",
		slog.String("version", version),
		slog.String("commit", commit))

	slog.Info("Initializing database connection...")
	dbStartTime := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	db, err := database.New(ctx, cfg.DB)
	if err != nil {
		slog.Error("Database connection failed",
			slog.String("error", err.Error()),
			slog.Duration("attempted_for", time.Since(dbStartTime)))
		os.Exit(-1)
	}
	defer db.Close()

	slog.Info("Database connected successfully",
		slog.String("database", cfg.DB.Database),
		slog.Duration("took", time.Since(dbStartTime)))

	if err := db.InitializeSchema(ctx); err != nil {
		slog.Error("Failed to initialize database schema",
			slog.String("error", err.Error()))
		os.Exit(-1)
	}
	slog.Info("Database schema initialized successfully")

	b := warden.New(*cfg, version, commit)
	b.DB = db
	defer b.Scheduler.Stop()

	b.TicketRepository = repositories.NewTicketRepository(db.BunDB())
	b.SuggestionRepository = repositories.NewSuggestionRepository(db.BunDB())
	b.LeaveRepository = repositories.NewLeaveRepository(db.BunDB())
	b.VerificationRepository = repositories.NewVerificationRepository(db.BunDB())
	b.ModerationRepository = repositories.NewModerationLogRepository(db.BunDB())
	b.CooldownRepository = repositories.NewCooldownRepository(db.BunDB())

	b.Admission = admission.New(b.CooldownRepository, cfg.Admission.FailClosed)
	b.Perms = permissions.Resolver{
		AdminRole:     cfg.Roles.Admin,
		ModeratorRole: cfg.Roles.Moderator,
	}

	h := handler.New()

	// Ticketing
	h.Route("/ticket", func(r handler.Router) {
		r.Command("/create", handlers.WrapWithLogging("ticket-create", commands.TicketCreateHandler(b)))
		r.Command("/close", handlers.WrapWithLogging("ticket-close", commands.TicketCloseHandler(b)))
		r.Command("/add", handlers.WrapWithLogging("ticket-add", commands.TicketAddHandler(b)))
		r.Command("/remove", handlers.WrapWithLogging("ticket-remove", commands.TicketRemoveHandler(b)))
	})
	h.Component("/ticket/close", handlers.WrapComponentWithLogging("ticket-close-button", components.TicketCloseHandler(b)))

	// Suggestions
	h.Command("/suggest", handlers.WrapWithLogging("suggest", commands.SuggestHandler(b)))
	h.Route("/suggestions", func(r handler.Router) {
		r.Command("/list", handlers.WrapWithLogging("suggestions-list", commands.SuggestionsListHandler(b)))
		r.Command("/search", handlers.WrapWithLogging("suggestions-search", commands.SuggestionsSearchHandler(b)))
	})
	h.Command("/suggestionvotes", handlers.WrapWithLogging("suggestionvotes", commands.SuggestionVotesHandler(b)))
	h.Component("/suggestion/{vote}/{id}", handlers.WrapComponentWithLogging("suggestion-vote", components.SuggestionVoteHandler(b)))

	// Leave of absence
	h.Command("/requestloa", handlers.WrapWithLogging("requestloa", commands.RequestLOAHandler(b)))
	h.Component("/loa/{decision}/{id}", handlers.WrapComponentWithLogging("loa-decision", components.LeaveDecisionHandler(b)))

	// Verification
	h.Command("/verify", handlers.WrapWithLogging("verify", commands.VerifyHandler(b)))
	h.Component("/verify/confirm/{payload}", handlers.WrapComponentWithLogging("verify-confirm", components.VerifyConfirmHandler(b)))

	// Moderation
	h.Route("/mod", func(r handler.Router) {
		r.Command("/kick", handlers.WrapWithLogging("mod-kick", commands.ModKickHandler(b)))
		r.Command("/ban", handlers.WrapWithLogging("mod-ban", commands.ModBanHandler(b)))
		r.Command("/mute", handlers.WrapWithLogging("mod-mute", commands.ModMuteHandler(b)))
		r.Command("/unmute", handlers.WrapWithLogging("mod-unmute", commands.ModUnmuteHandler(b)))
		r.Command("/clear", handlers.WrapWithLogging("mod-clear", commands.ModClearHandler(b)))
	})
	h.Command("/modlogs", handlers.WrapWithLogging("modlogs", commands.ModLogsHandler(b)))
	h.Command("/stats", handlers.WrapWithLogging("stats", commands.StatsHandler(b)))
	h.Command("/say", handlers.WrapWithLogging("say", commands.SayHandler(b)))
	h.Command("/serverwarning", handlers.WrapWithLogging("serverwarning", commands.ServerWarningHandler(b)))
	h.Command("/embed", handlers.WrapWithLogging("embed", commands.EmbedHandler(b)))
	h.Route("/lockdown", func(r handler.Router) {
		r.Command("/lock", handlers.WrapWithLogging("lockdown-lock", commands.LockdownLockHandler(b)))
		r.Command("/unlock", handlers.WrapWithLogging("lockdown-unlock", commands.LockdownUnlockHandler(b)))
	})

	listeners := []bot.EventListener{h, bot.NewListenerFunc(b.OnReady)}
	if cfg.AntiSpam.Enabled {
		listeners = append(listeners, handlers.NewAntiSpamListener(handlers.AntiSpamSettings{
			Threshold:    cfg.AntiSpam.Threshold,
			Window:       time.Duration(cfg.AntiSpam.WindowSeconds) * time.Second,
			MuteDuration: time.Duration(cfg.AntiSpam.MuteMinutes) * time.Minute,
			MutedRole:    cfg.Roles.Muted,
			ExemptRoles:  []snowflake.ID{cfg.Roles.Admin, cfg.Roles.Moderator},
		}, b.Scheduler, b.ModerationRepository))
	}

	if err = b.SetupBot(listeners...); err != nil {
		slog.Error("Failed to setup bot",
			slog.String("type", "sys"),
			slog.Any("error", err),
			slog.String("component", "bot_setup"),
			slog.String("status", "failed"),
		)
		os.Exit(-1)
	}

	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		b.Client.Close(ctx)
	}()

	if *shouldSyncCommands {
		slog.Info("Syncing commands",
			slog.String("type", "sys"),
			slog.Any("guild_ids", cfg.Bot.DevGuilds),
		)
		if err = handler.SyncCommands(b.Client, commands.Commands, cfg.Bot.DevGuilds); err != nil {
			slog.Error("Failed to sync commands",
				slog.String("type", "sys"),
				slog.Any("error", err),
				slog.String("error_details", fmt.Sprintf("%+v", err)),
				slog.String("component", "command_sync"),
				slog.String("status", "failed"),
			)
		}
	}

	ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err = b.Client.OpenGateway(ctx); err != nil {
		slog.Error("Failed to open gateway",
			slog.String("type", "sys"),
			slog.Any("error", err),
			slog.String("component", "gateway"),
			slog.String("status", "failed"),
		)
		os.Exit(-1)
	}

	slog.Info("Warden is running. Press CTRL-C to exit.")
	s := make(chan os.Signal, 1)
	signal.Notify(s, syscall.SIGINT, syscall.SIGTERM)
	<-s
	slog.Info("Shutting down...")
}
