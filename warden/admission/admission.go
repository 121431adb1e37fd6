// Package admission gates repeated actions per actor per action kind within
// a time window, backed by the cooldown table.
package admission

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/wardenbot/warden/warden/database/models"
	"github.com/wardenbot/warden/warden/database/repositories"
)

// Result reports whether an action is admitted and, if not, how long until
// the window opens again.
type Result struct {
	Allowed   bool
	Remaining time.Duration
}

type Service struct {
	store      repositories.CooldownRepository
	failClosed bool
	now        func() time.Time
}

// New builds a Service. failClosed flips the storage-error policy: by
// default a persistence outage admits everyone rather than blocking them.
func New(store repositories.CooldownRepository, failClosed bool) *Service {
	return &Service{
		store:      store,
		failClosed: failClosed,
		now:        time.Now,
	}
}

// Check purges expired records, then looks for a live record for
// (userID, action). Storage errors resolve per the fail-open policy.
func (s *Service) Check(ctx context.Context, userID, action string) Result {
	now := s.now()

	if _, err := s.store.PurgeExpired(ctx, now); err != nil {
		slog.Warn("Cooldown purge failed",
			slog.String("type", "db"),
			slog.Any("error", err))
	}

	cooldown, err := s.store.GetActive(ctx, userID, action, now)
	if errors.Is(err, repositories.ErrCooldownNotFound) {
		return Result{Allowed: true}
	}
	if err != nil {
		slog.Error("Cooldown lookup failed",
			slog.String("type", "db"),
			slog.String("user_id", userID),
			slog.String("action", action),
			slog.Any("error", err))
		return Result{Allowed: !s.failClosed}
	}

	return Result{Allowed: false, Remaining: cooldown.ExpiresAt.Sub(now)}
}

// Arm starts (or restarts) a cooldown window. Errors are logged, not
// returned: a failed arm must never undo an action that already happened.
func (s *Service) Arm(ctx context.Context, userID, guildID, action string, window time.Duration) {
	err := s.store.Upsert(ctx, &models.Cooldown{
		UserID:    userID,
		GuildID:   guildID,
		Action:    action,
		ExpiresAt: s.now().Add(window),
	})
	if err != nil {
		slog.Error("Failed to arm cooldown",
			slog.String("type", "db"),
			slog.String("user_id", userID),
			slog.String("action", action),
			slog.Any("error", err))
	}
}
