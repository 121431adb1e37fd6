package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/wardenbot/warden/warden/database/models"
)

var ErrCooldownNotFound = errors.New("cooldown not found")

type CooldownRepository interface {
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
	GetActive(ctx context.Context, userID, action string, now time.Time) (*models.Cooldown, error)
	Upsert(ctx context.Context, cooldown *models.Cooldown) error
	Remove(ctx context.Context, userID, action string) error
}

type cooldownRepository struct {
	db *bun.DB
}

func NewCooldownRepository(db *bun.DB) CooldownRepository {
	return &cooldownRepository{db: db}
}

// PurgeExpired sweeps the whole table, not just one actor's rows. The wider
// delete keeps the check path to a single cheap statement.
func (r *cooldownRepository) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.NewDelete().
		Model((*models.Cooldown)(nil)).
		Where("expires_at <= ?", now).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to purge cooldowns: %w", err)
	}
	return result.RowsAffected()
}

func (r *cooldownRepository) GetActive(ctx context.Context, userID, action string, now time.Time) (*models.Cooldown, error) {
	cooldown := new(models.Cooldown)
	err := r.db.NewSelect().
		Model(cooldown).
		Where("user_id = ?", userID).
		Where("action = ?", action).
		Where("expires_at > ?", now).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCooldownNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cooldown: %w", err)
	}
	return cooldown, nil
}

// Upsert replaces any live record for (user_id, action); a new action never
// stacks on an old window.
func (r *cooldownRepository) Upsert(ctx context.Context, cooldown *models.Cooldown) error {
	_, err := r.db.NewInsert().
		Model(cooldown).
		On("CONFLICT (user_id, action) DO UPDATE").
		Set("expires_at = EXCLUDED.expires_at").
		Set("guild_id = EXCLUDED.guild_id").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert cooldown: %w", err)
	}
	return nil
}

func (r *cooldownRepository) Remove(ctx context.Context, userID, action string) error {
	_, err := r.db.NewDelete().
		Model((*models.Cooldown)(nil)).
		Where("user_id = ?", userID).
		Where("action = ?", action).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to remove cooldown: %w", err)
	}
	return nil
}
