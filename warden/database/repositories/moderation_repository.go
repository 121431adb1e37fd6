package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/wardenbot/warden/warden/database/models"
)

type ModerationLogRepository interface {
	Insert(ctx context.Context, entry *models.ModerationLog) error
	GetRecent(ctx context.Context, guildID, targetID string, limit int) ([]*models.ModerationLog, error)
}

type moderationLogRepository struct {
	db *bun.DB
}

func NewModerationLogRepository(db *bun.DB) ModerationLogRepository {
	return &moderationLogRepository{db: db}
}

func (r *moderationLogRepository) Insert(ctx context.Context, entry *models.ModerationLog) error {
	entry.CreatedAt = time.Now()
	if _, err := r.db.NewInsert().Model(entry).Exec(ctx); err != nil {
		return fmt.Errorf("failed to insert moderation log: %w", err)
	}
	return nil
}

// GetRecent returns the newest entries first. targetID narrows to one user
// when non-empty.
func (r *moderationLogRepository) GetRecent(ctx context.Context, guildID, targetID string, limit int) ([]*models.ModerationLog, error) {
	var entries []*models.ModerationLog
	q := r.db.NewSelect().
		Model(&entries).
		Where("guild_id = ?", guildID).
		Order("created_at DESC").
		Limit(limit)
	if targetID != "" {
		q = q.Where("target_id = ?", targetID)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list moderation logs: %w", err)
	}
	return entries, nil
}
