package models

import (
	"time"

	"github.com/uptrace/bun"
)

// ModerationLog rows are append-only, never updated or deleted.
type ModerationLog struct {
	bun.BaseModel `bun:"table:moderation_logs,alias:ml"`

	ID          int64     `bun:"id,pk,autoincrement"`
	Action      string    `bun:"action,notnull"`
	TargetID    string    `bun:"target_id,notnull"`
	ModeratorID string    `bun:"moderator_id,notnull"`
	Reason      string    `bun:"reason,nullzero"`
	Duration    int64     `bun:"duration,nullzero"` // minutes, mute only
	GuildID     string    `bun:"guild_id,notnull"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

const (
	ModActionKick   = "kick"
	ModActionBan    = "ban"
	ModActionMute   = "mute"
	ModActionUnmute = "unmute"
	ModActionClear  = "clear"
)
