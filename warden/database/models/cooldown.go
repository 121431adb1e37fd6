package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Cooldown is the admission-control ledger: at most one live row per
// (user_id, action). Expired rows are lazily purged before each check.
type Cooldown struct {
	bun.BaseModel `bun:"table:cooldowns,alias:cd"`

	ID        int64     `bun:"id,pk,autoincrement"`
	UserID    string    `bun:"user_id,notnull"`
	Action    string    `bun:"action,notnull"`
	GuildID   string    `bun:"guild_id,nullzero"`
	ExpiresAt time.Time `bun:"expires_at,notnull"`
}
