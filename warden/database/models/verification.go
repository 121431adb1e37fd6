package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Verification links one Discord account to one Roblox account. Both sides
// are unique across the table.
type Verification struct {
	bun.BaseModel `bun:"table:verifications,alias:v"`

	ID             int64     `bun:"id,pk,autoincrement"`
	DiscordID      string    `bun:"discord_id,notnull,unique"`
	RobloxID       int64     `bun:"roblox_id,notnull,unique"`
	RobloxUsername string    `bun:"roblox_username,notnull"`
	GuildID        string    `bun:"guild_id,notnull"`
	VerifiedAt     time.Time `bun:"verified_at,notnull,default:current_timestamp"`
}
