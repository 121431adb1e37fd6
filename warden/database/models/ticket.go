package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Ticket struct {
	bun.BaseModel `bun:"table:tickets,alias:t"`

	ID        int64     `bun:"id,pk,autoincrement"`
	TicketID  string    `bun:"ticket_id,notnull,unique"`
	OwnerID   string    `bun:"owner_id,notnull"`
	GuildID   string    `bun:"guild_id,notnull"`
	ChannelID string    `bun:"channel_id,nullzero"`
	Category  string    `bun:"category,notnull"`
	Status    string    `bun:"status,notnull,default:'open'"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	ClosedAt  time.Time `bun:"closed_at,nullzero"`
	ClosedBy  string    `bun:"closed_by,nullzero"`
}

const (
	TicketStatusOpen   = "open"
	TicketStatusClosed = "closed"
)

// TicketCategories maps option values to display names, in the order the
// command declares them.
var TicketCategories = map[string]string{
	"general": "General Support",
	"bug":     "Bug Report",
	"feature": "Feature Request",
	"appeal":  "Appeal",
	"other":   "Other",
}

func TicketCategoryName(category string) string {
	if name, ok := TicketCategories[category]; ok {
		return name
	}
	return category
}
