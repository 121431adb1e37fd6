package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Suggestion struct {
	bun.BaseModel `bun:"table:suggestions,alias:s"`

	ID        int64     `bun:"id,pk,autoincrement"`
	AuthorID  string    `bun:"author_id,notnull"`
	GuildID   string    `bun:"guild_id,notnull"`
	Text      string    `bun:"text,notnull"`
	Status    string    `bun:"status,notnull,default:'pending'"`
	Upvotes   int       `bun:"upvotes,notnull,default:0"`
	Downvotes int       `bun:"downvotes,notnull,default:0"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

// SuggestionBallot is one voter's vote on one suggestion. Unique per
// (suggestion_id, voter_id); a changed vote updates the row in place.
type SuggestionBallot struct {
	bun.BaseModel `bun:"table:suggestion_ballots,alias:sb"`

	ID           int64     `bun:"id,pk,autoincrement"`
	SuggestionID int64     `bun:"suggestion_id,notnull"`
	VoterID      string    `bun:"voter_id,notnull"`
	VoteType     string    `bun:"vote_type,notnull"`
	CreatedAt    time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

const (
	VoteUp   = "up"
	VoteDown = "down"
)

const SuggestionStatusPending = "pending"
