package models

import (
	"time"

	"github.com/uptrace/bun"
)

type LeaveRequest struct {
	bun.BaseModel `bun:"table:leave_requests,alias:lr"`

	ID          int64     `bun:"id,pk,autoincrement"`
	RequesterID string    `bun:"requester_id,notnull"`
	GuildID     string    `bun:"guild_id,notnull"`
	Reason      string    `bun:"reason,notnull"`
	Days        int       `bun:"days,notnull"`
	Status      string    `bun:"status,notnull,default:'pending'"`
	ResolvedBy  string    `bun:"resolved_by,nullzero"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp"`
	ResolvedAt  time.Time `bun:"resolved_at,nullzero"`
}

const (
	LeaveStatusPending  = "pending"
	LeaveStatusApproved = "approved"
	LeaveStatusDenied   = "denied"
)

const (
	MinLeaveDays = 1
	MaxLeaveDays = 20
)
