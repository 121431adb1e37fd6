// Package permissions maps a member's role and permission snapshot to the
// coarse privilege levels the workflows care about.
package permissions

import (
	"slices"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/snowflake/v2"
)

type Level int

const (
	LevelModerator Level = iota
	LevelAdmin
)

// Snapshot is the caller-supplied view of a member at one instant. Has is a
// pure function of it; nothing is cached between calls.
type Snapshot struct {
	RoleIDs     []snowflake.ID
	Permissions discord.Permissions
}

// Resolver carries the configured privilege roles. A zero role ID means the
// level falls back to the platform permission alone.
type Resolver struct {
	AdminRole     snowflake.ID
	ModeratorRole snowflake.ID
}

func (r Resolver) Has(s Snapshot, level Level) bool {
	// Platform administrators pass every level.
	if s.Permissions.Has(discord.PermissionAdministrator) {
		return true
	}

	switch level {
	case LevelAdmin:
		if r.AdminRole != 0 {
			return slices.Contains(s.RoleIDs, r.AdminRole)
		}
		return s.Permissions.Has(discord.PermissionManageGuild)
	case LevelModerator:
		if r.ModeratorRole != 0 && slices.Contains(s.RoleIDs, r.ModeratorRole) {
			return true
		}
		if r.AdminRole != 0 && slices.Contains(s.RoleIDs, r.AdminRole) {
			return true
		}
		return s.Permissions.Has(discord.PermissionManageMessages)
	default:
		return false
	}
}

// SnapshotOf extracts the role/permission view from an interaction member.
func SnapshotOf(member discord.ResolvedMember) Snapshot {
	return Snapshot{
		RoleIDs:     member.RoleIDs,
		Permissions: member.Permissions,
	}
}
