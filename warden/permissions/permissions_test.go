package permissions

import (
	"testing"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/snowflake/v2"
)

const (
	adminRole = snowflake.ID(100)
	modRole   = snowflake.ID(200)
	otherRole = snowflake.ID(300)
)

func TestResolver_Has(t *testing.T) {
	r := Resolver{AdminRole: adminRole, ModeratorRole: modRole}

	tests := []struct {
		name     string
		snapshot Snapshot
		level    Level
		want     bool
	}{
		{
			name:     "platform administrator passes admin",
			snapshot: Snapshot{Permissions: discord.PermissionAdministrator},
			level:    LevelAdmin,
			want:     true,
		},
		{
			name:     "platform administrator passes moderator",
			snapshot: Snapshot{Permissions: discord.PermissionAdministrator},
			level:    LevelModerator,
			want:     true,
		},
		{
			name:     "admin role passes admin",
			snapshot: Snapshot{RoleIDs: []snowflake.ID{adminRole}},
			level:    LevelAdmin,
			want:     true,
		},
		{
			name:     "admin role passes moderator",
			snapshot: Snapshot{RoleIDs: []snowflake.ID{adminRole}},
			level:    LevelModerator,
			want:     true,
		},
		{
			name:     "moderator role passes moderator",
			snapshot: Snapshot{RoleIDs: []snowflake.ID{modRole}},
			level:    LevelModerator,
			want:     true,
		},
		{
			name:     "moderator role does not pass admin",
			snapshot: Snapshot{RoleIDs: []snowflake.ID{modRole}},
			level:    LevelAdmin,
			want:     false,
		},
		{
			name:     "manage messages passes moderator",
			snapshot: Snapshot{Permissions: discord.PermissionManageMessages},
			level:    LevelModerator,
			want:     true,
		},
		{
			name:     "manage messages does not pass admin",
			snapshot: Snapshot{Permissions: discord.PermissionManageMessages},
			level:    LevelAdmin,
			want:     false,
		},
		{
			name:     "unrelated role passes nothing",
			snapshot: Snapshot{RoleIDs: []snowflake.ID{otherRole}},
			level:    LevelModerator,
			want:     false,
		},
		{
			name:     "empty snapshot passes nothing",
			snapshot: Snapshot{},
			level:    LevelAdmin,
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Has(tt.snapshot, tt.level); got != tt.want {
				t.Errorf("Has(%+v, %v) = %v, want %v", tt.snapshot, tt.level, got, tt.want)
			}
		})
	}
}

func TestResolver_UnconfiguredRolesFallBackToPermissions(t *testing.T) {
	r := Resolver{}

	if !r.Has(Snapshot{Permissions: discord.PermissionManageGuild}, LevelAdmin) {
		t.Error("ManageGuild must satisfy admin when no admin role is configured")
	}
	if r.Has(Snapshot{RoleIDs: []snowflake.ID{adminRole}}, LevelAdmin) {
		t.Error("a role must not satisfy admin when no admin role is configured")
	}
}
