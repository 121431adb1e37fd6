package commands

import (
	"errors"
	"testing"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
)

func TestDeletableMessageIDs(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	messages := []discord.Message{
		{ID: snowflake.ID(1), CreatedAt: now.Add(-time.Minute)},
		{ID: snowflake.ID(2), CreatedAt: now.Add(-13 * 24 * time.Hour)},
		{ID: snowflake.ID(3), CreatedAt: now.Add(-15 * 24 * time.Hour)},
		{ID: snowflake.ID(4), CreatedAt: now.Add(-14*24*time.Hour - time.Second)},
	}

	ids := deletableMessageIDs(messages, 0, now)

	if len(ids) != 2 {
		t.Fatalf("expected 2 deletable messages, got %d", len(ids))
	}
	if ids[0] != 1 || ids[1] != 2 {
		t.Errorf("unexpected IDs %v, messages older than two weeks must be excluded", ids)
	}
}

func TestDeletableMessageIDsAuthorFilter(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	alice := snowflake.ID(100)
	bob := snowflake.ID(200)

	messages := []discord.Message{
		{ID: snowflake.ID(1), Author: discord.User{ID: alice}, CreatedAt: now.Add(-time.Minute)},
		{ID: snowflake.ID(2), Author: discord.User{ID: bob}, CreatedAt: now.Add(-time.Minute)},
		{ID: snowflake.ID(3), Author: discord.User{ID: alice}, CreatedAt: now.Add(-time.Hour)},
		// Alice's, but too old to bulk delete.
		{ID: snowflake.ID(4), Author: discord.User{ID: alice}, CreatedAt: now.Add(-15 * 24 * time.Hour)},
	}

	ids := deletableMessageIDs(messages, alice, now)

	if len(ids) != 2 {
		t.Fatalf("expected 2 of alice's messages, got %d", len(ids))
	}
	if ids[0] != 1 || ids[1] != 3 {
		t.Errorf("unexpected IDs %v, only the author's recent messages may be deleted", ids)
	}
}

func TestDeletableMessageIDsEmpty(t *testing.T) {
	now := time.Now()
	old := []discord.Message{
		{ID: snowflake.ID(1), CreatedAt: now.Add(-30 * 24 * time.Hour)},
	}

	if ids := deletableMessageIDs(old, 0, now); len(ids) != 0 {
		t.Errorf("expected no deletable messages, got %v", ids)
	}
}

type fakeMemberRoles struct {
	member     *discord.Member
	getErr     error
	removed    []snowflake.ID
	removeCall int
}

func (f *fakeMemberRoles) GetMember(_ snowflake.ID, _ snowflake.ID, _ ...rest.RequestOpt) (*discord.Member, error) {
	return f.member, f.getErr
}

func (f *fakeMemberRoles) RemoveMemberRole(_ snowflake.ID, _ snowflake.ID, roleID snowflake.ID, _ ...rest.RequestOpt) error {
	f.removeCall++
	f.removed = append(f.removed, roleID)
	return nil
}

func TestUnmuteExpiryRemovesRole(t *testing.T) {
	muted := snowflake.ID(77)
	rm := &fakeMemberRoles{
		member: &discord.Member{RoleIDs: []snowflake.ID{1, muted}},
	}

	unmuteExpiryFunc(rm, 10, 20, muted)()

	if rm.removeCall != 1 {
		t.Fatalf("expected 1 role removal, got %d", rm.removeCall)
	}
	if rm.removed[0] != muted {
		t.Errorf("removed wrong role %v", rm.removed[0])
	}
}

func TestUnmuteExpirySkipsWhenRoleAlreadyGone(t *testing.T) {
	rm := &fakeMemberRoles{
		member: &discord.Member{RoleIDs: []snowflake.ID{1, 3}},
	}

	unmuteExpiryFunc(rm, 10, 20, 77)()

	if rm.removeCall != 0 {
		t.Errorf("member was unmuted by hand, callback must not remove again")
	}
}

func TestUnmuteExpirySkipsWhenMemberGone(t *testing.T) {
	rm := &fakeMemberRoles{
		getErr: errors.New("unknown member"),
	}

	unmuteExpiryFunc(rm, 10, 20, 77)()

	if rm.removeCall != 0 {
		t.Errorf("member left the guild, callback must not call the API")
	}
}
