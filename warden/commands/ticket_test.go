package commands

import (
	"context"
	"errors"
	"testing"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/snowflake/v2"

	"github.com/wardenbot/warden/warden/database/models"
	"github.com/wardenbot/warden/warden/database/repositories"
	"github.com/wardenbot/warden/warden/permissions"
)

type fakeTicketRepo struct {
	open   *models.Ticket
	getErr error
}

func (f *fakeTicketRepo) Create(_ context.Context, _ *models.Ticket) error { return nil }

func (f *fakeTicketRepo) GetOpenByOwner(_ context.Context, _, _ string) (*models.Ticket, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.open != nil {
		return f.open, nil
	}
	return nil, repositories.ErrTicketNotFound
}

func (f *fakeTicketRepo) GetOpenByChannel(_ context.Context, _ string) (*models.Ticket, error) {
	return nil, repositories.ErrTicketNotFound
}

func (f *fakeTicketRepo) Close(_ context.Context, _, _ string) error { return nil }

func TestEnsureNoOpenTicket(t *testing.T) {
	ctx := context.Background()

	t.Run("no open ticket passes", func(t *testing.T) {
		repo := &fakeTicketRepo{}
		if err := ensureNoOpenTicket(ctx, repo, "100", "200"); err != nil {
			t.Errorf("expected nil, got %v", err)
		}
	})

	t.Run("second ticket rejected while one is open", func(t *testing.T) {
		repo := &fakeTicketRepo{open: &models.Ticket{TicketID: "t1", OwnerID: "100"}}
		err := ensureNoOpenTicket(ctx, repo, "100", "200")
		if !errors.Is(err, errTicketAlreadyOpen) {
			t.Errorf("expected errTicketAlreadyOpen, got %v", err)
		}
	})

	t.Run("lookup failure propagates", func(t *testing.T) {
		dbErr := errors.New("connection reset")
		repo := &fakeTicketRepo{getErr: dbErr}
		err := ensureNoOpenTicket(ctx, repo, "100", "200")
		if !errors.Is(err, dbErr) {
			t.Errorf("expected the lookup error, got %v", err)
		}
	})
}

func TestCanCloseTicket(t *testing.T) {
	modRole := snowflake.ID(500)
	perms := permissions.Resolver{ModeratorRole: modRole}
	ticket := &models.Ticket{TicketID: "t1", OwnerID: "100"}

	t.Run("owner may close", func(t *testing.T) {
		if !CanCloseTicket(ticket, snowflake.ID(100), permissions.Snapshot{}, perms) {
			t.Error("the ticket owner must be able to close their own ticket")
		}
	})

	t.Run("moderator may close", func(t *testing.T) {
		snap := permissions.Snapshot{RoleIDs: []snowflake.ID{modRole}}
		if !CanCloseTicket(ticket, snowflake.ID(300), snap, perms) {
			t.Error("a moderator must be able to close any ticket")
		}
	})

	t.Run("added participant may not close", func(t *testing.T) {
		if CanCloseTicket(ticket, snowflake.ID(300), permissions.Snapshot{}, perms) {
			t.Error("a plain participant must not be able to close someone else's ticket")
		}
	})
}

func TestTicketOverwrites(t *testing.T) {
	guild := snowflake.ID(1)
	owner := snowflake.ID(2)
	bot := snowflake.ID(3)
	modRole := snowflake.ID(4)
	adminRole := snowflake.ID(5)

	overwrites := ticketOverwrites(guild, owner, bot, modRole, adminRole)

	if len(overwrites) != 5 {
		t.Fatalf("expected 5 overwrites, got %d", len(overwrites))
	}

	var botCanManage, adminCanView bool
	for _, ow := range overwrites {
		switch o := ow.(type) {
		case discord.MemberPermissionOverwrite:
			if o.UserID == bot && o.Allow.Has(discord.PermissionManageChannels) && o.Allow.Has(discord.PermissionViewChannel) {
				botCanManage = true
			}
		case discord.RolePermissionOverwrite:
			if o.RoleID == adminRole && o.Allow.Has(discord.PermissionViewChannel) {
				adminCanView = true
			}
		}
	}
	if !botCanManage {
		t.Error("the bot needs ViewChannel and ManageChannels on the ticket channel")
	}
	if !adminCanView {
		t.Error("the admin role needs access to the ticket channel")
	}

	// Unconfigured roles must not produce empty overwrites.
	if got := len(ticketOverwrites(guild, owner, bot, 0, 0)); got != 3 {
		t.Errorf("expected 3 overwrites without staff roles, got %d", got)
	}
}

func TestTicketChannelName(t *testing.T) {
	tests := []struct {
		name     string
		username string
		want     string
	}{
		{"plain", "alice", "ticket-alice"},
		{"uppercase folded", "Alice", "ticket-alice"},
		{"digits kept", "user123", "ticket-user123"},
		{"spaces dropped", "some user", "ticket-someuser"},
		{"symbols dropped", "al!ce_#1", "ticket-alce1"},
		{"all symbols falls back", "!!!", "ticket-user"},
		{"unicode dropped", "ユーザー", "ticket-user"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ticketChannelName(tt.username); got != tt.want {
				t.Errorf("ticketChannelName(%q) = %q, want %q", tt.username, got, tt.want)
			}
		})
	}
}
