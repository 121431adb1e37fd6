package handlers

import (
	"testing"
	"time"

	"github.com/disgoorg/snowflake/v2"
)

func TestAntiSpamTripsAtThreshold(t *testing.T) {
	tracker := NewAntiSpam(5, 10*time.Second)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	now := base
	tracker.now = func() time.Time { return now }

	user := snowflake.ID(100)
	for i := 0; i < 4; i++ {
		now = base.Add(time.Duration(i) * time.Second)
		if _, tripped := tracker.Record(user, snowflake.ID(i+1)); tripped {
			t.Fatalf("tripped early at message %d", i+1)
		}
	}

	now = base.Add(4 * time.Second)
	ids, tripped := tracker.Record(user, snowflake.ID(5))
	if !tripped {
		t.Fatal("expected fifth message in window to trip the tracker")
	}
	if len(ids) != 5 {
		t.Errorf("expected 5 message IDs, got %d", len(ids))
	}
}

func TestAntiSpamWindowExpiry(t *testing.T) {
	tracker := NewAntiSpam(3, 10*time.Second)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	now := base
	tracker.now = func() time.Time { return now }

	user := snowflake.ID(100)
	tracker.Record(user, 1)
	tracker.Record(user, 2)

	// The first two fall out of the window before the third arrives.
	now = base.Add(11 * time.Second)
	if _, tripped := tracker.Record(user, 3); tripped {
		t.Fatal("messages outside the window must not count toward the threshold")
	}
}

func TestAntiSpamResetsAfterTrip(t *testing.T) {
	tracker := NewAntiSpam(2, 10*time.Second)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	tracker.now = func() time.Time { return base }

	user := snowflake.ID(100)
	tracker.Record(user, 1)
	if _, tripped := tracker.Record(user, 2); !tripped {
		t.Fatal("expected trip at threshold")
	}
	if _, tripped := tracker.Record(user, 3); tripped {
		t.Fatal("tracker must reset after tripping, not re-trip on the next message")
	}
}

func TestAntiSpamTracksUsersIndependently(t *testing.T) {
	tracker := NewAntiSpam(3, 10*time.Second)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	tracker.now = func() time.Time { return base }

	tracker.Record(snowflake.ID(1), 10)
	tracker.Record(snowflake.ID(1), 11)
	if _, tripped := tracker.Record(snowflake.ID(2), 20); tripped {
		t.Fatal("one user's burst must not count against another")
	}
}

func TestHasAnyRole(t *testing.T) {
	have := []snowflake.ID{1, 2, 3}

	if !hasAnyRole(have, []snowflake.ID{9, 2}) {
		t.Error("expected match on shared role")
	}
	if hasAnyRole(have, []snowflake.ID{9, 8}) {
		t.Error("expected no match on disjoint roles")
	}
	if hasAnyRole(have, []snowflake.ID{0}) {
		t.Error("unset role IDs must never match")
	}
}
