package admission

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/wardenbot/warden/warden/database/models"
	"github.com/wardenbot/warden/warden/database/repositories"
)

// fakeStore is an in-memory cooldown ledger keyed by (user, action).
type fakeStore struct {
	records map[[2]string]*models.Cooldown
	err     error
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: make(map[[2]string]*models.Cooldown)}
}

func (f *fakeStore) PurgeExpired(_ context.Context, now time.Time) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	var purged int64
	for key, record := range f.records {
		if !record.ExpiresAt.After(now) {
			delete(f.records, key)
			purged++
		}
	}
	return purged, nil
}

func (f *fakeStore) GetActive(_ context.Context, userID, action string, now time.Time) (*models.Cooldown, error) {
	if f.err != nil {
		return nil, f.err
	}
	record, ok := f.records[[2]string{userID, action}]
	if !ok || !record.ExpiresAt.After(now) {
		return nil, repositories.ErrCooldownNotFound
	}
	return record, nil
}

func (f *fakeStore) Upsert(_ context.Context, cooldown *models.Cooldown) error {
	if f.err != nil {
		return f.err
	}
	f.records[[2]string{cooldown.UserID, cooldown.Action}] = cooldown
	return nil
}

func (f *fakeStore) Remove(_ context.Context, userID, action string) error {
	delete(f.records, [2]string{userID, action})
	return nil
}

func TestService_WindowSemantics(t *testing.T) {
	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	window := 10 * time.Minute

	tests := []struct {
		name        string
		checkAt     time.Time
		wantAllowed bool
	}{
		{name: "immediately after arm", checkAt: start, wantAllowed: false},
		{name: "mid window", checkAt: start.Add(5 * time.Minute), wantAllowed: false},
		{name: "one instant before expiry", checkAt: start.Add(window - time.Millisecond), wantAllowed: false},
		{name: "exactly at expiry", checkAt: start.Add(window), wantAllowed: true},
		{name: "after expiry", checkAt: start.Add(window + time.Hour), wantAllowed: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			s := New(store, false)
			s.now = func() time.Time { return start }
			s.Arm(context.Background(), "user1", "guild1", "ticket", window)

			s.now = func() time.Time { return tt.checkAt }
			got := s.Check(context.Background(), "user1", "ticket")
			if got.Allowed != tt.wantAllowed {
				t.Errorf("Check() allowed = %v, want %v", got.Allowed, tt.wantAllowed)
			}
			if !got.Allowed {
				wantRemaining := start.Add(window).Sub(tt.checkAt)
				if got.Remaining != wantRemaining {
					t.Errorf("Check() remaining = %v, want %v", got.Remaining, wantRemaining)
				}
			}
		})
	}
}

func TestService_ScopedPerAction(t *testing.T) {
	store := newFakeStore()
	s := New(store, false)
	now := time.Now()
	s.now = func() time.Time { return now }

	s.Arm(context.Background(), "user1", "guild1", "ticket", time.Hour)

	if got := s.Check(context.Background(), "user1", "suggestion"); !got.Allowed {
		t.Error("cooldown for one action must not block another")
	}
	if got := s.Check(context.Background(), "user2", "ticket"); !got.Allowed {
		t.Error("cooldown for one actor must not block another")
	}
}

func TestService_RearmReplacesWindow(t *testing.T) {
	store := newFakeStore()
	s := New(store, false)
	start := time.Now()
	s.now = func() time.Time { return start }

	s.Arm(context.Background(), "user1", "guild1", "ticket", time.Hour)
	s.Arm(context.Background(), "user1", "guild1", "ticket", time.Minute)

	s.now = func() time.Time { return start.Add(2 * time.Minute) }
	if got := s.Check(context.Background(), "user1", "ticket"); !got.Allowed {
		t.Error("re-arming must replace the window, not stack on it")
	}
}

func TestService_FailurePolicy(t *testing.T) {
	tests := []struct {
		name        string
		failClosed  bool
		wantAllowed bool
	}{
		{name: "fail open by default", failClosed: false, wantAllowed: true},
		{name: "fail closed when configured", failClosed: true, wantAllowed: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			store.err = errors.New("connection refused")
			s := New(store, tt.failClosed)

			got := s.Check(context.Background(), "user1", "ticket")
			if got.Allowed != tt.wantAllowed {
				t.Errorf("Check() allowed = %v, want %v", got.Allowed, tt.wantAllowed)
			}
		})
	}
}
