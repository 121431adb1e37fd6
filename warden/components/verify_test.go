package components

import (
	"context"
	"errors"
	"testing"

	"github.com/disgoorg/snowflake/v2"

	"github.com/wardenbot/warden/warden/database/models"
	"github.com/wardenbot/warden/warden/database/repositories"
	"github.com/wardenbot/warden/warden/roblox"
)

func TestParseVerifyPayload(t *testing.T) {
	tests := []struct {
		name      string
		payload   string
		wantActor snowflake.ID
		wantID    int64
		wantCode  string
		wantOK    bool
	}{
		{"valid", "901:156:abc123", 901, 156, "abc123", true},
		{"code with colon", "901:156:ab:c1", 901, 156, "ab:c1", true},
		{"missing code", "901:156:", 0, 0, "", false},
		{"missing roblox id", "901::abc123", 0, 0, "", false},
		{"missing actor", ":156:abc123", 0, 0, "", false},
		{"actor not a number", "xyz:156:abc123", 0, 0, "", false},
		{"roblox id not a number", "901:xyz:abc123", 0, 0, "", false},
		{"negative roblox id", "901:-5:abc123", 0, 0, "", false},
		{"two parts only", "156:abc123", 0, 0, "", false},
		{"empty", "", 0, 0, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actor, id, code, ok := parseVerifyPayload(tt.payload)
			if ok != tt.wantOK || actor != tt.wantActor || id != tt.wantID || code != tt.wantCode {
				t.Errorf("parseVerifyPayload(%q) = (%d, %d, %q, %v), want (%d, %d, %q, %v)",
					tt.payload, actor, id, code, ok, tt.wantActor, tt.wantID, tt.wantCode, tt.wantOK)
			}
		})
	}
}

type fakeVerificationRepo struct {
	byRobloxID map[int64]*models.Verification
	err        error
}

func (f *fakeVerificationRepo) GetByDiscordID(_ context.Context, _ string) (*models.Verification, error) {
	return nil, repositories.ErrVerificationNotFound
}

func (f *fakeVerificationRepo) GetByRobloxID(_ context.Context, robloxID int64) (*models.Verification, error) {
	if f.err != nil {
		return nil, f.err
	}
	if v, ok := f.byRobloxID[robloxID]; ok {
		return v, nil
	}
	return nil, repositories.ErrVerificationNotFound
}

func (f *fakeVerificationRepo) Create(_ context.Context, _ *models.Verification) error {
	return nil
}

func TestCheckVerificationEligibility(t *testing.T) {
	profile := &roblox.Profile{
		ID:          156,
		Name:        "builderman",
		Description: "hello warden-code-xk2f9a bye",
	}

	t.Run("code present and account free", func(t *testing.T) {
		repo := &fakeVerificationRepo{}
		if err := checkVerificationEligibility(context.Background(), repo, profile, "warden-code-xk2f9a"); err != nil {
			t.Errorf("expected success, got %v", err)
		}
	})

	t.Run("banned account rejected", func(t *testing.T) {
		banned := &roblox.Profile{
			ID:          157,
			Name:        "troublemaker",
			Description: "hello warden-code-xk2f9a bye",
			Banned:      true,
		}
		repo := &fakeVerificationRepo{}
		err := checkVerificationEligibility(context.Background(), repo, banned, "warden-code-xk2f9a")
		if !errors.Is(err, errProfileBanned) {
			t.Errorf("expected errProfileBanned, got %v", err)
		}
	})

	t.Run("code missing", func(t *testing.T) {
		repo := &fakeVerificationRepo{}
		err := checkVerificationEligibility(context.Background(), repo, profile, "not-there")
		if !errors.Is(err, errCodeMissing) {
			t.Errorf("expected errCodeMissing, got %v", err)
		}
	})

	t.Run("account already linked", func(t *testing.T) {
		repo := &fakeVerificationRepo{
			byRobloxID: map[int64]*models.Verification{156: {RobloxID: 156}},
		}
		err := checkVerificationEligibility(context.Background(), repo, profile, "warden-code-xk2f9a")
		if !errors.Is(err, errAccountTaken) {
			t.Errorf("expected errAccountTaken, got %v", err)
		}
	})

	t.Run("lookup failure propagates", func(t *testing.T) {
		dbErr := errors.New("connection reset")
		repo := &fakeVerificationRepo{err: dbErr}
		err := checkVerificationEligibility(context.Background(), repo, profile, "warden-code-xk2f9a")
		if !errors.Is(err, dbErr) {
			t.Errorf("expected the lookup error, got %v", err)
		}
	})
}
