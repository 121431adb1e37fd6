package warden

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/disgoorg/snowflake/v2"
)

func TestLoadConfig(t *testing.T) {
	raw := `
[log]
level = "info"
format = "text"
add_source = false

[bot]
token = "test-token"
dev_guilds = [123456789012345678]

[db]
host = "localhost"
port = 5432
user = "warden"
password = "secret"
database = "warden"
pool_size = 10

[roles]
admin = 111111111111111111
moderator = 222222222222222222
muted = 333333333333333333

[channels]
suggestions = 444444444444444444

[leave]
approvers = [555555555555555555, 666666666666666666]

[cooldowns]
suggest = 5
ticket = 10

[admission]
fail_closed = true

[antispam]
enabled = true
threshold = 5
window_seconds = 10
mute_minutes = 5
`
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}

	if cfg.Bot.Token != "test-token" {
		t.Errorf("expected token test-token, got %q", cfg.Bot.Token)
	}
	if len(cfg.Bot.DevGuilds) != 1 || cfg.Bot.DevGuilds[0] != snowflake.ID(123456789012345678) {
		t.Errorf("unexpected dev guilds: %v", cfg.Bot.DevGuilds)
	}
	if cfg.DB.Host != "localhost" || cfg.DB.PoolSize != 10 {
		t.Errorf("unexpected db config: %+v", cfg.DB)
	}
	if cfg.Roles.Moderator != snowflake.ID(222222222222222222) {
		t.Errorf("unexpected moderator role: %v", cfg.Roles.Moderator)
	}
	if len(cfg.Leave.Approvers) != 2 {
		t.Errorf("expected 2 approvers, got %d", len(cfg.Leave.Approvers))
	}
	if cfg.Cooldowns.Suggest != 5 || cfg.Cooldowns.Ticket != 10 {
		t.Errorf("unexpected cooldowns: %+v", cfg.Cooldowns)
	}
	if !cfg.Admission.FailClosed {
		t.Error("expected fail_closed to be true")
	}
	if !cfg.AntiSpam.Enabled || cfg.AntiSpam.Threshold != 5 {
		t.Errorf("unexpected antispam config: %+v", cfg.AntiSpam)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
