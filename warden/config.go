package warden

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/disgoorg/snowflake/v2"
	"github.com/pelletier/go-toml/v2"

	"github.com/wardenbot/warden/warden/database"
)

func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err = toml.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type Config struct {
	Log       LogConfig         `toml:"log"`
	Bot       BotConfig         `toml:"bot"`
	DB        database.DBConfig `toml:"db"`
	Roles     RolesConfig       `toml:"roles"`
	Channels  ChannelsConfig    `toml:"channels"`
	Leave     LeaveConfig       `toml:"leave"`
	Cooldowns CooldownsConfig   `toml:"cooldowns"`
	Admission AdmissionConfig   `toml:"admission"`
	AntiSpam  AntiSpamConfig    `toml:"antispam"`
}

type BotConfig struct {
	DevGuilds []snowflake.ID `toml:"dev_guilds"`
	Token     string         `toml:"token"`
}

type LogConfig struct {
	Level     slog.Level `toml:"level"`
	Format    string     `toml:"format"`
	AddSource bool       `toml:"add_source"`
}

type RolesConfig struct {
	Admin     snowflake.ID `toml:"admin"`
	Moderator snowflake.ID `toml:"moderator"`
	Muted     snowflake.ID `toml:"muted"`
	Verified  snowflake.ID `toml:"verified"`
	OnLeave   snowflake.ID `toml:"on_leave"`
}

type ChannelsConfig struct {
	TicketCategory snowflake.ID `toml:"ticket_category"`
	Suggestions    snowflake.ID `toml:"suggestions"`
	LeaveRequests  snowflake.ID `toml:"leave_requests"`
	ModLog         snowflake.ID `toml:"mod_log"`
}

type LeaveConfig struct {
	// Approvers are the only users whose decision buttons are honored.
	Approvers []snowflake.ID `toml:"approvers"`
}

// CooldownsConfig holds per-action cooldown windows in minutes. A zero
// value disables the cooldown for that action.
type CooldownsConfig struct {
	Suggest      int `toml:"suggest"`
	Ticket       int `toml:"ticket"`
	LeaveRequest int `toml:"leave_request"`
	Verify       int `toml:"verify"`
}

type AdmissionConfig struct {
	FailClosed bool `toml:"fail_closed"`
}

type AntiSpamConfig struct {
	Enabled       bool `toml:"enabled"`
	Threshold     int  `toml:"threshold"`
	WindowSeconds int  `toml:"window_seconds"`
	MuteMinutes   int  `toml:"mute_minutes"`
}
