package commands

import (
	"github.com/disgoorg/disgo/discord"
)

var Commands = []discord.ApplicationCommandCreate{
	Ticket,
	Suggest,
	Suggestions,
	SuggestionVotes,
	RequestLOA,
	Verify,
	Mod,
	ModLogs,
	Stats,
	Say,
	ServerWarning,
	Embed,
	Lockdown,
}

func intPtr(v int) *int {
	return &v
}
