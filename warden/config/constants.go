package config

import "time"

// Application-wide constants organized by domain

// UI and Display Constants
const (
	// Pagination
	DefaultPageSize = 10
	LogsPerPage     = 5
	MaxPageSize     = 25

	// Colors
	ErrorColor   = 0xFF0000
	SuccessColor = 0x00FF00
	InfoColor    = 0x0099FF
	WarningColor = 0xFFAA00

	// Discord UI Colors
	BackgroundColor   = 0x2B2D31
	EmbedDefaultColor = 0x2B2D31
)

// Database and Performance Constants
const (
	// Timeouts
	DefaultQueryTimeout     = 30 * time.Second
	CommandExecutionTimeout = 10 * time.Second
	NetworkDialTimeout      = 5 * time.Second
	NetworkKeepAlive        = 30 * time.Second
)

// Workflow Constants
const (
	// Tickets
	TicketDeleteDelay = 10 * time.Second

	// Moderation
	BulkDeleteMaxAge  = 14 * 24 * time.Hour
	MaxClearAmount    = 100
	VerifyCodeLength  = 6
	VerifyCodeCharset = "abcdefghijklmnopqrstuvwxyz0123456789"
)
