package utils

import (
	"fmt"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/wardenbot/warden/warden/config"
)

// ResponseHandler provides standardized response methods for commands and components
type ResponseHandler struct{}

var EH = &ResponseHandler{}

// ErrorType represents different categories of errors for consistent handling
type ErrorType int

const (
	// UserError - User input issues, validation failures, parameter problems
	UserError ErrorType = iota
	// SystemError - Database failures, network issues, internal server errors
	SystemError
	// NotFoundError - Requested resources don't exist
	NotFoundError
	// PermissionError - Unauthorized actions, access denied
	PermissionError
	// BusinessLogicError - Cooldowns, duplicate requests, workflow rule violations
	BusinessLogicError
)

func getErrorPrefix(errorType ErrorType) string {
	switch errorType {
	case UserError:
		return "⚠️"
	case SystemError:
		return "🔧"
	case NotFoundError:
		return "🔍"
	case PermissionError:
		return "🚫"
	case BusinessLogicError:
		return "⏰"
	default:
		return "❌"
	}
}

func getErrorColor(errorType ErrorType) int {
	switch errorType {
	case UserError, BusinessLogicError:
		return config.WarningColor
	case NotFoundError:
		return config.InfoColor
	default:
		return config.ErrorColor
	}
}

// CreateErrorEmbed creates a standard error embed for command events
func (h *ResponseHandler) CreateErrorEmbed(event *handler.CommandEvent, message string) error {
	return event.CreateMessage(discord.MessageCreate{
		Embeds: []discord.Embed{{
			Description: message,
			Color:       config.ErrorColor,
		}},
	})
}

// CreateSuccessEmbed creates a standard success embed for command events
func (h *ResponseHandler) CreateSuccessEmbed(event *handler.CommandEvent, message string) error {
	return event.CreateMessage(discord.MessageCreate{
		Embeds: []discord.Embed{{
			Description: message,
			Color:       config.SuccessColor,
		}},
	})
}

// CreateInfoEmbed creates a standard info embed for command events
func (h *ResponseHandler) CreateInfoEmbed(event *handler.CommandEvent, message string) error {
	return event.CreateMessage(discord.MessageCreate{
		Embeds: []discord.Embed{{
			Description: message,
			Color:       config.InfoColor,
		}},
	})
}

// CreateEphemeralError creates an ephemeral error message for component events
func (h *ResponseHandler) CreateEphemeralError(event *handler.ComponentEvent, message string) error {
	return event.CreateMessage(discord.MessageCreate{
		Content: message,
		Flags:   discord.MessageFlagEphemeral,
	})
}

// CreateEphemeralSuccess creates an ephemeral success message for component events
func (h *ResponseHandler) CreateEphemeralSuccess(event *handler.ComponentEvent, message string) error {
	return event.CreateMessage(discord.MessageCreate{
		Content: "✅ " + message,
		Flags:   discord.MessageFlagEphemeral,
	})
}

// CreateError creates a detailed error embed with title and description
func (h *ResponseHandler) CreateError(event *handler.CommandEvent, title, description string) error {
	return event.CreateMessage(discord.MessageCreate{
		Embeds: []discord.Embed{{
			Title:       "❌ " + title,
			Description: fmt.Sprintf("```diff\n- %s\n```", description),
			Color:       config.ErrorColor,
		}},
	})
}

// HandleError provides centralized error handling for different event types
func (h *ResponseHandler) HandleError(event interface{}, message string) error {
	switch e := event.(type) {
	case *handler.CommandEvent:
		return h.CreateErrorEmbed(e, message)
	case *handler.ComponentEvent:
		return h.CreateEphemeralError(e, message)
	default:
		return fmt.Errorf("unsupported event type for error handling")
	}
}

// HandleSuccess provides centralized success handling for different event types
func (h *ResponseHandler) HandleSuccess(event interface{}, message string) error {
	switch e := event.(type) {
	case *handler.CommandEvent:
		return h.CreateSuccessEmbed(e, message)
	case *handler.ComponentEvent:
		return h.CreateEphemeralSuccess(e, message)
	default:
		return fmt.Errorf("unsupported event type for success handling")
	}
}

// CreateClassifiedError creates an error response with automatic categorization
func (h *ResponseHandler) CreateClassifiedError(event *handler.CommandEvent, errorType ErrorType, message string) error {
	return event.CreateMessage(discord.MessageCreate{
		Embeds: []discord.Embed{{
			Description: getErrorPrefix(errorType) + " " + message,
			Color:       getErrorColor(errorType),
		}},
	})
}

// CreateUserError creates an error response for user input issues
func (h *ResponseHandler) CreateUserError(event *handler.CommandEvent, message string) error {
	return h.CreateClassifiedError(event, UserError, message)
}

// CreateSystemError creates an error response for internal failures
func (h *ResponseHandler) CreateSystemError(event *handler.CommandEvent, message string) error {
	return h.CreateClassifiedError(event, SystemError, message)
}

// CreateNotFoundError creates an error response for missing resources
func (h *ResponseHandler) CreateNotFoundError(event *handler.CommandEvent, message string) error {
	return h.CreateClassifiedError(event, NotFoundError, message)
}

// CreatePermissionError creates an error response for denied actions
func (h *ResponseHandler) CreatePermissionError(event *handler.CommandEvent, message string) error {
	return h.CreateClassifiedError(event, PermissionError, message)
}

// CreateBusinessLogicError creates an error response for workflow rule violations
func (h *ResponseHandler) CreateBusinessLogicError(event *handler.CommandEvent, message string) error {
	return h.CreateClassifiedError(event, BusinessLogicError, message)
}
