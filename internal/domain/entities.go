package domain

import (
	"context"
	"strings"
)

// Role is the author of a conversation turn.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ParseHistoryRole coerces an untrusted role into one a client may claim.
// Anything other than "assistant" or "user" becomes "user".
func ParseHistoryRole(s string) Role {
	switch Role(s) {
	case RoleAssistant:
		return RoleAssistant
	default:
		return RoleUser
	}
}

// Message is a single entry of a chat-completion request.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Mode selects the assistant persona.
type Mode string

const (
	ModeWarm  Mode = "chaleureux"
	ModeCoach Mode = "coach"
	ModeOsteo Mode = "cabinet_osteo"
	ModePro   Mode = "pro"
)

// DefaultMode is used for absent or unrecognized modes.
const DefaultMode = ModePro

// Modes lists every known persona in a stable order.
var Modes = []Mode{ModeWarm, ModeCoach, ModeOsteo, ModePro}

// ParseMode maps any input onto a known Mode. Unknown or empty values yield DefaultMode.
func ParseMode(s string) Mode {
	m := Mode(strings.TrimSpace(s))
	for _, known := range Modes {
		if m == known {
			return m
		}
	}
	return DefaultMode
}

// CompletionRequest is the ordered context sent upstream: system first, user last.
type CompletionRequest struct {
	Messages []Message
}

// ChatInput is the untrusted inbound payload after JSON field extraction.
// History keeps the raw JSON so that its shape can be checked by the sanitizer.
type ChatInput struct {
	UserMessage string
	Mode        string
	History     []byte
}

// Reply is the successful outcome of the chat pipeline.
type Reply struct {
	Answer string
	Mode   Mode
}

// CompletionClient (port)
//
// Complete issues exactly one chat-completion call and returns the raw text.
// Implementations must not retry.
type CompletionClient interface {
	Complete(ctx Context, req CompletionRequest) (string, error)
}

// Context aliases the standard context so that ports read naturally.
type Context = context.Context
