// Package ragchat provides the core types shared by the chat client.
// The transcript, the session store, the history loader and the stream
// consumer all exchange Message values defined here.
package ragchat

import (
	"fmt"
	"strings"
)

const (
	// SessionStorageKey is the durable storage key holding the session identifier.
	SessionStorageKey = "chatbotSessionId"

	// StreamErrorText is appended as an assistant message when a streamed answer fails.
	StreamErrorText = "An error occurred during streaming."

	shortIDLength = 8
)

// ParseRole parses a role name as sent by the backend or stored in config.
//
// Example:
//
//	role, err := ParseRole("Assistant")
//	// role = RoleAssistant
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleUser:
		return RoleUser, nil
	case RoleAssistant:
		return RoleAssistant, nil
	default:
		return "", fmt.Errorf("invalid role: %q (expected %q or %q)", s, RoleUser, RoleAssistant)
	}
}

// ShortID returns the shortened session ID (first 8 characters)
func ShortID(id string) string {
	if len(id) >= shortIDLength {
		return id[:shortIDLength]
	}
	return id
}
