package ragchat

// Role identifies who authored a message in the transcript.
type Role string

const (
	// RoleUser marks a message typed by the person using the client.
	RoleUser Role = "user"
	// RoleAssistant marks a message produced by the chat backend.
	RoleAssistant Role = "assistant"
)

// Message represents a single entry of the transcript
type Message struct {
	Role    Role   `json:"role"`    // "user" or "assistant"
	Content string `json:"content"` // Message content
}

// IsAssistant reports whether the message was produced by the backend.
func (m Message) IsAssistant() bool {
	return m.Role == RoleAssistant
}
