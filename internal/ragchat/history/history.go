// Package history restores the transcript of an existing session from the
// backend.
package history

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/longkey1/ragchat/internal/backend"
	"github.com/longkey1/ragchat/internal/ragchat"
	"github.com/longkey1/ragchat/internal/ragchat/transcript"
)

// Backend fetches the raw history records of a session.
type Backend interface {
	History(ctx context.Context, sessionID string) ([]backend.HistoryRecord, error)
}

// Loader replaces the transcript with the backend's record of a session.
type Loader struct {
	backend Backend
	store   *transcript.Store
	logger  zerolog.Logger
}

// NewLoader creates a loader writing into store.
func NewLoader(b Backend, store *transcript.Store, logger zerolog.Logger) *Loader {
	return &Loader{backend: b, store: store, logger: logger}
}

// Load fetches the history of sessionID and, on success, replaces the
// transcript with it. On failure the transcript is left untouched. An empty
// sessionID is a no-op.
func (l *Loader) Load(ctx context.Context, sessionID string) ([]ragchat.Message, error) {
	if sessionID == "" {
		return nil, nil
	}

	records, err := l.backend.History(ctx, sessionID)
	if err != nil {
		l.logger.Error().Err(err).Str("session", ragchat.ShortID(sessionID)).Msg("failed to load history")
		return nil, fmt.Errorf("loading history: %w", err)
	}

	messages := Normalize(records)
	l.store.Dispatch(transcript.SetMessages{Messages: messages})
	l.logger.Debug().Int("messages", len(messages)).Str("session", ragchat.ShortID(sessionID)).Msg("history loaded")
	return messages, nil
}

// Normalize converts backend records into transcript messages. A record
// with user text becomes a user message, one with bot text an assistant
// message. Anything else keeps its own role and content; a known role
// name is canonicalized.
func Normalize(records []backend.HistoryRecord) []ragchat.Message {
	messages := make([]ragchat.Message, 0, len(records))
	for _, r := range records {
		switch {
		case r.User != "":
			messages = append(messages, ragchat.Message{Role: ragchat.RoleUser, Content: r.User})
		case r.Bot != "":
			messages = append(messages, ragchat.Message{Role: ragchat.RoleAssistant, Content: r.Bot})
		default:
			role, err := ragchat.ParseRole(r.Role)
			if err != nil {
				role = ragchat.Role(r.Role)
			}
			messages = append(messages, ragchat.Message{Role: role, Content: r.Content})
		}
	}
	return messages
}
