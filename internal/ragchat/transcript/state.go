// Package transcript holds the chat transcript state and the single
// reducer through which every mutation goes.
package transcript

import (
	"slices"

	"github.com/longkey1/ragchat/internal/ragchat"
)

// State is an immutable snapshot of the chat. Reduce never mutates the
// Messages slice of a State it receives, so snapshots may be shared freely.
type State struct {
	SessionID string
	Messages  []ragchat.Message
	Loading   bool
	Streaming bool
}

// Last returns the final message of the transcript.
func (s State) Last() (ragchat.Message, bool) {
	if len(s.Messages) == 0 {
		return ragchat.Message{}, false
	}
	return s.Messages[len(s.Messages)-1], true
}

// Action is a state transition understood by Reduce.
type Action interface {
	isAction()
}

// SetMessages replaces the whole transcript.
type SetMessages struct {
	Messages []ragchat.Message
}

// AppendMessage adds a message at the end of the transcript.
type AppendMessage struct {
	Message ragchat.Message
}

// UpdateLastMessage folds streamed content into the last assistant message.
// Replace overwrites the content instead of appending to it.
type UpdateLastMessage struct {
	Content string
	Replace bool
}

// SetLoading toggles the loading indicator.
type SetLoading struct {
	Loading bool
}

// SetStreaming toggles the streaming flag.
type SetStreaming struct {
	Streaming bool
}

// SetSessionID records the session the transcript belongs to.
type SetSessionID struct {
	SessionID string
}

func (SetMessages) isAction()       {}
func (AppendMessage) isAction()     {}
func (UpdateLastMessage) isAction() {}
func (SetLoading) isAction()        {}
func (SetStreaming) isAction()      {}
func (SetSessionID) isAction()      {}

// Reduce returns the state obtained by applying action to state.
func Reduce(state State, action Action) State {
	switch a := action.(type) {
	case SetMessages:
		state.Messages = slices.Clone(a.Messages)
	case AppendMessage:
		state.Messages = append(slices.Clip(state.Messages), a.Message)
	case UpdateLastMessage:
		last := len(state.Messages) - 1
		if last < 0 || !state.Messages[last].IsAssistant() {
			return state
		}
		messages := slices.Clone(state.Messages)
		if a.Replace {
			messages[last].Content = a.Content
		} else {
			messages[last].Content += a.Content
		}
		state.Messages = messages
	case SetLoading:
		state.Loading = a.Loading
	case SetStreaming:
		state.Streaming = a.Streaming
	case SetSessionID:
		state.SessionID = a.SessionID
	}
	return state
}
