package stream

import "github.com/longkey1/ragchat/internal/ragchat/transcript"

// Phase tracks how the next chunk of a stream is folded into the placeholder.
type Phase int

const (
	// AwaitingFirstChunk: the next non-empty chunk replaces the placeholder.
	AwaitingFirstChunk Phase = iota
	// Streaming: chunks are appended.
	Streaming
)

func (p Phase) String() string {
	switch p {
	case AwaitingFirstChunk:
		return "awaiting-first-chunk"
	case Streaming:
		return "streaming"
	default:
		return "unknown"
	}
}

// Fold returns the action applying chunk in the current phase and the phase
// that follows. Empty chunks leave the phase unchanged and yield no action.
func (p Phase) Fold(chunk string) (transcript.Action, Phase) {
	if chunk == "" {
		return nil, p
	}
	return transcript.UpdateLastMessage{Content: chunk, Replace: p == AwaitingFirstChunk}, Streaming
}
