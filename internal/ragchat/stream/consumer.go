// Package stream sends a question to the backend and folds the streamed
// answer into the transcript as it arrives.
package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/longkey1/ragchat/internal/backend"
	"github.com/longkey1/ragchat/internal/ragchat"
	"github.com/longkey1/ragchat/internal/ragchat/transcript"
)

const readBufferSize = 4096

// ErrStreamInProgress is returned when a message is sent while the answer
// to the previous one is still streaming.
var ErrStreamInProgress = errors.New("a response is still streaming")

// Backend opens the streamed answer to a query.
type Backend interface {
	Chat(ctx context.Context, query, sessionID string) (io.ReadCloser, error)
}

// Consumer sends messages and streams their answers into a transcript store.
type Consumer struct {
	backend  Backend
	store    *transcript.Store
	logger   zerolog.Logger
	inFlight atomic.Bool
}

// NewConsumer creates a consumer writing into store.
func NewConsumer(b Backend, store *transcript.Store, logger zerolog.Logger) *Consumer {
	return &Consumer{
		backend: b,
		store:   store,
		logger:  logger,
	}
}

// InFlight reports whether an answer is currently streaming.
func (c *Consumer) InFlight() bool {
	return c.inFlight.Load()
}

// SendMessage appends the query and an empty assistant placeholder to the
// transcript, then streams the answer into the placeholder. A blank query is
// ignored. Failures are recorded in the transcript and returned.
func (c *Consumer) SendMessage(ctx context.Context, query, sessionID string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	if !c.inFlight.CompareAndSwap(false, true) {
		return ErrStreamInProgress
	}
	defer c.inFlight.Store(false)

	c.store.Dispatch(
		transcript.AppendMessage{Message: ragchat.Message{Role: ragchat.RoleUser, Content: query}},
		transcript.AppendMessage{Message: ragchat.Message{Role: ragchat.RoleAssistant}},
		transcript.SetStreaming{Streaming: true},
		transcript.SetLoading{Loading: true},
	)
	defer c.store.Dispatch(
		transcript.SetLoading{Loading: false},
		transcript.SetStreaming{Streaming: false},
	)

	logger := c.logger.With().Str("session", ragchat.ShortID(sessionID)).Logger()

	if err := c.stream(ctx, query, sessionID, logger); err != nil {
		logger.Error().Err(err).Msg("streaming failed")
		c.store.Dispatch(transcript.AppendMessage{
			Message: ragchat.Message{Role: ragchat.RoleAssistant, Content: ragchat.StreamErrorText},
		})
		return err
	}
	return nil
}

func (c *Consumer) stream(ctx context.Context, query, sessionID string, logger zerolog.Logger) error {
	body, err := c.backend.Chat(ctx, query, sessionID)
	if err != nil {
		return fmt.Errorf("sending message: %w", err)
	}
	defer body.Close()

	decoder := NewDecoder()
	phase := AwaitingFirstChunk
	fold := func(text string) {
		var action transcript.Action
		action, phase = phase.Fold(text)
		if action != nil {
			c.store.Dispatch(action)
		}
	}

	buf := make([]byte, readBufferSize)
	received := 0
	for {
		n, readErr := body.Read(buf)
		if n > 0 {
			received += n
			fold(decoder.Decode(buf[:n]))
		}
		if errors.Is(readErr, io.EOF) {
			fold(decoder.Flush())
			logger.Debug().Int("bytes", received).Str("phase", phase.String()).Msg("stream complete")
			return nil
		}
		if readErr != nil {
			return &backend.StreamError{Err: readErr}
		}
	}
}
