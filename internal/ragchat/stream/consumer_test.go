package stream

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/longkey1/ragchat/internal/backend"
	"github.com/longkey1/ragchat/internal/ragchat"
	"github.com/longkey1/ragchat/internal/ragchat/transcript"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// chunkReader returns one chunk per Read call, then err (io.EOF by default).
type chunkReader struct {
	chunks [][]byte
	err    error
	closed bool
	// onRead runs before each Read, letting tests observe intermediate state.
	onRead func(i int)
	reads  int
}

func (r *chunkReader) Read(p []byte) (int, error) {
	if r.onRead != nil {
		r.onRead(r.reads)
	}
	r.reads++
	if len(r.chunks) == 0 {
		if r.err != nil {
			return 0, r.err
		}
		return 0, io.EOF
	}
	n := copy(p, r.chunks[0])
	r.chunks[0] = r.chunks[0][n:]
	if len(r.chunks[0]) == 0 {
		r.chunks = r.chunks[1:]
	}
	return n, nil
}

func (r *chunkReader) Close() error {
	r.closed = true
	return nil
}

type fakeBackend struct {
	mu      sync.Mutex
	body    *chunkReader
	err     error
	queries []backend.ChatRequest
	// block, when set, is waited on before answering.
	block chan struct{}
}

func (f *fakeBackend) Chat(ctx context.Context, query, sessionID string) (io.ReadCloser, error) {
	f.mu.Lock()
	f.queries = append(f.queries, backend.ChatRequest{Query: query, SessionID: sessionID})
	f.mu.Unlock()
	if f.block != nil {
		<-f.block
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.body, nil
}

func chunks(parts ...string) [][]byte {
	out := make([][]byte, len(parts))
	for i, p := range parts {
		out[i] = []byte(p)
	}
	return out
}

func newConsumer(b Backend) (*Consumer, *transcript.Store) {
	store := transcript.NewStore(transcript.State{SessionID: "s1"})
	return NewConsumer(b, store, zerolog.Nop()), store
}

func TestSendMessageConcatenatesChunks(t *testing.T) {
	tests := []struct {
		name   string
		chunks []string
		want   string
	}{
		{name: "single chunk", chunks: []string{"Hello"}, want: "Hello"},
		{name: "many chunks", chunks: []string{"The ", "news ", "today", "."}, want: "The news today."},
		{name: "leading empty chunk", chunks: []string{"", "Hi", "", " there"}, want: "Hi there"},
		{name: "no chunks", chunks: nil, want: ""},
		{name: "multi-byte split", chunks: []string{"caf\xc3", "\xa9"}, want: "café"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := &chunkReader{chunks: chunks(tt.chunks...)}
			fb := &fakeBackend{body: body}
			c, store := newConsumer(fb)

			err := c.SendMessage(context.Background(), "  what happened?  ", "s1")
			require.NoError(t, err)

			want := transcript.State{
				SessionID: "s1",
				Messages: []ragchat.Message{
					{Role: ragchat.RoleUser, Content: "what happened?"},
					{Role: ragchat.RoleAssistant, Content: tt.want},
				},
			}
			if diff := cmp.Diff(want, store.Snapshot()); diff != "" {
				t.Errorf("state mismatch (-want +got):\n%s", diff)
			}
			assert.True(t, body.closed, "body must be closed")
			assert.Equal(t, []backend.ChatRequest{{Query: "what happened?", SessionID: "s1"}}, fb.queries)
			assert.False(t, c.InFlight())
		})
	}
}

func TestSendMessageFlagsWhileStreaming(t *testing.T) {
	var observed []transcript.State
	body := &chunkReader{chunks: chunks("a", "b")}
	c, store := newConsumer(&fakeBackend{body: body})
	body.onRead = func(int) { observed = append(observed, store.Snapshot()) }

	require.NoError(t, c.SendMessage(context.Background(), "q", "s1"))

	require.NotEmpty(t, observed)
	for _, s := range observed {
		assert.True(t, s.Streaming)
		assert.True(t, s.Loading)
		last, _ := s.Last()
		assert.Equal(t, ragchat.RoleAssistant, last.Role)
	}
	assert.Equal(t, "", observed[0].Messages[1].Content, "placeholder starts empty")
	assert.Equal(t, "a", observed[1].Messages[1].Content)

	final := store.Snapshot()
	assert.False(t, final.Streaming)
	assert.False(t, final.Loading)
}

func TestSendMessageBlankQuery(t *testing.T) {
	for _, q := range []string{"", "   ", "\n\t"} {
		fb := &fakeBackend{body: &chunkReader{}}
		c, store := newConsumer(fb)

		require.NoError(t, c.SendMessage(context.Background(), q, "s1"))
		assert.Empty(t, store.Snapshot().Messages)
		assert.Empty(t, fb.queries, "no request for a blank query")
	}
}

func TestSendMessageStreamFailureKeepsPartialContent(t *testing.T) {
	readErr := errors.New("connection reset")
	body := &chunkReader{chunks: chunks("Hel"), err: readErr}
	c, store := newConsumer(&fakeBackend{body: body})

	err := c.SendMessage(context.Background(), "q", "s1")

	var streamErr *backend.StreamError
	require.True(t, errors.As(err, &streamErr), "want StreamError, got %v", err)
	assert.ErrorIs(t, err, readErr)

	state := store.Snapshot()
	want := []ragchat.Message{
		{Role: ragchat.RoleUser, Content: "q"},
		{Role: ragchat.RoleAssistant, Content: "Hel"},
		{Role: ragchat.RoleAssistant, Content: ragchat.StreamErrorText},
	}
	assert.Equal(t, want, state.Messages)
	assert.False(t, state.Loading)
	assert.False(t, state.Streaming)
	assert.True(t, body.closed)
}

func TestSendMessageRequestFailure(t *testing.T) {
	netErr := &backend.NetworkError{Op: "chat", StatusCode: 502}
	c, store := newConsumer(&fakeBackend{err: netErr})

	err := c.SendMessage(context.Background(), "q", "s1")
	assert.ErrorIs(t, err, netErr)

	state := store.Snapshot()
	want := []ragchat.Message{
		{Role: ragchat.RoleUser, Content: "q"},
		{Role: ragchat.RoleAssistant, Content: ""},
		{Role: ragchat.RoleAssistant, Content: ragchat.StreamErrorText},
	}
	assert.Equal(t, want, state.Messages)
	assert.False(t, state.Loading)
	assert.False(t, state.Streaming)
	assert.False(t, c.InFlight())
}

func TestSendMessageRejectsConcurrentSend(t *testing.T) {
	fb := &fakeBackend{body: &chunkReader{chunks: chunks("first")}, block: make(chan struct{})}
	c, store := newConsumer(fb)

	done := make(chan error, 1)
	go func() { done <- c.SendMessage(context.Background(), "one", "s1") }()

	require.Eventually(t, c.InFlight, timeout, tick)

	err := c.SendMessage(context.Background(), "two", "s1")
	assert.ErrorIs(t, err, ErrStreamInProgress)

	close(fb.block)
	require.NoError(t, <-done)

	messages := store.Snapshot().Messages
	require.Len(t, messages, 2, "the rejected send must not touch the transcript")
	assert.Equal(t, "one", messages[0].Content)
	assert.Equal(t, "first", messages[1].Content)

	// Once the first stream ended a new send goes through.
	fb.block = nil
	fb.body = &chunkReader{chunks: chunks("second")}
	require.NoError(t, c.SendMessage(context.Background(), "two", "s1"))
	assert.Len(t, store.Snapshot().Messages, 4)
}

func TestSendMessageReplacesStalePlaceholder(t *testing.T) {
	// Simulate stale content landing in the placeholder before the first chunk.
	store := transcript.NewStore(transcript.State{})
	body := &chunkReader{chunks: chunks("fresh", " answer")}
	body.onRead = func(i int) {
		if i == 0 {
			store.Dispatch(transcript.UpdateLastMessage{Content: "stale"})
		}
	}
	c := NewConsumer(&fakeBackend{body: body}, store, zerolog.Nop())

	require.NoError(t, c.SendMessage(context.Background(), "q", "s1"))
	last, _ := store.Snapshot().Last()
	assert.Equal(t, "fresh answer", last.Content)
}

func TestSendMessageLargeBody(t *testing.T) {
	text := strings.Repeat("news ", 5000)
	c, store := newConsumer(&fakeBackend{body: &chunkReader{chunks: chunks(text)}})

	require.NoError(t, c.SendMessage(context.Background(), "q", "s1"))
	last, _ := store.Snapshot().Last()
	assert.Equal(t, text, last.Content)
}
