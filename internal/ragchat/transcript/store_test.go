package transcript

import (
	"fmt"
	"sync"
	"testing"

	"github.com/longkey1/ragchat/internal/ragchat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestStoreDispatchIsAtomic(t *testing.T) {
	s := NewStore(State{})
	state := s.Dispatch(
		AppendMessage{Message: user("q")},
		AppendMessage{Message: assistant("")},
		SetStreaming{Streaming: true},
		SetLoading{Loading: true},
	)

	require.Len(t, state.Messages, 2)
	assert.True(t, state.Streaming)
	assert.True(t, state.Loading)
	assert.Equal(t, state, s.Snapshot())
}

func TestStoreChangedCoalesces(t *testing.T) {
	s := NewStore(State{})
	s.Dispatch(SetLoading{Loading: true})
	s.Dispatch(SetLoading{Loading: false})
	s.Dispatch(SetStreaming{Streaming: true})

	select {
	case <-s.Changed():
	default:
		t.Fatal("expected a pending change notification")
	}
	select {
	case <-s.Changed():
		t.Fatal("notifications should coalesce into one")
	default:
	}
}

func TestStoreConcurrentDispatch(t *testing.T) {
	s := NewStore(State{})
	s.Dispatch(AppendMessage{Message: assistant("")})

	const writers = 8
	const perWriter = 100

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				s.Dispatch(UpdateLastMessage{Content: "x"})
			}
		}()
	}
	wg.Wait()

	last, ok := s.Snapshot().Last()
	require.True(t, ok)
	assert.Len(t, last.Content, writers*perWriter, "no update may be lost")
}

func TestSnapshotIsStableAcrossDispatch(t *testing.T) {
	s := NewStore(State{Messages: []ragchat.Message{assistant("a")}})
	snap := s.Snapshot()

	for i := 0; i < 5; i++ {
		s.Dispatch(UpdateLastMessage{Content: fmt.Sprint(i)})
	}

	assert.Equal(t, "a", snap.Messages[0].Content)
	last, _ := s.Snapshot().Last()
	assert.Equal(t, "a01234", last.Content)
}
