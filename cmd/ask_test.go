package cmd

import (
	"bytes"
	"testing"

	"github.com/longkey1/ragchat/internal/ragchat"
	"github.com/longkey1/ragchat/internal/ragchat/transcript"
)

func TestPrintAnswer(t *testing.T) {
	store := transcript.NewStore(transcript.State{})
	store.Dispatch(
		transcript.AppendMessage{Message: ragchat.Message{Role: ragchat.RoleUser, Content: "q"}},
		transcript.AppendMessage{Message: ragchat.Message{Role: ragchat.RoleAssistant}},
	)

	done := make(chan struct{})
	var buf bytes.Buffer
	result := make(chan error, 1)
	go func() { result <- printAnswer(&buf, store, 1, done) }()

	store.Dispatch(transcript.UpdateLastMessage{Content: "Hello", Replace: true})
	store.Dispatch(transcript.UpdateLastMessage{Content: ", world"})
	store.Dispatch(transcript.AppendMessage{Message: ragchat.Message{Role: ragchat.RoleAssistant, Content: ragchat.StreamErrorText}})
	close(done)

	if err := <-result; err != nil {
		t.Fatalf("printAnswer() error = %v", err)
	}
	if got, want := buf.String(), "Hello, world\n"; got != want {
		t.Errorf("printAnswer() wrote %q, want %q", got, want)
	}
}

func TestAnswerAt(t *testing.T) {
	state := transcript.State{Messages: []ragchat.Message{
		{Role: ragchat.RoleUser, Content: "q"},
		{Role: ragchat.RoleAssistant, Content: "a"},
	}}

	tests := []struct {
		index int
		want  string
	}{
		{0, ""},
		{1, "a"},
		{2, ""},
	}
	for _, tt := range tests {
		if got := answerAt(state, tt.index); got != tt.want {
			t.Errorf("answerAt(%d) = %q, want %q", tt.index, got, tt.want)
		}
	}
}
