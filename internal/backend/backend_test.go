package backend_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/longkey1/ragchat/internal/backend"
	"github.com/longkey1/ragchat/internal/backend/backendtest"
)

func TestHistory(t *testing.T) {
	srv := backendtest.NewServer(t)
	srv.History["s1"] = []backend.HistoryRecord{{User: "hi"}, {Bot: "hello"}}

	client := backend.NewClient(srv.URL + "/")
	records, err := client.History(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, []backend.HistoryRecord{{User: "hi"}, {Bot: "hello"}}, records)
}

func TestHistoryEscapesSessionID(t *testing.T) {
	srv := backendtest.NewServer(t)
	srv.History["a b&c"] = []backend.HistoryRecord{{User: "q"}}

	records, err := backend.NewClient(srv.URL).History(context.Background(), "a b&c")
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestHistoryNonSuccess(t *testing.T) {
	srv := backendtest.NewServer(t)
	srv.HistoryStatus = http.StatusInternalServerError

	_, err := backend.NewClient(srv.URL).History(context.Background(), "s1")
	var netErr *backend.NetworkError
	require.True(t, errors.As(err, &netErr), "want NetworkError, got %T", err)
	assert.Equal(t, http.StatusInternalServerError, netErr.StatusCode)
	assert.Equal(t, "history", netErr.Op)
}

func TestHistoryUnreachable(t *testing.T) {
	srv := backendtest.NewServer(t)
	url := srv.URL
	srv.Close()

	_, err := backend.NewClient(url).History(context.Background(), "s1")
	var netErr *backend.NetworkError
	require.True(t, errors.As(err, &netErr))
	assert.Zero(t, netErr.StatusCode)
}

func TestChatStreamsBody(t *testing.T) {
	srv := backendtest.NewServer(t)
	srv.Chunks = [][]byte{[]byte("Hel"), []byte("lo")}

	body, err := backend.NewClient(srv.URL).Chat(context.Background(), "question", "s1")
	require.NoError(t, err)
	defer body.Close()

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "Hello", string(data))
	assert.Equal(t, []backend.ChatRequest{{Query: "question", SessionID: "s1"}}, srv.ChatRequests())
}

func TestChatNonSuccess(t *testing.T) {
	srv := backendtest.NewServer(t)
	srv.ChatStatus = http.StatusBadGateway

	_, err := backend.NewClient(srv.URL).Chat(context.Background(), "q", "s1")
	var netErr *backend.NetworkError
	require.True(t, errors.As(err, &netErr))
	assert.Equal(t, http.StatusBadGateway, netErr.StatusCode)
}

func TestChatAbortedStream(t *testing.T) {
	srv := backendtest.NewServer(t)
	srv.Chunks = [][]byte{[]byte("Hel"), []byte("lo")}
	srv.AbortAfter = 1

	body, err := backend.NewClient(srv.URL).Chat(context.Background(), "q", "s1")
	require.NoError(t, err)
	defer body.Close()

	_, err = io.ReadAll(body)
	assert.Error(t, err, "a dropped connection must surface as a read error")
}

func TestDeleteSession(t *testing.T) {
	srv := backendtest.NewServer(t)

	err := backend.NewClient(srv.URL).DeleteSession(context.Background(), "old-id")
	require.NoError(t, err)
	assert.Equal(t, []string{"old-id"}, srv.Deleted())
}

func TestDeleteSessionReportsBackendError(t *testing.T) {
	srv := backendtest.NewServer(t)
	srv.DeleteStatus = http.StatusInternalServerError
	srv.DeleteError = "redis unavailable"

	err := backend.NewClient(srv.URL).DeleteSession(context.Background(), "old-id")
	var netErr *backend.NetworkError
	require.True(t, errors.As(err, &netErr))
	assert.Equal(t, "redis unavailable", netErr.Message)
	assert.Contains(t, err.Error(), "redis unavailable")
}

func TestNetworkErrorMessages(t *testing.T) {
	tests := []struct {
		name string
		err  *backend.NetworkError
		want string
	}{
		{
			name: "status with message",
			err:  &backend.NetworkError{Op: "chat", StatusCode: 500, Message: "boom"},
			want: "chat: backend returned 500 Internal Server Error: boom",
		},
		{
			name: "status only",
			err:  &backend.NetworkError{Op: "history", StatusCode: 404},
			want: "history: backend returned 404 Not Found",
		},
		{
			name: "transport",
			err:  &backend.NetworkError{Op: "delete session", Err: errors.New("connection refused")},
			want: "delete session: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}
