// Package app wires the session store, history loader and stream consumer
// around a single transcript.
package app

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/longkey1/ragchat/internal/backend"
	"github.com/longkey1/ragchat/internal/ragchat"
	"github.com/longkey1/ragchat/internal/ragchat/history"
	"github.com/longkey1/ragchat/internal/ragchat/session"
	"github.com/longkey1/ragchat/internal/ragchat/stream"
	"github.com/longkey1/ragchat/internal/ragchat/transcript"
)

// ErrNoSession is returned by Send before Start has established a session.
var ErrNoSession = errors.New("no active session")

// App is the chat client behind every front end.
type App struct {
	store    *transcript.Store
	sessions *session.Manager
	history  *history.Loader
	consumer *stream.Consumer
	logger   zerolog.Logger
}

// New creates an App talking to client and keeping the session id in kv.
func New(client *backend.Client, kv session.KV, logger zerolog.Logger, opts ...session.Option) *App {
	store := transcript.NewStore(transcript.State{})
	return &App{
		store:    store,
		sessions: session.NewManager(kv, client, store, logger, opts...),
		history:  history.NewLoader(client, store, logger),
		consumer: stream.NewConsumer(client, store, logger),
		logger:   logger,
	}
}

// Transcript returns the store all state changes go through.
func (a *App) Transcript() *transcript.Store {
	return a.store
}

// SessionID returns the current session id, empty before Start.
func (a *App) SessionID() string {
	return a.store.Snapshot().SessionID
}

// Streaming reports whether an answer is still arriving.
func (a *App) Streaming() bool {
	return a.consumer.InFlight()
}

// EnsureSession returns the stored session id, creating one if needed,
// without contacting the backend.
func (a *App) EnsureSession() (string, error) {
	return a.sessions.EnsureSession()
}

// LoadHistory replaces the transcript with the backend's record of the
// current session.
func (a *App) LoadHistory(ctx context.Context) ([]ragchat.Message, error) {
	id, err := a.EnsureSession()
	if err != nil {
		return nil, err
	}
	return a.history.Load(ctx, id)
}

// Start resolves the session id and restores its history. A history
// failure is logged and leaves the transcript empty; only storage errors
// are returned.
func (a *App) Start(ctx context.Context) (string, error) {
	id, err := a.sessions.EnsureSession()
	if err != nil {
		return "", err
	}
	if _, err := a.history.Load(ctx, id); err != nil {
		a.logger.Warn().Err(err).Str("session", ragchat.ShortID(id)).Msg("starting without history")
	}
	return id, nil
}

// Send asks query in the current session and streams the answer into the
// transcript. It blocks until the answer is complete.
func (a *App) Send(ctx context.Context, query string) error {
	id := a.SessionID()
	if id == "" {
		return ErrNoSession
	}
	return a.consumer.SendMessage(ctx, query, id)
}

// NewChat starts a fresh session. It is refused while an answer streams.
func (a *App) NewChat(ctx context.Context) (string, error) {
	if a.consumer.InFlight() {
		return "", stream.ErrStreamInProgress
	}
	return a.sessions.StartNewSession(ctx)
}
