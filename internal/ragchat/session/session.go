// Package session keeps the chat session id in durable local storage and
// rotates it when the user starts a new chat.
package session

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/longkey1/ragchat/internal/ragchat"
	"github.com/longkey1/ragchat/internal/ragchat/transcript"
)

// Remote forgets a session on the backend.
type Remote interface {
	DeleteSession(ctx context.Context, sessionID string) error
}

// Manager owns the stored session id.
type Manager struct {
	kv     KV
	remote Remote
	store  *transcript.Store
	logger zerolog.Logger
	newID  func() string
}

// Option configures a Manager.
type Option func(*Manager)

// WithIDGenerator replaces uuid.NewString as the source of new ids.
func WithIDGenerator(gen func() string) Option {
	return func(m *Manager) {
		m.newID = gen
	}
}

// NewManager creates a session manager.
func NewManager(kv KV, remote Remote, store *transcript.Store, logger zerolog.Logger, opts ...Option) *Manager {
	m := &Manager{
		kv:     kv,
		remote: remote,
		store:  store,
		logger: logger,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Current returns the stored id without creating one.
func (m *Manager) Current() (string, bool, error) {
	id, ok, err := m.kv.Get(ragchat.SessionStorageKey)
	if err != nil {
		return "", false, fmt.Errorf("failed to read session id: %w", err)
	}
	return id, ok && id != "", nil
}

// EnsureSession returns the stored session id, creating and persisting a
// new one when none exists.
func (m *Manager) EnsureSession() (string, error) {
	id, ok, err := m.Current()
	if err != nil {
		return "", err
	}
	if !ok {
		id = m.newID()
		if err := m.kv.Set(ragchat.SessionStorageKey, id); err != nil {
			return "", fmt.Errorf("failed to persist session id: %w", err)
		}
		m.logger.Info().Str("session", ragchat.ShortID(id)).Msg("created session")
	}

	m.store.Dispatch(transcript.SetSessionID{SessionID: id})
	return id, nil
}

// StartNewSession discards the current session and starts a fresh one with
// an empty transcript. The backend is asked to forget the old session; a
// failure there is logged and otherwise ignored.
func (m *Manager) StartNewSession(ctx context.Context) (string, error) {
	oldID, hadOld, err := m.Current()
	if err != nil {
		return "", err
	}

	if err := m.kv.Delete(ragchat.SessionStorageKey); err != nil {
		return "", fmt.Errorf("failed to clear session id: %w", err)
	}

	if hadOld {
		if err := m.remote.DeleteSession(ctx, oldID); err != nil {
			m.logger.Warn().Err(err).Str("session", ragchat.ShortID(oldID)).Msg("failed to delete remote session")
		}
	}

	newID := m.newID()
	for newID == oldID {
		newID = m.newID()
	}
	if err := m.kv.Set(ragchat.SessionStorageKey, newID); err != nil {
		return "", fmt.Errorf("failed to persist session id: %w", err)
	}

	m.store.Dispatch(
		transcript.SetMessages{Messages: nil},
		transcript.SetSessionID{SessionID: newID},
	)
	m.logger.Info().
		Str("old", ragchat.ShortID(oldID)).
		Str("session", ragchat.ShortID(newID)).
		Msg("started new session")
	return newID, nil
}
