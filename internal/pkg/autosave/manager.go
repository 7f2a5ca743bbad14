package autosave

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// Key identifies the session of one user editing one news item.
type Key struct {
	UserID int64
	NewsID int64
}

// Manager owns the sessions of all connected editors.
type Manager[T any] struct {
	cfg    Config
	logger zerolog.Logger

	mu       sync.Mutex
	sessions map[Key]*Session[T]
	closed   bool
}

// NewManager creates a Manager whose sessions use cfg.
func NewManager[T any](cfg Config, logger zerolog.Logger) *Manager[T] {
	return &Manager[T]{
		cfg:      cfg.withDefaults(),
		logger:   logger,
		sessions: make(map[Key]*Session[T]),
	}
}

// Session returns the session for key, creating it with saver and onStatus
// when missing. It returns nil once the manager is closed.
func (m *Manager[T]) Session(key Key, saver Saver[T], onStatus StatusFunc) *Session[T] {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	if s, ok := m.sessions[key]; ok {
		return s
	}
	s := NewSession(m.cfg, saver, onStatus)
	m.sessions[key] = s
	m.logger.Debug().Int64("userID", key.UserID).Int64("newsID", key.NewsID).Msg("Autosave session started")
	return s
}

// Get returns the session for key, if any.
func (m *Manager[T]) Get(key Key) (*Session[T], bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[key]
	return s, ok
}

// Len returns the number of open sessions.
func (m *Manager[T]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Each calls fn for every session. fn runs without the manager lock.
func (m *Manager[T]) Each(fn func(Key, *Session[T])) {
	m.mu.Lock()
	snapshot := make(map[Key]*Session[T], len(m.sessions))
	for k, s := range m.sessions {
		snapshot[k] = s
	}
	m.mu.Unlock()

	for k, s := range snapshot {
		fn(k, s)
	}
}

// CloseUser saves and closes every session of userID.
func (m *Manager[T]) CloseUser(ctx context.Context, userID int64) error {
	m.mu.Lock()
	var owned []Key
	for k := range m.sessions {
		if k.UserID == userID {
			owned = append(owned, k)
		}
	}
	m.mu.Unlock()

	var errs []error
	for _, k := range owned {
		if err := m.remove(ctx, k); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *Manager[T]) remove(ctx context.Context, key Key) error {
	m.mu.Lock()
	s, ok := m.sessions[key]
	delete(m.sessions, key)
	m.mu.Unlock()
	if !ok {
		return nil
	}

	if err := s.Flush(ctx); err != nil {
		return fmt.Errorf("flush news %d of user %d: %w", key.NewsID, key.UserID, err)
	}
	return nil
}

// FlushAll saves every dirty session, closes all of them and refuses new
// ones. Save errors are joined.
func (m *Manager[T]) FlushAll(ctx context.Context) error {
	m.mu.Lock()
	m.closed = true
	keys := make([]Key, 0, len(m.sessions))
	for k := range m.sessions {
		keys = append(keys, k)
	}
	m.mu.Unlock()

	var errs []error
	for _, k := range keys {
		if err := m.remove(ctx, k); err != nil {
			m.logger.Error().Err(err).Msg("Failed to flush autosave session")
			errs = append(errs, err)
		}
	}
	m.logger.Info().Int("sessions", len(keys)).Msg("Autosave sessions flushed")
	return errors.Join(errs...)
}
