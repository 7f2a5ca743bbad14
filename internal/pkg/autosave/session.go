// Package autosave keeps editor drafts and saves them after a quiet period,
// retrying failed saves later.
package autosave

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"
)

// Status is the save state reported to the editor.
type Status string

const (
	StatusIdle   Status = "idle"
	StatusSaving Status = "saving"
	StatusSaved  Status = "saved"
	StatusError  Status = "error"
)

// Config holds the session timings.
type Config struct {
	// Debounce is the quiet period after the last update before saving.
	Debounce time.Duration
	// Retry is the delay before a failed save is attempted again.
	Retry time.Duration
	// SavedReset is how long StatusSaved is shown before returning to idle.
	SavedReset time.Duration
	// SaveTimeout bounds a single save.
	SaveTimeout time.Duration
}

// DefaultConfig matches the timings of the admin panel indicator.
var DefaultConfig = Config{
	Debounce:    10 * time.Second,
	Retry:       30 * time.Second,
	SavedReset:  3500 * time.Millisecond,
	SaveTimeout: 15 * time.Second,
}

func (c Config) withDefaults() Config {
	if c.Debounce <= 0 {
		c.Debounce = DefaultConfig.Debounce
	}
	if c.Retry <= 0 {
		c.Retry = DefaultConfig.Retry
	}
	if c.SavedReset <= 0 {
		c.SavedReset = DefaultConfig.SavedReset
	}
	if c.SaveTimeout <= 0 {
		c.SaveTimeout = DefaultConfig.SaveTimeout
	}
	return c
}

// ErrClosed is returned by Update once the session is closed. The caller
// should start a new session for the draft.
var ErrClosed = errors.New("autosave session closed")

// Saver persists one draft.
type Saver[T any] func(ctx context.Context, data T) error

// StatusEvent describes a status change.
type StatusEvent struct {
	Status Status
	// Err is set for StatusError.
	Err error
	// At is the time of the change.
	At time.Time
}

// StatusFunc receives status changes. It is called with the session lock
// held, so it must not block or call back into the session.
type StatusFunc func(StatusEvent)

// Session debounces the drafts of one editor.
//
// Updates equal to the last saved draft are ignored. While a save is running
// or a retry is scheduled, updates are only recorded, and the running save
// or the retry picks up the latest one.
type Session[T any] struct {
	cfg      Config
	saver    Saver[T]
	onStatus StatusFunc

	mu          sync.Mutex
	idle        *sync.Cond // signalled when a save finishes
	status      Status
	pending     T
	pendingJSON []byte
	hasPending  bool
	lastSaved   []byte
	lastSavedAt time.Time
	flushAgain  bool
	closed      bool

	// generation counters invalidate timers that fired after being replaced
	debounce, retry, reset          *time.Timer
	debounceGen, retryGen, resetGen uint64
}

// NewSession creates an idle session. onStatus may be nil.
func NewSession[T any](cfg Config, saver Saver[T], onStatus StatusFunc) *Session[T] {
	s := &Session[T]{
		cfg:      cfg.withDefaults(),
		saver:    saver,
		onStatus: onStatus,
		status:   StatusIdle,
	}
	s.idle = sync.NewCond(&s.mu)
	return s
}

func encode(data interface{}) ([]byte, error) {
	return json.Marshal(data)
}

// Status returns the current status.
func (s *Session[T]) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// LastSavedAt returns the time of the last successful save.
func (s *Session[T]) LastSavedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSavedAt
}

func (s *Session[T]) setStatus(status Status, err error) {
	s.status = status
	if s.onStatus != nil {
		s.onStatus(StatusEvent{Status: status, Err: err, At: time.Now()})
	}
}

func (s *Session[T]) dirty() bool {
	return s.hasPending && !bytes.Equal(s.pendingJSON, s.lastSaved)
}

// Update records data as the latest draft.
func (s *Session[T]) Update(data T) error {
	enc, err := encode(data)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	s.pending, s.pendingJSON, s.hasPending = data, enc, true
	s.stopDebounce()

	if !s.dirty() {
		return nil
	}
	if s.status == StatusSaving || s.status == StatusError {
		return nil
	}
	s.scheduleDebounce()
	return nil
}

// MarkSaved records data as stored by someone else, so an equal pending
// draft is not saved again.
func (s *Session[T]) MarkSaved(data T) {
	enc, err := encode(data)
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSaved = enc
	if !s.dirty() {
		s.stopDebounce()
	}
}

// TriggerSave cancels the pending timers and saves the latest draft now.
// Nothing is saved when the draft equals the last saved one. If a save is
// already running, another one follows it.
func (s *Session[T]) TriggerSave(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.stopDebounce()
	s.stopRetry()
	if s.status == StatusSaving {
		s.flushAgain = true
		s.mu.Unlock()
		return nil
	}
	if !s.dirty() {
		s.mu.Unlock()
		return nil
	}
	return s.saveLocked(ctx)
}

// Flush waits for a running save, saves the latest draft until nothing is
// left to save and closes the session. The first failed save stops the flush
// and is returned.
func (s *Session[T]) Flush(ctx context.Context) error {
	s.mu.Lock()
	var err error
	for {
		for s.status == StatusSaving && !s.closed {
			s.idle.Wait()
		}
		if s.closed {
			s.mu.Unlock()
			return nil
		}
		s.stopDebounce()
		s.stopRetry()
		if !s.dirty() {
			break
		}
		err = s.saveLocked(ctx)
		s.mu.Lock()
		if err != nil {
			break
		}
	}
	s.closeLocked()
	s.mu.Unlock()
	return err
}

// Close stops every timer without saving. A running save finishes but
// reports nothing.
func (s *Session[T]) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeLocked()
}

func (s *Session[T]) closeLocked() {
	s.closed = true
	s.stopDebounce()
	s.stopRetry()
	s.stopReset()
	s.idle.Broadcast()
}

// saveLocked is entered with s.mu held and returns with it released.
func (s *Session[T]) saveLocked(ctx context.Context) error {
	data, enc := s.pending, s.pendingJSON
	s.stopReset()
	s.setStatus(StatusSaving, nil)
	s.mu.Unlock()

	saveCtx, cancel := context.WithTimeout(ctx, s.cfg.SaveTimeout)
	err := s.saver(saveCtx, data)
	cancel()

	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.idle.Broadcast()

	if s.closed {
		if err == nil {
			s.lastSaved = enc
		}
		return err
	}

	if err != nil {
		s.setStatus(StatusError, err)
		s.flushAgain = false
		s.scheduleRetry()
		return err
	}

	s.lastSaved = enc
	s.lastSavedAt = time.Now()
	s.setStatus(StatusSaved, nil)
	s.scheduleReset()

	if s.dirty() {
		if s.flushAgain {
			s.flushAgain = false
			go s.fire(context.Background())
		} else {
			s.scheduleDebounce()
		}
	}
	s.flushAgain = false
	return nil
}

// fire saves the latest draft from a timer goroutine.
func (s *Session[T]) fire(ctx context.Context) {
	s.mu.Lock()
	if s.closed || s.status == StatusSaving || !s.dirty() {
		s.mu.Unlock()
		return
	}
	_ = s.saveLocked(ctx)
}

func (s *Session[T]) scheduleDebounce() {
	s.debounceGen++
	gen := s.debounceGen
	s.debounce = time.AfterFunc(s.cfg.Debounce, func() {
		s.mu.Lock()
		if gen != s.debounceGen {
			s.mu.Unlock()
			return
		}
		s.debounce = nil
		s.mu.Unlock()
		s.fire(context.Background())
	})
}

func (s *Session[T]) scheduleRetry() {
	s.retryGen++
	gen := s.retryGen
	s.retry = time.AfterFunc(s.cfg.Retry, func() {
		s.mu.Lock()
		if gen != s.retryGen || s.closed {
			s.mu.Unlock()
			return
		}
		s.retry = nil
		s.setStatus(StatusIdle, nil)
		s.mu.Unlock()
		s.fire(context.Background())
	})
}

func (s *Session[T]) scheduleReset() {
	s.resetGen++
	gen := s.resetGen
	s.reset = time.AfterFunc(s.cfg.SavedReset, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if gen != s.resetGen || s.closed || s.status != StatusSaved {
			return
		}
		s.reset = nil
		s.setStatus(StatusIdle, nil)
	})
}

func (s *Session[T]) stopDebounce() {
	s.debounceGen++
	if s.debounce != nil {
		s.debounce.Stop()
		s.debounce = nil
	}
}

func (s *Session[T]) stopRetry() {
	s.retryGen++
	if s.retry != nil {
		s.retry.Stop()
		s.retry = nil
	}
	if s.status == StatusError && !s.closed {
		s.setStatus(StatusIdle, nil)
	}
}

func (s *Session[T]) stopReset() {
	s.resetGen++
	if s.reset != nil {
		s.reset.Stop()
		s.reset = nil
	}
}
