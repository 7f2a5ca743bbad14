package autosave

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type draft struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type recorder struct {
	mu       sync.Mutex
	saved    []draft
	statuses []Status
	failures int
}

func (r *recorder) save(_ context.Context, d draft) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failures > 0 {
		r.failures--
		return errors.New("database unavailable")
	}
	r.saved = append(r.saved, d)
	return nil
}

func (r *recorder) status(e StatusEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, e.Status)
}

func (r *recorder) savedDrafts() []draft {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]draft(nil), r.saved...)
}

func (r *recorder) seen() []Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Status(nil), r.statuses...)
}

var fastConfig = Config{
	Debounce:   20 * time.Millisecond,
	Retry:      60 * time.Millisecond,
	SavedReset: 30 * time.Millisecond,
}

func TestSession_DebouncesUpdates(t *testing.T) {
	rec := &recorder{}
	s := NewSession[draft](fastConfig, rec.save, rec.status)
	t.Cleanup(s.Close)

	require.NoError(t, s.Update(draft{Title: "a"}))
	require.NoError(t, s.Update(draft{Title: "ab"}))
	require.NoError(t, s.Update(draft{Title: "abc"}))

	require.Eventually(t, func() bool { return len(rec.savedDrafts()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "abc", rec.savedDrafts()[0].Title)

	require.Eventually(t, func() bool { return s.Status() == StatusIdle && len(rec.seen()) == 3 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []Status{StatusSaving, StatusSaved, StatusIdle}, rec.seen())
	assert.False(t, s.LastSavedAt().IsZero())
}

func TestSession_SkipsUnchangedData(t *testing.T) {
	rec := &recorder{}
	s := NewSession[draft](fastConfig, rec.save, rec.status)
	t.Cleanup(s.Close)

	require.NoError(t, s.Update(draft{Title: "same"}))
	require.Eventually(t, func() bool { return len(rec.savedDrafts()) == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, s.Update(draft{Title: "same"}))
	time.Sleep(4 * fastConfig.Debounce)
	assert.Len(t, rec.savedDrafts(), 1)
}

func TestSession_RetriesWithLatestDraft(t *testing.T) {
	rec := &recorder{failures: 1}
	s := NewSession[draft](fastConfig, rec.save, rec.status)
	t.Cleanup(s.Close)

	require.NoError(t, s.Update(draft{Title: "first"}))
	require.Eventually(t, func() bool { return s.Status() == StatusError }, time.Second, 5*time.Millisecond)

	// Recorded while in error, saved by the retry.
	require.NoError(t, s.Update(draft{Title: "second"}))

	require.Eventually(t, func() bool { return len(rec.savedDrafts()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "second", rec.savedDrafts()[0].Title)
	assert.Contains(t, rec.seen(), StatusError)
}

func TestSession_TriggerSave(t *testing.T) {
	rec := &recorder{}
	cfg := fastConfig
	cfg.Debounce = time.Hour
	cfg.SavedReset = time.Hour
	s := NewSession[draft](cfg, rec.save, rec.status)
	t.Cleanup(s.Close)

	require.NoError(t, s.TriggerSave(context.Background()))
	assert.Empty(t, rec.savedDrafts())

	require.NoError(t, s.Update(draft{Title: "now"}))
	require.NoError(t, s.TriggerSave(context.Background()))
	require.Len(t, rec.savedDrafts(), 1)
	assert.Equal(t, StatusSaved, s.Status())

	// Saving the same draft again is a no-op.
	require.NoError(t, s.TriggerSave(context.Background()))
	assert.Len(t, rec.savedDrafts(), 1)
}

func TestSession_TriggerSaveReturnsError(t *testing.T) {
	rec := &recorder{failures: 1}
	cfg := fastConfig
	cfg.Debounce = time.Hour
	cfg.Retry = time.Hour
	s := NewSession[draft](cfg, rec.save, rec.status)
	t.Cleanup(s.Close)

	require.NoError(t, s.Update(draft{Title: "x"}))
	assert.Error(t, s.TriggerSave(context.Background()))
	assert.Equal(t, StatusError, s.Status())

	require.NoError(t, s.TriggerSave(context.Background()))
	assert.Len(t, rec.savedDrafts(), 1)
}

func TestSession_CloseStopsTimers(t *testing.T) {
	rec := &recorder{}
	s := NewSession[draft](fastConfig, rec.save, rec.status)

	require.NoError(t, s.Update(draft{Title: "never"}))
	s.Close()

	time.Sleep(4 * fastConfig.Debounce)
	assert.Empty(t, rec.savedDrafts())
	assert.Empty(t, rec.seen())
}

func TestSession_MarkSaved(t *testing.T) {
	rec := &recorder{}
	cfg := fastConfig
	cfg.Debounce = time.Hour
	s := NewSession[draft](cfg, rec.save, nil)
	t.Cleanup(s.Close)

	require.NoError(t, s.Update(draft{Title: "stored elsewhere"}))
	s.MarkSaved(draft{Title: "stored elsewhere"})

	require.NoError(t, s.TriggerSave(context.Background()))
	assert.Empty(t, rec.savedDrafts())
}

func TestManager_FlushAll(t *testing.T) {
	cfg := fastConfig
	cfg.Debounce = time.Hour
	m := NewManager[draft](cfg, zerolog.Nop())
	rec := &recorder{}

	a := m.Session(Key{UserID: 1, NewsID: 10}, rec.save, nil)
	b := m.Session(Key{UserID: 2, NewsID: 10}, rec.save, nil)
	assert.Same(t, a, m.Session(Key{UserID: 1, NewsID: 10}, rec.save, nil))
	assert.Equal(t, 2, m.Len())

	require.NoError(t, a.Update(draft{Title: "a"}))
	require.NoError(t, b.Update(draft{Title: "b"}))

	require.NoError(t, m.FlushAll(context.Background()))
	assert.Len(t, rec.savedDrafts(), 2)
	assert.Equal(t, 0, m.Len())
	assert.Nil(t, m.Session(Key{UserID: 3, NewsID: 1}, rec.save, nil))
}

func TestManager_CloseUser(t *testing.T) {
	cfg := fastConfig
	cfg.Debounce = time.Hour
	m := NewManager[draft](cfg, zerolog.Nop())
	rec := &recorder{}

	mine := m.Session(Key{UserID: 1, NewsID: 10}, rec.save, nil)
	m.Session(Key{UserID: 2, NewsID: 10}, rec.save, nil)
	require.NoError(t, mine.Update(draft{Title: "mine"}))

	require.NoError(t, m.CloseUser(context.Background(), 1))
	assert.Len(t, rec.savedDrafts(), 1)

	_, ok := m.Get(Key{UserID: 1, NewsID: 10})
	assert.False(t, ok)
	_, ok = m.Get(Key{UserID: 2, NewsID: 10})
	assert.True(t, ok)

	var visited []Key
	m.Each(func(k Key, _ *Session[draft]) { visited = append(visited, k) })
	assert.Equal(t, []Key{{UserID: 2, NewsID: 10}}, visited)
}

func TestSession_FlushWaitsForRunningSave(t *testing.T) {
	cfg := fastConfig
	cfg.Debounce = time.Hour
	m := NewManager[draft](cfg, zerolog.Nop())

	started := make(chan struct{}, 1)
	release := make(chan struct{})
	var mu sync.Mutex
	var saved []string
	saver := func(_ context.Context, d draft) error {
		select {
		case started <- struct{}{}:
		default:
		}
		<-release
		mu.Lock()
		defer mu.Unlock()
		saved = append(saved, d.Title)
		return nil
	}

	s := m.Session(Key{UserID: 1, NewsID: 10}, saver, nil)
	require.NoError(t, s.Update(draft{Title: "v1"}))

	triggered := make(chan error, 1)
	go func() { triggered <- s.TriggerSave(context.Background()) }()
	<-started

	// Edited while v1 is being written.
	require.NoError(t, s.Update(draft{Title: "v2"}))

	flushed := make(chan error, 1)
	go func() { flushed <- m.FlushAll(context.Background()) }()

	select {
	case err := <-flushed:
		t.Fatalf("FlushAll returned while a save was running: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	require.NoError(t, <-triggered)
	require.NoError(t, <-flushed)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"v1", "v2"}, saved)
}

func TestSession_UpdateAfterFlush(t *testing.T) {
	rec := &recorder{}
	cfg := fastConfig
	cfg.Debounce = time.Hour
	s := NewSession[draft](cfg, rec.save, nil)

	require.NoError(t, s.Update(draft{Title: "last"}))
	require.NoError(t, s.Flush(context.Background()))
	assert.Equal(t, []draft{{Title: "last"}}, rec.savedDrafts())

	assert.ErrorIs(t, s.Update(draft{Title: "late"}), ErrClosed)
	require.NoError(t, s.Flush(context.Background()))
	assert.Len(t, rec.savedDrafts(), 1)
}

func TestSession_FlushReturnsSaveError(t *testing.T) {
	rec := &recorder{failures: 1}
	cfg := fastConfig
	cfg.Debounce = time.Hour
	s := NewSession[draft](cfg, rec.save, nil)

	require.NoError(t, s.Update(draft{Title: "x"}))
	assert.Error(t, s.Flush(context.Background()))
	assert.Empty(t, rec.savedDrafts())
}
