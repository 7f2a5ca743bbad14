package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/kindergarten-canvas/backend/internal/app/models"
	"github.com/kindergarten-canvas/backend/internal/app/models/dto"
	"github.com/kindergarten-canvas/backend/internal/pkg/autosave"
	"github.com/rs/zerolog"
)

// NewsUpdater stores auto-saved drafts. services.NewsService implements it.
type NewsUpdater interface {
	Update(ctx context.Context, id int64, req *dto.UpdateNewsRequest) (*models.NewsItem, error)
}

// Hub maintains the set of active clients and routes editor events to the
// autosave sessions.
type Hub struct {
	// Registered clients organized by user ID
	clients map[int64]map[*Client]bool

	// Mutex for concurrent access to clients map
	mu      sync.RWMutex
	stopped bool

	news     NewsUpdater
	autosave *autosave.Manager[Draft]

	// Logger for Hub operations
	logger zerolog.Logger
}

// NewHub creates a new Hub instance
func NewHub(news NewsUpdater, manager *autosave.Manager[Draft], logger zerolog.Logger) *Hub {
	return &Hub{
		clients:  make(map[int64]map[*Client]bool),
		news:     news,
		autosave: manager,
		logger:   logger,
	}
}

// Run blocks until ctx is done, then disconnects every client and refuses
// new ones.
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()
	h.closeAll()
}

// join registers client. It reports false once the hub has stopped.
func (h *Hub) join(client *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stopped {
		return false
	}

	if _, ok := h.clients[client.userID]; !ok {
		h.clients[client.userID] = make(map[*Client]bool)
	}
	h.clients[client.userID][client] = true

	h.logger.Info().
		Int64("userID", client.userID).
		Str("addr", client.remoteAddr()).
		Msg("Preview client registered")
	return true
}

// leave unregisters client and closes its send channel.
func (h *Hub) leave(client *Client) {
	h.mu.Lock()
	userID := client.userID
	clients, ok := h.clients[userID]
	if !ok || !clients[client] {
		h.mu.Unlock()
		return
	}
	delete(clients, client)
	close(client.send)
	lastClient := len(clients) == 0
	if lastClient {
		delete(h.clients, userID)
	}
	h.mu.Unlock()

	h.logger.Info().
		Int64("userID", userID).
		Str("addr", client.remoteAddr()).
		Msg("Preview client unregistered")

	if lastClient {
		go h.releaseUser(userID)
	}
}

// releaseUser saves and closes the drafts of a user whose last editor is
// gone. A user who reconnected in the meantime keeps the sessions.
func (h *Hub) releaseUser(userID int64) {
	if h.ClientsCount(userID) > 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := h.autosave.CloseUser(ctx, userID); err != nil {
		h.logger.Error().Err(err).Int64("userID", userID).Msg("Failed to save drafts of disconnected user")
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stopped = true
	for userID, clients := range h.clients {
		for client := range clients {
			close(client.send)
		}
		delete(h.clients, userID)
	}
}

// ClientsCount returns the number of open connections of userID.
func (h *Hub) ClientsCount(userID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// deliver queues data without blocking. A client whose buffer is full is
// disconnected. Callers hold h.mu.
func (h *Hub) deliver(client *Client, data []byte) {
	select {
	case client.send <- data:
	default:
		h.logger.Warn().Int64("userID", client.userID).Msg("Preview client too slow, disconnecting")
		go h.leave(client)
	}
}

// SendToUser sends an event to every open editor of userID.
func (h *Hub) SendToUser(userID int64, event string, payload interface{}) {
	data, err := encodeMessage(event, payload)
	if err != nil {
		h.logger.Error().Err(err).Str("event", event).Msg("Failed to encode event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients[userID] {
		h.deliver(client, data)
	}
}

// Broadcast sends an event to every connected editor.
func (h *Hub) Broadcast(event string, payload interface{}) {
	data, err := encodeMessage(event, payload)
	if err != nil {
		h.logger.Error().Err(err).Str("event", event).Msg("Failed to encode event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, clients := range h.clients {
		for client := range clients {
			h.deliver(client, data)
		}
	}
}

// sendTo sends an event to one client.
func (h *Hub) sendTo(client *Client, event string, payload interface{}) {
	data, err := encodeMessage(event, payload)
	if err != nil {
		h.logger.Error().Err(err).Str("event", event).Msg("Failed to encode event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.clients[client.userID][client] {
		h.deliver(client, data)
	}
}

// NewsUpdated implements services.NewsListener. Sessions editing the item
// take the stored version as saved, and every editor is told about it.
func (h *Hub) NewsUpdated(item *models.NewsItem) {
	stored := DraftFromNews(item)
	h.autosave.Each(func(key autosave.Key, s *autosave.Session[Draft]) {
		if key.NewsID == item.ID {
			s.MarkSaved(stored)
		}
	})
	h.Broadcast(EventNewsUpdated, NewsUpdated{NewsID: item.ID, UpdatedAt: item.UpdatedAt})
}

// session returns the autosave session of userID for newsID.
func (h *Hub) session(userID, newsID int64) *autosave.Session[Draft] {
	key := autosave.Key{UserID: userID, NewsID: newsID}
	return h.autosave.Session(key, h.saver(newsID), h.statusReporter(userID, newsID))
}

func (h *Hub) saver(newsID int64) autosave.Saver[Draft] {
	return func(ctx context.Context, d Draft) error {
		d = d.Sanitized()
		title, content := d.Title, d.Content
		imageURL := dto.Null[string]()
		if d.ImageURL != nil {
			imageURL = dto.NewNullable(*d.ImageURL)
		}
		_, err := h.news.Update(ctx, newsID, &dto.UpdateNewsRequest{
			Title:    &title,
			Content:  &content,
			ImageURL: imageURL,
		})
		return err
	}
}

func (h *Hub) statusReporter(userID, newsID int64) autosave.StatusFunc {
	return func(e autosave.StatusEvent) {
		payload := AutosaveStatus{NewsID: newsID, Status: string(e.Status), At: e.At}
		if e.Err != nil {
			payload.Error = e.Err.Error()
		}
		h.SendToUser(userID, EventAutosaveStatus, payload)
	}
}

var (
	errUnknownEvent    = errors.New("unknown event")
	errAutosaveStopped = errors.New("autosave is shutting down")
)

// handleMessage dispatches one frame received from client.
func (h *Hub) handleMessage(client *Client, msg *Message) error {
	switch msg.Event {
	case EventPreviewUpdate:
		var update PreviewUpdate
		if err := json.Unmarshal(msg.Data, &update); err != nil {
			return err
		}
		h.sendTo(client, EventPreviewRender, PreviewRender{NewsID: update.NewsID, RenderedHTML: update.Content})

		// Items that are not created yet are only previewed.
		if !update.NewsID.Valid {
			return nil
		}
		draft := Draft{Title: update.Title, Content: update.Content, ImageURL: update.ImageURL}.Sanitized()
		// A session flushed by a concurrent disconnect is replaced once.
		for attempt := 0; ; attempt++ {
			s := h.session(client.userID, update.NewsID.Value)
			if s == nil {
				return errAutosaveStopped
			}
			err := s.Update(draft)
			if !errors.Is(err, autosave.ErrClosed) || attempt > 0 {
				return err
			}
		}

	case EventAutosaveFlush:
		var flush AutosaveFlush
		if err := json.Unmarshal(msg.Data, &flush); err != nil {
			return err
		}
		if !flush.NewsID.Valid {
			return errors.New("newsId is required")
		}
		s, ok := h.autosave.Get(autosave.Key{UserID: client.userID, NewsID: flush.NewsID.Value})
		if !ok {
			return nil
		}
		go func() {
			// The outcome reaches the editor as an autosave:status event.
			_ = s.TriggerSave(context.Background())
		}()
		return nil

	default:
		return errUnknownEvent
	}
}
