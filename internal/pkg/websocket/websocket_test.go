package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kindergarten-canvas/backend/internal/app/models"
	"github.com/kindergarten-canvas/backend/internal/app/models/dto"
	"github.com/kindergarten-canvas/backend/internal/pkg/auth"
	"github.com/kindergarten-canvas/backend/internal/pkg/autosave"
)

type fakeNews struct {
	mu      sync.Mutex
	updates map[int64][]dto.UpdateNewsRequest
}

func (f *fakeNews) Update(_ context.Context, id int64, req *dto.UpdateNewsRequest) (*models.NewsItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updates == nil {
		f.updates = make(map[int64][]dto.UpdateNewsRequest)
	}
	f.updates[id] = append(f.updates[id], *req)
	return &models.NewsItem{ID: id, Title: *req.Title, Content: *req.Content}, nil
}

func (f *fakeNews) count(id int64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.updates[id])
}

func (f *fakeNews) last(id int64) dto.UpdateNewsRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	reqs := f.updates[id]
	return reqs[len(reqs)-1]
}

type fixture struct {
	server  *httptest.Server
	hub     *Hub
	manager *autosave.Manager[Draft]
	news    *fakeNews
	token   string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	jwtSvc := auth.NewJWTService(auth.JWTConfig{
		AccessSecret:    strings.Repeat("a", 32),
		RefreshSecret:   strings.Repeat("r", 32),
		AccessTokenExp:  time.Minute,
		RefreshTokenExp: time.Hour,
		TokenIssuer:     "kindergarten-canvas",
	})
	token, err := jwtSvc.GenerateAccessToken(&models.User{ID: 7, Email: "admin@kindergarten.bg", Role: models.RoleAdmin})
	require.NoError(t, err)

	news := &fakeNews{}
	manager := autosave.NewManager[Draft](autosave.Config{
		Debounce:   20 * time.Millisecond,
		Retry:      time.Second,
		SavedReset: time.Second,
	}, zerolog.Nop())
	hub := NewHub(news, manager, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	r := gin.New()
	r.GET("/ws", NewHandler(hub, jwtSvc, []string{"*"}, zerolog.Nop()).HandleConnection)
	server := httptest.NewServer(r)

	t.Cleanup(func() {
		cancel()
		server.Close()
	})

	return &fixture{server: server, hub: hub, manager: manager, news: news, token: token}
}

func (f *fixture) url(query string) string {
	return "ws" + strings.TrimPrefix(f.server.URL, "http") + "/ws" + query
}

func (f *fixture) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(f.url("?token="+f.token), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, event string, data interface{}) {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(Message{Event: event, Data: raw}))
}

func receive(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestHandler_RejectsMissingOrInvalidToken(t *testing.T) {
	f := newFixture(t)

	for _, query := range []string{"", "?token=garbage"} {
		_, resp, err := websocket.DefaultDialer.Dial(f.url(query), nil)
		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}
}

func TestHandler_AcceptsBearerHeader(t *testing.T) {
	f := newFixture(t)

	header := http.Header{"Authorization": []string{"Bearer " + f.token}}
	conn, _, err := websocket.DefaultDialer.Dial(f.url(""), header)
	require.NoError(t, err)
	defer conn.Close()

	assert.Eventually(t, func() bool { return f.hub.ClientsCount(7) == 1 }, time.Second, 5*time.Millisecond)
}

func TestPreviewUpdate_WithoutNewsIDOnlyRenders(t *testing.T) {
	f := newFixture(t)
	conn := f.dial(t)

	send(t, conn, EventPreviewUpdate, map[string]interface{}{
		"newsId": nil, "title": "Нова", "content": "<p>Здравейте</p>", "imageUrl": nil,
	})

	msg := receive(t, conn)
	assert.Equal(t, EventPreviewRender, msg.Event)
	assert.JSONEq(t, `{"newsId":null,"renderedHtml":"<p>Здравейте</p>"}`, string(msg.Data))
	assert.Equal(t, 0, f.manager.Len())
}

func TestPreviewUpdate_AutoSavesDraft(t *testing.T) {
	f := newFixture(t)
	conn := f.dial(t)

	send(t, conn, EventPreviewUpdate, map[string]interface{}{
		"newsId": "5", "title": "Празник", "content": "<p>Текст</p>",
	})

	render := receive(t, conn)
	assert.Equal(t, EventPreviewRender, render.Event)
	assert.JSONEq(t, `{"newsId":5,"renderedHtml":"<p>Текст</p>"}`, string(render.Data))

	var statuses []string
	for len(statuses) < 2 {
		msg := receive(t, conn)
		require.Equal(t, EventAutosaveStatus, msg.Event)
		var st AutosaveStatus
		require.NoError(t, json.Unmarshal(msg.Data, &st))
		assert.Equal(t, int64(5), st.NewsID)
		statuses = append(statuses, st.Status)
	}
	assert.Equal(t, []string{"saving", "saved"}, statuses)
	assert.Equal(t, 1, f.news.count(5))
}

func TestPreviewUpdate_EscapesTitleAndImageURL(t *testing.T) {
	f := newFixture(t)
	conn := f.dial(t)

	send(t, conn, EventPreviewUpdate, map[string]interface{}{
		"newsId":   3,
		"title":    " <script>alert(1)</script> ",
		"content":  "<p>Текст</p>",
		"imageUrl": "https://cdn.example.com/<img>.jpg",
	})

	render := receive(t, conn)
	assert.JSONEq(t, `{"newsId":3,"renderedHtml":"<p>Текст</p>"}`, string(render.Data))

	require.Eventually(t, func() bool { return f.news.count(3) == 1 }, time.Second, 5*time.Millisecond)
	stored := f.news.last(3)
	assert.Equal(t, "&lt;script>alert(1)&lt;/script>", *stored.Title)
	assert.Equal(t, "<p>Текст</p>", *stored.Content)
	require.True(t, stored.ImageURL.Valid)
	assert.Equal(t, "https://cdn.example.com/&lt;img>.jpg", stored.ImageURL.Value)
}

func TestSaver_EscapesDraft(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.hub.saver(8)(context.Background(), Draft{Title: "<b>Празник</b>", Content: "<b>body</b>"}))
	stored := f.news.last(8)
	assert.Equal(t, "&lt;b>Празник&lt;/b>", *stored.Title)
	assert.Equal(t, "<b>body</b>", *stored.Content)
	assert.False(t, stored.ImageURL.Valid)
}

func TestReleaseUser_KeepsSessionsWhileConnected(t *testing.T) {
	f := newFixture(t)
	conn := f.dial(t)
	require.Eventually(t, func() bool { return f.hub.ClientsCount(7) == 1 }, time.Second, 5*time.Millisecond)

	key := autosave.Key{UserID: 7, NewsID: 4}
	f.manager.Session(key, f.hub.saver(4), nil)

	// A release scheduled before the user reconnected must not close the
	// sessions of the new connection.
	f.hub.releaseUser(7)
	_, ok := f.manager.Get(key)
	assert.True(t, ok)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return f.manager.Len() == 0 }, time.Second, 5*time.Millisecond)
}

func TestAutosaveFlush_SavesImmediately(t *testing.T) {
	f := newFixture(t)
	conn := f.dial(t)

	s := f.manager.Session(autosave.Key{UserID: 7, NewsID: 9}, f.hub.saver(9), nil)
	require.NoError(t, s.Update(Draft{Title: "t", Content: "c"}))

	send(t, conn, EventAutosaveFlush, map[string]interface{}{"newsId": 9})
	assert.Eventually(t, func() bool { return f.news.count(9) == 1 }, time.Second, 5*time.Millisecond)
}

func TestUnknownEvent_RepliesWithError(t *testing.T) {
	f := newFixture(t)
	conn := f.dial(t)

	send(t, conn, "chat:message", map[string]string{"text": "hi"})

	msg := receive(t, conn)
	assert.Equal(t, EventError, msg.Event)
	var payload ErrorPayload
	require.NoError(t, json.Unmarshal(msg.Data, &payload))
	assert.Contains(t, payload.Message, "chat:message")
}

func TestNewsUpdated_BroadcastsAndMarksSaved(t *testing.T) {
	f := newFixture(t)
	conn := f.dial(t)
	require.Eventually(t, func() bool { return f.hub.ClientsCount(7) == 1 }, time.Second, 5*time.Millisecond)

	s := f.manager.Session(autosave.Key{UserID: 7, NewsID: 3}, f.hub.saver(3), nil)

	updatedAt := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	f.hub.NewsUpdated(&models.NewsItem{ID: 3, Title: "stored", Content: "body", UpdatedAt: updatedAt})

	msg := receive(t, conn)
	assert.Equal(t, EventNewsUpdated, msg.Event)
	assert.JSONEq(t, `{"newsId":3,"updatedAt":"2024-05-01T10:00:00Z"}`, string(msg.Data))

	// The editor echoing the stored version has nothing left to save.
	require.NoError(t, s.Update(Draft{Title: "stored", Content: "body"}))
	require.NoError(t, s.TriggerSave(context.Background()))
	assert.Equal(t, 0, f.news.count(3))
}

func TestNewsID_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		in    string
		want  NewsID
		isErr bool
	}{
		{`12`, NewsID{Value: 12, Valid: true}, false},
		{`"12"`, NewsID{Value: 12, Valid: true}, false},
		{`null`, NewsID{}, false},
		{`""`, NewsID{}, false},
		{`"abc"`, NewsID{}, true},
		{`-1`, NewsID{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var id NewsID
			err := json.Unmarshal([]byte(tt.in), &id)
			if tt.isErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, id)
		})
	}
}
