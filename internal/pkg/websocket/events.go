package websocket

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/kindergarten-canvas/backend/internal/app/models"
	"github.com/kindergarten-canvas/backend/internal/pkg/helpers"
)

// Event names exchanged with the editor.
const (
	EventPreviewUpdate  = "preview:update"
	EventPreviewRender  = "preview:render"
	EventAutosaveFlush  = "autosave:flush"
	EventAutosaveStatus = "autosave:status"
	EventNewsUpdated    = "news:updated"
	EventError          = "error"
)

// Message is the envelope of every frame.
type Message struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// NewsID is an optional news id. Editors send it as a number, as a numeric
// string, or as null for an item that is not created yet.
type NewsID struct {
	Value int64
	Valid bool
}

// UnmarshalJSON accepts 12, "12" and null.
func (id *NewsID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = NewsID{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*id = NewsID{}
			return nil
		}
		data = []byte(s)
	}
	v, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil || v <= 0 {
		return fmt.Errorf("invalid news id %q", data)
	}
	*id = NewsID{Value: v, Valid: true}
	return nil
}

// MarshalJSON writes null for an unset id.
func (id NewsID) MarshalJSON() ([]byte, error) {
	if !id.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatInt(id.Value, 10)), nil
}

// PreviewUpdate is the editor's current form state.
type PreviewUpdate struct {
	NewsID   NewsID  `json:"newsId"`
	Title    string  `json:"title"`
	Content  string  `json:"content"`
	ImageURL *string `json:"imageUrl"`
}

// Draft is the part of a news item the editor auto-saves.
type Draft struct {
	Title    string  `json:"title"`
	Content  string  `json:"content"`
	ImageURL *string `json:"imageUrl"`
}

// Sanitized returns d with title and image URL escaped the way the REST
// API escapes request bodies. Content is editor HTML and is kept as is.
func (d Draft) Sanitized() Draft {
	d.Title = helpers.SanitizeText(d.Title)
	if d.ImageURL != nil {
		imageURL := helpers.SanitizeText(*d.ImageURL)
		d.ImageURL = &imageURL
	}
	return d
}

// DraftFromNews returns the draft view of a stored item.
func DraftFromNews(item *models.NewsItem) Draft {
	return Draft{Title: item.Title, Content: item.Content, ImageURL: item.ImageURL}
}

// PreviewRender carries the HTML to show in the preview pane. Content is
// already HTML, so it is passed through.
type PreviewRender struct {
	NewsID       NewsID `json:"newsId"`
	RenderedHTML string `json:"renderedHtml"`
}

// AutosaveFlush asks for an immediate save.
type AutosaveFlush struct {
	NewsID NewsID `json:"newsId"`
}

// AutosaveStatus reports a save state change of one news item.
type AutosaveStatus struct {
	NewsID int64     `json:"newsId"`
	Status string    `json:"status"`
	Error  string    `json:"error,omitempty"`
	At     time.Time `json:"at"`
}

// NewsUpdated tells editors that an item changed on the server.
type NewsUpdated struct {
	NewsID    int64     `json:"newsId"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ErrorPayload is sent for frames that could not be handled.
type ErrorPayload struct {
	Message string `json:"message"`
}

func encodeMessage(event string, data interface{}) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Message{Event: event, Data: raw})
}
