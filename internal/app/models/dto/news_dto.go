package dto

import (
	"time"

	"github.com/kindergarten-canvas/backend/internal/app/models"
)

// CreateNewsRequest is the body of POST /admin/v1/news.
type CreateNewsRequest struct {
	Title       string               `json:"title" binding:"required,max=200" example:"Пролетен празник"`
	Content     string               `json:"content" binding:"required" example:"<p>Каним ви...</p>"`
	ImageURL    *string              `json:"imageUrl" binding:"omitempty,url" example:"https://cdn.example.com/news/1.jpg"`
	Status      models.ContentStatus `json:"status" binding:"omitempty,oneof=DRAFT PUBLISHED" example:"DRAFT"`
	PublishedAt *string              `json:"publishedAt" binding:"omitempty,datetime=2006-01-02T15:04:05Z07:00" example:"2024-05-01T10:00:00Z"`
}

// UpdateNewsRequest is a partial update. Absent fields are left unchanged and
// null clears the nullable ones.
type UpdateNewsRequest struct {
	Title       *string              `json:"title" binding:"omitempty,max=200"`
	Content     *string              `json:"content"`
	ImageURL    Nullable[string]     `json:"imageUrl" swaggertype:"string"`
	Status      models.ContentStatus `json:"status" binding:"omitempty,oneof=DRAFT PUBLISHED"`
	PublishedAt Nullable[string]     `json:"publishedAt" swaggertype:"string"`
}

// NewsListQuery filters the admin news list.
type NewsListQuery struct {
	Status models.ContentStatus `form:"status" binding:"omitempty,oneof=DRAFT PUBLISHED"`
}

// PublicNewsItem is the projection served to the public site.
type PublicNewsItem struct {
	ID          int64      `json:"id" example:"1"`
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	ImageURL    *string    `json:"imageUrl"`
	PublishedAt *time.Time `json:"publishedAt"`
}

// NewPublicNewsItem projects a news item for anonymous readers.
func NewPublicNewsItem(n *models.NewsItem) PublicNewsItem {
	return PublicNewsItem{
		ID:          n.ID,
		Title:       n.Title,
		Content:     n.Content,
		ImageURL:    n.ImageURL,
		PublishedAt: n.PublishedAt,
	}
}

// PublicNewsList is the data of GET /public/news.
type PublicNewsList struct {
	News []PublicNewsItem `json:"news"`
}
