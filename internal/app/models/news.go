package models

import "time"

// NewsItem is an article shown on the public site once published.
type NewsItem struct {
	ID          int64         `json:"id" db:"id" example:"1"`
	Title       string        `json:"title" db:"title" example:"Пролетен празник"`
	Content     string        `json:"content" db:"content" example:"<p>Каним ви...</p>"`
	ImageURL    *string       `json:"imageUrl" db:"image_url" example:"https://cdn.example.com/news/1.jpg"`
	Status      ContentStatus `json:"status" db:"status" example:"DRAFT"`
	PublishedAt *time.Time    `json:"publishedAt" db:"published_at"`
	CreatedAt   time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time     `json:"updatedAt" db:"updated_at"`
}

// IsPublic reports whether the item may be served to anonymous readers.
func (n *NewsItem) IsPublic() bool {
	return n.Status == StatusPublished && n.PublishedAt != nil
}

// StatusCounts holds the number of items per publication status.
type StatusCounts struct {
	Draft     int64 `json:"draft"`
	Published int64 `json:"published"`
}
