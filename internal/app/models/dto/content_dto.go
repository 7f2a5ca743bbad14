package dto

import "github.com/kindergarten-canvas/backend/internal/app/models"

// UploadResponse describes a stored image.
type UploadResponse struct {
	URL      string `json:"url" example:"http://localhost:3000/uploads/kindergarten-canvas/news/3f2a.jpg"`
	PublicID string `json:"publicId" example:"kindergarten-canvas/news/3f2a"`
}

// ContentCounts is the dashboard summary of managed content.
type ContentCounts struct {
	News      models.StatusCounts `json:"news"`
	Careers   models.StatusCounts `json:"careers"`
	Events    models.StatusCounts `json:"events"`
	Deadlines models.StatusCounts `json:"deadlines"`
	Gallery   models.StatusCounts `json:"gallery"`
	Teachers  models.StatusCounts `json:"teachers"`
}
