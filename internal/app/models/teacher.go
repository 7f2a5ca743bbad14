package models

import "time"

// Teacher is a staff profile shown on the "our team" page.
type Teacher struct {
	ID           int64         `json:"id" db:"id" example:"1"`
	FirstName    string        `json:"firstName" db:"first_name" example:"Мария"`
	LastName     string        `json:"lastName" db:"last_name" example:"Иванова"`
	Position     string        `json:"position" db:"position" example:"Детски учител"`
	Bio          *string       `json:"bio" db:"bio"`
	PhotoURL     *string       `json:"photoUrl" db:"photo_url"`
	Status       ContentStatus `json:"status" db:"status" example:"PUBLISHED"`
	DisplayOrder int           `json:"displayOrder" db:"display_order" example:"1"`
	CreatedAt    time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time     `json:"updatedAt" db:"updated_at"`
}
