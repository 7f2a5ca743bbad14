package dto

import "github.com/kindergarten-canvas/backend/internal/app/models"

// CreateTeacherRequest is the body of POST /admin/v1/teachers.
type CreateTeacherRequest struct {
	FirstName    string               `json:"firstName" binding:"required,max=100" example:"Мария"`
	LastName     string               `json:"lastName" binding:"required,max=100" example:"Иванова"`
	Position     string               `json:"position" binding:"required,max=150" example:"Детски учител"`
	Bio          *string              `json:"bio"`
	PhotoURL     *string              `json:"photoUrl" binding:"omitempty,url"`
	Status       models.ContentStatus `json:"status" binding:"omitempty,oneof=DRAFT PUBLISHED"`
	DisplayOrder *int                 `json:"displayOrder" binding:"omitempty,min=0"`
}

// UpdateTeacherRequest is a partial update of a teacher profile.
type UpdateTeacherRequest struct {
	FirstName    *string              `json:"firstName" binding:"omitempty,max=100"`
	LastName     *string              `json:"lastName" binding:"omitempty,max=100"`
	Position     *string              `json:"position" binding:"omitempty,max=150"`
	Bio          Nullable[string]     `json:"bio" swaggertype:"string"`
	PhotoURL     Nullable[string]     `json:"photoUrl" swaggertype:"string"`
	Status       models.ContentStatus `json:"status" binding:"omitempty,oneof=DRAFT PUBLISHED"`
	DisplayOrder Nullable[int]        `json:"displayOrder" swaggertype:"integer"`
}

// TeacherListQuery filters the admin teacher list.
type TeacherListQuery struct {
	Status models.ContentStatus `form:"status" binding:"omitempty,oneof=DRAFT PUBLISHED"`
}
