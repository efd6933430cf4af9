package dto

import (
	"time"

	"github.com/noah-isme/turmas-api/internal/models"
)

// CreateGradeRequest records a grade for an enrolled student.
type CreateGradeRequest struct {
	StudentID   string   `json:"student_id" validate:"required,max=64"`
	Grade       *float64 `json:"grade" validate:"required,gte=0,lte=10"`
	Description string   `json:"description" validate:"required,max=500"`
}

// UpdateGradeRequest patches a grade.
type UpdateGradeRequest struct {
	Grade       *float64 `json:"grade" validate:"omitempty,gte=0,lte=10"`
	Description *string  `json:"description" validate:"omitempty,min=1,max=500"`
}

// GradeResponse is the API view of a grade.
type GradeResponse struct {
	ID          string    `json:"id"`
	ClassID     string    `json:"class_id"`
	StudentID   string    `json:"student_id"`
	Grade       float64   `json:"grade"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewGradeResponse maps a grade model.
func NewGradeResponse(g models.Grade) GradeResponse {
	return GradeResponse{
		ID:          g.ID,
		ClassID:     g.ClassID,
		StudentID:   g.StudentID,
		Grade:       g.Grade,
		Description: g.Description,
		CreatedAt:   g.CreatedAt,
		UpdatedAt:   g.UpdatedAt,
	}
}

// NewGradeResponses maps a slice of grades.
func NewGradeResponses(items []models.Grade) []GradeResponse {
	out := make([]GradeResponse, 0, len(items))
	for _, item := range items {
		out = append(out, NewGradeResponse(item))
	}
	return out
}
