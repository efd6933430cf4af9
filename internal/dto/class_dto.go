package dto

import (
	"time"

	"github.com/noah-isme/turmas-api/internal/models"
)

// CreateClassRequest opens a new class owned by the calling professor.
type CreateClassRequest struct {
	Name        string `json:"name" validate:"required,max=120"`
	Description string `json:"description" validate:"required,max=1000"`
	MaxStudents *int   `json:"max_students" validate:"omitempty,min=1,max=500"`
}

// UpdateClassRequest patches a class; absent fields stay unchanged.
type UpdateClassRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=120"`
	Description *string `json:"description" validate:"omitempty,min=1,max=1000"`
	MaxStudents *int    `json:"max_students" validate:"omitempty,min=1,max=500"`
}

// ClassResponse is the API view of a class.
type ClassResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	ProfessorID string    `json:"professor_id"`
	MaxStudents int       `json:"max_students"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewClassResponse maps a class model.
func NewClassResponse(class models.Class) ClassResponse {
	return ClassResponse{
		ID:          class.ID,
		Name:        class.Name,
		Description: class.Description,
		ProfessorID: class.ProfessorID,
		MaxStudents: class.MaxStudents,
		CreatedAt:   class.CreatedAt,
		UpdatedAt:   class.UpdatedAt,
	}
}

// NewClassResponses maps a slice of classes.
func NewClassResponses(classes []models.Class) []ClassResponse {
	out := make([]ClassResponse, 0, len(classes))
	for _, class := range classes {
		out = append(out, NewClassResponse(class))
	}
	return out
}

// RosterEntry is one enrolled student.
type RosterEntry struct {
	EnrollmentID string    `json:"enrollment_id"`
	StudentID    string    `json:"student_id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Status       string    `json:"status"`
	EnrolledAt   time.Time `json:"enrolled_at"`
}

// RosterResponse lists a class with its students and seat usage.
type RosterResponse struct {
	Class     ClassResponse `json:"class"`
	Students  []RosterEntry `json:"students"`
	Active    int           `json:"active"`
	Available int           `json:"available"`
}
