package dto

import (
	"time"

	"github.com/noah-isme/turmas-api/internal/models"
)

// EnrollRequest enrolls a student. Students omit StudentID to enroll themselves.
type EnrollRequest struct {
	StudentID string `json:"student_id" validate:"omitempty,max=64"`
}

// UpdateEnrollmentRequest changes the status of an enrollment.
type UpdateEnrollmentRequest struct {
	Status string `json:"status" validate:"required,oneof=active inactive"`
}

// EnrollmentResponse is the API view of an enrollment.
type EnrollmentResponse struct {
	ID        string    `json:"id"`
	StudentID string    `json:"student_id"`
	ClassID   string    `json:"class_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewEnrollmentResponse maps an enrollment model.
func NewEnrollmentResponse(e models.Enrollment) EnrollmentResponse {
	return EnrollmentResponse{
		ID:        e.ID,
		StudentID: e.StudentID,
		ClassID:   e.ClassID,
		Status:    string(e.Status),
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

// NewEnrollmentResponses maps a slice of enrollments.
func NewEnrollmentResponses(items []models.Enrollment) []EnrollmentResponse {
	out := make([]EnrollmentResponse, 0, len(items))
	for _, item := range items {
		out = append(out, NewEnrollmentResponse(item))
	}
	return out
}
