package dto

import (
	"time"

	"github.com/noah-isme/turmas-api/internal/models"
)

// CreateCommentRequest posts a comment in a class. Professors may address one student.
type CreateCommentRequest struct {
	Comment   string `json:"comment" validate:"required,max=2000"`
	StudentID string `json:"student_id" validate:"omitempty,max=64"`
}

// CommentResponse is the API view of a comment.
type CommentResponse struct {
	ID          string    `json:"id"`
	ClassID     string    `json:"class_id"`
	StudentID   string    `json:"student_id,omitempty"`
	ProfessorID string    `json:"professor_id"`
	AuthorID    string    `json:"author_id"`
	Comment     string    `json:"comment"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewCommentResponses maps comments.
func NewCommentResponses(items []models.Comment) []CommentResponse {
	out := make([]CommentResponse, 0, len(items))
	for _, c := range items {
		out = append(out, NewCommentResponse(c))
	}
	return out
}

// NewCommentResponse maps a comment model.
func NewCommentResponse(c models.Comment) CommentResponse {
	return CommentResponse{
		ID:          c.ID,
		ClassID:     c.ClassID,
		StudentID:   c.StudentID,
		ProfessorID: c.ProfessorID,
		AuthorID:    c.AuthorID,
		Comment:     c.Comment,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}
