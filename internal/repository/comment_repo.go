package repository

import (
	"context"

	"github.com/noah-isme/turmas-api/internal/models"
)

// CommentRepository provides access to class comments.
type CommentRepository interface {
	List(ctx context.Context) []models.Comment
	Create(ctx context.Context, comment models.Comment) (models.Comment, error)
	GetByID(ctx context.Context, id string) (models.Comment, error)
	ListByClass(ctx context.Context, classID string) []models.Comment
	ListByStudent(ctx context.Context, studentID string) []models.Comment
	Update(ctx context.Context, id string, patch models.CommentPatch) (models.Comment, error)
	Delete(ctx context.Context, id string) error
}

type commentRepository struct {
	collectionRepo[models.Comment, *models.Comment]
}

func (r *commentRepository) List(ctx context.Context) []models.Comment {
	return r.list(ctx)
}

func (r *commentRepository) Create(ctx context.Context, comment models.Comment) (models.Comment, error) {
	return r.create(ctx, comment)
}

func (r *commentRepository) GetByID(ctx context.Context, id string) (models.Comment, error) {
	return r.get(ctx, id)
}

func (r *commentRepository) ListByClass(ctx context.Context, classID string) []models.Comment {
	return r.filter(ctx, func(c models.Comment) bool { return c.ClassID == classID })
}

func (r *commentRepository) ListByStudent(ctx context.Context, studentID string) []models.Comment {
	return r.filter(ctx, func(c models.Comment) bool { return c.StudentID == studentID })
}

func (r *commentRepository) Update(ctx context.Context, id string, patch models.CommentPatch) (models.Comment, error) {
	return r.update(ctx, id, func(comment *models.Comment, _ []models.Comment) error {
		if patch.Comment != nil {
			comment.Comment = *patch.Comment
		}
		return nil
	})
}

func (r *commentRepository) Delete(ctx context.Context, id string) error {
	return r.remove(ctx, id)
}
