package repository

import (
	"context"

	"github.com/noah-isme/turmas-api/internal/models"
)

// GradeRepository provides access to grades.
type GradeRepository interface {
	List(ctx context.Context) []models.Grade
	Create(ctx context.Context, grade models.Grade) (models.Grade, error)
	GetByID(ctx context.Context, id string) (models.Grade, error)
	ListByClass(ctx context.Context, classID string) []models.Grade
	ListByStudent(ctx context.Context, studentID string) []models.Grade
	Update(ctx context.Context, id string, patch models.GradePatch) (models.Grade, error)
	Delete(ctx context.Context, id string) error
}

type gradeRepository struct {
	collectionRepo[models.Grade, *models.Grade]
}

func (r *gradeRepository) List(ctx context.Context) []models.Grade {
	return r.list(ctx)
}

func (r *gradeRepository) Create(ctx context.Context, grade models.Grade) (models.Grade, error) {
	return r.create(ctx, grade)
}

func (r *gradeRepository) GetByID(ctx context.Context, id string) (models.Grade, error) {
	return r.get(ctx, id)
}

func (r *gradeRepository) ListByClass(ctx context.Context, classID string) []models.Grade {
	return r.filter(ctx, func(g models.Grade) bool { return g.ClassID == classID })
}

func (r *gradeRepository) ListByStudent(ctx context.Context, studentID string) []models.Grade {
	return r.filter(ctx, func(g models.Grade) bool { return g.StudentID == studentID })
}

func (r *gradeRepository) Update(ctx context.Context, id string, patch models.GradePatch) (models.Grade, error) {
	return r.update(ctx, id, func(grade *models.Grade, _ []models.Grade) error {
		if patch.Grade != nil {
			grade.Grade = *patch.Grade
		}
		if patch.Description != nil {
			grade.Description = *patch.Description
		}
		return nil
	})
}

func (r *gradeRepository) Delete(ctx context.Context, id string) error {
	return r.remove(ctx, id)
}
