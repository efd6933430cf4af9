package repository

import (
	"context"

	"github.com/noah-isme/turmas-api/internal/models"
)

// ClassRepository provides access to classes.
type ClassRepository interface {
	List(ctx context.Context) []models.Class
	Create(ctx context.Context, class models.Class) (models.Class, error)
	GetByID(ctx context.Context, id string) (models.Class, error)
	ListByProfessor(ctx context.Context, professorID string) []models.Class
	Update(ctx context.Context, id string, patch models.ClassPatch) (models.Class, error)
	Delete(ctx context.Context, id string) error
}

type classRepository struct {
	collectionRepo[models.Class, *models.Class]
}

func (r *classRepository) List(ctx context.Context) []models.Class {
	return r.list(ctx)
}

func (r *classRepository) Create(ctx context.Context, class models.Class) (models.Class, error) {
	return r.create(ctx, class)
}

func (r *classRepository) GetByID(ctx context.Context, id string) (models.Class, error) {
	return r.get(ctx, id)
}

func (r *classRepository) ListByProfessor(ctx context.Context, professorID string) []models.Class {
	return r.filter(ctx, func(c models.Class) bool { return c.ProfessorID == professorID })
}

func (r *classRepository) Update(ctx context.Context, id string, patch models.ClassPatch) (models.Class, error) {
	return r.update(ctx, id, func(class *models.Class, _ []models.Class) error {
		if patch.Name != nil {
			class.Name = *patch.Name
		}
		if patch.Description != nil {
			class.Description = *patch.Description
		}
		if patch.MaxStudents != nil {
			class.MaxStudents = *patch.MaxStudents
		}
		return nil
	})
}

func (r *classRepository) Delete(ctx context.Context, id string) error {
	return r.remove(ctx, id)
}
