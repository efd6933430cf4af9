package repository

import (
	"context"

	"github.com/noah-isme/turmas-api/internal/models"
)

// EnrollmentRepository provides access to enrollments.
type EnrollmentRepository interface {
	List(ctx context.Context) []models.Enrollment
	Create(ctx context.Context, enrollment models.Enrollment) (models.Enrollment, error)
	// Enroll inserts an active enrollment atomically with its checks: ErrConflict when the
	// student already has an active enrollment in the class, ErrCapacityReached when the
	// class already holds capacity active students. capacity <= 0 disables the seat check.
	Enroll(ctx context.Context, studentID, classID string, capacity int) (models.Enrollment, error)
	GetByID(ctx context.Context, id string) (models.Enrollment, error)
	ListByStudent(ctx context.Context, studentID string) []models.Enrollment
	ListByClass(ctx context.Context, classID string) []models.Enrollment
	Find(ctx context.Context, studentID, classID string) (models.Enrollment, error)
	// Update applies patch. Reactivating an enrollment runs the same checks as Enroll
	// against the stored state: ErrConflict on a duplicate active enrollment and
	// ErrCapacityReached when the class is full. capacity <= 0 disables the seat check.
	Update(ctx context.Context, id string, patch models.EnrollmentPatch, capacity int) (models.Enrollment, error)
	Delete(ctx context.Context, id string) error
}

type enrollmentRepository struct {
	collectionRepo[models.Enrollment, *models.Enrollment]
}

func (r *enrollmentRepository) List(ctx context.Context) []models.Enrollment {
	return r.list(ctx)
}

func (r *enrollmentRepository) Create(ctx context.Context, enrollment models.Enrollment) (models.Enrollment, error) {
	return r.create(ctx, enrollment)
}

func (r *enrollmentRepository) Enroll(ctx context.Context, studentID, classID string, capacity int) (models.Enrollment, error) {
	enrollment := models.Enrollment{StudentID: studentID, ClassID: classID, Status: models.EnrollmentStatusActive}
	return r.createChecked(ctx, enrollment, func(items []models.Enrollment) error {
		active := 0
		for _, e := range items {
			if e.ClassID != classID || e.Status != models.EnrollmentStatusActive {
				continue
			}
			if e.StudentID == studentID {
				return ErrConflict
			}
			active++
		}
		if capacity > 0 && active >= capacity {
			return ErrCapacityReached
		}
		return nil
	})
}

func (r *enrollmentRepository) GetByID(ctx context.Context, id string) (models.Enrollment, error) {
	return r.get(ctx, id)
}

func (r *enrollmentRepository) ListByStudent(ctx context.Context, studentID string) []models.Enrollment {
	return r.filter(ctx, func(e models.Enrollment) bool { return e.StudentID == studentID })
}

func (r *enrollmentRepository) ListByClass(ctx context.Context, classID string) []models.Enrollment {
	return r.filter(ctx, func(e models.Enrollment) bool { return e.ClassID == classID })
}

func (r *enrollmentRepository) Find(ctx context.Context, studentID, classID string) (models.Enrollment, error) {
	matches := r.filter(ctx, func(e models.Enrollment) bool {
		return e.StudentID == studentID && e.ClassID == classID
	})
	for _, e := range matches {
		if e.Status == models.EnrollmentStatusActive {
			return e, nil
		}
	}
	if len(matches) > 0 {
		return matches[0], nil
	}
	return models.Enrollment{}, ErrNotFound
}

func (r *enrollmentRepository) Update(ctx context.Context, id string, patch models.EnrollmentPatch, capacity int) (models.Enrollment, error) {
	return r.update(ctx, id, func(enrollment *models.Enrollment, all []models.Enrollment) error {
		if patch.Status == nil {
			return nil
		}
		if *patch.Status == models.EnrollmentStatusActive && enrollment.Status != models.EnrollmentStatusActive {
			active := 0
			for _, other := range all {
				if other.ID == enrollment.ID || other.ClassID != enrollment.ClassID || other.Status != models.EnrollmentStatusActive {
					continue
				}
				if other.StudentID == enrollment.StudentID {
					return ErrConflict
				}
				active++
			}
			if capacity > 0 && active >= capacity {
				return ErrCapacityReached
			}
		}
		enrollment.Status = *patch.Status
		return nil
	})
}

func (r *enrollmentRepository) Delete(ctx context.Context, id string) error {
	return r.remove(ctx, id)
}
