package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/noah-isme/turmas-api/internal/models"
)

// AttendanceRepository provides access to attendance records.
type AttendanceRepository interface {
	List(ctx context.Context) []models.Attendance
	Create(ctx context.Context, attendance models.Attendance) (models.Attendance, error)
	// UpsertMany writes one class session in a single collection write, overwriting any
	// record that already exists for the same class, student and date.
	UpsertMany(ctx context.Context, records []models.Attendance) ([]models.Attendance, error)
	GetByID(ctx context.Context, id string) (models.Attendance, error)
	ListByClass(ctx context.Context, classID string) []models.Attendance
	ListByStudent(ctx context.Context, studentID string) []models.Attendance
	ListByClassAndDate(ctx context.Context, classID, date string) []models.Attendance
	Update(ctx context.Context, id string, patch models.AttendancePatch) (models.Attendance, error)
	Delete(ctx context.Context, id string) error
}

type attendanceRepository struct {
	collectionRepo[models.Attendance, *models.Attendance]
}

func (r *attendanceRepository) List(ctx context.Context) []models.Attendance {
	return r.list(ctx)
}

func (r *attendanceRepository) Create(ctx context.Context, attendance models.Attendance) (models.Attendance, error) {
	return r.create(ctx, attendance)
}

func (r *attendanceRepository) UpsertMany(ctx context.Context, records []models.Attendance) ([]models.Attendance, error) {
	saved := make([]models.Attendance, 0, len(records))
	err := r.col.Mutate(ctx, func(items []models.Attendance) ([]models.Attendance, error) {
		saved = saved[:0]
		for _, rec := range records {
			idx := -1
			for i := range items {
				if items[i].ClassID == rec.ClassID && items[i].StudentID == rec.StudentID && items[i].Date == rec.Date {
					idx = i
					break
				}
			}

			if idx >= 0 {
				items[idx].Status = rec.Status
				items[idx].UpdatedAt = r.stamp(items[idx].UpdatedAt)
				saved = append(saved, items[idx])
				continue
			}

			now := r.now().UTC()
			rec.ID = uuid.NewString()
			rec.CreatedAt = now
			rec.UpdatedAt = now
			items = append(items, rec)
			saved = append(saved, rec)
		}
		return items, nil
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

func (r *attendanceRepository) GetByID(ctx context.Context, id string) (models.Attendance, error) {
	return r.get(ctx, id)
}

func (r *attendanceRepository) ListByClass(ctx context.Context, classID string) []models.Attendance {
	return r.filter(ctx, func(a models.Attendance) bool { return a.ClassID == classID })
}

func (r *attendanceRepository) ListByStudent(ctx context.Context, studentID string) []models.Attendance {
	return r.filter(ctx, func(a models.Attendance) bool { return a.StudentID == studentID })
}

func (r *attendanceRepository) ListByClassAndDate(ctx context.Context, classID, date string) []models.Attendance {
	return r.filter(ctx, func(a models.Attendance) bool { return a.ClassID == classID && a.Date == date })
}

func (r *attendanceRepository) Update(ctx context.Context, id string, patch models.AttendancePatch) (models.Attendance, error) {
	return r.update(ctx, id, func(attendance *models.Attendance, _ []models.Attendance) error {
		if patch.Status != nil {
			attendance.Status = *patch.Status
		}
		return nil
	})
}

func (r *attendanceRepository) Delete(ctx context.Context, id string) error {
	return r.remove(ctx, id)
}
