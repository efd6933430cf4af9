package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/turmas-api/internal/dto"
	"github.com/noah-isme/turmas-api/internal/models"
	"github.com/noah-isme/turmas-api/internal/observability"
	"github.com/noah-isme/turmas-api/internal/repository"
)

// AttendanceService records class sessions.
type AttendanceService interface {
	// Record writes one record per entry for the day, overwriting earlier records of the
	// same student and day.
	Record(ctx context.Context, actor models.Principal, classID string, payload dto.RecordAttendanceRequest) ([]dto.AttendanceResponse, error)
	// ListByClass returns the class attendance, optionally for one day. Students only see
	// their own records.
	ListByClass(ctx context.Context, actor models.Principal, classID, date string) ([]dto.AttendanceResponse, error)
	ListByStudent(ctx context.Context, studentID string) []dto.AttendanceResponse
}

type attendanceService struct {
	store     *repository.Store
	validator *validator.Validate
	logger    zerolog.Logger
	tracer    trace.Tracer
}

// NewAttendanceService constructs the attendance service.
func NewAttendanceService(store *repository.Store, validator *validator.Validate, logger zerolog.Logger) AttendanceService {
	return &attendanceService{
		store:     store,
		validator: validator,
		logger:    logger.With().Str("component", "attendance_service").Logger(),
		tracer:    observability.Tracer("service/attendance"),
	}
}

func (s *attendanceService) Record(ctx context.Context, actor models.Principal, classID string, payload dto.RecordAttendanceRequest) ([]dto.AttendanceResponse, error) {
	ctx, span := s.tracer.Start(ctx, "attendance.record")
	span.SetAttributes(
		attribute.String("attendance.class_id", classID),
		attribute.String("attendance.date", payload.Date),
		attribute.Int("attendance.entries", len(payload.Entries)),
	)
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		return nil, failSpan(span, err, "validation_failed")
	}
	if _, err := ownedClass(ctx, s.store.Classes, actor, classID); err != nil {
		return nil, failSpan(span, err, "ownership_check_failed")
	}

	enrolled := make(map[string]bool)
	for _, e := range s.store.Enrollments.ListByClass(ctx, classID) {
		if e.Status == models.EnrollmentStatusActive {
			enrolled[e.StudentID] = true
		}
	}

	records := make([]models.Attendance, 0, len(payload.Entries))
	position := make(map[string]int, len(payload.Entries))
	for _, entry := range payload.Entries {
		if !enrolled[entry.StudentID] {
			return nil, failSpan(span, fmt.Errorf("%w: %s", ErrNotEnrolled, entry.StudentID), "student_not_enrolled")
		}
		record := models.Attendance{
			ClassID:   classID,
			StudentID: entry.StudentID,
			Date:      payload.Date,
			Status:    models.AttendanceStatus(entry.Status),
		}
		if i, seen := position[entry.StudentID]; seen {
			records[i] = record
			continue
		}
		position[entry.StudentID] = len(records)
		records = append(records, record)
	}

	saved, err := s.store.Attendances.UpsertMany(ctx, records)
	if err != nil {
		return nil, failSpan(span, fmt.Errorf("record attendance: %w", err), "attendance_save_failed")
	}

	s.logger.Info().Str("class_id", classID).Str("date", payload.Date).Int("records", len(saved)).Msg("attendance recorded")
	return dto.NewAttendanceResponses(saved), nil
}

func (s *attendanceService) ListByClass(ctx context.Context, actor models.Principal, classID, date string) ([]dto.AttendanceResponse, error) {
	class, err := s.store.Classes.GetByID(ctx, classID)
	if err != nil {
		return nil, translateNotFound("get class", err, ErrClassNotFound)
	}

	var records []models.Attendance
	if date != "" {
		records = s.store.Attendances.ListByClassAndDate(ctx, classID, date)
	} else {
		records = s.store.Attendances.ListByClass(ctx, classID)
	}

	switch {
	case actor.IsProfessor() && class.ProfessorID == actor.ID:
	case actor.IsStudent() && activeEnrollment(ctx, s.store.Enrollments, actor.ID, classID):
		own := records[:0]
		for _, r := range records {
			if r.StudentID == actor.ID {
				own = append(own, r)
			}
		}
		records = own
	default:
		return nil, ErrUnauthorized
	}

	sortAttendance(records)
	return dto.NewAttendanceResponses(records), nil
}

func (s *attendanceService) ListByStudent(ctx context.Context, studentID string) []dto.AttendanceResponse {
	records := s.store.Attendances.ListByStudent(ctx, studentID)
	sortAttendance(records)
	return dto.NewAttendanceResponses(records)
}

func sortAttendance(records []models.Attendance) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Date != records[j].Date {
			return records[i].Date < records[j].Date
		}
		return records[i].StudentID < records[j].StudentID
	})
}
