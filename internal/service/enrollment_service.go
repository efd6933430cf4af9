package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/turmas-api/internal/dto"
	"github.com/noah-isme/turmas-api/internal/models"
	"github.com/noah-isme/turmas-api/internal/observability"
	"github.com/noah-isme/turmas-api/internal/repository"
)

// EnrollmentService manages student enrollments.
type EnrollmentService interface {
	// Enroll enrolls the actor (students) or payload.StudentID (the owning professor).
	Enroll(ctx context.Context, actor models.Principal, classID string, payload dto.EnrollRequest) (dto.EnrollmentResponse, error)
	SetStatus(ctx context.Context, actor models.Principal, id string, payload dto.UpdateEnrollmentRequest) (dto.EnrollmentResponse, error)
	// Cancel removes an enrollment. Cancelling an absent enrollment succeeds.
	Cancel(ctx context.Context, actor models.Principal, id string) error
	ListByStudent(ctx context.Context, studentID string) []dto.EnrollmentResponse
	ListByClass(ctx context.Context, actor models.Principal, classID string) ([]dto.EnrollmentResponse, error)
}

type enrollmentService struct {
	store     *repository.Store
	validator *validator.Validate
	logger    zerolog.Logger
	tracer    trace.Tracer
}

// NewEnrollmentService constructs the enrollment service.
func NewEnrollmentService(store *repository.Store, validator *validator.Validate, logger zerolog.Logger) EnrollmentService {
	return &enrollmentService{
		store:     store,
		validator: validator,
		logger:    logger.With().Str("component", "enrollment_service").Logger(),
		tracer:    observability.Tracer("service/enrollment"),
	}
}

func (s *enrollmentService) Enroll(ctx context.Context, actor models.Principal, classID string, payload dto.EnrollRequest) (dto.EnrollmentResponse, error) {
	ctx, span := s.tracer.Start(ctx, "enrollment.create")
	span.SetAttributes(attribute.String("enrollment.class_id", classID))
	defer span.End()

	payload.StudentID = strings.TrimSpace(payload.StudentID)
	if err := s.validator.Struct(payload); err != nil {
		return dto.EnrollmentResponse{}, failSpan(span, err, "validation_failed")
	}

	class, err := s.store.Classes.GetByID(ctx, classID)
	if err != nil {
		return dto.EnrollmentResponse{}, failSpan(span, translateNotFound("get class", err, ErrClassNotFound), "class_lookup_failed")
	}

	studentID := payload.StudentID
	switch {
	case actor.IsStudent():
		if studentID != "" && studentID != actor.ID {
			return dto.EnrollmentResponse{}, failSpan(span, ErrUnauthorized, "foreign_student")
		}
		studentID = actor.ID
	case actor.IsProfessor() && class.ProfessorID == actor.ID:
		if studentID == "" {
			return dto.EnrollmentResponse{}, failSpan(span, ErrStudentNotFound, "student_missing")
		}
	default:
		return dto.EnrollmentResponse{}, failSpan(span, ErrUnauthorized, "not_owner")
	}
	span.SetAttributes(attribute.String("enrollment.student_id", studentID))

	student, err := s.store.Users.GetByID(ctx, studentID)
	if err != nil {
		return dto.EnrollmentResponse{}, failSpan(span, translateNotFound("get student", err, ErrStudentNotFound), "student_lookup_failed")
	}
	if student.Type != models.UserTypeStudent {
		return dto.EnrollmentResponse{}, failSpan(span, ErrStudentNotFound, "not_student")
	}

	enrollment, err := s.store.Enrollments.Enroll(ctx, student.ID, class.ID, class.MaxStudents)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrConflict):
			return dto.EnrollmentResponse{}, failSpan(span, ErrAlreadyEnrolled, "already_enrolled")
		case errors.Is(err, repository.ErrCapacityReached):
			return dto.EnrollmentResponse{}, failSpan(span, ErrClassFull, "class_full")
		default:
			return dto.EnrollmentResponse{}, failSpan(span, fmt.Errorf("create enrollment: %w", err), "enrollment_create_failed")
		}
	}

	s.logger.Info().Str("class_id", class.ID).Str("student_id", student.ID).Msg("student enrolled")
	return dto.NewEnrollmentResponse(enrollment), nil
}

func (s *enrollmentService) SetStatus(ctx context.Context, actor models.Principal, id string, payload dto.UpdateEnrollmentRequest) (dto.EnrollmentResponse, error) {
	ctx, span := s.tracer.Start(ctx, "enrollment.set_status")
	span.SetAttributes(attribute.String("enrollment.id", id))
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		return dto.EnrollmentResponse{}, failSpan(span, err, "validation_failed")
	}

	enrollment, err := s.store.Enrollments.GetByID(ctx, id)
	if err != nil {
		return dto.EnrollmentResponse{}, failSpan(span, translateNotFound("get enrollment", err, ErrEnrollmentNotFound), "enrollment_lookup_failed")
	}
	class, err := ownedClass(ctx, s.store.Classes, actor, enrollment.ClassID)
	if err != nil {
		return dto.EnrollmentResponse{}, failSpan(span, err, "ownership_check_failed")
	}

	status := models.EnrollmentStatus(payload.Status)
	updated, err := s.store.Enrollments.Update(ctx, id, models.EnrollmentPatch{Status: &status}, class.MaxStudents)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrConflict):
			err = ErrAlreadyEnrolled
		case errors.Is(err, repository.ErrCapacityReached):
			err = ErrClassFull
		case errors.Is(err, repository.ErrNotFound):
			err = ErrEnrollmentNotFound
		default:
			err = fmt.Errorf("update enrollment: %w", err)
		}
		return dto.EnrollmentResponse{}, failSpan(span, err, "enrollment_update_failed")
	}
	return dto.NewEnrollmentResponse(updated), nil
}

func (s *enrollmentService) Cancel(ctx context.Context, actor models.Principal, id string) error {
	enrollment, err := s.store.Enrollments.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("get enrollment: %w", err)
	}

	if !(actor.IsStudent() && enrollment.StudentID == actor.ID) {
		if _, err := ownedClass(ctx, s.store.Classes, actor, enrollment.ClassID); err != nil {
			return err
		}
	}

	if err := s.store.Enrollments.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete enrollment: %w", err)
	}
	s.logger.Info().Str("enrollment_id", id).Str("actor_id", actor.ID).Msg("enrollment cancelled")
	return nil
}

func (s *enrollmentService) ListByStudent(ctx context.Context, studentID string) []dto.EnrollmentResponse {
	return dto.NewEnrollmentResponses(s.store.Enrollments.ListByStudent(ctx, studentID))
}

func (s *enrollmentService) ListByClass(ctx context.Context, actor models.Principal, classID string) ([]dto.EnrollmentResponse, error) {
	if _, err := ownedClass(ctx, s.store.Classes, actor, classID); err != nil {
		return nil, err
	}
	return dto.NewEnrollmentResponses(s.store.Enrollments.ListByClass(ctx, classID)), nil
}
