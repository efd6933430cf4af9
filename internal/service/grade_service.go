package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
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

// GradeService manages grades given by the class professor.
type GradeService interface {
	Record(ctx context.Context, actor models.Principal, classID string, payload dto.CreateGradeRequest) (dto.GradeResponse, error)
	Update(ctx context.Context, actor models.Principal, id string, payload dto.UpdateGradeRequest) (dto.GradeResponse, error)
	Delete(ctx context.Context, actor models.Principal, id string) error
	// ListByClass returns every grade of the class for its professor and only the
	// caller's own grades for an enrolled student.
	ListByClass(ctx context.Context, actor models.Principal, classID string) ([]dto.GradeResponse, error)
	ListByStudent(ctx context.Context, studentID string) []dto.GradeResponse
}

type gradeService struct {
	store     *repository.Store
	validator *validator.Validate
	logger    zerolog.Logger
	tracer    trace.Tracer
}

// NewGradeService constructs the grade service.
func NewGradeService(store *repository.Store, validator *validator.Validate, logger zerolog.Logger) GradeService {
	return &gradeService{
		store:     store,
		validator: validator,
		logger:    logger.With().Str("component", "grade_service").Logger(),
		tracer:    observability.Tracer("service/grade"),
	}
}

func roundGrade(value float64) float64 {
	return math.Round(value*100) / 100
}

func (s *gradeService) Record(ctx context.Context, actor models.Principal, classID string, payload dto.CreateGradeRequest) (dto.GradeResponse, error) {
	ctx, span := s.tracer.Start(ctx, "grade.record")
	span.SetAttributes(attribute.String("grade.class_id", classID), attribute.String("grade.student_id", payload.StudentID))
	defer span.End()

	payload.Description = strings.TrimSpace(payload.Description)
	if err := s.validator.Struct(payload); err != nil {
		return dto.GradeResponse{}, failSpan(span, err, "validation_failed")
	}
	if _, err := ownedClass(ctx, s.store.Classes, actor, classID); err != nil {
		return dto.GradeResponse{}, failSpan(span, err, "ownership_check_failed")
	}
	if !activeEnrollment(ctx, s.store.Enrollments, payload.StudentID, classID) {
		return dto.GradeResponse{}, failSpan(span, ErrNotEnrolled, "student_not_enrolled")
	}

	grade, err := s.store.Grades.Create(ctx, models.Grade{
		ClassID:     classID,
		StudentID:   payload.StudentID,
		Grade:       roundGrade(*payload.Grade),
		Description: payload.Description,
	})
	if err != nil {
		return dto.GradeResponse{}, failSpan(span, fmt.Errorf("create grade: %w", err), "grade_create_failed")
	}

	s.logger.Info().Str("grade_id", grade.ID).Str("class_id", classID).Float64("grade", grade.Grade).Msg("grade recorded")
	return dto.NewGradeResponse(grade), nil
}

func (s *gradeService) Update(ctx context.Context, actor models.Principal, id string, payload dto.UpdateGradeRequest) (dto.GradeResponse, error) {
	ctx, span := s.tracer.Start(ctx, "grade.update")
	span.SetAttributes(attribute.String("grade.id", id))
	defer span.End()

	if payload.Description != nil {
		description := strings.TrimSpace(*payload.Description)
		payload.Description = &description
	}
	if err := s.validator.Struct(payload); err != nil {
		return dto.GradeResponse{}, failSpan(span, err, "validation_failed")
	}

	current, err := s.store.Grades.GetByID(ctx, id)
	if err != nil {
		return dto.GradeResponse{}, failSpan(span, translateNotFound("get grade", err, ErrGradeNotFound), "grade_lookup_failed")
	}
	if _, err := ownedClass(ctx, s.store.Classes, actor, current.ClassID); err != nil {
		return dto.GradeResponse{}, failSpan(span, err, "ownership_check_failed")
	}

	patch := models.GradePatch{Description: payload.Description}
	if payload.Grade != nil {
		rounded := roundGrade(*payload.Grade)
		patch.Grade = &rounded
	}

	updated, err := s.store.Grades.Update(ctx, id, patch)
	if err != nil {
		return dto.GradeResponse{}, failSpan(span, translateNotFound("update grade", err, ErrGradeNotFound), "grade_update_failed")
	}
	return dto.NewGradeResponse(updated), nil
}

func (s *gradeService) Delete(ctx context.Context, actor models.Principal, id string) error {
	current, err := s.store.Grades.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("get grade: %w", err)
	}
	if _, err := ownedClass(ctx, s.store.Classes, actor, current.ClassID); err != nil {
		return err
	}
	if err := s.store.Grades.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete grade: %w", err)
	}
	return nil
}

func (s *gradeService) ListByClass(ctx context.Context, actor models.Principal, classID string) ([]dto.GradeResponse, error) {
	class, err := s.store.Classes.GetByID(ctx, classID)
	if err != nil {
		return nil, translateNotFound("get class", err, ErrClassNotFound)
	}

	grades := s.store.Grades.ListByClass(ctx, classID)
	switch {
	case actor.IsProfessor() && class.ProfessorID == actor.ID:
	case actor.IsStudent() && activeEnrollment(ctx, s.store.Enrollments, actor.ID, classID):
		own := grades[:0]
		for _, g := range grades {
			if g.StudentID == actor.ID {
				own = append(own, g)
			}
		}
		grades = own
	default:
		return nil, ErrUnauthorized
	}

	sortGrades(grades)
	return dto.NewGradeResponses(grades), nil
}

func (s *gradeService) ListByStudent(ctx context.Context, studentID string) []dto.GradeResponse {
	grades := s.store.Grades.ListByStudent(ctx, studentID)
	sortGrades(grades)
	return dto.NewGradeResponses(grades)
}

func sortGrades(grades []models.Grade) {
	sort.SliceStable(grades, func(i, j int) bool {
		return grades[i].CreatedAt.Before(grades[j].CreatedAt)
	})
}
