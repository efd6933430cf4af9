package service

import (
	"context"
	"fmt"
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

// DefaultMaxStudents is the capacity of a class created without one.
const DefaultMaxStudents = 30

// ClassService manages classes and their rosters.
type ClassService interface {
	Create(ctx context.Context, actor models.Principal, payload dto.CreateClassRequest) (dto.ClassResponse, error)
	Update(ctx context.Context, actor models.Principal, id string, payload dto.UpdateClassRequest) (dto.ClassResponse, error)
	// Delete removes the class and everything recorded in it.
	Delete(ctx context.Context, actor models.Principal, id string) (repository.CascadeResult, error)
	Get(ctx context.Context, id string) (dto.ClassResponse, error)
	List(ctx context.Context) []dto.ClassResponse
	ListByProfessor(ctx context.Context, professorID string) []dto.ClassResponse
	Roster(ctx context.Context, actor models.Principal, id string) (dto.RosterResponse, error)
}

type classService struct {
	store     *repository.Store
	validator *validator.Validate
	logger    zerolog.Logger
	tracer    trace.Tracer
}

// NewClassService constructs the class service.
func NewClassService(store *repository.Store, validator *validator.Validate, logger zerolog.Logger) ClassService {
	return &classService{
		store:     store,
		validator: validator,
		logger:    logger.With().Str("component", "class_service").Logger(),
		tracer:    observability.Tracer("service/class"),
	}
}

func (s *classService) Create(ctx context.Context, actor models.Principal, payload dto.CreateClassRequest) (dto.ClassResponse, error) {
	ctx, span := s.tracer.Start(ctx, "class.create")
	span.SetAttributes(attribute.String("class.professor_id", actor.ID))
	defer span.End()

	if !actor.IsProfessor() {
		return dto.ClassResponse{}, failSpan(span, ErrUnauthorized, "not_professor")
	}
	payload.Name = strings.TrimSpace(payload.Name)
	payload.Description = strings.TrimSpace(payload.Description)
	if err := s.validator.Struct(payload); err != nil {
		return dto.ClassResponse{}, failSpan(span, err, "validation_failed")
	}

	professor, err := s.store.Users.GetByID(ctx, actor.ID)
	if err != nil {
		return dto.ClassResponse{}, failSpan(span, translateNotFound("lookup professor", err, ErrUserNotFound), "professor_lookup_failed")
	}
	if professor.Type != models.UserTypeProfessor {
		return dto.ClassResponse{}, failSpan(span, ErrUnauthorized, "not_professor")
	}

	maxStudents := DefaultMaxStudents
	if payload.MaxStudents != nil {
		maxStudents = *payload.MaxStudents
	}

	class, err := s.store.Classes.Create(ctx, models.Class{
		Name:        payload.Name,
		Description: payload.Description,
		ProfessorID: professor.ID,
		MaxStudents: maxStudents,
	})
	if err != nil {
		return dto.ClassResponse{}, failSpan(span, fmt.Errorf("create class: %w", err), "class_create_failed")
	}

	s.logger.Info().Str("class_id", class.ID).Str("professor_id", professor.ID).Msg("class created")
	return dto.NewClassResponse(class), nil
}

func (s *classService) Update(ctx context.Context, actor models.Principal, id string, payload dto.UpdateClassRequest) (dto.ClassResponse, error) {
	ctx, span := s.tracer.Start(ctx, "class.update")
	span.SetAttributes(attribute.String("class.id", id))
	defer span.End()

	if payload.Name != nil {
		name := strings.TrimSpace(*payload.Name)
		payload.Name = &name
	}
	if payload.Description != nil {
		description := strings.TrimSpace(*payload.Description)
		payload.Description = &description
	}
	if err := s.validator.Struct(payload); err != nil {
		return dto.ClassResponse{}, failSpan(span, err, "validation_failed")
	}

	if _, err := ownedClass(ctx, s.store.Classes, actor, id); err != nil {
		return dto.ClassResponse{}, failSpan(span, err, "ownership_check_failed")
	}

	class, err := s.store.Classes.Update(ctx, id, models.ClassPatch{
		Name:        payload.Name,
		Description: payload.Description,
		MaxStudents: payload.MaxStudents,
	})
	if err != nil {
		return dto.ClassResponse{}, failSpan(span, translateNotFound("update class", err, ErrClassNotFound), "class_update_failed")
	}
	return dto.NewClassResponse(class), nil
}

func (s *classService) Delete(ctx context.Context, actor models.Principal, id string) (repository.CascadeResult, error) {
	ctx, span := s.tracer.Start(ctx, "class.delete")
	span.SetAttributes(attribute.String("class.id", id))
	defer span.End()

	if _, err := ownedClass(ctx, s.store.Classes, actor, id); err != nil {
		return repository.CascadeResult{}, failSpan(span, err, "ownership_check_failed")
	}

	result, err := s.store.DeleteClassCascade(ctx, id)
	if err != nil {
		return result, failSpan(span, fmt.Errorf("delete class: %w", err), "class_delete_failed")
	}
	span.SetAttributes(
		attribute.Int("class.removed_enrollments", result.Enrollments),
		attribute.Int("class.removed_grades", result.Grades),
	)
	return result, nil
}

func (s *classService) Get(ctx context.Context, id string) (dto.ClassResponse, error) {
	class, err := s.store.Classes.GetByID(ctx, id)
	if err != nil {
		return dto.ClassResponse{}, translateNotFound("get class", err, ErrClassNotFound)
	}
	return dto.NewClassResponse(class), nil
}

func (s *classService) List(ctx context.Context) []dto.ClassResponse {
	return dto.NewClassResponses(sortClasses(s.store.Classes.List(ctx)))
}

func (s *classService) ListByProfessor(ctx context.Context, professorID string) []dto.ClassResponse {
	return dto.NewClassResponses(sortClasses(s.store.Classes.ListByProfessor(ctx, professorID)))
}

func (s *classService) Roster(ctx context.Context, actor models.Principal, id string) (dto.RosterResponse, error) {
	class, err := ownedClass(ctx, s.store.Classes, actor, id)
	if err != nil {
		return dto.RosterResponse{}, err
	}

	users := make(map[string]models.User)
	for _, user := range s.store.Users.ListByType(ctx, models.UserTypeStudent) {
		users[user.ID] = user
	}

	response := dto.RosterResponse{Class: dto.NewClassResponse(class), Students: []dto.RosterEntry{}}
	for _, enrollment := range s.store.Enrollments.ListByClass(ctx, id) {
		student := users[enrollment.StudentID]
		response.Students = append(response.Students, dto.RosterEntry{
			EnrollmentID: enrollment.ID,
			StudentID:    enrollment.StudentID,
			Name:         student.Name,
			Email:        student.Email,
			Status:       string(enrollment.Status),
			EnrolledAt:   enrollment.CreatedAt,
		})
		if enrollment.Status == models.EnrollmentStatusActive {
			response.Active++
		}
	}
	sort.SliceStable(response.Students, func(i, j int) bool {
		return strings.ToLower(response.Students[i].Name) < strings.ToLower(response.Students[j].Name)
	})

	response.Available = class.MaxStudents - response.Active
	if response.Available < 0 {
		response.Available = 0
	}
	return response, nil
}

// ownedClass loads the class and checks that actor is the professor who owns it.
func ownedClass(ctx context.Context, classes repository.ClassRepository, actor models.Principal, id string) (models.Class, error) {
	class, err := classes.GetByID(ctx, id)
	if err != nil {
		return models.Class{}, translateNotFound("get class", err, ErrClassNotFound)
	}
	if !actor.IsProfessor() || class.ProfessorID != actor.ID {
		return models.Class{}, ErrUnauthorized
	}
	return class, nil
}

func sortClasses(classes []models.Class) []models.Class {
	sort.SliceStable(classes, func(i, j int) bool {
		return classes[i].CreatedAt.Before(classes[j].CreatedAt)
	})
	return classes
}

// activeEnrollment reports whether student holds an active enrollment in class.
func activeEnrollment(ctx context.Context, enrollments repository.EnrollmentRepository, studentID, classID string) bool {
	e, err := enrollments.Find(ctx, studentID, classID)
	return err == nil && e.Status == models.EnrollmentStatusActive
}
