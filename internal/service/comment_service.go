package service

import (
	"context"
	"fmt"
	"html"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/turmas-api/internal/dto"
	"github.com/noah-isme/turmas-api/internal/models"
	"github.com/noah-isme/turmas-api/internal/observability"
	"github.com/noah-isme/turmas-api/internal/repository"
)

// MaxCommentLength bounds a sanitised comment, in characters. Markup is stripped
// and entities are decoded, so the stored text is plain.
const MaxCommentLength = 2000

// CommentService handles class comments.
type CommentService interface {
	Create(ctx context.Context, actor models.Principal, classID string, payload dto.CreateCommentRequest) (dto.CommentResponse, error)
	ListByClass(ctx context.Context, actor models.Principal, classID string) ([]dto.CommentResponse, error)
}

type commentService struct {
	store     *repository.Store
	validator *validator.Validate
	policy    *bluemonday.Policy
	logger    zerolog.Logger
	tracer    trace.Tracer
}

// NewCommentService constructs the comment service.
func NewCommentService(store *repository.Store, validator *validator.Validate, logger zerolog.Logger) CommentService {
	return &commentService{
		store:     store,
		validator: validator,
		policy:    bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "comment_service").Logger(),
		tracer:    observability.Tracer("service/comment"),
	}
}

func (s *commentService) Create(ctx context.Context, actor models.Principal, classID string, payload dto.CreateCommentRequest) (dto.CommentResponse, error) {
	ctx, span := s.tracer.Start(ctx, "comment.create")
	span.SetAttributes(attribute.String("comment.class_id", classID), attribute.String("comment.author_id", actor.ID))
	defer span.End()

	payload.StudentID = strings.TrimSpace(payload.StudentID)
	if err := s.validator.Struct(payload); err != nil {
		return dto.CommentResponse{}, failSpan(span, err, "validation_failed")
	}

	text := strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(payload.Comment)))
	if text == "" {
		return dto.CommentResponse{}, failSpan(span, ErrEmptyComment, "empty_comment")
	}
	if utf8.RuneCountInString(text) > MaxCommentLength {
		return dto.CommentResponse{}, failSpan(span, ErrCommentTooLong, "comment_too_long")
	}

	class, err := s.store.Classes.GetByID(ctx, classID)
	if err != nil {
		return dto.CommentResponse{}, failSpan(span, translateNotFound("get class", err, ErrClassNotFound), "class_lookup_failed")
	}

	comment := models.Comment{
		ClassID:     class.ID,
		ProfessorID: class.ProfessorID,
		AuthorID:    actor.ID,
		Comment:     text,
	}
	switch {
	case actor.IsProfessor() && class.ProfessorID == actor.ID:
		if payload.StudentID != "" && !activeEnrollment(ctx, s.store.Enrollments, payload.StudentID, class.ID) {
			return dto.CommentResponse{}, failSpan(span, ErrNotEnrolled, "student_not_enrolled")
		}
		comment.StudentID = payload.StudentID
	case actor.IsStudent() && activeEnrollment(ctx, s.store.Enrollments, actor.ID, class.ID):
		if payload.StudentID != "" && payload.StudentID != actor.ID {
			return dto.CommentResponse{}, failSpan(span, ErrUnauthorized, "foreign_student")
		}
		comment.StudentID = actor.ID
	default:
		return dto.CommentResponse{}, failSpan(span, ErrUnauthorized, "not_member")
	}

	saved, err := s.store.Comments.Create(ctx, comment)
	if err != nil {
		return dto.CommentResponse{}, failSpan(span, fmt.Errorf("create comment: %w", err), "comment_create_failed")
	}
	return dto.NewCommentResponse(saved), nil
}

func (s *commentService) ListByClass(ctx context.Context, actor models.Principal, classID string) ([]dto.CommentResponse, error) {
	class, err := s.store.Classes.GetByID(ctx, classID)
	if err != nil {
		return nil, translateNotFound("get class", err, ErrClassNotFound)
	}
	isOwner := actor.IsProfessor() && class.ProfessorID == actor.ID
	if !isOwner && !(actor.IsStudent() && activeEnrollment(ctx, s.store.Enrollments, actor.ID, classID)) {
		return nil, ErrUnauthorized
	}

	comments := s.store.Comments.ListByClass(ctx, classID)
	sort.SliceStable(comments, func(i, j int) bool {
		return comments[i].CreatedAt.Before(comments[j].CreatedAt)
	})
	return dto.NewCommentResponses(comments), nil
}
