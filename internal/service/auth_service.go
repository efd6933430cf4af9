package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/turmas-api/internal/dto"
	"github.com/noah-isme/turmas-api/internal/models"
	"github.com/noah-isme/turmas-api/internal/observability"
	"github.com/noah-isme/turmas-api/internal/repository"
)

// DefaultSessionTTL is how long a session stays valid without a refresh.
const DefaultSessionTTL = 24 * time.Hour

// AuthConfig tunes session lifetime and password hashing.
type AuthConfig struct {
	SessionTTL time.Duration
	BcryptCost int
}

// AuthResult is the outcome of a successful register or login.
type AuthResult struct {
	User    dto.UserResponse
	Session models.Session
}

// AuthService manages accounts and the single device session.
type AuthService interface {
	Register(ctx context.Context, payload dto.RegisterRequest) (AuthResult, error)
	Login(ctx context.Context, payload dto.LoginRequest) (AuthResult, error)
	Logout(ctx context.Context) error
	// CurrentSession returns nil when nobody is logged in. An expired session is removed
	// and reported as absent.
	CurrentSession(ctx context.Context) (*models.Session, error)
	RefreshSession(ctx context.Context) (*models.Session, error)
	// Authenticate returns the current session when token matches it.
	Authenticate(ctx context.Context, token string) (models.Session, error)
	UpdateProfile(ctx context.Context, actor models.Principal, payload dto.UpdateProfileRequest) (dto.UserResponse, error)
}

type authService struct {
	users     repository.UserRepository
	sessions  repository.SessionRepository
	validator *validator.Validate
	config    AuthConfig
	logger    zerolog.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// NewAuthService constructs the authentication service.
func NewAuthService(users repository.UserRepository, sessions repository.SessionRepository, validator *validator.Validate, config AuthConfig, logger zerolog.Logger) AuthService {
	if config.SessionTTL <= 0 {
		config.SessionTTL = DefaultSessionTTL
	}
	if config.BcryptCost < bcrypt.MinCost || config.BcryptCost > bcrypt.MaxCost {
		config.BcryptCost = bcrypt.DefaultCost
	}
	return &authService{
		users:     users,
		sessions:  sessions,
		validator: validator,
		config:    config,
		logger:    logger.With().Str("component", "auth_service").Logger(),
		tracer:    observability.Tracer("service/auth"),
		now:       time.Now,
	}
}

func (s *authService) Register(ctx context.Context, payload dto.RegisterRequest) (AuthResult, error) {
	ctx, span := s.tracer.Start(ctx, "auth.register")
	defer span.End()

	payload.Name = strings.TrimSpace(payload.Name)
	payload.Email = repository.NormalizeEmail(payload.Email)
	if err := s.validator.Struct(payload); err != nil {
		return AuthResult{}, failSpan(span, err, "validation_failed")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(payload.Password), s.config.BcryptCost)
	if err != nil {
		return AuthResult{}, failSpan(span, fmt.Errorf("hash password: %w", err), "hash_failed")
	}

	user, err := s.users.Create(ctx, models.User{
		Name:         payload.Name,
		Email:        payload.Email,
		PasswordHash: string(hash),
		Type:         models.UserType(payload.Type),
	})
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return AuthResult{}, failSpan(span, ErrDuplicateEmail, "duplicate_email")
		}
		return AuthResult{}, failSpan(span, fmt.Errorf("create user: %w", err), "user_create_failed")
	}
	span.SetAttributes(attribute.String("auth.user_id", user.ID), attribute.String("auth.user_type", string(user.Type)))

	session, err := s.startSession(ctx, user)
	if err != nil {
		return AuthResult{}, failSpan(span, err, "session_save_failed")
	}

	s.logger.Info().Str("user_id", user.ID).Str("type", string(user.Type)).Msg("user registered")
	return AuthResult{User: dto.NewUserResponse(user), Session: session}, nil
}

func (s *authService) Login(ctx context.Context, payload dto.LoginRequest) (AuthResult, error) {
	ctx, span := s.tracer.Start(ctx, "auth.login")
	defer span.End()

	payload.Email = repository.NormalizeEmail(payload.Email)
	if err := s.validator.Struct(payload); err != nil {
		return AuthResult{}, failSpan(span, err, "validation_failed")
	}

	user, err := s.users.GetByEmail(ctx, payload.Email)
	if err != nil {
		return AuthResult{}, failSpan(span, translateNotFound("lookup user", err, ErrUserNotFound), "user_lookup_failed")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(payload.Password)); err != nil {
		s.logger.Warn().Str("user_id", user.ID).Msg("login rejected")
		return AuthResult{}, failSpan(span, ErrInvalidCredentials, "invalid_credentials")
	}

	session, err := s.startSession(ctx, user)
	if err != nil {
		return AuthResult{}, failSpan(span, err, "session_save_failed")
	}

	s.logger.Info().Str("user_id", user.ID).Msg("user logged in")
	return AuthResult{User: dto.NewUserResponse(user), Session: session}, nil
}

func (s *authService) startSession(ctx context.Context, user models.User) (models.Session, error) {
	session := models.Session{
		User:      user.Snapshot(),
		Token:     uuid.NewString(),
		ExpiresAt: s.now().Add(s.config.SessionTTL).UnixMilli(),
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return models.Session{}, fmt.Errorf("save session: %w", err)
	}
	return session, nil
}

func (s *authService) Logout(ctx context.Context) error {
	if err := s.sessions.Delete(ctx); err != nil {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}

func (s *authService) CurrentSession(ctx context.Context) (*models.Session, error) {
	stored, err := s.sessions.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	if stored == nil {
		return nil, nil
	}
	if !stored.Expired(s.now()) {
		return stored, nil
	}

	// Expired: remove it unless a fresh login replaced it meanwhile.
	err = s.sessions.Update(ctx, func(current *models.Session) (*models.Session, error) {
		if current == nil || current.Expired(s.now()) {
			return nil, nil
		}
		return current, nil
	})
	if err != nil {
		return nil, fmt.Errorf("expire session: %w", err)
	}
	s.logger.Info().Str("user_id", stored.User.ID).Msg("session expired")
	return nil, nil
}

func (s *authService) RefreshSession(ctx context.Context) (*models.Session, error) {
	var refreshed *models.Session
	err := s.sessions.Update(ctx, func(stored *models.Session) (*models.Session, error) {
		if stored == nil || stored.Expired(s.now()) {
			return nil, nil
		}
		next := *stored
		next.ExpiresAt = s.now().Add(s.config.SessionTTL).UnixMilli()
		refreshed = &next
		return refreshed, nil
	})
	if err != nil {
		return nil, fmt.Errorf("refresh session: %w", err)
	}
	return refreshed, nil
}

func (s *authService) Authenticate(ctx context.Context, token string) (models.Session, error) {
	session, err := s.CurrentSession(ctx)
	if err != nil {
		return models.Session{}, err
	}
	if session == nil || token == "" || subtle.ConstantTimeCompare([]byte(session.Token), []byte(token)) != 1 {
		return models.Session{}, ErrNotAuthenticated
	}
	return *session, nil
}

func (s *authService) UpdateProfile(ctx context.Context, actor models.Principal, payload dto.UpdateProfileRequest) (dto.UserResponse, error) {
	ctx, span := s.tracer.Start(ctx, "auth.update_profile")
	span.SetAttributes(attribute.String("auth.user_id", actor.ID))
	defer span.End()

	if payload.Name != nil {
		name := strings.TrimSpace(*payload.Name)
		payload.Name = &name
	}
	if payload.Email != nil {
		email := repository.NormalizeEmail(*payload.Email)
		payload.Email = &email
	}
	if err := s.validator.Struct(payload); err != nil {
		return dto.UserResponse{}, failSpan(span, err, "validation_failed")
	}

	user, err := s.users.GetByID(ctx, actor.ID)
	if err != nil {
		return dto.UserResponse{}, failSpan(span, translateNotFound("lookup user", err, ErrUserNotFound), "user_lookup_failed")
	}

	patch := models.UserPatch{Name: payload.Name, Email: payload.Email}
	if payload.NewPassword != nil {
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(payload.CurrentPassword)); err != nil {
			return dto.UserResponse{}, failSpan(span, ErrInvalidCredentials, "invalid_current_password")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*payload.NewPassword), s.config.BcryptCost)
		if err != nil {
			return dto.UserResponse{}, failSpan(span, fmt.Errorf("hash password: %w", err), "hash_failed")
		}
		encoded := string(hash)
		patch.PasswordHash = &encoded
	}

	updated, err := s.users.Update(ctx, actor.ID, patch)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrConflict):
			err = ErrDuplicateEmail
		case errors.Is(err, repository.ErrNotFound):
			err = ErrUserNotFound
		default:
			err = fmt.Errorf("update user: %w", err)
		}
		return dto.UserResponse{}, failSpan(span, err, "user_update_failed")
	}

	s.logger.Info().Str("user_id", updated.ID).Bool("password_changed", patch.PasswordHash != nil).Msg("profile updated")
	return dto.NewUserResponse(updated), nil
}
