package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/turmas-api/internal/dto"
	"github.com/noah-isme/turmas-api/internal/middleware"
	"github.com/noah-isme/turmas-api/internal/models"
	"github.com/noah-isme/turmas-api/internal/service"
	"github.com/noah-isme/turmas-api/internal/utils"
)

// AuthHandler exposes registration, login and session endpoints.
type AuthHandler struct {
	auth   service.AuthService
	tokens service.TokenService
	logger zerolog.Logger
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(auth service.AuthService, tokens service.TokenService, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:   auth,
		tokens: tokens,
		logger: logger.With().Str("component", "auth_handler").Logger(),
	}
}

// Register attaches the auth endpoints. requireSession guards the session-bound routes.
func (h *AuthHandler) Register(router fiber.Router, requireSession fiber.Handler) {
	limit := middleware.RateLimit("auth", 10, time.Minute)
	router.Post("/register", limit, h.register)
	router.Post("/login", limit, h.login)
	router.Post("/logout", requireSession, h.logout)
	router.Get("/session", requireSession, h.session)
	router.Post("/refresh", requireSession, h.refresh)
	router.Patch("/profile", requireSession, h.updateProfile)
}

func (h *AuthHandler) register(c *fiber.Ctx) error {
	var payload dto.RegisterRequest
	if err := parseBody(c, &payload); err != nil {
		return writeError(c, h.logger, err)
	}

	result, err := h.auth.Register(c.UserContext(), payload)
	if err != nil {
		return writeError(c, h.logger, err)
	}

	response, err := h.authResponse(result.Session)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "account created", response)
}

func (h *AuthHandler) login(c *fiber.Ctx) error {
	var payload dto.LoginRequest
	if err := parseBody(c, &payload); err != nil {
		return writeError(c, h.logger, err)
	}

	result, err := h.auth.Login(c.UserContext(), payload)
	if errors.Is(err, service.ErrUserNotFound) {
		// Unknown accounts are not disclosed over HTTP.
		err = service.ErrInvalidCredentials
	}
	if err != nil {
		return writeError(c, h.logger, err)
	}

	response, err := h.authResponse(result.Session)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "logged in", response)
}

func (h *AuthHandler) logout(c *fiber.Ctx) error {
	if err := h.auth.Logout(c.UserContext()); err != nil {
		return writeError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "logged out", nil)
}

func (h *AuthHandler) session(c *fiber.Ctx) error {
	session, ok := middleware.CurrentSession(c)
	if !ok {
		return writeError(c, h.logger, service.ErrNotAuthenticated)
	}
	return utils.SendSuccess(c, "session retrieved", dto.NewSessionResponse(session))
}

func (h *AuthHandler) refresh(c *fiber.Ctx) error {
	session, err := h.auth.RefreshSession(c.UserContext())
	if err != nil {
		return writeError(c, h.logger, err)
	}
	if session == nil {
		return writeError(c, h.logger, service.ErrNotAuthenticated)
	}

	response, err := h.authResponse(*session)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "session refreshed", response)
}

func (h *AuthHandler) updateProfile(c *fiber.Ctx) error {
	principal, err := principalFromContext(c)
	if err != nil {
		return writeError(c, h.logger, err)
	}

	var payload dto.UpdateProfileRequest
	if err := parseBody(c, &payload); err != nil {
		return writeError(c, h.logger, err)
	}

	user, err := h.auth.UpdateProfile(c.UserContext(), principal, payload)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "profile updated", user)
}

func (h *AuthHandler) authResponse(session models.Session) (dto.AuthResponse, error) {
	token, err := h.tokens.Issue(session)
	if err != nil {
		return dto.AuthResponse{}, err
	}
	view := dto.NewSessionResponse(session)
	return dto.AuthResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   view.ExpiresAt,
		User:        view.User,
	}, nil
}
