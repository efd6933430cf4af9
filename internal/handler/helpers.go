package handler

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/turmas-api/internal/kvstore"
	"github.com/noah-isme/turmas-api/internal/middleware"
	"github.com/noah-isme/turmas-api/internal/models"
	"github.com/noah-isme/turmas-api/internal/repository"
	"github.com/noah-isme/turmas-api/internal/service"
	"github.com/noah-isme/turmas-api/internal/storage"
	"github.com/noah-isme/turmas-api/internal/utils"
)

var (
	errNoPrincipal = errors.New("no authenticated principal on request")
	errInvalidBody = errors.New("invalid request body")
)

func principalFromContext(c *fiber.Ctx) (models.Principal, error) {
	principal, ok := middleware.CurrentPrincipal(c)
	if !ok {
		return models.Principal{}, errNoPrincipal
	}
	return principal, nil
}

func parseBody(c *fiber.Ctx, target interface{}) error {
	if len(c.Body()) == 0 {
		return nil
	}
	if err := c.BodyParser(target); err != nil {
		return errInvalidBody
	}
	return nil
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
	}
	return &logger
}

func validationDetails(errs validator.ValidationErrors) map[string]string {
	details := make(map[string]string, len(errs))
	for _, fe := range errs {
		field := strings.ToLower(fe.Field())
		if fe.Param() != "" {
			details[field] = fe.Tag() + "=" + fe.Param()
			continue
		}
		details[field] = fe.Tag()
	}
	return details
}

// writeError maps service and storage errors to HTTP responses.
func writeError(c *fiber.Ctx, logger zerolog.Logger, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.As(err, &validationErrors):
		return utils.Fail(c, fiber.StatusBadRequest, "validation failed", validationDetails(validationErrors))
	case errors.Is(err, errInvalidBody):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, errNoPrincipal), errors.Is(err, service.ErrNotAuthenticated):
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	case errors.Is(err, service.ErrInvalidCredentials):
		return utils.SendError(c, fiber.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, service.ErrUnauthorized):
		return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
	case errors.Is(err, repository.ErrNotFound),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrClassNotFound),
		errors.Is(err, service.ErrStudentNotFound),
		errors.Is(err, service.ErrEnrollmentNotFound),
		errors.Is(err, service.ErrGradeNotFound):
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrDuplicateEmail),
		errors.Is(err, service.ErrAlreadyEnrolled),
		errors.Is(err, service.ErrClassFull):
		return utils.SendError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, service.ErrNotEnrolled):
		return utils.SendError(c, fiber.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, service.ErrEmptyComment),
		errors.Is(err, service.ErrCommentTooLong):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, kvstore.ErrStorageIO):
		requestLogger(logger, c).Error().Err(err).Msg("storage unavailable")
		return utils.SendError(c, fiber.StatusServiceUnavailable, "storage unavailable")
	case errors.Is(err, storage.ErrSerialization):
		requestLogger(logger, c).Error().Err(err).Msg("stored data unreadable")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	default:
		requestLogger(logger, c).Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
