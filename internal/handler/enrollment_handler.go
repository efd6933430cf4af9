package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/turmas-api/internal/dto"
	"github.com/noah-isme/turmas-api/internal/middleware"
	"github.com/noah-isme/turmas-api/internal/models"
	"github.com/noah-isme/turmas-api/internal/service"
	"github.com/noah-isme/turmas-api/internal/utils"
)

// EnrollmentHandler wires enrollment HTTP routes.
type EnrollmentHandler struct {
	service service.EnrollmentService
	logger  zerolog.Logger
}

// NewEnrollmentHandler constructs the handler.
func NewEnrollmentHandler(service service.EnrollmentService, logger zerolog.Logger) *EnrollmentHandler {
	return &EnrollmentHandler{
		service: service,
		logger:  logger.With().Str("component", "enrollment_handler").Logger(),
	}
}

// Register attaches enrollment endpoints to an authenticated router.
func (h *EnrollmentHandler) Register(router fiber.Router) {
	router.Post("/classes/:id/enrollments", h.enroll)
	router.Get("/classes/:id/enrollments", middleware.RequireRole(models.UserTypeProfessor), h.listByClass)
	router.Patch("/enrollments/:id", middleware.RequireRole(models.UserTypeProfessor), h.setStatus)
	router.Delete("/enrollments/:id", h.cancel)
	router.Get("/me/enrollments", middleware.RequireRole(models.UserTypeStudent), h.mine)
}

func (h *EnrollmentHandler) enroll(c *fiber.Ctx) error {
	principal, err := principalFromContext(c)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	var payload dto.EnrollRequest
	if err := parseBody(c, &payload); err != nil {
		return writeError(c, h.logger, err)
	}

	enrollment, err := h.service.Enroll(c.UserContext(), principal, c.Params("id"), payload)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "student enrolled", enrollment)
}

func (h *EnrollmentHandler) listByClass(c *fiber.Ctx) error {
	principal, err := principalFromContext(c)
	if err != nil {
		return writeError(c, h.logger, err)
	}

	enrollments, err := h.service.ListByClass(c.UserContext(), principal, c.Params("id"))
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "enrollments retrieved", enrollments)
}

func (h *EnrollmentHandler) setStatus(c *fiber.Ctx) error {
	principal, err := principalFromContext(c)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	var payload dto.UpdateEnrollmentRequest
	if err := parseBody(c, &payload); err != nil {
		return writeError(c, h.logger, err)
	}

	enrollment, err := h.service.SetStatus(c.UserContext(), principal, c.Params("id"), payload)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "enrollment updated", enrollment)
}

func (h *EnrollmentHandler) cancel(c *fiber.Ctx) error {
	principal, err := principalFromContext(c)
	if err != nil {
		return writeError(c, h.logger, err)
	}

	id := c.Params("id")
	if err := h.service.Cancel(c.UserContext(), principal, id); err != nil {
		return writeError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "enrollment cancelled", fiber.Map{"id": id})
}

func (h *EnrollmentHandler) mine(c *fiber.Ctx) error {
	principal, err := principalFromContext(c)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "enrollments retrieved", h.service.ListByStudent(c.UserContext(), principal.ID))
}
