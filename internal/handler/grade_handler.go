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

// GradeHandler wires grade HTTP routes.
type GradeHandler struct {
	service service.GradeService
	logger  zerolog.Logger
}

// NewGradeHandler constructs the handler.
func NewGradeHandler(service service.GradeService, logger zerolog.Logger) *GradeHandler {
	return &GradeHandler{
		service: service,
		logger:  logger.With().Str("component", "grade_handler").Logger(),
	}
}

// Register attaches grade endpoints to an authenticated router.
func (h *GradeHandler) Register(router fiber.Router) {
	professorOnly := middleware.RequireRole(models.UserTypeProfessor)

	router.Post("/classes/:id/grades", professorOnly, h.record)
	router.Get("/classes/:id/grades", h.listByClass)
	router.Patch("/grades/:id", professorOnly, h.update)
	router.Delete("/grades/:id", professorOnly, h.delete)
	router.Get("/me/grades", middleware.RequireRole(models.UserTypeStudent), h.mine)
}

func (h *GradeHandler) record(c *fiber.Ctx) error {
	principal, err := principalFromContext(c)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	var payload dto.CreateGradeRequest
	if err := parseBody(c, &payload); err != nil {
		return writeError(c, h.logger, err)
	}

	grade, err := h.service.Record(c.UserContext(), principal, c.Params("id"), payload)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "grade recorded", grade)
}

func (h *GradeHandler) listByClass(c *fiber.Ctx) error {
	principal, err := principalFromContext(c)
	if err != nil {
		return writeError(c, h.logger, err)
	}

	grades, err := h.service.ListByClass(c.UserContext(), principal, c.Params("id"))
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "grades retrieved", grades)
}

func (h *GradeHandler) update(c *fiber.Ctx) error {
	principal, err := principalFromContext(c)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	var payload dto.UpdateGradeRequest
	if err := parseBody(c, &payload); err != nil {
		return writeError(c, h.logger, err)
	}

	grade, err := h.service.Update(c.UserContext(), principal, c.Params("id"), payload)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "grade updated", grade)
}

func (h *GradeHandler) delete(c *fiber.Ctx) error {
	principal, err := principalFromContext(c)
	if err != nil {
		return writeError(c, h.logger, err)
	}

	id := c.Params("id")
	if err := h.service.Delete(c.UserContext(), principal, id); err != nil {
		return writeError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "grade deleted", fiber.Map{"id": id})
}

func (h *GradeHandler) mine(c *fiber.Ctx) error {
	principal, err := principalFromContext(c)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "grades retrieved", h.service.ListByStudent(c.UserContext(), principal.ID))
}
