package handler

import (
	"bytes"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/turmas-api/internal/dto"
	"github.com/noah-isme/turmas-api/internal/export"
	"github.com/noah-isme/turmas-api/internal/middleware"
	"github.com/noah-isme/turmas-api/internal/models"
	"github.com/noah-isme/turmas-api/internal/repository"
	"github.com/noah-isme/turmas-api/internal/service"
	"github.com/noah-isme/turmas-api/internal/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ClassHandler wires class HTTP routes.
type ClassHandler struct {
	service service.ClassService
	store   *repository.Store
	logger  zerolog.Logger
}

// NewClassHandler constructs the handler. store backs the spreadsheet report.
func NewClassHandler(service service.ClassService, store *repository.Store, logger zerolog.Logger) *ClassHandler {
	return &ClassHandler{
		service: service,
		store:   store,
		logger:  logger.With().Str("component", "class_handler").Logger(),
	}
}

// Register attaches class endpoints to an authenticated router.
func (h *ClassHandler) Register(router fiber.Router) {
	professorOnly := middleware.RequireRole(models.UserTypeProfessor)

	router.Get("/classes", h.list)
	router.Post("/classes", professorOnly, h.create)
	router.Get("/classes/:id", h.get)
	router.Patch("/classes/:id", professorOnly, h.update)
	router.Delete("/classes/:id", professorOnly, h.delete)
	router.Get("/classes/:id/roster", professorOnly, h.roster)
	router.Get("/classes/:id/report", professorOnly, h.report)
}

func (h *ClassHandler) list(c *fiber.Ctx) error {
	ctx := c.UserContext()
	if professorID := c.Query("professor_id"); professorID != "" {
		return utils.SendSuccess(c, "classes retrieved", h.service.ListByProfessor(ctx, professorID))
	}
	return utils.SendSuccess(c, "classes retrieved", h.service.List(ctx))
}

func (h *ClassHandler) get(c *fiber.Ctx) error {
	class, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "class retrieved", class)
}

func (h *ClassHandler) create(c *fiber.Ctx) error {
	principal, err := principalFromContext(c)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	var payload dto.CreateClassRequest
	if err := parseBody(c, &payload); err != nil {
		return writeError(c, h.logger, err)
	}

	class, err := h.service.Create(c.UserContext(), principal, payload)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "class created", class)
}

func (h *ClassHandler) update(c *fiber.Ctx) error {
	principal, err := principalFromContext(c)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	var payload dto.UpdateClassRequest
	if err := parseBody(c, &payload); err != nil {
		return writeError(c, h.logger, err)
	}

	class, err := h.service.Update(c.UserContext(), principal, c.Params("id"), payload)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "class updated", class)
}

func (h *ClassHandler) delete(c *fiber.Ctx) error {
	principal, err := principalFromContext(c)
	if err != nil {
		return writeError(c, h.logger, err)
	}

	removed, err := h.service.Delete(c.UserContext(), principal, c.Params("id"))
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "class deleted", removed)
}

func (h *ClassHandler) roster(c *fiber.Ctx) error {
	principal, err := principalFromContext(c)
	if err != nil {
		return writeError(c, h.logger, err)
	}

	roster, err := h.service.Roster(c.UserContext(), principal, c.Params("id"))
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "roster retrieved", roster)
}

func (h *ClassHandler) report(c *fiber.Ctx) error {
	principal, err := principalFromContext(c)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	classID := c.Params("id")

	// Roster enforces ownership.
	if _, err := h.service.Roster(c.UserContext(), principal, classID); err != nil {
		return writeError(c, h.logger, err)
	}

	report, err := export.BuildClassReport(c.UserContext(), h.store, classID)
	if err != nil {
		return writeError(c, h.logger, err)
	}

	var buf bytes.Buffer
	if _, err := report.WriteTo(&buf); err != nil {
		return writeError(c, h.logger, fmt.Errorf("render report: %w", err))
	}

	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", export.Filename(report.Class)))
	return c.Send(buf.Bytes())
}
