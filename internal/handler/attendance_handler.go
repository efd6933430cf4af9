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

// AttendanceHandler wires attendance HTTP routes.
type AttendanceHandler struct {
	service service.AttendanceService
	logger  zerolog.Logger
}

// NewAttendanceHandler constructs the handler.
func NewAttendanceHandler(service service.AttendanceService, logger zerolog.Logger) *AttendanceHandler {
	return &AttendanceHandler{
		service: service,
		logger:  logger.With().Str("component", "attendance_handler").Logger(),
	}
}

// Register attaches attendance endpoints to an authenticated router.
func (h *AttendanceHandler) Register(router fiber.Router) {
	router.Post("/classes/:id/attendance", middleware.RequireRole(models.UserTypeProfessor), h.record)
	router.Get("/classes/:id/attendance", h.listByClass)
	router.Get("/me/attendance", middleware.RequireRole(models.UserTypeStudent), h.mine)
}

func (h *AttendanceHandler) record(c *fiber.Ctx) error {
	principal, err := principalFromContext(c)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	var payload dto.RecordAttendanceRequest
	if err := parseBody(c, &payload); err != nil {
		return writeError(c, h.logger, err)
	}

	records, err := h.service.Record(c.UserContext(), principal, c.Params("id"), payload)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "attendance recorded", records)
}

func (h *AttendanceHandler) listByClass(c *fiber.Ctx) error {
	principal, err := principalFromContext(c)
	if err != nil {
		return writeError(c, h.logger, err)
	}

	records, err := h.service.ListByClass(c.UserContext(), principal, c.Params("id"), c.Query("date"))
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "attendance retrieved", records)
}

func (h *AttendanceHandler) mine(c *fiber.Ctx) error {
	principal, err := principalFromContext(c)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "attendance retrieved", h.service.ListByStudent(c.UserContext(), principal.ID))
}
