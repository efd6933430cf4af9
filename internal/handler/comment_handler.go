package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/turmas-api/internal/dto"
	"github.com/noah-isme/turmas-api/internal/service"
	"github.com/noah-isme/turmas-api/internal/utils"
)

// CommentHandler wires class comment routes.
type CommentHandler struct {
	service service.CommentService
	logger  zerolog.Logger
}

// NewCommentHandler constructs the handler.
func NewCommentHandler(service service.CommentService, logger zerolog.Logger) *CommentHandler {
	return &CommentHandler{
		service: service,
		logger:  logger.With().Str("component", "comment_handler").Logger(),
	}
}

// Register attaches comment endpoints to an authenticated router.
func (h *CommentHandler) Register(router fiber.Router) {
	router.Post("/classes/:id/comments", h.create)
	router.Get("/classes/:id/comments", h.list)
}

func (h *CommentHandler) create(c *fiber.Ctx) error {
	principal, err := principalFromContext(c)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	var payload dto.CreateCommentRequest
	if err := parseBody(c, &payload); err != nil {
		return writeError(c, h.logger, err)
	}

	comment, err := h.service.Create(c.UserContext(), principal, c.Params("id"), payload)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "comment posted", comment)
}

func (h *CommentHandler) list(c *fiber.Ctx) error {
	principal, err := principalFromContext(c)
	if err != nil {
		return writeError(c, h.logger, err)
	}

	comments, err := h.service.ListByClass(c.UserContext(), principal, c.Params("id"))
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "comments retrieved", comments)
}
