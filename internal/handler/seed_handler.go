package handler

import (
	"crypto/subtle"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/turmas-api/internal/service"
	"github.com/noah-isme/turmas-api/internal/utils"
)

var (
	errSeedDisabled     = errors.New("seeding disabled")
	errSeedUnauthorized = errors.New("invalid seed token")
)

// SeedHandler exposes tooling endpoints for loading demo data.
type SeedHandler struct {
	service service.SeedService
	token   string
	logger  zerolog.Logger
}

// NewSeedHandler constructs a seed handler. An empty token disables every route.
func NewSeedHandler(service service.SeedService, token string, logger zerolog.Logger) *SeedHandler {
	return &SeedHandler{
		service: service,
		token:   token,
		logger:  logger.With().Str("component", "seed_handler").Logger(),
	}
}

// Register wires seed routes.
func (h *SeedHandler) Register(router fiber.Router) {
	router.Post("/seed", h.seed)
	router.Post("/reset", h.reset)
}

func (h *SeedHandler) seed(c *fiber.Ctx) error {
	if err := h.authorize(c); err != nil {
		return h.seedError(c, err)
	}

	report, err := h.service.EnsureSeedData(c.UserContext())
	if err != nil {
		return h.seedError(c, err)
	}
	return utils.SendSuccess(c, "demo users ensured", report)
}

func (h *SeedHandler) reset(c *fiber.Ctx) error {
	if err := h.authorize(c); err != nil {
		return h.seedError(c, err)
	}

	report, err := h.service.ResetDemoData(c.UserContext())
	if err != nil {
		return h.seedError(c, err)
	}
	requestLogger(h.logger, c).Warn().Int("classes", report.Classes).Msg("demo data reset over http")
	return utils.SendSuccess(c, "demo data reset", report)
}

func (h *SeedHandler) authorize(c *fiber.Ctx) error {
	if h.token == "" {
		return errSeedDisabled
	}
	if subtle.ConstantTimeCompare([]byte(c.Get("X-Seed-Token")), []byte(h.token)) != 1 {
		return errSeedUnauthorized
	}
	return nil
}

func (h *SeedHandler) seedError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, errSeedDisabled):
		return utils.SendError(c, fiber.StatusForbidden, "seeding disabled")
	case errors.Is(err, errSeedUnauthorized):
		return utils.SendError(c, fiber.StatusForbidden, "invalid token")
	default:
		return writeError(c, h.logger, err)
	}
}
