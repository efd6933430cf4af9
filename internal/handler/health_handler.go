package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/turmas-api/internal/config"
	"github.com/noah-isme/turmas-api/internal/utils"
)

const healthProbeTimeout = 2 * time.Second

// HealthResponse represents the payload returned by the health endpoint.
type HealthResponse struct {
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	Service     string    `json:"service"`
	Environment string    `json:"environment"`
	Storage     string    `json:"storage"`
}

// HealthCheck returns a handler that reports application health information.
// probe may be nil, in which case storage is reported as unchecked.
func HealthCheck(cfg config.Config, probe func(context.Context) error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		payload := HealthResponse{
			Status:      "ok",
			Timestamp:   time.Now().UTC(),
			Service:     cfg.AppName,
			Environment: cfg.AppEnv,
			Storage:     "unchecked",
		}

		if probe != nil {
			ctx, cancel := context.WithTimeout(c.UserContext(), healthProbeTimeout)
			defer cancel()

			if err := probe(ctx); err != nil {
				payload.Status = "degraded"
				payload.Storage = "unavailable"
				return utils.Fail(c, fiber.StatusServiceUnavailable, "storage unavailable", payload)
			}
			payload.Storage = "ok"
		}

		return utils.SendSuccess(c, "service healthy", payload)
	}
}
