package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/turmas-api/internal/models"
	"github.com/noah-isme/turmas-api/internal/service"
	"github.com/noah-isme/turmas-api/internal/utils"
)

const (
	localUserID  = "user_id"
	localRole    = "user_role"
	localSession = "session"
)

// SessionAuth validates the bearer access token and binds it to the stored session.
// A token outlives neither a logout nor a newer login on the device.
func SessionAuth(tokens service.TokenService, auth service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authorization := c.Get("Authorization")
		if authorization == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "authorization header missing")
		}

		const bearer = "Bearer "
		if len(authorization) < len(bearer) || !strings.EqualFold(authorization[:len(bearer)], bearer) {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid authorization header")
		}

		claims, err := tokens.Parse(authorization[len(bearer):])
		if err != nil {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		session, err := auth.Authenticate(c.UserContext(), claims.ID)
		if err != nil {
			if errors.Is(err, service.ErrNotAuthenticated) {
				return utils.SendError(c, fiber.StatusUnauthorized, "session expired or signed out")
			}
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to read session")
		}
		if session.User.ID != claims.Subject {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		c.Locals(localUserID, session.User.ID)
		c.Locals(localRole, string(session.User.Type))
		c.Locals(localSession, session)
		return c.Next()
	}
}

// CurrentPrincipal returns the actor bound by SessionAuth.
func CurrentPrincipal(c *fiber.Ctx) (models.Principal, bool) {
	session, ok := c.Locals(localSession).(models.Session)
	if !ok {
		return models.Principal{}, false
	}
	return session.User.Principal(), true
}

// CurrentSession returns the session bound by SessionAuth.
func CurrentSession(c *fiber.Ctx) (models.Session, bool) {
	session, ok := c.Locals(localSession).(models.Session)
	return session, ok
}
