package middleware

import (
	"strings"

	"parser_server/core/domain"
	"parser_server/core/port/in"
	"parser_server/pkg/apperr"

	"github.com/gofiber/fiber/v2"
)

// Locals keys set by SessionAuth.
const (
	LocalSessionID = "session_id"
	LocalSession   = "session"
)

// SessionAuth resolves the bearer session token to its session. The token may
// also come from the "token" query parameter for browser redirects.
func SessionAuth(sessions in.SessionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Method() == fiber.MethodOptions {
			return c.Next()
		}

		var token string
		if parts := strings.SplitN(c.Get(fiber.HeaderAuthorization), " ", 2); len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			token = strings.TrimSpace(parts[1])
		}
		if token == "" {
			token = c.Query("token")
		}
		if token == "" {
			return apperr.Unauthorized("missing session token")
		}

		session, err := sessions.ValidateToken(c.UserContext(), token)
		if err != nil {
			return err
		}

		c.Locals(LocalSessionID, session.ID)
		c.Locals(LocalSession, session)
		return c.Next()
	}
}

// SessionID returns the authenticated session id, or "".
func SessionID(c *fiber.Ctx) string {
	id, _ := c.Locals(LocalSessionID).(string)
	return id
}

// Session returns the session loaded by SessionAuth, or nil.
func Session(c *fiber.Ctx) *domain.Session {
	s, _ := c.Locals(LocalSession).(*domain.Session)
	return s
}
