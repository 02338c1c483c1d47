package middleware

import (
	"strconv"
	"time"

	"parser_server/pkg/apperr"
	"parser_server/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// AnalyzeLimiter caps analysis calls per session (per IP before a session
// exists). Every analysis may hit the paid completion backend.
func AnalyzeLimiter(limit int, window time.Duration) fiber.Handler {
	if limit <= 0 {
		limit = 30
	}
	if window <= 0 {
		window = time.Minute
	}
	return limiter.New(limiter.Config{
		Max:        limit,
		Expiration: window,
		KeyGenerator: func(c *fiber.Ctx) string {
			if id := SessionID(c); id != "" {
				return "session:" + id
			}
			return "ip:" + c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(window.Seconds())))
			return response.AppError(c, apperr.ErrRateLimited)
		},
	})
}
