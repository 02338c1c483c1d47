package http

import (
	"parser_server/core/domain"
	"parser_server/infra/middleware"
	"parser_server/pkg/apperr"

	"github.com/gofiber/fiber/v2"
)

// TextRequest is the body of the parse and analyze endpoints.
type TextRequest struct {
	Text string `json:"text"`
}

func parseTextRequest(c *fiber.Ctx) (*TextRequest, error) {
	var req TextRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, apperr.BadRequest("invalid request body")
	}
	return &req, nil
}

// mustSessionID returns the session id set by middleware.SessionAuth.
func mustSessionID(c *fiber.Ctx) (string, error) {
	id := middleware.SessionID(c)
	if id == "" {
		return "", apperr.Unauthorized("missing session")
	}
	return id, nil
}

func sessionFromCtx(c *fiber.Ctx) *domain.Session {
	return middleware.Session(c)
}
