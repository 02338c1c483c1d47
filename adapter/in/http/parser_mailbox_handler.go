package http

import (
	"parser_server/core/port/in"
	"parser_server/pkg/response"

	"github.com/gofiber/fiber/v2"
)

const maxFetchCount = 50

type MailboxHandler struct {
	mailbox in.MailboxService
}

func NewMailboxHandler(mailbox in.MailboxService) *MailboxHandler {
	return &MailboxHandler{mailbox: mailbox}
}

func (h *MailboxHandler) Register(router fiber.Router, limiter fiber.Handler) {
	mb := router.Group("/mailbox")
	mb.Get("/emails", h.List)
	mb.Post("/emails/:id/analyze", limiter, h.Analyze)
}

// List handles GET /mailbox/emails?count=.
func (h *MailboxHandler) List(c *fiber.Ctx) error {
	sessionID, err := mustSessionID(c)
	if err != nil {
		return err
	}

	count := c.QueryInt("count", 0)
	if count > maxFetchCount {
		count = maxFetchCount
	}

	emails, err := h.mailbox.FetchRecent(c.UserContext(), sessionID, count)
	if err != nil {
		return err
	}
	return response.OK(c, fiber.Map{
		"emails": emails,
		"count":  len(emails),
	})
}

// Analyze handles POST /mailbox/emails/:id/analyze.
func (h *MailboxHandler) Analyze(c *fiber.Ctx) error {
	sessionID, err := mustSessionID(c)
	if err != nil {
		return err
	}

	res, err := h.mailbox.AnalyzeEmail(c.UserContext(), sessionID, c.Params("id"))
	if err != nil {
		return err
	}
	return response.OKWithNotice(c, res, res.Analysis.Notice())
}
