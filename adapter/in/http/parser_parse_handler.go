package http

import (
	"time"

	"parser_server/core/port/in"
	"parser_server/pkg/apperr"
	"parser_server/pkg/response"
	"parser_server/pkg/samples"

	"github.com/gofiber/fiber/v2"
)

// ParseHandler serves the basic field extraction and the fixture emails.
type ParseHandler struct {
	parser in.ParseService
	delay  time.Duration
}

// NewParseHandler creates the handler. delay is an artificial processing
// latency applied before each parse.
func NewParseHandler(parser in.ParseService, delay time.Duration) *ParseHandler {
	return &ParseHandler{parser: parser, delay: delay}
}

func (h *ParseHandler) Register(router fiber.Router) {
	router.Post("/parse", h.Parse)
	router.Get("/samples", h.ListSamples)
	router.Get("/samples/:name", h.GetSample)
}

// Parse handles POST /parse.
func (h *ParseHandler) Parse(c *fiber.Ctx) error {
	req, err := parseTextRequest(c)
	if err != nil {
		return err
	}

	if h.delay > 0 {
		timer := time.NewTimer(h.delay)
		defer timer.Stop()
		select {
		case <-c.UserContext().Done():
			return apperr.Timeout("parse")
		case <-timer.C:
		}
	}

	result, err := h.parser.Parse(c.UserContext(), req.Text)
	if err != nil {
		return err
	}
	return response.OK(c, result)
}

// ListSamples handles GET /samples.
func (h *ParseHandler) ListSamples(c *fiber.Ctx) error {
	return response.OK(c, samples.All())
}

// GetSample handles GET /samples/:name.
func (h *ParseHandler) GetSample(c *fiber.Ctx) error {
	sample, ok := samples.ByName(c.Params("name"))
	if !ok {
		return apperr.NotFound("sample")
	}
	return response.OK(c, sample)
}
