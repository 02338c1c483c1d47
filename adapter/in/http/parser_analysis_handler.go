package http

import (
	"parser_server/core/domain"
	"parser_server/core/port/in"
	"parser_server/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type AnalysisHandler struct {
	analyzer in.SessionAnalysisService
}

func NewAnalysisHandler(analyzer in.SessionAnalysisService) *AnalysisHandler {
	return &AnalysisHandler{analyzer: analyzer}
}

func (h *AnalysisHandler) Register(router fiber.Router, limiter fiber.Handler) {
	router.Post("/analyze", limiter, h.Analyze)
}

// AnalyzeResponse is the payload of POST /analyze.
type AnalyzeResponse struct {
	Result     *domain.AnalysisResult `json:"result"`
	Path       domain.AnalysisPath    `json:"path"`
	Reason     domain.FallbackReason  `json:"reason,omitempty"`
	Sequence   int64                  `json:"sequence"`
	Superseded bool                   `json:"superseded"`
}

// Analyze handles POST /analyze. It always answers with a result; backend
// trouble only shows in path and reason.
func (h *AnalysisHandler) Analyze(c *fiber.Ctx) error {
	sessionID, err := mustSessionID(c)
	if err != nil {
		return err
	}
	req, err := parseTextRequest(c)
	if err != nil {
		return err
	}

	res, err := h.analyzer.AnalyzeText(c.UserContext(), sessionID, req.Text)
	if err != nil {
		return err
	}

	return response.OKWithNotice(c, &AnalyzeResponse{
		Result:     res.Outcome.Result,
		Path:       res.Outcome.Path,
		Reason:     res.Outcome.Reason,
		Sequence:   res.Sequence,
		Superseded: res.Superseded,
	}, res.Outcome.Notice())
}
