package http

import (
	"parser_server/core/port/in"
	"parser_server/pkg/apperr"
	"parser_server/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// SessionHandler creates sessions and connects mailboxes to them.
type SessionHandler struct {
	sessions in.SessionService
}

func NewSessionHandler(sessions in.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// RegisterPublic registers the routes that run before a session exists.
func (h *SessionHandler) RegisterPublic(router fiber.Router) {
	router.Post("/sessions", h.Create)
	router.Get("/oauth/callback", h.OAuthCallback)
}

// Register registers the session-authenticated routes.
func (h *SessionHandler) Register(router fiber.Router) {
	router.Get("/sessions/me", h.Me)
	router.Post("/mailbox/connect", h.Connect)
}

// Create handles POST /sessions.
func (h *SessionHandler) Create(c *fiber.Ctx) error {
	token, err := h.sessions.CreateSession(c.UserContext())
	if err != nil {
		return err
	}
	return response.Created(c, token)
}

// Me handles GET /sessions/me.
func (h *SessionHandler) Me(c *fiber.Ctx) error {
	sessionID, err := mustSessionID(c)
	if err != nil {
		return err
	}
	session := sessionFromCtx(c)
	if session == nil {
		return apperr.Unauthorized("missing session")
	}
	return response.OK(c, fiber.Map{
		"session_id":  sessionID,
		"provider":    session.Provider(),
		"email_count": len(session.Emails),
		"expires_at":  session.ExpiresAt.Unix(),
	})
}

// Connect handles POST /mailbox/connect.
func (h *SessionHandler) Connect(c *fiber.Ctx) error {
	sessionID, err := mustSessionID(c)
	if err != nil {
		return err
	}

	var req in.ConnectRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.BadRequest("invalid request body")
	}

	result, err := h.sessions.Connect(c.UserContext(), sessionID, &req)
	if err != nil {
		return err
	}
	return response.OK(c, result)
}

// OAuthCallback handles GET /oauth/callback?code=&state=, the redirect target
// of the Google consent page.
func (h *SessionHandler) OAuthCallback(c *fiber.Ctx) error {
	if oauthErr := c.Query("error"); oauthErr != "" {
		return apperr.BadRequest("authorization denied: " + oauthErr)
	}

	session, err := h.sessions.HandleOAuthCallback(c.UserContext(), c.Query("code"), c.Query("state"))
	if err != nil {
		return err
	}
	return response.OK(c, &in.ConnectResult{
		Provider:  session.Provider(),
		Connected: true,
	})
}
