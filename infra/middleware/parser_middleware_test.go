package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"parser_server/core/domain"
	"parser_server/core/port/in"
	"parser_server/pkg/apperr"
	"parser_server/pkg/response"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSessions struct {
	in.SessionService
	token string
}

func (s *stubSessions) ValidateToken(_ context.Context, token string) (*domain.Session, error) {
	if token != s.token {
		return nil, apperr.SessionInvalid(errors.New("unknown token"))
	}
	return &domain.Session{ID: "sess-1"}, nil
}

func newTestApp() *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler()})
	app.Use(Recover(), RequestID(), SecurityHeaders(), RequestLogger())
	return app
}

func errorCode(t *testing.T, resp *http.Response) string {
	t.Helper()
	var body response.Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.NotNil(t, body.Error)
	return body.Error.Code
}

func TestErrorHandlerRendersAppError(t *testing.T) {
	app := newTestApp()
	app.Get("/boom", func(c *fiber.Ctx) error {
		return apperr.EmptyInput()
	})
	app.Get("/fiber", func(c *fiber.Ctx) error {
		return fiber.ErrNotFound
	})
	app.Get("/plain", func(c *fiber.Ctx) error {
		return errors.New("plain")
	})

	tests := []struct {
		path   string
		status int
		code   string
	}{
		{"/boom", http.StatusBadRequest, apperr.CodeEmptyInput},
		{"/fiber", http.StatusNotFound, apperr.CodeNotFound},
		{"/plain", http.StatusInternalServerError, apperr.CodeInternalError},
	}
	for _, tt := range tests {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, tt.path, nil), -1)
		require.NoError(t, err)
		assert.Equal(t, tt.status, resp.StatusCode, tt.path)
		assert.Equal(t, tt.code, errorCode(t, resp), tt.path)
		resp.Body.Close()
	}
}

func TestRequestIDAndSecurityHeaders(t *testing.T) {
	app := newTestApp()
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString("ok") })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-42")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "req-42", resp.Header.Get("X-Request-ID"))
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", resp.Header.Get("X-Frame-Options"))

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestRecover(t *testing.T) {
	app := newTestApp()
	app.Get("/panic", func(c *fiber.Ctx) error { panic("kaboom") })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/panic", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestSessionAuth(t *testing.T) {
	app := newTestApp()
	app.Get("/me", SessionAuth(&stubSessions{token: "good"}), func(c *fiber.Ctx) error {
		return c.SendString(SessionID(c))
	})

	tests := []struct {
		name   string
		header string
		query  string
		status int
	}{
		{"bearer", "Bearer good", "", http.StatusOK},
		{"query", "", "good", http.StatusOK},
		{"missing", "", "", http.StatusUnauthorized},
		{"wrong", "Bearer bad", "", http.StatusUnauthorized},
		{"not bearer", "Basic good", "", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := "/me"
			if tt.query != "" {
				target += "?token=" + tt.query
			}
			req := httptest.NewRequest(http.MethodGet, target, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestAnalyzeLimiter(t *testing.T) {
	app := newTestApp()
	app.Post("/analyze", AnalyzeLimiter(1, time.Minute), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/analyze", nil), -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodPost, "/analyze", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Retry-After"))
	assert.Equal(t, apperr.CodeRateLimited, errorCode(t, resp))
}
