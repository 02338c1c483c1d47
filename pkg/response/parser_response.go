// Package response provides the JSON envelope every API endpoint returns.
package response

import (
	"time"

	"parser_server/pkg/apperr"

	"github.com/gofiber/fiber/v2"
)

// Response is the standard API response structure.
type Response struct {
	Success   bool       `json:"success"`
	Data      any        `json:"data,omitempty"`
	Error     *ErrorInfo `json:"error,omitempty"`
	Notice    string     `json:"notice,omitempty"`
	RequestID string     `json:"request_id,omitempty"`
	Timestamp string     `json:"timestamp"`
}

// ErrorInfo contains error details.
type ErrorInfo struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

func envelope(c *fiber.Ctx) Response {
	requestID, _ := c.Locals("request_id").(string)
	return Response{
		RequestID: requestID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// OK returns a successful response.
func OK(c *fiber.Ctx, data any) error {
	r := envelope(c)
	r.Success = true
	r.Data = data
	return c.JSON(r)
}

// OKWithNotice returns a successful response carrying an informational notice.
func OKWithNotice(c *fiber.Ctx, data any, notice string) error {
	r := envelope(c)
	r.Success = true
	r.Data = data
	r.Notice = notice
	return c.JSON(r)
}

// Created returns a 201 created response.
func Created(c *fiber.Ctx, data any) error {
	r := envelope(c)
	r.Success = true
	r.Data = data
	return c.Status(fiber.StatusCreated).JSON(r)
}

// Error returns an error response.
func Error(c *fiber.Ctx, status int, code, message string) error {
	r := envelope(c)
	r.Error = &ErrorInfo{Code: code, Message: message}
	return c.Status(status).JSON(r)
}

// AppError renders an apperr.AppError (or wraps any other error as internal).
func AppError(c *fiber.Ctx, err error) error {
	appErr := apperr.AsAppError(err)
	r := envelope(c)
	r.Error = &ErrorInfo{Code: appErr.Code, Message: appErr.Message, Details: appErr.Details}
	return c.Status(appErr.Status).JSON(r)
}

// BadRequest returns a 400 bad request response.
func BadRequest(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusBadRequest, apperr.CodeBadRequest, message)
}

// Unauthorized returns a 401 unauthorized response.
func Unauthorized(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusUnauthorized, apperr.CodeUnauthorized, message)
}

// NotFound returns a 404 not found response.
func NotFound(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusNotFound, apperr.CodeNotFound, message)
}

// InternalError returns a 500 internal server error response.
func InternalError(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusInternalServerError, apperr.CodeInternalError, message)
}
