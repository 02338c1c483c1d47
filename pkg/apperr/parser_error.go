package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes
const (
	// Session errors
	CodeUnauthorized   = "UNAUTHORIZED"
	CodeSessionInvalid = "SESSION_INVALID"

	// Validation errors
	CodeBadRequest   = "BAD_REQUEST"
	CodeEmptyInput   = "EMPTY_INPUT"
	CodeInvalidInput = "INVALID_INPUT"
	CodeMissingField = "MISSING_FIELD"

	// Resource errors
	CodeNotFound   = "NOT_FOUND"
	CodeNoProvider = "NO_PROVIDER"

	// External errors
	CodeOAuthFailed = "OAUTH_FAILED"
	CodeFetchFailed = "FETCH_FAILED"

	// Internal errors
	CodeInternalError = "INTERNAL_ERROR"
	CodeConfigError   = "CONFIG_ERROR"
	CodeTimeout       = "TIMEOUT"
	CodeRateLimited   = "RATE_LIMITED"
)

// AppError represents a structured application error
type AppError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Status  int            `json:"-"`
	Details map[string]any `json:"details,omitempty"`
	Err     error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches on code so sentinel instances work with errors.Is.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// Constructor functions
func New(code, message string, status int) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Status:  status,
	}
}

func Wrap(err error, code, message string, status int) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

// Session errors
func Unauthorized(message string) *AppError {
	if message == "" {
		message = "unauthorized"
	}
	return &AppError{
		Code:    CodeUnauthorized,
		Message: message,
		Status:  http.StatusUnauthorized,
	}
}

func SessionInvalid(err error) *AppError {
	return &AppError{
		Code:    CodeSessionInvalid,
		Message: "session is missing, expired or invalid",
		Status:  http.StatusUnauthorized,
		Err:     err,
	}
}

// Validation errors
func BadRequest(message string) *AppError {
	return &AppError{
		Code:    CodeBadRequest,
		Message: message,
		Status:  http.StatusBadRequest,
	}
}

// EmptyInput is reported when the text to parse is empty or whitespace only.
func EmptyInput() *AppError {
	return &AppError{
		Code:    CodeEmptyInput,
		Message: "please enter or upload an email to parse",
		Status:  http.StatusBadRequest,
	}
}

func InvalidInput(field, reason string) *AppError {
	return New(CodeInvalidInput, fmt.Sprintf("invalid input for '%s': %s", field, reason), http.StatusBadRequest).
		WithDetail("field", field)
}

func MissingField(field string) *AppError {
	return New(CodeMissingField, fmt.Sprintf("missing required field: %s", field), http.StatusBadRequest).
		WithDetail("field", field)
}

// Resource errors
func NotFound(resource string) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Status:  http.StatusNotFound,
	}
}

func NoProvider() *AppError {
	return &AppError{
		Code:    CodeNoProvider,
		Message: "no email provider connected, connect to an email provider first",
		Status:  http.StatusConflict,
	}
}

// External errors
func OAuthFailed(provider string, err error) *AppError {
	return Wrap(err, CodeOAuthFailed, fmt.Sprintf("OAuth failed for %s", provider), http.StatusBadGateway).
		WithDetail("provider", provider)
}

// FetchFailed wraps a mailbox provider error. It is surfaced to the caller.
func FetchFailed(provider string, err error) *AppError {
	return Wrap(err, CodeFetchFailed, fmt.Sprintf("failed to fetch emails from %s", provider), http.StatusBadGateway).
		WithDetail("provider", provider)
}

// Internal errors
func InternalWithError(err error) *AppError {
	return Wrap(err, CodeInternalError, "internal server error", http.StatusInternalServerError)
}

func ConfigError(message string) *AppError {
	return &AppError{
		Code:    CodeConfigError,
		Message: message,
		Status:  http.StatusInternalServerError,
	}
}

func Timeout(operation string) *AppError {
	return &AppError{
		Code:    CodeTimeout,
		Message: fmt.Sprintf("operation timed out: %s", operation),
		Status:  http.StatusGatewayTimeout,
	}
}

// Common error instances
var (
	ErrEmptyInput  = EmptyInput()
	ErrNoProvider  = NoProvider()
	ErrRateLimited = New(CodeRateLimited, "too many requests", http.StatusTooManyRequests)
)

// Helper functions
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return InternalWithError(err)
}
