package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorsIsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("parse: %w", EmptyInput())

	assert.True(t, errors.Is(err, ErrEmptyInput))
	assert.False(t, errors.Is(err, ErrNoProvider))
}

func TestFetchFailedKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := FetchFailed("imap", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, http.StatusBadGateway, err.Status)
	assert.Equal(t, "imap", err.Details["provider"])
	assert.Contains(t, err.Error(), "FETCH_FAILED")
}

func TestAsAppErrorWrapsUnknown(t *testing.T) {
	appErr := AsAppError(errors.New("plain"))

	assert.Equal(t, CodeInternalError, appErr.Code)
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
}

func TestFieldErrorsCarryField(t *testing.T) {
	assert.Equal(t, "provider", InvalidInput("provider", "unsupported").Details["field"])
	assert.Equal(t, "username", MissingField("username").Details["field"])

	cause := errors.New("invalid_grant")
	oauth := OAuthFailed("gmail", cause)
	assert.ErrorIs(t, oauth, cause)
	assert.Equal(t, "gmail", oauth.Details["provider"])
}
