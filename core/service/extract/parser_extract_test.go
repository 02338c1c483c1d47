package extract

import (
	"context"
	"errors"
	"testing"

	"parser_server/core/domain"
	"parser_server/pkg/apperr"
	"parser_server/pkg/samples"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEmptyInput(t *testing.T) {
	for _, in := range []string{"", "   ", "\n\t "} {
		result, err := Parse(in)
		assert.Nil(t, result)
		require.Error(t, err)
		assert.True(t, errors.Is(err, apperr.ErrEmptyInput), "input %q", in)
	}
}

func TestParseSubjectIsTrimmed(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"plain", "Subject: Hello\n", "Hello"},
		{"padded", "Subject:    Hello world   \nbody", "Hello world"},
		{"crlf", "Subject: Windows\r\nFrom: a@b.co\r\n", "Windows"},
		{"lowercase label", "subject: quiet\n", "quiet"},
		{"last line", "From: a@b.co\nSubject: tail", "tail"},
		{"blank value", "Subject:   \nFrom: a@b.co\n", ""},
		{"label without value", "Subject:\nFrom: a@b.co\n", domain.NotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Parse(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, result.Subject)
		})
	}
}

func TestParseWithoutHeaders(t *testing.T) {
	result, err := Parse("just some words with no structure at all")
	require.NoError(t, err)

	for name, v := range map[string]string{
		"subject":   result.Subject,
		"from":      result.From,
		"to":        result.To,
		"date":      result.Date,
		"cc":        result.Cc,
		"bcc":       result.Bcc,
		"replyTo":   result.ReplyTo,
		"messageId": result.MessageID,
	} {
		assert.Equal(t, domain.NotFound, v, name)
	}
	assert.Equal(t, domain.NoURLsFound, result.URLs)
	assert.Equal(t, domain.NoAddressesFound, result.EmailAddresses)
	assert.Equal(t, domain.EmailTypeGeneral, result.Type)
	assert.Empty(t, result.VerificationCode)
}

func TestTypePrecedence(t *testing.T) {
	tests := []struct {
		text string
		want domain.EmailType
	}{
		{"Your invoice is attached. Click to unsubscribe.", domain.EmailTypeNewsletter},
		{"Payment received, thanks", domain.EmailTypeTransaction},
		{"Please confirm your password", domain.EmailTypeVerification},
		{"Reset your password", domain.EmailTypePasswordReset},
		{"Lunch on friday?", domain.EmailTypeGeneral},
	}
	for _, tt := range tests {
		result, err := Parse(tt.text)
		require.NoError(t, err)
		assert.Equal(t, tt.want, result.Type, tt.text)
	}
}

func TestAddressesDeduplicatedInOrder(t *testing.T) {
	got := Addresses("b@example.com, a@example.com; b@example.com and c@example.org")
	assert.Equal(t, []string{"b@example.com", "a@example.com", "c@example.org"}, got)
}

// Quoted replies are scanned like the rest of the text.
func TestQuotedThreadIsScanned(t *testing.T) {
	text := "From: alice@example.com\nSubject: Re: plan\n\nSounds good.\n\n" +
		"> On Monday bob@example.org wrote:\n> see https://example.org/old-plan\n"

	assert.Equal(t, []string{"alice@example.com", "bob@example.org"}, Addresses(text))
	assert.Equal(t, []string{"https://example.org/old-plan"}, URLs(text))
}

func TestBody(t *testing.T) {
	assert.Equal(t, "the body", Body("Subject: x\n\n  the body  \n"))
	assert.Equal(t, "second", Body("Subject: x\r\n\r\nsecond"))
	assert.Equal(t, "no separator", Body("no separator"))
}

func TestVerificationCode(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"labelled", "Your code: AB12CD", "AB12CD"},
		{"confirmation code", "Your confirmation code 9876 expires soon", "9876"},
		{"code is", "Your security code is: 123456", "123456"},
		{"no trigger", "Use 123456 to log in", ""},
		{"trigger without token", "code: !!", ""},
		{"first match wins", "Your code: ABCDEF\nBackup code: 1234\n", "ABCDEF"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, VerificationCode(tt.text))
		})
	}
}

func TestParseIsIdempotent(t *testing.T) {
	first, err := Parse(samples.Shipping)
	require.NoError(t, err)
	second, err := Parse(samples.Shipping)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestStandardFixture(t *testing.T) {
	result, err := NewExtractor().Parse(context.Background(), samples.Standard)
	require.NoError(t, err)

	assert.Equal(t, "Meeting Tomorrow", result.Subject)
	assert.Equal(t, "john.doe@example.com", result.From)
	assert.Equal(t, "jane.smith@example.com", result.To)
	assert.Equal(t, "Mon, 25 Apr 2025 09:30:00 -0700", result.Date)
	assert.Equal(t, "team@example.com", result.Cc)
	assert.Equal(t, "john.doe@example.com", result.ReplyTo)
	assert.Equal(t, domain.NotFound, result.Bcc)
	assert.Equal(t, domain.NotFound, result.MessageID)
	assert.Contains(t, result.URLs, "https://example.com/projects/123")
	assert.Equal(t, "john.doe@example.com, jane.smith@example.com, team@example.com", result.EmailAddresses)
	assert.Equal(t, domain.EmailTypeGeneral, result.Type)
	assert.True(t, len(result.Body) > 0)
}

func TestSecurityCodeFixture(t *testing.T) {
	result, err := Parse(samples.SecurityCode)
	require.NoError(t, err)

	assert.Equal(t, "123456", result.VerificationCode)
	assert.Contains(t, result.EmailAddresses, "security@facebookmail.com")
	assert.Equal(t, "Facebook Security Code", result.Subject)
}
