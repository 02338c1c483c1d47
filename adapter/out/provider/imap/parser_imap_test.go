package imap

import (
	"strings"
	"testing"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const multipartMessage = "From: Shop <shop@example.com>\r\n" +
	"Subject: Order shipped\r\n" +
	"MIME-Version: 1.0\r\n" +
	"Content-Type: multipart/alternative; boundary=BOUNDARY\r\n" +
	"\r\n" +
	"--BOUNDARY\r\n" +
	"Content-Type: text/plain; charset=utf-8\r\n" +
	"\r\n" +
	"Your order #123-4567890 has shipped.\r\n" +
	"--BOUNDARY\r\n" +
	"Content-Type: text/html; charset=utf-8\r\n" +
	"\r\n" +
	"<p>Your order has shipped.</p>\r\n" +
	"--BOUNDARY--\r\n"

const htmlOnlyMessage = "From: news@example.com\r\n" +
	"Subject: News\r\n" +
	"MIME-Version: 1.0\r\n" +
	"Content-Type: text/html; charset=utf-8\r\n" +
	"\r\n" +
	"<html><body><h1>Weekly</h1><p>Unsubscribe anytime.</p></body></html>\r\n"

func TestNewProviderValidation(t *testing.T) {
	_, err := NewProvider(Config{}, "user", "pass")
	assert.Error(t, err)

	_, err = NewProvider(Config{Host: "imap.example.com"}, "", "pass")
	assert.Error(t, err)

	p, err := NewProvider(Config{Host: "imap.example.com", TLS: true}, "user", "pass")
	require.NoError(t, err)
	assert.Equal(t, "imap.example.com:993", p.addr)
}

func TestParseMIMEBody(t *testing.T) {
	text, html := parseMIMEBody([]byte(multipartMessage))
	assert.Contains(t, text, "Your order #123-4567890 has shipped.")
	assert.Contains(t, html, "<p>Your order has shipped.</p>")
}

func TestToConnectedEmail(t *testing.T) {
	date := time.Date(2025, 4, 21, 10, 0, 0, 0, time.UTC)
	env := &imap.Envelope{
		Subject: "Order shipped",
		Date:    date,
		From:    []imap.Address{{Name: "Shop", Mailbox: "shop", Host: "example.com"}},
	}

	email := toConnectedEmail(42, env, []imap.Flag{imap.FlagSeen, imap.FlagFlagged}, []byte(multipartMessage))
	assert.Equal(t, "imap-42", email.ID)
	assert.Equal(t, "Order shipped", email.Subject)
	assert.Equal(t, "Shop <shop@example.com>", email.From)
	assert.Equal(t, date.Format(time.RFC1123Z), email.Date)
	assert.True(t, email.Important)
	assert.Contains(t, email.Body, "#123-4567890")
	assert.Equal(t, "Your order #123-4567890 has shipped.", email.Preview)
}

func TestToConnectedEmailHTMLOnly(t *testing.T) {
	email := toConnectedEmail(7, nil, nil, []byte(htmlOnlyMessage))
	assert.Equal(t, defaultSubject, email.Subject)
	assert.Equal(t, defaultSender, email.From)
	assert.False(t, email.Important)
	assert.Contains(t, email.Body, "Unsubscribe anytime.")
	assert.NotContains(t, email.Body, "<p>")
}

func TestPreviewTruncates(t *testing.T) {
	long := strings.Repeat("word ", 60)
	got := preview(long)
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.Len(t, []rune(got), previewLength+3)

	assert.Equal(t, "a b", preview("  a\n\n b "))
}
