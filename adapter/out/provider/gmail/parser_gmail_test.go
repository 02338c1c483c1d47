package gmail

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"parser_server/core/domain"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

func encode(s string) string {
	return base64.URLEncoding.EncodeToString([]byte(s))
}

func newTestProvider(t *testing.T, handler http.HandlerFunc) *Provider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	svc, err := gmail.NewService(context.Background(),
		option.WithHTTPClient(srv.Client()),
		option.WithEndpoint(srv.URL+"/"),
	)
	require.NoError(t, err)
	return NewProviderWithService(svc)
}

func TestFetchRecent(t *testing.T) {
	messages := map[string]*gmail.Message{
		"m1": {
			Id:       "m1",
			Snippet:  "Your order has shipped",
			LabelIds: []string{"INBOX", "IMPORTANT"},
			Payload: &gmail.MessagePart{
				MimeType: "multipart/alternative",
				Headers: []*gmail.MessagePartHeader{
					{Name: "Subject", Value: "Shipped"},
					{Name: "From", Value: "Shop <shop@example.com>"},
					{Name: "Date", Value: "Mon, 21 Apr 2025 10:00:00 +0000"},
				},
				Parts: []*gmail.MessagePart{
					{MimeType: "text/html", Body: &gmail.MessagePartBody{Data: encode("<p>ignored</p>")}},
					{MimeType: "text/plain", Body: &gmail.MessagePartBody{Data: encode("tracking number: 1Z999AA10123456789")}},
				},
			},
		},
		"m2": {
			Id:       "m2",
			LabelIds: []string{"INBOX"},
			Payload: &gmail.MessagePart{
				MimeType: "text/html",
				Body:     &gmail.MessagePartBody{Data: encode("<html><body><p>Hello <b>there</b></p></body></html>")},
			},
		},
	}

	var maxResults string
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/users/me/messages"):
			maxResults = r.URL.Query().Get("maxResults")
			_ = json.NewEncoder(w).Encode(&gmail.ListMessagesResponse{
				Messages: []*gmail.Message{{Id: "m1"}, {Id: "m2"}},
			})
		case strings.Contains(r.URL.Path, "/users/me/messages/"):
			id := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
			assert.Equal(t, "full", r.URL.Query().Get("format"))
			_ = json.NewEncoder(w).Encode(messages[id])
		default:
			http.NotFound(w, r)
		}
	})

	emails, err := p.FetchRecent(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, emails, 2)
	assert.Equal(t, "2", maxResults)

	first := emails[0]
	assert.Equal(t, "m1", first.ID)
	assert.Equal(t, "Shipped", first.Subject)
	assert.Equal(t, "Shop <shop@example.com>", first.From)
	assert.Equal(t, "Mon, 21 Apr 2025 10:00:00 +0000", first.Date)
	assert.Equal(t, "Your order has shipped", first.Preview)
	assert.Equal(t, "tracking number: 1Z999AA10123456789", first.Body)
	assert.True(t, first.Important)

	second := emails[1]
	assert.Equal(t, defaultSubject, second.Subject)
	assert.Equal(t, defaultSender, second.From)
	assert.Contains(t, second.Body, "Hello")
	assert.NotContains(t, second.Body, "<p>")
	assert.False(t, second.Important)
}

func TestFetchRecentListFailure(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":401,"message":"invalid credentials"}}`, http.StatusUnauthorized)
	})

	_, err := p.FetchRecent(context.Background(), 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list messages")
}

func TestFetchRecentSkipsFailedMessages(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/users/me/messages"):
			_ = json.NewEncoder(w).Encode(&gmail.ListMessagesResponse{
				Messages: []*gmail.Message{{Id: "ok"}, {Id: "gone"}},
			})
		case strings.HasSuffix(r.URL.Path, "/messages/ok"):
			_ = json.NewEncoder(w).Encode(&gmail.Message{Id: "ok"})
		default:
			http.Error(w, `{"error":{"code":404,"message":"not found"}}`, http.StatusNotFound)
		}
	})

	emails, err := p.FetchRecent(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, emails, 1)
	assert.Equal(t, "ok", emails[0].ID)
}

func TestFetchRecentEmptyMailbox(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	})

	emails, err := p.FetchRecent(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, emails)
}

func TestDecodeDataUnpadded(t *testing.T) {
	raw := base64.RawURLEncoding.EncodeToString([]byte("code: 1234"))
	assert.Equal(t, "code: 1234", decodeData(raw))
	assert.Equal(t, "", decodeData("!!!"))
}

func TestAuthenticatorURL(t *testing.T) {
	a := NewAuthenticator(OAuthConfig(Config{
		ClientID:    "client",
		RedirectURL: "http://localhost/callback",
	}))

	u := a.GetAuthURL("state-123")
	assert.Contains(t, u, "accounts.google.com")
	assert.Contains(t, u, "state=state-123")
	assert.Contains(t, u, "access_type=offline")
	assert.Contains(t, u, "gmail.readonly")
}

func TestParseMessageWithoutPayload(t *testing.T) {
	email := parseMessage(&gmail.Message{Id: "x", Snippet: "hi"})
	assert.Equal(t, &domain.ConnectedEmail{
		ID:      "x",
		Subject: defaultSubject,
		From:    defaultSender,
		Preview: "hi",
	}, email)
}
