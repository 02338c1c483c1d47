// Package gmail provides the Gmail API mailbox adapter.
package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"parser_server/core/domain"
	"parser_server/pkg/httputil"
	"parser_server/pkg/logger"

	"github.com/jaytaylor/html2text"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

const (
	defaultSubject = "No Subject"
	defaultSender  = "Unknown Sender"
	labelImportant = "IMPORTANT"

	// maxConcurrency bounds parallel message fetches to stay under Gmail's
	// per-user rate limit.
	maxConcurrency = 5
)

// Config holds the Google OAuth client settings.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// OAuthConfig returns the read-only Gmail OAuth configuration.
func OAuthConfig(cfg Config) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Scopes:       []string{gmail.GmailReadonlyScope},
		Endpoint:     google.Endpoint,
	}
}

// Authenticator implements out.MailboxAuthenticator for Google accounts.
type Authenticator struct {
	config *oauth2.Config
}

func NewAuthenticator(config *oauth2.Config) *Authenticator {
	return &Authenticator{config: config}
}

// GetAuthURL returns the consent page URL carrying state.
func (a *Authenticator) GetAuthURL(state string) string {
	return a.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// ExchangeToken exchanges an authorization code for a token.
func (a *Authenticator) ExchangeToken(ctx context.Context, code string) (*oauth2.Token, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, httputil.MailboxClient())
	token, err := a.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange token: %w", err)
	}
	return token, nil
}

// Provider implements out.MailboxProvider for Gmail.
type Provider struct {
	service *gmail.Service
}

// NewProvider creates a Gmail provider whose HTTP client refreshes token
// through config.
func NewProvider(ctx context.Context, token *oauth2.Token, config *oauth2.Config) (*Provider, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, httputil.MailboxClient())
	client := config.Client(ctx, token)
	service, err := gmail.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail service: %w", err)
	}
	return &Provider{service: service}, nil
}

// NewProviderWithService wraps an already constructed service.
func NewProviderWithService(service *gmail.Service) *Provider {
	return &Provider{service: service}
}

func (p *Provider) Name() domain.MailProvider {
	return domain.MailProviderGmail
}

// FetchRecent lists the newest count messages and fetches them in parallel.
// Messages that fail to load are skipped; the call only fails when the list
// fails or every message fails.
func (p *Provider) FetchRecent(ctx context.Context, count int) ([]*domain.ConnectedEmail, error) {
	resp, err := p.service.Users.Messages.List("me").
		MaxResults(int64(count)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	if len(resp.Messages) == 0 {
		return []*domain.ConnectedEmail{}, nil
	}

	type result struct {
		index int
		email *domain.ConnectedEmail
		err   error
	}

	results := make(chan result, len(resp.Messages))
	semaphore := make(chan struct{}, maxConcurrency)

	for i, m := range resp.Messages {
		go func(idx int, msgID string) {
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			email, err := p.getMessage(ctx, msgID)
			results <- result{index: idx, email: email, err: err}
		}(i, m.Id)
	}

	emails := make([]*domain.ConnectedEmail, len(resp.Messages))
	var firstErr error
	for range resp.Messages {
		r := <-results
		if r.err != nil {
			if firstErr == nil {
				firstErr = r.err
			}
			logger.WithError(r.err).Warn("gmail: skipping message")
			continue
		}
		emails[r.index] = r.email
	}

	out := make([]*domain.ConnectedEmail, 0, len(emails))
	for _, e := range emails {
		if e != nil {
			out = append(out, e)
		}
	}
	if len(out) == 0 && firstErr != nil {
		return nil, firstErr
	}
	return out, nil
}

func (p *Provider) getMessage(ctx context.Context, id string) (*domain.ConnectedEmail, error) {
	msg, err := p.service.Users.Messages.Get("me", id).
		Format("full").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get message %s: %w", id, err)
	}
	return parseMessage(msg), nil
}

func parseMessage(msg *gmail.Message) *domain.ConnectedEmail {
	email := &domain.ConnectedEmail{
		ID:      msg.Id,
		Subject: defaultSubject,
		From:    defaultSender,
		Preview: msg.Snippet,
	}

	for _, label := range msg.LabelIds {
		if label == labelImportant {
			email.Important = true
		}
	}

	if msg.Payload == nil {
		return email
	}

	for _, header := range msg.Payload.Headers {
		switch header.Name {
		case "Subject":
			if header.Value != "" {
				email.Subject = header.Value
			}
		case "From":
			if header.Value != "" {
				email.From = header.Value
			}
		case "Date":
			email.Date = header.Value
		}
	}

	html, text := parseBody(msg.Payload)
	switch {
	case text != "":
		email.Body = text
	case html != "":
		email.Body = HTMLToText(html)
	}

	return email
}

func parseBody(payload *gmail.MessagePart) (html, text string) {
	if payload == nil {
		return "", ""
	}

	if payload.Body != nil && payload.Body.Data != "" {
		switch payload.MimeType {
		case "text/html":
			html = decodeData(payload.Body.Data)
		case "text/plain":
			text = decodeData(payload.Body.Data)
		}
	}

	for _, part := range payload.Parts {
		h, t := parseBody(part)
		if html == "" && h != "" {
			html = h
		}
		if text == "" && t != "" {
			text = t
		}
	}

	return html, text
}

// decodeData accepts Gmail's base64url body data with or without padding.
func decodeData(data string) string {
	decoded, err := base64.URLEncoding.DecodeString(data)
	if err != nil {
		decoded, err = base64.RawURLEncoding.DecodeString(strings.TrimRight(data, "="))
		if err != nil {
			return ""
		}
	}
	return string(decoded)
}

// HTMLToText renders an HTML body as plain text for the extractors.
func HTMLToText(html string) string {
	text, err := html2text.FromString(html, html2text.Options{OmitLinks: true, TextOnly: true})
	if err != nil {
		return html
	}
	return text
}
