// Package provider implements mailbox provider adapters and factory.
package provider

import (
	"context"
	"fmt"
	"time"

	"parser_server/adapter/out/provider/gmail"
	"parser_server/adapter/out/provider/imap"
	"parser_server/adapter/out/provider/mock"
	"parser_server/core/domain"
	"parser_server/core/port/out"
	"parser_server/pkg/resilience"

	"golang.org/x/oauth2"
)

// =============================================================================
// Provider Factory
// =============================================================================

// FactoryConfig holds all provider configurations.
type FactoryConfig struct {
	Gmail     *gmail.Config // nil disables Gmail
	IMAP      imap.Config
	MockDelay time.Duration
}

// Factory opens mailbox providers from session credentials.
type Factory struct {
	gmailConfig *oauth2.Config
	imapConfig  imap.Config
	mockDelay   time.Duration
	breakers    map[domain.MailProvider]*resilience.CircuitBreaker
}

// NewFactory creates a new provider factory.
func NewFactory(cfg *FactoryConfig) *Factory {
	f := &Factory{
		imapConfig: cfg.IMAP,
		mockDelay:  cfg.MockDelay,
		breakers:   make(map[domain.MailProvider]*resilience.CircuitBreaker),
	}
	if cfg.Gmail != nil {
		f.gmailConfig = gmail.OAuthConfig(*cfg.Gmail)
	}
	for _, p := range []domain.MailProvider{domain.MailProviderGmail, domain.MailProviderIMAP} {
		f.breakers[p] = resilience.NewCircuitBreaker(resilience.DefaultCircuitBreakerConfig("mailbox-" + string(p)))
	}
	return f
}

// Authenticator returns the Gmail OAuth handler, or nil when Gmail is not
// configured.
func (f *Factory) Authenticator() out.MailboxAuthenticator {
	if f.gmailConfig == nil {
		return nil
	}
	return gmail.NewAuthenticator(f.gmailConfig)
}

// Open builds the provider named by creds.
func (f *Factory) Open(ctx context.Context, creds *domain.MailboxCredentials) (out.MailboxProvider, error) {
	if creds == nil {
		return nil, fmt.Errorf("no mailbox credentials")
	}

	var (
		p   out.MailboxProvider
		err error
	)
	switch creds.Provider {
	case domain.MailProviderMock:
		return mock.NewProvider(f.mockDelay), nil
	case domain.MailProviderGmail:
		p, err = f.openGmail(ctx, creds)
	case domain.MailProviderIMAP:
		p, err = imap.NewProvider(f.imapConfig, creds.Username, creds.Password)
	default:
		return nil, fmt.Errorf("unsupported provider type: %s", creds.Provider)
	}
	if err != nil {
		return nil, err
	}
	return &guardedProvider{MailboxProvider: p, breaker: f.breakers[creds.Provider]}, nil
}

func (f *Factory) openGmail(ctx context.Context, creds *domain.MailboxCredentials) (out.MailboxProvider, error) {
	if f.gmailConfig == nil {
		return nil, fmt.Errorf("gmail is not configured")
	}
	if creds.AccessToken == "" {
		return nil, fmt.Errorf("gmail access token missing")
	}
	token := &oauth2.Token{
		AccessToken:  creds.AccessToken,
		RefreshToken: creds.RefreshToken,
		TokenType:    creds.TokenType,
		Expiry:       creds.Expiry,
	}
	return gmail.NewProvider(ctx, token, f.gmailConfig)
}

// Stats returns breaker snapshots for health output.
func (f *Factory) Stats() []resilience.CircuitBreakerStats {
	stats := make([]resilience.CircuitBreakerStats, 0, len(f.breakers))
	for _, p := range []domain.MailProvider{domain.MailProviderGmail, domain.MailProviderIMAP} {
		stats = append(stats, f.breakers[p].Stats())
	}
	return stats
}

// guardedProvider stops hammering a mailbox backend that keeps failing.
type guardedProvider struct {
	out.MailboxProvider
	breaker *resilience.CircuitBreaker
}

func (g *guardedProvider) FetchRecent(ctx context.Context, count int) ([]*domain.ConnectedEmail, error) {
	var emails []*domain.ConnectedEmail
	err := g.breaker.Execute(func() error {
		var err error
		emails, err = g.MailboxProvider.FetchRecent(ctx, count)
		return err
	})
	if err != nil {
		return nil, err
	}
	return emails, nil
}
