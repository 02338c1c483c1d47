package provider

import (
	"context"
	"errors"
	"testing"

	"parser_server/adapter/out/provider/gmail"
	"parser_server/adapter/out/provider/imap"
	"parser_server/core/domain"
	"parser_server/pkg/resilience"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenMock(t *testing.T) {
	f := NewFactory(&FactoryConfig{})

	p, err := f.Open(context.Background(), &domain.MailboxCredentials{Provider: domain.MailProviderMock})
	require.NoError(t, err)
	assert.Equal(t, domain.MailProviderMock, p.Name())

	emails, err := p.FetchRecent(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, emails, 2)
}

func TestOpenErrors(t *testing.T) {
	f := NewFactory(&FactoryConfig{})
	ctx := context.Background()

	_, err := f.Open(ctx, nil)
	assert.Error(t, err)

	_, err = f.Open(ctx, &domain.MailboxCredentials{Provider: "outlook"})
	assert.Error(t, err)

	_, err = f.Open(ctx, &domain.MailboxCredentials{Provider: domain.MailProviderGmail, AccessToken: "t"})
	assert.Error(t, err, "gmail not configured")

	_, err = f.Open(ctx, &domain.MailboxCredentials{Provider: domain.MailProviderIMAP, Username: "u", Password: "p"})
	assert.Error(t, err, "imap host not configured")
}

func TestOpenIMAPIsGuarded(t *testing.T) {
	f := NewFactory(&FactoryConfig{IMAP: imap.Config{Host: "imap.example.com", Port: 993, TLS: true}})

	p, err := f.Open(context.Background(), &domain.MailboxCredentials{
		Provider: domain.MailProviderIMAP,
		Username: "u",
		Password: "p",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.MailProviderIMAP, p.Name())
	_, ok := p.(*guardedProvider)
	assert.True(t, ok)
}

func TestAuthenticator(t *testing.T) {
	assert.Nil(t, NewFactory(&FactoryConfig{}).Authenticator())

	f := NewFactory(&FactoryConfig{Gmail: &gmail.Config{ClientID: "id", RedirectURL: "http://localhost/cb"}})
	auth := f.Authenticator()
	require.NotNil(t, auth)
	assert.Contains(t, auth.GetAuthURL("s"), "state=s")
}

type failingProvider struct{ calls int }

func (f *failingProvider) Name() domain.MailProvider { return domain.MailProviderIMAP }

func (f *failingProvider) FetchRecent(context.Context, int) ([]*domain.ConnectedEmail, error) {
	f.calls++
	return nil, errors.New("connection refused")
}

func TestGuardedProviderOpensCircuit(t *testing.T) {
	inner := &failingProvider{}
	cfg := resilience.DefaultCircuitBreakerConfig("test")
	cfg.FailureThreshold = 2
	g := &guardedProvider{MailboxProvider: inner, breaker: resilience.NewCircuitBreaker(cfg)}

	for i := 0; i < 2; i++ {
		_, err := g.FetchRecent(context.Background(), 1)
		require.Error(t, err)
	}

	_, err := g.FetchRecent(context.Background(), 1)
	assert.True(t, resilience.IsRejected(err))
	assert.Equal(t, 2, inner.calls)
	assert.Len(t, NewFactory(&FactoryConfig{}).Stats(), 2)
}
