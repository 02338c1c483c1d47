package out

import (
	"context"

	"parser_server/core/domain"

	"golang.org/x/oauth2"
)

// =============================================================================
// Mailbox Provider Port (Gmail, IMAP, Mock)
// =============================================================================

// MailboxProvider fetches recent messages from one opened mailbox.
type MailboxProvider interface {
	Name() domain.MailProvider
	FetchRecent(ctx context.Context, count int) ([]*domain.ConnectedEmail, error)
}

// MailboxOpener builds a MailboxProvider for a session's credentials.
type MailboxOpener interface {
	Open(ctx context.Context, creds *domain.MailboxCredentials) (MailboxProvider, error)
}

// MailboxAuthenticator handles the OAuth code flow for providers that need it.
type MailboxAuthenticator interface {
	GetAuthURL(state string) string
	ExchangeToken(ctx context.Context, code string) (*oauth2.Token, error)
}
