package domain

import "time"

type MailProvider string

const (
	MailProviderNone  MailProvider = ""
	MailProviderGmail MailProvider = "gmail"
	MailProviderIMAP  MailProvider = "imap"
	MailProviderMock  MailProvider = "mock"
)

// Valid reports whether p names a supported provider.
func (p MailProvider) Valid() bool {
	switch p {
	case MailProviderGmail, MailProviderIMAP, MailProviderMock:
		return true
	}
	return false
}

// ConnectedEmail is a message fetched from a connected mailbox.
type ConnectedEmail struct {
	ID        string `json:"id"`
	Subject   string `json:"subject"`
	From      string `json:"from"`
	Date      string `json:"date"`
	Preview   string `json:"preview"`
	Body      string `json:"body"`
	Important bool   `json:"important"`
	Analyzed  bool   `json:"analyzed"`
	Analyzing bool   `json:"analyzing"`
}

// ConnectedAnalysis is the result of analyzing one connected email.
type ConnectedAnalysis struct {
	Email      *ConnectedEmail  `json:"email"`
	Parse      *ParseResult     `json:"parse"`
	Analysis   *AnalysisOutcome `json:"analysis"`
	Sequence   int64            `json:"sequence"`
	Superseded bool             `json:"superseded"`
}

// MailboxCredentials carries what a provider needs to open a mailbox.
type MailboxCredentials struct {
	Provider MailProvider `json:"provider"`

	// Gmail
	AccessToken  string    `json:"access_token,omitempty"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	TokenType    string    `json:"token_type,omitempty"`
	Expiry       time.Time `json:"expiry,omitempty"`

	// IMAP
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
}
