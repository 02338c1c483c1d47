package domain

import "time"

// Session is the explicit per-client context: which mailbox is connected,
// what was fetched from it, and the last committed analysis.
type Session struct {
	ID          string              `json:"id"`
	Credentials *MailboxCredentials `json:"credentials,omitempty"`
	Emails      []*ConnectedEmail   `json:"emails,omitempty"`

	// LastResult is only replaced by the most recently started analysis call.
	LastResult   *AnalysisOutcome `json:"last_result,omitempty"`
	LastSequence int64            `json:"last_sequence"`

	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Provider returns the connected provider, or MailProviderNone.
func (s *Session) Provider() MailProvider {
	if s.Credentials == nil {
		return MailProviderNone
	}
	return s.Credentials.Provider
}

// Email returns the fetched email with the given id.
func (s *Session) Email(id string) *ConnectedEmail {
	for _, e := range s.Emails {
		if e.ID == id {
			return e
		}
	}
	return nil
}

// Expired reports whether the session is past its lifetime.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}
