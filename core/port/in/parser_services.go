package in

import (
	"context"

	"parser_server/core/domain"
)

type ParseService interface {
	Parse(ctx context.Context, text string) (*domain.ParseResult, error)
}

type AnalysisService interface {
	Analyze(ctx context.Context, text, credential string) *domain.AnalysisOutcome
}

// SessionAnalysisService runs analysis on behalf of a session and applies
// last-call-wins sequencing to the session's committed result.
type SessionAnalysisService interface {
	AnalyzeText(ctx context.Context, sessionID, text string) (*AnalyzeTextResult, error)
}

type AnalyzeTextResult struct {
	Outcome    *domain.AnalysisOutcome `json:"-"`
	Sequence   int64                   `json:"sequence"`
	Superseded bool                    `json:"superseded"`
}

type MailboxService interface {
	FetchRecent(ctx context.Context, sessionID string, count int) ([]*domain.ConnectedEmail, error)
	AnalyzeEmail(ctx context.Context, sessionID, emailID string) (*domain.ConnectedAnalysis, error)
}

type SessionService interface {
	CreateSession(ctx context.Context) (*SessionToken, error)
	ValidateToken(ctx context.Context, token string) (*domain.Session, error)
	Connect(ctx context.Context, sessionID string, req *ConnectRequest) (*ConnectResult, error)
	HandleOAuthCallback(ctx context.Context, code, state string) (*domain.Session, error)
}

type SessionToken struct {
	SessionID string `json:"session_id"`
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
}

type ConnectRequest struct {
	Provider domain.MailProvider `json:"provider"`
	Username string              `json:"username,omitempty"`
	Password string              `json:"password,omitempty"`
}

type ConnectResult struct {
	Provider  domain.MailProvider `json:"provider"`
	Connected bool                `json:"connected"`
	AuthURL   string              `json:"auth_url,omitempty"`
}
