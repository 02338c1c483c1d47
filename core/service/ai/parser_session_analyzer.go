package ai

import (
	"context"
	"errors"

	"parser_server/core/domain"
	"parser_server/core/port/in"
	"parser_server/core/port/out"
	"parser_server/pkg/apperr"
)

// SessionAnalyzer runs Analyze on behalf of a session. Overlapping calls are
// ordered by a per-session sequence number: only the most recently started
// call replaces the session's last result, older ones come back flagged as
// superseded.
type SessionAnalyzer struct {
	analyzer   *Service
	sessions   out.SessionStore
	credential string
}

func NewSessionAnalyzer(analyzer *Service, sessions out.SessionStore, credential string) *SessionAnalyzer {
	return &SessionAnalyzer{
		analyzer:   analyzer,
		sessions:   sessions,
		credential: credential,
	}
}

// AnalyzeText implements in.SessionAnalysisService.
func (a *SessionAnalyzer) AnalyzeText(ctx context.Context, sessionID, text string) (*in.AnalyzeTextResult, error) {
	seq, err := a.sessions.NextSequence(ctx, sessionID)
	if err != nil {
		return nil, sessionError(err)
	}

	outcome := a.analyzer.Analyze(ctx, text, a.credential)

	superseded, err := a.Commit(ctx, sessionID, seq, outcome)
	if err != nil {
		return nil, err
	}
	return &in.AnalyzeTextResult{
		Outcome:    outcome,
		Sequence:   seq,
		Superseded: superseded,
	}, nil
}

// Commit stores outcome as the session's last result unless a newer call has
// started since seq was taken. It reports whether the outcome was superseded.
func (a *SessionAnalyzer) Commit(ctx context.Context, sessionID string, seq int64, outcome *domain.AnalysisOutcome) (bool, error) {
	applied, err := a.sessions.UpdateIfLatest(ctx, sessionID, seq, func(s *domain.Session) error {
		s.LastSequence = seq
		s.LastResult = outcome
		return nil
	})
	if err != nil {
		return false, sessionError(err)
	}
	return !applied, nil
}

func sessionError(err error) error {
	if errors.Is(err, out.ErrSessionNotFound) {
		return apperr.SessionInvalid(err)
	}
	return apperr.InternalWithError(err)
}
