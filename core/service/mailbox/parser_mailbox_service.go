// Package mailbox orchestrates fetching and analyzing messages from a
// session's connected mailbox.
package mailbox

import (
	"context"
	"errors"

	"parser_server/core/domain"
	"parser_server/core/port/in"
	"parser_server/core/port/out"
	"parser_server/pkg/apperr"
	"parser_server/pkg/logger"
)

const DefaultFetchCount = 10

type Service struct {
	sessions     out.SessionStore
	opener       out.MailboxOpener
	parser       in.ParseService
	analyzer     in.SessionAnalysisService
	defaultCount int
	log          *logger.Logger
}

func NewService(
	sessions out.SessionStore,
	opener out.MailboxOpener,
	parser in.ParseService,
	analyzer in.SessionAnalysisService,
	defaultCount int,
) *Service {
	if defaultCount <= 0 {
		defaultCount = DefaultFetchCount
	}
	return &Service{
		sessions:     sessions,
		opener:       opener,
		parser:       parser,
		analyzer:     analyzer,
		defaultCount: defaultCount,
		log:          logger.WithField("component", "mailbox"),
	}
}

// FetchRecent pulls the newest messages from the session's mailbox and keeps
// them on the session. Flags of messages already analyzed survive a refetch.
func (s *Service) FetchRecent(ctx context.Context, sessionID string, count int) ([]*domain.ConnectedEmail, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, sessionError(err)
	}
	if session.Provider() == domain.MailProviderNone {
		return nil, apperr.NoProvider()
	}
	if count <= 0 {
		count = s.defaultCount
	}

	provider := string(session.Provider())
	mb, err := s.opener.Open(ctx, session.Credentials)
	if err != nil {
		return nil, apperr.FetchFailed(provider, err)
	}
	emails, err := mb.FetchRecent(ctx, count)
	if err != nil {
		s.log.WithContext(ctx).WithError(err).Warn("fetch from %s failed", provider)
		return nil, apperr.FetchFailed(provider, err)
	}

	_, err = s.sessions.Update(ctx, sessionID, func(sess *domain.Session) error {
		for _, e := range emails {
			if prev := sess.Email(e.ID); prev != nil {
				e.Analyzed = prev.Analyzed
			}
		}
		sess.Emails = emails
		return nil
	})
	if err != nil {
		return nil, sessionError(err)
	}

	s.log.WithContext(ctx).Debug("fetched %d emails from %s", len(emails), provider)
	return emails, nil
}

// AnalyzeEmail parses and analyzes one fetched message by id. The message is
// flagged analyzing while the call is in flight and analyzed once it ends.
func (s *Service) AnalyzeEmail(ctx context.Context, sessionID, emailID string) (*domain.ConnectedAnalysis, error) {
	var email domain.ConnectedEmail
	_, err := s.sessions.Update(ctx, sessionID, func(sess *domain.Session) error {
		if sess.Provider() == domain.MailProviderNone {
			return apperr.NoProvider()
		}
		e := sess.Email(emailID)
		if e == nil {
			return apperr.NotFound("email")
		}
		e.Analyzing = true
		email = *e
		return nil
	})
	if err != nil {
		return nil, sessionError(err)
	}

	analysis, err := s.analyze(ctx, sessionID, &email)

	final, updErr := s.sessions.Update(ctx, sessionID, func(sess *domain.Session) error {
		if e := sess.Email(emailID); e != nil {
			e.Analyzing = false
			if err == nil {
				e.Analyzed = true
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if updErr != nil {
		return nil, sessionError(updErr)
	}

	if e := final.Email(emailID); e != nil {
		analysis.Email = e
	}
	return analysis, nil
}

func (s *Service) analyze(ctx context.Context, sessionID string, email *domain.ConnectedEmail) (*domain.ConnectedAnalysis, error) {
	parsed, err := s.parser.Parse(ctx, email.Body)
	if err != nil {
		return nil, err
	}

	res, err := s.analyzer.AnalyzeText(ctx, sessionID, email.Body)
	if err != nil {
		return nil, err
	}

	return &domain.ConnectedAnalysis{
		Email:      email,
		Parse:      parsed,
		Analysis:   res.Outcome,
		Sequence:   res.Sequence,
		Superseded: res.Superseded,
	}, nil
}

func sessionError(err error) error {
	if apperr.IsAppError(err) {
		return err
	}
	if errors.Is(err, out.ErrSessionNotFound) {
		return apperr.SessionInvalid(err)
	}
	return apperr.InternalWithError(err)
}
