// Package ai runs the contextual analysis stage: one backend call with a
// structured-output instruction, degrading to text scraping or heuristics.
package ai

import (
	"context"
	"errors"
	"strings"
	"time"

	"parser_server/core/domain"
	"parser_server/core/port/out"
	"parser_server/core/service/heuristic"
	"parser_server/pkg/logger"
	"parser_server/pkg/metrics"
)

// Recovered internally and recorded as the outcome's reason; never returned
// by Analyze.
var (
	ErrNoCredential       = errors.New("no valid AI credential")
	ErrBackendUnavailable = errors.New("AI backend unavailable")
	ErrAnalysisParse      = errors.New("AI response is not a structured object")
)

const DefaultCredentialPrefix = "gsk_"

type Service struct {
	completer        out.Completer
	credentialPrefix string
	metrics          *metrics.AnalysisMetrics
	log              *logger.Logger
}

type Option func(*Service)

func WithCredentialPrefix(prefix string) Option {
	return func(s *Service) { s.credentialPrefix = prefix }
}

func WithMetrics(m *metrics.AnalysisMetrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithLogger(l *logger.Logger) Option {
	return func(s *Service) { s.log = l }
}

func NewService(completer out.Completer, opts ...Option) *Service {
	s := &Service{
		completer:        completer,
		credentialPrefix: DefaultCredentialPrefix,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.WithField("component", "ai")
	}
	return s
}

// ValidCredential reports whether credential has the expected prefix format.
func (s *Service) ValidCredential(credential string) bool {
	c := strings.TrimSpace(credential)
	return c != "" && strings.HasPrefix(c, s.credentialPrefix) && len(c) > len(s.credentialPrefix)
}

// Analyze always returns a valid outcome. Without a usable credential no
// request is made and the heuristic result is returned unchanged.
func (s *Service) Analyze(ctx context.Context, text, credential string) *domain.AnalysisOutcome {
	log := s.log.WithContext(ctx)
	credential = strings.TrimSpace(credential)

	if !s.ValidCredential(credential) || s.completer == nil {
		log.Info("%v, using heuristic analysis", ErrNoCredential)
		return s.finish(&domain.AnalysisOutcome{
			Result: heuristic.Simulate(text),
			Path:   domain.PathHeuristic,
			Reason: domain.ReasonNoCredential,
		})
	}

	start := time.Now()
	reply, err := s.completer.Complete(ctx, credential, SystemPrompt, text)
	if s.metrics != nil {
		s.metrics.RecordBackendLatency(time.Since(start))
	}
	if err != nil {
		log.WithError(err).WithDuration(time.Since(start)).Warn("%v, falling back to heuristic analysis", ErrBackendUnavailable)
		return s.finish(&domain.AnalysisOutcome{
			Result: heuristic.Simulate(text),
			Path:   domain.PathHeuristic,
			Reason: domain.ReasonBackendError,
		})
	}

	result, err := ParseStructured(reply)
	if err != nil {
		log.WithError(err).Warn("falling back to text extraction")
		return s.finish(&domain.AnalysisOutcome{
			Result: ExtractFromText(reply),
			Path:   domain.PathTextFallback,
			Reason: domain.ReasonParseError,
		})
	}

	return s.finish(&domain.AnalysisOutcome{
		Result: result,
		Path:   domain.PathStructured,
	})
}

func (s *Service) finish(o *domain.AnalysisOutcome) *domain.AnalysisOutcome {
	if s.metrics != nil {
		s.metrics.RecordOutcome(string(o.Path), string(o.Reason))
	}
	return o
}
