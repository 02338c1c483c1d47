package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"parser_server/core/domain"
	"parser_server/core/port/in"
	"parser_server/core/port/out"
	"parser_server/pkg/apperr"
	"parser_server/pkg/logger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	DefaultSessionTTL = 24 * time.Hour
	oauthStateTTL     = 10 * time.Minute
	tokenIssuer       = "parser_server"
)

// SessionService issues session tokens and binds mailbox credentials to a
// session instead of to process-wide state.
type SessionService struct {
	sessions out.SessionStore
	gmail    out.MailboxAuthenticator
	secret   []byte
	ttl      time.Duration
	now      func() time.Time
}

// NewSessionService creates the service. gmail may be nil when Google OAuth
// is not configured.
func NewSessionService(sessions out.SessionStore, gmail out.MailboxAuthenticator, secret string, ttl time.Duration) *SessionService {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionService{
		sessions: sessions,
		gmail:    gmail,
		secret:   []byte(secret),
		ttl:      ttl,
		now:      time.Now,
	}
}

// CreateSession starts an empty session and returns its signed token.
func (s *SessionService) CreateSession(ctx context.Context) (*in.SessionToken, error) {
	now := s.now().UTC()
	session := &domain.Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, apperr.InternalWithError(fmt.Errorf("create session: %w", err))
	}

	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Issuer:    tokenIssuer,
		Subject:   session.ID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, apperr.InternalWithError(fmt.Errorf("sign session token: %w", err))
	}

	logger.WithField("session_id", session.ID).Debug("session created")
	return &in.SessionToken{
		SessionID: session.ID,
		Token:     signed,
		ExpiresAt: session.ExpiresAt.Unix(),
	}, nil
}

// ValidateToken verifies a session token and loads its session.
func (s *SessionService) ValidateToken(ctx context.Context, tokenString string) (*domain.Session, error) {
	if tokenString == "" {
		return nil, apperr.Unauthorized("missing session token")
	}

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, apperr.SessionInvalid(err)
	}
	if claims.Subject == "" {
		return nil, apperr.SessionInvalid(errors.New("token has no subject"))
	}

	session, err := s.sessions.Get(ctx, claims.Subject)
	if err != nil {
		return nil, sessionError(err)
	}
	if session.Expired(s.now()) {
		return nil, apperr.SessionInvalid(errors.New("session expired"))
	}
	return session, nil
}

// Connect binds a mailbox provider to the session. Gmail needs a browser
// round trip first, so only an auth URL is returned for it.
func (s *SessionService) Connect(ctx context.Context, sessionID string, req *in.ConnectRequest) (*in.ConnectResult, error) {
	if req == nil || !req.Provider.Valid() {
		return nil, apperr.InvalidInput("provider", "must be one of gmail, imap, mock")
	}

	switch req.Provider {
	case domain.MailProviderGmail:
		if s.gmail == nil {
			return nil, apperr.ConfigError("gmail is not configured")
		}
		state := uuid.NewString()
		if err := s.sessions.SaveOAuthState(ctx, state, sessionID, oauthStateTTL); err != nil {
			return nil, apperr.InternalWithError(err)
		}
		return &in.ConnectResult{
			Provider: req.Provider,
			AuthURL:  s.gmail.GetAuthURL(state),
		}, nil

	case domain.MailProviderIMAP:
		if req.Username == "" {
			return nil, apperr.MissingField("username")
		}
		if req.Password == "" {
			return nil, apperr.MissingField("password")
		}
	}

	creds := &domain.MailboxCredentials{
		Provider: req.Provider,
		Username: req.Username,
		Password: req.Password,
	}
	if err := s.bind(ctx, sessionID, creds); err != nil {
		return nil, err
	}

	logger.WithFields(map[string]any{
		"session_id": sessionID,
		"provider":   req.Provider,
	}).Info("mailbox connected")
	return &in.ConnectResult{Provider: req.Provider, Connected: true}, nil
}

// HandleOAuthCallback completes the Gmail code flow for the session that
// issued state.
func (s *SessionService) HandleOAuthCallback(ctx context.Context, code, state string) (*domain.Session, error) {
	if code == "" {
		return nil, apperr.MissingField("code")
	}
	if state == "" {
		return nil, apperr.MissingField("state")
	}
	if s.gmail == nil {
		return nil, apperr.ConfigError("gmail is not configured")
	}

	sessionID, err := s.sessions.ConsumeOAuthState(ctx, state)
	if err != nil {
		if errors.Is(err, out.ErrStateNotFound) {
			return nil, apperr.BadRequest("invalid or expired oauth state")
		}
		return nil, apperr.InternalWithError(err)
	}

	token, err := s.gmail.ExchangeToken(ctx, code)
	if err != nil {
		return nil, apperr.OAuthFailed(string(domain.MailProviderGmail), err)
	}

	creds := &domain.MailboxCredentials{
		Provider:     domain.MailProviderGmail,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenType:    token.TokenType,
		Expiry:       token.Expiry,
	}
	if err := s.bind(ctx, sessionID, creds); err != nil {
		return nil, err
	}

	logger.WithField("session_id", sessionID).Info("gmail connected")
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, sessionError(err)
	}
	return session, nil
}

// bind replaces the session's credentials. Messages fetched from a previous
// mailbox are dropped.
func (s *SessionService) bind(ctx context.Context, sessionID string, creds *domain.MailboxCredentials) error {
	_, err := s.sessions.Update(ctx, sessionID, func(sess *domain.Session) error {
		sess.Credentials = creds
		sess.Emails = nil
		return nil
	})
	if err != nil {
		return sessionError(err)
	}
	return nil
}

func sessionError(err error) error {
	if errors.Is(err, out.ErrSessionNotFound) {
		return apperr.SessionInvalid(err)
	}
	return apperr.InternalWithError(err)
}
