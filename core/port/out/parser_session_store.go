package out

import (
	"context"
	"errors"
	"time"

	"parser_server/core/domain"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrStateNotFound   = errors.New("oauth state not found or expired")
)

// SessionStore keeps explicit session objects.
type SessionStore interface {
	Create(ctx context.Context, session *domain.Session) error
	Get(ctx context.Context, id string) (*domain.Session, error)

	// Update applies fn to the stored session atomically and persists the
	// result. Returning an error from fn aborts the write.
	Update(ctx context.Context, id string, fn func(*domain.Session) error) (*domain.Session, error)

	// NextSequence returns a per-session, strictly increasing call number.
	NextSequence(ctx context.Context, id string) (int64, error)

	// UpdateIfLatest applies fn like Update, but only while seq is still the
	// newest number NextSequence has handed out. It reports whether fn ran.
	UpdateIfLatest(ctx context.Context, id string, seq int64, fn func(*domain.Session) error) (bool, error)

	SaveOAuthState(ctx context.Context, state, sessionID string, ttl time.Duration) error
	// ConsumeOAuthState returns the session bound to state and deletes it.
	ConsumeOAuthState(ctx context.Context, state string) (string, error)
}
