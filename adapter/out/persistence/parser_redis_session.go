package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"parser_server/core/domain"
	"parser_server/core/port/out"
	"parser_server/pkg/cache"
	"parser_server/pkg/crypto"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

// Redis key prefixes
const (
	SessionKey    = "session:"
	SequenceKey   = "session:seq:"
	OAuthStateKey = "oauth:state:"

	maxUpdateRetries = 5
)

// RedisSessionStore keeps sessions in Redis. Mailbox secrets are sealed with
// enc before they are written.
type RedisSessionStore struct {
	cache *cache.RedisCache
	ttl   time.Duration
	enc   *crypto.Encryptor
}

func NewRedisSessionStore(c *cache.RedisCache, ttl time.Duration, enc *crypto.Encryptor) *RedisSessionStore {
	return &RedisSessionStore{cache: c, ttl: ttl, enc: enc}
}

var _ out.SessionStore = (*RedisSessionStore)(nil)

func (s *RedisSessionStore) Create(ctx context.Context, session *domain.Session) error {
	if session == nil || session.ID == "" {
		return errors.New("session id cannot be empty")
	}
	sealed, err := s.seal(session)
	if err != nil {
		return err
	}
	if err := s.cache.SetJSON(ctx, SessionKey+session.ID, sealed, s.ttl); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	var session domain.Session
	found, err := s.cache.GetJSON(ctx, SessionKey+id, &session)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if !found {
		return nil, out.ErrSessionNotFound
	}
	if err := s.open(&session); err != nil {
		return nil, err
	}
	return &session, nil
}

// Update runs fn inside a WATCH transaction and retries when another writer
// got there first.
func (s *RedisSessionStore) Update(ctx context.Context, id string, fn func(*domain.Session) error) (*domain.Session, error) {
	updated, _, err := s.update(ctx, id, 0, fn)
	return updated, err
}

// UpdateIfLatest also watches the sequence counter, so a NextSequence racing
// with the write aborts and retries the transaction.
func (s *RedisSessionStore) UpdateIfLatest(ctx context.Context, id string, seq int64, fn func(*domain.Session) error) (bool, error) {
	_, applied, err := s.update(ctx, id, seq, fn)
	return applied, err
}

// update applies fn to the stored session. A positive seq makes the write
// conditional on the sequence counter still holding seq.
func (s *RedisSessionStore) update(ctx context.Context, id string, seq int64, fn func(*domain.Session) error) (*domain.Session, bool, error) {
	key := SessionKey + id
	seqKey := SequenceKey + id
	var (
		updated *domain.Session
		applied bool
	)

	txf := func(tx *redis.Tx) error {
		updated, applied = nil, false

		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return out.ErrSessionNotFound
		}
		if err != nil {
			return err
		}

		if seq > 0 {
			current, err := tx.Get(ctx, seqKey).Int64()
			if err != nil && !errors.Is(err, redis.Nil) {
				return err
			}
			if current != seq {
				return nil
			}
		}

		var session domain.Session
		if err := json.Unmarshal(data, &session); err != nil {
			return err
		}
		if err := s.open(&session); err != nil {
			return err
		}
		if err := fn(&session); err != nil {
			return err
		}

		sealed, err := s.seal(&session)
		if err != nil {
			return err
		}
		payload, err := json.Marshal(sealed)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.SetArgs(ctx, key, payload, redis.SetArgs{KeepTTL: true})
			return nil
		})
		if err == nil {
			updated, applied = &session, true
		}
		return err
	}

	keys := []string{key}
	if seq > 0 {
		keys = append(keys, seqKey)
	}
	for i := 0; i < maxUpdateRetries; i++ {
		err := s.cache.Client().Watch(ctx, txf, keys...)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, false, err
		}
		return updated, applied, nil
	}
	return nil, false, fmt.Errorf("session %s: too much contention", id)
}

func (s *RedisSessionStore) NextSequence(ctx context.Context, id string) (int64, error) {
	n, err := s.cache.Client().Exists(ctx, SessionKey+id).Result()
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, out.ErrSessionNotFound
	}
	return s.cache.Increment(ctx, SequenceKey+id, s.ttl)
}

func (s *RedisSessionStore) SaveOAuthState(ctx context.Context, state, sessionID string, ttl time.Duration) error {
	if state == "" {
		return errors.New("state cannot be empty")
	}
	if sessionID == "" {
		return errors.New("session id cannot be empty")
	}
	if err := s.cache.SetJSON(ctx, OAuthStateKey+state, sessionID, ttl); err != nil {
		return fmt.Errorf("failed to store OAuth state: %w", err)
	}
	return nil
}

// ConsumeOAuthState uses GETDEL so a state can be redeemed only once.
func (s *RedisSessionStore) ConsumeOAuthState(ctx context.Context, state string) (string, error) {
	if state == "" {
		return "", out.ErrStateNotFound
	}
	var sessionID string
	found, err := s.cache.GetDelJSON(ctx, OAuthStateKey+state, &sessionID)
	if err != nil {
		return "", fmt.Errorf("failed to validate OAuth state: %w", err)
	}
	if !found {
		return "", out.ErrStateNotFound
	}
	return sessionID, nil
}

// seal returns a copy of session whose secrets are encrypted.
func (s *RedisSessionStore) seal(session *domain.Session) (*domain.Session, error) {
	if s.enc == nil || session.Credentials == nil {
		return session, nil
	}
	cp := *session
	creds := *session.Credentials
	if err := s.enc.EncryptAll(&creds.AccessToken, &creds.RefreshToken, &creds.Password); err != nil {
		return nil, fmt.Errorf("failed to seal credentials: %w", err)
	}
	cp.Credentials = &creds
	return &cp, nil
}

func (s *RedisSessionStore) open(session *domain.Session) error {
	if s.enc == nil || session.Credentials == nil {
		return nil
	}
	c := session.Credentials
	if err := s.enc.DecryptAll(&c.AccessToken, &c.RefreshToken, &c.Password); err != nil {
		return fmt.Errorf("failed to open credentials: %w", err)
	}
	return nil
}
