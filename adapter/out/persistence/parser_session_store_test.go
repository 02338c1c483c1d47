package persistence

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"parser_server/core/domain"
	"parser_server/core/port/out"
	"parser_server/pkg/cache"
	"parser_server/pkg/crypto"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storeContract runs the SessionStore behaviour every implementation shares.
func storeContract(t *testing.T, store out.SessionStore) {
	ctx := context.Background()

	t.Run("missing session", func(t *testing.T) {
		_, err := store.Get(ctx, uuid.NewString())
		assert.ErrorIs(t, err, out.ErrSessionNotFound)
		_, err = store.NextSequence(ctx, uuid.NewString())
		assert.ErrorIs(t, err, out.ErrSessionNotFound)
	})

	t.Run("round trip keeps credentials", func(t *testing.T) {
		id := uuid.NewString()
		require.NoError(t, store.Create(ctx, &domain.Session{
			ID: id,
			Credentials: &domain.MailboxCredentials{
				Provider: domain.MailProviderIMAP,
				Username: "alice@example.com",
				Password: "app-password",
			},
			CreatedAt: time.Now(),
		}))

		got, err := store.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, domain.MailProviderIMAP, got.Provider())
		assert.Equal(t, "app-password", got.Credentials.Password)
	})

	t.Run("update is isolated from callers", func(t *testing.T) {
		id := uuid.NewString()
		require.NoError(t, store.Create(ctx, &domain.Session{ID: id}))

		updated, err := store.Update(ctx, id, func(s *domain.Session) error {
			s.Emails = []*domain.ConnectedEmail{{ID: "m1", Subject: "hello"}}
			return nil
		})
		require.NoError(t, err)
		updated.Emails[0].Subject = "mutated"

		got, err := store.Get(ctx, id)
		require.NoError(t, err)
		require.Len(t, got.Emails, 1)
		assert.Equal(t, "hello", got.Emails[0].Subject)
	})

	t.Run("update aborts on error", func(t *testing.T) {
		id := uuid.NewString()
		require.NoError(t, store.Create(ctx, &domain.Session{ID: id, LastSequence: 1}))

		boom := errors.New("boom")
		_, err := store.Update(ctx, id, func(s *domain.Session) error {
			s.LastSequence = 99
			return boom
		})
		assert.ErrorIs(t, err, boom)

		got, err := store.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, int64(1), got.LastSequence)
	})

	t.Run("sequence is strictly increasing under concurrency", func(t *testing.T) {
		id := uuid.NewString()
		require.NoError(t, store.Create(ctx, &domain.Session{ID: id}))

		const n = 20
		var wg sync.WaitGroup
		seen := make(chan int64, n)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				seq, err := store.NextSequence(ctx, id)
				assert.NoError(t, err)
				seen <- seq
			}()
		}
		wg.Wait()
		close(seen)

		unique := map[int64]bool{}
		for s := range seen {
			unique[s] = true
		}
		assert.Len(t, unique, n)
		for i := int64(1); i <= n; i++ {
			assert.True(t, unique[i], "missing sequence %d", i)
		}
	})

	t.Run("update if latest only applies to the newest sequence", func(t *testing.T) {
		id := uuid.NewString()
		require.NoError(t, store.Create(ctx, &domain.Session{ID: id}))

		first, err := store.NextSequence(ctx, id)
		require.NoError(t, err)
		second, err := store.NextSequence(ctx, id)
		require.NoError(t, err)

		applied, err := store.UpdateIfLatest(ctx, id, first, func(s *domain.Session) error {
			s.LastSequence = first
			return nil
		})
		require.NoError(t, err)
		assert.False(t, applied)

		applied, err = store.UpdateIfLatest(ctx, id, second, func(s *domain.Session) error {
			s.LastSequence = second
			return nil
		})
		require.NoError(t, err)
		assert.True(t, applied)

		got, err := store.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, second, got.LastSequence)

		_, err = store.UpdateIfLatest(ctx, uuid.NewString(), 1, func(*domain.Session) error { return nil })
		assert.ErrorIs(t, err, out.ErrSessionNotFound)
	})

	t.Run("oauth state is single use", func(t *testing.T) {
		state := uuid.NewString()
		require.NoError(t, store.SaveOAuthState(ctx, state, "sess-1", time.Minute))

		id, err := store.ConsumeOAuthState(ctx, state)
		require.NoError(t, err)
		assert.Equal(t, "sess-1", id)

		_, err = store.ConsumeOAuthState(ctx, state)
		assert.ErrorIs(t, err, out.ErrStateNotFound)
	})
}

func TestMemorySessionStore(t *testing.T) {
	storeContract(t, NewMemorySessionStore(time.Hour, 100))
}

func TestMemorySessionStoreExpiry(t *testing.T) {
	store := NewMemorySessionStore(time.Hour, 100)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, &domain.Session{ID: "old", ExpiresAt: time.Now().Add(-time.Second)}))
	_, err := store.Get(ctx, "old")
	assert.ErrorIs(t, err, out.ErrSessionNotFound)

	require.NoError(t, store.SaveOAuthState(ctx, "s", "old", -time.Second))
	_, err = store.ConsumeOAuthState(ctx, "s")
	assert.ErrorIs(t, err, out.ErrStateNotFound)
}

func TestMemorySessionStoreEvictsLeastRecentlyUsed(t *testing.T) {
	store := NewMemorySessionStore(time.Hour, 2)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, store.Create(ctx, &domain.Session{ID: id}))
	}
	assert.Equal(t, 2, store.Len())
	_, err := store.Get(ctx, "a")
	assert.ErrorIs(t, err, out.ErrSessionNotFound)
}

// REDIS_TEST_URL points at a disposable Redis, e.g. redis://localhost:6379/15.
func TestRedisSessionStore(t *testing.T) {
	url := os.Getenv("REDIS_TEST_URL")
	if url == "" {
		t.Skip("REDIS_TEST_URL not set")
	}
	opts, err := redis.ParseURL(url)
	require.NoError(t, err)
	client := redis.NewClient(opts)
	defer client.Close()

	enc, err := crypto.NewEncryptor([]byte("test-key"))
	require.NoError(t, err)

	store := NewRedisSessionStore(cache.NewRedisCache(client), time.Minute, enc)
	storeContract(t, store)

	t.Run("secrets are sealed at rest", func(t *testing.T) {
		ctx := context.Background()
		id := uuid.NewString()
		require.NoError(t, store.Create(ctx, &domain.Session{
			ID:          id,
			Credentials: &domain.MailboxCredentials{Provider: domain.MailProviderIMAP, Password: "plain"},
		}))
		raw, err := client.Get(ctx, SessionKey+id).Result()
		require.NoError(t, err)
		assert.NotContains(t, raw, "plain")
	})
}
