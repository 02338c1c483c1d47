package ai

import (
	"context"
	"testing"
	"time"

	"parser_server/adapter/out/persistence"
	"parser_server/core/domain"
	"parser_server/pkg/apperr"
	"parser_server/pkg/samples"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeTextCommitsResult(t *testing.T) {
	ctx := context.Background()
	store := persistence.NewMemorySessionStore(time.Hour, 10)
	require.NoError(t, store.Create(ctx, &domain.Session{ID: "s1"}))

	a := NewSessionAnalyzer(NewService(nil), store, "")
	res, err := a.AnalyzeText(ctx, "s1", samples.Shipping)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Sequence)
	assert.False(t, res.Superseded)
	assert.Equal(t, domain.PathHeuristic, res.Outcome.Path)

	s, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), s.LastSequence)
	assert.Equal(t, domain.ContextShipping, s.LastResult.Result.ContextualType)
}

func TestOlderCallIsSuperseded(t *testing.T) {
	ctx := context.Background()
	store := persistence.NewMemorySessionStore(time.Hour, 10)
	require.NoError(t, store.Create(ctx, &domain.Session{ID: "s1"}))
	a := NewSessionAnalyzer(NewService(nil), store, "")

	first, err := store.NextSequence(ctx, "s1")
	require.NoError(t, err)
	second, err := store.NextSequence(ctx, "s1")
	require.NoError(t, err)

	newer := &domain.AnalysisOutcome{Result: domain.NewAnalysisResult(), Path: domain.PathStructured}
	older := &domain.AnalysisOutcome{Result: domain.NewAnalysisResult(), Path: domain.PathHeuristic}

	// The newer call finishes first.
	superseded, err := a.Commit(ctx, "s1", second, newer)
	require.NoError(t, err)
	assert.False(t, superseded)

	superseded, err = a.Commit(ctx, "s1", first, older)
	require.NoError(t, err)
	assert.True(t, superseded)

	s, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, second, s.LastSequence)
	assert.Equal(t, domain.PathStructured, s.LastResult.Path)
}

func TestOlderCallFinishingFirstIsSuperseded(t *testing.T) {
	ctx := context.Background()
	store := persistence.NewMemorySessionStore(time.Hour, 10)
	require.NoError(t, store.Create(ctx, &domain.Session{ID: "s1"}))
	a := NewSessionAnalyzer(NewService(nil), store, "")

	first, err := store.NextSequence(ctx, "s1")
	require.NoError(t, err)
	second, err := store.NextSequence(ctx, "s1")
	require.NoError(t, err)

	older := &domain.AnalysisOutcome{Result: domain.NewAnalysisResult(), Path: domain.PathHeuristic}
	newer := &domain.AnalysisOutcome{Result: domain.NewAnalysisResult(), Path: domain.PathStructured}

	// The older call finishes while the newer one is still in flight.
	superseded, err := a.Commit(ctx, "s1", first, older)
	require.NoError(t, err)
	assert.True(t, superseded)

	s, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Zero(t, s.LastSequence)
	assert.Nil(t, s.LastResult)

	superseded, err = a.Commit(ctx, "s1", second, newer)
	require.NoError(t, err)
	assert.False(t, superseded)

	s, err = store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, second, s.LastSequence)
	assert.Equal(t, domain.PathStructured, s.LastResult.Path)
}

func TestAnalyzeTextUnknownSession(t *testing.T) {
	store := persistence.NewMemorySessionStore(time.Hour, 10)
	a := NewSessionAnalyzer(NewService(nil), store, "")

	_, err := a.AnalyzeText(context.Background(), "missing", "text")
	require.Error(t, err)
	assert.Equal(t, apperr.CodeSessionInvalid, apperr.AsAppError(err).Code)
}
