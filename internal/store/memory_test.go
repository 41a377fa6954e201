package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/memory-match/internal/game"
	"github.com/robalobadob/memory-match/internal/session"
)

func newSession(clock game.Clock) *session.Session {
	return session.New(session.Options{Images: []string{"a.svg", "b.svg"}, Clock: clock})
}

func TestSaveGetDelete(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()
	clock := game.NewManualClock(time.Now())
	s := newSession(clock)

	require.NoError(t, st.Save(ctx, s))
	got, err := st.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Same(t, s, got)
	assert.Equal(t, 1, st.Len())

	require.NoError(t, st.Delete(ctx, s.ID))
	_, err = st.Get(ctx, s.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 0, clock.Pending(), "deleting closes the game")

	assert.NoError(t, st.Delete(ctx, "missing"))
}

func TestSweep(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()
	start := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	clock := game.NewManualClock(start)

	idle := newSession(clock)
	active := newSession(clock)
	watched := newSession(clock)
	for _, s := range []*session.Session{idle, active, watched} {
		require.NoError(t, st.Save(ctx, s))
	}
	active.Touch(start.Add(time.Hour))
	_, cancel := watched.Subscribe()
	defer cancel()

	n := st.Sweep(ctx, start.Add(30*time.Minute))
	assert.Equal(t, 1, n)

	_, err := st.Get(ctx, idle.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = st.Get(ctx, active.ID)
	assert.NoError(t, err)
	_, err = st.Get(ctx, watched.ID)
	assert.NoError(t, err, "sessions with live subscribers are kept")
}
