package game

import (
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	game  *Game
	board *Board
	clock *ManualClock

	mu    sync.Mutex
	snaps []Snapshot
	wins  []Win
}

func newHarness(t *testing.T, images []string, flip time.Duration) *harness {
	t.Helper()
	h := &harness{clock: NewManualClock(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC))}
	h.board = NewBoard(NewDeck(images), rand.New(rand.NewSource(42)))
	h.game = New(h.board, Options{
		FlipDuration: flip,
		Clock:        h.clock,
		OnChange: func(s Snapshot) {
			h.mu.Lock()
			h.snaps = append(h.snaps, s)
			h.mu.Unlock()
		},
		OnWin: func(w Win) {
			h.mu.Lock()
			h.wins = append(h.wins, w)
			h.mu.Unlock()
		},
	})
	t.Cleanup(h.game.Close)
	return h
}

// pairOf returns the IDs of two cards sharing a name, and one that doesn't.
func (h *harness) pick() (a, b, other string) {
	cards := h.board.Cards()
	first := cards[0]
	a = first.ID
	for _, c := range cards[1:] {
		if c.Name == first.Name {
			b = c.ID
		} else if other == "" {
			other = c.ID
		}
	}
	return a, b, other
}

func (h *harness) card(id string) *Card {
	for _, c := range h.board.Cards() {
		if c.ID == id {
			return c
		}
	}
	return nil
}

func (h *harness) skipReveal() {
	h.clock.Advance(RevealDuration)
}

func TestClampFlipDuration(t *testing.T) {
	cases := []struct {
		in, want time.Duration
	}{
		{0, MinFlipDuration},
		{-time.Second, MinFlipDuration},
		{100 * time.Millisecond, MinFlipDuration},
		{349 * time.Millisecond, MinFlipDuration},
		{350 * time.Millisecond, 350 * time.Millisecond},
		{1200 * time.Millisecond, 1200 * time.Millisecond},
		{3000 * time.Millisecond, 3000 * time.Millisecond},
		{3001 * time.Millisecond, MaxFlipDuration},
		{time.Minute, MaxFlipDuration},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ClampFlipDuration(tc.in), "in=%s", tc.in)
	}
}

func TestGameFlipDuration(t *testing.T) {
	assert.Equal(t, DefaultFlipDuration, newHarness(t, testImages, 0).game.FlipDuration(), "unset selects the default")
	assert.Equal(t, MinFlipDuration, newHarness(t, testImages, time.Millisecond).game.FlipDuration())
	assert.Equal(t, MaxFlipDuration, newHarness(t, testImages, time.Hour).game.FlipDuration())
}

func TestNewGameRevealsThenHides(t *testing.T) {
	h := newHarness(t, testImages, 0)

	assert.Equal(t, StateRevealing, h.game.State())
	for _, c := range h.board.Cards() {
		assert.True(t, c.Flipped)
	}
	a, _, _ := h.pick()
	assert.False(t, h.game.Click(a), "clicks during the reveal are ignored")

	h.clock.Advance(RevealDuration - time.Millisecond)
	assert.Equal(t, StateRevealing, h.game.State())

	h.clock.Advance(time.Millisecond)
	assert.Equal(t, StateIdle, h.game.State())
	for _, c := range h.board.Cards() {
		assert.False(t, c.Flipped)
	}
	assert.Equal(t, 0, h.clock.Pending())
}

func TestSameCardTwiceIsNoop(t *testing.T) {
	h := newHarness(t, testImages, 0)
	h.skipReveal()
	a, _, _ := h.pick()

	require.True(t, h.game.Click(a))
	before := h.game.Snapshot()
	assert.False(t, h.game.Click(a))
	after := h.game.Snapshot()

	assert.Equal(t, before, after)
	assert.Equal(t, StateOneFlipped, after.State)
	assert.Equal(t, 0, after.Moves)
}

func TestMatchedPair(t *testing.T) {
	h := newHarness(t, testImages, 0)
	h.skipReveal()
	a, b, _ := h.pick()

	require.True(t, h.game.Click(a))
	require.True(t, h.game.Click(b))

	s := h.game.Snapshot()
	assert.Equal(t, 1, s.Moves)
	assert.Equal(t, 1, s.MatchedPairs)
	assert.Equal(t, StateIdle, s.State)
	assert.True(t, h.card(a).Flipped)
	assert.True(t, h.card(b).Flipped)

	h.clock.Advance(MaxFlipDuration)
	assert.True(t, h.card(a).Flipped, "matched cards stay face-up")
	assert.False(t, h.game.Click(a), "matched cards cannot be flipped again")
}

func TestMismatchFlipsBackAfterDelay(t *testing.T) {
	flip := 800 * time.Millisecond
	h := newHarness(t, testImages, flip)
	h.skipReveal()
	a, _, other := h.pick()

	require.True(t, h.game.Click(a))
	require.True(t, h.game.Click(other))
	assert.Equal(t, StateResolving, h.game.State())
	assert.Equal(t, 1, h.game.Moves())

	h.clock.Advance(flip - time.Millisecond)
	assert.True(t, h.card(a).Flipped)
	assert.True(t, h.card(other).Flipped)

	h.clock.Advance(time.Millisecond)
	assert.False(t, h.card(a).Flipped)
	assert.False(t, h.card(other).Flipped)
	assert.Equal(t, StateIdle, h.game.State())
	assert.Equal(t, 1, h.game.Moves())
}

func TestThirdCardIgnoredWhileResolving(t *testing.T) {
	h := newHarness(t, testImages, 0)
	h.skipReveal()
	a, _, other := h.pick()

	var third string
	for _, c := range h.board.Cards() {
		if c.ID != a && c.ID != other {
			third = c.ID
			break
		}
	}

	require.True(t, h.game.Click(a))
	require.True(t, h.game.Click(other))
	assert.False(t, h.game.Click(third))
	assert.False(t, h.card(third).Flipped)
	assert.Equal(t, 1, h.game.Moves())

	h.clock.Advance(DefaultFlipDuration)
	assert.True(t, h.game.Click(third), "input is accepted again once resolved")
}

func TestUnknownCardIgnored(t *testing.T) {
	h := newHarness(t, testImages, 0)
	h.skipReveal()
	before := h.game.Snapshot()
	assert.False(t, h.game.Click("not-a-card"))
	assert.Equal(t, before, h.game.Snapshot())
}

func TestWinOnSinglePairDeck(t *testing.T) {
	h := newHarness(t, []string{"Go.svg"}, 0)
	h.skipReveal()
	a, b, _ := h.pick()

	require.True(t, h.game.Click(a))
	h.clock.Advance(2 * time.Second)
	require.True(t, h.game.Click(b))
	assert.Equal(t, StateWon, h.game.State())
	assert.Empty(t, h.wins, "the announcement waits for the flip duration")

	h.clock.Advance(DefaultFlipDuration)
	require.Len(t, h.wins, 1)
	assert.Equal(t, 1, h.wins[0].Moves)
	assert.Equal(t, 1, h.wins[0].Pairs)
	assert.Equal(t, 2*time.Second, h.wins[0].Elapsed)

	// A fresh round: counters cleared, cards shown, then hidden.
	s := h.game.Snapshot()
	assert.Equal(t, StateRevealing, s.State)
	assert.Equal(t, 0, s.Moves)
	assert.Equal(t, 0, s.MatchedPairs)

	h.clock.Advance(RevealDuration)
	for _, c := range h.board.Cards() {
		assert.False(t, c.Flipped)
	}
	assert.Equal(t, StateIdle, h.game.State())
	assert.Len(t, h.wins, 1, "win path runs exactly once")
}

func TestFullGameWin(t *testing.T) {
	h := newHarness(t, testImages, 0)
	h.skipReveal()

	byName := map[string][]string{}
	for _, c := range h.board.Cards() {
		byName[c.Name] = append(byName[c.Name], c.ID)
	}
	for _, ids := range byName {
		require.True(t, h.game.Click(ids[0]))
		require.True(t, h.game.Click(ids[1]))
	}
	assert.Equal(t, StateWon, h.game.State())
	h.clock.Advance(DefaultFlipDuration)

	require.Len(t, h.wins, 1)
	assert.Equal(t, len(testImages), h.wins[0].Moves)
	assert.Equal(t, len(testImages), h.wins[0].Pairs)
}

func TestResetInvalidatesPendingMismatch(t *testing.T) {
	h := newHarness(t, testImages, 0)
	h.skipReveal()
	a, _, other := h.pick()

	require.True(t, h.game.Click(a))
	require.True(t, h.game.Click(other))
	h.game.ResetGame()
	assert.Equal(t, StateRevealing, h.game.State())
	assert.Equal(t, 0, h.game.Moves())

	// The stale flip-back would have turned these two face-down mid-reveal.
	h.clock.Advance(DefaultFlipDuration)
	for _, c := range h.board.Cards() {
		assert.True(t, c.Flipped, "card %s", c.ID)
	}
	assert.Equal(t, StateRevealing, h.game.State())

	h.clock.Advance(RevealDuration)
	assert.Equal(t, StateIdle, h.game.State())
	assert.Equal(t, 0, h.clock.Pending())
}

func TestResetDuringRevealRestartsRevealWindow(t *testing.T) {
	h := newHarness(t, testImages, 0)
	h.clock.Advance(3 * time.Second)
	h.game.ResetGame()

	h.clock.Advance(2 * time.Second)
	assert.Equal(t, StateRevealing, h.game.State(), "old reveal timer must not end the new one")
	h.clock.Advance(3 * time.Second)
	assert.Equal(t, StateIdle, h.game.State())
}

func TestCloseStopsTimers(t *testing.T) {
	h := newHarness(t, testImages, 0)
	h.game.Close()
	assert.Equal(t, 0, h.clock.Pending())

	h.clock.Advance(RevealDuration)
	assert.Equal(t, StateRevealing, h.game.State())
	a, _, _ := h.pick()
	assert.False(t, h.game.Click(a))
}

func TestSnapshotHidesFaceDownImages(t *testing.T) {
	h := newHarness(t, testImages, 0)
	s := h.game.Snapshot()
	for _, v := range s.Cards {
		assert.NotEmpty(t, v.Image, "revealed cards carry their image")
	}

	h.skipReveal()
	a, _, _ := h.pick()
	h.game.Click(a)
	s = h.game.Snapshot()
	assert.Equal(t, 3, s.Columns)
	assert.Equal(t, len(testImages), s.Pairs)
	assert.Equal(t, DefaultFlipDuration.Milliseconds(), s.FlipDurationMs)
	for _, v := range s.Cards {
		if v.ID == a {
			assert.Equal(t, h.card(a).Image, v.Image)
			continue
		}
		assert.Empty(t, v.Image)
	}
}

func TestObserversSeeIncreasingVersions(t *testing.T) {
	h := newHarness(t, testImages, 0)
	h.skipReveal()
	a, _, other := h.pick()
	h.game.Click(a)
	h.game.Click(other)
	h.clock.Advance(DefaultFlipDuration)

	h.mu.Lock()
	defer h.mu.Unlock()
	require.NotEmpty(t, h.snaps)
	for i := 1; i < len(h.snaps); i++ {
		assert.Greater(t, h.snaps[i].Version, h.snaps[i-1].Version)
	}
	assert.Equal(t, StateIdle, h.snaps[len(h.snaps)-1].State)
}
