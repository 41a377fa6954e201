// internal/game/engine.go
//
// Game engine for a single memory-match session.
// Responsibilities:
//   - Accept card clicks and guard against ineligible ones (silent no-ops).
//   - Count moves, detect pairs and the win condition.
//   - Run the deferred transitions: mismatch flip-back, win announcement,
//     and the show-all reveal after every reset.
//
// Notes:
//   - All mutation happens under g.mu, which plays the role of an event loop
//     for clicks arriving from HTTP handlers and callbacks arriving from timers.
//   - Every deferred callback remembers the generation it was scheduled in;
//     ResetGame and Close bump the generation and stop pending timers, so a
//     callback from an earlier round never touches the new one.
//   - Observers run after the lock is released and must not assume ordering
//     across goroutines; Snapshot.Version orders deliveries.
package game

import (
	"sync"
	"time"
)

// Options configures a Game. Zero values select defaults.
type Options struct {
	FlipDuration time.Duration  // zero selects DefaultFlipDuration; clamped otherwise
	Clock        Clock          // defaults to SystemClock
	OnChange     func(Snapshot) // called after every visible change
	OnWin        func(Win)      // called once per completed round, before the reset
}

// Game is the turn state machine over a Board.
type Game struct {
	mu sync.Mutex

	board        *Board
	clock        Clock
	flipDuration time.Duration

	state     State
	flipped   []*Card
	matched   map[string]struct{} // card IDs
	moves     int
	startedAt time.Time

	generation uint64
	nextTimer  uint64
	pending    map[uint64]Timer
	closed     bool

	version  uint64
	dirty    bool
	wins     []Win
	onChange func(Snapshot)
	onWin    func(Win)
}

// New wires a game to board, resets the board and starts the initial reveal.
func New(board *Board, opts Options) *Game {
	clock := opts.Clock
	if clock == nil {
		clock = SystemClock{}
	}
	flip := opts.FlipDuration
	if flip == 0 {
		flip = DefaultFlipDuration
	}
	g := &Game{
		board:        board,
		clock:        clock,
		flipDuration: ClampFlipDuration(flip),
		matched:      make(map[string]struct{}),
		pending:      make(map[uint64]Timer),
		onChange:     opts.OnChange,
		onWin:        opts.OnWin,
	}
	board.OnCardClicked(g.handleCardClick)

	g.mu.Lock()
	defer g.unlock()
	board.Reset()
	g.showAllCardsTemporarily()
	return g
}

// Click delivers a click on the card node with the given ID.
// It reports whether the click changed the game; ineligible clicks are ignored.
func (g *Game) Click(cardID string) bool {
	g.mu.Lock()
	defer g.unlock()
	if g.closed {
		return false
	}
	before := g.version
	g.board.Click(cardID)
	return g.version != before
}

// ResetGame starts a fresh round with the same cards in a new order.
func (g *Game) ResetGame() {
	g.mu.Lock()
	defer g.unlock()
	if g.closed {
		return
	}
	g.resetGame()
}

// Close stops all pending timers. A closed game ignores further input.
func (g *Game) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.closed = true
	g.cancelPending()
}

// Snapshot returns the current visible state.
func (g *Game) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshot()
}

// State is the current state tag.
func (g *Game) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Moves is the number of completed two-card flips this round.
func (g *Game) Moves() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.moves
}

// FlipDuration is the effective (clamped) resolution delay.
func (g *Game) FlipDuration() time.Duration { return g.flipDuration }

// handleCardClick is the board's delegated listener. Called with g.mu held.
func (g *Game) handleCardClick(c *Card) {
	if g.state == StateRevealing || g.state == StateWon {
		return
	}
	if len(g.flipped) >= 2 || c.Flipped || g.isMatched(c) {
		return
	}

	c.ToggleFlip()
	g.flipped = append(g.flipped, c)
	g.touch()

	if len(g.flipped) < 2 {
		g.state = StateOneFlipped
		return
	}
	g.moves++
	g.state = StateResolving
	g.checkForMatch()
}

func (g *Game) checkForMatch() {
	c1, c2 := g.flipped[0], g.flipped[1]
	if !c1.Matches(c2) {
		g.after(g.flipDuration, func() {
			c1.ToggleFlip()
			c2.ToggleFlip()
			g.flipped = nil
			g.state = StateIdle
			g.touch()
		})
		return
	}

	g.matched[c1.ID] = struct{}{}
	g.matched[c2.ID] = struct{}{}
	g.flipped = nil
	if len(g.matched) < g.board.Len() {
		g.state = StateIdle
		return
	}

	g.state = StateWon
	win := Win{
		Moves:   g.moves,
		Pairs:   g.board.Len() / 2,
		Elapsed: g.clock.Now().Sub(g.startedAt),
	}
	g.after(g.flipDuration, func() {
		g.wins = append(g.wins, win)
		g.resetGame()
	})
}

func (g *Game) resetGame() {
	g.cancelPending()
	g.flipped = nil
	clear(g.matched)
	g.moves = 0
	g.board.Reset()
	g.showAllCardsTemporarily()
}

// showAllCardsTemporarily flips everything up, then down again after RevealDuration.
func (g *Game) showAllCardsTemporarily() {
	g.board.FlipUpAllCards()
	g.state = StateRevealing
	g.touch()
	g.after(RevealDuration, func() {
		g.board.FlipDownAllCards()
		g.state = StateIdle
		g.startedAt = g.clock.Now()
		g.touch()
	})
}

// after schedules fn under the lock, tied to the current generation.
func (g *Game) after(d time.Duration, fn func()) {
	gen := g.generation
	id := g.nextTimer
	g.nextTimer++
	g.pending[id] = g.clock.AfterFunc(d, func() {
		g.mu.Lock()
		defer g.unlock()
		if g.closed || gen != g.generation {
			return
		}
		delete(g.pending, id)
		fn()
	})
}

// cancelPending invalidates every scheduled callback.
func (g *Game) cancelPending() {
	g.generation++
	for id, t := range g.pending {
		t.Stop()
		delete(g.pending, id)
	}
}

func (g *Game) isMatched(c *Card) bool {
	_, ok := g.matched[c.ID]
	return ok
}

func (g *Game) touch() {
	g.version++
	g.dirty = true
}

func (g *Game) snapshot() Snapshot {
	cards := g.board.Cards()
	views := make([]CardView, len(cards))
	for i, c := range cards {
		v := CardView{ID: c.ID, Flipped: c.Flipped, Matched: g.isMatched(c)}
		if c.Flipped {
			v.Image = c.Image
		}
		views[i] = v
	}
	return Snapshot{
		Version:        g.version,
		State:          g.state,
		Moves:          g.moves,
		Columns:        g.board.Columns(),
		Pairs:          g.board.Len() / 2,
		MatchedPairs:   len(g.matched) / 2,
		FlipDurationMs: g.flipDuration.Milliseconds(),
		Cards:          views,
	}
}

// unlock releases g.mu and then notifies observers of what happened while it was held.
func (g *Game) unlock() {
	var snap *Snapshot
	if g.dirty {
		s := g.snapshot()
		snap = &s
		g.dirty = false
	}
	wins := g.wins
	g.wins = nil
	g.mu.Unlock()

	if g.onWin != nil {
		for _, w := range wins {
			g.onWin(w)
		}
	}
	if snap != nil && g.onChange != nil {
		g.onChange(*snap)
	}
}
