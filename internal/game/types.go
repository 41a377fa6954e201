// internal/game/types.go
//
// Core type definitions for the memory game engine.
// Defines:
//   - State: explicit tag for where a round is in its turn cycle.
//   - Snapshot/CardView: read model handed to observers and the HTTP layer.
//   - Win: summary delivered once per completed round.

package game

import "time"

// State represents the turn-cycle position of a game.
// Possible values:
//   - "revealing":   all cards shown face-up for a fixed time after a reset.
//   - "idle":        no unresolved face-up cards.
//   - "one_flipped": one unresolved face-up card.
//   - "resolving":   two unresolved cards, mismatch pending its flip-back.
//   - "won":         every pair matched; terminal until the next reset.
type State string

const (
	StateRevealing  State = "revealing"
	StateIdle       State = "idle"
	StateOneFlipped State = "one_flipped"
	StateResolving  State = "resolving"
	StateWon        State = "won"
)

// Flip-duration bounds and the fixed reveal window after every reset.
const (
	MinFlipDuration     = 350 * time.Millisecond
	MaxFlipDuration     = 3000 * time.Millisecond
	DefaultFlipDuration = 500 * time.Millisecond
	RevealDuration      = 5 * time.Second
)

// CardView is the rendered form of a single card.
// Image is empty while the card is face-down so clients cannot peek.
type CardView struct {
	ID      string `json:"id"`
	Image   string `json:"image,omitempty"`
	Flipped bool   `json:"flipped"`
	Matched bool   `json:"matched"`
}

// Snapshot is a consistent copy of a game's visible state.
type Snapshot struct {
	Version        uint64     `json:"version"` // strictly increasing per game
	State          State      `json:"state"`
	Moves          int        `json:"moves"`
	Columns        int        `json:"columns"`
	Pairs          int        `json:"pairs"`
	MatchedPairs   int        `json:"matchedPairs"`
	FlipDurationMs int64      `json:"flipDurationMs"`
	Cards          []CardView `json:"cards"`
}

// Win summarises a completed round.
type Win struct {
	Moves   int
	Pairs   int
	Elapsed time.Duration // from the end of the reveal to the final match
}

// ClampFlipDuration bounds d to [MinFlipDuration, MaxFlipDuration].
func ClampFlipDuration(d time.Duration) time.Duration {
	if d < MinFlipDuration {
		return MinFlipDuration
	}
	if d > MaxFlipDuration {
		return MaxFlipDuration
	}
	return d
}
