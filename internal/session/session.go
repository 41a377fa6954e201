// internal/session/session.go
//
// A Session binds one player to one Game and fans the game's snapshots out to
// live subscribers (websocket connections).
//
// Characteristics:
//   - The session owns its Game for the whole lifetime; restarts reuse the
//     same cards through Game.ResetGame.
//   - Publishing never blocks the game: each subscriber has a small buffer
//     and keeps only the newest pending events when it falls behind.
//   - Finished rounds are handed to an optional WinFunc.

package session

import (
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/robalobadob/memory-match/internal/game"
)

// Event is pushed to subscribers whenever the game changes.
type Event struct {
	Type     string         `json:"type"` // "state" | "won"
	Snapshot *game.Snapshot `json:"snapshot,omitempty"`
	Moves    int            `json:"moves,omitempty"`
	Pairs    int            `json:"pairs,omitempty"`
	Elapsed  int64          `json:"elapsedMs,omitempty"`
}

// WinFunc receives every finished round of a session.
type WinFunc func(s *Session, w game.Win)

// Options configures a new Session.
type Options struct {
	Player       string
	Daily        string   // date key when dealt from the daily seed
	Images       []string // one per pair
	FlipDuration time.Duration
	Clock        game.Clock
	Rand         *rand.Rand
	OnWin        WinFunc
}

// Session is a single player's game plus its subscribers.
type Session struct {
	ID        string
	Player    string
	Daily     string
	CreatedAt time.Time
	Game      *game.Game

	mu       sync.Mutex
	lastSeen time.Time
	subs     map[*subscriber]struct{}
	closed   bool
}

const subscriberBuffer = 8

type subscriber struct {
	ch chan Event
}

// New creates a session and starts its first round.
func New(opts Options) *Session {
	clock := opts.Clock
	if clock == nil {
		clock = game.SystemClock{}
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	now := clock.Now()
	s := &Session{
		ID:        uuid.NewString(),
		Player:    opts.Player,
		Daily:     opts.Daily,
		CreatedAt: now,
		lastSeen:  now,
		subs:      make(map[*subscriber]struct{}),
	}

	board := game.NewBoard(game.NewDeck(opts.Images), rng)
	s.Game = game.New(board, game.Options{
		FlipDuration: opts.FlipDuration,
		Clock:        clock,
		OnChange: func(snap game.Snapshot) {
			s.publish(Event{Type: "state", Snapshot: &snap})
		},
		OnWin: func(w game.Win) {
			s.publish(Event{Type: "won", Moves: w.Moves, Pairs: w.Pairs, Elapsed: w.Elapsed.Milliseconds()})
			if opts.OnWin != nil {
				opts.OnWin(s, w)
			}
		},
	})
	return s
}

// Subscribe registers a listener. The returned cancel func must be called
// once the listener is done; the channel is closed on cancel or Close.
func (s *Session) Subscribe() (<-chan Event, func()) {
	sub := &subscriber{ch: make(chan Event, subscriberBuffer)}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		close(sub.ch)
		return sub.ch, func() {}
	}
	s.subs[sub] = struct{}{}
	s.mu.Unlock()

	var once sync.Once
	return sub.ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if _, ok := s.subs[sub]; ok {
				delete(s.subs, sub)
				close(sub.ch)
			}
		})
	}
}

// Subscribers is the number of live listeners.
func (s *Session) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

func (s *Session) publish(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for sub := range s.subs {
		for {
			select {
			case sub.ch <- ev:
			default:
				// Full: drop the oldest pending event and retry.
				select {
				case <-sub.ch:
				default:
				}
				continue
			}
			break
		}
	}
}

// Touch records activity for idle sweeping.
func (s *Session) Touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

// LastSeen is the time of the most recent Touch.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Close stops the game and disconnects every subscriber.
func (s *Session) Close() {
	s.Game.Close()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for sub := range s.subs {
		close(sub.ch)
		delete(s.subs, sub)
	}
}
