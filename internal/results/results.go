// internal/results/results.go
//
// Leaderboard of finished rounds.
// Only the outcome of a round is recorded (player, pairs, moves, time);
// game and session state are never stored.
//
// Ranking: fewest moves first, then fastest, then earliest finish.

package results

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Result is one finished round.
type Result struct {
	SessionID  string    `json:"-"`
	Player     string    `json:"player"`
	Pairs      int       `json:"pairs"`
	Moves      int       `json:"moves"`
	ElapsedMs  int64     `json:"elapsedMs"`
	FinishedAt time.Time `json:"finishedAt"`
	Daily      string    `json:"daily,omitempty"` // YYYY-MM-DD for a daily deal
}

// Filter narrows a leaderboard. Zero values match everything.
type Filter struct {
	Pairs int
	Daily string
}

func (f Filter) match(r Result) bool {
	if f.Pairs > 0 && r.Pairs != f.Pairs {
		return false
	}
	return f.Daily == "" || r.Daily == f.Daily
}

// DefaultLimit is used when Top is called with limit <= 0.
const DefaultLimit = 10

// Store records results and serves the leaderboard.
type Store interface {
	Insert(ctx context.Context, r Result) error
	// Top returns the best results matching f.
	Top(ctx context.Context, f Filter, limit int) ([]Result, error)
	Close() error
}

// less orders results by rank.
func less(a, b Result) bool {
	if a.Moves != b.Moves {
		return a.Moves < b.Moves
	}
	if a.ElapsedMs != b.ElapsedMs {
		return a.ElapsedMs < b.ElapsedMs
	}
	return a.FinishedAt.Before(b.FinishedAt)
}

// memory keeps results in a slice guarded by a mutex.
type memory struct {
	mu   sync.Mutex
	rows []Result
}

// NewMemoryStore returns a Store that forgets everything on restart.
func NewMemoryStore() Store {
	return &memory{}
}

func (m *memory) Insert(ctx context.Context, r Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, r)
	return nil
}

func (m *memory) Top(ctx context.Context, f Filter, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	m.mu.Lock()
	filtered := make([]Result, 0, len(m.rows))
	for _, r := range m.rows {
		if f.match(r) {
			filtered = append(filtered, r)
		}
	}
	m.mu.Unlock()

	sort.SliceStable(filtered, func(i, j int) bool { return less(filtered[i], filtered[j]) })
	if len(filtered) > limit {
		filtered = filtered[:limit]
	}
	return filtered, nil
}

func (m *memory) Close() error { return nil }
