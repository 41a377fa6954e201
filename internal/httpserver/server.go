// internal/httpserver/server.go
//
// HTTP server wiring for the memory game backend.
// Responsibilities:
//   - Router + middleware (request IDs, real IP, logging, panic recovery,
//     CORS, JSON content type, per-request timeouts).
//   - Public endpoints: "/health", the embedded browser client, the leaderboard.
//   - Game endpoints under /api/game: create, inspect, click, restart, end,
//     and the websocket event stream. All but create require a session token.
//
// Notes:
//   - CORS is origin-aware and credentials-enabled so the token cookie works
//     when the client is served from a dev server.
//   - The websocket route is kept out of the timeout group; its lifetime is
//     the connection's.

package httpserver

import (
	"io/fs"
	"math/rand"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/robalobadob/memory-match/internal/game"
	"github.com/robalobadob/memory-match/internal/results"
	"github.com/robalobadob/memory-match/internal/store"
)

const requestTimeout = 10 * time.Second

// Deps are the collaborators a Server needs. Zero values select defaults
// where noted.
type Deps struct {
	Sessions     store.Store
	Results      results.Store
	Images       []string      // one per pair
	FlipDuration time.Duration // clamped by the game
	Clock        game.Clock    // default game.SystemClock
	Secret       []byte        // HS256 key for session tokens
	TokenTTL     time.Duration // default 24h
	ClientOrigin string        // allowed CORS / websocket origin
	Web          fs.FS         // browser client; nil serves nothing at "/"
	DailySalt    string        // keys the daily deal
	NewRand      func() *rand.Rand
}

// Server bundles the router and its dependencies.
type Server struct {
	r        *chi.Mux
	d        Deps
	validate *validator.Validate
}

// New constructs a Server, installs middleware, and registers routes.
func New(d Deps) *Server {
	if d.Clock == nil {
		d.Clock = game.SystemClock{}
	}
	if d.TokenTTL <= 0 {
		d.TokenTTL = 24 * time.Hour
	}
	if d.NewRand == nil {
		d.NewRand = func() *rand.Rand { return rand.New(rand.NewSource(time.Now().UnixNano())) }
	}
	s := &Server{r: chi.NewRouter(), d: d, validate: validator.New()}

	// --- middleware ---
	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(requestLogger)
	s.r.Use(chimw.Recoverer)
	s.r.Use(cors(d.ClientOrigin))

	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	s.r.Route("/api", func(r chi.Router) {
		r.Use(jsonContentType)

		r.With(chimw.Timeout(requestTimeout)).Post("/game/new", s.handleNewGame)
		r.With(chimw.Timeout(requestTimeout)).Get("/leaderboard", s.handleLeaderboard)

		r.Route("/game/{id}", func(r chi.Router) {
			r.Use(s.requireSession)
			r.Get("/events", s.handleEvents)
			r.Group(func(r chi.Router) {
				r.Use(chimw.Timeout(requestTimeout))
				r.Get("/", s.handleGetGame)
				r.Post("/click", s.handleClick)
				r.Post("/restart", s.handleRestart)
				r.Delete("/", s.handleEndGame)
			})
		})

		// JSON 404 for easier debugging
		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			writeError(w, http.StatusNotFound, "not_found")
		})
	})

	if d.Web != nil {
		s.r.Handle("/*", http.FileServer(http.FS(d.Web)))
	}
	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return srv.ListenAndServe()
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }
