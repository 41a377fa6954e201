// internal/httpserver/routes_game.go
//
// Game endpoints:
//   - POST   /api/game/new          → start a session, returns token + snapshot;
//                                      {"daily":true} deals today's shared layout
//   - GET    /api/game/{id}         → current snapshot
//   - POST   /api/game/{id}/click   → click a card (ineligible clicks are no-ops)
//   - POST   /api/game/{id}/restart → reset the round
//   - DELETE /api/game/{id}         → end the session
//
// Every finished round is recorded on the leaderboard.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/memory-match/internal/daily"
	"github.com/robalobadob/memory-match/internal/deck"
	"github.com/robalobadob/memory-match/internal/game"
	"github.com/robalobadob/memory-match/internal/results"
	"github.com/robalobadob/memory-match/internal/session"
)

// newGameReq/Res payloads for POST /api/game/new.
type newGameReq struct {
	Player string `json:"player" validate:"omitempty,max=24,printascii"`
	Pairs  int    `json:"pairs" validate:"gte=0"` // 0 = every image
	Daily  bool   `json:"daily"`
}
type newGameRes struct {
	GameID   string        `json:"gameId"`
	Token    string        `json:"token"`
	Snapshot game.Snapshot `json:"snapshot"`
}

// decodeBody decodes JSON into v; an empty body leaves v untouched.
func decodeBody(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// handleNewGame creates a session with a freshly shuffled deck.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	req.Player = strings.TrimSpace(req.Player)
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	rng, dateKey := s.d.NewRand(), ""
	if req.Daily {
		now := s.d.Clock.Now()
		rng, dateKey = daily.Rand(now, s.d.DailySalt), daily.DateKey(now)
	}
	sess := session.New(session.Options{
		Player:       req.Player,
		Daily:        dateKey,
		Images:       deck.Pick(s.d.Images, req.Pairs, rng),
		FlipDuration: s.d.FlipDuration,
		Clock:        s.d.Clock,
		Rand:         rng,
		OnWin:        s.recordWin,
	})
	if err := s.d.Sessions.Save(r.Context(), sess); err != nil {
		sess.Close()
		log.Error().Err(err).Msg("save session")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}

	tok, exp, err := s.signToken(sess.ID, sess.Player)
	if err != nil {
		_ = s.d.Sessions.Delete(r.Context(), sess.ID)
		log.Error().Err(err).Msg("sign token")
		writeError(w, http.StatusInternalServerError, "sign_failed")
		return
	}
	setTokenCookie(w, tok, exp)

	snap := sess.Game.Snapshot()
	log.Info().Str("gameId", sess.ID).Str("player", sess.Player).Str("daily", sess.Daily).Int("pairs", snap.Pairs).Msg("session created")
	writeJSON(w, newGameRes{GameID: sess.ID, Token: tok, Snapshot: snap})
}

// handleGetGame returns the current snapshot.
func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, sessionFrom(r).Game.Snapshot())
}

// clickReq/Res payloads for POST /api/game/{id}/click.
type clickReq struct {
	CardID string `json:"cardId" validate:"required,max=32"`
}
type clickRes struct {
	Accepted bool          `json:"accepted"`
	Snapshot game.Snapshot `json:"snapshot"`
}

// handleClick forwards a click; unknown or ineligible cards come back accepted=false.
func (s *Server) handleClick(w http.ResponseWriter, r *http.Request) {
	var req clickReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	g := sessionFrom(r).Game
	accepted := g.Click(req.CardID)
	writeJSON(w, clickRes{Accepted: accepted, Snapshot: g.Snapshot()})
}

// handleRestart resets the round in place.
func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	g := sessionFrom(r).Game
	g.ResetGame()
	writeJSON(w, g.Snapshot())
}

// handleEndGame closes the session and clears the token cookie.
func (s *Server) handleEndGame(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	if err := s.d.Sessions.Delete(r.Context(), sess.ID); err != nil {
		writeError(w, http.StatusInternalServerError, "delete_failed")
		return
	}
	clearTokenCookie(w)
	log.Info().Str("gameId", sess.ID).Msg("session ended")
	writeJSON(w, map[string]bool{"ok": true})
}

// recordWin stores a finished round. Failures are logged, never surfaced to the game.
func (s *Server) recordWin(sess *session.Session, win game.Win) {
	log.Info().
		Str("gameId", sess.ID).
		Str("player", sess.Player).
		Int("moves", win.Moves).
		Int("pairs", win.Pairs).
		Dur("elapsed", win.Elapsed).
		Msg("game won")
	if s.d.Results == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := s.d.Results.Insert(ctx, results.Result{
		SessionID:  sess.ID,
		Player:     sess.Player,
		Pairs:      win.Pairs,
		Moves:      win.Moves,
		ElapsedMs:  win.Elapsed.Milliseconds(),
		FinishedAt: s.d.Clock.Now(),
		Daily:      sess.Daily,
	})
	if err != nil {
		log.Warn().Err(err).Str("gameId", sess.ID).Msg("record result")
	}
}
