// internal/httpserver/routes_scores.go
//
// Leaderboard endpoint:
//   - GET /api/leaderboard → best finished rounds, filtered by ?pairs= and ?daily=

package httpserver

import (
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/memory-match/internal/daily"
	"github.com/robalobadob/memory-match/internal/results"
)

const maxLeaderboardLimit = 50

// lbRes is returned by GET /api/leaderboard.
type lbRes struct {
	Pairs int              `json:"pairs"`
	Daily string           `json:"daily,omitempty"`
	Top   []results.Result `json:"top"`
}

// handleLeaderboard returns the best rounds, optionally for one deck size
// or one daily deal.
// Query: ?pairs=N (0 or absent = all sizes) &limit=N (default 10, max 50)
// &daily=YYYY-MM-DD|today.
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	pairs, ok := queryInt(r, "pairs", 0)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_pairs")
		return
	}
	limit, ok := queryInt(r, "limit", results.DefaultLimit)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_limit")
		return
	}
	if limit > maxLeaderboardLimit {
		limit = maxLeaderboardLimit
	}
	f := results.Filter{Pairs: pairs}
	switch v := r.URL.Query().Get("daily"); v {
	case "":
	case "today":
		f.Daily = daily.DateKey(s.d.Clock.Now())
	default:
		if _, err := daily.ParseDateKey(v); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date")
			return
		}
		f.Daily = v
	}
	if s.d.Results == nil {
		writeJSON(w, lbRes{Pairs: pairs, Daily: f.Daily, Top: []results.Result{}})
		return
	}

	rows, err := s.d.Results.Top(r.Context(), f, limit)
	if err != nil {
		log.Error().Err(err).Msg("leaderboard")
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	if rows == nil {
		rows = []results.Result{}
	}
	writeJSON(w, lbRes{Pairs: pairs, Daily: f.Daily, Top: rows})
}

func queryInt(r *http.Request, key string, def int) (int, bool) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def, true
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
