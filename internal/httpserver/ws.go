// internal/httpserver/ws.go
//
// GET /api/game/{id}/events upgrades to a websocket and streams session
// events as JSON text frames:
//   {"type":"state","snapshot":{...}}                     after every change
//   {"type":"won","moves":N,"pairs":P,"elapsedMs":T}      once per finished round
//
// The current snapshot is sent first. The connection is read only to notice
// the client going away; pings keep intermediaries from idling it out.

package httpserver

import (
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/memory-match/internal/session"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = (wsPongWait * 9) / 10
)

func (s *Server) upgrader() *websocket.Upgrader {
	return &websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || origin == s.d.ClientOrigin {
				return true
			}
			u, err := url.Parse(origin)
			return err == nil && u.Host == r.Host
		},
	}
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	conn, err := s.upgrader().Upgrade(w, r, nil)
	if err != nil {
		log.Debug().Err(err).Str("gameId", sess.ID).Msg("websocket upgrade")
		return
	}
	defer conn.Close()

	events, cancel := sess.Subscribe()
	defer cancel()

	snap := sess.Game.Snapshot()
	if err := writeEvent(conn, session.Event{Type: "state", Snapshot: &snap}); err != nil {
		return
	}

	// Reader: only control frames matter; any error means the client left.
	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(wsPongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(wsPingPeriod)
	defer ping.Stop()
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session closed"),
					time.Now().Add(wsWriteWait))
				return
			}
			if ev.Type == "state" && ev.Snapshot != nil && ev.Snapshot.Version < snap.Version {
				continue
			}
			if ev.Snapshot != nil {
				snap = *ev.Snapshot
			}
			if err := writeEvent(conn, ev); err != nil {
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

func writeEvent(conn *websocket.Conn, ev session.Event) error {
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return conn.WriteJSON(ev)
}
