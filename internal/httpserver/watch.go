// internal/httpserver/watch.go
//
// GET /game/{id}/watch upgrades to a websocket and pushes the session view
// every time its state changes. Slow clients only ever see the latest state.
// The stream ends when the client disconnects or the game finishes.

package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/hlog"
)

const watchWriteWait = 5 * time.Second

func (s *Server) upgrader() *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			o := r.Header.Get("Origin")
			return o == "" || o == s.deps.ClientOrigin
		},
	}
}

func (s *Server) handleWatch(w http.ResponseWriter, r *http.Request) {
	sess, err := s.deps.Store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	conn, err := s.upgrader().Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied to the client.
		hlog.FromRequest(r).Debug().Err(err).Msg("watch upgrade")
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Reader: we ignore client messages but must consume them to see close frames.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for st := range sess.Engine.Watch(ctx) {
		_ = conn.SetWriteDeadline(time.Now().Add(watchWriteWait))
		if err := conn.WriteJSON(viewOf(sess, st)); err != nil {
			return
		}
		if st.IsGameOver {
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "game over"),
				time.Now().Add(watchWriteWait))
			return
		}
	}
}
