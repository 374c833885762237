// internal/httpserver/player.go
//
// Anonymous player identity and per-player history endpoints:
//   - GET /games/mine → latest finished games for the calling player
//   - GET /stats/me   → games played, wins and current win streak

package httpserver

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"
)

const anonCookieName = "wordle_anon"

// ensureAnonID returns the caller's anonymous ID, issuing a cookie if absent.
func (s *Server) ensureAnonID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(anonCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	id := genID()
	sameSite := http.SameSiteLaxMode
	if s.deps.Production {
		sameSite = http.SameSiteNoneMode
	}
	http.SetCookie(w, &http.Cookie{
		Name:     anonCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.deps.Production,
		SameSite: sameSite,
		Expires:  s.now().Add(180 * 24 * time.Hour),
	})
	return id
}

func (s *Server) mountPlayer(r chi.Router) {
	r.Get("/games/mine", s.handleMyGames)
	r.Get("/stats/me", s.handleMyStats)
}

func (s *Server) handleMyGames(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	games, err := s.deps.History.Recent(r.Context(), s.ensureAnonID(w, r), limit)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("list games")
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"games": games})
}

func (s *Server) handleMyStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.deps.History.Stats(r.Context(), s.ensureAnonID(w, r))
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("player stats")
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	_ = json.NewEncoder(w).Encode(st)
}
