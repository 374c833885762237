// internal/httpserver/routes_daily.go
//
// HTTP routes for the periodic challenge modes (daily, weekly, monthly).
// Exposes three endpoints under /daily:
//   - POST /daily/new         → start a challenge game (creates or reuses session)
//   - POST /daily/guess       → submit a guess for the caller's challenge game
//   - GET  /daily/leaderboard → top 20 winners for a period (default: current)
//
// Each player gets one result per period (enforced by DB + session reuse).
// A challenge session that disappears before finishing (swept while idle)
// is recorded as a loss.
// Words are picked deterministically from period key + salt, so every
// player gets the same word for the same period.

package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"

	"github.com/infosphere/wordgame/internal/daily"
	"github.com/infosphere/wordgame/internal/game"
	"github.com/infosphere/wordgame/internal/store"
	"github.com/infosphere/wordgame/internal/words"
)

// dailyServer wraps dependencies for /daily endpoints.
type dailyServer struct {
	srv   *Server
	store *daily.Store

	mu       sync.Mutex
	sessions map[string]dailySlot // player|period|key → live session
}

// dailySlot remembers which session plays a player's challenge.
type dailySlot struct {
	sessionID string
	playerID  string
	challenge store.Challenge
}

// mountDaily registers all /daily routes.
func (s *Server) mountDaily(r chi.Router) {
	dd := &dailyServer{
		srv:      s,
		store:    s.deps.Daily,
		sessions: make(map[string]dailySlot),
	}
	s.daily = dd
	r.Route("/daily", func(r chi.Router) {
		r.Post("/new", dd.handleNew)
		r.Post("/guess", dd.handleGuess)
		r.Get("/leaderboard", dd.handleLeaderboard)
	})
}

type dailyNewReq struct {
	Period string `json:"period"` // day | week | month; empty → day
}

// dailyNewRes is returned by /daily/new.
type dailyNewRes struct {
	GameID     string       `json:"gameId,omitempty"`
	Period     daily.Period `json:"period"`
	Key        string       `json:"key"`
	Played     bool         `json:"played"`
	WordLength int          `json:"wordLength,omitempty"`
	MaxTries   int          `json:"maxTries,omitempty"`
}

// handleNew creates or reuses the caller's session for the current period.
//   - A stored result for the period → Played=true, no game.
//   - Otherwise reuse the live session, or start one on the period's word.
func (d *dailyServer) handleNew(w http.ResponseWriter, r *http.Request) {
	var req dailyNewReq
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_json")
			return
		}
	}
	period, err := daily.ParsePeriod(req.Period)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown_period")
		return
	}
	uid := d.srv.ensureAnonID(w, r)
	key, idx, answer := d.srv.deps.Local.Challenge(period, d.srv.now())
	if answer == "" {
		writeError(w, http.StatusServiceUnavailable, "word_unavailable")
		return
	}

	played, err := d.store.AlreadyPlayed(r.Context(), uid, period, key)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("already played")
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	slot := uid + "|" + string(period) + "|" + key
	d.mu.Lock()
	defer d.mu.Unlock()

	if played {
		delete(d.sessions, slot)
		_ = json.NewEncoder(w).Encode(dailyNewRes{Period: period, Key: key, Played: true})
		return
	}

	if ds, ok := d.sessions[slot]; ok {
		sess, err := d.srv.deps.Store.Get(r.Context(), ds.sessionID)
		if err != nil {
			d.forfeitLocked(r.Context(), slot, ds)
			_ = json.NewEncoder(w).Encode(dailyNewRes{Period: period, Key: key, Played: true})
			return
		}
		st := sess.Engine.State()
		_ = json.NewEncoder(w).Encode(dailyNewRes{
			GameID: sess.ID, Period: period, Key: key,
			WordLength: st.WordLength(), MaxTries: st.MaxTries,
		})
		return
	}

	eng, err := game.New(answer, d.srv.deps.MaxTries)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Str("key", key).Msg("challenge engine")
		writeError(w, http.StatusInternalServerError, "engine_failed")
		return
	}
	sess := &store.Session{
		ID:        genID(),
		PlayerID:  uid,
		Mode:      string(words.ModeFor(period)),
		Engine:    eng,
		Challenge: &store.Challenge{Period: period, Key: key, WordIndex: idx},
		StartedAt: d.srv.now(),
	}
	if err := d.srv.deps.Store.Save(r.Context(), sess); err != nil {
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}
	d.sessions[slot] = dailySlot{sessionID: sess.ID, playerID: uid, challenge: *sess.Challenge}

	st := eng.State()
	_ = json.NewEncoder(w).Encode(dailyNewRes{
		GameID: sess.ID, Period: period, Key: key,
		WordLength: st.WordLength(), MaxTries: st.MaxTries,
	})
}

// forfeitLocked records an unfinished challenge as a loss and forgets its slot.
// First result wins, so a challenge that already finished keeps its result.
func (d *dailyServer) forfeitLocked(ctx context.Context, slot string, ds dailySlot) {
	delete(d.sessions, slot)
	err := d.store.InsertResult(ctx, daily.Result{
		PlayerID:  ds.playerID,
		Period:    ds.challenge.Period,
		Key:       ds.challenge.Key,
		WordIndex: ds.challenge.WordIndex,
		Guesses:   d.srv.deps.MaxTries,
		Won:       false,
	})
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("player", ds.playerID).Msg("forfeit challenge")
	}
}

// prune drops slots whose session finished, and forfeits those whose
// session is gone.
func (d *dailyServer) prune(ctx context.Context) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for slot, ds := range d.sessions {
		sess, err := d.srv.deps.Store.Get(ctx, ds.sessionID)
		switch {
		case err != nil:
			d.forfeitLocked(ctx, slot, ds)
		case sess.Engine.State().IsGameOver:
			delete(d.sessions, slot)
		default:
			continue
		}
		n++
	}
	return n
}

// handleGuess applies a guess to the caller's challenge session.
// Sessions owned by another player, or normal games, are rejected.
func (d *dailyServer) handleGuess(w http.ResponseWriter, r *http.Request) {
	var req guessReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	uid := d.srv.ensureAnonID(w, r)
	sess, err := d.srv.deps.Store.Get(r.Context(), req.GameID)
	if err != nil || sess.Challenge == nil || sess.PlayerID != uid {
		writeError(w, http.StatusConflict, "no_session")
		return
	}
	d.srv.applyGuess(w, r, sess, req.Guess)
}

// lbRes is returned by /daily/leaderboard.
type lbRes struct {
	Period daily.Period  `json:"period"`
	Key    string        `json:"key"`
	Top    []daily.LBRow `json:"top"`
}

// handleLeaderboard returns winners for ?period=&key= (defaults: day, current key).
func (d *dailyServer) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	period, err := daily.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown_period")
		return
	}
	key := r.URL.Query().Get("key")
	if key == "" {
		key = daily.PeriodKey(period, d.srv.now())
	}
	rows, err := d.store.Leaderboard(r.Context(), period, key, 20)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("leaderboard")
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	_ = json.NewEncoder(w).Encode(lbRes{Period: period, Key: key, Top: rows})
}
