// internal/httpserver/server.go
//
// HTTP server wiring for the wordgame backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs, logging).
//   - Public endpoints: "/", "/health", "/debug/words".
//   - Game endpoints: POST /game/new, /game/guess, /game/reset; GET/DELETE /game/{id}.
//   - Live state: GET /game/{id}/watch (websocket, see watch.go).
//   - Share tokens: GET /game/{id}/share, POST /share/verify (see share.go).
//   - Periodic challenges mounted under /daily (see routes_daily.go).
//   - Player history: GET /games/mine, /stats/me (see player.go).
//
// Notes:
//   - Players are identified by an anonymous cookie; there are no accounts.
//   - Rejected guesses are not HTTP errors: the response carries the outcome.
//   - Finished games are recorded best-effort; failures are logged, not returned.

package httpserver

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"

	"github.com/infosphere/wordgame/internal/daily"
	"github.com/infosphere/wordgame/internal/game"
	"github.com/infosphere/wordgame/internal/store"
	"github.com/infosphere/wordgame/internal/words"
)

// maxTriesCap bounds client-chosen try counts.
const maxTriesCap = 20

// Deps bundles everything the server needs.
type Deps struct {
	Store   store.Store
	History *store.History
	Daily   *daily.Store
	Lists   *words.Lists
	Source  words.Source       // target words for /game/new
	Local   *words.LocalSource // deterministic challenge words for /daily

	ShareKey      []byte
	ClientOrigin  string
	MaxTries      int
	StrictGuesses bool
	Production    bool
}

// Server bundles router and dependencies.
type Server struct {
	r     *chi.Mux
	deps  Deps
	daily *dailyServer
	now   func() time.Time
}

// New constructs a Server, installs middleware, and registers routes.
func New(d Deps) *Server {
	if d.MaxTries <= 0 {
		d.MaxTries = game.DefaultMaxTries
	}
	s := &Server{r: chi.NewRouter(), deps: d, now: time.Now}

	// --- middleware ---
	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(requestLogger()...)
	s.r.Use(chimw.Recoverer)
	s.r.Use(cors(d.ClientOrigin))

	// Websocket streams outlive the request timeout below.
	s.r.Get("/game/{id}/watch", s.handleWatch)

	s.r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(10 * time.Second))
		r.Use(jsonContentType)

		// --- diagnostics ---
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"service":"wordgame","endpoints":["/health","POST /game/new","POST /game/guess","POST /game/reset","/daily/*"]}`))
		})
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"ok":true}`))
		})
		r.Get("/debug/words", func(w http.ResponseWriter, r *http.Request) {
			a, g := d.Lists.Stats()
			_ = json.NewEncoder(w).Encode(map[string]int{"answers": a, "allowed": g})
		})

		// --- game ---
		r.Post("/game/new", s.handleNewGame)
		r.Post("/game/guess", s.handleGuess)
		r.Post("/game/reset", s.handleReset)
		r.Get("/game/{id}", s.handleGetGame)
		r.Delete("/game/{id}", s.handleDeleteGame)
		r.Get("/game/{id}/share", s.handleShare)
		r.Post("/share/verify", s.handleVerifyShare)

		s.mountDaily(r)
		s.mountPlayer(r)

		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			writeError(w, http.StatusNotFound, "not_found")
		})
	})

	return s
}

// Handler exposes the router as an http.Handler.
func (s *Server) Handler() http.Handler { return s.r }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// Sweep discards idle sessions every interval until ctx is done.
// Challenges abandoned that way count as lost.
func (s *Server) Sweep(ctx context.Context, every, maxIdle time.Duration) error {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			if n := s.deps.Store.Sweep(ctx, maxIdle); n > 0 {
				log.Info().Int("sessions", n).Msg("swept idle sessions")
			}
			if n := s.daily.prune(ctx); n > 0 {
				log.Debug().Int("slots", n).Msg("pruned challenge slots")
			}
		}
	}
}

// ------------------------------ views --------------------------------------

// stateView is the JSON shape of a session. The target word is only
// revealed once the game is over.
type stateView struct {
	GameID         string                 `json:"gameId"`
	Mode           string                 `json:"mode"`
	Phase          game.Phase             `json:"phase"`
	WordLength     int                    `json:"wordLength"`
	MaxTries       int                    `json:"maxTries"`
	RemainingTries int                    `json:"remainingTries"`
	Guesses        []string               `json:"guesses"`
	LetterResults  [][]game.Status        `json:"letterResults"`
	Keyboard       map[string]game.Status `json:"keyboard"`
	IsGameOver     bool                   `json:"isGameOver"`
	IsWin          bool                   `json:"isWin"`
	TargetWord     string                 `json:"targetWord,omitempty"`
}

func viewOf(sess *store.Session, st game.State) stateView {
	v := stateView{
		GameID:         sess.ID,
		Mode:           sess.Mode,
		Phase:          st.Phase(),
		WordLength:     st.WordLength(),
		MaxTries:       st.MaxTries,
		RemainingTries: st.RemainingTries,
		Guesses:        st.Guesses,
		LetterResults:  st.LetterResults,
		Keyboard:       make(map[string]game.Status),
		IsGameOver:     st.IsGameOver,
		IsWin:          st.IsWin,
	}
	for r, status := range st.Keyboard() {
		v.Keyboard[string(r)] = status
	}
	if st.IsGameOver {
		v.TargetWord = st.TargetWord
	}
	return v
}

// ------------------------------ GAME ---------------------------------------

type newGameReq struct {
	Mode     string `json:"mode"`     // normal | daily | weekly | monthly
	Size     int    `json:"size"`     // max word size for normal games
	MaxTries int    `json:"maxTries"` // 0 → server default
	Answer   string `json:"answer"`   // optional fixed answer (testing)
}

type newGameRes struct {
	GameID     string `json:"gameId"`
	Mode       string `json:"mode"`
	WordLength int    `json:"wordLength"`
	MaxTries   int    `json:"maxTries"`
}

// handleNewGame fetches a target word for the requested mode and starts a session.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_json")
			return
		}
	}
	mode, err := words.ParseMode(req.Mode)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown_mode")
		return
	}
	tries := req.MaxTries
	if tries == 0 {
		tries = s.deps.MaxTries
	}
	if tries < 0 || tries > maxTriesCap {
		writeError(w, http.StatusBadRequest, "invalid_max_tries")
		return
	}

	answer := req.Answer
	if answer == "" {
		answer, err = s.deps.Source.Word(r.Context(), words.Request{Mode: mode, MaxSize: req.Size})
		if err != nil {
			hlog.FromRequest(r).Error().Err(err).Str("mode", string(mode)).Msg("fetch word")
			writeError(w, http.StatusBadGateway, "word_unavailable")
			return
		}
	}
	eng, err := game.New(answer, tries)
	if err != nil {
		if errors.Is(err, game.ErrEmptyTarget) || errors.Is(err, game.ErrInvalidTarget) {
			writeError(w, http.StatusBadRequest, "invalid_answer")
			return
		}
		writeError(w, http.StatusInternalServerError, "engine_failed")
		return
	}

	sess := &store.Session{
		ID:        genID(),
		PlayerID:  s.ensureAnonID(w, r),
		Mode:      string(mode),
		Engine:    eng,
		StartedAt: s.now(),
	}
	if err := s.deps.Store.Save(r.Context(), sess); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("save session")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}

	st := eng.State()
	_ = json.NewEncoder(w).Encode(newGameRes{
		GameID:     sess.ID,
		Mode:       sess.Mode,
		WordLength: st.WordLength(),
		MaxTries:   st.MaxTries,
	})
}

type guessReq struct {
	GameID string `json:"gameId"`
	Guess  string `json:"guess"`
}

type guessRes struct {
	Outcome  string        `json:"outcome"` // accepted | rejected_length | rejected_game_over
	Statuses []game.Status `json:"statuses,omitempty"`
	State    stateView     `json:"state"`
}

func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	var req guessReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	sess, err := s.deps.Store.Get(r.Context(), req.GameID)
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	if sess.Challenge != nil && sess.PlayerID != s.ensureAnonID(w, r) {
		writeError(w, http.StatusForbidden, "not_owner")
		return
	}
	s.applyGuess(w, r, sess, req.Guess)
}

// applyGuess submits guess to the session engine, touches the session and
// records the game once it ends.
func (s *Server) applyGuess(w http.ResponseWriter, r *http.Request, sess *store.Session, guess string) {
	if s.deps.StrictGuesses {
		st := sess.Engine.State()
		g := game.Normalize(guess)
		if !st.IsGameOver && utf8.RuneCountInString(g) == st.WordLength() && !s.deps.Lists.IsAllowed(g) {
			writeError(w, http.StatusBadRequest, "not_in_word_list")
			return
		}
	}

	out, statuses, st := sess.Engine.Guess(guess)
	if err := s.deps.Store.Save(r.Context(), sess); err != nil {
		hlog.FromRequest(r).Warn().Err(err).Str("gameId", sess.ID).Msg("touch session")
	}
	if out == game.Accepted && st.IsGameOver {
		s.recordFinished(r.Context(), sess, st)
	}

	_ = json.NewEncoder(w).Encode(guessRes{
		Outcome:  out.String(),
		Statuses: statuses,
		State:    viewOf(sess, st),
	})
}

// recordID names one round of a session; recording it twice is a no-op.
func recordID(sess *store.Session) string {
	return sess.ID + "." + strconv.Itoa(sess.Round)
}

// recordFinished persists a finished game (best effort, non-fatal if it fails).
func (s *Server) recordFinished(ctx context.Context, sess *store.Session, st game.State) {
	now := s.now()
	logger := log.Ctx(ctx).With().Str("gameId", sess.ID).Str("player", sess.PlayerID).Logger()

	if s.deps.History != nil {
		if err := s.deps.History.Record(ctx, store.GameRecord{
			ID:         recordID(sess),
			PlayerID:   sess.PlayerID,
			Mode:       sess.Mode,
			Answer:     st.TargetWord,
			Guesses:    len(st.Guesses),
			MaxTries:   st.MaxTries,
			Won:        st.IsWin,
			StartedAt:  sess.StartedAt,
			FinishedAt: now,
		}); err != nil {
			logger.Warn().Err(err).Msg("record game")
		}
	}

	if c := sess.Challenge; c != nil && s.deps.Daily != nil {
		if err := s.deps.Daily.InsertResult(ctx, daily.Result{
			PlayerID:  sess.PlayerID,
			Period:    c.Period,
			Key:       c.Key,
			WordIndex: c.WordIndex,
			Guesses:   len(st.Guesses),
			Won:       st.IsWin,
			ElapsedMs: int(now.Sub(sess.StartedAt).Milliseconds()),
		}); err != nil {
			logger.Warn().Err(err).Msg("insert challenge result")
		}
	}
	logger.Info().Bool("won", st.IsWin).Int("guesses", len(st.Guesses)).Msg("game finished")
}

type gameIDReq struct {
	GameID string `json:"gameId"`
}

// handleReset restarts a normal game with the same word. Challenge sessions
// can't be replayed.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	var req gameIDReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	sess, err := s.deps.Store.Get(r.Context(), req.GameID)
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	if sess.Challenge != nil {
		writeError(w, http.StatusConflict, "challenge_locked")
		return
	}
	sess.Engine.Reset()
	sess.StartedAt = s.now()
	sess.Round++
	_ = s.deps.Store.Save(r.Context(), sess)
	_ = json.NewEncoder(w).Encode(viewOf(sess, sess.Engine.State()))
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	sess, err := s.deps.Store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	_ = json.NewEncoder(w).Encode(viewOf(sess, sess.Engine.State()))
}

// handleDeleteGame discards one of the caller's normal sessions. Challenge
// sessions stay until they finish or are swept.
func (s *Server) handleDeleteGame(w http.ResponseWriter, r *http.Request) {
	sess, err := s.deps.Store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	if sess.PlayerID != s.ensureAnonID(w, r) {
		writeError(w, http.StatusForbidden, "not_owner")
		return
	}
	if sess.Challenge != nil {
		writeError(w, http.StatusConflict, "challenge_locked")
		return
	}
	_ = s.deps.Store.Delete(r.Context(), sess.ID)
	w.WriteHeader(http.StatusNoContent)
}

// ------------------------------- util --------------------------------------

// writeError writes a {"error": code} body with status.
func writeError(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": code})
}

// genID creates a 22‑char URL‑safe, crypto‑random identifier (no padding).
func genID() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}
