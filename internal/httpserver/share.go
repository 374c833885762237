// internal/httpserver/share.go
//
// Signed share cards for finished games.
//   - GET  /game/{id}/share → HS256 token + emoji grid (game must be over)
//   - POST /share/verify    → decode a token back into its card
//
// Tokens never contain the target word, only the colour pattern.

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/infosphere/wordgame/internal/game"
)

const shareTTL = 30 * 24 * time.Hour

var errNoShareKey = errors.New("share: no signing key configured")

// shareClaims is the payload of a share token.
type shareClaims struct {
	Mode     string   `json:"mode"`
	Won      bool     `json:"won"`
	Guesses  int      `json:"guesses"`
	MaxTries int      `json:"maxTries"`
	Pattern  []string `json:"pattern"` // one emoji row per guess
	jwt.RegisteredClaims
}

// emojiRow renders one guess result as colour squares.
func emojiRow(row []game.Status) string {
	var b strings.Builder
	for _, st := range row {
		switch st {
		case game.StatusCorrect:
			b.WriteString("🟩")
		case game.StatusPresent:
			b.WriteString("🟨")
		default:
			b.WriteString("⬛")
		}
	}
	return b.String()
}

func (s *Server) signShare(gameID, mode string, st game.State) (string, *shareClaims, error) {
	if len(s.deps.ShareKey) == 0 {
		return "", nil, errNoShareKey
	}
	now := s.now()
	c := &shareClaims{
		Mode:     mode,
		Won:      st.IsWin,
		Guesses:  len(st.Guesses),
		MaxTries: st.MaxTries,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   gameID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(shareTTL)),
		},
	}
	for _, row := range st.LetterResults {
		c.Pattern = append(c.Pattern, emojiRow(row))
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.deps.ShareKey)
	return tok, c, err
}

func (s *Server) parseShare(token string) (*shareClaims, error) {
	c := &shareClaims{}
	_, err := jwt.ParseWithClaims(token, c, func(t *jwt.Token) (interface{}, error) {
		return s.deps.ShareKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, err
	}
	return c, nil
}

type shareRes struct {
	Token string       `json:"token"`
	Card  *shareClaims `json:"card"`
	Text  string       `json:"text"`
}

// shareText is the copy-paste form of a card.
func shareText(c *shareClaims) string {
	score := "X"
	if c.Won {
		score = strconv.Itoa(c.Guesses)
	}
	return "wordgame " + c.Mode + " " + score + "/" + strconv.Itoa(c.MaxTries) + "\n" + strings.Join(c.Pattern, "\n")
}

func (s *Server) handleShare(w http.ResponseWriter, r *http.Request) {
	sess, err := s.deps.Store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	st := sess.Engine.State()
	if !st.IsGameOver {
		writeError(w, http.StatusConflict, "game_in_progress")
		return
	}
	tok, c, err := s.signShare(sess.ID, sess.Mode, st)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "sign_failed")
		return
	}
	_ = json.NewEncoder(w).Encode(shareRes{Token: tok, Card: c, Text: shareText(c)})
}

type verifyReq struct {
	Token string `json:"token"`
}

func (s *Server) handleVerifyShare(w http.ResponseWriter, r *http.Request) {
	var req verifyReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	c, err := s.parseShare(req.Token)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid_token")
		return
	}
	_ = json.NewEncoder(w).Encode(shareRes{Token: req.Token, Card: c, Text: shareText(c)})
}
