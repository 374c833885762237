// internal/store/history.go
//
// SQLite-backed history of finished games, keyed by player.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// tsLayout keeps stored timestamps fixed-width so they sort lexically.
const tsLayout = "2006-01-02T15:04:05.000000000Z"

// GameRecord is one finished game.
type GameRecord struct {
	ID         string    `json:"id"`
	PlayerID   string    `json:"-"`
	Mode       string    `json:"mode"`
	Answer     string    `json:"answer"`
	Guesses    int       `json:"guesses"`
	MaxTries   int       `json:"maxTries"`
	Won        bool      `json:"won"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
}

// PlayerStats summarises a player's history.
type PlayerStats struct {
	GamesPlayed int `json:"gamesPlayed"`
	Wins        int `json:"wins"`
	Streak      int `json:"streak"` // consecutive wins ending with the latest game
}

// History reads and writes the games table.
type History struct{ db *sql.DB }

func NewHistory(db *sql.DB) *History { return &History{db: db} }

// Record stores a finished game. Recording the same game twice is a no-op.
func (h *History) Record(ctx context.Context, r GameRecord) error {
	_, err := h.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO games (id, player_id, mode, answer, guesses, max_tries, won, started_at, finished_at)
		 VALUES (?,?,?,?,?,?,?,?,?)`,
		r.ID, r.PlayerID, r.Mode, r.Answer, r.Guesses, r.MaxTries, r.Won,
		r.StartedAt.UTC().Format(tsLayout), r.FinishedAt.UTC().Format(tsLayout),
	)
	if err != nil {
		return fmt.Errorf("history: record %s: %w", r.ID, err)
	}
	return nil
}

// Recent returns the player's latest games, newest first.
func (h *History) Recent(ctx context.Context, playerID string, limit int) ([]GameRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := h.db.QueryContext(ctx,
		`SELECT id, player_id, mode, answer, guesses, max_tries, won, started_at, finished_at
		 FROM games WHERE player_id=? ORDER BY finished_at DESC LIMIT ?`, playerID, limit)
	if err != nil {
		return nil, fmt.Errorf("history: recent: %w", err)
	}
	defer rows.Close()

	out := []GameRecord{}
	for rows.Next() {
		var r GameRecord
		var started, finished string
		if err := rows.Scan(&r.ID, &r.PlayerID, &r.Mode, &r.Answer, &r.Guesses, &r.MaxTries, &r.Won, &started, &finished); err != nil {
			return nil, err
		}
		r.StartedAt = mustParse(started)
		r.FinishedAt = mustParse(finished)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Stats computes games played, wins and the current win streak.
func (h *History) Stats(ctx context.Context, playerID string) (PlayerStats, error) {
	rows, err := h.db.QueryContext(ctx,
		`SELECT won FROM games WHERE player_id=? ORDER BY finished_at DESC`, playerID)
	if err != nil {
		return PlayerStats{}, fmt.Errorf("history: stats: %w", err)
	}
	defer rows.Close()

	var st PlayerStats
	streakOpen := true
	for rows.Next() {
		var won bool
		if err := rows.Scan(&won); err != nil {
			return PlayerStats{}, err
		}
		st.GamesPlayed++
		if won {
			st.Wins++
			if streakOpen {
				st.Streak++
			}
		} else {
			streakOpen = false
		}
	}
	return st, rows.Err()
}

// mustParse parses stored timestamps; on error returns zero time.
func mustParse(s string) time.Time {
	t, _ := time.Parse(tsLayout, s)
	return t
}
