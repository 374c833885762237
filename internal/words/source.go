package words

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/infosphere/wordgame/internal/daily"
)

// Mode selects how a target word is chosen.
type Mode string

const (
	ModeNormal  Mode = "normal"  // random word up to a maximum size
	ModeDaily   Mode = "daily"   // same word for everyone today
	ModeWeekly  Mode = "weekly"  // same word for the ISO week
	ModeMonthly Mode = "monthly" // same word for the month
)

// DefaultMaxSize is the largest random word a normal game asks for by default.
const DefaultMaxSize = 5

var ErrUnknownMode = errors.New("words: unknown mode")

// ParseMode parses a mode name; the empty string means normal.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModeNormal, nil
	case ModeNormal, ModeDaily, ModeWeekly, ModeMonthly:
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// Period maps periodic modes to their challenge period.
func (m Mode) Period() (daily.Period, bool) {
	switch m {
	case ModeDaily:
		return daily.Day, true
	case ModeWeekly:
		return daily.Week, true
	case ModeMonthly:
		return daily.Month, true
	}
	return "", false
}

// ModeFor is the inverse of Mode.Period.
func ModeFor(p daily.Period) Mode {
	switch p {
	case daily.Week:
		return ModeWeekly
	case daily.Month:
		return ModeMonthly
	default:
		return ModeDaily
	}
}

// Request describes the word a caller wants.
type Request struct {
	Mode    Mode
	MaxSize int // normal mode only; <= 0 means DefaultMaxSize
}

func (r Request) maxSize() int {
	if r.MaxSize <= 0 {
		return DefaultMaxSize
	}
	return r.MaxSize
}

// Source supplies target words.
type Source interface {
	Word(ctx context.Context, req Request) (string, error)
}

// LocalSource picks words from loaded lists. Periodic modes are
// deterministic for a salt and period; normal mode is random.
type LocalSource struct {
	lists *Lists
	salt  string
	now   func() time.Time
}

func NewLocalSource(l *Lists, salt string) *LocalSource {
	return &LocalSource{lists: l, salt: salt, now: time.Now}
}

// Challenge returns the period key, word index and word for the period containing t.
func (s *LocalSource) Challenge(p daily.Period, t time.Time) (key string, idx int, word string) {
	key = daily.PeriodKey(p, t)
	answers := s.lists.Answers()
	if len(answers) == 0 {
		return key, 0, ""
	}
	idx = daily.WordIndex(string(p)+"|"+key, s.salt, len(answers))
	return key, idx, answers[idx]
}

func (s *LocalSource) Word(ctx context.Context, req Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if p, ok := req.Mode.Period(); ok {
		if _, _, w := s.Challenge(p, s.now()); w != "" {
			return w, nil
		}
		return "", ErrNoWord
	}
	if req.Mode != ModeNormal && req.Mode != "" {
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, req.Mode)
	}
	return s.lists.RandomAnswer(req.maxSize())
}

// fallback tries primary, then secondary.
type fallback struct {
	primary, secondary Source
}

// Fallback returns a Source that uses secondary whenever primary fails.
func Fallback(primary, secondary Source) Source {
	return &fallback{primary: primary, secondary: secondary}
}

func (f *fallback) Word(ctx context.Context, req Request) (string, error) {
	w, err := f.primary.Word(ctx, req)
	if err == nil {
		return w, nil
	}
	if ctx.Err() != nil {
		return "", err
	}
	log.Warn().Err(err).Str("mode", string(req.Mode)).Msg("primary word source failed, using fallback")
	return f.secondary.Word(ctx, req)
}
