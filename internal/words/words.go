// internal/words/words.go
//
// Word list management.
//
// Responsibilities:
//   - Load answer and allowed guess lists from files or fall back to the
//     embedded defaults in package assets.
//   - Maintain sets for quick lookups (answers only, answers∪allowed).
//   - Supply RandomAnswer, IsAllowed, IsAnswer and Stats.
//
// Word Lists:
//   - "answers": candidate target words, any length.
//   - "allowed": extra valid guesses (answers are always allowed).
//
// Loading behavior (LoadLists):
//  1. If both paths are set, load answers from the first and allowed guesses from the second.
//  2. If only the allowed path is set, use that file for both.
//  3. If neither is set, use the embedded lists.
//
// Words are normalized like guesses (see game.Normalize); entries containing
// anything but letters are dropped.

package words

import (
	"bufio"
	"crypto/rand"
	"errors"
	"math/big"
	"os"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/infosphere/wordgame/assets"
	"github.com/infosphere/wordgame/internal/game"
)

var ErrNoWord = errors.New("words: no word available")

// Lists holds the loaded word lists. It is read-only after construction.
type Lists struct {
	answers    []string
	answersSet map[string]struct{}
	allowedSet map[string]struct{} // answers ∪ allowed
}

// NewLists normalizes and indexes the given lists.
func NewLists(answers, allowed []string) *Lists {
	ans := normalizeAll(answers)
	l := &Lists{
		answers:    ans,
		answersSet: toSet(ans),
		allowedSet: toSet(ans),
	}
	for _, w := range normalizeAll(allowed) {
		l.allowedSet[w] = struct{}{}
	}
	return l
}

// LoadLists loads word lists from the given files, or the embedded defaults.
// Returns an error if the answers list ends up empty.
func LoadLists(answersPath, allowedPath string) (*Lists, error) {
	var ansList, allowList []string
	var err error

	switch {
	case answersPath != "" && allowedPath != "":
		if ansList, err = readWordFile(answersPath); err != nil {
			return nil, err
		}
		if allowList, err = readWordFile(allowedPath); err != nil {
			return nil, err
		}

	case answersPath == "" && allowedPath != "":
		if allowList, err = readWordFile(allowedPath); err != nil {
			return nil, err
		}
		ansList = allowList

	default:
		if ansList, err = assets.AnswersList(); err != nil {
			return nil, err
		}
		if allowList, err = assets.AllowedList(); err != nil {
			return nil, err
		}
	}

	l := NewLists(ansList, allowList)
	if len(l.answers) == 0 {
		return nil, errors.New("words: answers list is empty")
	}
	return l, nil
}

// readWordFile loads one word per line from a file, skipping blanks and # comments.
func readWordFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		w := strings.TrimSpace(sc.Text())
		if w != "" && !strings.HasPrefix(w, "#") {
			out = append(out, w)
		}
	}
	return out, sc.Err()
}

// Valid reports whether w, once normalized, is a non-empty run of letters.
func Valid(w string) bool {
	w = game.Normalize(w)
	if w == "" {
		return false
	}
	for _, r := range w {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// normalizeAll normalizes every valid word, dropping invalid ones and duplicates.
func normalizeAll(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, w := range in {
		if !Valid(w) {
			continue
		}
		w = game.Normalize(w)
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}

// toSet converts a list of strings into a lookup set.
func toSet(list []string) map[string]struct{} {
	m := make(map[string]struct{}, len(list))
	for _, w := range list {
		m[w] = struct{}{}
	}
	return m
}

// Answers returns the answer list. Callers must not modify it.
func (l *Lists) Answers() []string { return l.answers }

// RandomAnswer returns a cryptographically random answer of at most maxSize
// letters; maxSize <= 0 means any length.
func (l *Lists) RandomAnswer(maxSize int) (string, error) {
	pool := l.answers
	if maxSize > 0 {
		pool = make([]string, 0, len(l.answers))
		for _, w := range l.answers {
			if utf8.RuneCountInString(w) <= maxSize {
				pool = append(pool, w)
			}
		}
	}
	if len(pool) == 0 {
		return "", ErrNoWord
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(pool))))
	if err != nil {
		return "", err
	}
	return pool[n.Int64()], nil
}

// IsAllowed reports whether w is a valid guess (answers ∪ allowed).
func (l *Lists) IsAllowed(w string) bool {
	_, ok := l.allowedSet[game.Normalize(w)]
	return ok
}

// IsAnswer reports whether w is an answer word.
func (l *Lists) IsAnswer(w string) bool {
	_, ok := l.answersSet[game.Normalize(w)]
	return ok
}

// Stats returns counts of loaded words: (answers, allowed).
func (l *Lists) Stats() (answersCount int, allowedCount int) {
	return len(l.answers), len(l.allowedSet)
}
