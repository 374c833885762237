// internal/game/engine.go
//
// Core game engine for a single puzzle instance.
// Responsibilities:
//   - Hold the current target word and the immutable State snapshot.
//   - Validate and apply guesses (game over, length).
//   - Score guesses using the two-pass duplicate-aware algorithm.
//   - Track state transitions: ready → won/lost, and back via SetTarget/Reset.
//
// Notes:
//   - The engine does not know where target words come from; see package words.
//   - Every mutation swaps in a new State under the mutex and notifies watchers.

package game

import (
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Engine owns one puzzle. It is safe for concurrent use, though callers are
// expected to drive it from one place at a time.
type Engine struct {
	mu       sync.RWMutex
	maxTries int
	state    State
	watchers map[int]chan State
	nextID   int
}

// New constructs an engine for target with maxTries allowed guesses.
func New(target string, maxTries int) (*Engine, error) {
	if maxTries <= 0 {
		return nil, ErrInvalidMaxTries
	}
	word, err := normalizeTarget(target)
	if err != nil {
		return nil, err
	}
	return &Engine{
		maxTries: maxTries,
		state:    freshState(word, maxTries),
		watchers: make(map[int]chan State),
	}, nil
}

// State returns the current snapshot.
func (e *Engine) State() State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state.clone()
}

// SetTarget installs a new word and starts the puzzle over.
// The previous state is kept when word is rejected.
func (e *Engine) SetTarget(word string) error {
	w, err := normalizeTarget(word)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.publish(freshState(w, e.maxTries))
	return nil
}

// Reset starts the puzzle over with the current target word.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.publish(freshState(e.state.TargetWord, e.maxTries))
}

// SubmitGuess evaluates guess against the target and advances the puzzle.
// Returns the outcome and, when accepted, the per-letter statuses.
//
// Validation rules:
//   - Game must not be over (RejectedGameOver).
//   - Normalized guess must have as many letters as the target (RejectedLength).
//
// Rejected guesses leave the state untouched and do not consume a try.
func (e *Engine) SubmitGuess(guess string) (Outcome, []Status) {
	out, statuses, _ := e.Guess(guess)
	return out, statuses
}

// Guess is SubmitGuess that also returns the state right after this guess,
// taken under the same lock. Only the guess that ends the game sees
// Accepted together with IsGameOver.
func (e *Engine) Guess(guess string) (Outcome, []Status, State) {
	g := Normalize(guess)

	e.mu.Lock()
	defer e.mu.Unlock()
	cur := e.state
	if cur.IsGameOver {
		return RejectedGameOver, nil, cur.clone()
	}
	if utf8.RuneCountInString(g) != utf8.RuneCountInString(cur.TargetWord) {
		return RejectedLength, nil, cur.clone()
	}

	statuses := Evaluate(cur.TargetWord, g)
	next := cur.clone()
	next.Guesses = append(next.Guesses, g)
	next.LetterResults = append(next.LetterResults, statuses)
	next.RemainingTries = cur.RemainingTries - 1
	next.IsWin = allCorrect(statuses)
	next.IsGameOver = next.IsWin || next.RemainingTries <= 0
	e.publish(next)

	return Accepted, append([]Status(nil), statuses...), next.clone()
}

// Evaluate implements the two-pass scoring algorithm.
//
// Pass 1:
//   - Count every target letter.
//   - Mark exact matches as correct and consume one count each.
//
// Pass 2:
//   - For each non-correct guess letter: if count remains, mark present and
//     consume it; otherwise mark absent.
//
// Correct placements are credited before present ones, so a repeated letter
// never earns more marks than it has occurrences in the target.
// Returns nil when target and guess differ in length.
func Evaluate(target, guess string) []Status {
	t := []rune(target)
	g := []rune(guess)
	if len(t) != len(g) {
		return nil
	}

	counts := make(map[rune]int, len(t))
	for _, r := range t {
		counts[r]++
	}

	res := make([]Status, len(g))
	for i := range g {
		if g[i] == t[i] {
			res[i] = StatusCorrect
			counts[g[i]]--
		}
	}
	for i := range g {
		if res[i] == StatusCorrect {
			continue
		}
		if counts[g[i]] > 0 {
			res[i] = StatusPresent
			counts[g[i]]--
		} else {
			res[i] = StatusAbsent
		}
	}
	return res
}

// Normalize trims surrounding whitespace, composes accents (NFC) and
// upper-cases s, so "crâne", "CRÂNE" and a decomposed "crâne" compare equal.
func Normalize(s string) string {
	return strings.ToUpper(norm.NFC.String(strings.TrimSpace(s)))
}

// normalizeTarget normalizes word and rejects empty or non-letter targets.
func normalizeTarget(word string) (string, error) {
	w := Normalize(word)
	if w == "" {
		return "", ErrEmptyTarget
	}
	for _, r := range w {
		if !unicode.IsLetter(r) {
			return "", ErrInvalidTarget
		}
	}
	return w, nil
}

// allCorrect returns true if every status is correct.
func allCorrect(s []Status) bool {
	for _, x := range s {
		if x != StatusCorrect {
			return false
		}
	}
	return true
}
