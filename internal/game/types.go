// internal/game/types.go
//
// Core type definitions for the word-guessing engine.
// Defines:
//   - Status: per-letter result of a guess (correct/present/absent).
//   - Outcome: whether SubmitGuess accepted or ignored a guess.
//   - State: immutable snapshot of one puzzle instance.

package game

import "errors"

// DefaultMaxTries is the number of guesses a puzzle allows when the caller
// does not choose one.
const DefaultMaxTries = 5

var (
	ErrEmptyTarget     = errors.New("game: empty target word")
	ErrInvalidTarget   = errors.New("game: target word must contain only letters")
	ErrInvalidMaxTries = errors.New("game: max tries must be positive")
)

// Status represents the evaluation result for a single letter in a guess.
// Possible values:
//   - "correct": letter is in the target at the same position.
//   - "present": letter is in the target at another position, and not all of
//     its occurrences were already credited.
//   - "absent":  letter is not in the target (or every occurrence is used up).
type Status string

const (
	StatusCorrect Status = "correct"
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
)

// rank orders statuses for keyboard hints: correct beats present beats absent.
func (s Status) rank() int {
	switch s {
	case StatusCorrect:
		return 2
	case StatusPresent:
		return 1
	default:
		return 0
	}
}

// Outcome reports what SubmitGuess did with a guess.
type Outcome int

const (
	Accepted Outcome = iota
	RejectedLength
	RejectedGameOver
)

func (o Outcome) String() string {
	switch o {
	case Accepted:
		return "accepted"
	case RejectedLength:
		return "rejected_length"
	case RejectedGameOver:
		return "rejected_game_over"
	default:
		return "unknown"
	}
}

// Phase is a coarse view of the state machine.
type Phase string

const (
	PhaseReady Phase = "ready"
	PhaseWon   Phase = "won"
	PhaseLost  Phase = "lost"
)

// State holds one snapshot of a puzzle. The engine never mutates a State it
// has published; every change produces a new one.
type State struct {
	TargetWord     string     `json:"targetWord"`
	MaxTries       int        `json:"maxTries"`
	RemainingTries int        `json:"remainingTries"`
	Guesses        []string   `json:"guesses"`
	LetterResults  [][]Status `json:"letterResults"`
	IsGameOver     bool       `json:"isGameOver"`
	IsWin          bool       `json:"isWin"`
}

// freshState returns the READY state for a target.
func freshState(target string, maxTries int) State {
	return State{
		TargetWord:     target,
		MaxTries:       maxTries,
		RemainingTries: maxTries,
		Guesses:        []string{},
		LetterResults:  [][]Status{},
	}
}

// Phase reports whether the puzzle is still being played, won or lost.
func (s State) Phase() Phase {
	switch {
	case s.IsWin:
		return PhaseWon
	case s.IsGameOver:
		return PhaseLost
	default:
		return PhaseReady
	}
}

// WordLength is the number of letters every guess must have.
func (s State) WordLength() int { return len([]rune(s.TargetWord)) }

// Keyboard returns the best status seen so far for every guessed letter.
func (s State) Keyboard() map[rune]Status {
	out := make(map[rune]Status)
	for i, guess := range s.Guesses {
		for j, r := range []rune(guess) {
			st := s.LetterResults[i][j]
			if prev, ok := out[r]; !ok || st.rank() > prev.rank() {
				out[r] = st
			}
		}
	}
	return out
}

// clone deep-copies the history slices so callers can't reach engine memory.
func (s State) clone() State {
	c := s
	c.Guesses = append([]string{}, s.Guesses...)
	c.LetterResults = make([][]Status, len(s.LetterResults))
	for i, row := range s.LetterResults {
		c.LetterResults[i] = append([]Status(nil), row...)
	}
	return c
}
