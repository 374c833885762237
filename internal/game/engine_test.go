package game

import (
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	C = StatusCorrect
	P = StatusPresent
	A = StatusAbsent
)

func newEngine(t *testing.T, target string, tries int) *Engine {
	t.Helper()
	e, err := New(target, tries)
	require.NoError(t, err)
	return e
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		target, guess string
		want          []Status
	}{
		{"APPLE", "APPLE", []Status{C, C, C, C, C}},
		{"APPLE", "PAPER", []Status{P, P, C, P, A}},
		{"ALLOY", "LOLLY", []Status{P, P, C, A, C}},
		{"CRANE", "DUMPY", []Status{A, A, A, A, A}},
		{"ABBEY", "BABES", []Status{P, P, C, C, A}},
		{"SPEED", "EERIE", []Status{P, P, A, A, A}},
		{"ROBOT", "FLOOR", []Status{A, A, P, C, P}},
		{"MAISON", "MOISIS", []Status{C, P, C, C, A, A}},
	}
	for _, tt := range tests {
		t.Run(tt.target+"/"+tt.guess, func(t *testing.T) {
			assert.Equal(t, tt.want, Evaluate(tt.target, tt.guess))
		})
	}
}

func TestEvaluateLengthMismatch(t *testing.T) {
	assert.Nil(t, Evaluate("APPLE", "APP"))
}

func TestEvaluateNeverOvercreditsRepeatedLetters(t *testing.T) {
	targets := []string{"ALLOY", "APPLE", "LEVEL", "SASSY", "MAMMA"}
	guesses := []string{"LLLLL", "PPPPP", "EEEEE", "SSSSS", "AMAMA"}
	for _, target := range targets {
		for _, guess := range guesses {
			res := Evaluate(target, guess)
			require.Len(t, res, len(target))

			credited := map[rune]int{}
			for i, r := range guess {
				if res[i] != StatusAbsent {
					credited[r]++
				}
			}
			for r, n := range credited {
				assert.LessOrEqual(t, n, strings.Count(target, string(r)), "%s vs %s letter %c", target, guess, r)
			}
		}
	}
}

func TestNewValidation(t *testing.T) {
	_, err := New("", 5)
	assert.ErrorIs(t, err, ErrEmptyTarget)

	_, err = New("   ", 5)
	assert.ErrorIs(t, err, ErrEmptyTarget)

	_, err = New("AB1DE", 5)
	assert.ErrorIs(t, err, ErrInvalidTarget)

	_, err = New("apple", 0)
	assert.ErrorIs(t, err, ErrInvalidMaxTries)

	e := newEngine(t, " apple ", DefaultMaxTries)
	s := e.State()
	assert.Equal(t, "APPLE", s.TargetWord)
	assert.Equal(t, 5, s.MaxTries)
	assert.Equal(t, 5, s.RemainingTries)
	assert.Empty(t, s.Guesses)
	assert.Empty(t, s.LetterResults)
	assert.Equal(t, PhaseReady, s.Phase())
}

func TestAccentedTargets(t *testing.T) {
	e := newEngine(t, "crâne", 3)
	assert.Equal(t, 5, e.State().WordLength())

	// Decomposed input (a + combining circumflex) matches the composed target.
	out, res := e.SubmitGuess("cra\u0302ne")
	require.Equal(t, Accepted, out)
	assert.Equal(t, []Status{C, C, C, C, C}, res)
	assert.True(t, e.State().IsWin)
}

func TestSubmitGuessWin(t *testing.T) {
	e := newEngine(t, "APPLE", 5)

	out, res := e.SubmitGuess("PAPER")
	require.Equal(t, Accepted, out)
	assert.Equal(t, []Status{P, P, C, P, A}, res)

	out, res = e.SubmitGuess("apple")
	require.Equal(t, Accepted, out)
	assert.Equal(t, []Status{C, C, C, C, C}, res)

	s := e.State()
	assert.True(t, s.IsWin)
	assert.True(t, s.IsGameOver)
	assert.Equal(t, PhaseWon, s.Phase())
	assert.Equal(t, 3, s.RemainingTries)
	assert.Equal(t, []string{"PAPER", "APPLE"}, s.Guesses)
	assert.Len(t, s.LetterResults, 2)

	out, res = e.SubmitGuess("APPLE")
	assert.Equal(t, RejectedGameOver, out)
	assert.Nil(t, res)
	assert.Equal(t, s, e.State())
}

func TestSubmitGuessLoss(t *testing.T) {
	e := newEngine(t, "APPLE", 3)
	for _, g := range []string{"CRANE", "DUMPY", "GHOST"} {
		out, _ := e.SubmitGuess(g)
		require.Equal(t, Accepted, out)
	}
	s := e.State()
	assert.True(t, s.IsGameOver)
	assert.False(t, s.IsWin)
	assert.Equal(t, 0, s.RemainingTries)
	assert.Equal(t, PhaseLost, s.Phase())

	out, _ := e.SubmitGuess("APPLE")
	assert.Equal(t, RejectedGameOver, out)
	assert.Equal(t, s, e.State())
}

func TestSubmitGuessWrongLengthIsNoop(t *testing.T) {
	e := newEngine(t, "APPLE", 5)
	_, _ = e.SubmitGuess("CRANE")
	before := e.State()

	for _, g := range []string{"", "APP", "APPLES", "  AP  "} {
		out, res := e.SubmitGuess(g)
		assert.Equal(t, RejectedLength, out, "guess %q", g)
		assert.Nil(t, res)
	}
	assert.Equal(t, before, e.State())
}

func TestInvariantsHoldAfterEveryGuess(t *testing.T) {
	e := newEngine(t, "LEVEL", 6)
	for _, g := range []string{"EVELL", "xx", "LEVER", "HELLO", "LEVEL", "LEVEL"} {
		e.SubmitGuess(g)
		s := e.State()
		assert.Equal(t, len(s.Guesses), len(s.LetterResults))
		assert.Equal(t, s.MaxTries-s.RemainingTries, len(s.Guesses))
		assert.GreaterOrEqual(t, s.RemainingTries, 0)
		for _, row := range s.LetterResults {
			assert.Len(t, row, 5)
		}
	}
	assert.True(t, e.State().IsWin)
	assert.Len(t, e.State().Guesses, 4)
}

func TestCaseInsensitivity(t *testing.T) {
	lower := newEngine(t, "APPLE", 5)
	upper := newEngine(t, "apple", 5)

	o1, r1 := lower.SubmitGuess("apple")
	o2, r2 := upper.SubmitGuess("  APPLE\n")
	assert.Equal(t, o1, o2)
	assert.Equal(t, r1, r2)
	assert.Equal(t, lower.State(), upper.State())
}

func TestResetReproducesResults(t *testing.T) {
	e := newEngine(t, "ALLOY", 5)
	guesses := []string{"LOLLY", "ALLEY", "ALOOF"}
	for _, g := range guesses {
		e.SubmitGuess(g)
	}
	first := e.State()

	e.Reset()
	s := e.State()
	assert.Equal(t, "ALLOY", s.TargetWord)
	assert.Equal(t, 5, s.RemainingTries)
	assert.Empty(t, s.Guesses)
	assert.False(t, s.IsGameOver)

	for _, g := range guesses {
		e.SubmitGuess(g)
	}
	if diff := cmp.Diff(first, e.State()); diff != "" {
		t.Errorf("replay after Reset differs (-first +replay):\n%s", diff)
	}
}

func TestSetTarget(t *testing.T) {
	e := newEngine(t, "APPLE", 2)
	e.SubmitGuess("CRANE")
	e.SubmitGuess("GHOST")
	require.True(t, e.State().IsGameOver)

	require.NoError(t, e.SetTarget("maison"))
	s := e.State()
	assert.Equal(t, "MAISON", s.TargetWord)
	assert.Equal(t, s.MaxTries, s.RemainingTries)
	assert.Empty(t, s.Guesses)
	assert.Empty(t, s.LetterResults)
	assert.False(t, s.IsGameOver)
	assert.False(t, s.IsWin)

	out, _ := e.SubmitGuess("APPLE")
	assert.Equal(t, RejectedLength, out)

	assert.ErrorIs(t, e.SetTarget(""), ErrEmptyTarget)
	assert.ErrorIs(t, e.SetTarget("two words"), ErrInvalidTarget)
	assert.Equal(t, "MAISON", e.State().TargetWord)
}

func TestStateIsACopy(t *testing.T) {
	e := newEngine(t, "APPLE", 5)
	e.SubmitGuess("PAPER")

	s := e.State()
	s.Guesses[0] = "XXXXX"
	s.LetterResults[0][0] = StatusCorrect

	fresh := e.State()
	assert.Equal(t, "PAPER", fresh.Guesses[0])
	assert.Equal(t, StatusPresent, fresh.LetterResults[0][0])
}

func TestKeyboard(t *testing.T) {
	e := newEngine(t, "APPLE", 5)
	e.SubmitGuess("PAPER")
	e.SubmitGuess("APPLY")

	kb := e.State().Keyboard()
	assert.Equal(t, StatusCorrect, kb['A'])
	assert.Equal(t, StatusCorrect, kb['P'])
	assert.Equal(t, StatusCorrect, kb['L'])
	assert.Equal(t, StatusPresent, kb['E'])
	assert.Equal(t, StatusAbsent, kb['R'])
	assert.Equal(t, StatusAbsent, kb['Y'])
	_, seen := kb['Z']
	assert.False(t, seen)
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "accepted", Accepted.String())
	assert.Equal(t, "rejected_length", RejectedLength.String())
	assert.Equal(t, "rejected_game_over", RejectedGameOver.String())
}

func TestGuessReturnsSnapshotOfThatGuess(t *testing.T) {
	e := newEngine(t, "LUNE", 2)

	out, statuses, st := e.Guess("loup")
	assert.Equal(t, Accepted, out)
	assert.Equal(t, []Status{C, A, P, A}, statuses)
	assert.Equal(t, []string{"LOUP"}, st.Guesses)
	assert.False(t, st.IsGameOver)

	out, _, st = e.Guess("lune")
	assert.Equal(t, Accepted, out)
	assert.True(t, st.IsGameOver)
	assert.True(t, st.IsWin)

	out, statuses, st = e.Guess("lune")
	assert.Equal(t, RejectedGameOver, out)
	assert.Nil(t, statuses)
	assert.Len(t, st.Guesses, 2)

	st.Guesses[0] = "XXXX"
	assert.Equal(t, "LOUP", e.State().Guesses[0])
}

func TestGuessOnlyFinalGuessSeesGameOver(t *testing.T) {
	const players = 8
	e := newEngine(t, "LUNE", players)

	var wg sync.WaitGroup
	var finished atomic.Int32
	for i := 0; i < players; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if out, _, st := e.Guess("loup"); out == Accepted && st.IsGameOver {
				finished.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), finished.Load())
	assert.True(t, e.State().IsGameOver)
}
