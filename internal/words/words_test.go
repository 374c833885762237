package words

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/infosphere/wordgame/internal/daily"
)

func TestLoadListsEmbedded(t *testing.T) {
	l, err := LoadLists("", "")
	require.NoError(t, err)

	answers, allowed := l.Stats()
	assert.Greater(t, answers, 50)
	assert.Greater(t, allowed, answers)

	assert.True(t, l.IsAnswer("maison"))
	assert.True(t, l.IsAllowed("MAISON"))
	assert.True(t, l.IsAllowed(" loup "))
	assert.False(t, l.IsAnswer("loup"))
	assert.False(t, l.IsAllowed("qwxyz"))
	for _, w := range l.Answers() {
		assert.True(t, Valid(w), w)
	}
}

func TestLoadListsFromFiles(t *testing.T) {
	dir := t.TempDir()
	ans := filepath.Join(dir, "answers.txt")
	all := filepath.Join(dir, "allowed.txt")
	require.NoError(t, os.WriteFile(ans, []byte("# comment\nLune\n\nétoile\nbad-word\nlune\n"), 0o644))
	require.NoError(t, os.WriteFile(all, []byte("soleil\n"), 0o644))

	l, err := LoadLists(ans, all)
	require.NoError(t, err)
	assert.Equal(t, []string{"LUNE", "ÉTOILE"}, l.Answers())
	assert.True(t, l.IsAllowed("soleil"))
	assert.False(t, l.IsAnswer("soleil"))

	// Only allowed file: used for both lists.
	l, err = LoadLists("", all)
	require.NoError(t, err)
	assert.Equal(t, []string{"SOLEIL"}, l.Answers())

	_, err = LoadLists(filepath.Join(dir, "missing.txt"), all)
	assert.Error(t, err)

	empty := filepath.Join(dir, "empty.txt")
	require.NoError(t, os.WriteFile(empty, []byte("123\n"), 0o644))
	_, err = LoadLists(empty, all)
	assert.Error(t, err)
}

func TestValid(t *testing.T) {
	assert.True(t, Valid("maison"))
	assert.True(t, Valid("Crâne"))
	assert.False(t, Valid(""))
	assert.False(t, Valid("   "))
	assert.False(t, Valid("porte-clé"))
	assert.False(t, Valid("abc1"))
}

func TestRandomAnswerRespectsMaxSize(t *testing.T) {
	l := NewLists([]string{"eau", "lune", "soleil", "voiture"}, nil)
	for i := 0; i < 50; i++ {
		w, err := l.RandomAnswer(4)
		require.NoError(t, err)
		assert.LessOrEqual(t, utf8.RuneCountInString(w), 4)
	}
	_, err := l.RandomAnswer(2)
	assert.ErrorIs(t, err, ErrNoWord)

	w, err := l.RandomAnswer(0)
	require.NoError(t, err)
	assert.True(t, l.IsAnswer(w))
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeNormal, m)

	m, err = ParseMode(" Weekly ")
	require.NoError(t, err)
	assert.Equal(t, ModeWeekly, m)

	_, err = ParseMode("hourly")
	assert.ErrorIs(t, err, ErrUnknownMode)

	p, ok := ModeMonthly.Period()
	assert.True(t, ok)
	assert.Equal(t, daily.Month, p)
	_, ok = ModeNormal.Period()
	assert.False(t, ok)
	assert.Equal(t, ModeWeekly, ModeFor(daily.Week))
}

func TestLocalSource(t *testing.T) {
	ctx := context.Background()
	l := NewLists([]string{"arbre", "lune", "maison", "soleil", "train", "vache"}, nil)
	src := NewLocalSource(l, "salt")
	src.now = func() time.Time { return time.Date(2026, 10, 18, 8, 0, 0, 0, time.UTC) }

	d1, err := src.Word(ctx, Request{Mode: ModeDaily})
	require.NoError(t, err)
	d2, err := src.Word(ctx, Request{Mode: ModeDaily})
	require.NoError(t, err)
	assert.Equal(t, d1, d2)

	key, idx, word := src.Challenge(daily.Day, src.now())
	assert.Equal(t, "2026-10-18", key)
	assert.Equal(t, d1, word)
	assert.Equal(t, l.Answers()[idx], word)

	// Later the same day: same word.
	src.now = func() time.Time { return time.Date(2026, 10, 18, 23, 59, 0, 0, time.UTC) }
	d3, err := src.Word(ctx, Request{Mode: ModeDaily})
	require.NoError(t, err)
	assert.Equal(t, d1, d3)

	w, err := src.Word(ctx, Request{Mode: ModeNormal, MaxSize: 4})
	require.NoError(t, err)
	assert.Equal(t, "LUNE", w)

	_, err = src.Word(ctx, Request{Mode: "hourly"})
	assert.ErrorIs(t, err, ErrUnknownMode)

	cctx, cancel := context.WithCancel(ctx)
	cancel()
	_, err = src.Word(cctx, Request{Mode: ModeDaily})
	assert.ErrorIs(t, err, context.Canceled)
}

type stubSource struct {
	word  string
	err   error
	calls int
}

func (s *stubSource) Word(ctx context.Context, req Request) (string, error) {
	s.calls++
	return s.word, s.err
}

func TestFallback(t *testing.T) {
	ctx := context.Background()
	primary := &stubSource{err: errors.New("offline")}
	secondary := &stubSource{word: "LUNE"}

	w, err := Fallback(primary, secondary).Word(ctx, Request{Mode: ModeDaily})
	require.NoError(t, err)
	assert.Equal(t, "LUNE", w)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, secondary.calls)

	primary = &stubSource{word: "SOLEIL"}
	secondary = &stubSource{word: "LUNE"}
	w, err = Fallback(primary, secondary).Word(ctx, Request{})
	require.NoError(t, err)
	assert.Equal(t, "SOLEIL", w)
	assert.Zero(t, secondary.calls)
}
