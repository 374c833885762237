package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/infosphere/wordgame/internal/game"
	"github.com/infosphere/wordgame/internal/words"
)

type playOptions struct {
	mode   string
	tries  int
	size   int
	remote bool
	strict bool
}

var playOpts playOptions

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play in the terminal",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		lists, err := words.LoadLists(cfg.AnswersFile, cfg.AllowedFile)
		if err != nil {
			return err
		}
		opts := playOpts
		if opts.tries == 0 {
			opts.tries = cfg.MaxTries
		}
		opts.strict = opts.strict || cfg.StrictGuesses
		src := buildSource(cfg, lists, opts.remote)
		return play(cmd.Context(), src, lists, opts, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func init() {
	playCmd.Flags().StringVar(&playOpts.mode, "mode", "normal", "normal | daily | weekly | monthly")
	playCmd.Flags().IntVar(&playOpts.tries, "tries", 0, "number of tries (default MAX_TRIES)")
	playCmd.Flags().IntVar(&playOpts.size, "size", words.DefaultMaxSize, "maximum word size (normal mode)")
	playCmd.Flags().BoolVar(&playOpts.remote, "remote", false, "fetch the word from the remote API")
	playCmd.Flags().BoolVar(&playOpts.strict, "strict", false, "only accept guesses from the word list")
}

// board renders tiles with colours suited to the output.
type board struct {
	tile  map[game.Status]lipgloss.Style
	key   map[game.Status]lipgloss.Style
	blank lipgloss.Style
	note  lipgloss.Style
}

func newBoard(out io.Writer) board {
	r := lipgloss.NewRenderer(out)
	tile := func(bg string) lipgloss.Style {
		return r.NewStyle().Bold(true).Padding(0, 1).
			Foreground(lipgloss.Color("#ffffff")).Background(lipgloss.Color(bg))
	}
	return board{
		tile: map[game.Status]lipgloss.Style{
			game.StatusCorrect: tile("#538d4e"),
			game.StatusPresent: tile("#b59f3b"),
			game.StatusAbsent:  tile("#3a3a3c"),
		},
		key: map[game.Status]lipgloss.Style{
			game.StatusCorrect: r.NewStyle().Foreground(lipgloss.Color("#538d4e")),
			game.StatusPresent: r.NewStyle().Foreground(lipgloss.Color("#b59f3b")),
			game.StatusAbsent:  r.NewStyle().Faint(true).Strikethrough(true),
		},
		blank: r.NewStyle().Padding(0, 1).Faint(true),
		note:  r.NewStyle().Italic(true),
	}
}

// row renders one evaluated guess.
func (b board) row(guess string, statuses []game.Status) string {
	letters := []rune(guess)
	cells := make([]string, len(letters))
	for i, l := range letters {
		cells[i] = b.tile[statuses[i]].Render(string(l))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
}

// render draws the whole grid, padding unused tries with blanks.
func (b board) render(st game.State) string {
	rows := make([]string, 0, st.MaxTries)
	for i, g := range st.Guesses {
		rows = append(rows, b.row(g, st.LetterResults[i]))
	}
	empty := b.blank.Render(strings.Repeat("_ ", st.WordLength()-1) + "_")
	for len(rows) < st.MaxTries {
		rows = append(rows, empty)
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// keyboard lists the letters already tried, coloured by best status.
func (b board) keyboard(st game.State) string {
	kb := st.Keyboard()
	var sb strings.Builder
	for r := 'A'; r <= 'Z'; r++ {
		if s, ok := kb[r]; ok {
			sb.WriteString(b.key[s].Render(string(r)))
		} else {
			sb.WriteRune(r)
		}
	}
	var extra []rune
	for r := range kb {
		if r < 'A' || r > 'Z' {
			extra = append(extra, r)
		}
	}
	slices.Sort(extra)
	for _, r := range extra {
		sb.WriteString(" " + b.key[kb[r]].Render(string(r)))
	}
	return sb.String()
}

// play runs one game, reading guesses line by line until the game ends or in closes.
func play(ctx context.Context, src words.Source, lists *words.Lists, opts playOptions, in io.Reader, out io.Writer) error {
	mode, err := words.ParseMode(opts.mode)
	if err != nil {
		return err
	}
	target, err := src.Word(ctx, words.Request{Mode: mode, MaxSize: opts.size})
	if err != nil {
		return fmt.Errorf("play: pick word: %w", err)
	}
	eng, err := game.New(target, opts.tries)
	if err != nil {
		return fmt.Errorf("play: %w", err)
	}

	b := newBoard(out)
	st := eng.State()
	fmt.Fprintf(out, "%s game: %d letters, %d tries. Empty line to quit.\n", mode, st.WordLength(), st.MaxTries)

	sc := bufio.NewScanner(in)
	for !st.IsGameOver {
		fmt.Fprint(out, "> ")
		if !sc.Scan() {
			break
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			break
		}
		if opts.strict && lists != nil && utf8.RuneCountInString(game.Normalize(line)) == st.WordLength() && !lists.IsAllowed(line) {
			fmt.Fprintln(out, b.note.Render("not in word list"))
			continue
		}
		if outcome, _ := eng.SubmitGuess(line); outcome == game.RejectedLength {
			fmt.Fprintln(out, b.note.Render(fmt.Sprintf("need %d letters", st.WordLength())))
			continue
		}
		st = eng.State()
		fmt.Fprintln(out, b.render(st))
		fmt.Fprintln(out, b.keyboard(st))
	}
	if err := sc.Err(); err != nil {
		return err
	}

	switch st.Phase() {
	case game.PhaseWon:
		fmt.Fprintf(out, "You won in %d/%d!\n", len(st.Guesses), st.MaxTries)
	case game.PhaseLost:
		fmt.Fprintf(out, "Out of tries. The word was %s.\n", st.TargetWord)
	default:
		fmt.Fprintf(out, "Gave up. The word was %s.\n", st.TargetWord)
	}
	return nil
}
