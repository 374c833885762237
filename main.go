// main.go
//
// wordgame command line.
//   - serve: HTTP API (see internal/httpserver)
//   - play:  interactive terminal game
//   - word:  print a target word from the configured source
//
// Configuration comes from config.Load (.env, CONFIG_FILE, environment).

package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/infosphere/wordgame/internal/config"
	"github.com/infosphere/wordgame/internal/words"
)

var cfg config.Config

var rootCmd = &cobra.Command{
	Use:           "wordgame",
	Short:         "Word-guessing puzzle server and terminal client",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = config.Load(); err != nil {
			return err
		}
		if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
			zerolog.SetGlobalLevel(lvl)
		}
		return nil
	},
}

var wordOpts struct {
	mode   string
	size   int
	remote bool
}

var wordCmd = &cobra.Command{
	Use:   "word",
	Short: "Print a target word from the configured source",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := words.ParseMode(wordOpts.mode)
		if err != nil {
			return err
		}
		lists, err := words.LoadLists(cfg.AnswersFile, cfg.AllowedFile)
		if err != nil {
			return err
		}
		src := buildSource(cfg, lists, wordOpts.remote)
		w, err := src.Word(cmd.Context(), words.Request{Mode: mode, MaxSize: wordOpts.size})
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), w)
		return err
	},
}

func init() {
	wordCmd.Flags().StringVar(&wordOpts.mode, "mode", "normal", "normal | daily | weekly | monthly")
	wordCmd.Flags().IntVar(&wordOpts.size, "size", words.DefaultMaxSize, "maximum word size (normal mode)")
	wordCmd.Flags().BoolVar(&wordOpts.remote, "remote", false, "force the remote word API")

	rootCmd.AddCommand(serveCmd, playCmd, wordCmd)
}

// wordSalt derives the periodic-word salt from APP_SECRET.
func wordSalt(c config.Config) string {
	return hex.EncodeToString(c.DeriveKey(config.PurposeWordSalt))
}

// buildSource wires the configured word source. forceRemote behaves like
// WORD_SOURCE=fallback when the config says local.
func buildSource(c config.Config, lists *words.Lists, forceRemote bool) words.Source {
	local := words.NewLocalSource(lists, wordSalt(c))
	kind := strings.ToLower(c.WordSource)
	if forceRemote && kind == "local" {
		kind = "fallback"
	}
	switch kind {
	case "remote":
		return words.NewRemoteSource(c.WordAPIURL, c.WordAPITimeout)
	case "fallback":
		return words.Fallback(words.NewRemoteSource(c.WordAPIURL, c.WordAPITimeout), local)
	default:
		return local
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		log.Fatal().Err(err).Msg("wordgame exited")
	}
}
