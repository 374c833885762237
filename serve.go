package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/infosphere/wordgame/assets"
	"github.com/infosphere/wordgame/internal/config"
	"github.com/infosphere/wordgame/internal/daily"
	"github.com/infosphere/wordgame/internal/httpserver"
	"github.com/infosphere/wordgame/internal/store"
	"github.com/infosphere/wordgame/internal/words"
)

const (
	sweepEvery      = time.Minute
	shutdownTimeout = 10 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context(), cfg)
	},
}

// serve runs the HTTP server and the session sweeper until ctx is cancelled.
func serve(ctx context.Context, c config.Config) error {
	lists, err := words.LoadLists(c.AnswersFile, c.AllowedFile)
	if err != nil {
		return err
	}
	a, g := lists.Stats()
	log.Info().Int("answers", a).Int("allowed", g).Msg("word lists loaded")

	db, err := store.OpenDB(c.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := store.Migrate(db, assets.Migrations()); err != nil {
		return err
	}

	srv := httpserver.New(httpserver.Deps{
		Store:         store.NewMemoryStore(),
		History:       store.NewHistory(db),
		Daily:         daily.NewStore(db),
		Lists:         lists,
		Source:        buildSource(c, lists, false),
		Local:         words.NewLocalSource(lists, wordSalt(c)),
		ShareKey:      c.DeriveKey(config.PurposeShareToken),
		ClientOrigin:  c.ClientOrigin,
		MaxTries:      c.MaxTries,
		StrictGuesses: c.StrictGuesses,
		Production:    c.Production,
	})

	grp, gctx := errgroup.WithContext(ctx)
	hs := &http.Server{
		Addr:              ":" + c.Port,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		// Request contexts end with the group, which also closes watch streams.
		BaseContext: func(net.Listener) context.Context { return gctx },
	}

	grp.Go(func() error {
		log.Info().Str("port", c.Port).Str("source", c.WordSource).Msg("starting wordgame server")
		if err := hs.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	grp.Go(func() error {
		return srv.Sweep(gctx, sweepEvery, c.SessionIdle)
	})
	grp.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info().Msg("shutting down")
		return hs.Shutdown(sctx)
	})
	return grp.Wait()
}
