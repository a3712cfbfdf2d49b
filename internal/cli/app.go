// Package cli implements the tracker command line front-end. Each user
// action is a subcommand; all of them share one App.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/subcommands"
	"github.com/mswatii/cs2-tracker/internal/backend"
	"github.com/mswatii/cs2-tracker/internal/config"
	"github.com/mswatii/cs2-tracker/internal/database"
	"github.com/mswatii/cs2-tracker/internal/logger"
	"github.com/mswatii/cs2-tracker/internal/scraper"
	"github.com/mswatii/cs2-tracker/internal/search"
	"github.com/mswatii/cs2-tracker/internal/session"
	"github.com/mswatii/cs2-tracker/internal/tracker"
)

// App is passed to every subcommand as its first Execute argument
type App struct {
	Session  *session.Session
	Trackers *tracker.Synchronizer
	Searcher *search.Searcher
	Rates    *scraper.RateCache
	Debounce time.Duration

	Out io.Writer
	In  io.Reader

	closer io.Closer
}

// Open wires the components from cfg and restores the session
func Open(ctx context.Context, cfg *config.Config, log *logger.Log) (*App, error) {
	store, err := database.Open(ctx, cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("unable to open %s store: %w", cfg.Store.Type, err)
	}

	client := backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout, log)
	sess := session.New(store, client, log)
	if err := sess.Init(ctx); err != nil {
		store.Close()
		return nil, err
	}

	trackers := tracker.NewSynchronizer(client, sess, cfg.Tracker.ImageConcurrency, log)
	sortKey, err := tracker.ParseSortKey(cfg.Tracker.DefaultSort)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("invalid DEFAULT_SORT: %w", err)
	}
	trackers.SetSortKey(sortKey)

	return &App{
		Session:  sess,
		Trackers: trackers,
		Searcher: search.NewSearcher(client, cfg.Search.Count),
		Rates:    scraper.NewRateCache(store, cfg.Exchange, log),
		Debounce: cfg.Search.Debounce,
		Out:      os.Stdout,
		In:       os.Stdin,
		closer:   store,
	}, nil
}

// Close releases the store
func (a *App) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}

// Register the subcommands.
func Register(c *subcommands.Commander) {
	c.Register(c.HelpCommand(), "")
	c.Register(c.FlagsCommand(), "")
	c.Register(c.CommandsCommand(), "")

	c.Register(&listCmd{}, "trackers")
	c.Register(&addCmd{}, "trackers")
	c.Register(&editCmd{}, "trackers")
	c.Register(&deleteCmd{}, "trackers")
	c.Register(&searchCmd{}, "trackers")

	c.Register(&setupCmd{}, "account")
	c.Register(&recoverCmd{}, "account")
	c.Register(&logoutCmd{}, "account")
	c.Register(&whoamiCmd{}, "account")

	c.Register(&rateCmd{}, "")
}

// appFrom extracts the App handed to Commander.Execute
func appFrom(args []interface{}) *App {
	if len(args) == 0 {
		return nil
	}
	app, _ := args[0].(*App)
	return app
}

// fail prints the user-facing message for err and reports failure
func (a *App) fail(err error, fallback string) subcommands.ExitStatus {
	fmt.Fprintln(a.errOut(), userMessage(err, fallback))
	return subcommands.ExitFailure
}

func (a *App) errOut() io.Writer {
	if a.Out == os.Stdout {
		return os.Stderr
	}
	return a.Out
}
