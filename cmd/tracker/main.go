package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path"

	"github.com/google/subcommands"
	"github.com/mswatii/cs2-tracker/internal/cli"
	"github.com/mswatii/cs2-tracker/internal/config"
	"github.com/mswatii/cs2-tracker/internal/logger"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	cli.Register(commander)
	flag.Parse()

	log := logger.GetLogger()
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(int(subcommands.ExitFailure))
	}
	if err := log.Configure(cfg.Log.Level, cfg.Log.Format, cfg.Log.Output, cfg.Log.MaxSizeMB, cfg.Log.MaxAge); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(int(subcommands.ExitFailure))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	app, err := cli.Open(ctx, cfg, log)
	if err != nil {
		stop()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(int(subcommands.ExitFailure))
	}

	status := commander.Execute(ctx, app)
	app.Close()
	stop()
	os.Exit(int(status))
}
