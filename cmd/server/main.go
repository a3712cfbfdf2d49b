package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/mswatii/cs2-tracker/internal/api"
	"github.com/mswatii/cs2-tracker/internal/backend"
	"github.com/mswatii/cs2-tracker/internal/config"
	"github.com/mswatii/cs2-tracker/internal/database"
	"github.com/mswatii/cs2-tracker/internal/logger"
	"github.com/mswatii/cs2-tracker/internal/scraper"
	"github.com/mswatii/cs2-tracker/internal/search"
	"github.com/mswatii/cs2-tracker/internal/session"
	"github.com/mswatii/cs2-tracker/internal/tracker"
	"github.com/valyala/fasthttp"
)

func main() {
	log := logger.GetLogger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := log.Configure(cfg.Log.Level, cfg.Log.Format, cfg.Log.Output, cfg.Log.MaxSizeMB, cfg.Log.MaxAge); err != nil {
		log.Fatalf("Failed to configure logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Open the local store holding the session and the rate cache
	store, err := database.Open(ctx, cfg.Store)
	if err != nil {
		log.Fatalf("Failed to open %s store: %v", cfg.Store.Type, err)
	}
	defer store.Close()

	client := backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout, log)

	sess := session.New(store, client, log)
	if err := sess.Init(ctx); err != nil {
		log.Fatalf("Failed to restore session: %v", err)
	}

	rates := scraper.NewRateCache(store, cfg.Exchange, log)
	log.Infof("USD to INR exchange rate: %.4f", rates.GetRate(ctx))

	trackers := tracker.NewSynchronizer(client, sess, cfg.Tracker.ImageConcurrency, log)
	sortKey, err := tracker.ParseSortKey(cfg.Tracker.DefaultSort)
	if err != nil {
		log.Fatalf("Invalid DEFAULT_SORT: %v", err)
	}
	trackers.SetSortKey(sortKey)
	if err := trackers.Load(ctx); err != nil {
		log.Warnf("Initial tracker load failed: %v", err)
	}

	handler, err := api.NewHandler(api.Deps{
		Session:  sess,
		Trackers: trackers,
		Searcher: search.NewSearcher(client, cfg.Search.Count),
		Rates:    rates,
	}, cfg.Server.TemplateDir, cfg.Server.StaticDir, log)
	if err != nil {
		log.Fatalf("Failed to initialize handler: %v", err)
	}

	server := &fasthttp.Server{
		Handler:      handler.HandleRequest,
		Name:         "cs2-tracker",
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		log.Info("Shutting down server")
		if err := server.Shutdown(); err != nil {
			log.Errorf("Error during shutdown: %v", err)
		}
	}()

	log.Infof("Starting server on %s (backend %s)", cfg.Server.Address(), client.BaseURL())
	if err := server.ListenAndServe(cfg.Server.Address()); err != nil {
		log.Fatalf("Error starting server: %v", err)
	}
}
