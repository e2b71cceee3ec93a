package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"os"
	"os/signal"
	"syscall"

	"price-lookup/internal/apiclient"
	"price-lookup/internal/cache"
	"price-lookup/internal/config"
	"price-lookup/internal/presenter"
	"price-lookup/internal/scanner"
	"price-lookup/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	reset := flag.Bool("reset", false, "forget the remembered scanner and pending priming, then exit")
	flag.Parse()

	// Load configuration
	cfg := config.LoadStation()

	// Initialize logger
	appLogger := logger.New(cfg.Environment, "scanstation")
	defer appLogger.Sync()

	appLogger.Info("🚀 Starting scan station",
		zap.String("station", cfg.StationID),
		zap.String("api", cfg.APIBase),
		zap.Strings("devices", cfg.Devices),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := cache.NewCache(cfg, appLogger)
	defer store.Close()
	prefs := scanner.NewCachePreferences(store, cfg.StationID)

	if *reset {
		if err := prefs.Reset(ctx); err != nil {
			appLogger.Fatal("Failed to reset station preferences", zap.Error(err))
		}
		appLogger.Info("✅ Station preferences cleared")
		return
	}

	api := apiclient.New(cfg.APIBase, cfg.APITimeout, appLogger)
	wedge := make(chan string, 1)
	camera := scanner.NewLineCamera(scanner.ParseDevices(cfg.Devices), wedge)

	view := newConsoleView(ctx, os.Stdout, presenter.NewDetail(api, appLogger), presenter.OSC52{W: os.Stdout}, appLogger)
	ctrl := scanner.NewController(scanner.Options{
		Camera:       camera,
		Searcher:     api,
		Preferences:  prefs,
		View:         view,
		Logger:       appLogger,
		DedupeWindow: cfg.DedupeWindow,
		Warmup:       cfg.Warmup,
		PrimeTTL:     cfg.PrimeTTL,
	})

	con := &console{
		ctrl:   ctrl,
		api:    api,
		prefs:  prefs,
		view:   view,
		wedge:  wedge,
		logger: appLogger,
	}

	view.printf("Scan station %s. Type :help for commands.\n", cfg.StationID)
	if err := ctrl.Start(ctx); err == nil {
		d := ctrl.Device()
		view.printf("Scanning with %s (%s).\n", d.Label, d.ID)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return con.run(gctx, readLines(os.Stdin))
	})
	g.Go(func() error {
		<-gctx.Done()
		return ctrl.Stop()
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errQuit) && !errors.Is(err, io.EOF) {
		appLogger.Error("Scan station stopped with error", zap.Error(err))
		return
	}
	appLogger.Info("Scan station exited")
}
