package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"netwatch/internal/app"
	"netwatch/internal/config"
	"netwatch/internal/connectivity"
	"netwatch/internal/logging"
	"netwatch/internal/source"
)

func main() {
	if err := run(); err != nil {
		slog.Error("run debug tool", "error", err)
		os.Exit(1)
	}
}

func run() error {
	pollInterval := flag.Duration("poll-interval", source.DefaultPollInterval, "interface poll interval, e.g. 2s")
	listenFor := flag.Duration("listen-for", 0, "listen duration, e.g. 30s (0 = until interrupted)")
	once := flag.Bool("once", false, "print the current state and exit")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	paths, err := app.ResolvePaths()
	if err != nil {
		return fmt.Errorf("resolve paths: %w", err)
	}
	cfg, err := config.Load(paths.ConfigFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logMgr := logging.NewManager()
	cfg.Logging.LogToFile = false
	if err := logMgr.Configure(cfg.Logging, paths.LogFile); err != nil {
		return fmt.Errorf("configure logging: %w", err)
	}
	logger := logMgr.Logger("cli")
	logger.Info("starting netwatch debug", "version", app.BuildVersion(), "build_date", app.BuildDateYMD())

	src := source.NewSystemSource(logMgr.Logger("source"), *pollInterval)
	src.Start(ctx)

	tracker := connectivity.NewTracker(src, nil, logMgr.Logger("tracker"))
	defer tracker.Dispose()
	if err := tracker.Start(ctx); err != nil {
		return err
	}

	fmt.Printf("current: %s\n", tracker.Current())
	if *once {
		return nil
	}

	sub := tracker.Subscribe()
	defer tracker.Unsubscribe(sub)

	listenCtx := ctx
	if *listenFor > 0 {
		var cancel context.CancelFunc
		listenCtx, cancel = context.WithTimeout(ctx, *listenFor)
		defer cancel()
	}

	for {
		select {
		case <-listenCtx.Done():
			return nil
		case raw, ok := <-sub:
			if !ok {
				return nil
			}
			state, ok := raw.(connectivity.State)
			if !ok {
				continue
			}
			fmt.Printf("%s  %s\n", time.Now().Format("15:04:05"), state)
		}
	}
}
