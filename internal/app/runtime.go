package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"netwatch/internal/bus"
	"netwatch/internal/config"
	"netwatch/internal/connectivity"
	"netwatch/internal/history"
	"netwatch/internal/logging"
	"netwatch/internal/notifications"
	"netwatch/internal/source"
)

// Runtime owns every long-lived component of the app and tears them
// down in reverse order on Close.
type Runtime struct {
	Ctx    context.Context
	cancel context.CancelFunc

	Paths  Paths
	Config config.AppConfig

	LogManager *logging.Manager
	Bus        *bus.PubSubBus
	DB         *sql.DB

	TransitionRepo *history.TransitionRepo
	WriterQueue    *history.WriterQueue

	Source  *source.SystemSource
	Tracker *connectivity.Tracker

	// Foreground mirrors the window foreground state; the UI flips it
	// and the notification service reads it.
	Foreground atomic.Bool

	closeOnce sync.Once
}

func Initialize(parent context.Context) (*Runtime, error) {
	paths, err := ResolvePaths()
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(paths.ConfigFile)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(parent)
	rt := &Runtime{
		Ctx:    ctx,
		cancel: cancel,
		Paths:  paths,
		Config: cfg,
	}
	rt.Foreground.Store(true)

	logMgr := logging.NewManager()
	if err := logMgr.Configure(cfg.Logging, paths.LogFile); err != nil {
		cancel()
		return nil, fmt.Errorf("configure logging: %w", err)
	}
	rt.LogManager = logMgr
	slog.Info("starting netwatch runtime", "version", BuildVersion(), "build_date", BuildDateYMD())

	db, err := history.Open(ctx, paths.DBFile)
	if err != nil {
		_ = rt.Close()
		return nil, err
	}
	rt.DB = db
	rt.TransitionRepo = history.NewTransitionRepo(db)

	rt.Bus = bus.New(logMgr.Logger("bus"))

	writerQueue := history.NewWriterQueue(logMgr.Logger("history"), 128)
	writerQueue.Start(ctx)
	rt.WriterQueue = writerQueue

	if cfg.History.Enabled {
		retention := time.Duration(cfg.History.RetentionDays) * 24 * time.Hour
		recorder := history.NewRecorder(rt.Bus, writerQueue, rt.TransitionRepo, retention, logMgr.Logger("history"))
		recorder.Start(ctx)
	}

	sender := notifications.NewBeeepSender("", logMgr.Logger("notifications"))
	notifyService := notifications.NewService(
		rt.Bus,
		func() config.NotificationConfig { return rt.Config.Notifications },
		rt.Foreground.Load,
		sender,
		logMgr.Logger("notifications"),
	)
	notifyService.Start(ctx)

	rt.Source = source.NewSystemSource(logMgr.Logger("source"), cfg.Monitor.PollInterval())
	rt.Source.Start(ctx)

	rt.Tracker = connectivity.NewTracker(rt.Source, rt.Bus, logMgr.Logger("tracker"))
	if err := rt.Tracker.Start(ctx); err != nil {
		_ = rt.Close()
		return nil, err
	}

	return rt, nil
}

func (r *Runtime) Close() error {
	r.closeOnce.Do(func() {
		if r.Tracker != nil {
			r.Tracker.Dispose()
		}
		r.cancel()
		if r.Bus != nil {
			r.Bus.Close()
		}
		if r.DB != nil {
			if err := r.DB.Close(); err != nil {
				slog.Warn("close history db", "error", err)
			}
		}
		if r.LogManager != nil {
			if err := r.LogManager.Close(); err != nil {
				slog.Warn("close log manager", "error", err)
			}
		}
	})

	return nil
}
