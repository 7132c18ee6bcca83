package app

import (
	"context"
	"log/slog"
	"os"

	"golang.org/x/sync/errgroup"

	cfg "github.com/shopops/order-csv-exporter/config"
	"github.com/shopops/order-csv-exporter/internal/cache"
	rediscache "github.com/shopops/order-csv-exporter/internal/cache/redis"
	"github.com/shopops/order-csv-exporter/internal/errors"
	"github.com/shopops/order-csv-exporter/internal/server"
	"github.com/shopops/order-csv-exporter/internal/settings"
	"github.com/shopops/order-csv-exporter/internal/store"
	"github.com/shopops/order-csv-exporter/internal/store/postgres"
)

type App struct {
	Config       *cfg.AppConfig
	exitCh       chan error
	shutdown     func(ctx context.Context) error
	Store        store.Store
	Cache        cache.Cache
	Settings     *settings.Store
	Orchestrator *Orchestrator
	Scheduler    *Scheduler
	server       *server.Server

	workers       *errgroup.Group
	cancelWorkers context.CancelFunc
}

// New creates a fully initialized App.
func New(config *cfg.AppConfig, shutdown func(ctx context.Context) error) (*App, error) {
	app := &App{
		Config:   config,
		shutdown: shutdown,
		exitCh:   make(chan error),
	}

	if err := app.initStore(); err != nil {
		return nil, err
	}
	if err := app.initRedis(); err != nil {
		return nil, err
	}
	if err := app.initSettings(); err != nil {
		return nil, err
	}

	app.Orchestrator = NewOrchestrator(app.Store)
	app.Scheduler = NewScheduler(app.Cache)

	if err := app.initServer(); err != nil {
		return nil, err
	}

	return app, nil
}

// --------- Private init methods ---------

func (app *App) initStore() error {
	if app.Config.Database == nil {
		return errors.New("database config is nil")
	}
	app.Store = postgres.New(app.Config.Database)
	return nil
}

func (app *App) initRedis() error {
	redisCache, err := rediscache.NewRedisCache(app.Config.Redis.Addr, app.Config.Redis.Password, app.Config.Redis.DB)
	if err != nil {
		return errors.New("unable to initialize Redis", errors.WithCause(err))
	}
	app.Cache = redisCache
	return nil
}

func (app *App) initSettings() error {
	if app.Config.Export == nil || app.Config.Export.SettingsFile == "" {
		return errors.New("settings file is not configured")
	}
	app.Settings = settings.NewStore(app.Config.Export.SettingsFile)
	return nil
}

func (app *App) initServer() error {
	srv, err := server.Build(app.Config.HTTP, app.Handler(), app.exitCh)
	if err != nil {
		return errors.New("failed to build server", errors.WithCause(err))
	}
	app.server = srv
	return nil
}

// Start runs the DB, HTTP server, scheduler and background workers, then
// blocks until a fatal error or a stop signal arrives on the exit channel.
func (app *App) Start(ctx context.Context) error {
	if err := app.Store.Open(); err != nil {
		return errors.New("failed to open store", errors.WithCause(err))
	}

	if err := app.armSchedule(); err != nil {
		return err
	}

	workerCtx, cancel := context.WithCancel(ctx)
	app.cancelWorkers = cancel
	app.workers = app.StartExportWorkers(workerCtx)

	go app.server.Start()

	return <-app.exitCh
}

// armSchedule loads the persisted schedule config, arms the scheduler from it
// and re-arms on every settings file change.
func (app *App) armSchedule() error {
	scheduleCfg, err := app.Settings.Load()
	if err != nil {
		return errors.New("failed to load export settings", errors.WithCause(err))
	}

	// Materialize the file so the watcher has something to watch.
	if _, statErr := os.Stat(app.Settings.Path()); os.IsNotExist(statErr) {
		if err := app.Settings.Save(scheduleCfg); err != nil {
			return err
		}
	}

	app.Scheduler.Start()
	app.Scheduler.Apply(scheduleCfg)

	if err := app.Settings.Watch(app.Scheduler.Apply); err != nil {
		return errors.New("failed to watch export settings", errors.WithCause(err))
	}
	return nil
}

// Stop gracefully shuts down all services
func (app *App) Stop() error {
	slog.Info("order_csv_exporter.main.stop_starting")

	if app.server != nil {
		app.server.Stop()
		slog.Info("server stopped")
	}

	if app.Scheduler != nil {
		app.Scheduler.Stop()
		slog.Info("scheduler stopped")
	}

	if app.cancelWorkers != nil {
		app.cancelWorkers()
		if app.workers != nil {
			_ = app.workers.Wait()
		}
		slog.Info("workers stopped")
	}

	if app.Cache != nil {
		if err := app.Cache.Close(); err != nil {
			slog.Error("cache close error", "err", err)
		} else {
			slog.Info("cache closed")
		}
	}

	if app.Store != nil {
		if err := app.Store.Close(); err != nil {
			slog.Error("store close error", "err", err)
		} else {
			slog.Info("store closed")
		}
	}

	if app.shutdown != nil {
		if err := app.shutdown(context.Background()); err != nil {
			slog.Error("shutdown hook error", "err", err)
		} else {
			slog.Info("shutdown hook executed")
		}
	}

	slog.Info("order_csv_exporter.main.stop_complete")
	return nil
}
