// Package app wires the daemon together: config, logging, storage, delivery,
// the notification substrate, the permission gate, and the scheduling
// coordinator.
package app

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"solace/internal/alerts"
	"solace/internal/config"
	"solace/internal/delivery"
	"solace/internal/eventbus"
	"solace/internal/permission"
	"solace/internal/services/logging"
	"solace/internal/storage"
	"solace/internal/substrate"
	logx "solace/pkg/logx"
)

type App struct {
	cfgm *config.Manager

	logSvc *logging.Service
	log    *slog.Logger
	llog   logx.Logger

	store storage.Store
	bus   eventbus.Bus

	telegram *delivery.Telegram // nil when delivery goes to the log adapter
	sub      *substrate.Service
	gate     *permission.Gate
	coord    *alerts.Coordinator

	exportCfg config.Export

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewApp(cfgPath string) (*App, error) {
	bootLog := logx.NewConsole("INFO")

	cfgm := config.NewManager(cfgPath, bootLog.With(logx.String("comp", "config")))
	cfg, err := cfgm.Load()
	if err != nil {
		return nil, err
	}

	logSvc, logger := logging.New(logging.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logging.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	})
	log := logger.With(slog.String("comp", "app"))
	llog := logx.NewConsole(cfg.Logging.Level)

	store, err := storage.Open(storage.Config{
		Driver:      cfg.Storage.Driver,
		Path:        cfg.Storage.Path,
		BusyTimeout: time.Duration(cfg.Storage.BusyTimeoutMS) * time.Millisecond,
	}, llog.With(logx.String("comp", "storage")))
	if err != nil {
		return nil, err
	}
	if store != nil {
		log.Info("storage enabled", slog.String("driver", cfg.Storage.Driver))
	}

	bus := eventbus.New()

	var adapter delivery.Adapter
	var tg *delivery.Telegram
	if cfg.Telegram.Enabled {
		tg, err = delivery.NewTelegram(delivery.TelegramConfig{
			Token:       cfg.Telegram.Token,
			ChatID:      cfg.Telegram.ChatID,
			PollTimeout: time.Duration(cfg.Telegram.PollTimeoutMS) * time.Millisecond,
		}, bus, logger.With(slog.String("comp", "telegram")))
		if err != nil {
			return nil, err
		}
		adapter = tg
	} else {
		adapter = delivery.NewLogAdapter(logger.With(slog.String("comp", "delivery")))
	}

	sub := substrate.New(substrate.Config{
		Timezone:   cfg.Notifications.Timezone,
		QueueSize:  cfg.Notifications.QueueSize,
		RatePerSec: cfg.Notifications.RatePerSec,
	}, store, adapter, logger.With(slog.String("comp", "substrate")))

	gate := permission.New(permission.Config{AutoGrant: cfg.Permissions.AutoGrant},
		store, logger.With(slog.String("comp", "permission")))

	coord := alerts.NewCoordinator(gate, sub, logger.With(slog.String("comp", "alerts")))

	return &App{
		cfgm:      cfgm,
		logSvc:    logSvc,
		log:       log,
		llog:      llog,
		store:     store,
		bus:       bus,
		telegram:  tg,
		sub:       sub,
		gate:      gate,
		coord:     coord,
		exportCfg: cfg.Export,
	}, nil
}

// Coordinator exposes the scheduling surface to callers embedding the app.
func (a *App) Coordinator() *alerts.Coordinator { return a.coord }

func (a *App) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	if err := a.sub.Start(runCtx); err != nil {
		cancel()
		return err
	}

	if a.telegram != nil {
		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			a.telegram.Start(runCtx)
		}()
	}

	// Activation events are where a UI would navigate; the daemon logs them.
	events, unsub := a.bus.Subscribe(16)
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		defer unsub()
		for {
			select {
			case <-runCtx.Done():
				return
			case e, ok := <-events:
				if !ok {
					return
				}
				a.log.Info("alert activated",
					slog.String("entity", e.EntityID),
					slog.String("kind", e.Kind))
			}
		}
	}()

	a.reconcile(runCtx)

	a.cfgm.OnChange = func(cfg config.Config) {
		a.logSvc.Apply(logging.Config{
			Level:   cfg.Logging.Level,
			Console: cfg.Logging.Console,
			File: logging.FileConfig{
				Enabled: cfg.Logging.File.Enabled,
				Path:    cfg.Logging.File.Path,
			},
		})
		a.exportCfg = cfg.Export
		a.reconcile(runCtx)
	}
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.cfgm.Watch(runCtx); err != nil {
			a.log.Warn("config watcher stopped", slog.Any("err", err))
		}
	}()

	a.log.Info("started")
	return nil
}

func (a *App) Stop(ctx context.Context) error {
	if a.cancel != nil {
		a.cancel()
	}
	a.sub.Stop(ctx)
	a.wg.Wait()
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn("storage close", slog.Any("err", err))
		}
	}
	a.log.Info("stopped")
	return a.logSvc.Close()
}
