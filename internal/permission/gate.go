// Package permission implements the authorization gate in front of all alert
// scheduling. The user's decision is persisted so it survives restarts;
// before a decision exists the state is "not determined".
package permission

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"

	"solace/internal/alerts"
	"solace/internal/storage"
)

const decisionKey = "notification_permission"

// Config controls how an undecided gate answers its one prompt. A headless
// daemon has no dialog to show, so consent arrives through configuration.
type Config struct {
	// AutoGrant makes the first Request succeed. False means the first
	// Request records a denial until the user changes the config.
	AutoGrant bool
}

type decisionRecord struct {
	Granted bool `json:"granted"`
}

// Gate is a storage-backed alerts.Gate. The zero state with no persisted
// record reports AuthNotDetermined.
type Gate struct {
	cfg   Config
	store storage.Store
	log   *slog.Logger

	mu      sync.Mutex
	loaded  bool
	decided bool
	granted bool
}

// New builds a gate. store may be nil, in which case decisions are
// process-local only.
func New(cfg Config, store storage.Store, log *slog.Logger) *Gate {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Gate{cfg: cfg, store: store, log: log}
}

func (g *Gate) Status(ctx context.Context) alerts.AuthStatus {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.loadLocked(ctx)
	switch {
	case !g.decided:
		return alerts.AuthNotDetermined
	case g.granted:
		return alerts.AuthAuthorized
	default:
		return alerts.AuthDenied
	}
}

// Request records a decision the first time it is called and returns the
// recorded decision on every later call, never prompting twice.
func (g *Gate) Request(ctx context.Context) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.loadLocked(ctx)
	if g.decided {
		return g.granted, nil
	}

	g.decided = true
	g.granted = g.cfg.AutoGrant
	g.log.Info("notification permission decided", slog.Bool("granted", g.granted))
	if g.store != nil {
		data, err := json.Marshal(decisionRecord{Granted: g.granted})
		if err == nil {
			err = g.store.PutBlob(ctx, decisionKey, data)
		}
		if err != nil {
			// The in-memory decision still stands; it just won't survive a restart.
			g.log.Warn("permission decision not persisted", slog.Any("err", err))
		}
	}
	return g.granted, nil
}

// loadLocked pulls the persisted decision once. Call with g.mu held.
func (g *Gate) loadLocked(ctx context.Context) {
	if g.loaded || g.store == nil {
		g.loaded = true
		return
	}
	g.loaded = true
	data, ok, err := g.store.GetBlob(ctx, decisionKey)
	if err != nil {
		g.log.Warn("permission record unreadable", slog.Any("err", err))
		return
	}
	if !ok {
		return
	}
	var rec decisionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		g.log.Warn("permission record malformed", slog.Any("err", err))
		return
	}
	g.decided = true
	g.granted = rec.Granted
}
