package storage

import (
	"context"
	"errors"
	"strings"

	logx "solace/pkg/logx"
)

// Store is the persistence API used by the substrate and the app.
type Store interface {
	PutBlob(ctx context.Context, key string, data []byte) error
	GetBlob(ctx context.Context, key string) (data []byte, ok bool, err error)
	PutPending(ctx context.Context, row PendingRow) error
	DeletePending(ctx context.Context, identifiers []string) error
	ListPending(ctx context.Context) ([]PendingRow, error)
	Close() error
}

// Open initializes the configured store.
// It returns (nil, nil) if storage is disabled.
func Open(cfg Config, log logx.Logger) (Store, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	if driver == "" || driver == "none" {
		return nil, nil
	}
	if log.IsZero() {
		log = logx.Nop()
	}

	switch driver {
	case "file":
		return openFile(cfg, log)
	case "sqlite", "sqlite3":
		return openSQLite(cfg, log)
	default:
		return nil, errors.New("unknown storage driver: " + driver)
	}
}
