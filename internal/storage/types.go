package storage

import (
	"errors"
	"time"
)

var ErrDisabled = errors.New("storage disabled")

// Config configures storage.
//
// Driver values:
//   - "file": dependency-free directory of JSON files
//   - "sqlite": SQLite database file
//
// If Driver is empty or "none", storage is disabled.
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // sqlite only; 0 means default
}

// PendingRow is one persisted pending alert. Trigger and content stay opaque
// JSON here; the substrate owns their shape.
type PendingRow struct {
	Identifier string `json:"identifier"`
	Trigger    []byte `json:"trigger"`
	Content    []byte `json:"content"`
}
