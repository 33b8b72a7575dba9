package storage

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	logx "solace/pkg/logx"
)

// fileStore is a dependency-free persistence backend.
//
// Layout under cfg.Path (a directory):
//   - blob_<key>.json   one file per entity blob
//   - pending.json      snapshot of the pending alert set
//
// Writes go through a temp file plus rename so a crash never leaves a
// half-written snapshot.
type fileStore struct {
	log logx.Logger

	mu  sync.Mutex
	dir string

	pending map[string]PendingRow
}

func openFile(cfg Config, log logx.Logger) (Store, error) {
	dir := strings.TrimSpace(cfg.Path)
	if dir == "" {
		return nil, errors.New("storage.path is required for file driver")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	s := &fileStore{log: log, dir: dir, pending: map[string]PendingRow{}}
	if err := s.loadPending(); err != nil {
		log.Warn("pending snapshot unreadable, starting empty", logx.Err(err))
		s.pending = map[string]PendingRow{}
	}
	return s, nil
}

func (s *fileStore) Close() error { return nil }

func (s *fileStore) PutBlob(ctx context.Context, key string, data []byte) error {
	_ = ctx
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("blob key required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return atomicWrite(s.blobPath(key), data)
}

func (s *fileStore) GetBlob(ctx context.Context, key string) ([]byte, bool, error) {
	_ = ctx
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, false, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := os.ReadFile(s.blobPath(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (s *fileStore) PutPending(ctx context.Context, row PendingRow) error {
	_ = ctx
	if row.Identifier == "" {
		return errors.New("pending identifier required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[row.Identifier] = row
	return s.savePendingLocked()
}

func (s *fileStore) DeletePending(ctx context.Context, identifiers []string) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	changed := false
	for _, id := range identifiers {
		if _, ok := s.pending[id]; ok {
			delete(s.pending, id)
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return s.savePendingLocked()
}

func (s *fileStore) ListPending(ctx context.Context) ([]PendingRow, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]PendingRow, 0, len(s.pending))
	for _, row := range s.pending {
		out = append(out, row)
	}
	return out, nil
}

func (s *fileStore) blobPath(key string) string {
	// Keys are caller-controlled names like "reminders"; keep the filename flat.
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, key)
	return filepath.Join(s.dir, "blob_"+safe+".json")
}

func (s *fileStore) pendingPath() string { return filepath.Join(s.dir, "pending.json") }

func (s *fileStore) loadPending() error {
	data, err := os.ReadFile(s.pendingPath())
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	var rows []PendingRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return err
	}
	for _, row := range rows {
		if row.Identifier == "" {
			continue
		}
		s.pending[row.Identifier] = row
	}
	return nil
}

func (s *fileStore) savePendingLocked() error {
	rows := make([]PendingRow, 0, len(s.pending))
	for _, row := range s.pending {
		rows = append(rows, row)
	}
	data, err := json.Marshal(rows)
	if err != nil {
		return err
	}
	return atomicWrite(s.pendingPath(), data)
}

func atomicWrite(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
