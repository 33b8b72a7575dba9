package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	logx "solace/pkg/logx"
)

//go:embed migrations.sql
var migrationsFS embed.FS

type sqliteStore struct {
	db  *sql.DB
	log logx.Logger
}

func openSQLite(cfg Config, log logx.Logger) (Store, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	path := cfg.Path
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// SQLite prefers a small number of concurrent writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	st := &sqliteStore{db: db, log: log}

	if cfg.BusyTimeout > 0 {
		ms := cfg.BusyTimeout.Milliseconds()
		_, _ = db.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", ms))
	}
	_, _ = db.Exec("PRAGMA journal_mode = WAL")
	_, _ = db.Exec("PRAGMA synchronous = NORMAL")

	if err := st.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return st, nil
}

func (s *sqliteStore) migrate(ctx context.Context) error {
	b, err := migrationsFS.ReadFile("migrations.sql")
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, string(b))
	return err
}

func (s *sqliteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *sqliteStore) PutBlob(ctx context.Context, key string, data []byte) error {
	if s == nil || s.db == nil {
		return ErrDisabled
	}
	if strings.TrimSpace(key) == "" {
		return errors.New("blob key required")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO blobs(key, data) VALUES(?,?)
		 ON CONFLICT(key) DO UPDATE SET data=excluded.data`,
		key, data,
	)
	return err
}

func (s *sqliteStore) GetBlob(ctx context.Context, key string) ([]byte, bool, error) {
	if s == nil || s.db == nil {
		return nil, false, ErrDisabled
	}
	if strings.TrimSpace(key) == "" {
		return nil, false, nil
	}
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM blobs WHERE key = ?`, key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (s *sqliteStore) PutPending(ctx context.Context, row PendingRow) error {
	if s == nil || s.db == nil {
		return ErrDisabled
	}
	if row.Identifier == "" {
		return errors.New("pending identifier required")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO pending(identifier, trigger, content) VALUES(?,?,?)
		 ON CONFLICT(identifier) DO UPDATE SET trigger=excluded.trigger, content=excluded.content`,
		row.Identifier, string(row.Trigger), string(row.Content),
	)
	return err
}

func (s *sqliteStore) DeletePending(ctx context.Context, identifiers []string) error {
	if s == nil || s.db == nil {
		return ErrDisabled
	}
	if len(identifiers) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	for _, id := range identifiers {
		if _, err := tx.ExecContext(ctx, `DELETE FROM pending WHERE identifier = ?`, id); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *sqliteStore) ListPending(ctx context.Context) ([]PendingRow, error) {
	if s == nil || s.db == nil {
		return nil, ErrDisabled
	}
	rows, err := s.db.QueryContext(ctx, `SELECT identifier, trigger, content FROM pending ORDER BY identifier`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PendingRow
	for rows.Next() {
		var row PendingRow
		var trigger, content string
		if err := rows.Scan(&row.Identifier, &trigger, &content); err != nil {
			return nil, err
		}
		row.Trigger = []byte(trigger)
		row.Content = []byte(content)
		out = append(out, row)
	}
	return out, rows.Err()
}
