package favorites

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/glebarez/go-sqlite"
)

// Scopes used by the pages.
const (
	ScopeCrypto = "crypto"
	ScopeNews   = "news"
)

// Store persists favorites per scope.
type Store interface {
	Load(ctx context.Context, scope string) ([]string, error)
	Save(ctx context.Context, scope, id string, on bool) error
}

// SQLiteStore keeps favorites in a single-table SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=2000;",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to set pragma %s: %w", pragma, err)
		}
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS favorites (
			scope TEXT NOT NULL,
			item_id TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			PRIMARY KEY (scope, item_id)
		);
	`)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create favorites table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Load returns the ids in scope, oldest first.
func (s *SQLiteStore) Load(ctx context.Context, scope string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT item_id FROM favorites WHERE scope = ? ORDER BY created_at, rowid",
		scope,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query favorites: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan favorite: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Save records id as a favorite when on, and forgets it otherwise.
func (s *SQLiteStore) Save(ctx context.Context, scope, id string, on bool) error {
	var err error
	if on {
		_, err = s.db.ExecContext(ctx,
			"INSERT INTO favorites (scope, item_id, created_at) VALUES (?, ?, ?) ON CONFLICT(scope, item_id) DO NOTHING",
			scope, id, time.Now().UnixNano(),
		)
	} else {
		_, err = s.db.ExecContext(ctx,
			"DELETE FROM favorites WHERE scope = ? AND item_id = ?",
			scope, id,
		)
	}
	if err != nil {
		return fmt.Errorf("failed to save favorite: %w", err)
	}
	return nil
}

// Close releases the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
