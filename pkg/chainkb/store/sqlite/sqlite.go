// Package sqlite implements store.Store on a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/chainkb/pkg/chainkb/store"
)

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// Open opens a SQLite database with WAL mode enabled and creates the
// schema if it does not exist.
func Open(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS expressions (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	kind TEXT NOT NULL,
	expression TEXT UNIQUE NOT NULL,
	told_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS derivations (
	id TEXT PRIMARY KEY,
	rule TEXT NOT NULL,
	matched TEXT NOT NULL,
	derived TEXT NOT NULL,
	derived_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_derivations_rule ON derivations(rule);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// AppendExpression inserts an expression; re-telling the same text is
// a no-op so replays stay idempotent.
func (s *sqliteStore) AppendExpression(ctx context.Context, expr string, kind store.Kind) error {
	if expr == "" {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO expressions (kind, expression, told_at) VALUES (?, ?, ?)`,
		string(kind), expr, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("append expression: %w", err)
	}
	return nil
}

// ListExpressions returns all expressions in tell order.
func (s *sqliteStore) ListExpressions(ctx context.Context) ([]store.Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT seq, kind, expression, told_at FROM expressions ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.Entry
	for rows.Next() {
		var e store.Entry
		var kind, toldAt string
		if err := rows.Scan(&e.Seq, &kind, &e.Expression, &toldAt); err != nil {
			return nil, err
		}
		e.Kind = store.Kind(kind)
		if ts, err := time.Parse(time.RFC3339Nano, toldAt); err == nil {
			e.ToldAt = ts
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// RecordDerivation inserts one rule firing into the log.
func (s *sqliteStore) RecordDerivation(ctx context.Context, d store.Derivation) error {
	matched, err := json.Marshal(d.Matched)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO derivations (id, rule, matched, derived, derived_at) VALUES (?, ?, ?, ?, ?)`,
		d.ID, d.Rule, string(matched), d.Derived, d.At.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("record derivation: %w", err)
	}
	return nil
}

// ListDerivations returns derivations in ID order, which for ULID
// stamped records is firing order. An empty rule matches everything.
func (s *sqliteStore) ListDerivations(ctx context.Context, rule string) ([]store.Derivation, error) {
	query := `SELECT id, rule, matched, derived, derived_at FROM derivations`
	args := []interface{}{}
	if rule != "" {
		query += ` WHERE rule = ?`
		args = append(args, rule)
	}
	query += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.Derivation
	for rows.Next() {
		var d store.Derivation
		var matched, at string
		if err := rows.Scan(&d.ID, &d.Rule, &matched, &d.Derived, &at); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(matched), &d.Matched); err != nil {
			return nil, err
		}
		if ts, err := time.Parse(time.RFC3339Nano, at); err == nil {
			d.At = ts
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
