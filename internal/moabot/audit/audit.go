// Package audit persists a per-turn trail of the conversation front-end:
// who said what, which tool ran, and how the ledger answered. The trail is
// the only durable record (session state lives in memory), so operators can
// reconstruct a disputed mutation after the fact.
package audit

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Entry is one recorded conversation turn.
type Entry struct {
	ID       int64
	At       time.Time
	TraceID  string
	Identity string
	Message  string
	Tool     string
	OK       bool
	ErrKind  string
	Reply    string
}

// Store wraps the audit database.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the audit database at dbPath and applies pending
// migrations.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open audit database: %w", err)
	}

	// SQLite is single-writer by design. A single shared connection lets
	// database/sql serialize writers instead of them fighting for the lock.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("set pragma: %w", err)
		}
	}

	s := &Store{db: db}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordTurn appends one turn to the trail.
func (s *Store) RecordTurn(ctx context.Context, e Entry) error {
	at := e.At
	if at.IsZero() {
		at = time.Now()
	}
	var tool, errKind sql.NullString
	if e.Tool != "" {
		tool = sql.NullString{String: e.Tool, Valid: true}
	}
	if e.ErrKind != "" {
		errKind = sql.NullString{String: e.ErrKind, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO conversation_turns (ts, trace_id, identity, message, tool, ok, err_kind, reply)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, at, e.TraceID, e.Identity, e.Message, tool, e.OK, errKind, e.Reply)
	if err != nil {
		return fmt.Errorf("write conversation turn: %w", err)
	}
	return nil
}

// RecentTurns returns the newest turns for one identity, newest first.
func (s *Store) RecentTurns(ctx context.Context, identity string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, ts, trace_id, identity, message, tool, ok, err_kind, reply
		FROM conversation_turns
		WHERE identity = ?
		ORDER BY ts DESC, id DESC
		LIMIT ?
	`, identity, limit)
	if err != nil {
		return nil, fmt.Errorf("query conversation turns: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var tool, errKind, reply sql.NullString
		if err := rows.Scan(&e.ID, &e.At, &e.TraceID, &e.Identity, &e.Message, &tool, &e.OK, &errKind, &reply); err != nil {
			return nil, fmt.Errorf("scan conversation turn: %w", err)
		}
		e.Tool = tool.String
		e.ErrKind = errKind.String
		e.Reply = reply.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *Store) runMigrations() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			description TEXT NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	var currentVersion int
	if err := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&currentVersion); err != nil {
		return fmt.Errorf("get current schema version: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations directory: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		parts := strings.SplitN(entry.Name(), "_", 2)
		if len(parts) < 2 {
			continue
		}
		var version int
		if _, err := fmt.Sscanf(parts[0], "%d", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}
		description := strings.TrimSuffix(parts[1], ".sql")

		content, err := migrationsFS.ReadFile(filepath.Join("migrations", entry.Name()))
		if err != nil {
			return fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("begin transaction for migration %d: %w", version, err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("execute migration %d: %w", version, err)
		}
		if _, err := tx.Exec(
			"INSERT INTO schema_migrations (version, applied_at, description) VALUES (?, ?, ?)",
			version, time.Now(), description,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %d: %w", version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", version, err)
		}

		slog.Info("applied migration", "version", fmt.Sprintf("%04d", version), "description", description)
	}
	return nil
}
