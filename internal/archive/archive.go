// Package archive persists every log scope the observer sees to a local
// SQLite database, so history survives beyond the in-memory view.
package archive

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"sagaview/internal/scopelog"
)

// Schema for the scope archive.
const schema = `
CREATE TABLE IF NOT EXISTS scopes (
    message_id    TEXT PRIMARY KEY,
    message_type  TEXT NOT NULL,
    started_ns    INTEGER NOT NULL,
    received_ns   INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_scopes_started ON scopes(started_ns);

CREATE TABLE IF NOT EXISTS entries (
    message_id    TEXT NOT NULL REFERENCES scopes(message_id),
    ordinal       INTEGER NOT NULL,
    timestamp_ns  INTEGER NOT NULL,
    level         INTEGER NOT NULL,
    message       TEXT NOT NULL,
    PRIMARY KEY (message_id, ordinal)
);
`

// Archive is the SQLite-backed scope store.
type Archive struct {
	db *sql.DB
}

// ScopeRow is a summary row returned by RecentScopes.
type ScopeRow struct {
	MessageID   string
	MessageType string
	Started     time.Time
	Entries     int
}

// Open opens or creates the archive at path and applies the schema.
func Open(path string) (*Archive, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create archive directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Archive{db: db}, nil
}

// Close closes the database.
func (a *Archive) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

// SaveScope stores the scope and its entries. Saving the same message id
// again is a no-op, so replays during a snapshot/stream overlap cannot
// duplicate rows.
func (a *Archive) SaveScope(s *scopelog.Scope) error {
	if s == nil || s.MessageID == "" {
		return nil
	}

	tx, err := a.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		INSERT INTO scopes (message_id, message_type, started_ns, received_ns)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(message_id) DO NOTHING`,
		s.MessageID, s.MessageType, s.Started.UnixNano(), time.Now().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("insert scope: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// Already archived.
		return nil
	}

	stmt, err := tx.Prepare(`
		INSERT INTO entries (message_id, ordinal, timestamp_ns, level, message)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare entries: %w", err)
	}
	defer stmt.Close()

	for i, e := range s.Entries {
		if _, err := stmt.Exec(s.MessageID, i, e.Timestamp.UnixNano(), int(e.Level), e.Message); err != nil {
			return fmt.Errorf("insert entry %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit scope: %w", err)
	}
	return nil
}

// RecentScopes returns up to limit scopes, newest-first by start time.
func (a *Archive) RecentScopes(limit int) ([]ScopeRow, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := a.db.Query(`
		SELECT s.message_id, s.message_type, s.started_ns, COUNT(e.ordinal)
		FROM scopes s LEFT JOIN entries e ON e.message_id = s.message_id
		GROUP BY s.message_id
		ORDER BY s.started_ns DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query scopes: %w", err)
	}
	defer rows.Close()

	var out []ScopeRow
	for rows.Next() {
		var r ScopeRow
		var startedNs int64
		if err := rows.Scan(&r.MessageID, &r.MessageType, &startedNs, &r.Entries); err != nil {
			return nil, fmt.Errorf("scan scope: %w", err)
		}
		r.Started = time.Unix(0, startedNs)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Entries returns the archived entries of one scope, in source order.
func (a *Archive) Entries(messageID string) ([]scopelog.Entry, error) {
	rows, err := a.db.Query(`
		SELECT e.timestamp_ns, e.level, e.message, s.started_ns
		FROM entries e JOIN scopes s ON s.message_id = e.message_id
		WHERE e.message_id = ?
		ORDER BY e.ordinal`, messageID)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	var out []scopelog.Entry
	for rows.Next() {
		var tsNs, startedNs int64
		var level int
		var msg string
		if err := rows.Scan(&tsNs, &level, &msg, &startedNs); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		out = append(out, scopelog.Entry{
			Timestamp: time.Unix(0, tsNs),
			OffsetMs:  (tsNs - startedNs) / int64(time.Millisecond),
			Level:     scopelog.Level(level),
			Message:   msg,
		})
	}
	return out, rows.Err()
}
