package learning

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const timestampLayout = "2006-01-02T15:04:05.000Z"

func parseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(timestampLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing stored timestamp %q: %w", s, err)
	}
	return t, nil
}

// SQLiteHistory stores session documents and summaries in a single SQLite
// database. Session bodies are kept as JSON blobs; summaries get their own
// columns so historical trends can be queried without decoding sessions.
type SQLiteHistory struct {
	db *sql.DB
}

// NewSQLiteHistory opens (creating if needed) the database at path.
func NewSQLiteHistory(path string) (*SQLiteHistory, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening learning database: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL: %w", err)
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteHistory{db: db}, nil
}

func migrate(db *sql.DB) error {
	const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id        TEXT PRIMARY KEY,
	timestamp TEXT NOT NULL,
	document  TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS summaries (
	seq                INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id         TEXT NOT NULL,
	timestamp          TEXT NOT NULL,
	wall_count         INTEGER NOT NULL,
	manual_corrections INTEGER NOT NULL,
	deletions          INTEGER NOT NULL,
	accuracy           REAL NOT NULL,
	methods            TEXT NOT NULL
);`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("creating learning schema: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (h *SQLiteHistory) Close() error {
	return h.db.Close()
}

// SaveSession upserts the full session document and returns its ID as the
// storage key.
func (h *SQLiteHistory) SaveSession(session *Session) (string, error) {
	doc, err := json.Marshal(session)
	if err != nil {
		return "", fmt.Errorf("encoding session %s: %w", session.ID, err)
	}
	_, err = h.db.Exec(
		`INSERT INTO sessions (id, timestamp, document) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET timestamp=excluded.timestamp, document=excluded.document`,
		session.ID, session.Timestamp.UTC().Format(timestampLayout), string(doc))
	if err != nil {
		return "", fmt.Errorf("storing session %s: %w", session.ID, err)
	}
	return session.ID, nil
}

// AppendSummary inserts one row into the append-only summaries table.
func (h *SQLiteHistory) AppendSummary(summary Summary) error {
	methods, err := json.Marshal(summary.Methods)
	if err != nil {
		return fmt.Errorf("encoding summary methods: %w", err)
	}
	_, err = h.db.Exec(
		`INSERT INTO summaries (session_id, timestamp, wall_count, manual_corrections, deletions, accuracy, methods)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		summary.ID, summary.Timestamp.UTC().Format(timestampLayout),
		summary.WallCount, summary.ManualCorrections, summary.Deletions,
		summary.Accuracy, string(methods))
	if err != nil {
		return fmt.Errorf("appending summary %s: %w", summary.ID, err)
	}
	return nil
}

// LoadSession reads back a session document by ID.
func (h *SQLiteHistory) LoadSession(id string) (*Session, error) {
	var doc string
	err := h.db.QueryRow(`SELECT document FROM sessions WHERE id = ?`, id).Scan(&doc)
	if err != nil {
		return nil, fmt.Errorf("loading session %s: %w", id, err)
	}
	var session Session
	if err := json.Unmarshal([]byte(doc), &session); err != nil {
		return nil, fmt.Errorf("decoding session %s: %w", id, err)
	}
	return &session, nil
}

// Sessions returns every stored session, oldest first.
func (h *SQLiteHistory) Sessions() ([]*Session, error) {
	rows, err := h.db.Query(`SELECT document FROM sessions ORDER BY timestamp ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scanning session row: %w", err)
		}
		var session Session
		if err := json.Unmarshal([]byte(doc), &session); err != nil {
			return nil, fmt.Errorf("decoding session document: %w", err)
		}
		sessions = append(sessions, &session)
	}
	return sessions, rows.Err()
}

// Summaries returns the historical log in insertion order.
func (h *SQLiteHistory) Summaries() ([]Summary, error) {
	rows, err := h.db.Query(
		`SELECT session_id, timestamp, wall_count, manual_corrections, deletions, accuracy, methods
		 FROM summaries ORDER BY seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying summaries: %w", err)
	}
	defer rows.Close()

	var summaries []Summary
	for rows.Next() {
		var (
			s       Summary
			ts      string
			methods string
		)
		if err := rows.Scan(&s.ID, &ts, &s.WallCount, &s.ManualCorrections,
			&s.Deletions, &s.Accuracy, &methods); err != nil {
			return nil, fmt.Errorf("scanning summary row: %w", err)
		}
		if err := json.Unmarshal([]byte(methods), &s.Methods); err != nil {
			return nil, fmt.Errorf("decoding summary methods: %w", err)
		}
		s.Timestamp, err = parseTimestamp(ts)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}
