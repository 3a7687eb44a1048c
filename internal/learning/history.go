package learning

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// History persists saved sessions and their summaries.
type History interface {
	// SaveSession writes the full session document and returns the path or
	// key it was stored under.
	SaveSession(session *Session) (string, error)

	// AppendSummary appends one summary to the historical log. The log is
	// append-only: summaries are never rewritten or removed.
	AppendSummary(summary Summary) error

	// LoadSession reads back a previously saved session by ID.
	LoadSession(id string) (*Session, error)

	// Sessions returns all saved sessions, oldest first.
	Sessions() ([]*Session, error)

	// Summaries returns the historical log, oldest first.
	Summaries() ([]Summary, error)
}

const summaryLogName = "history.ndjson"

// FileHistory stores each session as sessions/<id>.json under a root
// directory and keeps the summary log as newline-delimited JSON beside it.
type FileHistory struct {
	mu   sync.Mutex
	root string
}

// NewFileHistory creates the storage layout under root if needed.
func NewFileHistory(root string) (*FileHistory, error) {
	if err := os.MkdirAll(filepath.Join(root, "sessions"), 0o755); err != nil {
		return nil, fmt.Errorf("creating session directory: %w", err)
	}
	return &FileHistory{root: root}, nil
}

func (h *FileHistory) sessionPath(id string) string {
	return filepath.Join(h.root, "sessions", id+".json")
}

// SaveSession writes the session document as indented JSON.
func (h *FileHistory) SaveSession(session *Session) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding session %s: %w", session.ID, err)
	}
	path := h.sessionPath(session.ID)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing session %s: %w", session.ID, err)
	}
	return path, nil
}

// AppendSummary appends one NDJSON line to the summary log.
func (h *FileHistory) AppendSummary(summary Summary) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	f, err := os.OpenFile(filepath.Join(h.root, summaryLogName),
		os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening summary log: %w", err)
	}

	line, err := json.Marshal(summary)
	if err != nil {
		f.Close()
		return fmt.Errorf("encoding summary %s: %w", summary.ID, err)
	}
	if _, err := f.Write(append(line, '\n')); err != nil {
		f.Close()
		return fmt.Errorf("appending summary %s: %w", summary.ID, err)
	}
	return f.Close()
}

// LoadSession reads back a session document by ID.
func (h *FileHistory) LoadSession(id string) (*Session, error) {
	data, err := os.ReadFile(h.sessionPath(id))
	if err != nil {
		return nil, fmt.Errorf("reading session %s: %w", id, err)
	}
	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("decoding session %s: %w", id, err)
	}
	return &session, nil
}

// Sessions loads every saved session document, oldest first.
func (h *FileHistory) Sessions() ([]*Session, error) {
	entries, err := os.ReadDir(filepath.Join(h.root, "sessions"))
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	var sessions []*Session
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		id := e.Name()[:len(e.Name())-len(".json")]
		session, err := h.LoadSession(id)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].Timestamp.Before(sessions[j].Timestamp)
	})
	return sessions, nil
}

// Summaries reads the NDJSON log in write order.
func (h *FileHistory) Summaries() ([]Summary, error) {
	f, err := os.Open(filepath.Join(h.root, summaryLogName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening summary log: %w", err)
	}
	defer f.Close()

	var summaries []Summary
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var s Summary
		if err := json.Unmarshal(line, &s); err != nil {
			return nil, fmt.Errorf("decoding summary log line: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading summary log: %w", err)
	}
	return summaries, nil
}
