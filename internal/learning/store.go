package learning

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/planwise/floorplan-vision/internal/geometry"
)

var (
	// ErrNoActiveSession is returned for operations against an unknown or
	// already-saved session ID. Callers treat it as a warning, not a fault.
	ErrNoActiveSession = errors.New("learning: no active session")

	// ErrRecordNotFound is returned when a deletion mark references an ID
	// the session does not contain.
	ErrRecordNotFound = errors.New("learning: record not found")
)

// Store is the session-keyed learning store. Each session has its own lock,
// so concurrent pipelines recording against different images never
// serialize against each other, and edits to the same session never race.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*sessionEntry
	history  History
}

type sessionEntry struct {
	mu      sync.Mutex
	session *Session

	// saved is set under mu when SaveSession snapshots the session. Callers
	// that looked the entry up before retirement see it here and fail the
	// same way a missing session does.
	saved bool
}

// NewStore creates a Store persisting saved sessions through history.
func NewStore(history History) *Store {
	return &Store{
		sessions: make(map[string]*sessionEntry),
		history:  history,
	}
}

// StartSession creates a new active session for an image and returns its
// ID. Subsequent Add and Mark calls target the session via this handle.
func (s *Store) StartSession(imageHash string) string {
	session := &Session{
		ID:        uuid.New().String(),
		Timestamp: time.Now().UTC(),
		ImageHash: imageHash,
	}
	s.mu.Lock()
	s.sessions[session.ID] = &sessionEntry{session: session}
	s.mu.Unlock()
	return session.ID
}

// lockEntry returns the session entry with its lock held. The caller must
// unlock entry.mu.
func (s *Store) lockEntry(sessionID string) (*sessionEntry, error) {
	s.mu.RLock()
	entry, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNoActiveSession
	}
	entry.mu.Lock()
	if entry.saved {
		entry.mu.Unlock()
		return nil, ErrNoActiveSession
	}
	return entry, nil
}

// AddWallData normalizes and appends wall records to the session, tagging
// each with the given source and updating the running counters.
func (s *Store) AddWallData(sessionID string, walls []WallRecord, source Source) error {
	entry, err := s.lockEntry(sessionID)
	if err != nil {
		return err
	}
	defer entry.mu.Unlock()
	for _, w := range walls {
		if w.ID == "" {
			w.ID = uuid.New().String()
		}
		w.Source = source
		w.IsManual = source == SourceManual
		w.IsDeleted = false
		entry.session.Walls = append(entry.session.Walls, w)
		s.countAdd(entry.session, source, w.Method)
	}
	return nil
}

// AddRoomData normalizes and appends room records to the session.
func (s *Store) AddRoomData(sessionID string, rooms []RoomRecord, source Source) error {
	entry, err := s.lockEntry(sessionID)
	if err != nil {
		return err
	}
	defer entry.mu.Unlock()
	for _, r := range rooms {
		if r.ID == "" {
			r.ID = uuid.New().String()
		}
		r.Source = source
		r.IsManual = source == SourceManual
		r.IsDeleted = false
		entry.session.Rooms = append(entry.session.Rooms, r)
		s.countAdd(entry.session, source, r.Method)
	}
	return nil
}

// AddDoorData normalizes and appends door records to the session.
func (s *Store) AddDoorData(sessionID string, doors []DoorRecord, source Source) error {
	entry, err := s.lockEntry(sessionID)
	if err != nil {
		return err
	}
	defer entry.mu.Unlock()
	for _, d := range doors {
		if d.ID == "" {
			d.ID = uuid.New().String()
		}
		d.Source = source
		d.IsManual = source == SourceManual
		d.IsDeleted = false
		entry.session.Doors = append(entry.session.Doors, d)
		s.countAdd(entry.session, source, d.Method)
	}
	return nil
}

// AddWindowData normalizes and appends window records to the session.
func (s *Store) AddWindowData(sessionID string, windows []WindowRecord, source Source) error {
	entry, err := s.lockEntry(sessionID)
	if err != nil {
		return err
	}
	defer entry.mu.Unlock()
	for _, w := range windows {
		if w.ID == "" {
			w.ID = uuid.New().String()
		}
		w.Source = source
		w.IsManual = source == SourceManual
		w.IsDeleted = false
		entry.session.Windows = append(entry.session.Windows, w)
		s.countAdd(entry.session, source, w.Method)
	}
	return nil
}

// AddMeasurementData normalizes and appends measurement records.
func (s *Store) AddMeasurementData(sessionID string, measurements []MeasurementRecord, source Source) error {
	entry, err := s.lockEntry(sessionID)
	if err != nil {
		return err
	}
	defer entry.mu.Unlock()
	for _, m := range measurements {
		if m.ID == "" {
			m.ID = uuid.New().String()
		}
		m.Source = source
		m.IsManual = source == SourceManual
		m.IsDeleted = false
		entry.session.Measurements = append(entry.session.Measurements, m)
		s.countAdd(entry.session, source, "")
	}
	return nil
}

// countAdd updates the session's running counters for one appended record.
func (s *Store) countAdd(session *Session, source Source, method string) {
	session.Metadata.TotalDetections++
	if source == SourceManual {
		session.Metadata.ManualCount++
	} else {
		session.Metadata.AICount++
	}
	if method != "" && !containsString(session.Metadata.DetectionMethods, method) {
		session.Metadata.DetectionMethods = append(session.Metadata.DetectionMethods, method)
		sort.Strings(session.Metadata.DetectionMethods)
	}
}

// MarkWallDeleted sets IsDeleted on the matching wall record and bumps the
// session's deletion counter. The record is never removed: the pattern
// analyzer learns from deleted records.
func (s *Store) MarkWallDeleted(sessionID, id string) error {
	return s.markDeleted(sessionID, func(session *Session) bool {
		for i := range session.Walls {
			if session.Walls[i].ID == id && !session.Walls[i].IsDeleted {
				session.Walls[i].IsDeleted = true
				return true
			}
		}
		return false
	})
}

// MarkRoomDeleted sets IsDeleted on the matching room record.
func (s *Store) MarkRoomDeleted(sessionID, id string) error {
	return s.markDeleted(sessionID, func(session *Session) bool {
		for i := range session.Rooms {
			if session.Rooms[i].ID == id && !session.Rooms[i].IsDeleted {
				session.Rooms[i].IsDeleted = true
				return true
			}
		}
		return false
	})
}

// MarkDoorDeleted sets IsDeleted on the matching door record.
func (s *Store) MarkDoorDeleted(sessionID, id string) error {
	return s.markDeleted(sessionID, func(session *Session) bool {
		for i := range session.Doors {
			if session.Doors[i].ID == id && !session.Doors[i].IsDeleted {
				session.Doors[i].IsDeleted = true
				return true
			}
		}
		return false
	})
}

// MarkWindowDeleted sets IsDeleted on the matching window record.
func (s *Store) MarkWindowDeleted(sessionID, id string) error {
	return s.markDeleted(sessionID, func(session *Session) bool {
		for i := range session.Windows {
			if session.Windows[i].ID == id && !session.Windows[i].IsDeleted {
				session.Windows[i].IsDeleted = true
				return true
			}
		}
		return false
	})
}

func (s *Store) markDeleted(sessionID string, mark func(*Session) bool) error {
	entry, err := s.lockEntry(sessionID)
	if err != nil {
		return err
	}
	defer entry.mu.Unlock()
	if !mark(entry.session) {
		return ErrRecordNotFound
	}
	entry.session.Metadata.Deletions++
	return nil
}

// SetUserFeedback attaches free-form reviewer feedback to the session.
func (s *Store) SetUserFeedback(sessionID, feedback string) error {
	entry, err := s.lockEntry(sessionID)
	if err != nil {
		return err
	}
	entry.session.UserFeedback = feedback
	entry.mu.Unlock()
	return nil
}

// Session returns a deep copy of the session's current state.
func (s *Store) Session(sessionID string) (*Session, error) {
	entry, err := s.lockEntry(sessionID)
	if err != nil {
		return nil, err
	}
	defer entry.mu.Unlock()
	return copySession(entry.session), nil
}

// SaveSession serializes the session to durable storage and appends its
// compact summary to the append-only historical log. The session then
// leaves the active set and becomes immutable.
//
// Saving with an unknown or already-saved session ID logs a warning and
// returns an empty path with ErrNoActiveSession; callers treat this as a
// degraded outcome, not a failure.
func (s *Store) SaveSession(sessionID string, processingTime time.Duration) (string, error) {
	entry, err := s.lockEntry(sessionID)
	if err != nil {
		log.Printf("learning: save requested for %q but no session is active", sessionID)
		return "", err
	}

	// Snapshot and retire while holding the lock: concurrent edits either
	// land before this point and are part of the snapshot, or fail with
	// ErrNoActiveSession. The marshal below works on the snapshot, never on
	// the live record.
	if processingTime > 0 {
		entry.session.ProcessingTimeMs = processingTime.Milliseconds()
	}
	session := copySession(entry.session)
	summary := Summary{
		ID:                session.ID,
		Timestamp:         session.Timestamp,
		WallCount:         len(session.Walls),
		ManualCorrections: session.Metadata.ManualCount,
		Deletions:         session.Metadata.Deletions,
		Accuracy:          session.Accuracy(),
		Methods:           append([]string(nil), session.Metadata.DetectionMethods...),
	}
	entry.saved = true
	entry.mu.Unlock()

	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	path, err := s.history.SaveSession(session)
	if err != nil {
		return "", fmt.Errorf("saving session %s: %w", session.ID, err)
	}
	if err := s.history.AppendSummary(summary); err != nil {
		return "", fmt.Errorf("appending summary for session %s: %w", session.ID, err)
	}
	return path, nil
}

func copySession(src *Session) *Session {
	dst := *src
	dst.Walls = append([]WallRecord(nil), src.Walls...)
	dst.Rooms = make([]RoomRecord, len(src.Rooms))
	for i, r := range src.Rooms {
		r.Vertices = append([]geometry.Point(nil), r.Vertices...)
		dst.Rooms[i] = r
	}
	dst.Doors = append([]DoorRecord(nil), src.Doors...)
	dst.Windows = append([]WindowRecord(nil), src.Windows...)
	dst.Measurements = append([]MeasurementRecord(nil), src.Measurements...)
	dst.Metadata.DetectionMethods = append([]string(nil), src.Metadata.DetectionMethods...)
	return &dst
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
