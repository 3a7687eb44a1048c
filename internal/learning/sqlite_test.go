package learning

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/planwise/floorplan-vision/internal/geometry"
)

func newTestSQLiteHistory(t *testing.T) *SQLiteHistory {
	t.Helper()
	history, err := NewSQLiteHistory(filepath.Join(t.TempDir(), "learning.db"))
	if err != nil {
		t.Fatalf("NewSQLiteHistory failed: %v", err)
	}
	t.Cleanup(func() { history.Close() })
	return history
}

func TestSQLiteHistoryRoundTrip(t *testing.T) {
	history := newTestSQLiteHistory(t)

	session := &Session{
		ID:        "s1",
		Timestamp: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		ImageHash: "cafe",
		Walls: []WallRecord{
			{ID: "w1", Type: "interior", Start: geometry.Point{X: 1, Y: 2},
				End: geometry.Point{X: 3, Y: 4}, Source: SourceAI, IsDeleted: true},
		},
	}
	if _, err := history.SaveSession(session); err != nil {
		t.Fatalf("SaveSession failed: %v", err)
	}

	loaded, err := history.LoadSession("s1")
	if err != nil {
		t.Fatalf("LoadSession failed: %v", err)
	}
	if loaded.ImageHash != "cafe" {
		t.Errorf("ImageHash: got %q", loaded.ImageHash)
	}
	if len(loaded.Walls) != 1 || !loaded.Walls[0].IsDeleted {
		t.Errorf("walls not preserved: %+v", loaded.Walls)
	}

	// Saving again replaces the document, not duplicates it.
	session.ImageHash = "beef"
	if _, err := history.SaveSession(session); err != nil {
		t.Fatalf("re-save failed: %v", err)
	}
	sessions, err := history.Sessions()
	if err != nil {
		t.Fatalf("Sessions failed: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("sessions: got %d, want 1", len(sessions))
	}
	if sessions[0].ImageHash != "beef" {
		t.Errorf("upsert: got %q, want beef", sessions[0].ImageHash)
	}
}

func TestSQLiteHistorySummariesInOrder(t *testing.T) {
	history := newTestSQLiteHistory(t)

	for i, id := range []string{"a", "b", "c"} {
		summary := Summary{
			ID:        id,
			Timestamp: time.Date(2026, 3, 1, 12, i, 0, 0, time.UTC),
			WallCount: i + 1,
			Accuracy:  0.5,
			Methods:   []string{"hough"},
		}
		if err := history.AppendSummary(summary); err != nil {
			t.Fatalf("AppendSummary failed: %v", err)
		}
	}

	summaries, err := history.Summaries()
	if err != nil {
		t.Fatalf("Summaries failed: %v", err)
	}
	if len(summaries) != 3 {
		t.Fatalf("summaries: got %d, want 3", len(summaries))
	}
	for i, want := range []string{"a", "b", "c"} {
		if summaries[i].ID != want {
			t.Errorf("summary %d: got %q, want %q", i, summaries[i].ID, want)
		}
	}
	if summaries[2].WallCount != 3 {
		t.Errorf("wall count: got %d, want 3", summaries[2].WallCount)
	}
	if len(summaries[0].Methods) != 1 || summaries[0].Methods[0] != "hough" {
		t.Errorf("methods: got %v", summaries[0].Methods)
	}
	if !summaries[1].Timestamp.Equal(time.Date(2026, 3, 1, 12, 1, 0, 0, time.UTC)) {
		t.Errorf("timestamp: got %v", summaries[1].Timestamp)
	}
}

func TestStoreWithSQLiteHistory(t *testing.T) {
	history := newTestSQLiteHistory(t)
	store := NewStore(history)

	id := store.StartSession("img")
	if err := store.AddWallData(id, []WallRecord{testWall("interior", 0, 0, 10, 0)}, SourceAI); err != nil {
		t.Fatalf("AddWallData failed: %v", err)
	}
	key, err := store.SaveSession(id, time.Second)
	if err != nil {
		t.Fatalf("SaveSession failed: %v", err)
	}
	if key != id {
		t.Errorf("storage key: got %q, want session ID", key)
	}

	loaded, err := history.LoadSession(id)
	if err != nil {
		t.Fatalf("LoadSession failed: %v", err)
	}
	if loaded.ProcessingTimeMs != 1000 {
		t.Errorf("ProcessingTimeMs: got %d, want 1000", loaded.ProcessingTimeMs)
	}
}
