package learning

import (
	"math"
	"testing"
	"time"

	"github.com/planwise/floorplan-vision/internal/config"
	"github.com/planwise/floorplan-vision/internal/geometry"
)

// saveSessions persists n fabricated sessions through the store so the
// analyzer sees realistic documents.
func saveSessions(t *testing.T, store *Store, sessions []*Session) {
	t.Helper()
	for _, s := range sessions {
		id := store.StartSession(s.ImageHash)
		if err := store.AddWallData(id, s.Walls, SourceAI); err != nil {
			t.Fatalf("AddWallData failed: %v", err)
		}
		if _, err := store.SaveSession(id, time.Second); err != nil {
			t.Fatalf("SaveSession failed: %v", err)
		}
	}
}

func TestAnalyzePatternsInsufficientData(t *testing.T) {
	for _, n := range []int{0, 1, 2} {
		store, history := newTestStore(t)
		for i := 0; i < n; i++ {
			id := store.StartSession("img")
			if _, err := store.SaveSession(id, 0); err != nil {
				t.Fatalf("SaveSession failed: %v", err)
			}
		}

		analyzer := NewAnalyzer(history, config.Default())
		patterns, err := analyzer.AnalyzePatterns()
		if err != nil {
			t.Fatalf("AnalyzePatterns with %d sessions failed: %v", n, err)
		}
		if !patterns.InsufficientData {
			t.Errorf("%d sessions: expected insufficient data", n)
		}
		if patterns.Sessions != n {
			t.Errorf("%d sessions: Sessions=%d", n, patterns.Sessions)
		}
		if patterns.Message == "" {
			t.Errorf("%d sessions: missing message", n)
		}
	}
}

func TestAnalyzePatternsAggregation(t *testing.T) {
	store, history := newTestStore(t)

	// Three sessions. Interior walls get deleted in two of them; one
	// session carries a kept manual wall.
	for i := 0; i < 3; i++ {
		id := store.StartSession("img")
		if err := store.AddWallData(id, []WallRecord{
			testWall("exterior", 0, 0, 100, 0),
			testWall("interior", 0, 0, 0, 50),
		}, SourceAI); err != nil {
			t.Fatalf("AddWallData failed: %v", err)
		}
		session, _ := store.Session(id)
		if i < 2 {
			if err := store.MarkWallDeleted(id, session.Walls[1].ID); err != nil {
				t.Fatalf("MarkWallDeleted failed: %v", err)
			}
		}
		if i == 0 {
			if err := store.AddWallData(id, []WallRecord{testWall("interior", 200, 200, 200, 300)}, SourceManual); err != nil {
				t.Fatalf("AddWallData manual failed: %v", err)
			}
		}
		if err := store.AddRoomData(id, []RoomRecord{
			{Type: "bedroom", Area: 120 + float64(i)*10},
		}, SourceAI); err != nil {
			t.Fatalf("AddRoomData failed: %v", err)
		}
		if _, err := store.SaveSession(id, 0); err != nil {
			t.Fatalf("SaveSession failed: %v", err)
		}
	}

	analyzer := NewAnalyzer(history, config.Default())
	patterns, err := analyzer.AnalyzePatterns()
	if err != nil {
		t.Fatalf("AnalyzePatterns failed: %v", err)
	}
	if patterns.InsufficientData {
		t.Fatal("expected aggregated patterns")
	}

	interior := patterns.WallTypes["interior"]
	if interior.Detected != 4 || interior.Deleted != 2 {
		t.Errorf("interior: detected=%d deleted=%d, want 4/2", interior.Detected, interior.Deleted)
	}
	if interior.DeletionRate != 0.5 {
		t.Errorf("interior deletion rate: got %v, want 0.5", interior.DeletionRate)
	}
	if math.Abs(interior.DeletedConfidence-0.85) > 1e-9 {
		t.Errorf("deleted confidence: got %v, want 0.85", interior.DeletedConfidence)
	}

	exterior := patterns.WallTypes["exterior"]
	if exterior.Deleted != 0 || exterior.DeletionRate != 0 {
		t.Errorf("exterior should have no deletions: %+v", exterior)
	}

	// Both endpoints of the one kept manual wall.
	if len(patterns.ManualPositions) != 2 {
		t.Fatalf("manual positions: got %d, want 2", len(patterns.ManualPositions))
	}
	want := geometry.Point{X: 200, Y: 200}
	if patterns.ManualPositions[0] != want {
		t.Errorf("manual position: got %+v, want %+v", patterns.ManualPositions[0], want)
	}

	bedroom := patterns.RoomTypes["bedroom"]
	if bedroom.Count != 3 {
		t.Errorf("bedroom count: got %d, want 3", bedroom.Count)
	}
	if math.Abs(bedroom.AverageArea-130) > 1e-9 {
		t.Errorf("bedroom average area: got %v, want 130", bedroom.AverageArea)
	}

	// 3 of 20 sessions toward saturation.
	if math.Abs(patterns.Confidence-15) > 1e-9 {
		t.Errorf("pattern confidence: got %v, want 15", patterns.Confidence)
	}
}

func TestPatternConfidenceSaturates(t *testing.T) {
	if got := patternConfidence(20, 20); got != 100 {
		t.Errorf("at saturation: got %v, want 100", got)
	}
	if got := patternConfidence(40, 20); got != 100 {
		t.Errorf("beyond saturation: got %v, want 100", got)
	}
	if got := patternConfidence(5, 20); got != 25 {
		t.Errorf("below saturation: got %v, want 25", got)
	}
}
