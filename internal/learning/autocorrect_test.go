package learning

import (
	"testing"

	"github.com/planwise/floorplan-vision/internal/config"
	"github.com/planwise/floorplan-vision/internal/geometry"
)

func TestAutoApplyBelowGateIsNoOp(t *testing.T) {
	corrector := NewCorrector(config.Default())
	walls := []WallRecord{{ID: "w1", Type: "interior"}}

	for _, patterns := range []*Patterns{
		nil,
		{InsufficientData: true},
		{Sessions: 5, Confidence: 25}, // below the apply gate of 30
	} {
		result := corrector.AutoApplyCorrections(patterns, walls)
		if result.AutoApplied {
			t.Errorf("patterns %+v: corrections applied below gate", patterns)
		}
		if len(result.Walls) != 1 || result.Walls[0].ID != "w1" {
			t.Errorf("patterns %+v: walls altered: %+v", patterns, result.Walls)
		}
		if len(result.Removed) != 0 || len(result.Suggested) != 0 {
			t.Errorf("patterns %+v: unexpected removals or suggestions", patterns)
		}
	}
}

func TestAutoApplyNoRemovalAtModerateConfidence(t *testing.T) {
	corrector := NewCorrector(config.Default())

	// Above the apply gate (30) but at the removal gate (50): walls that
	// history says are likely wrong still survive.
	patterns := &Patterns{
		Sessions:   10,
		Confidence: 50,
		WallTypes: map[string]WallTypeStats{
			"interior": {Detected: 10, Deleted: 8, DeletionRate: 0.8},
		},
	}
	walls := []WallRecord{{ID: "w1", Type: "interior"}}

	result := corrector.AutoApplyCorrections(patterns, walls)
	if !result.AutoApplied {
		t.Fatal("expected corrections to apply")
	}
	if len(result.Removed) != 0 {
		t.Errorf("removed at confidence 50: %v", result.Removed)
	}
	if len(result.Walls) != 1 {
		t.Errorf("walls: got %d, want 1", len(result.Walls))
	}
}

func TestAutoApplyRemovesLikelyIncorrect(t *testing.T) {
	corrector := NewCorrector(config.Default())

	patterns := fullConfidencePatterns()
	patterns.WallTypes["interior"] = WallTypeStats{Detected: 10, Deleted: 8, DeletionRate: 0.8}

	walls := []WallRecord{
		{ID: "bad", Type: "interior"},  // 0.5 − 0.3 = 0.2, likely incorrect
		{ID: "good", Type: "exterior"}, // stays at 0.5
	}

	result := corrector.AutoApplyCorrections(patterns, walls)
	if !result.AutoApplied {
		t.Fatal("expected corrections to apply")
	}
	if len(result.Removed) != 1 || result.Removed[0] != "bad" {
		t.Errorf("removed: got %v, want [bad]", result.Removed)
	}
	if len(result.Walls) != 1 || result.Walls[0].ID != "good" {
		t.Errorf("surviving walls: %+v", result.Walls)
	}
}

func TestAutoApplySuggestsFromClusters(t *testing.T) {
	corrector := NewCorrector(config.Default())

	patterns := fullConfidencePatterns()
	patterns.Sessions = 10
	// A recurring cluster far from any wall, plus scattered singles.
	patterns.ManualPositions = []geometry.Point{
		{X: 500, Y: 500}, {X: 520, Y: 510}, {X: 490, Y: 495}, {X: 510, Y: 505},
		{X: 2000, Y: 2000},
	}

	walls := []WallRecord{
		{ID: "w1", Type: "exterior", Start: geometry.Point{X: 0, Y: 0}, End: geometry.Point{X: 100, Y: 0}},
	}

	result := corrector.AutoApplyCorrections(patterns, walls)
	if len(result.Suggested) != 1 {
		t.Fatalf("suggestions: got %d, want 1", len(result.Suggested))
	}
	s := result.Suggested[0]
	if s.Source != SourceRAGLearning {
		t.Errorf("source: got %q, want %q", s.Source, SourceRAGLearning)
	}
	if s.Confidence != 0.4 {
		t.Errorf("confidence: got %v, want 0.4 (4 of 10 sessions)", s.Confidence)
	}
	if s.Start.Distance(geometry.Point{X: 505, Y: 502.5}) > 1e-9 {
		t.Errorf("cluster center: got %+v", s.Start)
	}
}

func TestAutoApplyNoSuggestionNearExistingWall(t *testing.T) {
	corrector := NewCorrector(config.Default())

	patterns := fullConfidencePatterns()
	patterns.Sessions = 10
	patterns.ManualPositions = []geometry.Point{
		{X: 100, Y: 50}, {X: 110, Y: 55}, {X: 95, Y: 45}, {X: 105, Y: 52}, {X: 102, Y: 48},
	}

	// Cluster center sits on this wall's span.
	walls := []WallRecord{
		{ID: "w1", Type: "interior", Start: geometry.Point{X: 0, Y: 50}, End: geometry.Point{X: 300, Y: 50}},
	}

	result := corrector.AutoApplyCorrections(patterns, walls)
	if len(result.Suggested) != 0 {
		t.Errorf("suggested next to an existing wall: %+v", result.Suggested)
	}
}

func TestAutoApplyTooFewManualSamples(t *testing.T) {
	corrector := NewCorrector(config.Default())

	patterns := fullConfidencePatterns()
	patterns.Sessions = 10
	patterns.ManualPositions = []geometry.Point{
		{X: 500, Y: 500}, {X: 510, Y: 505}, {X: 495, Y: 498}, {X: 505, Y: 502},
	}

	result := corrector.AutoApplyCorrections(patterns, nil)
	if len(result.Suggested) != 0 {
		t.Errorf("suggested with under %d samples: %+v",
			config.Default().ClusterMinSamples, result.Suggested)
	}
}

func TestClusterPoints(t *testing.T) {
	points := []geometry.Point{
		{X: 0, Y: 0}, {X: 50, Y: 0}, {X: 90, Y: 0}, // chained under the radius
		{X: 500, Y: 500},
	}
	clusters := clusterPoints(points, 100)
	if len(clusters) != 2 {
		t.Fatalf("clusters: got %d, want 2", len(clusters))
	}
	if len(clusters[0]) != 3 {
		t.Errorf("chained cluster: got %d points, want 3", len(clusters[0]))
	}
	if len(clusters[1]) != 1 {
		t.Errorf("lone point cluster: got %d points, want 1", len(clusters[1]))
	}
}
