package detection

import (
	"math"
	"testing"

	"github.com/planwise/floorplan-vision/internal/imaging"
)

// permissiveLineOptions keeps the vote threshold low enough for the small
// synthetic edge maps used here.
func permissiveLineOptions() LineOptions {
	return LineOptions{
		VoteThreshold: 30,
		MinLength:     20,
		MaxGap:        5,
		MaxLines:      50,
	}
}

func TestDetectSegmentsHorizontalRun(t *testing.T) {
	edges := newEdgeMap(128, 64)
	for x := 10; x <= 110; x++ {
		edges.set(x, 30)
	}

	segments := DetectSegments(edges, permissiveLineOptions())
	if len(segments) != 1 {
		t.Fatalf("segments: got %d, want 1", len(segments))
	}
	seg := segments[0]
	if math.Abs(seg.Length-100) > 2 {
		t.Errorf("length: got %v, want ~100", seg.Length)
	}
	if seg.Start.Y != 30 || seg.End.Y != 30 {
		t.Errorf("segment left the drawn row: %+v", seg)
	}
}

func TestDetectSegmentsSplitsAtGaps(t *testing.T) {
	edges := newEdgeMap(160, 64)
	for x := 10; x <= 60; x++ {
		edges.set(x, 30)
	}
	// 15px break, wider than MaxGap: the line must split here rather than
	// bridge, or doorway gaps would be painted over.
	for x := 76; x <= 126; x++ {
		edges.set(x, 30)
	}

	segments := DetectSegments(edges, permissiveLineOptions())
	if len(segments) != 2 {
		t.Fatalf("segments: got %d, want 2", len(segments))
	}
	for _, seg := range segments {
		if math.Abs(seg.Length-50) > 2 {
			t.Errorf("run length: got %v, want ~50", seg.Length)
		}
	}
}

func TestDetectSegmentsDropsShortRuns(t *testing.T) {
	edges := newEdgeMap(128, 64)
	// Enough pixels to vote past the threshold, split into runs all shorter
	// than MinLength.
	for _, span := range [][2]int{{10, 24}, {32, 46}, {54, 68}} {
		for x := span[0]; x <= span[1]; x++ {
			edges.set(x, 30)
		}
	}

	segments := DetectSegments(edges, permissiveLineOptions())
	if len(segments) != 0 {
		t.Errorf("short runs kept: %+v", segments)
	}
}

func TestDetectSegmentsMaxLinesCap(t *testing.T) {
	edges := newEdgeMap(128, 64)
	for x := 10; x <= 110; x++ {
		edges.set(x, 20)
		edges.set(x, 40)
	}

	opts := permissiveLineOptions()
	opts.MaxLines = 1
	segments := DetectSegments(edges, opts)
	if len(segments) != 1 {
		t.Errorf("cap ignored: got %d segments", len(segments))
	}
}

func TestDetectSegmentsEmptyInput(t *testing.T) {
	if got := DetectSegments(newEdgeMap(64, 64), permissiveLineOptions()); got != nil {
		t.Errorf("empty edge map: got %+v", got)
	}
}

func TestAdaptiveLineOptions(t *testing.T) {
	tests := []struct {
		name      string
		stdDev    float64
		votes     int
		minLength float64
		maxGap    float64
	}{
		{"pencil sketch", 20, 50, 30, 20},
		{"cad export", 150, 150, 80, 5},
		{"typical scan", 60, 100, 50, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := AdaptiveLineOptions(imaging.Stats{StdDev: tt.stdDev}, 30, 100)
			if opts.VoteThreshold != tt.votes || opts.MinLength != tt.minLength || opts.MaxGap != tt.maxGap {
				t.Errorf("got %d/%v/%v, want %d/%v/%v",
					opts.VoteThreshold, opts.MinLength, opts.MaxGap,
					tt.votes, tt.minLength, tt.maxGap)
			}
		})
	}
}
