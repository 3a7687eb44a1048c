package detection

import (
	"math"
	"testing"

	"github.com/planwise/floorplan-vision/internal/geometry"
)

func TestMergeCollinearFusesGappedSegments(t *testing.T) {
	// One drawn line broken into two detections with a 20px gap.
	segments := []geometry.LineSegment{
		horizontal(50, 0, 100),
		horizontal(50, 120, 250),
	}
	merged := MergeCollinear(segments, DefaultMergeOptions())

	if len(merged) != 1 {
		t.Fatalf("merged: got %d segments, want 1", len(merged))
	}
	if math.Abs(merged[0].Length-250) > 1e-9 {
		t.Errorf("span: got %v, want 250", merged[0].Length)
	}
}

func TestMergeCollinearAbsorbsLateralJitter(t *testing.T) {
	segments := []geometry.LineSegment{
		horizontal(50, 0, 100),
		horizontal(54, 90, 200), // 4px off the axis, within tolerance
	}
	merged := MergeCollinear(segments, DefaultMergeOptions())
	if len(merged) != 1 {
		t.Fatalf("merged: got %d segments, want 1", len(merged))
	}
	// Endpoints project onto the axis, so the result stays straight.
	if merged[0].Start.Y != merged[0].End.Y {
		t.Errorf("merged segment bent: %+v", merged[0])
	}
}

func TestMergeCollinearKeepsDistinctLines(t *testing.T) {
	tests := []struct {
		name     string
		segments []geometry.LineSegment
	}{
		{
			"parallel but offset beyond tolerance",
			[]geometry.LineSegment{horizontal(50, 0, 100), horizontal(65, 0, 100)},
		},
		{
			"perpendicular",
			[]geometry.LineSegment{
				horizontal(50, 0, 100),
				geometry.NewLineSegment(geometry.Point{X: 50, Y: 0}, geometry.Point{X: 50, Y: 100}),
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			merged := MergeCollinear(tt.segments, DefaultMergeOptions())
			if len(merged) != 2 {
				t.Errorf("merged: got %d segments, want 2", len(merged))
			}
		})
	}
}

func TestMergeCollinearIdempotent(t *testing.T) {
	segments := []geometry.LineSegment{
		horizontal(50, 0, 100),
		horizontal(52, 110, 200),
		horizontal(48, 205, 300),
		geometry.NewLineSegment(geometry.Point{X: 10, Y: 0}, geometry.Point{X: 10, Y: 150}),
	}
	once := MergeCollinear(segments, DefaultMergeOptions())
	twice := MergeCollinear(once, DefaultMergeOptions())

	if len(once) != len(twice) {
		t.Fatalf("second pass changed segment count: %d vs %d", len(once), len(twice))
	}
	for i := range once {
		if math.Abs(once[i].Length-twice[i].Length) > 1e-9 {
			t.Errorf("segment %d length changed: %v vs %v", i, once[i].Length, twice[i].Length)
		}
	}
}

func TestMergeCollinearSmallInputs(t *testing.T) {
	if got := MergeCollinear(nil, DefaultMergeOptions()); len(got) != 0 {
		t.Errorf("nil input: got %d segments", len(got))
	}
	one := []geometry.LineSegment{horizontal(10, 0, 50)}
	if got := MergeCollinear(one, DefaultMergeOptions()); len(got) != 1 {
		t.Errorf("single input: got %d segments", len(got))
	}
}
