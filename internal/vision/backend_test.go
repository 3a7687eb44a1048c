package vision

import (
	"testing"

	"github.com/planwise/floorplan-vision/internal/detection"
	"github.com/planwise/floorplan-vision/internal/imaging"
)

func testPrepared(width, height int) *imaging.Prepared {
	gray := make([][]float64, height)
	for y := range gray {
		gray[y] = make([]float64, width)
		for x := range gray[y] {
			gray[y][x] = 1
		}
	}
	return &imaging.Prepared{Gray: gray, Width: width, Height: height, Scale: 1}
}

func TestBackendNames(t *testing.T) {
	if got := NewStandard().Name(); got != "standard" {
		t.Errorf("standard name: %q", got)
	}
	if got := NewNull().Name(); got != "null" {
		t.Errorf("null name: %q", got)
	}
}

func TestStandardDelegatesToDetection(t *testing.T) {
	var backend Backend = NewStandard()

	prep := testPrepared(20, 20)
	edges := backend.DetectEdges(prep, detection.DefaultEdgeOptions())
	if edges == nil || edges.Width != 20 || edges.Height != 20 {
		t.Fatalf("edge map: %+v", edges)
	}
	// Uniform white input: the delegated detector finds nothing.
	if edges.Count != 0 {
		t.Errorf("edges on a blank image: %d", edges.Count)
	}

	if lines := backend.DetectLines(edges, detection.DefaultLineOptions()); len(lines) != 0 {
		t.Errorf("lines on a blank image: %d", len(lines))
	}
	if contours := backend.ExtractContours(edges, detection.DefaultContourOptions()); len(contours) != 0 {
		t.Errorf("contours on a blank image: %d", len(contours))
	}
}

func TestNullBackendWellFormedEmpties(t *testing.T) {
	var backend Backend = NewNull()

	prep := testPrepared(12, 8)
	edges := backend.DetectEdges(prep, detection.DefaultEdgeOptions())
	if edges.Width != 12 || edges.Height != 8 || edges.Count != 0 {
		t.Fatalf("edge map: %+v", edges)
	}
	if len(edges.Mask) != 8 || len(edges.Mask[0]) != 12 {
		t.Errorf("mask shape: %dx%d", len(edges.Mask), len(edges.Mask[0]))
	}
	if edges.At(5, 5) {
		t.Error("null edge map reported an edge")
	}

	lines := backend.DetectLines(edges, detection.DefaultLineOptions())
	if lines == nil || len(lines) != 0 {
		t.Errorf("lines: %+v", lines)
	}
	contours := backend.ExtractContours(edges, detection.DefaultContourOptions())
	if contours == nil || len(contours) != 0 {
		t.Errorf("contours: %+v", contours)
	}
}

func TestNullBackendNilPrepared(t *testing.T) {
	edges := NewNull().DetectEdges(nil, detection.DefaultEdgeOptions())
	if edges.Width != 0 || edges.Height != 0 || len(edges.Mask) != 0 {
		t.Errorf("nil prepared: %+v", edges)
	}
}
