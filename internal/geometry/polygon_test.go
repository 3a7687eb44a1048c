package geometry

import (
	"math"
	"testing"
)

func square10() []Point {
	return []Point{{0, 0}, {10, 0}, {10, 10}, {0, 10}}
}

func TestPolygonArea_Square(t *testing.T) {
	area := PolygonArea(square10())
	if area != 100 {
		t.Errorf("Expected area 100, got %v", area)
	}
}

func TestPolygonArea_ClosedRing(t *testing.T) {
	ring := append(square10(), Point{0, 0})
	if area := PolygonArea(ring); area != 100 {
		t.Errorf("Expected area 100 for explicitly closed ring, got %v", area)
	}
}

func TestPolygonArea_Degenerate(t *testing.T) {
	if area := PolygonArea([]Point{{0, 0}, {10, 10}}); area != 0 {
		t.Errorf("Expected zero area for 2-point polygon, got %v", area)
	}
	if area := PolygonArea(nil); area != 0 {
		t.Errorf("Expected zero area for nil polygon, got %v", area)
	}
}

func TestPolygonPerimeter_Square(t *testing.T) {
	if p := PolygonPerimeter(square10()); p != 40 {
		t.Errorf("Expected perimeter 40, got %v", p)
	}
}

func TestCentroid_Square(t *testing.T) {
	c := Centroid(square10())
	if c.X != 5 || c.Y != 5 {
		t.Errorf("Expected centroid (5,5), got (%v,%v)", c.X, c.Y)
	}
}

func TestBoundingBox(t *testing.T) {
	box := BoundingBox([]Point{{2, 3}, {8, 1}, {5, 9}})
	if box.X != 2 || box.Y != 1 || box.Width != 6 || box.Height != 8 {
		t.Errorf("Unexpected bounding box: %+v", box)
	}
}

func TestInteriorAngles_Square(t *testing.T) {
	angles := InteriorAngles(square10())
	if len(angles) != 4 {
		t.Fatalf("Expected 4 angles, got %d", len(angles))
	}
	for i, a := range angles {
		// Interior right angles come out as 90 or 270 depending on winding.
		if math.Abs(a-90) > 0.001 && math.Abs(a-270) > 0.001 {
			t.Errorf("Vertex %d: expected right angle, got %v", i, a)
		}
	}
}

func TestNormalizeAngle(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{math.Pi, 0},
		{math.Pi / 2, math.Pi / 2},
		{-math.Pi / 2, math.Pi / 2},
		{3 * math.Pi / 2, math.Pi / 2},
	}
	for _, tt := range tests {
		if got := NormalizeAngle(tt.in); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("NormalizeAngle(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestAngleDiff_Wraparound(t *testing.T) {
	// 1° and 179° are nearly parallel directions.
	a := 1 * math.Pi / 180
	b := 179 * math.Pi / 180
	if d := AngleDiff(a, b); d > 3*math.Pi/180 {
		t.Errorf("Expected near-parallel angles, diff %v rad", d)
	}
}

func TestPointToLineDistance(t *testing.T) {
	d := PointToLineDistance(Point{5, 5}, Point{0, 0}, Point{10, 0})
	if math.Abs(d-5) > 1e-9 {
		t.Errorf("Expected distance 5, got %v", d)
	}

	// Degenerate line falls back to point distance.
	d = PointToLineDistance(Point{3, 4}, Point{0, 0}, Point{0, 0})
	if math.Abs(d-5) > 1e-9 {
		t.Errorf("Expected distance 5 to degenerate line, got %v", d)
	}
}

func TestSimplify_CollinearRun(t *testing.T) {
	line := []Point{{0, 0}, {1, 0.01}, {2, 0}, {3, -0.01}, {4, 0}}
	got := Simplify(line, 0.5)
	if len(got) != 2 {
		t.Errorf("Expected collinear run to simplify to endpoints, got %d points", len(got))
	}
}

func TestNewLineSegment(t *testing.T) {
	seg := NewLineSegment(Point{0, 0}, Point{10, 0})
	if seg.Length != 10 {
		t.Errorf("Expected length 10, got %v", seg.Length)
	}
	if seg.Angle != 0 {
		t.Errorf("Expected angle 0, got %v", seg.Angle)
	}

	rev := NewLineSegment(Point{10, 0}, Point{0, 0})
	if rev.Angle != seg.Angle {
		t.Errorf("Expected reversed segment to share normalized angle, got %v vs %v", rev.Angle, seg.Angle)
	}
}
