// Package geometry provides the 2D primitives shared by the detection
// pipeline: points, line segments, rectangles, and closed contours.
//
// All coordinates use the standard image convention: origin (0,0) at the
// top-left corner, X increasing rightward, Y increasing downward. Angles are
// measured in radians from the positive X axis; for parallelism tests they
// are normalized modulo π so a segment and its reverse compare equal.
package geometry

import "math"

// Point represents a 2D pixel coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Distance returns the Euclidean distance to another point.
func (p Point) Distance(other Point) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Sub returns the vector from other to p.
func (p Point) Sub(other Point) Point {
	return Point{X: p.X - other.X, Y: p.Y - other.Y}
}

// LineSegment is a directed segment with derived angle and length.
//
// Angle is normalized to [0, π) so that a segment and its reverse carry the
// same angle; parallelism tests rely on this.
type LineSegment struct {
	Start  Point   `json:"start"`
	End    Point   `json:"end"`
	Angle  float64 `json:"angle"`
	Length float64 `json:"length"`
}

// NewLineSegment builds a LineSegment with its angle and length populated.
func NewLineSegment(start, end Point) LineSegment {
	return LineSegment{
		Start:  start,
		End:    end,
		Angle:  NormalizeAngle(math.Atan2(end.Y-start.Y, end.X-start.X)),
		Length: start.Distance(end),
	}
}

// Midpoint returns the segment's midpoint.
func (l LineSegment) Midpoint() Point {
	return Point{X: (l.Start.X + l.End.X) / 2, Y: (l.Start.Y + l.End.Y) / 2}
}

// Rect is an axis-aligned rectangle.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Area returns the rectangle's area.
func (r Rect) Area() float64 {
	return r.Width * r.Height
}

// Center returns the center point of the rectangle.
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Contour is a closed boundary candidate extracted from an edge map.
// A Contour is immutable once extracted: filters inspect it, they never
// modify it.
type Contour struct {
	Points      []Point `json:"points"`
	Area        float64 `json:"area"`
	Perimeter   float64 `json:"perimeter"`
	BoundingBox Rect    `json:"bounding_box"`
}

// NewContour derives area, perimeter, and bounding box from the boundary
// points. The point slice is retained, not copied.
func NewContour(points []Point) Contour {
	return Contour{
		Points:      points,
		Area:        PolygonArea(points),
		Perimeter:   PolygonPerimeter(points),
		BoundingBox: BoundingBox(points),
	}
}

// NormalizeAngle maps an angle in radians into [0, π), treating θ and θ+π
// as the same direction.
func NormalizeAngle(theta float64) float64 {
	theta = math.Mod(theta, math.Pi)
	if theta < 0 {
		theta += math.Pi
	}
	return theta
}

// AngleDiff returns the smallest difference between two normalized angles,
// accounting for wraparound at π. The result lies in [0, π/2].
func AngleDiff(a, b float64) float64 {
	d := math.Abs(NormalizeAngle(a) - NormalizeAngle(b))
	if d > math.Pi/2 {
		d = math.Pi - d
	}
	return d
}
