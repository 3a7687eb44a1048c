package geometry

import "math"

// PolygonArea computes the enclosed area of a closed polygon using the
// shoelace formula. A duplicated closing vertex is tolerated. Polygons with
// fewer than 3 distinct vertices have zero area.
func PolygonArea(points []Point) float64 {
	pts := dropClosingVertex(points)
	if len(pts) < 3 {
		return 0
	}
	var sum float64
	for i := range pts {
		j := (i + 1) % len(pts)
		sum += pts[i].X*pts[j].Y - pts[j].X*pts[i].Y
	}
	return math.Abs(sum) / 2
}

// PolygonPerimeter sums the edge lengths of a closed polygon, including the
// closing edge from the last vertex back to the first.
func PolygonPerimeter(points []Point) float64 {
	pts := dropClosingVertex(points)
	if len(pts) < 2 {
		return 0
	}
	var sum float64
	for i := range pts {
		sum += pts[i].Distance(pts[(i+1)%len(pts)])
	}
	return sum
}

// Centroid returns the vertex-average centroid of a polygon.
func Centroid(points []Point) Point {
	pts := dropClosingVertex(points)
	if len(pts) == 0 {
		return Point{}
	}
	var cx, cy float64
	for _, p := range pts {
		cx += p.X
		cy += p.Y
	}
	n := float64(len(pts))
	return Point{X: cx / n, Y: cy / n}
}

// BoundingBox returns the axis-aligned bounding box of a point set.
func BoundingBox(points []Point) Rect {
	if len(points) == 0 {
		return Rect{}
	}
	minX, minY := points[0].X, points[0].Y
	maxX, maxY := minX, minY
	for _, p := range points[1:] {
		minX = math.Min(minX, p.X)
		maxX = math.Max(maxX, p.X)
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// InteriorAngles returns the interior angle at each vertex of a polygon, in
// degrees, computed via atan2 of the cross and dot products of the two
// adjacent edge vectors. Results lie in [0, 360).
func InteriorAngles(points []Point) []float64 {
	pts := dropClosingVertex(points)
	if len(pts) < 3 {
		return nil
	}
	angles := make([]float64, len(pts))
	for i := range pts {
		prev := pts[(i+len(pts)-1)%len(pts)]
		next := pts[(i+1)%len(pts)]
		v1 := prev.Sub(pts[i])
		v2 := next.Sub(pts[i])
		cross := v1.X*v2.Y - v1.Y*v2.X
		dot := v1.X*v2.X + v1.Y*v2.Y
		deg := math.Atan2(cross, dot) * 180 / math.Pi
		if deg < 0 {
			deg += 360
		}
		angles[i] = deg
	}
	return angles
}

// PointToLineDistance returns the perpendicular distance from p to the
// infinite line through a and b. Degenerate (zero-length) lines return the
// plain point distance.
func PointToLineDistance(p, a, b Point) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	denom := math.Sqrt(dx*dx + dy*dy)
	if denom == 0 {
		return p.Distance(a)
	}
	return math.Abs(dy*p.X-dx*p.Y+b.X*a.Y-b.Y*a.X) / denom
}

// PointToSegmentDistance returns the distance from p to the closest point
// on the segment ab, including its endpoints.
func PointToSegmentDistance(p, a, b Point) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return p.Distance(a)
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return p.Distance(Point{X: a.X + t*dx, Y: a.Y + t*dy})
}

// Simplify reduces a polyline's vertex count using Douglas-Peucker with the
// given tolerance. Endpoints are always retained.
func Simplify(points []Point, epsilon float64) []Point {
	if len(points) < 3 || epsilon <= 0 {
		return points
	}
	maxDist := 0.0
	index := 0
	last := len(points) - 1
	for i := 1; i < last; i++ {
		d := PointToLineDistance(points[i], points[0], points[last])
		if d > maxDist {
			maxDist = d
			index = i
		}
	}
	if maxDist <= epsilon {
		return []Point{points[0], points[last]}
	}
	left := Simplify(points[:index+1], epsilon)
	right := Simplify(points[index:], epsilon)
	return append(left[:len(left)-1], right...)
}

// dropClosingVertex strips a duplicated closing vertex so vertex-count
// arithmetic treats open and explicitly closed rings the same way.
func dropClosingVertex(points []Point) []Point {
	if len(points) > 1 && points[0] == points[len(points)-1] {
		return points[:len(points)-1]
	}
	return points
}
