package detection

import (
	"math"
	"sort"

	"github.com/planwise/floorplan-vision/internal/geometry"
)

// ContourOptions configures contour extraction and filtering.
type ContourOptions struct {
	// MinPixels discards enclosed regions smaller than this before any
	// polygon work; they are scanner noise, not rooms.
	MinPixels int

	// SimplifyEpsilonRatio sets the Douglas-Peucker tolerance as a fraction
	// of the contour's raw perimeter.
	SimplifyEpsilonRatio float64

	// MinArea and MaxArea bound the shoelace area of acceptable rooms.
	MinArea float64
	MaxArea float64

	// FillRatioMin and FillRatioMax bound area ÷ bounding-box area. Rooms
	// are boxy but rarely perfectly rectangular after detection noise.
	FillRatioMin float64
	FillRatioMax float64

	// RightAngleToleranceDeg and RectangularityQuorum control the vertex
	// angle test: at least the quorum fraction of vertices must have an
	// interior angle within the tolerance of 90° or 270°.
	RightAngleToleranceDeg float64
	RectangularityQuorum   float64
}

// DefaultContourOptions returns the tuned contour parameters.
func DefaultContourOptions() ContourOptions {
	return ContourOptions{
		MinPixels:              10,
		SimplifyEpsilonRatio:   0.02,
		MinArea:                1000,
		MaxArea:                100000,
		FillRatioMin:           0.6,
		FillRatioMax:           0.95,
		RightAngleToleranceDeg: 15,
		RectangularityQuorum:   0.6,
	}
}

// ExtractContours finds closed room-boundary contours in an edge map.
//
// The wall line-work of a plan is one connected blob of edge pixels, so
// tracing edge components yields nothing room-shaped. Instead the non-edge
// pixels are flood filled: 4-connected regions that never reach the image
// border are enclosed interiors, exactly the areas the line-work bounds.
// Each region's boundary pixels are ordered angularly around the region
// centroid into a closed ring, then simplified with Douglas-Peucker
// (tolerance = SimplifyEpsilonRatio × ring perimeter) so the vertex-angle
// filters see the polygon's corners rather than pixel staircase noise.
func ExtractContours(edges *EdgeMap, opts ContourOptions) []geometry.Contour {
	if edges == nil || edges.Count == 0 {
		return nil
	}

	regions := enclosedRegions(edges, opts.MinPixels)

	contours := make([]geometry.Contour, 0, len(regions))
	for _, region := range regions {
		ring := orderAsRing(regionBoundary(region, edges))
		if len(ring) < 3 {
			continue
		}
		epsilon := opts.SimplifyEpsilonRatio * geometry.PolygonPerimeter(ring)
		simplified := geometry.Simplify(ring, epsilon)
		if len(simplified) < 3 {
			continue
		}
		contours = append(contours, geometry.NewContour(simplified))
	}
	return contours
}

// enclosedRegions groups non-edge pixels into 4-connected regions with an
// iterative (stack-based) flood fill and keeps the regions that never touch
// the image border. The unbounded background always reaches the border, so
// it can never become a whole-image contour.
func enclosedRegions(edges *EdgeMap, minPixels int) [][]geometry.Point {
	visited := make([][]bool, edges.Height)
	for y := range visited {
		visited[y] = make([]bool, edges.Width)
	}

	regions := make([][]geometry.Point, 0)
	for y := 0; y < edges.Height; y++ {
		for x := 0; x < edges.Width; x++ {
			if edges.Mask[y][x] || visited[y][x] {
				continue
			}

			region := make([]geometry.Point, 0)
			touchesBorder := false
			stack := [][2]int{{x, y}}
			for len(stack) > 0 {
				p := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				px, py := p[0], p[1]
				if px < 0 || px >= edges.Width || py < 0 || py >= edges.Height {
					continue
				}
				if visited[py][px] || edges.Mask[py][px] {
					continue
				}
				visited[py][px] = true
				if px == 0 || px == edges.Width-1 || py == 0 || py == edges.Height-1 {
					touchesBorder = true
				}
				region = append(region, geometry.Point{X: float64(px), Y: float64(py)})

				stack = append(stack,
					[2]int{px + 1, py}, [2]int{px - 1, py},
					[2]int{px, py + 1}, [2]int{px, py - 1})
			}

			if !touchesBorder && len(region) >= minPixels {
				regions = append(regions, region)
			}
		}
	}
	return regions
}

// regionBoundary keeps the region pixels adjacent to the surrounding edge
// line-work; these trace the room outline. Enclosed regions never touch the
// image border, so every neighbor probe stays in bounds.
func regionBoundary(region []geometry.Point, edges *EdgeMap) []geometry.Point {
	boundary := make([]geometry.Point, 0)
	for _, p := range region {
		x, y := int(p.X), int(p.Y)
		if edges.At(x+1, y) || edges.At(x-1, y) || edges.At(x, y+1) || edges.At(x, y-1) {
			boundary = append(boundary, p)
		}
	}
	return boundary
}

// orderAsRing sorts a component's pixels by polar angle around the component
// centroid, producing a closed ring. Room outlines are star-shaped around
// their centroid, which is all this ordering requires.
func orderAsRing(points []geometry.Point) []geometry.Point {
	center := geometry.Centroid(points)
	ring := make([]geometry.Point, len(points))
	copy(ring, points)
	sort.Slice(ring, func(i, j int) bool {
		ai := math.Atan2(ring[i].Y-center.Y, ring[i].X-center.X)
		aj := math.Atan2(ring[j].Y-center.Y, ring[j].X-center.X)
		if ai != aj {
			return ai < aj
		}
		return center.Distance(ring[i]) < center.Distance(ring[j])
	})
	return ring
}

// FilterContours applies the room-candidate rules in order, rejecting on the
// first failure: vertex count, shoelace area window, fill ratio window, and
// vertex-angle rectangularity. It returns the survivors plus per-rule
// rejection counts for result metadata.
func FilterContours(contours []geometry.Contour, opts ContourOptions) ([]geometry.Contour, FilterStats) {
	var stats FilterStats
	accepted := make([]geometry.Contour, 0, len(contours))
	for _, c := range contours {
		switch {
		case !HasMinVertices(c, 4):
			stats.TooFewVertices++
		case !AreaInRange(c, opts.MinArea, opts.MaxArea):
			stats.AreaOutOfRange++
		case !FillRatioInRange(c, opts.FillRatioMin, opts.FillRatioMax):
			stats.FillRatioRejected++
		case !IsRectangular(c, opts.RightAngleToleranceDeg, opts.RectangularityQuorum):
			stats.NotRectangular++
		default:
			accepted = append(accepted, c)
		}
	}
	return accepted, stats
}

// FilterStats counts contour rejections per rule.
type FilterStats struct {
	TooFewVertices    int `json:"too_few_vertices"`
	AreaOutOfRange    int `json:"area_out_of_range"`
	FillRatioRejected int `json:"fill_ratio_rejected"`
	NotRectangular    int `json:"not_rectangular"`
}

// HasMinVertices reports whether the contour has at least n distinct
// vertices (a duplicated closing vertex does not count).
func HasMinVertices(c geometry.Contour, n int) bool {
	pts := c.Points
	if len(pts) > 1 && pts[0] == pts[len(pts)-1] {
		pts = pts[:len(pts)-1]
	}
	return len(pts) >= n
}

// AreaInRange reports whether the contour's shoelace area lies within
// [minArea, maxArea].
func AreaInRange(c geometry.Contour, minArea, maxArea float64) bool {
	return c.Area >= minArea && c.Area <= maxArea
}

// FillRatio returns the contour's area divided by its bounding-box area,
// the "boxiness" measure. Degenerate bounding boxes yield 0.
func FillRatio(c geometry.Contour) float64 {
	boxArea := c.BoundingBox.Area()
	if boxArea == 0 {
		return 0
	}
	return c.Area / boxArea
}

// FillRatioInRange reports whether the contour's fill ratio lies within
// [lo, hi].
func FillRatioInRange(c geometry.Contour, lo, hi float64) bool {
	r := FillRatio(c)
	return r >= lo && r <= hi
}

// IsRectangular reports whether at least quorum of the contour's vertices
// have an interior angle within tolDeg of 90° or 270° (the winding
// determines which of the two a right-angled corner produces).
func IsRectangular(c geometry.Contour, tolDeg, quorum float64) bool {
	angles := geometry.InteriorAngles(c.Points)
	if len(angles) == 0 {
		return false
	}
	passing := 0
	for _, a := range angles {
		if math.Abs(a-90) <= tolDeg || math.Abs(a-270) <= tolDeg {
			passing++
		}
	}
	return float64(passing)/float64(len(angles)) >= quorum
}
