// Package vision defines the capability interface between the pipeline and
// its vision primitives, so the heavy raster algorithms can be swapped for
// an explicit null implementation when a deployment has no vision capacity.
// Backend selection happens by dependency injection at startup, never by
// runtime probing.
package vision

import (
	"github.com/planwise/floorplan-vision/internal/detection"
	"github.com/planwise/floorplan-vision/internal/geometry"
	"github.com/planwise/floorplan-vision/internal/imaging"
)

// Backend provides the raster vision primitives the pipeline builds on.
// Implementations must be safe for concurrent use: the pipeline runs one
// instance per image but shares the backend.
type Backend interface {
	// Name identifies the backend in result metadata and logs.
	Name() string

	// DetectEdges produces a binary edge map for a prepared image.
	DetectEdges(prep *imaging.Prepared, opts detection.EdgeOptions) *detection.EdgeMap

	// DetectLines extracts raw line segments from an edge map.
	DetectLines(edges *detection.EdgeMap, opts detection.LineOptions) []geometry.LineSegment

	// ExtractContours finds closed boundary candidates in an edge map.
	ExtractContours(edges *detection.EdgeMap, opts detection.ContourOptions) []geometry.Contour
}

// Standard is the pure-Go vision backend wrapping the detection package.
type Standard struct{}

// NewStandard returns the default pure-Go backend.
func NewStandard() *Standard { return &Standard{} }

func (*Standard) Name() string { return "standard" }

func (*Standard) DetectEdges(prep *imaging.Prepared, opts detection.EdgeOptions) *detection.EdgeMap {
	return detection.DetectEdges(prep, opts)
}

func (*Standard) DetectLines(edges *detection.EdgeMap, opts detection.LineOptions) []geometry.LineSegment {
	return detection.DetectSegments(edges, opts)
}

func (*Standard) ExtractContours(edges *detection.EdgeMap, opts detection.ContourOptions) []geometry.Contour {
	return detection.ExtractContours(edges, opts)
}

// Null is the explicit no-vision backend. Every method returns well-formed
// empty results, letting the rest of the pipeline and the learning engine
// run without a vision capability. Selecting Null is a deployment decision;
// the pipeline also falls back to it when the configured backend fails.
type Null struct{}

// NewNull returns the null backend.
func NewNull() *Null { return &Null{} }

func (*Null) Name() string { return "null" }

func (*Null) DetectEdges(prep *imaging.Prepared, opts detection.EdgeOptions) *detection.EdgeMap {
	width, height := 0, 0
	if prep != nil {
		width, height = prep.Width, prep.Height
	}
	mask := make([][]bool, height)
	for y := range mask {
		mask[y] = make([]bool, width)
	}
	return &detection.EdgeMap{Mask: mask, Width: width, Height: height}
}

func (*Null) DetectLines(*detection.EdgeMap, detection.LineOptions) []geometry.LineSegment {
	return []geometry.LineSegment{}
}

func (*Null) ExtractContours(*detection.EdgeMap, detection.ContourOptions) []geometry.Contour {
	return []geometry.Contour{}
}
