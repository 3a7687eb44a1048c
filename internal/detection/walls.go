package detection

import (
	"math"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat"

	"github.com/planwise/floorplan-vision/internal/geometry"
)

// WallType classifies a wall as part of the building envelope or an internal
// partition.
type WallType string

const (
	WallExterior WallType = "exterior"
	WallInterior WallType = "interior"
)

// Wall is a synthesized structural boundary with an estimated thickness.
//
// Type is decided only after all walls for an image are known, because the
// exterior/interior split compares each wall's thickness to the mean across
// the whole plan. ClassifyWallTypes mutates Type in that second pass; it is
// never set during synthesis.
type Wall struct {
	ID         string         `json:"id"`
	Start      geometry.Point `json:"start"`
	End        geometry.Point `json:"end"`
	Thickness  float64        `json:"thickness"`
	Type       WallType       `json:"type"`
	Confidence float64        `json:"confidence"`
}

// Axis returns the wall's centerline as a LineSegment.
func (w Wall) Axis() geometry.LineSegment {
	return geometry.NewLineSegment(w.Start, w.End)
}

// WallOptions configures wall synthesis.
type WallOptions struct {
	// AngleTolerance is the angular window, radians mod π, for two lines to
	// belong to the same wall group.
	AngleTolerance float64

	// MaxSpacing is the widest perpendicular spread a wall group may have.
	// Without it every pair of parallel walls in the plan would collapse
	// into one group.
	MaxSpacing float64

	// DefaultThickness is assumed when a group contains a single line (the
	// scan only resolved one face of the wall).
	DefaultThickness float64

	// BaseConfidence is assigned to every synthesized wall; the learning
	// engine refines it later from historical corrections.
	BaseConfidence float64

	// ExteriorRatio: walls thicker than ExteriorRatio times the mean
	// thickness are classified exterior.
	ExteriorRatio float64

	// MinThickness and MaxThickness clamp the estimated thickness. Face
	// pairs tighter than MinThickness are line-doubling artifacts; wider
	// than MaxThickness means the group caught a corridor, not a wall.
	MinThickness float64
	MaxThickness float64
}

// DefaultWallOptions returns the tuned wall synthesis parameters.
func DefaultWallOptions() WallOptions {
	return WallOptions{
		AngleTolerance:   0.1,
		MaxSpacing:       30,
		DefaultThickness: 6,
		BaseConfidence:   0.85,
		ExteriorRatio:    1.3,
		MinThickness:     3,
		MaxThickness:     25,
	}
}

// SynthesizeWalls groups merged line segments into wall segments.
//
// Lines join a group transitively when they are parallel within
// AngleTolerance (θ and θ+π treated as equal) and within MaxSpacing of a
// line already in the group. The longest line in a group becomes the wall's
// axis; thickness is the minimum perpendicular distance from the axis line
// to every other member, or DefaultThickness for singleton groups.
//
// The returned walls all carry BaseConfidence and an empty Type; call
// ClassifyWallTypes once every wall for the image is known. This stage never
// touches the learning engine.
func SynthesizeWalls(lines []geometry.LineSegment, opts WallOptions) []Wall {
	walls := make([]Wall, 0, len(lines))
	used := make([]bool, len(lines))

	for i := range lines {
		if used[i] {
			continue
		}
		if lines[i].Length == 0 {
			// Zero-length lines carry no direction; skip.
			used[i] = true
			continue
		}
		used[i] = true
		group := []geometry.LineSegment{lines[i]}

		for {
			grew := false
			for j := range lines {
				if used[j] || lines[j].Length == 0 {
					continue
				}
				if groupAccepts(group, lines[j], opts) {
					used[j] = true
					group = append(group, lines[j])
					grew = true
				}
			}
			if !grew {
				break
			}
		}

		walls = append(walls, wallFromGroup(group, opts))
	}

	return walls
}

// groupAccepts reports whether candidate is parallel and close to any line
// already in the group.
func groupAccepts(group []geometry.LineSegment, candidate geometry.LineSegment, opts WallOptions) bool {
	for _, member := range group {
		if geometry.AngleDiff(member.Angle, candidate.Angle) > opts.AngleTolerance {
			continue
		}
		d := geometry.PointToLineDistance(candidate.Midpoint(), member.Start, member.End)
		if d <= opts.MaxSpacing {
			return true
		}
	}
	return false
}

// wallFromGroup emits one wall per parallel group: the longest member is the
// axis, the closest other member sets the thickness.
func wallFromGroup(group []geometry.LineSegment, opts WallOptions) Wall {
	axis := group[0]
	for _, seg := range group[1:] {
		if seg.Length > axis.Length {
			axis = seg
		}
	}

	thickness := opts.DefaultThickness
	if len(group) > 1 {
		thickness = math.Inf(1)
		for _, seg := range group {
			if seg == axis {
				continue
			}
			d := geometry.PointToLineDistance(seg.Midpoint(), axis.Start, axis.End)
			if d < thickness {
				thickness = d
			}
		}
		if math.IsInf(thickness, 1) || thickness == 0 {
			thickness = opts.DefaultThickness
		}
	}
	if opts.MinThickness > 0 && thickness < opts.MinThickness {
		thickness = opts.MinThickness
	}
	if opts.MaxThickness > 0 && thickness > opts.MaxThickness {
		thickness = opts.MaxThickness
	}

	return Wall{
		ID:         uuid.New().String(),
		Start:      axis.Start,
		End:        axis.End,
		Thickness:  thickness,
		Confidence: opts.BaseConfidence,
	}
}

// ClassifyWallTypes sets each wall's Type by comparing its thickness to the
// mean across all walls: thicker than ExteriorRatio × mean means exterior.
// Runs as a second pass because the mean needs the full wall list.
func ClassifyWallTypes(walls []Wall, opts WallOptions) {
	if len(walls) == 0 {
		return
	}

	thicknesses := make([]float64, len(walls))
	for i, w := range walls {
		thicknesses[i] = w.Thickness
	}
	mean := stat.Mean(thicknesses, nil)

	for i := range walls {
		if mean > 0 && walls[i].Thickness > opts.ExteriorRatio*mean {
			walls[i].Type = WallExterior
		} else {
			walls[i].Type = WallInterior
		}
	}
}
