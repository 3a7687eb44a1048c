package detection

import (
	"math"

	"github.com/planwise/floorplan-vision/internal/geometry"
)

// MergeOptions configures collinear segment merging.
type MergeOptions struct {
	// AngleTolerance is the maximum angular difference, in radians mod π,
	// for two segments to count as parallel.
	AngleTolerance float64

	// MaxDistance is the maximum perpendicular offset between a segment's
	// midpoint and the axis it is merged into.
	MaxDistance float64
}

// DefaultMergeOptions returns the tuned merge parameters.
func DefaultMergeOptions() MergeOptions {
	return MergeOptions{
		AngleTolerance: 0.175, // ~10°
		MaxDistance:    10,
	}
}

// MergeCollinear fuses near-collinear, nearby segments into single lines.
//
// Segments are absorbed transitively: each unmerged segment seeds a group,
// and any segment parallel to the group's axis (within AngleTolerance) whose
// midpoint lies within MaxDistance of the axis joins it. A group collapses
// to one segment spanning the extreme endpoint projections along the axis of
// its longest member.
//
// Merging is idempotent: any two segments surviving a pass are either not
// parallel or farther apart than MaxDistance, so a second pass is a no-op.
func MergeCollinear(segments []geometry.LineSegment, opts MergeOptions) []geometry.LineSegment {
	if len(segments) <= 1 {
		return segments
	}

	used := make([]bool, len(segments))
	merged := make([]geometry.LineSegment, 0, len(segments))

	for i := range segments {
		if used[i] {
			continue
		}
		used[i] = true
		group := []geometry.LineSegment{segments[i]}
		axis := segments[i]

		for {
			grew := false
			for j := range segments {
				if used[j] {
					continue
				}
				if !similarSegments(axis, segments[j], opts) {
					continue
				}
				used[j] = true
				group = append(group, segments[j])
				if segments[j].Length > axis.Length {
					axis = segments[j]
				}
				grew = true
			}
			if !grew {
				break
			}
		}

		merged = append(merged, collapseGroup(group, axis))
	}

	return merged
}

// similarSegments reports whether candidate is parallel to axis and close
// enough to belong to the same physical line.
func similarSegments(axis, candidate geometry.LineSegment, opts MergeOptions) bool {
	if geometry.AngleDiff(axis.Angle, candidate.Angle) > opts.AngleTolerance {
		return false
	}
	mid := candidate.Midpoint()
	return geometry.PointToLineDistance(mid, axis.Start, axis.End) < opts.MaxDistance
}

// collapseGroup replaces a group of near-collinear segments with one segment
// spanning the extreme endpoint projections onto the axis direction.
func collapseGroup(group []geometry.LineSegment, axis geometry.LineSegment) geometry.LineSegment {
	if len(group) == 1 {
		return group[0]
	}

	dx := axis.End.X - axis.Start.X
	dy := axis.End.Y - axis.Start.Y
	norm := math.Sqrt(dx*dx + dy*dy)
	if norm == 0 {
		return axis
	}
	ux, uy := dx/norm, dy/norm

	minProj := math.Inf(1)
	maxProj := math.Inf(-1)
	var minPt, maxPt geometry.Point
	for _, seg := range group {
		for _, pt := range []geometry.Point{seg.Start, seg.End} {
			// Project the endpoint onto the axis line so lateral jitter
			// between the merged segments doesn't bend the result.
			t := (pt.X-axis.Start.X)*ux + (pt.Y-axis.Start.Y)*uy
			proj := geometry.Point{X: axis.Start.X + t*ux, Y: axis.Start.Y + t*uy}
			if t < minProj {
				minProj = t
				minPt = proj
			}
			if t > maxProj {
				maxProj = t
				maxPt = proj
			}
		}
	}

	return geometry.NewLineSegment(minPt, maxPt)
}
