package detection

import (
	"math"
	"sort"

	"github.com/google/uuid"

	"github.com/planwise/floorplan-vision/internal/geometry"
)

// Room is an accepted room boundary. Vertices form a closed polygon; it is
// not required to be a strict rectangle.
type Room struct {
	ID        string           `json:"id"`
	Vertices  []geometry.Point `json:"vertices"`
	Area      float64          `json:"area"`
	Perimeter float64          `json:"perimeter"`
	Centroid  geometry.Point   `json:"centroid"`
}

// RoomOptions configures room resolution and the wall-layout fallback.
type RoomOptions struct {
	// PerpendicularToleranceDeg is how far from axis-aligned a wall's
	// orientation may deviate and still be classified as horizontal or
	// vertical by the fallback.
	PerpendicularToleranceDeg float64

	// MinSide discards fallback cells whose width or height falls below
	// this; they are furniture and fixtures, not rooms.
	MinSide float64

	// DedupeRadius treats fallback candidates whose centroids lie within
	// this distance of an accepted one as duplicates.
	DedupeRadius float64
}

// DefaultRoomOptions returns the tuned room resolution parameters.
func DefaultRoomOptions() RoomOptions {
	return RoomOptions{
		PerpendicularToleranceDeg: 17,
		MinSide:                   100,
		DedupeRadius:              100,
	}
}

// ResolveRooms promotes filtered contours to rooms. When no contour
// survived filtering it falls back to synthesizing rectangular cells
// from the wall layout.
//
// If the fallback also finds nothing the result is an empty list: a wrong
// "no rooms" is preferable to a wrong "one giant room", so no whole-image
// room is ever synthesized.
func ResolveRooms(contours []geometry.Contour, walls []Wall, opts RoomOptions) []Room {
	if len(contours) > 0 {
		rooms := make([]Room, 0, len(contours))
		for _, c := range contours {
			rooms = append(rooms, roomFromPolygon(c.Points))
		}
		return rooms
	}
	return fallbackRooms(walls, opts)
}

func roomFromPolygon(vertices []geometry.Point) Room {
	return Room{
		ID:        uuid.New().String(),
		Vertices:  vertices,
		Area:      geometry.PolygonArea(vertices),
		Perimeter: geometry.PolygonPerimeter(vertices),
		Centroid:  geometry.Centroid(vertices),
	}
}

// fallbackRooms synthesizes rooms from the wall layout. Walls are split
// into near-horizontal and near-vertical families; each pair of adjacent
// vertical walls and adjacent horizontal walls bounds a candidate cell, and
// a cell becomes a room when all four walls actually span it. Consecutive
// pairs only, so a cell never bridges across an intermediate wall — two
// rooms sharing a wall come out as two cells, never one combined box.
func fallbackRooms(walls []Wall, opts RoomOptions) []Room {
	tol := opts.PerpendicularToleranceDeg * math.Pi / 180

	var horizontal, vertical []Wall
	for _, w := range walls {
		angle := w.Axis().Angle
		switch {
		case geometry.AngleDiff(angle, 0) <= tol:
			horizontal = append(horizontal, w)
		case geometry.AngleDiff(angle, math.Pi/2) <= tol:
			vertical = append(vertical, w)
		}
	}
	if len(horizontal) < 2 || len(vertical) < 2 {
		return []Room{}
	}

	sort.Slice(vertical, func(i, j int) bool {
		return vertical[i].Axis().Midpoint().X < vertical[j].Axis().Midpoint().X
	})
	sort.Slice(horizontal, func(i, j int) bool {
		return horizontal[i].Axis().Midpoint().Y < horizontal[j].Axis().Midpoint().Y
	})

	rooms := make([]Room, 0)
	for vi := 0; vi+1 < len(vertical); vi++ {
		left, right := vertical[vi], vertical[vi+1]
		x0 := math.Round(left.Axis().Midpoint().X)
		x1 := math.Round(right.Axis().Midpoint().X)
		if x1-x0 < opts.MinSide {
			continue
		}
		for hi := 0; hi+1 < len(horizontal); hi++ {
			top, bottom := horizontal[hi], horizontal[hi+1]
			y0 := math.Round(top.Axis().Midpoint().Y)
			y1 := math.Round(bottom.Axis().Midpoint().Y)
			if y1-y0 < opts.MinSide {
				continue
			}
			if !spansCell(left.Start.Y, left.End.Y, y0, y1) ||
				!spansCell(right.Start.Y, right.End.Y, y0, y1) ||
				!spansCell(top.Start.X, top.End.X, x0, x1) ||
				!spansCell(bottom.Start.X, bottom.End.X, x0, x1) {
				continue
			}

			candidate := roomFromPolygon([]geometry.Point{
				{X: x0, Y: y0},
				{X: x1, Y: y0},
				{X: x1, Y: y1},
				{X: x0, Y: y1},
			})
			if isDuplicateRoom(candidate, rooms, opts.DedupeRadius) {
				continue
			}
			rooms = append(rooms, candidate)
		}
	}
	return rooms
}

// spansCell reports whether a wall whose along-axis extent is [a, b] covers
// at least half of the cell span [lo, hi]. Walls shorter than that cannot
// plausibly bound the cell.
func spansCell(a, b, lo, hi float64) bool {
	wallLo, wallHi := math.Min(a, b), math.Max(a, b)
	overlap := math.Min(wallHi, hi) - math.Max(wallLo, lo)
	return overlap >= (hi-lo)/2
}

// isDuplicateRoom reports whether candidate's centroid lies within radius
// of an already accepted room's centroid.
func isDuplicateRoom(candidate Room, accepted []Room, radius float64) bool {
	for _, r := range accepted {
		if candidate.Centroid.Distance(r.Centroid) < radius {
			return true
		}
	}
	return false
}
