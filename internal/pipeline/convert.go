package pipeline

import (
	"github.com/planwise/floorplan-vision/internal/detection"
	"github.com/planwise/floorplan-vision/internal/geometry"
	"github.com/planwise/floorplan-vision/internal/learning"
)

// The detection stages work at working resolution; results scale back to
// the original image's pixel space before leaving the pipeline.

func scalePoint(p geometry.Point, s float64) geometry.Point {
	return geometry.Point{X: p.X * s, Y: p.Y * s}
}

func scaleWalls(walls []detection.Wall, s float64) []detection.Wall {
	out := make([]detection.Wall, len(walls))
	for i, w := range walls {
		w.Start = scalePoint(w.Start, s)
		w.End = scalePoint(w.End, s)
		w.Thickness *= s
		out[i] = w
	}
	return out
}

func scaleDoors(doors []detection.Door, s float64) []detection.Door {
	out := make([]detection.Door, len(doors))
	for i, d := range doors {
		d.Position = scalePoint(d.Position, s)
		d.Width *= s
		out[i] = d
	}
	return out
}

func scaleWindows(windows []detection.Window, s float64) []detection.Window {
	out := make([]detection.Window, len(windows))
	for i, w := range windows {
		w.Position = scalePoint(w.Position, s)
		w.Width *= s
		w.Height *= s
		out[i] = w
	}
	return out
}

func scaleRooms(rooms []detection.Room, s float64) []detection.Room {
	out := make([]detection.Room, len(rooms))
	for i, r := range rooms {
		vertices := make([]geometry.Point, len(r.Vertices))
		for j, v := range r.Vertices {
			vertices[j] = scalePoint(v, s)
		}
		r.Vertices = vertices
		r.Area *= s * s
		r.Perimeter *= s
		r.Centroid = scalePoint(r.Centroid, s)
		out[i] = r
	}
	return out
}

func scaleLines(lines []geometry.LineSegment, s float64) []geometry.LineSegment {
	out := make([]geometry.LineSegment, len(lines))
	for i, l := range lines {
		out[i] = geometry.NewLineSegment(scalePoint(l.Start, s), scalePoint(l.End, s))
	}
	return out
}

func scaleContours(contours []geometry.Contour, s float64) []geometry.Contour {
	out := make([]geometry.Contour, len(contours))
	for i, c := range contours {
		points := make([]geometry.Point, len(c.Points))
		for j, p := range c.Points {
			points[j] = scalePoint(p, s)
		}
		out[i] = geometry.NewContour(points)
	}
	return out
}

func toWallRecords(walls []detection.Wall) []learning.WallRecord {
	records := make([]learning.WallRecord, len(walls))
	for i, w := range walls {
		records[i] = learning.WallRecord{
			ID:         w.ID,
			Type:       string(w.Type),
			Start:      w.Start,
			End:        w.End,
			Thickness:  w.Thickness,
			Confidence: w.Confidence,
			Method:     "hough",
		}
	}
	return records
}

func toRoomRecords(rooms []detection.Room) []learning.RoomRecord {
	records := make([]learning.RoomRecord, len(rooms))
	for i, r := range rooms {
		records[i] = learning.RoomRecord{
			ID:        r.ID,
			Vertices:  r.Vertices,
			Area:      r.Area,
			Perimeter: r.Perimeter,
			Method:    "contour",
		}
	}
	return records
}

func toDoorRecords(doors []detection.Door) []learning.DoorRecord {
	records := make([]learning.DoorRecord, len(doors))
	for i, d := range doors {
		records[i] = learning.DoorRecord{
			ID:       d.ID,
			Type:     string(d.Type),
			Position: d.Position,
			Width:    d.Width,
			WallID:   d.WallID,
			Method:   "gap_scan",
		}
	}
	return records
}

func toWindowRecords(windows []detection.Window) []learning.WindowRecord {
	records := make([]learning.WindowRecord, len(windows))
	for i, w := range windows {
		records[i] = learning.WindowRecord{
			ID:       w.ID,
			Position: w.Position,
			Width:    w.Width,
			Height:   w.Height,
			WallID:   w.WallID,
			Method:   "contour_adjacency",
		}
	}
	return records
}
