package detection

import (
	"math"

	"github.com/google/uuid"

	"github.com/planwise/floorplan-vision/internal/geometry"
)

// DoorType classifies a detected door opening by width.
type DoorType string

const (
	DoorEntry    DoorType = "entry"
	DoorInterior DoorType = "interior"
	DoorGarage   DoorType = "garage"
)

// Door is a detected door opening in a wall.
type Door struct {
	ID         string         `json:"id"`
	Position   geometry.Point `json:"position"`
	Width      float64        `json:"width"`
	WallID     string         `json:"wall_id"`
	Type       DoorType       `json:"type"`
	Confidence float64        `json:"confidence"`
}

// Window is a detected window opening in a wall.
type Window struct {
	ID       string         `json:"id"`
	Position geometry.Point `json:"position"`
	Width    float64        `json:"width"`
	Height   float64        `json:"height"`
	WallID   string         `json:"wall_id"`
}

// OpeningOptions configures door and window detection.
type OpeningOptions struct {
	// StandardDoorWidths are the catalog widths a gap is matched against,
	// with WidthTolerance slack. Gaps inside [DoorWidthMin, DoorWidthMax]
	// that miss every standard width still pass as nonstandard doors.
	StandardDoorWidths []float64
	WidthTolerance     float64
	DoorWidthMin       float64
	DoorWidthMax       float64

	// GarageMinWidth and EntryMinWidth split accepted gaps into types.
	GarageMinWidth float64
	EntryMinWidth  float64

	// Window size bounds, in working-resolution units.
	WindowWidthMin  float64
	WindowWidthMax  float64
	WindowHeightMin float64
	WindowHeightMax float64

	// WallProximityFactor: a window contour's center must lie within this
	// multiple of the wall's thickness from the wall's line.
	WallProximityFactor float64

	// DedupeRadius collapses openings within this distance of each other
	// to the higher-confidence one.
	DedupeRadius float64
}

// DefaultOpeningOptions returns the tuned opening parameters.
func DefaultOpeningOptions() OpeningOptions {
	return OpeningOptions{
		StandardDoorWidths:  []float64{24, 30, 32, 36},
		WidthTolerance:      3,
		DoorWidthMin:        20,
		DoorWidthMax:        60,
		GarageMinWidth:      60,
		EntryMinWidth:       34,
		WindowWidthMin:      24,
		WindowWidthMax:      96,
		WindowHeightMin:     24,
		WindowHeightMax:     72,
		WallProximityFactor: 2,
		DedupeRadius:        30,
	}
}

// DetectDoors finds door openings by scanning each wall for gaps.
//
// The scan walks the wall's axis in 1px steps and samples the edge map in a
// perpendicular band as wide as the wall's thickness. Steps where the band
// holds no edge pixel are uncovered; maximal uncovered interior runs are
// gaps. A gap becomes a door when its width matches a standard door width
// within tolerance, or falls inside the acceptable door range. Doors whose
// gap has a quarter-circle swing arc beside it get a confidence boost.
func DetectDoors(walls []Wall, edges *EdgeMap, opts OpeningOptions) []Door {
	doors := make([]Door, 0)
	for _, wall := range walls {
		for _, gap := range wallGaps(wall, edges) {
			if !IsDoorWidth(gap.width, opts) {
				continue
			}
			confidence := 0.7
			if hasSwingArc(edges, gap.center, gap.width) {
				confidence = 0.9
			}
			doors = append(doors, Door{
				ID:         uuid.New().String(),
				Position:   gap.center,
				Width:      gap.width,
				WallID:     wall.ID,
				Type:       ClassifyDoorWidth(gap.width, opts),
				Confidence: confidence,
			})
		}
	}
	return dedupeDoors(doors, opts.DedupeRadius)
}

// IsDoorWidth reports whether a gap width is door-like: within tolerance of
// a standard width, or inside the general door range.
func IsDoorWidth(width float64, opts OpeningOptions) bool {
	for _, std := range opts.StandardDoorWidths {
		if math.Abs(width-std) <= opts.WidthTolerance {
			return true
		}
	}
	return width >= opts.DoorWidthMin && width <= opts.DoorWidthMax
}

// ClassifyDoorWidth maps a gap width to a door type: garage for the widest
// openings, entry for front-door widths, interior otherwise.
func ClassifyDoorWidth(width float64, opts OpeningOptions) DoorType {
	switch {
	case width >= opts.GarageMinWidth:
		return DoorGarage
	case width >= opts.EntryMinWidth:
		return DoorEntry
	default:
		return DoorInterior
	}
}

// gap is an uncovered run along a wall's axis.
type gapRun struct {
	center geometry.Point
	width  float64
}

// wallGaps scans along the wall axis and returns maximal uncovered runs.
// Runs touching either end of the wall are not gaps; they just mean the
// wall's detected extent overshot the drawn line.
func wallGaps(wall Wall, edges *EdgeMap) []gapRun {
	axis := wall.Axis()
	if axis.Length < 2 || edges == nil {
		return nil
	}

	ux := (wall.End.X - wall.Start.X) / axis.Length
	uy := (wall.End.Y - wall.Start.Y) / axis.Length
	// Perpendicular band half-width: at least the wall's thickness so both
	// faces of a double-line wall count as coverage.
	band := int(math.Ceil(math.Max(wall.Thickness, 2)))

	steps := int(axis.Length)
	covered := make([]bool, steps+1)
	for i := 0; i <= steps; i++ {
		px := wall.Start.X + float64(i)*ux
		py := wall.Start.Y + float64(i)*uy
		for off := -band; off <= band && !covered[i]; off++ {
			sx := int(math.Round(px - float64(off)*uy))
			sy := int(math.Round(py + float64(off)*ux))
			if edges.At(sx, sy) {
				covered[i] = true
			}
		}
	}

	gaps := make([]gapRun, 0)
	runStart := -1
	for i := 0; i <= steps; i++ {
		if !covered[i] {
			if runStart < 0 {
				runStart = i
			}
			continue
		}
		if runStart > 0 { // runs starting at 0 touch the wall end
			width := float64(i - runStart)
			mid := float64(runStart) + width/2
			gaps = append(gaps, gapRun{
				center: geometry.Point{
					X: wall.Start.X + mid*ux,
					Y: wall.Start.Y + mid*uy,
				},
				width: width,
			})
		}
		runStart = -1
	}
	// A trailing uncovered run touches the wall end; not a gap.
	return gaps
}

// hasSwingArc looks for a quarter-circle door swing arc beside a gap: edge
// pixels at radius ≈ gap width from either end of the gap. Floor plans draw
// the swing as an arc from the hinge, so a strong ring of edge pixels at
// door-width radius is a good door signal.
func hasSwingArc(edges *EdgeMap, center geometry.Point, radius float64) bool {
	if edges == nil || radius < 8 {
		return false
	}
	hits := 0
	samples := 36
	for i := 0; i < samples; i++ {
		theta := float64(i) * 2 * math.Pi / float64(samples)
		sx := int(math.Round(center.X + radius*math.Cos(theta)))
		sy := int(math.Round(center.Y + radius*math.Sin(theta)))
		if edges.At(sx, sy) {
			hits++
		}
	}
	// A quarter circle covers 25% of the samples; require most of it.
	return float64(hits) >= 0.2*float64(samples)
}

// DetectWindows finds windows as quadrilateral contours adjacent to walls.
//
// For every (wall, contour) pair where the contour has exactly four
// vertices and its center lies within WallProximityFactor × thickness of
// the wall's line, the contour is accepted as a window when its bounding
// box fits the window size bounds.
func DetectWindows(walls []Wall, contours []geometry.Contour, opts OpeningOptions) []Window {
	windows := make([]Window, 0)
	for _, wall := range walls {
		maxDist := opts.WallProximityFactor * wall.Thickness
		for _, c := range contours {
			if !HasMinVertices(c, 4) || countVertices(c) != 4 {
				continue
			}
			center := c.BoundingBox.Center()
			if geometry.PointToLineDistance(center, wall.Start, wall.End) > maxDist {
				continue
			}
			w := c.BoundingBox.Width
			h := c.BoundingBox.Height
			if w < opts.WindowWidthMin || w > opts.WindowWidthMax {
				continue
			}
			if h < opts.WindowHeightMin || h > opts.WindowHeightMax {
				continue
			}
			windows = append(windows, Window{
				ID:       uuid.New().String(),
				Position: center,
				Width:    w,
				Height:   h,
				WallID:   wall.ID,
			})
		}
	}
	return dedupeWindows(windows, opts.DedupeRadius)
}

func countVertices(c geometry.Contour) int {
	pts := c.Points
	if len(pts) > 1 && pts[0] == pts[len(pts)-1] {
		pts = pts[:len(pts)-1]
	}
	return len(pts)
}

// dedupeDoors collapses doors within radius of each other, keeping the one
// with higher confidence.
func dedupeDoors(doors []Door, radius float64) []Door {
	filtered := make([]Door, 0, len(doors))
	for _, d := range doors {
		dup := -1
		for i, kept := range filtered {
			if d.Position.Distance(kept.Position) < radius {
				dup = i
				break
			}
		}
		if dup < 0 {
			filtered = append(filtered, d)
		} else if d.Confidence > filtered[dup].Confidence {
			filtered[dup] = d
		}
	}
	return filtered
}

// dedupeWindows collapses windows within radius of each other. Window
// detections carry no confidence, so first wins.
func dedupeWindows(windows []Window, radius float64) []Window {
	filtered := make([]Window, 0, len(windows))
	for _, w := range windows {
		dup := false
		for _, kept := range filtered {
			if w.Position.Distance(kept.Position) < radius {
				dup = true
				break
			}
		}
		if !dup {
			filtered = append(filtered, w)
		}
	}
	return filtered
}
