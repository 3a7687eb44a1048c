package detection

import (
	"testing"

	"github.com/planwise/floorplan-vision/internal/imaging"
)

// preparedGrid builds a Prepared with a uniform luminance value.
func preparedGrid(width, height int, lum float64) *imaging.Prepared {
	gray := make([][]float64, height)
	for y := range gray {
		gray[y] = make([]float64, width)
		for x := range gray[y] {
			gray[y][x] = lum
		}
	}
	return &imaging.Prepared{
		Gray:       gray,
		Width:      width,
		Height:     height,
		OrigWidth:  width,
		OrigHeight: height,
		Scale:      1,
	}
}

func TestDetectEdgesFindsStripeBoundaries(t *testing.T) {
	prep := preparedGrid(60, 40, 1.0)
	// Dark vertical stripe: two step edges, at x≈25 and x≈35.
	for y := 0; y < 40; y++ {
		for x := 25; x <= 34; x++ {
			prep.Gray[y][x] = 0
		}
	}

	edges := DetectEdges(prep, DefaultEdgeOptions())
	if edges.Count == 0 {
		t.Fatal("no edges detected on a hard step")
	}
	if edges.Width != 60 || edges.Height != 40 {
		t.Errorf("dimensions: got %dx%d", edges.Width, edges.Height)
	}

	nearStripe, farField := 0, 0
	for y := 0; y < edges.Height; y++ {
		for x := 0; x < edges.Width; x++ {
			if !edges.At(x, y) {
				continue
			}
			if x >= 20 && x <= 40 {
				nearStripe++
			}
			if x < 15 || x > 50 {
				farField++
			}
		}
	}
	if nearStripe == 0 {
		t.Error("no edge pixels near the stripe boundaries")
	}
	if farField != 0 {
		t.Errorf("%d edge pixels in flat regions", farField)
	}
}

func TestDetectEdgesUniformImage(t *testing.T) {
	edges := DetectEdges(preparedGrid(50, 50, 0.8), DefaultEdgeOptions())
	if edges.Count != 0 {
		t.Errorf("uniform image produced %d edge pixels", edges.Count)
	}
}

func TestDetectEdgesEmptyInput(t *testing.T) {
	edges := DetectEdges(preparedGrid(0, 0, 0), DefaultEdgeOptions())
	if edges.Count != 0 || edges.Width != 0 || edges.Height != 0 {
		t.Errorf("empty input: %+v", edges)
	}
}

func TestEdgeMapAtOutOfBounds(t *testing.T) {
	e := newEdgeMap(10, 10)
	e.set(0, 0)
	for _, pt := range [][2]int{{-1, 0}, {0, -1}, {10, 0}, {0, 10}} {
		if e.At(pt[0], pt[1]) {
			t.Errorf("At(%d, %d) out of bounds reported an edge", pt[0], pt[1])
		}
	}
	if !e.At(0, 0) {
		t.Error("At(0, 0) lost the set pixel")
	}
}

func TestAdaptiveEdgeOptions(t *testing.T) {
	tests := []struct {
		name   string
		stdDev float64
		low    int
		high   int
	}{
		{"pencil sketch", 20, 30, 100},
		{"cad export", 150, 80, 200},
		{"typical scan", 60, 50, 150},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := AdaptiveEdgeOptions(imaging.Stats{StdDev: tt.stdDev}, 30, 100)
			if opts.ThresholdLow != tt.low || opts.ThresholdHigh != tt.high {
				t.Errorf("thresholds: got %d/%d, want %d/%d",
					opts.ThresholdLow, opts.ThresholdHigh, tt.low, tt.high)
			}
		})
	}
}
