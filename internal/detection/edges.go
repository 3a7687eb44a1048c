package detection

import (
	"math"

	"github.com/planwise/floorplan-vision/internal/imaging"
)

// EdgeMap is a binary edge mask at working resolution.
type EdgeMap struct {
	Mask   [][]bool // indexed [y][x]
	Width  int
	Height int
	Count  int // number of edge pixels
}

// At reports whether (x, y) is an edge pixel. Out-of-bounds coordinates are
// not edges.
func (e *EdgeMap) At(x, y int) bool {
	if x < 0 || x >= e.Width || y < 0 || y >= e.Height {
		return false
	}
	return e.Mask[y][x]
}

// EdgeOptions configures edge detection.
type EdgeOptions struct {
	// ThresholdLow and ThresholdHigh are the hysteresis thresholds (0-255).
	// Edges below the low threshold are discarded; edges between the two are
	// kept only when connected to a strong edge.
	ThresholdLow  int
	ThresholdHigh int

	// CloseGaps applies a 3x3 morphological closing after detection to
	// bridge breaks of up to 2px in wall outlines.
	CloseGaps bool
}

// DefaultEdgeOptions returns thresholds suited to clean scanned plans.
func DefaultEdgeOptions() EdgeOptions {
	return EdgeOptions{
		ThresholdLow:  50,
		ThresholdHigh: 150,
		CloseGaps:     true,
	}
}

// AdaptiveEdgeOptions lowers the hysteresis thresholds for low-contrast
// pencil sketches and raises them for high-contrast CAD exports, keyed off
// the preprocessor's luminance standard deviation.
func AdaptiveEdgeOptions(stats imaging.Stats, lowContrast, highContrast float64) EdgeOptions {
	opts := DefaultEdgeOptions()
	switch {
	case stats.StdDev < lowContrast:
		opts.ThresholdLow = 30
		opts.ThresholdHigh = 100
	case stats.StdDev > highContrast:
		opts.ThresholdLow = 80
		opts.ThresholdHigh = 200
	}
	return opts
}

// DetectEdges computes a binary edge map from a prepared luminance grid.
//
// The implementation follows the Canny algorithm:
//
//  1. Gaussian blur (5x5 kernel) to reduce residual noise
//  2. Sobel gradients; magnitude = sqrt(Gx² + Gy²), direction = atan2(Gy, Gx)
//  3. Non-maximum suppression to thin edges to 1px
//  4. Hysteresis thresholding with the configured low/high thresholds
//
// When opts.CloseGaps is set, a 3x3 morphological closing (dilate then
// erode) follows, bridging small breaks so downstream contour tracing sees
// closed room outlines.
func DetectEdges(prep *imaging.Prepared, opts EdgeOptions) *EdgeMap {
	width := prep.Width
	height := prep.Height
	if width == 0 || height == 0 {
		return &EdgeMap{Mask: [][]bool{}, Width: width, Height: height}
	}

	blurred := gaussianBlur(prep.Gray, width, height)

	magnitude := make([][]float64, height)
	direction := make([][]float64, height)

	sobelX := [][]float64{
		{-1, 0, 1},
		{-2, 0, 2},
		{-1, 0, 1},
	}
	sobelY := [][]float64{
		{-1, -2, -1},
		{0, 0, 0},
		{1, 2, 1},
	}

	for y := 0; y < height; y++ {
		magnitude[y] = make([]float64, width)
		direction[y] = make([]float64, width)
		for x := 0; x < width; x++ {
			var gx, gy float64
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					py := clamp(y+ky, 0, height-1)
					px := clamp(x+kx, 0, width-1)
					gx += blurred[py][px] * sobelX[ky+1][kx+1]
					gy += blurred[py][px] * sobelY[ky+1][kx+1]
				}
			}
			magnitude[y][x] = math.Sqrt(gx*gx + gy*gy)
			direction[y][x] = math.Atan2(gy, gx)
		}
	}

	// Non-maximum suppression: keep only local maxima along the gradient
	// direction so edges thin to one pixel.
	suppressed := make([][]float64, height)
	for y := 0; y < height; y++ {
		suppressed[y] = make([]float64, width)
		for x := 0; x < width; x++ {
			if y == 0 || y == height-1 || x == 0 || x == width-1 {
				continue
			}

			angle := direction[y][x]
			mag := magnitude[y][x]

			var n1, n2 float64
			if (angle >= -math.Pi/8 && angle < math.Pi/8) || (angle >= 7*math.Pi/8 || angle < -7*math.Pi/8) {
				n1 = magnitude[y][x-1]
				n2 = magnitude[y][x+1]
			} else if (angle >= math.Pi/8 && angle < 3*math.Pi/8) || (angle >= -7*math.Pi/8 && angle < -5*math.Pi/8) {
				n1 = magnitude[y-1][x+1]
				n2 = magnitude[y+1][x-1]
			} else if (angle >= 3*math.Pi/8 && angle < 5*math.Pi/8) || (angle >= -5*math.Pi/8 && angle < -3*math.Pi/8) {
				n1 = magnitude[y-1][x]
				n2 = magnitude[y+1][x]
			} else {
				n1 = magnitude[y-1][x-1]
				n2 = magnitude[y+1][x+1]
			}

			if mag >= n1 && mag >= n2 {
				suppressed[y][x] = mag
			}
		}
	}

	// Double threshold and edge tracking by hysteresis.
	mask := make([][]bool, height)
	for y := range mask {
		mask[y] = make([]bool, width)
	}
	lowThresh := float64(opts.ThresholdLow) / 255.0
	highThresh := float64(opts.ThresholdHigh) / 255.0

	count := 0
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			val := suppressed[y][x]
			if val >= highThresh {
				mask[y][x] = true
				count++
			} else if val >= lowThresh {
				hasStrongNeighbor := false
				for ky := -1; ky <= 1 && !hasStrongNeighbor; ky++ {
					for kx := -1; kx <= 1 && !hasStrongNeighbor; kx++ {
						py := clamp(y+ky, 0, height-1)
						px := clamp(x+kx, 0, width-1)
						if suppressed[py][px] >= highThresh {
							hasStrongNeighbor = true
						}
					}
				}
				if hasStrongNeighbor {
					mask[y][x] = true
					count++
				}
			}
		}
	}

	edges := &EdgeMap{Mask: mask, Width: width, Height: height, Count: count}
	if opts.CloseGaps {
		edges = closeMask(edges)
	}
	return edges
}

// closeMask performs a 3x3 morphological closing (dilate, then erode) on the
// edge mask. Pixels that survive bridge gaps of up to 2px between detected
// edge runs.
func closeMask(e *EdgeMap) *EdgeMap {
	dilated := make([][]bool, e.Height)
	for y := 0; y < e.Height; y++ {
		dilated[y] = make([]bool, e.Width)
		for x := 0; x < e.Width; x++ {
			for dy := -1; dy <= 1 && !dilated[y][x]; dy++ {
				for dx := -1; dx <= 1 && !dilated[y][x]; dx++ {
					if e.At(x+dx, y+dy) {
						dilated[y][x] = true
					}
				}
			}
		}
	}

	eroded := make([][]bool, e.Height)
	count := 0
	for y := 0; y < e.Height; y++ {
		eroded[y] = make([]bool, e.Width)
		for x := 0; x < e.Width; x++ {
			all := true
			for dy := -1; dy <= 1 && all; dy++ {
				for dx := -1; dx <= 1 && all; dx++ {
					py := clamp(y+dy, 0, e.Height-1)
					px := clamp(x+dx, 0, e.Width-1)
					if !dilated[py][px] {
						all = false
					}
				}
			}
			if all {
				eroded[y][x] = true
				count++
			}
		}
	}

	return &EdgeMap{Mask: eroded, Width: e.Width, Height: e.Height, Count: count}
}

// gaussianBlur applies a 5x5 Gaussian blur (sigma ≈ 1.4) to the luminance
// grid. Border pixels use clamped edge values.
func gaussianBlur(img [][]float64, width, height int) [][]float64 {
	kernel := [][]float64{
		{1, 4, 7, 4, 1},
		{4, 16, 26, 16, 4},
		{7, 26, 41, 26, 7},
		{4, 16, 26, 16, 4},
		{1, 4, 7, 4, 1},
	}
	kernelSum := 273.0

	result := make([][]float64, height)
	for y := 0; y < height; y++ {
		result[y] = make([]float64, width)
		for x := 0; x < width; x++ {
			var sum float64
			for ky := -2; ky <= 2; ky++ {
				for kx := -2; kx <= 2; kx++ {
					py := clamp(y+ky, 0, height-1)
					px := clamp(x+kx, 0, width-1)
					sum += img[py][px] * kernel[ky+2][kx+2]
				}
			}
			result[y][x] = sum / kernelSum
		}
	}
	return result
}

// clamp constrains an integer value to the range [min, max].
func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
