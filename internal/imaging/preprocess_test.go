package imaging

import (
	"image"
	"image/color"
	"math"
	"testing"
)

// rawOptions disables every adjustment so the luminance grid reflects the
// input pixels directly.
func rawOptions() PreprocessOptions {
	return PreprocessOptions{}
}

func TestPreprocessSmallImageKeepsResolution(t *testing.T) {
	prep := Preprocess(whiteImage(100, 80), DefaultPreprocessOptions())

	if prep.Width != 100 || prep.Height != 80 {
		t.Errorf("working size: got %dx%d, want 100x80", prep.Width, prep.Height)
	}
	if prep.OrigWidth != 100 || prep.OrigHeight != 80 {
		t.Errorf("original size: got %dx%d", prep.OrigWidth, prep.OrigHeight)
	}
	if prep.Scale != 1 {
		t.Errorf("scale: got %v, want 1", prep.Scale)
	}
	if len(prep.Gray) != 80 || len(prep.Gray[0]) != 100 {
		t.Errorf("grid shape: %dx%d", len(prep.Gray), len(prep.Gray[0]))
	}
	for y := range prep.Gray {
		for x, l := range prep.Gray[y] {
			if l < 0 || l > 1 {
				t.Fatalf("luminance out of range at (%d,%d): %v", x, y, l)
			}
		}
	}
}

func TestPreprocessResizesToWorkingResolution(t *testing.T) {
	opts := rawOptions()
	opts.WorkingResolution = 100

	prep := Preprocess(whiteImage(200, 100), opts)
	if prep.Width != 100 || prep.Height != 50 {
		t.Errorf("working size: got %dx%d, want 100x50", prep.Width, prep.Height)
	}
	if prep.Scale != 2 {
		t.Errorf("scale: got %v, want 2", prep.Scale)
	}
	if prep.OrigWidth != 200 || prep.OrigHeight != 100 {
		t.Errorf("original size: got %dx%d", prep.OrigWidth, prep.OrigHeight)
	}
}

func TestPreprocessStatsWhiteVsCheckerboard(t *testing.T) {
	white := Preprocess(whiteImage(40, 40), rawOptions())
	if math.Abs(white.Stats.Mean-255) > 2 {
		t.Errorf("white mean: got %v, want ~255", white.Stats.Mean)
	}
	if white.Stats.StdDev > 1 {
		t.Errorf("white stddev: got %v, want ~0", white.Stats.StdDev)
	}

	board := image.NewNRGBA(image.Rect(0, 0, 40, 40))
	for y := 0; y < 40; y++ {
		for x := 0; x < 40; x++ {
			if (x/4+y/4)%2 == 0 {
				board.Set(x, y, color.White)
			} else {
				board.Set(x, y, color.Black)
			}
		}
	}
	checker := Preprocess(board, rawOptions())
	if checker.Stats.StdDev < 50 {
		t.Errorf("checkerboard stddev: got %v, want high contrast", checker.Stats.StdDev)
	}
	if checker.Stats.Mean >= white.Stats.Mean {
		t.Errorf("checkerboard mean %v not below white mean %v",
			checker.Stats.Mean, white.Stats.Mean)
	}
}

func TestPreprocessTransparentPixelsAsWhite(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 10, 10)) // all pixels alpha 0

	prep := Preprocess(img, rawOptions())
	for y := range prep.Gray {
		for _, l := range prep.Gray[y] {
			if l != 1 {
				t.Fatalf("transparent pixel luminance: got %v, want 1", l)
			}
		}
	}
	if math.Abs(prep.Stats.Mean-255) > 0.01 {
		t.Errorf("mean: got %v, want 255", prep.Stats.Mean)
	}
}
