package imaging

import (
	"image"

	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/effect"
	"github.com/disintegration/imaging"
	colorful "github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/stat"
)

// Prepared is the output of the preprocessing stage: a denoised, contrast
// enhanced luminance grid at working resolution, plus the statistics later
// stages use to adapt their thresholds.
type Prepared struct {
	// Gray holds per-pixel luminance in [0,1], indexed [y][x].
	Gray [][]float64

	// Width and Height are the working-resolution dimensions.
	Width  int
	Height int

	// OrigWidth and OrigHeight are the dimensions of the input image.
	OrigWidth  int
	OrigHeight int

	// Scale maps working-resolution coordinates back to the original image
	// (original = working * Scale).
	Scale float64

	Stats Stats
}

// Stats summarizes the luminance distribution of a prepared image on the
// 0-255 scale. Low standard deviation indicates a faint pencil sketch, high
// indicates clean CAD output; line extraction adapts its thresholds to this.
type Stats struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
}

// PreprocessOptions configures the preprocessing stage.
type PreprocessOptions struct {
	WorkingResolution int     // longest side after resize, px
	ContrastAdjust    float64 // percentage passed to contrast adjustment
	GammaAdjust       float64
	DenoiseRadius     float64 // Gaussian blur radius
	MedianRadius      float64 // median filter radius for speckle removal
}

// DefaultPreprocessOptions returns the tuned preprocessing defaults.
func DefaultPreprocessOptions() PreprocessOptions {
	return PreprocessOptions{
		WorkingResolution: 2048,
		ContrastAdjust:    10,
		GammaAdjust:       1.1,
		DenoiseRadius:     1.0,
		MedianRadius:      1.0,
	}
}

// Preprocess converts a raw floor plan image into the working-resolution
// luminance grid consumed by edge detection.
//
// The stages run in a fixed order: resize to working resolution, Gaussian
// denoise, median speckle removal, contrast stretch, gamma adjustment, then
// perceptual grayscale conversion. Scanned plans arrive with compression
// noise and uneven lighting; the denoise passes run before contrast so the
// stretch does not amplify speckle.
func Preprocess(src image.Image, opts PreprocessOptions) *Prepared {
	bounds := src.Bounds()
	origW := bounds.Dx()
	origH := bounds.Dy()

	working := src
	scale := 1.0
	if longest := max(origW, origH); opts.WorkingResolution > 0 && longest > opts.WorkingResolution {
		working = imaging.Fit(src, opts.WorkingResolution, opts.WorkingResolution, imaging.Lanczos)
		scale = float64(longest) / float64(opts.WorkingResolution)
	}

	processed := image.Image(working)
	if opts.DenoiseRadius > 0 {
		processed = blur.Gaussian(processed, opts.DenoiseRadius)
	}
	if opts.MedianRadius > 0 {
		processed = effect.Median(processed, opts.MedianRadius)
	}
	if opts.ContrastAdjust != 0 {
		processed = imaging.AdjustContrast(processed, opts.ContrastAdjust)
	}
	if opts.GammaAdjust > 0 && opts.GammaAdjust != 1 {
		processed = imaging.AdjustGamma(processed, opts.GammaAdjust)
	}

	gray, stats := luminanceGrid(processed)
	pb := processed.Bounds()
	return &Prepared{
		Gray:       gray,
		Width:      pb.Dx(),
		Height:     pb.Dy(),
		OrigWidth:  origW,
		OrigHeight: origH,
		Scale:      scale,
		Stats:      stats,
	}
}

// luminanceGrid converts an image to a [y][x] luminance grid in [0,1] using
// perceptual (CIE Lab) lightness, and computes distribution statistics on
// the 0-255 scale.
func luminanceGrid(img image.Image) ([][]float64, Stats) {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	grid := make([][]float64, height)
	samples := make([]float64, 0, width*height)
	for y := 0; y < height; y++ {
		grid[y] = make([]float64, width)
		for x := 0; x < width; x++ {
			px := img.At(x+bounds.Min.X, y+bounds.Min.Y)
			c, ok := colorful.MakeColor(px)
			if !ok {
				// Fully transparent pixel; treat as paper white.
				grid[y][x] = 1
				samples = append(samples, 255)
				continue
			}
			l, _, _ := c.Lab()
			if l < 0 {
				l = 0
			} else if l > 1 {
				l = 1
			}
			grid[y][x] = l
			samples = append(samples, l*255)
		}
	}

	return grid, Stats{
		Mean:   stat.Mean(samples, nil),
		StdDev: stat.StdDev(samples, nil),
	}
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
