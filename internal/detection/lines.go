package detection

import (
	"math"
	"sort"

	"github.com/planwise/floorplan-vision/internal/geometry"
	"github.com/planwise/floorplan-vision/internal/imaging"
)

// LineOptions configures probabilistic line extraction.
type LineOptions struct {
	// VoteThreshold is the minimum Hough accumulator vote count for a
	// direction/offset pair to be considered a line.
	VoteThreshold int

	// MinLength is the shortest segment kept, in pixels.
	MinLength float64

	// MaxGap is the largest break along a line that is still bridged within
	// a single segment. Breaks wider than this split the line into separate
	// segments, which is what later lets door gaps survive.
	MaxGap float64

	// MaxLines caps the number of emitted segments to bound the cost of the
	// downstream pairwise merging.
	MaxLines int
}

// DefaultLineOptions returns parameters suited to medium-quality scans.
func DefaultLineOptions() LineOptions {
	return LineOptions{
		VoteThreshold: 100,
		MinLength:     50,
		MaxGap:        10,
		MaxLines:      200,
	}
}

// AdaptiveLineOptions tunes the Hough parameters to image contrast: faint
// sketches need permissive settings, crisp CAD exports can afford strict
// ones.
func AdaptiveLineOptions(stats imaging.Stats, lowContrast, highContrast float64) LineOptions {
	opts := DefaultLineOptions()
	switch {
	case stats.StdDev < lowContrast:
		opts.VoteThreshold = 50
		opts.MinLength = 30
		opts.MaxGap = 20
	case stats.StdDev > highContrast:
		opts.VoteThreshold = 150
		opts.MinLength = 80
		opts.MaxGap = 5
	}
	return opts
}

// DetectSegments finds line segments in an edge map using a Hough transform
// followed by segment splitting.
//
// # Algorithm
//
//  1. Every edge pixel votes in (rho, theta) space at 1° resolution.
//  2. Accumulator peaks (local maxima over a 5x5 neighborhood that exceed
//     VoteThreshold) identify candidate lines.
//  3. For each peak, the on-line edge pixels (within 2px of the line) are
//     sorted by their projection along the line and split into runs wherever
//     consecutive pixels are more than MaxGap apart.
//  4. Runs shorter than MinLength are discarded; the rest become segments.
//
// The per-peak splitting is what makes the extraction probabilistic-Hough
// shaped: a wall interrupted by a doorway produces two segments, not one.
func DetectSegments(edges *EdgeMap, opts LineOptions) []geometry.LineSegment {
	width := edges.Width
	height := edges.Height
	if width == 0 || height == 0 || edges.Count == 0 {
		return nil
	}

	maxDist := int(math.Sqrt(float64(width*width + height*height)))
	numAngles := 180
	accumulator := make([][]int, maxDist*2)
	for i := range accumulator {
		accumulator[i] = make([]int, numAngles)
	}

	sinTable := make([]float64, numAngles)
	cosTable := make([]float64, numAngles)
	for theta := 0; theta < numAngles; theta++ {
		angle := float64(theta) * math.Pi / 180.0
		sinTable[theta] = math.Sin(angle)
		cosTable[theta] = math.Cos(angle)
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if !edges.Mask[y][x] {
				continue
			}
			for theta := 0; theta < numAngles; theta++ {
				rho := float64(x)*cosTable[theta] + float64(y)*sinTable[theta]
				rhoIdx := int(rho) + maxDist
				if rhoIdx >= 0 && rhoIdx < maxDist*2 {
					accumulator[rhoIdx][theta]++
				}
			}
		}
	}

	type peak struct {
		rho   int
		theta int
		votes int
	}
	peaks := make([]peak, 0)
	for rhoIdx := 0; rhoIdx < maxDist*2; rhoIdx++ {
		for theta := 0; theta < numAngles; theta++ {
			votes := accumulator[rhoIdx][theta]
			if votes < opts.VoteThreshold {
				continue
			}
			isMax := true
			for dr := -2; dr <= 2 && isMax; dr++ {
				for dt := -2; dt <= 2 && isMax; dt++ {
					if dr == 0 && dt == 0 {
						continue
					}
					nr := rhoIdx + dr
					nt := (theta + dt + numAngles) % numAngles
					if nr >= 0 && nr < maxDist*2 && accumulator[nr][nt] > votes {
						isMax = false
					}
				}
			}
			if isMax {
				peaks = append(peaks, peak{rho: rhoIdx - maxDist, theta: theta, votes: votes})
			}
		}
	}

	sort.Slice(peaks, func(i, j int) bool {
		return peaks[i].votes > peaks[j].votes
	})

	segments := make([]geometry.LineSegment, 0)
	for _, pk := range peaks {
		if opts.MaxLines > 0 && len(segments) >= opts.MaxLines {
			break
		}

		cosA := cosTable[pk.theta]
		sinA := sinTable[pk.theta]
		rho := float64(pk.rho)

		// Collect edge pixels within 2px of this line, keyed by their
		// projection along the line direction.
		type linePoint struct {
			pt   geometry.Point
			proj float64
		}
		onLine := make([]linePoint, 0, pk.votes)
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				if !edges.Mask[y][x] {
					continue
				}
				dist := math.Abs(float64(x)*cosA + float64(y)*sinA - rho)
				if dist < 2.0 {
					// Projection onto the line direction (-sin, cos).
					proj := -float64(x)*sinA + float64(y)*cosA
					onLine = append(onLine, linePoint{
						pt:   geometry.Point{X: float64(x), Y: float64(y)},
						proj: proj,
					})
				}
			}
		}
		if len(onLine) < 2 {
			continue
		}

		sort.Slice(onLine, func(i, j int) bool { return onLine[i].proj < onLine[j].proj })

		// Split the ordered run wherever the along-line gap exceeds MaxGap.
		runStart := 0
		for i := 1; i <= len(onLine); i++ {
			if i < len(onLine) && onLine[i].proj-onLine[i-1].proj <= opts.MaxGap {
				continue
			}
			start := onLine[runStart].pt
			end := onLine[i-1].pt
			seg := geometry.NewLineSegment(start, end)
			if seg.Length >= opts.MinLength {
				segments = append(segments, seg)
				if opts.MaxLines > 0 && len(segments) >= opts.MaxLines {
					break
				}
			}
			runStart = i
		}
	}

	return segments
}
