// Package pipeline orchestrates the detection stages for one floor plan
// image: preprocess, edge detection, line extraction, collinear merging,
// wall synthesis, contour extraction, room resolution, and opening
// detection, strictly in that order. Stages within one image never run
// concurrently; callers process independent images with independent
// Analyze calls.
package pipeline

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	"log"
	"time"

	"github.com/planwise/floorplan-vision/internal/config"
	"github.com/planwise/floorplan-vision/internal/detection"
	"github.com/planwise/floorplan-vision/internal/geometry"
	"github.com/planwise/floorplan-vision/internal/imaging"
	"github.com/planwise/floorplan-vision/internal/learning"
	"github.com/planwise/floorplan-vision/internal/vision"
)

// InputError marks a failure caused by the caller's input (unreadable or
// unsupported image data). Input errors surface as an unsuccessful result
// and are never retried.
type InputError struct {
	Reason string
	Err    error
}

func (e *InputError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("input: %s: %v", e.Reason, e.Err)
	}
	return "input: " + e.Reason
}

func (e *InputError) Unwrap() error { return e.Err }

// Metadata describes how a result was produced.
type Metadata struct {
	ImageWidth       int    `json:"imageWidth"`
	ImageHeight      int    `json:"imageHeight"`
	ProcessingTimeMs int64  `json:"processingTimeMs"`
	EdgesDetected    int    `json:"edgesDetected"`
	LinesDetected    int    `json:"linesDetected"`
	ContoursFound    int    `json:"contoursFound"`
	Backend          string `json:"backend"`

	// Degenerate geometry is skipped, not fatal; these count what was
	// dropped so silent data loss stays visible.
	LinesSkipped    int `json:"linesSkipped,omitempty"`
	ContoursSkipped int `json:"contoursSkipped,omitempty"`
}

// Result is the full analysis output for one image. All coordinates are in
// the original image's pixel space.
type Result struct {
	Success  bool                   `json:"success"`
	Error    string                 `json:"error,omitempty"`
	Walls    []detection.Wall       `json:"walls"`
	Doors    []detection.Door       `json:"doors"`
	Windows  []detection.Window     `json:"windows"`
	Rooms    []detection.Room       `json:"rooms"`
	Lines    []geometry.LineSegment `json:"lines"`
	Contours []geometry.Contour     `json:"contours"`
	Metadata Metadata               `json:"metadata"`

	// SessionID is set when a learning store recorded this analysis.
	SessionID string `json:"sessionId,omitempty"`

	// Prediction carries historical confidence scoring when pattern
	// analysis was enabled and had enough data.
	Prediction *learning.Prediction `json:"prediction,omitempty"`
}

// Options configures an Analyzer. Backend defaults to the standard pure-Go
// backend; Store and History are optional and enable learning integration.
type Options struct {
	Backend vision.Backend
	Config  config.Config

	// Store records each analysis as a learning session.
	Store *learning.Store

	// History enables confidence prediction and auto-corrections against
	// previously saved sessions.
	History learning.History

	// AutoCorrect applies the historical corrector to detected walls.
	AutoCorrect bool
}

// Analyzer runs the detection pipeline. Safe for concurrent use; each
// Analyze call owns all of its intermediate state.
type Analyzer struct {
	backend     vision.Backend
	cfg         config.Config
	store       *learning.Store
	analyzer    *learning.Analyzer
	predictor   *learning.Predictor
	corrector   *learning.Corrector
	autoCorrect bool
}

// New creates an Analyzer from options.
func New(opts Options) *Analyzer {
	backend := opts.Backend
	if backend == nil {
		backend = vision.NewStandard()
	}
	a := &Analyzer{
		backend:     backend,
		cfg:         opts.Config,
		store:       opts.Store,
		autoCorrect: opts.AutoCorrect,
	}
	if opts.History != nil {
		a.analyzer = learning.NewAnalyzer(opts.History, opts.Config)
		a.predictor = learning.NewPredictor(opts.Config)
		a.corrector = learning.NewCorrector(opts.Config)
	}
	return a
}

// Analyze decodes raw image bytes and runs the full pipeline. A decode
// failure is an InputError and yields an unsuccessful result rather than
// a hard error.
func (a *Analyzer) Analyze(data []byte) (*Result, error) {
	img, err := imaging.Decode(data)
	if err != nil {
		inputErr := &InputError{Reason: "decoding image", Err: err}
		return &Result{Success: false, Error: inputErr.Error()}, inputErr
	}
	sum := sha256.Sum256(data)
	return a.AnalyzeImage(img, hex.EncodeToString(sum[:])), nil
}

// AnalyzeImage runs the pipeline on a decoded image. imageHash keys the
// learning session; pass "" when learning is disabled.
func (a *Analyzer) AnalyzeImage(img image.Image, imageHash string) *Result {
	start := time.Now()

	prep := imaging.Preprocess(img, a.preprocessOptions())
	backend := a.backend

	edges := a.detectEdges(backend, prep)
	if edges == nil {
		// The configured backend failed; rerun the stage on the null
		// backend so the result stays well formed.
		log.Printf("pipeline: backend %q failed, falling back to null backend", backend.Name())
		backend = vision.NewNull()
		edges = backend.DetectEdges(prep, a.edgeOptions(prep.Stats))
	}

	rawLines := a.detectLines(backend, edges, prep.Stats)
	rawLines, linesSkipped := dropDegenerateLines(rawLines)

	merged := detection.MergeCollinear(rawLines, a.mergeOptions())
	walls := detection.SynthesizeWalls(merged, a.wallOptions())
	detection.ClassifyWallTypes(walls, a.wallOptions())

	contours := a.extractContours(backend, edges)
	contours, contoursSkipped := dropDegenerateContours(contours)
	filtered, _ := detection.FilterContours(contours, a.contourOptions())

	rooms := detection.ResolveRooms(filtered, walls, a.roomOptions())
	doors := detection.DetectDoors(walls, edges, a.openingOptions())
	windows := detection.DetectWindows(walls, filtered, a.openingOptions())

	result := &Result{
		Success:  true,
		Walls:    scaleWalls(walls, prep.Scale),
		Doors:    scaleDoors(doors, prep.Scale),
		Windows:  scaleWindows(windows, prep.Scale),
		Rooms:    scaleRooms(rooms, prep.Scale),
		Lines:    scaleLines(merged, prep.Scale),
		Contours: scaleContours(filtered, prep.Scale),
		Metadata: Metadata{
			ImageWidth:       prep.OrigWidth,
			ImageHeight:      prep.OrigHeight,
			EdgesDetected:    edges.Count,
			LinesDetected:    len(merged),
			ContoursFound:    len(filtered),
			Backend:          backend.Name(),
			LinesSkipped:     linesSkipped,
			ContoursSkipped:  contoursSkipped,
		},
	}

	a.applyLearning(result, imageHash)
	result.Metadata.ProcessingTimeMs = time.Since(start).Milliseconds()
	return result
}

// applyLearning scores the result against history and records it as a new
// session when a store is configured.
func (a *Analyzer) applyLearning(result *Result, imageHash string) {
	wallRecords := toWallRecords(result.Walls)

	if a.analyzer != nil {
		patterns, err := a.analyzer.AnalyzePatterns()
		if err != nil {
			log.Printf("pipeline: pattern analysis failed: %v", err)
		} else {
			if a.autoCorrect {
				correction := a.corrector.AutoApplyCorrections(patterns, wallRecords)
				if correction.AutoApplied {
					result.Walls = filterWalls(result.Walls, correction.Removed)
					wallRecords = correction.Walls
				}
			}
			result.Prediction = a.predictor.PredictConfidence(patterns, wallRecords, toRoomRecords(result.Rooms))
		}
	}

	if a.store != nil {
		sessionID := a.store.StartSession(imageHash)
		a.recordDetections(sessionID, result, wallRecords)
		result.SessionID = sessionID
	}
}

func (a *Analyzer) recordDetections(sessionID string, result *Result, walls []learning.WallRecord) {
	if err := a.store.AddWallData(sessionID, walls, learning.SourceAI); err != nil {
		log.Printf("pipeline: recording walls: %v", err)
	}
	if err := a.store.AddRoomData(sessionID, toRoomRecords(result.Rooms), learning.SourceAI); err != nil {
		log.Printf("pipeline: recording rooms: %v", err)
	}
	if err := a.store.AddDoorData(sessionID, toDoorRecords(result.Doors), learning.SourceAI); err != nil {
		log.Printf("pipeline: recording doors: %v", err)
	}
	if err := a.store.AddWindowData(sessionID, toWindowRecords(result.Windows), learning.SourceAI); err != nil {
		log.Printf("pipeline: recording windows: %v", err)
	}
}

// detectEdges guards the backend call; a panicking backend yields nil so
// the caller can fall back.
func (a *Analyzer) detectEdges(backend vision.Backend, prep *imaging.Prepared) (edges *detection.EdgeMap) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("pipeline: edge detection panic in backend %q: %v", backend.Name(), r)
			edges = nil
		}
	}()
	return backend.DetectEdges(prep, a.edgeOptions(prep.Stats))
}

func (a *Analyzer) detectLines(backend vision.Backend, edges *detection.EdgeMap, stats imaging.Stats) (lines []geometry.LineSegment) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("pipeline: line extraction panic in backend %q: %v", backend.Name(), r)
			lines = nil
		}
	}()
	return backend.DetectLines(edges, a.lineOptions(stats))
}

func (a *Analyzer) extractContours(backend vision.Backend, edges *detection.EdgeMap) (contours []geometry.Contour) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("pipeline: contour extraction panic in backend %q: %v", backend.Name(), r)
			contours = nil
		}
	}()
	return backend.ExtractContours(edges, a.contourOptions())
}

func (a *Analyzer) preprocessOptions() imaging.PreprocessOptions {
	opts := imaging.DefaultPreprocessOptions()
	opts.WorkingResolution = a.cfg.WorkingResolution
	opts.ContrastAdjust = a.cfg.ContrastAdjust
	opts.GammaAdjust = a.cfg.GammaAdjust
	return opts
}

func (a *Analyzer) edgeOptions(stats imaging.Stats) detection.EdgeOptions {
	opts := detection.AdaptiveEdgeOptions(stats, a.cfg.LowContrastStdDev, a.cfg.HighContrastStdDev)
	if stats.StdDev >= a.cfg.LowContrastStdDev && stats.StdDev <= a.cfg.HighContrastStdDev {
		opts.ThresholdLow = a.cfg.EdgeThresholdLow
		opts.ThresholdHigh = a.cfg.EdgeThresholdHigh
	}
	return opts
}

func (a *Analyzer) lineOptions(stats imaging.Stats) detection.LineOptions {
	opts := detection.AdaptiveLineOptions(stats, a.cfg.LowContrastStdDev, a.cfg.HighContrastStdDev)
	if stats.StdDev >= a.cfg.LowContrastStdDev && stats.StdDev <= a.cfg.HighContrastStdDev {
		opts.VoteThreshold = a.cfg.HoughVoteThreshold
		opts.MinLength = a.cfg.MinLineLength
		opts.MaxGap = a.cfg.MaxLineGap
	}
	return opts
}

func (a *Analyzer) mergeOptions() detection.MergeOptions {
	return detection.MergeOptions{
		AngleTolerance: a.cfg.MergeAngleTolerance,
		MaxDistance:    a.cfg.MergeDistance,
	}
}

func (a *Analyzer) wallOptions() detection.WallOptions {
	return detection.WallOptions{
		AngleTolerance:   a.cfg.ParallelAngleTolerance,
		MaxSpacing:       a.cfg.WallGroupMaxSpacing,
		DefaultThickness: a.cfg.DefaultWallThickness,
		BaseConfidence:   a.cfg.WallBaseConfidence,
		ExteriorRatio:    a.cfg.ExteriorThicknessRatio,
		MinThickness:     a.cfg.MinWallThickness,
		MaxThickness:     a.cfg.MaxWallThickness,
	}
}

func (a *Analyzer) contourOptions() detection.ContourOptions {
	opts := detection.DefaultContourOptions()
	opts.SimplifyEpsilonRatio = a.cfg.SimplifyEpsilonRatio
	opts.MinArea = a.cfg.MinRoomArea
	opts.MaxArea = a.cfg.MaxRoomArea
	opts.FillRatioMin = a.cfg.FillRatioMin
	opts.FillRatioMax = a.cfg.FillRatioMax
	opts.RightAngleToleranceDeg = a.cfg.RightAngleToleranceDeg
	opts.RectangularityQuorum = a.cfg.RectangularityQuorum
	return opts
}

func (a *Analyzer) roomOptions() detection.RoomOptions {
	return detection.RoomOptions{
		PerpendicularToleranceDeg: a.cfg.PerpendicularToleranceDeg,
		MinSide:                   a.cfg.MinFallbackRoomSide,
		DedupeRadius:              a.cfg.FallbackDedupeRadius,
	}
}

func (a *Analyzer) openingOptions() detection.OpeningOptions {
	return detection.OpeningOptions{
		StandardDoorWidths:  a.cfg.StandardDoorWidths,
		WidthTolerance:      a.cfg.DoorWidthTolerance,
		DoorWidthMin:        a.cfg.DoorWidthMin,
		DoorWidthMax:        a.cfg.DoorWidthMax,
		GarageMinWidth:      a.cfg.GarageDoorMinWidth,
		EntryMinWidth:       a.cfg.EntryDoorMinWidth,
		WindowWidthMin:      a.cfg.WindowWidthMin,
		WindowWidthMax:      a.cfg.WindowWidthMax,
		WindowHeightMin:     a.cfg.WindowHeightMin,
		WindowHeightMax:     a.cfg.WindowHeightMax,
		WallProximityFactor: a.cfg.WindowWallProximity,
		DedupeRadius:        a.cfg.OpeningDedupeRadius,
	}
}

func dropDegenerateLines(lines []geometry.LineSegment) ([]geometry.LineSegment, int) {
	kept := lines[:0]
	skipped := 0
	for _, l := range lines {
		if l.Length == 0 {
			skipped++
			continue
		}
		kept = append(kept, l)
	}
	return kept, skipped
}

func dropDegenerateContours(contours []geometry.Contour) ([]geometry.Contour, int) {
	kept := contours[:0]
	skipped := 0
	for _, c := range contours {
		if len(c.Points) < 3 {
			skipped++
			continue
		}
		kept = append(kept, c)
	}
	return kept, skipped
}

func filterWalls(walls []detection.Wall, removed []string) []detection.Wall {
	if len(removed) == 0 {
		return walls
	}
	removedSet := make(map[string]bool, len(removed))
	for _, id := range removed {
		removedSet[id] = true
	}
	kept := walls[:0]
	for _, w := range walls {
		if !removedSet[w.ID] {
			kept = append(kept, w)
		}
	}
	return kept
}
