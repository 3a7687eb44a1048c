// Package config collects every tunable threshold used by the detection
// pipeline and the learning engine in one place. The numeric values encode
// real tuning against scanned and hand-drawn plans; keep them configurable
// rather than re-deriving them.
package config

import (
	"os"
	"strconv"
)

// Config holds pipeline and learning thresholds. Zero value is not usable;
// start from Default().
type Config struct {
	// Preprocessing
	WorkingResolution int     // longest image side after resize, px
	GammaAdjust       float64 // gamma applied after contrast stretch
	ContrastAdjust    float64 // percentage passed to contrast adjustment

	// Edge detection
	EdgeThresholdLow   int     // hysteresis low threshold, 0-255
	EdgeThresholdHigh  int     // hysteresis high threshold, 0-255
	LowContrastStdDev  float64 // below this luminance stddev an image counts as a sketch
	HighContrastStdDev float64 // above this it counts as clean CAD output

	// Line extraction
	HoughVoteThreshold int     // accumulator votes before a peak is considered
	MinLineLength      float64 // shortest segment kept, px
	MaxLineGap         float64 // largest on-line gap bridged within one segment, px

	// Collinear merging
	MergeAngleTolerance float64 // radians, mod pi
	MergeDistance       float64 // max perpendicular offset between merged lines, px

	// Wall synthesis
	ParallelAngleTolerance float64 // radians, mod pi, for wall grouping
	WallGroupMaxSpacing    float64 // max perpendicular spacing inside one wall group, px
	DefaultWallThickness   float64 // thickness assumed for singleton groups
	WallBaseConfidence     float64 // starting confidence for synthesized walls
	ExteriorThicknessRatio float64 // walls thicker than ratio x mean are exterior
	MinWallThickness       float64
	MaxWallThickness       float64

	// Contour filtering
	MinRoomArea            float64
	MaxRoomArea            float64
	FillRatioMin           float64
	FillRatioMax           float64
	RightAngleToleranceDeg float64 // +-deg around 90/270 for rectangularity
	RectangularityQuorum   float64 // fraction of vertices that must pass
	SimplifyEpsilonRatio   float64 // Douglas-Peucker epsilon as fraction of perimeter

	// Room fallback
	PerpendicularToleranceDeg float64 // deviation from 90 deg for wall pairing
	MinFallbackRoomSide       float64 // rectangles under this side length are noise
	FallbackDedupeRadius      float64 // centroid proximity that makes two candidates duplicates

	// Openings
	StandardDoorWidths  []float64
	DoorWidthTolerance  float64
	DoorWidthMin        float64
	DoorWidthMax        float64
	GarageDoorMinWidth  float64
	EntryDoorMinWidth   float64
	WindowWidthMin      float64
	WindowWidthMax      float64
	WindowHeightMin     float64
	WindowHeightMax     float64
	WindowWallProximity float64   // multiple of wall thickness
	OpeningDedupeRadius float64

	// Learning engine
	MinSessionsForPatterns  int
	PatternSaturationCount  int     // sessions at which pattern confidence saturates
	HighDeletionRate        float64 // deletion rate penalized by HighDeletionPenalty
	ModerateDeletionRate    float64
	HighDeletionPenalty     float64
	ModerateDeletionPenalty float64
	ManualPositionProximity float64 // px radius around learned manual endpoints
	ManualPositionBonus     float64
	LikelyIncorrectBelow    float64
	LikelyCorrectAbove      float64
	AutoApplyMinConfidence  float64 // aggregate 0-100 gate for any auto action
	AutoRemoveMinConfidence float64 // aggregate 0-100 gate for wall removal
	ClusterProximity        float64 // union radius for manual-position clustering
	ClusterMinSamples       int
	ClusterFrequencyShare   float64 // fraction of sessions a cluster must cover
	RoomAreaMatchWindow     float64 // sq units around a historical type average
	SuggestedTypeConfidence float64
}

// Default returns the tuned defaults for all thresholds.
func Default() Config {
	return Config{
		WorkingResolution: 2048,
		GammaAdjust:       1.1,
		ContrastAdjust:    10,

		EdgeThresholdLow:   50,
		EdgeThresholdHigh:  150,
		LowContrastStdDev:  30,
		HighContrastStdDev: 100,

		HoughVoteThreshold: 50,
		MinLineLength:      30,
		MaxLineGap:         10,

		MergeAngleTolerance: 0.175, // ~10 deg
		MergeDistance:       10,

		ParallelAngleTolerance: 0.1,
		WallGroupMaxSpacing:    30,
		DefaultWallThickness:   6,
		WallBaseConfidence:     0.85,
		ExteriorThicknessRatio: 1.3,
		MinWallThickness:       3,
		MaxWallThickness:       25,

		MinRoomArea:            1000,
		MaxRoomArea:            100000,
		FillRatioMin:           0.6,
		FillRatioMax:           0.95,
		RightAngleToleranceDeg: 15,
		RectangularityQuorum:   0.6,
		SimplifyEpsilonRatio:   0.02,

		PerpendicularToleranceDeg: 17,
		MinFallbackRoomSide:       100,
		FallbackDedupeRadius:      100,

		StandardDoorWidths:  []float64{24, 30, 32, 36},
		DoorWidthTolerance:  3,
		DoorWidthMin:        20,
		DoorWidthMax:        60,
		GarageDoorMinWidth:  60,
		EntryDoorMinWidth:   34,
		WindowWidthMin:      24,
		WindowWidthMax:      96,
		WindowHeightMin:     24,
		WindowHeightMax:     72,
		WindowWallProximity: 2,
		OpeningDedupeRadius: 30,

		MinSessionsForPatterns:  3,
		PatternSaturationCount:  20,
		HighDeletionRate:        0.5,
		ModerateDeletionRate:    0.3,
		HighDeletionPenalty:     0.3,
		ModerateDeletionPenalty: 0.2,
		ManualPositionProximity: 50,
		ManualPositionBonus:     0.2,
		LikelyIncorrectBelow:    0.3,
		LikelyCorrectAbove:      0.7,
		AutoApplyMinConfidence:  30,
		AutoRemoveMinConfidence: 50,
		ClusterProximity:        100,
		ClusterMinSamples:       5,
		ClusterFrequencyShare:   0.3,
		RoomAreaMatchWindow:     50,
		SuggestedTypeConfidence: 0.7,
	}
}

// FromEnv returns Default overridden by FLOORPLAN_* environment variables.
// Only the knobs that operators actually reach for are exposed; everything
// else stays at its tuned default.
func FromEnv() Config {
	cfg := Default()
	cfg.WorkingResolution = envInt("FLOORPLAN_WORKING_RESOLUTION", cfg.WorkingResolution)
	cfg.EdgeThresholdLow = envInt("FLOORPLAN_EDGE_THRESHOLD_LOW", cfg.EdgeThresholdLow)
	cfg.EdgeThresholdHigh = envInt("FLOORPLAN_EDGE_THRESHOLD_HIGH", cfg.EdgeThresholdHigh)
	cfg.MinRoomArea = envFloat("FLOORPLAN_MIN_ROOM_AREA", cfg.MinRoomArea)
	cfg.MaxRoomArea = envFloat("FLOORPLAN_MAX_ROOM_AREA", cfg.MaxRoomArea)
	cfg.MinLineLength = envFloat("FLOORPLAN_MIN_LINE_LENGTH", cfg.MinLineLength)
	cfg.MinSessionsForPatterns = envInt("FLOORPLAN_MIN_SESSIONS", cfg.MinSessionsForPatterns)
	return cfg
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
