package learning

import (
	"math"

	"github.com/planwise/floorplan-vision/internal/config"
)

// ConfidenceLabel buckets a predicted wall confidence for consumers that
// want a verdict instead of a score.
type ConfidenceLabel string

const (
	LabelLikelyIncorrect ConfidenceLabel = "likely_incorrect"
	LabelUncertain       ConfidenceLabel = "uncertain"
	LabelLikelyCorrect   ConfidenceLabel = "likely_correct"
)

// predictionBase is the neutral starting score before history adjusts it.
const predictionBase = 0.5

// WallAssessment is one wall's predicted confidence against history.
type WallAssessment struct {
	WallID     string          `json:"wallId"`
	Confidence float64         `json:"confidence"`
	Label      ConfidenceLabel `json:"label"`
}

// RoomSuggestion proposes a type for an untyped room whose area matches a
// historical per-type average.
type RoomSuggestion struct {
	RoomID        string  `json:"roomId"`
	SuggestedType string  `json:"suggestedType"`
	Confidence    float64 `json:"confidence"`
}

// Prediction is the predictor's verdict over one detection result set.
type Prediction struct {
	// InsufficientData mirrors the pattern aggregate: when set, detections
	// pass through unchanged and all assessments carry confidence 0.
	InsufficientData bool             `json:"insufficientData"`
	Walls            []WallAssessment `json:"walls,omitempty"`
	Rooms            []RoomSuggestion `json:"rooms,omitempty"`
}

// Predictor scores detections against aggregated patterns.
type Predictor struct {
	cfg config.Config
}

// NewPredictor returns a Predictor using the given thresholds.
func NewPredictor(cfg config.Config) *Predictor {
	return &Predictor{cfg: cfg}
}

// PredictConfidence scores each wall and proposes types for untyped rooms.
// With an insufficient-data aggregate it marks the prediction accordingly
// and leaves everything unscored.
func (p *Predictor) PredictConfidence(patterns *Patterns, walls []WallRecord, rooms []RoomRecord) *Prediction {
	if patterns == nil || patterns.InsufficientData {
		pred := &Prediction{InsufficientData: true}
		for _, w := range walls {
			pred.Walls = append(pred.Walls, WallAssessment{
				WallID: w.ID,
				Label:  LabelUncertain,
			})
		}
		return pred
	}

	pred := &Prediction{}
	for _, w := range walls {
		pred.Walls = append(pred.Walls, p.assessWall(patterns, w))
	}
	for _, r := range rooms {
		if r.Type != "" {
			continue
		}
		if suggestion, ok := p.suggestRoomType(patterns, r); ok {
			pred.Rooms = append(pred.Rooms, suggestion)
		}
	}
	return pred
}

func (p *Predictor) assessWall(patterns *Patterns, w WallRecord) WallAssessment {
	score := predictionBase

	if stats, ok := patterns.WallTypes[w.Type]; ok {
		switch {
		case stats.DeletionRate > p.cfg.HighDeletionRate:
			score -= p.cfg.HighDeletionPenalty
		case stats.DeletionRate > p.cfg.ModerateDeletionRate:
			score -= p.cfg.ModerateDeletionPenalty
		}
	}

	for _, pos := range patterns.ManualPositions {
		if w.Start.Distance(pos) <= p.cfg.ManualPositionProximity {
			score += p.cfg.ManualPositionBonus
			break
		}
	}

	// Scores drift toward neutral when history is thin.
	score *= 0.5 + 0.5*patterns.Confidence/100
	score = math.Max(0, math.Min(1, score))

	return WallAssessment{
		WallID:     w.ID,
		Confidence: score,
		Label:      p.label(score),
	}
}

func (p *Predictor) label(score float64) ConfidenceLabel {
	switch {
	case score < p.cfg.LikelyIncorrectBelow:
		return LabelLikelyIncorrect
	case score > p.cfg.LikelyCorrectAbove:
		return LabelLikelyCorrect
	default:
		return LabelUncertain
	}
}

// suggestRoomType matches the room's area against historical per-type
// averages. Ties break on the smaller area difference, then on the
// lexicographically smaller type name.
func (p *Predictor) suggestRoomType(patterns *Patterns, r RoomRecord) (RoomSuggestion, bool) {
	bestType := ""
	bestDiff := math.Inf(1)
	for _, name := range patterns.RoomTypeNames() {
		diff := math.Abs(r.Area - patterns.RoomTypes[name].AverageArea)
		if diff > p.cfg.RoomAreaMatchWindow {
			continue
		}
		if diff < bestDiff {
			bestType, bestDiff = name, diff
		}
	}
	if bestType == "" {
		return RoomSuggestion{}, false
	}
	return RoomSuggestion{
		RoomID:        r.ID,
		SuggestedType: bestType,
		Confidence:    p.cfg.SuggestedTypeConfidence,
	}, true
}
