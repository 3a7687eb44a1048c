package learning

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/planwise/floorplan-vision/internal/config"
	"github.com/planwise/floorplan-vision/internal/geometry"
)

// WallTypeStats aggregates what happened to one wall type across history.
type WallTypeStats struct {
	Detected          int     `json:"detected"`
	Deleted           int     `json:"deleted"`
	DeletionRate      float64 `json:"deletionRate"`
	DeletedConfidence float64 `json:"deletedConfidence"` // mean confidence of deleted instances
}

// RoomTypeStats aggregates room observations of one type.
type RoomTypeStats struct {
	Count       int       `json:"count"`
	AreaSamples []float64 `json:"areaSamples"`
	AverageArea float64   `json:"averageArea"`
}

// Patterns is the cross-session aggregate the predictor and auto-corrector
// score against.
type Patterns struct {
	Sessions int `json:"sessions"`

	// Confidence is how much the aggregate can be trusted, 0-100. It
	// saturates once enough sessions have been observed.
	Confidence float64 `json:"confidence"`

	// InsufficientData is set when too few sessions exist to aggregate.
	// All other fields except Sessions are zero in that case.
	InsufficientData bool   `json:"insufficientData"`
	Message          string `json:"message,omitempty"`

	WallTypes       map[string]WallTypeStats `json:"wallTypes,omitempty"`
	ManualPositions []geometry.Point         `json:"manualPositions,omitempty"`
	RoomTypes       map[string]RoomTypeStats `json:"roomTypes,omitempty"`
}

// Analyzer aggregates saved sessions into Patterns.
type Analyzer struct {
	history History
	cfg     config.Config
}

// NewAnalyzer creates an Analyzer reading saved sessions from history.
func NewAnalyzer(history History, cfg config.Config) *Analyzer {
	return &Analyzer{history: history, cfg: cfg}
}

// AnalyzePatterns aggregates every saved session. With fewer sessions than
// the configured minimum it returns a structured insufficient-data result,
// not an error: callers downstream treat that result as "predict nothing".
func (a *Analyzer) AnalyzePatterns() (*Patterns, error) {
	sessions, err := a.history.Sessions()
	if err != nil {
		return nil, fmt.Errorf("loading session history: %w", err)
	}
	if len(sessions) < a.cfg.MinSessionsForPatterns {
		return &Patterns{
			Sessions:         len(sessions),
			InsufficientData: true,
			Message: fmt.Sprintf("need at least %d sessions, have %d",
				a.cfg.MinSessionsForPatterns, len(sessions)),
		}, nil
	}

	p := &Patterns{
		Sessions:   len(sessions),
		Confidence: patternConfidence(len(sessions), a.cfg.PatternSaturationCount),
		WallTypes:  make(map[string]WallTypeStats),
		RoomTypes:  make(map[string]RoomTypeStats),
	}

	deletedConfidences := make(map[string][]float64)
	for _, session := range sessions {
		for _, w := range session.Walls {
			stats := p.WallTypes[w.Type]
			stats.Detected++
			if w.IsDeleted {
				stats.Deleted++
				deletedConfidences[w.Type] = append(deletedConfidences[w.Type], w.Confidence)
			}
			p.WallTypes[w.Type] = stats

			if w.IsManual && !w.IsDeleted {
				p.ManualPositions = append(p.ManualPositions, w.Start, w.End)
			}
		}
		for _, r := range session.Rooms {
			if r.IsDeleted || r.Type == "" {
				continue
			}
			stats := p.RoomTypes[r.Type]
			stats.Count++
			stats.AreaSamples = append(stats.AreaSamples, r.Area)
			p.RoomTypes[r.Type] = stats
		}
	}

	for wallType, stats := range p.WallTypes {
		if stats.Detected > 0 {
			stats.DeletionRate = float64(stats.Deleted) / float64(stats.Detected)
		}
		if samples := deletedConfidences[wallType]; len(samples) > 0 {
			stats.DeletedConfidence = stat.Mean(samples, nil)
		}
		p.WallTypes[wallType] = stats
	}
	for roomType, stats := range p.RoomTypes {
		if len(stats.AreaSamples) > 0 {
			stats.AverageArea = stat.Mean(stats.AreaSamples, nil)
		}
		p.RoomTypes[roomType] = stats
	}
	return p, nil
}

// patternConfidence scales linearly with observed sessions and saturates at
// the configured count.
func patternConfidence(sessions, saturation int) float64 {
	if saturation <= 0 {
		return 100
	}
	return math.Min(float64(sessions)/float64(saturation), 1) * 100
}

// RoomTypeNames returns the known room types sorted lexicographically.
// Deterministic ordering keeps tie-breaks stable across runs.
func (p *Patterns) RoomTypeNames() []string {
	names := make([]string, 0, len(p.RoomTypes))
	for name := range p.RoomTypes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
