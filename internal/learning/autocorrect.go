package learning

import (
	"sort"

	"github.com/google/uuid"

	"github.com/planwise/floorplan-vision/internal/config"
	"github.com/planwise/floorplan-vision/internal/geometry"
)

// Correction is the auto-corrector's output: the surviving walls plus any
// synthesized suggestions.
type Correction struct {
	// AutoApplied is false when the aggregate was not trusted enough to
	// touch anything; Walls then equals the input.
	AutoApplied bool         `json:"autoApplied"`
	Walls       []WallRecord `json:"walls"`

	// Removed lists wall IDs filtered out as likely incorrect.
	Removed []string `json:"removed,omitempty"`

	// Suggested holds wall stubs synthesized from recurring manual
	// corrections. They carry SourceRAGLearning and are anchored at the
	// cluster center; geometry beyond the anchor point is up for review.
	Suggested []WallRecord `json:"suggested,omitempty"`
}

// Corrector filters and augments detections using aggregated patterns.
type Corrector struct {
	cfg       config.Config
	predictor *Predictor
}

// NewCorrector returns a Corrector sharing the predictor's thresholds.
func NewCorrector(cfg config.Config) *Corrector {
	return &Corrector{cfg: cfg, predictor: NewPredictor(cfg)}
}

// AutoApplyCorrections removes walls history says are likely wrong and
// suggests walls humans repeatedly added by hand. Nothing is touched below
// the aggregate confidence gate, and removal has its own stricter gate.
func (c *Corrector) AutoApplyCorrections(patterns *Patterns, walls []WallRecord) Correction {
	if patterns == nil || patterns.InsufficientData ||
		patterns.Confidence < c.cfg.AutoApplyMinConfidence {
		return Correction{Walls: walls}
	}

	result := Correction{AutoApplied: true}

	canRemove := patterns.Confidence > c.cfg.AutoRemoveMinConfidence
	for _, w := range walls {
		if canRemove && c.predictor.assessWall(patterns, w).Label == LabelLikelyIncorrect {
			result.Removed = append(result.Removed, w.ID)
			continue
		}
		result.Walls = append(result.Walls, w)
	}

	if len(patterns.ManualPositions) >= c.cfg.ClusterMinSamples {
		result.Suggested = c.suggestFromClusters(patterns, result.Walls)
	}
	return result
}

// suggestFromClusters groups historical manual wall endpoints and, for
// clusters that recur across enough sessions and sit far from every
// detected wall, emits a suggested wall stub at the cluster center.
func (c *Corrector) suggestFromClusters(patterns *Patterns, walls []WallRecord) []WallRecord {
	clusters := clusterPoints(patterns.ManualPositions, c.cfg.ClusterProximity)

	minShare := c.cfg.ClusterFrequencyShare * float64(patterns.Sessions)
	var suggested []WallRecord
	for _, cluster := range clusters {
		freq := len(cluster)
		if freq <= 1 || float64(freq) <= minShare {
			continue
		}
		center := centroidOf(cluster)
		if nearAnyWall(center, walls, c.cfg.ClusterProximity) {
			continue
		}
		suggested = append(suggested, WallRecord{
			ID:         uuid.New().String(),
			Type:       "interior",
			Start:      center,
			End:        center,
			Source:     SourceRAGLearning,
			Method:     "manual_position_cluster",
			Confidence: float64(freq) / float64(patterns.Sessions),
		})
	}
	return suggested
}

// clusterPoints unions points transitively: any two points closer than
// radius land in the same cluster.
func clusterPoints(points []geometry.Point, radius float64) [][]geometry.Point {
	parent := make([]int, len(points))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		if parent[i] != i {
			parent[i] = find(parent[i])
		}
		return parent[i]
	}
	for i := 0; i < len(points); i++ {
		for j := i + 1; j < len(points); j++ {
			if points[i].Distance(points[j]) < radius {
				parent[find(i)] = find(j)
			}
		}
	}

	groups := make(map[int][]geometry.Point)
	for i, p := range points {
		root := find(i)
		groups[root] = append(groups[root], p)
	}
	clusters := make([][]geometry.Point, 0, len(groups))
	for _, g := range groups {
		clusters = append(clusters, g)
	}
	// Map iteration order is random; sort by centroid for stable output.
	sort.Slice(clusters, func(i, j int) bool {
		a, b := centroidOf(clusters[i]), centroidOf(clusters[j])
		if a.X != b.X {
			return a.X < b.X
		}
		return a.Y < b.Y
	})
	return clusters
}

func centroidOf(points []geometry.Point) geometry.Point {
	var sum geometry.Point
	for _, p := range points {
		sum.X += p.X
		sum.Y += p.Y
	}
	n := float64(len(points))
	return geometry.Point{X: sum.X / n, Y: sum.Y / n}
}

// nearAnyWall reports whether the point lies within radius of any wall's
// segment, not just its endpoints.
func nearAnyWall(p geometry.Point, walls []WallRecord, radius float64) bool {
	for _, w := range walls {
		if geometry.PointToSegmentDistance(p, w.Start, w.End) <= radius {
			return true
		}
	}
	return false
}
