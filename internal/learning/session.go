// Package learning records every automated detection and every human
// correction per processed floor plan, aggregates statistics across
// historical sessions, scores new detections against those statistics, and
// optionally filters or augments results.
//
// Sessions are keyed by ID and mutually excluded per key, so independent
// images can learn concurrently without interfering with each other.
// Deleted records are never physically removed: they persist with
// IsDeleted=true so the pattern analyzer can learn from what humans
// rejected.
package learning

import (
	"time"

	"github.com/planwise/floorplan-vision/internal/geometry"
)

// Source identifies who produced a feature record.
type Source string

const (
	SourceAI     Source = "ai"
	SourceManual Source = "manual"

	// SourceRAGLearning marks walls synthesized by the auto-corrector from
	// recurring manual corrections, not detected in the image.
	SourceRAGLearning Source = "rag_learning"
)

// WallRecord is one wall in a learning session.
type WallRecord struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Start      geometry.Point `json:"start"`
	End        geometry.Point `json:"end"`
	Thickness  float64        `json:"thickness"`
	Confidence float64        `json:"confidence"`
	Method     string         `json:"method,omitempty"`
	Source     Source         `json:"source"`
	IsManual   bool           `json:"isManual"`
	IsDeleted  bool           `json:"isDeleted"`
}

// RoomRecord is one room in a learning session. Area doubles as the square
// footage sample the pattern analyzer aggregates per room type.
type RoomRecord struct {
	ID         string           `json:"id"`
	Type       string           `json:"type"`
	Vertices   []geometry.Point `json:"vertices"`
	Area       float64          `json:"area"`
	Perimeter  float64          `json:"perimeter"`
	Confidence float64          `json:"confidence"`
	Method     string           `json:"method,omitempty"`
	Source     Source           `json:"source"`
	IsManual   bool             `json:"isManual"`
	IsDeleted  bool             `json:"isDeleted"`
}

// DoorRecord is one door in a learning session.
type DoorRecord struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Position  geometry.Point `json:"position"`
	Width     float64        `json:"width"`
	WallID    string         `json:"wallId,omitempty"`
	Method    string         `json:"method,omitempty"`
	Source    Source         `json:"source"`
	IsManual  bool           `json:"isManual"`
	IsDeleted bool           `json:"isDeleted"`
}

// WindowRecord is one window in a learning session.
type WindowRecord struct {
	ID        string         `json:"id"`
	Position  geometry.Point `json:"position"`
	Width     float64        `json:"width"`
	Height    float64        `json:"height"`
	WallID    string         `json:"wallId,omitempty"`
	Method    string         `json:"method,omitempty"`
	Source    Source         `json:"source"`
	IsManual  bool           `json:"isManual"`
	IsDeleted bool           `json:"isDeleted"`
}

// MeasurementRecord is one user or detector supplied measurement.
type MeasurementRecord struct {
	ID        string  `json:"id"`
	Label     string  `json:"label"`
	Value     float64 `json:"value"`
	Unit      string  `json:"unit"`
	Source    Source  `json:"source"`
	IsManual  bool    `json:"isManual"`
	IsDeleted bool    `json:"isDeleted"`
}

// Metadata holds running counters updated as records are added and marked.
type Metadata struct {
	TotalDetections  int      `json:"totalDetections"`
	ManualCount      int      `json:"manualCount"`
	AICount          int      `json:"aiCount"`
	Deletions        int      `json:"deletions"`
	DetectionMethods []string `json:"detectionMethods"`
}

// Session is the durable record of one image's automated detections plus
// all human corrections applied to it. A session is created when an image
// begins processing, mutated by detectors and human-edit events, and
// becomes immutable once saved.
type Session struct {
	ID               string              `json:"id"`
	Timestamp        time.Time           `json:"timestamp"`
	ImageHash        string              `json:"imageHash"`
	Walls            []WallRecord        `json:"walls"`
	Rooms            []RoomRecord        `json:"rooms"`
	Doors            []DoorRecord        `json:"doors"`
	Windows          []WindowRecord      `json:"windows"`
	Measurements     []MeasurementRecord `json:"measurements"`
	Metadata         Metadata            `json:"metadata"`
	UserFeedback     string              `json:"userFeedback,omitempty"`
	ProcessingTimeMs int64               `json:"processingTimeMs,omitempty"`
}

// Accuracy is the fraction of recorded detections that survived human
// review: 1 when nothing was deleted, 0 when everything was.
func (s *Session) Accuracy() float64 {
	if s.Metadata.TotalDetections == 0 {
		return 0
	}
	kept := s.Metadata.TotalDetections - s.Metadata.Deletions
	if kept < 0 {
		kept = 0
	}
	return float64(kept) / float64(s.Metadata.TotalDetections)
}

// Summary is the compact, append-only record written to the historical log
// when a session is saved.
type Summary struct {
	ID                string    `json:"id"`
	Timestamp         time.Time `json:"timestamp"`
	WallCount         int       `json:"wallCount"`
	ManualCorrections int       `json:"manualCorrections"`
	Deletions         int       `json:"deletions"`
	Accuracy          float64   `json:"accuracy"`
	Methods           []string  `json:"methods"`
}
