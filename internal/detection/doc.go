// Package detection implements the geometry-extraction stages of the floor
// plan pipeline: edge detection, line extraction and merging, wall
// synthesis, contour-based room resolution, and opening detection.
//
// # Stage Order
//
// Each stage depends only on the previous stage's output:
//
//  1. DetectEdges: Canny-style edge map plus morphological closing
//  2. DetectSegments: Hough line detection with gap-aware splitting
//  3. MergeCollinear: fuses near-collinear, nearby segments
//  4. SynthesizeWalls / ClassifyWallTypes: parallel-group wall synthesis
//  5. ExtractContours / FilterContours: closed boundary candidates
//  6. ResolveRooms: contour promotion with a wall-graph fallback
//  7. DetectDoors / DetectWindows: gap analysis and adjacency checks
//
// # Coordinate System
//
// All coordinates use the standard image convention: origin (0, 0) at the
// top-left corner, X increasing rightward, Y increasing downward. Stages
// operate at the preprocessor's working resolution; the pipeline scales
// results back to original image coordinates.
//
// # Thresholds
//
// Every numeric threshold used by these heuristics lives in the stage's
// Options struct, with tuned defaults in the corresponding Default*Options
// constructor and in config.Config. The values encode real tuning against
// scanned, CAD-exported, and hand-drawn plans.
//
// # Error Behavior
//
// Geometry edge cases (zero-length lines, polygons with fewer than three
// vertices) never abort a stage: the offending item is skipped and the rest
// of the input processed.
package detection
