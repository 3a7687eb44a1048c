// Package imaging loads floor plan images and prepares them for detection.
//
// The package owns the raster side of the pipeline: decoding, caching, and
// the preprocessing chain that turns an arbitrary scan or export into the
// normalized luminance grid the detection stages consume. All operations
// work with standard Go image.Image types and use a coordinate system where
// (0,0) is at the top-left corner, X increases rightward, and Y increases
// downward.
//
// # Working Resolution
//
// Detection runs at a fixed working resolution (longest side capped, aspect
// preserved). Prepared carries the scale factor back to the original image,
// so downstream results can be reported in original pixel coordinates.
// Images smaller than the working resolution are left at their native size.
//
// # Luminance Grid
//
// Prepared.Gray holds perceptual luminance in [0,1], indexed [y][x], from
// the Lab lightness channel rather than a naive RGB average; fully
// transparent pixels read as white, matching paper. Stats summarizes the
// distribution on the 0-255 scale so edge and line extraction can adapt
// their thresholds to faint pencil sketches versus crisp CAD exports.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. Preprocess is stateless;
// concurrent calls on different images need no coordination.
//
// # Performance Considerations
//
// For repeated analysis of the same file, use ImageCache to avoid redundant
// disk reads and decodes. Large images may consume significant memory when
// cached; use Evict() or Clear() in long-running processes.
package imaging
