// Package edgefinder measures the contact angle of a sessile droplet from a
// backlit silhouette image.
//
// The package is a strictly forward pipeline of pure functions over an
// intensity Grid:
//
//  1. Crop: bound the illuminated region and add a safety margin.
//  2. Subpixel: bilinear upsampling by an integer multiplier.
//  3. Baseline: fit the substrate edge on both sides of the droplet.
//  4. DropEdge: trace the silhouette from the baseline up to the apex.
//  5. AngleTan: fit local tangents, intersect them with the baseline and
//     compute the two contact angles.
//
// FullAnalysis runs all five stages and returns the AnglePair; Analyze
// returns every intermediate result for callers that plot or inspect them.
//
// # Coordinate System
//
// Grids are indexed (row, col) with row 0 at the top of the image. Point
// sequences use X for the column and Y for the row, so a line Y = Slope*X +
// Intercept is expressed in image coordinates and a larger Y is lower in
// the frame.
//
// # Thresholds
//
// A sample is "bright" when its intensity is strictly greater than the
// threshold in use. The droplet and the substrate are dark; the background
// is bright.
//
// # Errors
//
// Failures are reported as *EmptyRegionError, *OutOfBoundsError,
// *DegenerateFitError or *ConfigError. Each carries the stage and the
// offending value and matches the corresponding Err* sentinel through
// errors.Is. Nothing is retried and no partial result is returned.
//
// # Concurrency
//
// No function in this package holds state between calls. Separate images may
// be processed concurrently without coordination.
package edgefinder
