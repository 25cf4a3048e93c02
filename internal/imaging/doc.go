// Package imaging converts between image files and the intensity grids the
// contact angle pipeline works on, and renders analysis results back onto
// images.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based, with (0,0) at the
// top-left corner:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - For regions, Min is inclusive and Max is exclusive, as in image.Rectangle
//
// Grids use the same layout: row is Y, column is X.
//
// # Intake
//
// ImageCache decodes PNG, JPEG, GIF, TIFF and BMP files and keeps them in
// memory by path. ToGrid turns any image.Image into an 8-bit luma Grid and
// Preprocess optionally smooths an image before conversion.
//
// # Overlays
//
// RenderOverlay draws the fitted baseline, the traced edges, the tangents
// and their intersections over the subpixel grid of an Analysis, with the
// two angles as a text label. Inset zooms into a region around a point,
// typically a contact point. EncodePNG packs any result image as base64 PNG
// for JSON transports.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. Every other function is stateless
// and may be called concurrently on different inputs.
package imaging
