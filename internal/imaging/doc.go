// Package imaging loads camera frames and renders previews of detected
// rectangles.
//
// Frames are read from disk through FrameCache, which decodes PNG, JPEG, GIF,
// TIFF and BMP and applies EXIF orientation. Previews are PNG images returned
// as base64 strings so they can travel inside a JSON-RPC response.
//
// # Coordinate System
//
// Pixel coordinates are 0-based with (0,0) at the top-left corner, X
// increasing rightward and Y increasing downward. Functions that take a
// geometry.Quad interpret its corners as normalized frame coordinates and
// convert them to pixel centers.
//
// # Thread Safety
//
// FrameCache is safe for concurrent use. Preview functions draw on a copy
// and never modify the source frame.
//
// # Error Handling
//
// Functions return errors for:
//   - Crop regions outside the frame or with no area
//   - Unparseable stroke colors
//   - File I/O and decoding errors while loading
//   - Encoding errors during preview output
package imaging
