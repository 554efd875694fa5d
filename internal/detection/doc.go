// Package detection finds rectangles in camera frames.
//
// DetectRectangles is the 2D half of rectangle placement: it reports where
// in the frame a rectangle's four corners appear, and the reconstruct
// package lifts those corners onto known surfaces in world space.
//
// # Algorithm Overview
//
//  1. Preprocessing: grayscale conversion and downscaling with
//     github.com/disintegration/imaging
//  2. Edge Detection: Sobel gradient magnitude with
//     github.com/anthonynsimon/bild, thresholded to a binary map
//  3. Contour Finding: flood-fill groups connected edge pixels
//  4. Corner Extraction: extreme points along the two image diagonals
//  5. Filtering: remove shapes below a minimum area or confidence
//
// # Coordinate System
//
// Corners are reported in normalized frame coordinates:
//   - Origin (0, 0) at the top-left of the frame
//   - X increases rightward to 1
//   - Y increases downward to 1
//
// Pixel bounding boxes use the source frame's own pixel coordinates, even
// when detection ran on a downscaled copy.
//
// # Confidence Scores
//
// Confidence (0.0 to 1.0) is the share of a contour's pixels that lie on the
// edges of the polygon spanned by its four corners:
//   - 1.0 = every contour pixel is on a polygon edge
//   - Circles and irregular blobs score well below the default tolerance
//
// # Limitations
//
// The detector works best on high-contrast frames where the rectangle's
// outline is unbroken. Rectangles turned close to 45 degrees within the
// frame have ambiguous extreme points and get poor corners.
package detection
