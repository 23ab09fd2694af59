// Package geometry implements the pinhole-camera and attitude math shared
// by targeting and flight-link: bounding boxes, pixel-to-angle projection,
// and Euler/quaternion conversion.
package geometry

import "math"

// BoundingBox is an axis-aligned pixel rectangle. Invariant: X2>=X1 && Y2>=Y1.
type BoundingBox struct {
	X1, Y1, X2, Y2 float64
}

// Center returns the bounding box center in pixel coordinates.
func (b BoundingBox) Center() (cx, cy float64) {
	return (b.X1 + b.X2) / 2, (b.Y1 + b.Y2) / 2
}

// Width returns the bounding box width.
func (b BoundingBox) Width() float64 { return b.X2 - b.X1 }

// Height returns the bounding box height.
func (b BoundingBox) Height() float64 { return b.Y2 - b.Y1 }

// Contains reports whether the pixel (u,v) falls within the box.
func (b BoundingBox) Contains(u, v float64) bool {
	return u >= b.X1 && u <= b.X2 && v >= b.Y1 && v <= b.Y2
}

// DistanceToCenter returns the Euclidean distance from (u,v) to the box center.
func (b BoundingBox) DistanceToCenter(u, v float64) float64 {
	cx, cy := b.Center()
	dx, dy := u-cx, v-cy
	return math.Hypot(dx, dy)
}

// CameraIntrinsics holds the pinhole-model calibration parameters.
type CameraIntrinsics struct {
	FX, FY, CX, CY float64
	Width, Height  int
}

// PixelToAngles converts a pixel offset from the principal point into
// yaw/pitch ray angles (radians). yaw>0 means right of center, pitch>0
// means above center (image Y grows downward, so pitch is negated).
func (c CameraIntrinsics) PixelToAngles(px, py float64) (yaw, pitch float64) {
	yaw = math.Atan2(px-c.CX, c.FX)
	pitch = -math.Atan2(py-c.CY, c.FY)
	return yaw, pitch
}

// ScaleROIToDepth maps an RGB-frame ROI into the depth frame's pixel space
// using the ratio between the two frame sizes.
func ScaleROIToDepth(box BoundingBox, rgbWidth, rgbHeight, depthWidth, depthHeight int) BoundingBox {
	sx := float64(depthWidth) / float64(rgbWidth)
	sy := float64(depthHeight) / float64(rgbHeight)
	return BoundingBox{
		X1: box.X1 * sx,
		Y1: box.Y1 * sy,
		X2: box.X2 * sx,
		Y2: box.Y2 * sy,
	}
}
