package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBoundingBoxCenterAndDims(t *testing.T) {
	b := BoundingBox{X1: 10, Y1: 20, X2: 30, Y2: 60}
	cx, cy := b.Center()
	assert.Equal(t, 20.0, cx)
	assert.Equal(t, 40.0, cy)
	assert.Equal(t, 20.0, b.Width())
	assert.Equal(t, 40.0, b.Height())
}

func TestBoundingBoxContains(t *testing.T) {
	b := BoundingBox{X1: 0, Y1: 0, X2: 100, Y2: 100}
	assert.True(t, b.Contains(50, 50))
	assert.True(t, b.Contains(0, 0))
	assert.True(t, b.Contains(100, 100))
	assert.False(t, b.Contains(101, 50))
	assert.False(t, b.Contains(50, -1))
}

func TestBoundingBoxDistanceToCenter(t *testing.T) {
	b := BoundingBox{X1: 0, Y1: 0, X2: 10, Y2: 10}
	assert.InDelta(t, 0, b.DistanceToCenter(5, 5), 1e-9)
	assert.InDelta(t, 5, b.DistanceToCenter(10, 5), 1e-9)
}

func TestPixelToAnglesSignConvention(t *testing.T) {
	intr := CameraIntrinsics{FX: 1000, FY: 1000, CX: 960, CY: 540, Width: 1920, Height: 1080}

	// Center of the image: zero error.
	yaw, pitch := intr.PixelToAngles(960, 540)
	assert.InDelta(t, 0, yaw, 1e-9)
	assert.InDelta(t, 0, pitch, 1e-9)

	// Target right of center: positive yaw.
	yaw, _ = intr.PixelToAngles(1060, 540)
	assert.Greater(t, yaw, 0.0)

	// Target above center (smaller pixel-y): positive pitch.
	_, pitch = intr.PixelToAngles(960, 440)
	assert.Greater(t, pitch, 0.0)

	// Target below center: negative pitch.
	_, pitch = intr.PixelToAngles(960, 640)
	assert.Less(t, pitch, 0.0)
}

func TestPixelToAnglesMagnitude(t *testing.T) {
	intr := CameraIntrinsics{FX: 1000, FY: 1000, CX: 960, CY: 540}
	yaw, _ := intr.PixelToAngles(1000+960, 540)
	assert.InDelta(t, math.Pi/4, yaw, 1e-9)
}

func TestScaleROIToDepth(t *testing.T) {
	box := BoundingBox{X1: 0, Y1: 0, X2: 1920, Y2: 1080}
	scaled := ScaleROIToDepth(box, 1920, 1080, 640, 480)
	assert.InDelta(t, 0, scaled.X1, 1e-9)
	assert.InDelta(t, 640, scaled.X2, 1e-9)
	assert.InDelta(t, 480, scaled.Y2, 1e-9)
}
