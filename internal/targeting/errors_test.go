package targeting

import (
	"testing"
	"time"

	"github.com/flightpath-dev/visionlock/internal/busproto"
	"github.com/flightpath-dev/visionlock/internal/geometry"
	"github.com/stretchr/testify/assert"
)

type fakeDepthSampler struct {
	depthM float64
	valid  bool
}

func (f fakeDepthSampler) MedianDepth(roi geometry.BoundingBox) (float64, bool) {
	return f.depthM, f.valid
}

func testIntrinsics() geometry.CameraIntrinsics {
	return geometry.CameraIntrinsics{FX: 910, FY: 910, CX: 960, CY: 540, Width: 1920, Height: 1080}
}

func testErrorCfg() ErrorComputerConfig {
	return ErrorComputerConfig{
		Intrinsics:    testIntrinsics(),
		DepthWidth:    640,
		DepthHeight:   480,
		DesiredRangeM: 10,
		MinRangeM:     3,
		MaxRangeM:     50,
	}
}

func TestComputeReturnsZeroedErrorsWhenLockInvalid(t *testing.T) {
	c := NewErrorComputer(testErrorCfg(), fakeDepthSampler{valid: true, depthM: 10}, 1920, 1080)

	e := c.Compute(track(1, 900, 500, 1000, 600), false, time.Now())
	assert.False(t, e.LockValid)
	assert.Equal(t, 0.0, e.YawErrorRad)
	assert.Equal(t, 0.0, e.PitchErrorRad)
}

func TestComputeYawPitchFromBBoxCenter(t *testing.T) {
	c := NewErrorComputer(testErrorCfg(), fakeDepthSampler{valid: true, depthM: 8}, 1920, 1080)

	// bbox centered exactly on the principal point: zero error expected.
	tr := track(1, 910, 490, 1010, 590)
	e := c.Compute(tr, true, time.Now())
	assert.True(t, e.LockValid)
	assert.True(t, e.TrackValid)
	assert.InDelta(t, 0, e.YawErrorRad, 1e-9)
	assert.InDelta(t, 0, e.PitchErrorRad, 1e-9)
}

func TestComputeMarksDepthInvalidWhenSamplerRejects(t *testing.T) {
	c := NewErrorComputer(testErrorCfg(), fakeDepthSampler{valid: false}, 1920, 1080)

	e := c.Compute(track(1, 900, 500, 1000, 600), true, time.Now())
	assert.False(t, e.DepthValid)
	assert.Equal(t, 0.0, e.RangeErrorM)
}

func TestComputeRangeErrorIsOffsetFromDesiredRange(t *testing.T) {
	cfg := testErrorCfg()
	c := NewErrorComputer(cfg, fakeDepthSampler{valid: true, depthM: 12.5}, 1920, 1080)

	e := c.Compute(track(1, 900, 500, 1000, 600), true, time.Now())
	assert.True(t, e.DepthValid)
	assert.InDelta(t, 12.5-cfg.DesiredRangeM, e.RangeErrorM, 1e-9)
}

func TestComputeDepthInvalidWhenOutsideRangeWindowButErrorStillReported(t *testing.T) {
	cfg := testErrorCfg()
	c := NewErrorComputer(cfg, fakeDepthSampler{valid: true, depthM: 1.0}, 1920, 1080)

	e := c.Compute(track(1, 900, 500, 1000, 600), true, time.Now())
	assert.False(t, e.DepthValid, "1.0m is below MinRangeM=3")
	assert.InDelta(t, 1.0-cfg.DesiredRangeM, e.RangeErrorM, 1e-9)
}

func TestSetDepthRangeUpdatesValidityWindow(t *testing.T) {
	cfg := testErrorCfg()
	c := NewErrorComputer(cfg, fakeDepthSampler{valid: true, depthM: 1.0}, 1920, 1080)

	e := c.Compute(track(1, 900, 500, 1000, 600), true, time.Now())
	assert.False(t, e.DepthValid)

	c.SetDepthRange(0.5, 5)
	e = c.Compute(track(1, 900, 500, 1000, 600), true, time.Now())
	assert.True(t, e.DepthValid)
}
