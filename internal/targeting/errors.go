package targeting

import (
	"time"

	"github.com/flightpath-dev/visionlock/internal/busproto"
	"github.com/flightpath-dev/visionlock/internal/geometry"
)

// ErrorComputerConfig holds the camera intrinsics, depth-ROI parameters,
// and the standoff-range window needed to turn a locked track's bbox into
// yaw/pitch/range error, per spec §4.2.2.
type ErrorComputerConfig struct {
	Intrinsics geometry.CameraIntrinsics

	DepthWidth  int
	DepthHeight int

	// DesiredRangeM is the standoff distance the control loop holds the
	// aircraft at; RangeErrorM is the signed offset from it, not the raw
	// depth reading.
	DesiredRangeM float64
	MinRangeM     float64
	MaxRangeM     float64
}

// DepthSampler abstracts the depth source: given a region of interest in
// depth-frame pixel coordinates, it returns the median depth in meters and
// whether the ROI yielded a usable sample (enough valid pixels), per
// spec §4.2.2. Whether that sample falls inside the configured standoff
// window is a separate check ErrorComputer applies on top.
type DepthSampler interface {
	MedianDepth(roi geometry.BoundingBox) (depthM float64, valid bool)
}

// ErrorComputer turns a TrackList plus a locked track id into the Errors
// message published on the errors topic.
type ErrorComputer struct {
	cfg   ErrorComputerConfig
	depth DepthSampler
	rgbW  int
	rgbH  int
}

// NewErrorComputer builds an ErrorComputer. rgbWidth/rgbHeight are the
// pixel dimensions of the frame the tracker's bboxes are expressed in.
func NewErrorComputer(cfg ErrorComputerConfig, depth DepthSampler, rgbWidth, rgbHeight int) *ErrorComputer {
	return &ErrorComputer{cfg: cfg, depth: depth, rgbW: rgbWidth, rgbH: rgbHeight}
}

// SetDepthRange updates the standoff-range window a SET_DEPTH_RANGE user
// command carries (param1=min_depth, param2=max_depth), per spec §4.4.3.
func (c *ErrorComputer) SetDepthRange(minM, maxM float64) {
	c.cfg.MinRangeM = minM
	c.cfg.MaxRangeM = maxM
}

// Compute derives yaw/pitch/range error for the given locked track's bbox.
// lockValid should reflect the LockManager's current status being Locked;
// when false, the returned Errors carries LockValid=false and zeroed
// angular error, per spec §4.2.2's "no valid lock" case.
func (c *ErrorComputer) Compute(track busproto.Track, lockValid bool, now time.Time) busproto.Errors {
	if !lockValid {
		e := busproto.ZeroErrors(now)
		e.LockValid = false
		return e
	}

	cx, cy := track.BBox.Center()
	yaw, pitch := c.cfg.Intrinsics.PixelToAngles(cx, cy)

	depthROI := geometry.ScaleROIToDepth(track.BBox, c.rgbW, c.rgbH, c.cfg.DepthWidth, c.cfg.DepthHeight)
	depthM, sampleOK := c.depth.MedianDepth(depthROI)

	rangeErr := 0.0
	depthValid := false
	if sampleOK {
		rangeErr = depthM - c.cfg.DesiredRangeM
		depthValid = depthM >= c.cfg.MinRangeM && depthM <= c.cfg.MaxRangeM
	}

	return busproto.Errors{
		YawErrorRad:   yaw,
		PitchErrorRad: pitch,
		RangeErrorM:   rangeErr,
		TrackValid:    true,
		DepthValid:    depthValid,
		LockValid:     true,
		Timestamp:     now,
	}
}
