// Package control implements gain mapping and the safety pipeline: the
// Control node's two responsibilities, per spec §4.3.
package control

import "github.com/flightpath-dev/visionlock/internal/busproto"

// GainMap holds the proportional gains, deadbands, and limits that turn
// an Errors reading into a raw (pre-safety-pipeline) Setpoint, per
// spec §4.3.1.
type GainMap struct {
	YawToRollDegPerRad   float64
	PitchToPitchDegPerRad float64
	RangeToThrustPerM    float64

	YawDeadbandRad   float64
	PitchDeadbandRad float64
	RangeDeadbandM   float64

	RollLimitDeg  float64
	PitchLimitDeg float64

	ThrustEnabled bool
}

// DefaultGainMap returns the spec's stated gains and limits.
func DefaultGainMap() GainMap {
	return GainMap{
		YawToRollDegPerRad:    30,
		PitchToPitchDegPerRad: 20,
		RangeToThrustPerM:     0.05,
		YawDeadbandRad:        0.02,
		PitchDeadbandRad:      0.02,
		RangeDeadbandM:        0.5,
		RollLimitDeg:          20,
		PitchLimitDeg:         10,
		ThrustEnabled:         false,
	}
}

// deadband zeroes v when it is within band of zero, and passes it through
// unchanged otherwise — per spec.md's worked example (§8 scenario 2), the
// gain applies to the full error past threshold, not the error minus band.
func deadband(v, band float64) float64 {
	if v > -band && v < band {
		return 0
	}
	return v
}

func clamp(v, limit float64) float64 {
	if v > limit {
		return limit
	}
	if v < -limit {
		return -limit
	}
	return v
}

// Map converts an Errors reading into a raw Setpoint: deadband, scale by
// gain, then hard-clamp roll/pitch to their limits. Thrust is mapped only
// when ThrustEnabled and the incoming range reading is depth-valid;
// otherwise thrust is left at zero for the safety pipeline to handle.
func (g GainMap) Map(e busproto.Errors) busproto.Setpoint {
	sp := busproto.Setpoint{Timestamp: e.Timestamp}

	if !e.TrackValid || !e.LockValid {
		return sp
	}

	yaw := deadband(e.YawErrorRad, g.YawDeadbandRad)
	pitch := deadband(e.PitchErrorRad, g.PitchDeadbandRad)

	sp.RollDeg = clamp(yaw*g.YawToRollDegPerRad, g.RollLimitDeg)
	sp.PitchDeg = clamp(pitch*g.PitchToPitchDegPerRad, g.PitchLimitDeg)

	if g.ThrustEnabled && e.DepthValid {
		rng := deadband(e.RangeErrorM, g.RangeDeadbandM)
		sp.Thrust = rng * g.RangeToThrustPerM
	}

	return sp
}
