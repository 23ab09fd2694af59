package control

import (
	"time"

	"github.com/flightpath-dev/visionlock/internal/busproto"
)

// SafetyConfig holds the smoothing factor and slew limits applied after
// gain mapping, per spec §4.3.2.
type SafetyConfig struct {
	SmoothingAlpha float64

	RollSlewDegPerSec   float64
	PitchSlewDegPerSec  float64
	ThrustSlewPerSec    float64

	RollLimitDeg  float64
	PitchLimitDeg float64

	BenchMode bool
}

// DefaultSafetyConfig returns the spec's stated smoothing factor and slew
// rates. ThrustSlewPerSec is a supplemented addition (see SPEC_FULL.md,
// resolution for the flight-mode thrust profile); bench mode still forces
// thrust to exactly zero regardless of this value.
func DefaultSafetyConfig() SafetyConfig {
	return SafetyConfig{
		SmoothingAlpha:     0.3,
		RollSlewDegPerSec:  30,
		PitchSlewDegPerSec: 20,
		ThrustSlewPerSec:   0.5,
		RollLimitDeg:       20,
		PitchLimitDeg:      10,
		BenchMode:          true,
	}
}

// SafetyPipeline applies the validity gate, exponential smoothing,
// slew-rate limiting, hard clamp, and bench-mode override stages to a raw
// Setpoint in sequence, holding the filter state between ticks.
type SafetyPipeline struct {
	cfg SafetyConfig

	smoothed busproto.Setpoint
	output   busproto.Setpoint

	lastTick    time.Time
	initialized bool
}

// NewSafetyPipeline creates a pipeline starting from the neutral setpoint.
func NewSafetyPipeline(cfg SafetyConfig) *SafetyPipeline {
	return &SafetyPipeline{
		cfg:      cfg,
		smoothed: busproto.NeutralSetpoint(time.Time{}),
		output:   busproto.NeutralSetpoint(time.Time{}),
	}
}

// Apply advances the pipeline one tick. valid gates the raw input: when
// false (failsafe commanding neutral, or no fresh errors reading), the
// target fed into smoothing is the neutral setpoint rather than raw,
// letting the existing slew limiter bring the vehicle to neutral smoothly
// instead of snapping it.
func (p *SafetyPipeline) Apply(raw busproto.Setpoint, valid bool, now time.Time) busproto.Setpoint {
	dt := p.tickDelta(now)

	target := raw
	if !valid {
		target = busproto.NeutralSetpoint(now)
	}

	p.smoothed.RollDeg = ema(p.smoothed.RollDeg, target.RollDeg, p.cfg.SmoothingAlpha)
	p.smoothed.PitchDeg = ema(p.smoothed.PitchDeg, target.PitchDeg, p.cfg.SmoothingAlpha)
	p.smoothed.Thrust = ema(p.smoothed.Thrust, target.Thrust, p.cfg.SmoothingAlpha)

	p.output.RollDeg = slew(p.output.RollDeg, p.smoothed.RollDeg, p.cfg.RollSlewDegPerSec, dt)
	p.output.PitchDeg = slew(p.output.PitchDeg, p.smoothed.PitchDeg, p.cfg.PitchSlewDegPerSec, dt)
	p.output.Thrust = slew(p.output.Thrust, p.smoothed.Thrust, p.cfg.ThrustSlewPerSec, dt)

	p.output.RollDeg = clamp(p.output.RollDeg, p.cfg.RollLimitDeg)
	p.output.PitchDeg = clamp(p.output.PitchDeg, p.cfg.PitchLimitDeg)

	if p.cfg.BenchMode {
		p.output.Thrust = 0
	}

	p.output.Timestamp = now
	return p.output
}

// ForceNeutral bypasses every filter stage, resetting the pipeline's
// internal state to neutral and returning the neutral setpoint directly.
// Used on Control node shutdown, where an immediate guaranteed-safe
// command is needed rather than a slewed approach to one.
func (p *SafetyPipeline) ForceNeutral(now time.Time) busproto.Setpoint {
	neutral := busproto.NeutralSetpoint(now)
	p.smoothed = neutral
	p.output = neutral
	p.lastTick = now
	p.initialized = true
	return neutral
}

func (p *SafetyPipeline) tickDelta(now time.Time) time.Duration {
	if !p.initialized {
		p.initialized = true
		p.lastTick = now
		return 0
	}
	dt := now.Sub(p.lastTick)
	p.lastTick = now
	return dt
}

func ema(prev, target, alpha float64) float64 {
	return alpha*target + (1-alpha)*prev
}

func slew(prev, target, ratePerSec float64, dt time.Duration) float64 {
	if dt <= 0 {
		return target
	}
	maxStep := ratePerSec * dt.Seconds()
	delta := target - prev
	if delta > maxStep {
		delta = maxStep
	} else if delta < -maxStep {
		delta = -maxStep
	}
	return prev + delta
}
