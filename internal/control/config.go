package control

import (
	"time"

	"github.com/flightpath-dev/visionlock/internal/config"
	"github.com/flightpath-dev/visionlock/internal/failsafe"
)

// Config is the Control node's full configuration: gain map, safety
// pipeline, the failsafe thresholds it embeds, and the node's own run
// rate and bus URL.
type Config struct {
	BusURL string
	RateHz float64

	GainMap  GainMap
	Safety   SafetyConfig
	Failsafe failsafe.Config

	// ErrorsStaleAfterMs is how long an Errors reading may go
	// unrefreshed before the validity gate treats it as stale and feeds
	// neutral into the safety pipeline, independent of the failsafe
	// manager's own (coarser) track-timeout bookkeeping.
	ErrorsStaleAfterMs time.Duration
}

// DefaultConfig returns the node's built-in defaults.
func DefaultConfig() Config {
	return Config{
		BusURL:             "nats://127.0.0.1:4222",
		RateHz:             30,
		GainMap:            DefaultGainMap(),
		Safety:             DefaultSafetyConfig(),
		Failsafe:           failsafe.DefaultConfig(),
		ErrorsStaleAfterMs: 200 * time.Millisecond,
	}
}

// LoadConfig builds a Config from built-in defaults, an optional YAML
// overlay, then VISIONLOCK_CONTROL_* environment overrides.
func LoadConfig(overlayPath string) (Config, error) {
	cfg := DefaultConfig()

	if err := config.LoadYAMLOverlay(overlayPath, &cfg); err != nil {
		return Config{}, err
	}

	config.StringVar(&cfg.BusURL, "VISIONLOCK_BUS_URL")
	config.FloatVar(&cfg.RateHz, "VISIONLOCK_CONTROL_RATE_HZ")
	config.FloatVar(&cfg.GainMap.YawToRollDegPerRad, "VISIONLOCK_CONTROL_YAW_TO_ROLL")
	config.FloatVar(&cfg.GainMap.PitchToPitchDegPerRad, "VISIONLOCK_CONTROL_PITCH_TO_PITCH")
	config.FloatVar(&cfg.GainMap.RangeToThrustPerM, "VISIONLOCK_CONTROL_RANGE_TO_THRUST")
	config.BoolVar(&cfg.GainMap.ThrustEnabled, "VISIONLOCK_CONTROL_THRUST_ENABLED")
	config.BoolVar(&cfg.Safety.BenchMode, "VISIONLOCK_CONTROL_BENCH_MODE")
	config.FloatVar(&cfg.Safety.SmoothingAlpha, "VISIONLOCK_CONTROL_SMOOTHING_ALPHA")
	config.DurationMsVar(&cfg.ErrorsStaleAfterMs, "VISIONLOCK_CONTROL_ERRORS_STALE_AFTER_MS")
	config.DurationMsVar(&cfg.Failsafe.TrackLostWarningMs, "VISIONLOCK_CONTROL_TRACK_LOST_WARNING_MS")
	config.DurationMsVar(&cfg.Failsafe.TrackLostFailsafeMs, "VISIONLOCK_CONTROL_TRACK_LOST_FAILSAFE_MS")

	return cfg, nil
}

// TickInterval is the node's loop period derived from RateHz.
func (c Config) TickInterval() time.Duration {
	return time.Duration(float64(time.Second) / c.RateHz)
}
