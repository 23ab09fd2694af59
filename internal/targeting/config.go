package targeting

import (
	"time"

	"github.com/flightpath-dev/visionlock/internal/config"
	"github.com/flightpath-dev/visionlock/internal/geometry"
)

// Config is the Targeting node's full configuration: lock manager
// timeouts, camera intrinsics, depth-frame dimensions, the node's own run
// rate, and the bus URL to dial.
type Config struct {
	BusURL string

	RateHz float64

	LockManager LockManagerConfig

	Intrinsics  geometry.CameraIntrinsics
	DepthWidth  int
	DepthHeight int

	// DesiredRangeM/MinRangeM/MaxRangeM seed the ErrorComputer's standoff
	// window; a SET_DEPTH_RANGE user command overrides Min/Max at runtime.
	DesiredRangeM float64
	MinRangeM     float64
	MaxRangeM     float64
}

// DefaultConfig returns the node's built-in defaults, matching the
// pinhole-camera example geometry used throughout spec §4.2 and §6.
func DefaultConfig() Config {
	return Config{
		BusURL:      "nats://127.0.0.1:4222",
		RateHz:      30,
		LockManager: DefaultLockManagerConfig(),
		Intrinsics: geometry.CameraIntrinsics{
			FX: 910, FY: 910, CX: 960, CY: 540,
			Width: 1920, Height: 1080,
		},
		DepthWidth:  640,
		DepthHeight: 480,

		DesiredRangeM: 10,
		MinRangeM:     3,
		MaxRangeM:     50,
	}
}

// LoadConfig builds a Config from built-in defaults, an optional YAML
// overlay, then VISIONLOCK_TARGETING_* environment overrides, in that
// order — mirroring the teacher's defaults-then-overrides config shape.
func LoadConfig(overlayPath string) (Config, error) {
	cfg := DefaultConfig()

	if err := config.LoadYAMLOverlay(overlayPath, &cfg); err != nil {
		return Config{}, err
	}

	config.StringVar(&cfg.BusURL, "VISIONLOCK_BUS_URL")
	config.FloatVar(&cfg.RateHz, "VISIONLOCK_TARGETING_RATE_HZ")
	config.DurationMsVar(&cfg.LockManager.LockTimeoutMs, "VISIONLOCK_TARGETING_LOCK_TIMEOUT_MS")
	config.DurationMsVar(&cfg.LockManager.ReacquireTimeoutMs, "VISIONLOCK_TARGETING_REACQUIRE_TIMEOUT_MS")
	config.FloatVar(&cfg.LockManager.MaxPixelDistance, "VISIONLOCK_TARGETING_MAX_PIXEL_DISTANCE")
	config.IntVar(&cfg.DepthWidth, "VISIONLOCK_TARGETING_DEPTH_WIDTH")
	config.IntVar(&cfg.DepthHeight, "VISIONLOCK_TARGETING_DEPTH_HEIGHT")
	config.FloatVar(&cfg.DesiredRangeM, "VISIONLOCK_TARGETING_DESIRED_RANGE_M")
	config.FloatVar(&cfg.MinRangeM, "VISIONLOCK_TARGETING_MIN_RANGE_M")
	config.FloatVar(&cfg.MaxRangeM, "VISIONLOCK_TARGETING_MAX_RANGE_M")

	return cfg, nil
}

// TickInterval is the node's loop period derived from RateHz.
func (c Config) TickInterval() time.Duration {
	return time.Duration(float64(time.Second) / c.RateHz)
}
