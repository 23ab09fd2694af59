package flightlink

import (
	"time"

	"github.com/flightpath-dev/visionlock/internal/config"
)

// Config is the Flight-Link node's full configuration: the MAVLink
// endpoint, streaming rates, mode-change timeout, and the bus URL.
type Config struct {
	BusURL string

	// UDPAddress is a host:port the autopilot's MAVLink UDP endpoint
	// listens on (or broadcasts to); per spec §6, Flight-Link uses UDP
	// endpoints rather than the teacher's serial endpoint.
	UDPAddress string

	SetpointRateHz  float64
	HeartbeatRateHz float64

	ModeTimeoutS time.Duration

	// NeutralHandoffMs is how long the session keeps streaming a
	// neutral attitude target after a stop request before tearing the
	// offboard session down, giving the autopilot's offboard watchdog a
	// clean final frame instead of an abrupt stream cutoff.
	NeutralHandoffMs time.Duration

	HeartbeatTimeoutMs time.Duration
}

// DefaultConfig returns the node's built-in defaults.
func DefaultConfig() Config {
	return Config{
		BusURL:             "nats://127.0.0.1:4222",
		UDPAddress:         "127.0.0.1:14550",
		SetpointRateHz:     30,
		HeartbeatRateHz:    1,
		ModeTimeoutS:       5 * time.Second,
		NeutralHandoffMs:   300 * time.Millisecond,
		HeartbeatTimeoutMs: 3000 * time.Millisecond,
	}
}

// LoadConfig builds a Config from built-in defaults, an optional YAML
// overlay, then VISIONLOCK_FLIGHTLINK_* environment overrides.
func LoadConfig(overlayPath string) (Config, error) {
	cfg := DefaultConfig()

	if err := config.LoadYAMLOverlay(overlayPath, &cfg); err != nil {
		return Config{}, err
	}

	config.StringVar(&cfg.BusURL, "VISIONLOCK_BUS_URL")
	config.StringVar(&cfg.UDPAddress, "VISIONLOCK_FLIGHTLINK_UDP_ADDR")
	config.FloatVar(&cfg.SetpointRateHz, "VISIONLOCK_FLIGHTLINK_SETPOINT_RATE_HZ")
	config.FloatVar(&cfg.HeartbeatRateHz, "VISIONLOCK_FLIGHTLINK_HEARTBEAT_RATE_HZ")
	config.DurationMsVar(&cfg.HeartbeatTimeoutMs, "VISIONLOCK_FLIGHTLINK_HEARTBEAT_TIMEOUT_MS")
	config.DurationMsVar(&cfg.NeutralHandoffMs, "VISIONLOCK_FLIGHTLINK_NEUTRAL_HANDOFF_MS")

	return cfg, nil
}

// SetpointInterval is the offboard streaming period derived from
// SetpointRateHz.
func (c Config) SetpointInterval() time.Duration {
	return time.Duration(float64(time.Second) / c.SetpointRateHz)
}

// HeartbeatInterval is the ground-station heartbeat period.
func (c Config) HeartbeatInterval() time.Duration {
	return time.Duration(float64(time.Second) / c.HeartbeatRateHz)
}
