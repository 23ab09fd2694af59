package flightlink

import (
	"sync"
	"time"

	"github.com/bluenviron/gomavlib/v3/pkg/dialects/common"

	"github.com/flightpath-dev/visionlock/internal/busproto"
)

// pxModeNames maps a PX4 custom_mode's main-mode nibble to the name
// QGroundControl shows; decodePX4Mode reports unmapped values as
// "UNKNOWN".
var pxModeNames = map[uint32]string{
	PX4MainModeManual:     "MANUAL",
	PX4MainModeAltctl:     "ALTCTL",
	PX4MainModePosctl:     "POSCTL",
	PX4MainModeAuto:       "AUTO",
	PX4MainModeAcro:       "ACRO",
	PX4MainModeOffboard:   "OFFBOARD",
	PX4MainModeStabilized: "STABILIZED",
	PX4MainModeRattitude:  "RATTITUDE",
}

func decodePX4Mode(customMode uint32) string {
	mainMode := (customMode >> 16) & 0xFF
	if name, ok := pxModeNames[mainMode]; ok {
		return name
	}
	return "UNKNOWN"
}

func decodeGPSFix(fixType uint8) busproto.GPSFix {
	switch fixType {
	case 0:
		return busproto.GPSFixNoGPS
	case 1:
		return busproto.GPSFixNoFix
	case 2:
		return busproto.GPSFix2D
	case 3:
		return busproto.GPSFix3D
	case 4:
		return busproto.GPSFixDGPS
	case 5:
		return busproto.GPSFixRTKFloat
	case 6:
		return busproto.GPSFixRTKFixed
	default:
		return busproto.GPSFixNoGPS
	}
}

// TelemetryTracker accumulates the scattered MAVLink messages that feed
// the published Telemetry reading, mirroring the teacher's TelemetryData
// but narrowed to the fields this link actually republishes on the bus.
type TelemetryTracker struct {
	mu sync.RWMutex

	armed            bool
	customMode       uint32
	batteryVoltage   float64
	batteryRemaining int32
	gpsFix           busproto.GPSFix

	lastHeartbeat time.Time
	systemID      uint8

	heartbeatTimeout time.Duration
}

// NewTelemetryTracker creates a tracker with the given connection-loss
// threshold.
func NewTelemetryTracker(heartbeatTimeout time.Duration) *TelemetryTracker {
	return &TelemetryTracker{heartbeatTimeout: heartbeatTimeout}
}

// HandleHeartbeat updates armed/mode/liveness state from a HEARTBEAT.
func (t *TelemetryTracker) HandleHeartbeat(msg *common.MessageHeartbeat, systemID uint8, now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.armed = (uint8(msg.BaseMode) & uint8(common.MAV_MODE_FLAG_SAFETY_ARMED)) != 0
	t.customMode = msg.CustomMode
	t.lastHeartbeat = now
	t.systemID = systemID
}

// HandleSysStatus updates battery state from a SYS_STATUS.
func (t *TelemetryTracker) HandleSysStatus(msg *common.MessageSysStatus) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.batteryVoltage = float64(msg.VoltageBattery) / 1000.0
	t.batteryRemaining = int32(msg.BatteryRemaining)
}

// HandleGPSRaw updates GPS fix type from a GPS_RAW_INT.
func (t *TelemetryTracker) HandleGPSRaw(msg *common.MessageGpsRawInt) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.gpsFix = decodeGPSFix(uint8(msg.FixType))
}

// Snapshot renders the current state as a Telemetry message, timestamped
// now, for republishing on the telemetry topic.
func (t *TelemetryTracker) Snapshot(now time.Time) busproto.Telemetry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return busproto.Telemetry{
		Armed:            t.armed,
		Mode:             decodePX4Mode(t.customMode),
		BatteryVoltage:   t.batteryVoltage,
		BatteryRemaining: t.batteryRemaining,
		GPSFix:           t.gpsFix,
		Timestamp:        now,
	}
}

// IsConnected reports whether a heartbeat has been seen within the
// configured timeout.
func (t *TelemetryTracker) IsConnected(now time.Time) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return !t.lastHeartbeat.IsZero() && now.Sub(t.lastHeartbeat) < t.heartbeatTimeout
}

// SystemID returns the autopilot's MAVLink system id, once a heartbeat
// has been observed.
func (t *TelemetryTracker) SystemID() uint8 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.systemID
}
