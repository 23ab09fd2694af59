// Package busproto defines the wire-level message catalog carried over the
// message bus: the closed set of topics, the self-describing envelope
// format, and the payload types each topic carries.
package busproto

import (
	"time"

	"github.com/flightpath-dev/visionlock/internal/geometry"
)

// Topic identifies one of the closed set of bus topics.
type Topic string

// The closed set of topics the core communicates over, per spec §4.1.
const (
	TopicTracks       Topic = "tracks"
	TopicLockState    Topic = "lock_state"
	TopicErrors       Topic = "errors"
	TopicSetpoints    Topic = "setpoints"
	TopicBatteryState Topic = "battery_state"
	TopicQGCCommands  Topic = "qgc_cmds"
	TopicTelemetry    Topic = "telemetry"
	TopicFrames       Topic = "frames"
)

// Track is a single detected/tracked object in one frame.
type Track struct {
	TrackID    uint64               `json:"track_id"`
	BBox       geometry.BoundingBox `json:"bbox"`
	ClassID    int32                `json:"class_id"`
	Label      string               `json:"label"`
	Confidence float64              `json:"confidence"`
	Timestamp  time.Time            `json:"timestamp"`
	Velocity   *Velocity2D          `json:"velocity,omitempty"`
}

// Velocity2D is an optional per-track pixel-space velocity estimate.
type Velocity2D struct {
	VX, VY float64
}

// TrackList is a full set of detections for one frame. Track order carries
// no semantic meaning.
type TrackList struct {
	FrameID   uint64    `json:"frame_id"`
	Timestamp time.Time `json:"timestamp"`
	Tracks    []Track   `json:"tracks"`
}

// ByID returns the track with the given id and whether it was found.
func (l TrackList) ByID(id uint64) (Track, bool) {
	for _, t := range l.Tracks {
		if t.TrackID == id {
			return t, true
		}
	}
	return Track{}, false
}

// LockStatus is the tagged state of the lock manager's state machine.
type LockStatus int

const (
	LockUnlocked LockStatus = iota
	LockLocking
	LockLocked
	LockLost
)

func (s LockStatus) String() string {
	switch s {
	case LockUnlocked:
		return "unlocked"
	case LockLocking:
		return "locking"
	case LockLocked:
		return "locked"
	case LockLost:
		return "lost"
	default:
		return "unknown"
	}
}

// LockState is the published snapshot of the lock manager.
type LockState struct {
	Status          LockStatus `json:"status"`
	LockedTrackID   *uint64    `json:"locked_track_id,omitempty"`
	LockTimestamp   *time.Time `json:"lock_timestamp,omitempty"`
	FramesSinceLock uint64     `json:"frames_since_lock"`
}

// IsValid reports whether the lock state names a currently locked track.
func (s LockState) IsValid() bool {
	return s.Status == LockLocked && s.LockedTrackID != nil
}

// Errors is the angular/range error between the locked target and the
// camera optical axis.
type Errors struct {
	YawErrorRad   float64   `json:"yaw_error_rad"`
	PitchErrorRad float64   `json:"pitch_error_rad"`
	RangeErrorM   float64   `json:"range_error_m"`
	TrackValid    bool      `json:"track_valid"`
	DepthValid    bool      `json:"depth_valid"`
	LockValid     bool      `json:"lock_valid"`
	Timestamp     time.Time `json:"timestamp"`
}

// AllValid reports whether every validity flag is set.
func (e Errors) AllValid() bool {
	return e.TrackValid && e.DepthValid && e.LockValid
}

// ZeroErrors returns the all-invalid, zero-valued Errors for a given
// timestamp, used whenever there is no lock or no track.
func ZeroErrors(ts time.Time) Errors {
	return Errors{Timestamp: ts}
}

// Setpoint is an attitude + thrust command for the flight controller.
type Setpoint struct {
	RollDeg   float64   `json:"roll_deg"`
	PitchDeg  float64   `json:"pitch_deg"`
	YawDeg    float64   `json:"yaw_deg"`
	Thrust    float64   `json:"thrust"`
	Timestamp time.Time `json:"timestamp"`
}

// NeutralSetpoint is the all-zero neutral command.
func NeutralSetpoint(ts time.Time) Setpoint {
	return Setpoint{Timestamp: ts}
}

// IsNeutral reports whether the setpoint is exactly neutral.
func (s Setpoint) IsNeutral() bool {
	return s.RollDeg == 0 && s.PitchDeg == 0 && s.YawDeg == 0 && s.Thrust == 0
}

// BatteryState mirrors the GPIO-bridge battery-status input.
type BatteryState struct {
	Bat1Active bool `json:"bat1_active"`
	Bat2Active bool `json:"bat2_active"`
}

// GPSFix mirrors MAVLink's GPS_FIX_TYPE enumeration, narrowed to what
// Telemetry needs.
type GPSFix int

const (
	GPSFixNoGPS GPSFix = iota
	GPSFixNoFix
	GPSFix2D
	GPSFix3D
	GPSFixDGPS
	GPSFixRTKFloat
	GPSFixRTKFixed
)

// Telemetry is the flight-controller status snapshot Flight-Link maintains.
type Telemetry struct {
	Armed            bool      `json:"armed"`
	Mode             string    `json:"mode"`
	BatteryVoltage   float64   `json:"battery_voltage"`
	BatteryRemaining int32     `json:"battery_remaining"`
	GPSFix           GPSFix    `json:"gps_fix"`
	Timestamp        time.Time `json:"timestamp"`
}

// CommandKind tags the variant of an incoming UserCommand.
type CommandKind string

const (
	CmdStartTracking      CommandKind = "start_tracking"
	CmdStopTracking       CommandKind = "stop_tracking"
	CmdSelectTargetByID   CommandKind = "select_target_by_id"
	CmdSelectTargetByPx   CommandKind = "select_target_by_pixel"
	CmdSetDepthRange      CommandKind = "set_depth_range"
	CmdClearLock          CommandKind = "clear_lock"
	CmdRequestTrackList   CommandKind = "request_track_list"
)

// UserCommand is a tagged variant over the operator command set. Only the
// field(s) relevant to Kind are populated.
type UserCommand struct {
	Kind CommandKind `json:"kind"`

	TrackID uint64 `json:"track_id,omitempty"`

	PixelU float64 `json:"pixel_u,omitempty"`
	PixelV float64 `json:"pixel_v,omitempty"`

	DepthMin float64 `json:"depth_min,omitempty"`
	DepthMax float64 `json:"depth_max,omitempty"`
}
