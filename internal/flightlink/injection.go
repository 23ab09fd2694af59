package flightlink

import (
	"time"

	"github.com/bluenviron/gomavlib/v3/pkg/dialects/common"

	"github.com/flightpath-dev/visionlock/internal/busproto"
)

// Injector emits the custom telemetry values QGroundControl surfaces as
// named instruments, piggybacking on NAMED_VALUE_FLOAT/INT rather than a
// dedicated dialect extension, per spec §4.4.
type Injector struct {
	systemID uint8

	lastBatteryAt  time.Time
	lastCountAt    time.Time
	lastLockStatus busproto.LockStatus
	lastLockID     uint64
	haveLockID     bool
}

// NewInjector creates an Injector addressed to the given autopilot
// system id.
func NewInjector(systemID uint8) *Injector {
	return &Injector{systemID: systemID}
}

func (inj *Injector) namedFloat(now time.Time, name string, value float32) *common.MessageNamedValueFloat {
	var n [10]byte
	copy(n[:], name)
	return &common.MessageNamedValueFloat{
		TimeBootMs: bootMillis(now),
		Name:       n,
		Value:      value,
	}
}

func (inj *Injector) namedInt(now time.Time, name string, value int32) *common.MessageNamedValueInt {
	var n [10]byte
	copy(n[:], name)
	return &common.MessageNamedValueInt{
		TimeBootMs: bootMillis(now),
		Name:       n,
		Value:      value,
	}
}

// BatteryValues returns BAT1_ACTIVE/BAT2_ACTIVE/ACTIVE_BAT messages when
// at least 500ms (2Hz) has elapsed since the last emission, per spec's
// 2Hz battery-bridge injection rate.
func (inj *Injector) BatteryValues(state busproto.BatteryState, now time.Time) []*common.MessageNamedValueInt {
	if !inj.lastBatteryAt.IsZero() && now.Sub(inj.lastBatteryAt) < 500*time.Millisecond {
		return nil
	}
	inj.lastBatteryAt = now

	active := int32(0)
	if state.Bat1Active {
		active = 1
	}
	if state.Bat2Active {
		active |= 2
	}

	return []*common.MessageNamedValueInt{
		inj.namedInt(now, "BAT1_ACTIVE", boolToInt32(state.Bat1Active)),
		inj.namedInt(now, "BAT2_ACTIVE", boolToInt32(state.Bat2Active)),
		inj.namedInt(now, "ACTIVE_BAT", active),
	}
}

func boolToInt32(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

// TrackCount returns a TRK_COUNT message when at least 200ms (5Hz) has
// elapsed since the last emission.
func (inj *Injector) TrackCount(count int, now time.Time) *common.MessageNamedValueInt {
	if !inj.lastCountAt.IsZero() && now.Sub(inj.lastCountAt) < 200*time.Millisecond {
		return nil
	}
	inj.lastCountAt = now
	return inj.namedInt(now, "TRK_COUNT", int32(count))
}

// LockChange returns TRK_LOCKED and, if a track is locked, TRK_LOCK_ID
// messages only when the lock state actually changed since the last
// call — this injection is change-driven, not rate-driven, per spec.
func (inj *Injector) LockChange(state busproto.LockState, now time.Time) (*common.MessageNamedValueInt, *common.MessageNamedValueInt) {
	var lockedMsg, idMsg *common.MessageNamedValueInt

	if state.Status != inj.lastLockStatus {
		inj.lastLockStatus = state.Status
		lockedMsg = inj.namedInt(now, "TRK_LOCKED", boolToInt32(state.Status == busproto.LockLocked))
	}

	if state.LockedTrackID != nil {
		if !inj.haveLockID || *state.LockedTrackID != inj.lastLockID {
			inj.lastLockID = *state.LockedTrackID
			inj.haveLockID = true
			idMsg = inj.namedInt(now, "TRK_LOCK_ID", int32(inj.lastLockID))
		}
	} else {
		inj.haveLockID = false
	}

	return lockedMsg, idMsg
}

// ErrorValues returns TRK_YAW_ERR/TRK_PIT_ERR messages, emitted every
// Control-rate tick (no independent rate limit of its own).
func (inj *Injector) ErrorValues(e busproto.Errors, now time.Time) (*common.MessageNamedValueFloat, *common.MessageNamedValueFloat) {
	return inj.namedFloat(now, "TRK_YAW_ERR", float32(e.YawErrorRad)),
		inj.namedFloat(now, "TRK_PIT_ERR", float32(e.PitchErrorRad))
}
