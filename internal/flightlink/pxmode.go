// Package flightlink implements the offboard MAVLink session: attitude
// setpoint streaming, ground-station command ingest, and telemetry
// ingest/injection, per spec §4.4. It is the direct descendant of the
// teacher's internal/mavlink client, generalized from a mission/ground-
// control client into a tight offboard streaming session.
package flightlink

// PX4 main flight modes, encoded in MAVLink's custom_mode field.
const (
	PX4MainModeManual     = 1
	PX4MainModeAltctl     = 2
	PX4MainModePosctl     = 3
	PX4MainModeAuto       = 4
	PX4MainModeAcro       = 5
	PX4MainModeOffboard   = 6
	PX4MainModeStabilized = 7
	PX4MainModeRattitude  = 8
)

// attitudeTargetTypeMask bits, per MAVLink's SET_ATTITUDE_TARGET message.
const (
	attitudeTypeMaskIgnoreRollRate  = 0b00000001
	attitudeTypeMaskIgnorePitchRate = 0b00000010
	attitudeTypeMaskIgnoreYawRate   = 0b00000100
	attitudeTypeMaskIgnoreThrust    = 0b01000000
	attitudeTypeMaskAttitudeFormat  = 0b10000000 // bit 7 clear selects quaternion attitude
)
