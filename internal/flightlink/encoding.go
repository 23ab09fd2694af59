package flightlink

import (
	"time"

	"github.com/bluenviron/gomavlib/v3/pkg/dialects/common"

	"github.com/flightpath-dev/visionlock/internal/busproto"
	"github.com/flightpath-dev/visionlock/internal/geometry"
)

// bootTime anchors time_boot_ms for the life of the process, matching
// the convention used by the autopilot side of the link.
var bootTime = time.Now()

func bootMillis(now time.Time) uint32 {
	return uint32(now.Sub(bootTime).Milliseconds())
}

// EncodeAttitudeTarget converts a Setpoint (degrees, 0..1 thrust) into a
// SET_ATTITUDE_TARGET message: roll/pitch/yaw in degrees are converted to
// radians, packed into a ZYX Euler triple, turned into a Hamilton-
// convention quaternion, and normalized. Body rates are left zero and
// ignored via the type mask; only attitude and thrust are commanded.
func EncodeAttitudeTarget(sp busproto.Setpoint, systemID uint8, now time.Time) *common.MessageSetAttitudeTarget {
	roll := sp.RollDeg * geometry.DegToRad
	pitch := sp.PitchDeg * geometry.DegToRad
	yaw := sp.YawDeg * geometry.DegToRad

	q := geometry.EulerToQuaternion(roll, pitch, yaw)

	return &common.MessageSetAttitudeTarget{
		TargetSystem:    systemID,
		TargetComponent: 1,
		TimeBootMs:      bootMillis(now),
		TypeMask: attitudeTypeMaskIgnoreRollRate |
			attitudeTypeMaskIgnorePitchRate |
			attitudeTypeMaskIgnoreYawRate,
		Q:             [4]float32{float32(q.W), float32(q.X), float32(q.Y), float32(q.Z)},
		BodyRollRate:  0,
		BodyPitchRate: 0,
		BodyYawRate:   0,
		Thrust:        float32(sp.Thrust),
	}
}
