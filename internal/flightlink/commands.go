package flightlink

import (
	"github.com/bluenviron/gomavlib/v3/pkg/dialects/common"

	"github.com/flightpath-dev/visionlock/internal/busproto"
)

// Custom command ids for tracking, in the MAV_CMD user-defined range
// (31000-31999).
const (
	cmdStartTracking    = 31100
	cmdStopTracking     = 31101
	cmdSelectTargetID   = 31102
	cmdSelectTargetPx   = 31103
	cmdSetDepthRange    = 31104
	cmdClearLock        = 31105
	cmdRequestTrackList = 31106
)

// ParseUserCommand decodes a COMMAND_LONG message into a UserCommand, if
// its command id falls in the custom tracking-command range this link
// understands. ok is false for any other command (silently ignored by
// the caller, per spec §4.4's "unrecognized commands are dropped").
func ParseUserCommand(msg *common.MessageCommandLong) (busproto.UserCommand, bool) {
	switch uint32(msg.Command) {
	case cmdStartTracking:
		return busproto.UserCommand{Kind: busproto.CmdStartTracking}, true

	case cmdStopTracking:
		return busproto.UserCommand{Kind: busproto.CmdStopTracking}, true

	case cmdSelectTargetID:
		return busproto.UserCommand{
			Kind:    busproto.CmdSelectTargetByID,
			TrackID: uint64(msg.Param1),
		}, true

	case cmdSelectTargetPx:
		return busproto.UserCommand{
			Kind:   busproto.CmdSelectTargetByPx,
			PixelU: float64(msg.Param1),
			PixelV: float64(msg.Param2),
		}, true

	case cmdSetDepthRange:
		return busproto.UserCommand{
			Kind:     busproto.CmdSetDepthRange,
			DepthMin: float64(msg.Param1),
			DepthMax: float64(msg.Param2),
		}, true

	case cmdClearLock:
		return busproto.UserCommand{Kind: busproto.CmdClearLock}, true

	case cmdRequestTrackList:
		return busproto.UserCommand{Kind: busproto.CmdRequestTrackList}, true

	default:
		return busproto.UserCommand{}, false
	}
}
