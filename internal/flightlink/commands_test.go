package flightlink

import (
	"testing"

	"github.com/bluenviron/gomavlib/v3/pkg/dialects/common"
	"github.com/flightpath-dev/visionlock/internal/busproto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUserCommandStartTracking(t *testing.T) {
	cmd, ok := ParseUserCommand(&common.MessageCommandLong{Command: cmdStartTracking})
	require.True(t, ok)
	assert.Equal(t, busproto.CmdStartTracking, cmd.Kind)
}

func TestParseUserCommandStopTracking(t *testing.T) {
	cmd, ok := ParseUserCommand(&common.MessageCommandLong{Command: cmdStopTracking})
	require.True(t, ok)
	assert.Equal(t, busproto.CmdStopTracking, cmd.Kind)
}

func TestParseUserCommandSelectTargetByID(t *testing.T) {
	cmd, ok := ParseUserCommand(&common.MessageCommandLong{Command: cmdSelectTargetID, Param1: 42})
	require.True(t, ok)
	assert.Equal(t, busproto.CmdSelectTargetByID, cmd.Kind)
	assert.Equal(t, uint64(42), cmd.TrackID)
}

func TestParseUserCommandSelectTargetByPixel(t *testing.T) {
	cmd, ok := ParseUserCommand(&common.MessageCommandLong{Command: cmdSelectTargetPx, Param1: 640, Param2: 360})
	require.True(t, ok)
	assert.Equal(t, busproto.CmdSelectTargetByPx, cmd.Kind)
	assert.Equal(t, 640.0, cmd.PixelU)
	assert.Equal(t, 360.0, cmd.PixelV)
}

func TestParseUserCommandSetDepthRange(t *testing.T) {
	cmd, ok := ParseUserCommand(&common.MessageCommandLong{Command: cmdSetDepthRange, Param1: 2, Param2: 40})
	require.True(t, ok)
	assert.Equal(t, busproto.CmdSetDepthRange, cmd.Kind)
	assert.Equal(t, 2.0, cmd.DepthMin)
	assert.Equal(t, 40.0, cmd.DepthMax)
}

func TestParseUserCommandClearLock(t *testing.T) {
	cmd, ok := ParseUserCommand(&common.MessageCommandLong{Command: cmdClearLock})
	require.True(t, ok)
	assert.Equal(t, busproto.CmdClearLock, cmd.Kind)
}

func TestParseUserCommandRequestTrackList(t *testing.T) {
	cmd, ok := ParseUserCommand(&common.MessageCommandLong{Command: cmdRequestTrackList})
	require.True(t, ok)
	assert.Equal(t, busproto.CmdRequestTrackList, cmd.Kind)
}

func TestParseUserCommandUnrecognizedIsIgnored(t *testing.T) {
	_, ok := ParseUserCommand(&common.MessageCommandLong{Command: 1})
	assert.False(t, ok)
}
