package busproto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	sp := Setpoint{RollDeg: 5.5, PitchDeg: -2.1, Thrust: 0.4, Timestamp: time.Unix(1700000000, 0).UTC()}

	data, err := Encode(KindSetpoint, sp)
	require.NoError(t, err)

	var out Setpoint
	kind, err := Decode(data, &out)
	require.NoError(t, err)
	assert.Equal(t, KindSetpoint, kind)
	assert.Equal(t, sp, out)
}

func TestDecodeMalformedEnvelope(t *testing.T) {
	var out Setpoint
	_, err := Decode([]byte("not json"), &out)
	assert.Error(t, err)
}

func TestTrackListByID(t *testing.T) {
	tl := TrackList{Tracks: []Track{{TrackID: 1}, {TrackID: 2}}}

	tr, ok := tl.ByID(2)
	assert.True(t, ok)
	assert.Equal(t, uint64(2), tr.TrackID)

	_, ok = tl.ByID(99)
	assert.False(t, ok)
}

func TestLockStateIsValid(t *testing.T) {
	id := uint64(3)
	assert.True(t, LockState{Status: LockLocked, LockedTrackID: &id}.IsValid())
	assert.False(t, LockState{Status: LockLocked, LockedTrackID: nil}.IsValid())
	assert.False(t, LockState{Status: LockLost, LockedTrackID: &id}.IsValid())
}

func TestSetpointIsNeutral(t *testing.T) {
	assert.True(t, NeutralSetpoint(time.Now()).IsNeutral())
	assert.False(t, Setpoint{RollDeg: 0.1}.IsNeutral())
}

func TestErrorsAllValid(t *testing.T) {
	assert.True(t, Errors{TrackValid: true, DepthValid: true, LockValid: true}.AllValid())
	assert.False(t, Errors{TrackValid: true, DepthValid: false, LockValid: true}.AllValid())
}
