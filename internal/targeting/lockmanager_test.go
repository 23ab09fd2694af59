package targeting

import (
	"testing"
	"time"

	"github.com/flightpath-dev/visionlock/internal/busproto"
	"github.com/flightpath-dev/visionlock/internal/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func track(id uint64, x1, y1, x2, y2 float64) busproto.Track {
	return busproto.Track{TrackID: id, BBox: geometry.BoundingBox{X1: x1, Y1: y1, X2: x2, Y2: y2}}
}

func TestLockManagerStartsUnlocked(t *testing.T) {
	m := NewLockManager(DefaultLockManagerConfig())
	assert.Equal(t, busproto.LockUnlocked, m.State().Status)
}

func TestSelectByIDLocksOnMatch(t *testing.T) {
	m := NewLockManager(DefaultLockManagerConfig())
	tl := busproto.TrackList{Tracks: []busproto.Track{track(1, 0, 0, 10, 10), track(2, 50, 50, 60, 60)}}

	ok := m.SelectByID(tl, 2, time.Now())
	require.True(t, ok)
	assert.Equal(t, busproto.LockLocked, m.State().Status)
	require.NotNil(t, m.State().LockedTrackID)
	assert.Equal(t, uint64(2), *m.State().LockedTrackID)
}

func TestSelectByIDFailsOnMissingTrack(t *testing.T) {
	m := NewLockManager(DefaultLockManagerConfig())
	tl := busproto.TrackList{Tracks: []busproto.Track{track(1, 0, 0, 10, 10)}}

	ok := m.SelectByID(tl, 99, time.Now())
	assert.False(t, ok)
	assert.Equal(t, busproto.LockUnlocked, m.State().Status)
}

func TestSelectByPixelPrefersContainment(t *testing.T) {
	m := NewLockManager(DefaultLockManagerConfig())
	tl := busproto.TrackList{Tracks: []busproto.Track{
		track(1, 0, 0, 10, 10),
		track(2, 100, 100, 200, 200),
	}}

	ok := m.SelectByPixel(tl, 150, 150, time.Now())
	require.True(t, ok)
	assert.Equal(t, uint64(2), *m.State().LockedTrackID)
}

func TestSelectByPixelFallsBackToNearestWithinTolerance(t *testing.T) {
	cfg := DefaultLockManagerConfig()
	cfg.MaxPixelDistance = 100
	m := NewLockManager(cfg)
	tl := busproto.TrackList{Tracks: []busproto.Track{
		track(1, 500, 500, 520, 520), // center (510,510), far away
		track(2, 40, 40, 60, 60),     // center (50,50), close
	}}

	ok := m.SelectByPixel(tl, 70, 50, time.Now())
	require.True(t, ok)
	assert.Equal(t, uint64(2), *m.State().LockedTrackID)
}

func TestSelectByPixelOutOfToleranceFails(t *testing.T) {
	cfg := DefaultLockManagerConfig()
	cfg.MaxPixelDistance = 10
	m := NewLockManager(cfg)
	tl := busproto.TrackList{Tracks: []busproto.Track{track(1, 500, 500, 520, 520)}}

	ok := m.SelectByPixel(tl, 0, 0, time.Now())
	assert.False(t, ok)
	assert.Equal(t, busproto.LockUnlocked, m.State().Status)
}

func TestSelectByPixelTiebreaksOnLowestTrackID(t *testing.T) {
	cfg := DefaultLockManagerConfig()
	cfg.MaxPixelDistance = 100
	m := NewLockManager(cfg)
	// Two tracks equidistant from (0,0): centers at (10,0) and (-10,0) both distance 10.
	tl := busproto.TrackList{Tracks: []busproto.Track{
		track(5, 5, -5, 15, 5),
		track(3, -15, -5, -5, 5),
	}}

	ok := m.SelectByPixel(tl, 0, 0, time.Now())
	require.True(t, ok)
	assert.Equal(t, uint64(3), *m.State().LockedTrackID)
}

func TestClearLockResetsToUnlocked(t *testing.T) {
	m := NewLockManager(DefaultLockManagerConfig())
	tl := busproto.TrackList{Tracks: []busproto.Track{track(1, 0, 0, 10, 10)}}
	m.SelectByID(tl, 1, time.Now())

	m.ClearLock()
	assert.Equal(t, busproto.LockUnlocked, m.State().Status)
	assert.Nil(t, m.State().LockedTrackID)
}

func TestUpdateStaysLockedWhileTrackPresent(t *testing.T) {
	cfg := DefaultLockManagerConfig()
	m := NewLockManager(cfg)
	t0 := time.Now()
	tl := busproto.TrackList{Tracks: []busproto.Track{track(1, 0, 0, 10, 10)}}
	m.SelectByID(tl, 1, t0)

	m.Update(tl, t0.Add(33*time.Millisecond))
	assert.Equal(t, busproto.LockLocked, m.State().Status)
	assert.Equal(t, uint64(1), m.State().FramesSinceLock)
}

func TestUpdateTransitionsLockingThenLostThenUnlocked(t *testing.T) {
	cfg := LockManagerConfig{LockTimeoutMs: 100 * time.Millisecond, ReacquireTimeoutMs: 300 * time.Millisecond, MaxPixelDistance: 100}
	m := NewLockManager(cfg)
	t0 := time.Now()
	tl := busproto.TrackList{Tracks: []busproto.Track{track(1, 0, 0, 10, 10)}}
	m.SelectByID(tl, 1, t0)

	empty := busproto.TrackList{}

	m.Update(empty, t0.Add(50*time.Millisecond))
	assert.Equal(t, busproto.LockLocking, m.State().Status)

	m.Update(empty, t0.Add(200*time.Millisecond))
	assert.Equal(t, busproto.LockLost, m.State().Status)

	m.Update(empty, t0.Add(400*time.Millisecond))
	assert.Equal(t, busproto.LockUnlocked, m.State().Status)
	assert.Nil(t, m.State().LockedTrackID)
}

func TestUpdateReacquiresFromLostIfTrackReappears(t *testing.T) {
	cfg := LockManagerConfig{LockTimeoutMs: 100 * time.Millisecond, ReacquireTimeoutMs: 300 * time.Millisecond, MaxPixelDistance: 100}
	m := NewLockManager(cfg)
	t0 := time.Now()
	tl := busproto.TrackList{Tracks: []busproto.Track{track(1, 0, 0, 10, 10)}}
	m.SelectByID(tl, 1, t0)

	m.Update(busproto.TrackList{}, t0.Add(200*time.Millisecond))
	assert.Equal(t, busproto.LockLost, m.State().Status)

	m.Update(tl, t0.Add(210*time.Millisecond))
	assert.Equal(t, busproto.LockLocked, m.State().Status)
}
