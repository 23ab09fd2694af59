// Package targeting implements lock management and error computation: the
// Targeting node's two responsibilities, per spec §4.2.
package targeting

import (
	"math"
	"time"

	"github.com/flightpath-dev/visionlock/internal/busproto"
)

// LockManagerConfig holds the lock-manager timeouts and selection
// tolerance, per spec §4.2.1.
type LockManagerConfig struct {
	LockTimeoutMs      time.Duration
	ReacquireTimeoutMs time.Duration
	MaxPixelDistance   float64
}

// DefaultLockManagerConfig returns the spec's stated defaults.
func DefaultLockManagerConfig() LockManagerConfig {
	return LockManagerConfig{
		LockTimeoutMs:      500 * time.Millisecond,
		ReacquireTimeoutMs: 2000 * time.Millisecond,
		MaxPixelDistance:   100,
	}
}

// LockManager owns the at-most-one lock record and its state machine:
// Unlocked -> Locking -> Locked -> Lost -> Unlocked.
type LockManager struct {
	cfg LockManagerConfig

	status          busproto.LockStatus
	lockedTrackID   *uint64
	lockTimestamp   *time.Time
	lastSeen        time.Time
	lockBBox        *busproto.Track
	framesSinceLock uint64
}

// NewLockManager creates a LockManager in the Unlocked state.
func NewLockManager(cfg LockManagerConfig) *LockManager {
	return &LockManager{cfg: cfg, status: busproto.LockUnlocked}
}

// State returns the published snapshot of the lock manager.
func (m *LockManager) State() busproto.LockState {
	return busproto.LockState{
		Status:          m.status,
		LockedTrackID:   m.lockedTrackID,
		LockTimestamp:   m.lockTimestamp,
		FramesSinceLock: m.framesSinceLock,
	}
}

// LockedTrack returns the most recently observed bbox for the locked
// track, if any lock is currently held.
func (m *LockManager) LockedTrack() (busproto.Track, bool) {
	if m.lockBBox == nil {
		return busproto.Track{}, false
	}
	return *m.lockBBox, true
}

// SelectByID attempts to lock onto id, scanning the given track list.
// Returns false (remaining Unlocked) if id is not present.
func (m *LockManager) SelectByID(tracks busproto.TrackList, id uint64, now time.Time) bool {
	t, ok := tracks.ByID(id)
	if !ok {
		return false
	}
	m.lock(t, id, now)
	return true
}

// SelectByPixel picks the track whose bbox contains (u,v); failing that,
// the track with the smallest center distance to (u,v), provided that
// distance is within MaxPixelDistance. Ties break on the lowest track id.
// Returns false (remaining Unlocked) if no candidate qualifies.
func (m *LockManager) SelectByPixel(tracks busproto.TrackList, u, v float64, now time.Time) bool {
	for _, t := range tracks.Tracks {
		if t.BBox.Contains(u, v) {
			m.lock(t, t.TrackID, now)
			return true
		}
	}

	var best *busproto.Track
	bestDist := math.Inf(1)
	for i := range tracks.Tracks {
		t := &tracks.Tracks[i]
		d := t.BBox.DistanceToCenter(u, v)
		if d > m.cfg.MaxPixelDistance {
			continue
		}
		if d < bestDist || (d == bestDist && (best == nil || t.TrackID < best.TrackID)) {
			best = t
			bestDist = d
		}
	}
	if best == nil {
		return false
	}
	m.lock(*best, best.TrackID, now)
	return true
}

func (m *LockManager) lock(t busproto.Track, id uint64, now time.Time) {
	idCopy := id
	m.status = busproto.LockLocked
	m.lockedTrackID = &idCopy
	m.lockTimestamp = &now
	m.lastSeen = now
	b := t
	m.lockBBox = &b
	m.framesSinceLock = 0
}

// ClearLock unconditionally resets the manager to Unlocked.
func (m *LockManager) ClearLock() {
	m.status = busproto.LockUnlocked
	m.lockedTrackID = nil
	m.lockTimestamp = nil
	m.lockBBox = nil
	m.framesSinceLock = 0
}

// Update advances the lock manager for the current frame's track list.
// Must be called once per tick while tracking is enabled, per spec §4.2.1.
func (m *LockManager) Update(tracks busproto.TrackList, now time.Time) {
	if m.status == busproto.LockUnlocked || m.lockedTrackID == nil {
		return
	}

	if t, ok := tracks.ByID(*m.lockedTrackID); ok {
		m.lastSeen = now
		b := t
		m.lockBBox = &b
		m.framesSinceLock++
		m.status = busproto.LockLocked
		return
	}

	elapsed := now.Sub(m.lastSeen)
	switch {
	case elapsed < m.cfg.LockTimeoutMs:
		m.status = busproto.LockLocking
	case elapsed < m.cfg.ReacquireTimeoutMs:
		m.status = busproto.LockLost
	default:
		m.ClearLock()
	}
}
