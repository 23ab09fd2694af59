// Package server adapts the teacher's Connect-RPC ground-control server
// into a small read-only diagnostics HTTP surface: a JSON snapshot of
// lock state, errors, setpoint, telemetry, and failsafe state for a
// ground-station UI to poll, keeping the teacher's h2c listener and
// middleware chain but dropping the Connect/protobuf service layer (see
// DESIGN.md).
package server

import (
	"sync"
	"time"

	"github.com/flightpath-dev/visionlock/internal/bus"
	"github.com/flightpath-dev/visionlock/internal/busproto"
)

// Snapshot is the diagnostics surface's single read model.
type Snapshot struct {
	LockState     busproto.LockState `json:"lock_state"`
	Errors        busproto.Errors    `json:"errors"`
	Setpoint      busproto.Setpoint  `json:"setpoint"`
	Telemetry     busproto.Telemetry `json:"telemetry"`
	FailsafeState string             `json:"failsafe_state"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

// SnapshotStore holds the latest Snapshot, kept fresh by subscribing to
// the bus. It is safe for concurrent reads from HTTP handlers.
type SnapshotStore struct {
	mu       sync.RWMutex
	current  Snapshot
	fsGetter func() string
}

// NewSnapshotStore creates an empty store. fsGetter, if non-nil, is
// polled for the current failsafe state label on every Get — this lets
// whichever node runs the diagnostics surface report its own embedded
// failsafe.Manager's state without the store owning one itself.
func NewSnapshotStore(fsGetter func() string) *SnapshotStore {
	return &SnapshotStore{fsGetter: fsGetter}
}

// Get returns the current snapshot.
func (s *SnapshotStore) Get() Snapshot {
	s.mu.RLock()
	snap := s.current
	s.mu.RUnlock()

	if s.fsGetter != nil {
		snap.FailsafeState = s.fsGetter()
	}
	return snap
}

// Watch subscribes to the bus topics that feed the snapshot and updates
// the store until stop is closed.
func (s *SnapshotStore) Watch(b *bus.Bus, stop <-chan struct{}) error {
	lockSub, err := b.Subscribe(busproto.TopicLockState)
	if err != nil {
		return err
	}
	errsSub, err := b.Subscribe(busproto.TopicErrors)
	if err != nil {
		return err
	}
	spSub, err := b.Subscribe(busproto.TopicSetpoints)
	if err != nil {
		return err
	}
	telSub, err := b.Subscribe(busproto.TopicTelemetry)
	if err != nil {
		return err
	}

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return nil
		case <-ticker.C:
			s.mu.Lock()
			if raw, ok := lockSub.DrainLatest(); ok {
				var v busproto.LockState
				if _, err := busproto.Decode(raw, &v); err == nil {
					s.current.LockState = v
				}
			}
			if raw, ok := errsSub.DrainLatest(); ok {
				var v busproto.Errors
				if _, err := busproto.Decode(raw, &v); err == nil {
					s.current.Errors = v
				}
			}
			if raw, ok := spSub.DrainLatest(); ok {
				var v busproto.Setpoint
				if _, err := busproto.Decode(raw, &v); err == nil {
					s.current.Setpoint = v
				}
			}
			if raw, ok := telSub.DrainLatest(); ok {
				var v busproto.Telemetry
				if _, err := busproto.Decode(raw, &v); err == nil {
					s.current.Telemetry = v
				}
			}
			s.current.UpdatedAt = time.Now()
			s.mu.Unlock()
		}
	}
}
