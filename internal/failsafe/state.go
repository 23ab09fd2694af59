// Package failsafe implements the cross-cutting failsafe state machine.
// It is not a bus topic or a separate process: Control and Flight-Link
// each embed a Manager and feed it the freshness signals they already
// have, per spec §4.5 and the Open Question resolution in SPEC_FULL.md
// (a single source of truth instead of each consumer re-deriving its own
// timeout logic).
package failsafe

import "time"

// State is the tagged failsafe state.
type State int

const (
	Nominal State = iota
	Warning
	Failsafe
	Recovery
)

func (s State) String() string {
	switch s {
	case Nominal:
		return "nominal"
	case Warning:
		return "warning"
	case Failsafe:
		return "failsafe"
	case Recovery:
		return "recovery"
	default:
		return "unknown"
	}
}

// Action is the configured terminal behavior while in Failsafe/Recovery.
type Action int

const (
	ActionNeutral Action = iota
	ActionLoiter
	ActionRTL
)

// Config holds the timeouts that drive state transitions, per spec §5.
type Config struct {
	TrackLostWarningMs      time.Duration
	TrackLostFailsafeMs     time.Duration
	TelemetryLostWarningMs  time.Duration
	TelemetryLostFailsafeMs time.Duration
	RecoveryConfirmationMs  time.Duration
	Action                  Action
}

// DefaultConfig returns the bench-mode profile defaults: only Neutral is
// used as the terminal action.
func DefaultConfig() Config {
	return Config{
		TrackLostWarningMs:      1000 * time.Millisecond,
		TrackLostFailsafeMs:     3000 * time.Millisecond,
		TelemetryLostWarningMs:  1000 * time.Millisecond,
		TelemetryLostFailsafeMs: 3000 * time.Millisecond,
		RecoveryConfirmationMs:  500 * time.Millisecond,
		Action:                  ActionNeutral,
	}
}

// Manager tracks the failsafe state machine. It is driven by Update,
// called once per tick with the current validity inputs and the current
// monotonic time.
type Manager struct {
	cfg Config

	state State

	lastTrackOK time.Time
	lastTelemOK time.Time

	recoveryStart time.Time
	recovering    bool

	initialized bool
}

// NewManager creates a Manager in the Nominal state, seeded so that the
// first Update call (before any real observation has arrived) does not
// spuriously fire a failsafe transition.
func NewManager(cfg Config) *Manager {
	return &Manager{cfg: cfg, state: Nominal}
}

// Decision is the result of one Update call.
type Decision struct {
	State               State
	ShouldCommandNeutral bool
	Action               Action
}

// Update advances the state machine given the current freshness of the
// track and telemetry signals and the current monotonic time now. trackOK
// and telemetryOK should each be true only when their respective signal is
// both present and valid this tick (e.g. Errors.LockValid && Errors.TrackValid
// for trackOK; Telemetry freshness for telemetryOK).
func (m *Manager) Update(now time.Time, trackOK, telemetryOK bool) Decision {
	if !m.initialized {
		m.lastTrackOK = now
		m.lastTelemOK = now
		m.initialized = true
	}

	if trackOK {
		m.lastTrackOK = now
	}
	if telemetryOK {
		m.lastTelemOK = now
	}

	dt := now.Sub(m.lastTrackOK)
	dm := now.Sub(m.lastTelemOK)

	var desired State
	switch {
	case dt >= m.cfg.TrackLostFailsafeMs || dm >= m.cfg.TelemetryLostFailsafeMs:
		desired = Failsafe
	case dt >= m.cfg.TrackLostWarningMs || dm >= m.cfg.TelemetryLostWarningMs:
		desired = Warning
	default:
		desired = Nominal
	}

	m.transition(now, desired)

	return Decision{
		State:                m.state,
		ShouldCommandNeutral: m.state == Failsafe || m.state == Recovery,
		Action:               m.cfg.Action,
	}
}

func (m *Manager) transition(now time.Time, desired State) {
	switch m.state {
	case Nominal:
		if desired == Warning || desired == Failsafe {
			m.state = desired
		}

	case Warning:
		switch desired {
		case Nominal:
			m.state = Nominal
		case Failsafe:
			m.state = Failsafe
		}

	case Failsafe:
		if desired != Failsafe {
			m.state = Recovery
			m.recoveryStart = now
			m.recovering = true
		}

	case Recovery:
		switch desired {
		case Failsafe:
			m.state = Failsafe
			m.recovering = false
		case Nominal:
			if now.Sub(m.recoveryStart) >= m.cfg.RecoveryConfirmationMs {
				m.state = Nominal
				m.recovering = false
			}
			// else: stay in Recovery, confirmation window not yet elapsed.
		default:
			// desired == Warning while recovering: reset the confirmation
			// window rather than exiting Recovery outright.
			m.recoveryStart = now
		}
	}
}

// State returns the manager's current state without advancing it.
func (m *Manager) State() State {
	return m.state
}
