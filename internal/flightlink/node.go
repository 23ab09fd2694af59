package flightlink

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/flightpath-dev/visionlock/internal/bus"
	"github.com/flightpath-dev/visionlock/internal/busproto"
	"github.com/flightpath-dev/visionlock/internal/failsafe"
)

// Node is the Flight-Link process: it owns the offboard Session, mirrors
// Control's setpoints onto it (subject to its own embedded failsafe
// gate), republishes telemetry and battery injection, and forwards
// operator commands parsed off the link onto qgc_cmds.
type Node struct {
	cfg    Config
	bus    *bus.Bus
	log    zerolog.Logger
	sess   *Session
	fsm    *failsafe.Manager

	setpointsSub *bus.Subscription
	errorsSub    *bus.Subscription
	batterySub   *bus.Subscription

	lastErrors   busproto.Errors
	lastErrorsAt time.Time
	haveErrors   bool
}

// NewNode wires a Node against an already-connected Bus and a running
// MAVLink Session.
func NewNode(cfg Config, b *bus.Bus, sess *Session, fsCfg failsafe.Config, log zerolog.Logger) (*Node, error) {
	setpointsSub, err := b.Subscribe(busproto.TopicSetpoints)
	if err != nil {
		return nil, err
	}
	errorsSub, err := b.Subscribe(busproto.TopicErrors)
	if err != nil {
		return nil, err
	}
	batterySub, err := b.Subscribe(busproto.TopicBatteryState)
	if err != nil {
		return nil, err
	}

	n := &Node{
		cfg:          cfg,
		bus:          b,
		log:          log,
		sess:         sess,
		fsm:          failsafe.NewManager(fsCfg),
		setpointsSub: setpointsSub,
		errorsSub:    errorsSub,
		batterySub:   batterySub,
	}

	sess.OnUserCommand = func(cmd busproto.UserCommand) {
		b.Publish(busproto.TopicQGCCommands, busproto.KindUserCommand, cmd)
	}

	return n, nil
}

// Run drives the node's tick loop (mirroring setpoints, publishing
// telemetry and injected values) until ctx is canceled, then stops the
// underlying session cleanly.
func (n *Node) Run(ctx context.Context) error {
	ticker := time.NewTicker(n.cfg.SetpointInterval())
	defer ticker.Stop()

	var lastBattery busproto.BatteryState
	var lastLockState busproto.LockState

	lockSub, err := n.bus.Subscribe(busproto.TopicLockState)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			n.sess.Stop()
			return ctx.Err()
		case <-ticker.C:
			now := time.Now()

			// SPEC_FULL.md resolution: freshness for this failsafe gate
			// is Errors.timestamp republished over the bus, not the
			// Control-published setpoint's own timestamp — Control may
			// still be emitting slewed setpoints well after its errors
			// input has gone stale.
			if raw, ok := n.errorsSub.DrainLatest(); ok {
				var e busproto.Errors
				if _, err := busproto.Decode(raw, &e); err == nil {
					n.lastErrors = e
					n.lastErrorsAt = e.Timestamp
					n.haveErrors = e.LockValid && e.TrackValid
				}
			}
			trackOK := n.haveErrors && now.Sub(n.lastErrorsAt) < 500*time.Millisecond
			telemetryOK := n.sess.Telemetry().IsConnected(now)

			decision := n.fsm.Update(now, trackOK, telemetryOK)

			if raw, ok := n.setpointsSub.DrainLatest(); ok {
				var sp busproto.Setpoint
				if _, err := busproto.Decode(raw, &sp); err == nil {
					if decision.ShouldCommandNeutral {
						sp = busproto.NeutralSetpoint(now)
					}
					n.sess.UpdateSetpoint(sp)
				}
			}

			if raw, ok := n.batterySub.DrainLatest(); ok {
				var bs busproto.BatteryState
				if _, err := busproto.Decode(raw, &bs); err == nil {
					lastBattery = bs
				}
			}
			if raw, ok := lockSub.DrainLatest(); ok {
				var ls busproto.LockState
				if _, err := busproto.Decode(raw, &ls); err == nil {
					lastLockState = ls
				}
			}

			n.publishTelemetryAndInjection(now, lastBattery, lastLockState)
		}
	}
}

func (n *Node) publishTelemetryAndInjection(now time.Time, battery busproto.BatteryState, lock busproto.LockState) {
	tel := n.sess.Telemetry().Snapshot(now)
	n.bus.Publish(busproto.TopicTelemetry, busproto.KindTelemetry, tel)

	for _, msg := range n.sess.injector.BatteryValues(battery, now) {
		if msg != nil {
			_ = n.sess.node.WriteMessageAll(msg)
		}
	}
	if lockedMsg, idMsg := n.sess.injector.LockChange(lock, now); lockedMsg != nil || idMsg != nil {
		if lockedMsg != nil {
			_ = n.sess.node.WriteMessageAll(lockedMsg)
		}
		if idMsg != nil {
			_ = n.sess.node.WriteMessageAll(idMsg)
		}
	}

	if n.haveErrors {
		yawMsg, pitchMsg := n.sess.injector.ErrorValues(n.lastErrors, now)
		_ = n.sess.node.WriteMessageAll(yawMsg)
		_ = n.sess.node.WriteMessageAll(pitchMsg)
	}
}
