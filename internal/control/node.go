package control

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/flightpath-dev/visionlock/internal/bus"
	"github.com/flightpath-dev/visionlock/internal/busproto"
	"github.com/flightpath-dev/visionlock/internal/failsafe"
)

// Node is the Control process: it drains errors keeping only the
// freshest reading, maps it to a raw setpoint, pushes the raw setpoint
// through the safety pipeline gated by an embedded failsafe.Manager, and
// publishes the result on setpoints each tick.
type Node struct {
	cfg Config
	bus *bus.Bus
	log zerolog.Logger

	gain   GainMap
	safety *SafetyPipeline
	fsm    *failsafe.Manager

	errsSub *bus.Subscription
	telSub  *bus.Subscription

	lastErrors   busproto.Errors
	haveErrors   bool
	lastErrorsAt time.Time

	telemetryOK bool
}

// NewNode wires a Node against an already-connected Bus.
func NewNode(cfg Config, b *bus.Bus, log zerolog.Logger) (*Node, error) {
	errsSub, err := b.Subscribe(busproto.TopicErrors)
	if err != nil {
		return nil, err
	}
	telSub, err := b.Subscribe(busproto.TopicTelemetry)
	if err != nil {
		return nil, err
	}

	return &Node{
		cfg:     cfg,
		bus:     b,
		log:     log,
		gain:    cfg.GainMap,
		safety:  NewSafetyPipeline(cfg.Safety),
		fsm:     failsafe.NewManager(cfg.Failsafe),
		errsSub: errsSub,
		telSub:  telSub,
	}, nil
}

// Run drives the node's tick loop until ctx is canceled. On exit it
// publishes a forced-neutral setpoint so Flight-Link's session sees an
// unambiguous safe command rather than a stale stream.
func (n *Node) Run(ctx context.Context) error {
	ticker := time.NewTicker(n.cfg.TickInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			n.bus.Publish(busproto.TopicSetpoints, busproto.KindSetpoint, n.safety.ForceNeutral(time.Now()))
			return ctx.Err()
		case <-ticker.C:
			n.tick()
		}
	}
}

func (n *Node) tick() {
	now := time.Now()

	if raw, ok := n.errsSub.DrainLatest(); ok {
		var e busproto.Errors
		if _, err := busproto.Decode(raw, &e); err == nil {
			n.lastErrors = e
			n.haveErrors = true
			n.lastErrorsAt = now
		}
	}

	if raw, ok := n.telSub.DrainLatest(); ok {
		var t busproto.Telemetry
		if _, err := busproto.Decode(raw, &t); err == nil {
			n.telemetryOK = now.Sub(t.Timestamp) < n.cfg.ErrorsStaleAfterMs*5
		}
	}

	trackOK := n.haveErrors && n.lastErrors.LockValid && n.lastErrors.TrackValid && now.Sub(n.lastErrorsAt) < n.cfg.ErrorsStaleAfterMs
	decision := n.fsm.Update(now, trackOK, n.telemetryOK)

	var raw busproto.Setpoint
	if trackOK {
		raw = n.gain.Map(n.lastErrors)
	}

	valid := trackOK && !decision.ShouldCommandNeutral
	sp := n.safety.Apply(raw, valid, now)

	n.bus.Publish(busproto.TopicSetpoints, busproto.KindSetpoint, sp)
}

// FailsafeStateLabel reports the node's embedded failsafe manager's
// current state as a string, for the diagnostics surface to poll.
func (n *Node) FailsafeStateLabel() string {
	return n.fsm.State().String()
}
