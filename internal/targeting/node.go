package targeting

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/flightpath-dev/visionlock/internal/bus"
	"github.com/flightpath-dev/visionlock/internal/busproto"
)

// Node is the Targeting process: it drains qgc_cmds for selection
// requests, drains tracks keeping only the freshest frame, advances the
// LockManager, computes Errors, and republishes lock_state and errors
// each tick.
type Node struct {
	cfg  Config
	bus  *bus.Bus
	log  zerolog.Logger
	lock *LockManager
	errs *ErrorComputer

	tracksSub *bus.Subscription
	cmdsSub   *bus.Subscription

	latestTracks busproto.TrackList
	haveTracks   bool

	// trackingEnabled gates lock-manager updates and publishing, per
	// spec §4.2.3/§4.4.3's StartTracking/StopTracking commands. It starts
	// disabled: an operator must explicitly arm tracking before the
	// targeting loop does anything with incoming tracks.
	trackingEnabled bool
}

// NewNode wires a Node against an already-connected Bus and a
// DepthSampler supplying depth-ROI medians.
func NewNode(cfg Config, b *bus.Bus, depth DepthSampler, log zerolog.Logger) (*Node, error) {
	tracksSub, err := b.Subscribe(busproto.TopicTracks)
	if err != nil {
		return nil, err
	}
	cmdsSub, err := b.Subscribe(busproto.TopicQGCCommands)
	if err != nil {
		return nil, err
	}

	errCfg := ErrorComputerConfig{
		Intrinsics:    cfg.Intrinsics,
		DepthWidth:    cfg.DepthWidth,
		DepthHeight:   cfg.DepthHeight,
		DesiredRangeM: cfg.DesiredRangeM,
		MinRangeM:     cfg.MinRangeM,
		MaxRangeM:     cfg.MaxRangeM,
	}

	return &Node{
		cfg:       cfg,
		bus:       b,
		log:       log,
		lock:      NewLockManager(cfg.LockManager),
		errs:      NewErrorComputer(errCfg, depth, cfg.Intrinsics.Width, cfg.Intrinsics.Height),
		tracksSub: tracksSub,
		cmdsSub:   cmdsSub,
	}, nil
}

// Run drives the node's tick loop until ctx is canceled.
func (n *Node) Run(ctx context.Context) error {
	ticker := time.NewTicker(n.cfg.TickInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			now := time.Now()

			if raw, ok := n.tracksSub.DrainLatest(); ok {
				var tl busproto.TrackList
				if _, err := busproto.Decode(raw, &tl); err == nil {
					n.latestTracks = tl
					n.haveTracks = true
				}
			}

			n.drainCommands(now)

			if n.trackingEnabled && n.haveTracks {
				n.lock.Update(n.latestTracks, now)
				n.publishTick(now)
			}
		}
	}
}

func (n *Node) drainCommands(now time.Time) {
	for {
		_, raw, ok := n.cmdsSub.Receive(0)
		if !ok {
			return
		}
		var cmd busproto.UserCommand
		if _, err := busproto.Decode(raw, &cmd); err != nil {
			n.log.Warn().Err(err).Msg("discarding malformed command")
			return
		}
		n.applyCommand(cmd, now)
	}
}

func (n *Node) applyCommand(cmd busproto.UserCommand, now time.Time) {
	switch cmd.Kind {
	case busproto.CmdStartTracking:
		n.trackingEnabled = true
		n.log.Info().Msg("tracking enabled")
	case busproto.CmdStopTracking:
		n.trackingEnabled = false
		n.lock.ClearLock()
		n.log.Info().Msg("tracking disabled")
	case busproto.CmdSelectTargetByID:
		if !n.lock.SelectByID(n.latestTracks, cmd.TrackID, now) {
			n.log.Info().Uint64("track_id", cmd.TrackID).Msg("select by id: no matching track")
		}
	case busproto.CmdSelectTargetByPx:
		if !n.lock.SelectByPixel(n.latestTracks, cmd.PixelU, cmd.PixelV, now) {
			n.log.Info().Float64("u", cmd.PixelU).Float64("v", cmd.PixelV).Msg("select by pixel: no candidate within tolerance")
		}
	case busproto.CmdSetDepthRange:
		n.errs.SetDepthRange(cmd.DepthMin, cmd.DepthMax)
		n.log.Info().Float64("min_depth", cmd.DepthMin).Float64("max_depth", cmd.DepthMax).Msg("depth range set")
	case busproto.CmdClearLock:
		n.lock.ClearLock()
	}
}

func (n *Node) publishTick(now time.Time) {
	state := n.lock.State()
	n.bus.Publish(busproto.TopicLockState, busproto.KindLockState, state)

	if !state.IsValid() {
		n.bus.Publish(busproto.TopicErrors, busproto.KindErrors, busproto.ZeroErrors(now))
		return
	}

	track, ok := n.lock.LockedTrack()
	if !ok {
		n.bus.Publish(busproto.TopicErrors, busproto.KindErrors, busproto.ZeroErrors(now))
		return
	}

	errs := n.errs.Compute(track, true, now)
	n.bus.Publish(busproto.TopicErrors, busproto.KindErrors, errs)
}
