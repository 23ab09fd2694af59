package flightlink

import (
	"fmt"
	"sync"
	"time"

	"github.com/bluenviron/gomavlib/v3"
	"github.com/bluenviron/gomavlib/v3/pkg/dialects/common"
	"github.com/bluenviron/gomavlib/v3/pkg/message"
	"github.com/rs/zerolog"

	"github.com/flightpath-dev/visionlock/internal/busproto"
)

// Session owns the MAVLink node and the offboard attitude-target stream:
// a pre-stream heartbeat/setpoint worker, a SetMode request/ack
// handshake, and a guarded current-setpoint cell that the node's tick
// loop swaps atomically, per spec §4.4.
type Session struct {
	node   *gomavlib.Node
	logger zerolog.Logger
	cfg    Config

	mu      sync.RWMutex
	current busproto.Setpoint

	ackCh chan *common.MessageCommandAck

	stop     chan struct{}
	done     chan struct{}
	injector *Injector
	telem    *TelemetryTracker

	// OnUserCommand, if set, is invoked for every COMMAND_LONG this
	// session recognizes as a user command (see ParseUserCommand).
	OnUserCommand func(busproto.UserCommand)
}

// NewSession creates a gomavlib node bound to a UDP endpoint and starts
// the pre-stream worker. The worker streams heartbeats and attitude
// targets continuously (required by PX4 before OFFBOARD mode will even
// be accepted) from the moment the session is created, not just after
// SetMode succeeds.
func NewSession(cfg Config, logger zerolog.Logger) (*Session, error) {
	node, err := gomavlib.NewNode(gomavlib.NodeConf{
		Endpoints: []gomavlib.EndpointConf{
			gomavlib.EndpointUDPClient{Address: cfg.UDPAddress},
		},
		Dialect:     common.Dialect,
		OutVersion:  gomavlib.V2,
		OutSystemID: 254,
	})
	if err != nil {
		return nil, fmt.Errorf("flightlink: create mavlink node: %w", err)
	}

	s := &Session{
		node:     node,
		logger:   logger,
		cfg:      cfg,
		current:  busproto.NeutralSetpoint(time.Time{}),
		ackCh:    make(chan *common.MessageCommandAck, 8),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
		telem:    NewTelemetryTracker(cfg.HeartbeatTimeoutMs),
		injector: NewInjector(0),
	}

	go s.listen()
	go s.streamWorker()

	return s, nil
}

// UpdateSetpoint atomically swaps the setpoint the stream worker sends
// on its next tick.
func (s *Session) UpdateSetpoint(sp busproto.Setpoint) {
	s.mu.Lock()
	s.current = sp
	s.mu.Unlock()
}

func (s *Session) currentSetpoint() busproto.Setpoint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Telemetry exposes the session's telemetry tracker for the node loop.
func (s *Session) Telemetry() *TelemetryTracker { return s.telem }

func (s *Session) listen() {
	for evt := range s.node.Events() {
		frm, ok := evt.(*gomavlib.EventFrame)
		if !ok {
			continue
		}
		s.handleMessage(frm.Message(), frm.SystemID())
	}
}

func (s *Session) handleMessage(msg message.Message, sysID uint8) {
	now := time.Now()
	switch m := msg.(type) {
	case *common.MessageHeartbeat:
		s.telem.HandleHeartbeat(m, sysID, now)
	case *common.MessageSysStatus:
		s.telem.HandleSysStatus(m)
	case *common.MessageGpsRawInt:
		s.telem.HandleGPSRaw(m)
	case *common.MessageCommandAck:
		select {
		case s.ackCh <- m:
		default:
		}
	case *common.MessageCommandLong:
		if s.OnUserCommand != nil {
			if cmd, ok := ParseUserCommand(m); ok {
				s.OnUserCommand(cmd)
			}
		}
	}
}

// streamWorker sends the attitude target at SetpointRateHz and a
// ground-station heartbeat at HeartbeatRateHz, for as long as the
// session is alive.
func (s *Session) streamWorker() {
	defer close(s.done)

	spTicker := time.NewTicker(s.cfg.SetpointInterval())
	defer spTicker.Stop()
	hbTicker := time.NewTicker(s.cfg.HeartbeatInterval())
	defer hbTicker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-hbTicker.C:
			_ = s.node.WriteMessageAll(&common.MessageHeartbeat{
				Type:           common.MAV_TYPE_GCS,
				Autopilot:      common.MAV_AUTOPILOT_INVALID,
				SystemStatus:   common.MAV_STATE_ACTIVE,
				MavlinkVersion: 3,
			})
		case <-spTicker.C:
			now := time.Now()
			sp := s.currentSetpoint()
			msg := EncodeAttitudeTarget(sp, s.telem.SystemID(), now)
			if err := s.node.WriteMessageAll(msg); err != nil {
				s.logger.Warn().Err(err).Msg("attitude target send failed")
			}
		}
	}
}

// RequestOffboard issues MAV_CMD_DO_SET_MODE for PX4's OFFBOARD mode and
// waits for the matching COMMAND_ACK, up to ModeTimeoutS.
func (s *Session) RequestOffboard() error {
	systemID := s.telem.SystemID()

	if err := s.node.WriteMessageAll(&common.MessageCommandLong{
		TargetSystem:    systemID,
		TargetComponent: 1,
		Command:         common.MAV_CMD_DO_SET_MODE,
		Param1:          float32(common.MAV_MODE_FLAG_CUSTOM_MODE_ENABLED),
		Param2:          float32(PX4MainModeOffboard),
	}); err != nil {
		return fmt.Errorf("flightlink: send set_mode: %w", err)
	}

	deadline := time.After(s.cfg.ModeTimeoutS)
	for {
		select {
		case ack := <-s.ackCh:
			if ack.Command == common.MAV_CMD_DO_SET_MODE {
				if ack.Result != common.MAV_RESULT_ACCEPTED {
					return fmt.Errorf("flightlink: set_mode rejected: result=%d", ack.Result)
				}
				return nil
			}
		case <-deadline:
			return fmt.Errorf("flightlink: set_mode ack timeout after %s", s.cfg.ModeTimeoutS)
		}
	}
}

// Stop streams a neutral setpoint for NeutralHandoffMs before closing the
// link, giving the autopilot's offboard watchdog a clean final frame.
func (s *Session) Stop() {
	s.UpdateSetpoint(busproto.NeutralSetpoint(time.Now()))
	time.Sleep(s.cfg.NeutralHandoffMs)
	close(s.stop)
	<-s.done
	s.node.Close()
}
