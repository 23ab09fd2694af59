// Package bus implements the typed, lossy, topic-addressed pub/sub
// transport nodes use to talk to each other. It wraps core NATS
// publish/subscribe (not JetStream): at-most-once delivery, no
// durability, and FIFO-within-a-single-subject ordering are exactly
// what core NATS already provides, so the wrapper's job is narrow —
// encode/decode the self-describing envelope and enforce the small
// high-water-mark queue depth the spec calls for.
package bus

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/flightpath-dev/visionlock/internal/busproto"
)

// HighWaterMark bounds the number of undelivered messages a subscription
// will buffer; once the buffer is full, further incoming messages are
// dropped until the consumer catches up.
const HighWaterMark = 10

// Bus is a connected handle to the message-bus transport.
type Bus struct {
	conn   *nats.Conn
	logger zerolog.Logger

	mu   sync.Mutex
	subs map[busproto.Topic]*Subscription
}

// Connect dials the bus transport at url (e.g. "nats://127.0.0.1:4222").
func Connect(url string, logger zerolog.Logger) (*Bus, error) {
	conn, err := nats.Connect(url,
		nats.Name("visionlock"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(500*time.Millisecond),
	)
	if err != nil {
		return nil, fmt.Errorf("bus: connect %s: %w", url, err)
	}
	return &Bus{
		conn:   conn,
		logger: logger,
		subs:   make(map[busproto.Topic]*Subscription),
	}, nil
}

// Publish serializes payload under kind's discriminator and enqueues it on
// topic. Publish never blocks waiting for a subscriber; failures are
// transient and are logged, not propagated, per the error-handling policy.
func (b *Bus) Publish(topic busproto.Topic, kind string, payload any) {
	data, err := busproto.Encode(kind, payload)
	if err != nil {
		b.logger.Warn().Err(err).Str("topic", string(topic)).Msg("bus: encode failed, dropping message")
		return
	}
	if err := b.conn.Publish(string(topic), data); err != nil {
		b.logger.Warn().Err(err).Str("topic", string(topic)).Msg("bus: publish failed, dropping message")
	}
}

// Subscribe registers interest in topic, idempotently: a second Subscribe
// for the same topic returns the existing subscription.
func (b *Bus) Subscribe(topic busproto.Topic) (*Subscription, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if s, ok := b.subs[topic]; ok {
		return s, nil
	}

	ch := make(chan *nats.Msg, HighWaterMark)
	sub, err := b.conn.ChanSubscribe(string(topic), ch)
	if err != nil {
		return nil, fmt.Errorf("bus: subscribe %s: %w", topic, err)
	}
	// Bound the server-side pending queue too, so a slow consumer drops
	// stale messages instead of accumulating an unbounded backlog.
	if err := sub.SetPendingLimits(HighWaterMark, HighWaterMark*64*1024); err != nil {
		b.logger.Warn().Err(err).Str("topic", string(topic)).Msg("bus: could not set pending limits")
	}

	s := &Subscription{topic: topic, sub: sub, ch: ch}
	b.subs[topic] = s
	return s, nil
}

// Close unsubscribes every subscription and closes the underlying
// connection.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, s := range b.subs {
		_ = s.sub.Unsubscribe()
	}
	b.conn.Close()
}

// Subscription is a single topic's receive side.
type Subscription struct {
	topic busproto.Topic
	sub   *nats.Subscription
	ch    chan *nats.Msg
}

// Topic returns the subscribed topic.
func (s *Subscription) Topic() busproto.Topic { return s.topic }

// Receive waits up to timeout for the next message. ok is false on
// timeout or if no message is available; it is not an error.
func (s *Subscription) Receive(timeout time.Duration) (kind string, raw []byte, ok bool) {
	select {
	case msg, open := <-s.ch:
		if !open {
			return "", nil, false
		}
		var env busproto.Envelope
		if err := json.Unmarshal(msg.Data, &env); err != nil {
			return "", nil, false
		}
		return env.Kind, msg.Data, true
	case <-time.After(timeout):
		return "", nil, false
	}
}

// DrainLatest consumes every currently-queued message on the subscription
// and returns only the most recent one, implementing the "retain only the
// freshest observation" drain-and-keep-latest pattern Targeting and
// Control use each tick.
func (s *Subscription) DrainLatest() (raw []byte, ok bool) {
	for {
		select {
		case msg, open := <-s.ch:
			if !open {
				return raw, ok
			}
			raw, ok = msg.Data, true
		default:
			return raw, ok
		}
	}
}
