package bus

import (
	"testing"
	"time"

	"github.com/flightpath-dev/visionlock/internal/busproto"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func startTestBus(t *testing.T) (*Bus, func()) {
	t.Helper()
	logger := zerolog.Nop()

	srv, err := StartEmbeddedServer("127.0.0.1", 0, logger)
	require.NoError(t, err)

	b, err := Connect("nats://"+srv.Addr(), logger)
	require.NoError(t, err)

	return b, func() {
		b.Close()
		srv.Shutdown()
	}
}

func TestPublishSubscribeRoundTrip(t *testing.T) {
	b, cleanup := startTestBus(t)
	defer cleanup()

	sub, err := b.Subscribe(busproto.TopicSetpoints)
	require.NoError(t, err)

	sp := busproto.Setpoint{RollDeg: 3.5, Timestamp: time.Now().UTC()}
	b.Publish(busproto.TopicSetpoints, busproto.KindSetpoint, sp)

	kind, raw, ok := sub.Receive(2 * time.Second)
	require.True(t, ok)
	require.Equal(t, busproto.KindSetpoint, kind)

	var out busproto.Setpoint
	_, err = busproto.Decode(raw, &out)
	require.NoError(t, err)
	require.InDelta(t, sp.RollDeg, out.RollDeg, 1e-9)
}

func TestReceiveTimesOutWithNoMessage(t *testing.T) {
	b, cleanup := startTestBus(t)
	defer cleanup()

	sub, err := b.Subscribe(busproto.TopicErrors)
	require.NoError(t, err)

	_, _, ok := sub.Receive(100 * time.Millisecond)
	require.False(t, ok)
}

func TestSubscribeIsIdempotentPerTopic(t *testing.T) {
	b, cleanup := startTestBus(t)
	defer cleanup()

	s1, err := b.Subscribe(busproto.TopicTracks)
	require.NoError(t, err)
	s2, err := b.Subscribe(busproto.TopicTracks)
	require.NoError(t, err)

	require.Same(t, s1, s2)
}

func TestDrainLatestKeepsOnlyTheFreshestMessage(t *testing.T) {
	b, cleanup := startTestBus(t)
	defer cleanup()

	sub, err := b.Subscribe(busproto.TopicSetpoints)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		sp := busproto.Setpoint{RollDeg: float64(i), Timestamp: time.Now().UTC()}
		b.Publish(busproto.TopicSetpoints, busproto.KindSetpoint, sp)
	}

	// Give the embedded transport a moment to deliver all five before draining.
	time.Sleep(200 * time.Millisecond)

	raw, ok := sub.DrainLatest()
	require.True(t, ok)

	var out busproto.Setpoint
	_, err = busproto.Decode(raw, &out)
	require.NoError(t, err)
	require.Equal(t, 4.0, out.RollDeg)

	// Nothing left queued.
	_, ok = sub.DrainLatest()
	require.False(t, ok)
}
