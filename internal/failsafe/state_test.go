package failsafe

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func testConfig() Config {
	return Config{
		TrackLostWarningMs:      100 * time.Millisecond,
		TrackLostFailsafeMs:     300 * time.Millisecond,
		TelemetryLostWarningMs:  100 * time.Millisecond,
		TelemetryLostFailsafeMs: 300 * time.Millisecond,
		RecoveryConfirmationMs:  200 * time.Millisecond,
		Action:                  ActionNeutral,
	}
}

func TestStartsNominal(t *testing.T) {
	m := NewManager(testConfig())
	d := m.Update(time.Now(), true, true)
	assert.Equal(t, Nominal, d.State)
	assert.False(t, d.ShouldCommandNeutral)
}

func TestTransitionsToWarningThenFailsafe(t *testing.T) {
	m := NewManager(testConfig())
	t0 := time.Now()

	m.Update(t0, true, true)

	d := m.Update(t0.Add(150*time.Millisecond), false, true)
	assert.Equal(t, Warning, d.State)

	d = m.Update(t0.Add(350*time.Millisecond), false, true)
	assert.Equal(t, Failsafe, d.State)
	assert.True(t, d.ShouldCommandNeutral)
}

func TestNeverSkipsRecoveryOnTheWayToNominal(t *testing.T) {
	m := NewManager(testConfig())
	t0 := time.Now()

	m.Update(t0, true, true)
	m.Update(t0.Add(350*time.Millisecond), false, true)
	require := assert.New(t)
	require.Equal(Failsafe, m.State())

	// Signal recovers immediately.
	d := m.Update(t0.Add(360*time.Millisecond), true, true)
	require.Equal(Recovery, d.State, "must pass through Recovery, never jump straight to Nominal")
	require.True(d.ShouldCommandNeutral, "Recovery still commands neutral until confirmed")

	// Not yet past the confirmation window.
	d = m.Update(t0.Add(450*time.Millisecond), true, true)
	require.Equal(Recovery, d.State)

	// Past the confirmation window, signal still good.
	d = m.Update(t0.Add(600*time.Millisecond), true, true)
	require.Equal(Nominal, d.State)
	require.False(d.ShouldCommandNeutral)
}

func TestRecoveryRevertsToFailsafeOnRelapse(t *testing.T) {
	m := NewManager(testConfig())
	t0 := time.Now()
	m.Update(t0, true, true)
	m.Update(t0.Add(350*time.Millisecond), false, true)
	m.Update(t0.Add(360*time.Millisecond), true, true)
	assert.Equal(t, Recovery, m.State())

	d := m.Update(t0.Add(700*time.Millisecond), false, true)
	assert.Equal(t, Failsafe, d.State)
}

func TestRecoveryConfirmationResetsOnWarningRelapse(t *testing.T) {
	m := NewManager(testConfig())
	t0 := time.Now()
	m.Update(t0, true, true)
	m.Update(t0.Add(350*time.Millisecond), false, true)
	m.Update(t0.Add(360*time.Millisecond), true, true)
	assert.Equal(t, Recovery, m.State())

	// A brief telemetry blip (Warning-level) partway through recovery
	// should reset the confirmation window, not let it lapse through.
	m.Update(t0.Add(470*time.Millisecond), true, false)
	d := m.Update(t0.Add(610*time.Millisecond), true, true) // 140ms after the blip: not yet 200ms
	assert.Equal(t, Recovery, d.State)

	d = m.Update(t0.Add(680*time.Millisecond), true, true) // 210ms after the blip
	assert.Equal(t, Nominal, d.State)
}

func TestTelemetryLossAloneTriggersFailsafe(t *testing.T) {
	m := NewManager(testConfig())
	t0 := time.Now()
	m.Update(t0, true, true)
	d := m.Update(t0.Add(350*time.Millisecond), true, false)
	assert.Equal(t, Failsafe, d.State)
}

func TestStateStringNames(t *testing.T) {
	assert.Equal(t, "nominal", Nominal.String())
	assert.Equal(t, "warning", Warning.String())
	assert.Equal(t, "failsafe", Failsafe.String())
	assert.Equal(t, "recovery", Recovery.String())
}
