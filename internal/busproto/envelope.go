package busproto

import (
	"encoding/json"
	"fmt"
)

// Envelope is the self-describing wire format published on every topic.
// Kind carries an explicit discriminator so a subscriber can reconstruct
// the correct payload variant without relying on the transport's content
// type or subject alone.
type Envelope struct {
	Kind    string          `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

// Encode wraps a typed payload into a self-describing Envelope and
// serializes it to bytes.
func Encode(kind string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("busproto: marshal payload %s: %w", kind, err)
	}
	env := Envelope{Kind: kind, Payload: raw}
	return json.Marshal(env)
}

// Decode parses a wire-format envelope and unmarshals its payload into out.
// It returns the envelope's discriminator so callers can verify it matches
// what they expected before trusting out.
func Decode(data []byte, out any) (kind string, err error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return "", fmt.Errorf("busproto: unmarshal envelope: %w", err)
	}
	if err := json.Unmarshal(env.Payload, out); err != nil {
		return env.Kind, fmt.Errorf("busproto: unmarshal payload %s: %w", env.Kind, err)
	}
	return env.Kind, nil
}

// Message-kind discriminators, one per payload type carried on the bus.
const (
	KindTrackList    = "TrackList"
	KindLockState    = "LockState"
	KindErrors       = "Errors"
	KindSetpoint     = "Setpoint"
	KindBatteryState = "BatteryState"
	KindUserCommand  = "UserCommand"
	KindTelemetry    = "Telemetry"
)
