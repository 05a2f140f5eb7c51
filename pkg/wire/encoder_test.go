package wire

import (
	"encoding/json"
	"testing"
	"time"

	fbcommand "github.com/linkerbot/hand-publisher/pkg/flatbuffers/linkerhand/command"
	"github.com/linkerbot/hand-publisher/pkg/hand"
)

var testPositions = []float64{100, 10, 10, 10, 10, 255, 127.5, 127.5, 127.5, 127.5,
	0, 0, 0, 0, 0, 200, 0, 50, 50, 50}

var testVelocities = []float64{50, 50, 50, 50, 50}

func TestNewEncoderUnknownName(t *testing.T) {
	if _, err := NewEncoder("protobuf"); err == nil {
		t.Fatal("Expected error for unknown encoding")
	}
}

func TestJSONEncoder(t *testing.T) {
	encoder, err := NewEncoder(EncodingJSON)
	if err != nil {
		t.Fatalf("Failed to create encoder: %v", err)
	}

	cmd := hand.NewCommand(time.Now(), testPositions, testVelocities)
	payload, err := encoder.Encode(cmd)
	if err != nil {
		t.Fatalf("Failed to encode: %v", err)
	}

	var envelope struct {
		Type      string            `json:"type"`
		Timestamp float64           `json:"timestamp"`
		Data      hand.JointCommand `json:"data"`
	}
	if err := json.Unmarshal(payload, &envelope); err != nil {
		t.Fatalf("Failed to decode payload: %v", err)
	}

	if envelope.Type != MsgTypeJointCommand {
		t.Errorf("Expected type %q, got %q", MsgTypeJointCommand, envelope.Type)
	}
	if envelope.Timestamp == 0 {
		t.Error("Expected non-zero envelope timestamp")
	}
	if envelope.Data.TimestampNs != cmd.TimestampNs {
		t.Errorf("Expected command timestamp %d, got %d", cmd.TimestampNs, envelope.Data.TimestampNs)
	}
	for i, want := range testPositions {
		if envelope.Data.Positions[i] != want {
			t.Errorf("position[%d] = %v, want %v", i, envelope.Data.Positions[i], want)
		}
	}
	if len(envelope.Data.Efforts) != 0 {
		t.Errorf("Expected empty efforts, got %v", envelope.Data.Efforts)
	}
}

func TestFlatbufferEncoder(t *testing.T) {
	encoder, err := NewEncoder(EncodingFlatbuffer)
	if err != nil {
		t.Fatalf("Failed to create encoder: %v", err)
	}

	cmd := hand.NewCommand(time.Now(), testPositions, testVelocities)
	payload, err := encoder.Encode(cmd)
	if err != nil {
		t.Fatalf("Failed to encode: %v", err)
	}

	decoded := fbcommand.GetRootAsJointCommand(payload, 0)

	if decoded.TimestampNs() != cmd.TimestampNs {
		t.Errorf("Expected timestamp %d, got %d", cmd.TimestampNs, decoded.TimestampNs())
	}
	if decoded.PositionsLength() != hand.JointCount {
		t.Fatalf("Expected %d positions, got %d", hand.JointCount, decoded.PositionsLength())
	}
	for i, want := range testPositions {
		if got := decoded.Positions(i); got != want {
			t.Errorf("position[%d] = %v, want %v", i, got, want)
		}
	}
	if decoded.VelocitiesLength() != len(testVelocities) {
		t.Errorf("Expected %d velocities, got %d", len(testVelocities), decoded.VelocitiesLength())
	}
	for i, want := range testVelocities {
		if got := decoded.Velocities(i); got != want {
			t.Errorf("velocity[%d] = %v, want %v", i, got, want)
		}
	}
	if decoded.EffortsLength() != 0 {
		t.Errorf("Expected empty efforts, got length %d", decoded.EffortsLength())
	}
}
