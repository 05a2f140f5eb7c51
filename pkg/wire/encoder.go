// Package wire serializes joint commands for the outbound transport.
package wire

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/linkerbot/hand-publisher/pkg/hand"
)

// Encoding names accepted in the config file.
const (
	EncodingJSON       = "json"
	EncodingFlatbuffer = "flatbuffer"
)

// MsgTypeJointCommand is the envelope type tag for JSON-encoded commands.
const MsgTypeJointCommand = "JOINT_COMMAND"

// Encoder turns a JointCommand into transport payload bytes.
type Encoder interface {
	Encode(cmd hand.JointCommand) ([]byte, error)
}

// NewEncoder returns the encoder for the given encoding name.
func NewEncoder(name string) (Encoder, error) {
	switch name {
	case EncodingJSON:
		return jsonEncoder{}, nil
	case EncodingFlatbuffer:
		return flatbufferEncoder{}, nil
	default:
		return nil, fmt.Errorf("unknown encoding: %s", name)
	}
}

// Envelope is the generic JSON message structure on the wire.
type Envelope struct {
	Type      string      `json:"type"`
	Timestamp float64     `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
}

type jsonEncoder struct{}

func (jsonEncoder) Encode(cmd hand.JointCommand) ([]byte, error) {
	msg := Envelope{
		Type:      MsgTypeJointCommand,
		Timestamp: float64(time.Now().Unix()),
		Data:      cmd,
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal command: %w", err)
	}
	return data, nil
}
