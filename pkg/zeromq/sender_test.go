package zeromq

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/pebbe/zmq4"
)

type nopLogger struct{}

func (nopLogger) Debugf(format string, args ...interface{}) {}
func (nopLogger) Infof(format string, args ...interface{})  {}
func (nopLogger) Warnf(format string, args ...interface{})  {}
func (nopLogger) Errorf(format string, args ...interface{}) {}
func (nopLogger) Fatalf(format string, args ...interface{}) {}

func TestSenderDeliversTopicAndPayload(t *testing.T) {
	endpoint := "inproc://sender-test"

	sender, err := NewSender(endpoint, nopLogger{})
	if err != nil {
		t.Fatalf("Failed to create sender: %v", err)
	}
	defer sender.Close()

	sub, err := zmq4.NewSocket(zmq4.SUB)
	if err != nil {
		t.Fatalf("Failed to create SUB socket: %v", err)
	}
	defer sub.Close()

	if err := sub.Connect(endpoint); err != nil {
		t.Fatalf("Failed to connect subscriber: %v", err)
	}
	if err := sub.SetSubscribe("cb_left_hand_control_cmd"); err != nil {
		t.Fatalf("Failed to subscribe: %v", err)
	}
	if err := sub.SetRcvtimeo(200 * time.Millisecond); err != nil {
		t.Fatalf("Failed to set receive timeout: %v", err)
	}

	payload := []byte(`{"type":"JOINT_COMMAND"}`)

	// PUB drops messages until the subscription has propagated, so publish
	// until the subscriber sees one.
	deadline := time.Now().Add(5 * time.Second)
	for {
		if err := sender.Publish("cb_left_hand_control_cmd", payload); err != nil {
			t.Fatalf("Failed to publish: %v", err)
		}

		topic, err := sub.Recv(0)
		if err == nil {
			if topic != "cb_left_hand_control_cmd" {
				t.Fatalf("Unexpected topic: %s", topic)
			}
			got, err := sub.RecvBytes(0)
			if err != nil {
				t.Fatalf("Failed to receive payload frame: %v", err)
			}
			if !bytes.Equal(got, payload) {
				t.Fatalf("Unexpected payload: %s", got)
			}
			return
		}

		if time.Now().After(deadline) {
			t.Fatal("Timed out waiting for a published message")
		}
	}
}

func TestPublishAfterClose(t *testing.T) {
	sender, err := NewSender("inproc://sender-close-test", nopLogger{})
	if err != nil {
		t.Fatalf("Failed to create sender: %v", err)
	}

	sender.Close()
	sender.Close() // idempotent

	if err := sender.Publish("topic", []byte("payload")); !errors.Is(err, ErrSenderClosed) {
		t.Fatalf("Expected ErrSenderClosed, got %v", err)
	}
}

func TestBindFailureIsFatal(t *testing.T) {
	if _, err := NewSender("bogus-endpoint", nopLogger{}); err == nil {
		t.Fatal("Expected error for invalid bind address")
	}
}
