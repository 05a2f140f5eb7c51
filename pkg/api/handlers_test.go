package api

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/linkerbot/hand-publisher/pkg/setpoint"
	"github.com/linkerbot/hand-publisher/pkg/wire"
)

type nopLogger struct{}

func (nopLogger) Debugf(format string, args ...interface{}) {}
func (nopLogger) Infof(format string, args ...interface{})  {}
func (nopLogger) Warnf(format string, args ...interface{})  {}
func (nopLogger) Errorf(format string, args ...interface{}) {}
func (nopLogger) Fatalf(format string, args ...interface{}) {}

type nopTransport struct{}

func (nopTransport) Publish(topic string, payload []byte) error { return nil }

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	encoder, err := wire.NewEncoder(wire.EncodingJSON)
	if err != nil {
		t.Fatalf("Failed to create encoder: %v", err)
	}

	positions := make([]float64, 20)
	pub, err := setpoint.New(setpoint.Settings{
		Topic:      "cb_left_hand_control_cmd",
		Cadence:    time.Second,
		Positions:  positions,
		Velocities: []float64{50, 50, 50, 50, 50},
	}, nopTransport{}, encoder, nopLogger{})
	if err != nil {
		t.Fatalf("Failed to create publisher: %v", err)
	}

	app := fiber.New()
	RegisterRoutes(app, pub, NewCommandStream(nopLogger{}), nopLogger{})
	return app
}

func TestHealthEndpoint(t *testing.T) {
	app := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}

	body, _ := io.ReadAll(resp.Body)
	var payload map[string]string
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("Failed to decode body: %v", err)
	}
	if payload["status"] != "healthy" {
		t.Errorf("Unexpected health payload: %v", payload)
	}
}

func TestStatusEndpoint(t *testing.T) {
	app := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/status", nil))
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}

	body, _ := io.ReadAll(resp.Body)
	var status setpoint.Status
	if err := json.Unmarshal(body, &status); err != nil {
		t.Fatalf("Failed to decode status: %v", err)
	}

	if status.State != setpoint.StateCreated {
		t.Errorf("Expected state %q, got %q", setpoint.StateCreated, status.State)
	}
	if status.Topic != "cb_left_hand_control_cmd" {
		t.Errorf("Unexpected topic: %s", status.Topic)
	}
	if status.CadenceSeconds != 1.0 {
		t.Errorf("Unexpected cadence: %v", status.CadenceSeconds)
	}
}

func TestWebSocketUpgradeRequired(t *testing.T) {
	app := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/ws/commands", nil))
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusUpgradeRequired {
		t.Fatalf("Expected 426, got %d", resp.StatusCode)
	}
}
