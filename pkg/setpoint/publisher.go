// Package setpoint implements the periodic fixed-setpoint publisher: the
// same joint-position command, emitted at a fixed cadence until stopped.
package setpoint

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/linkerbot/hand-publisher/pkg/hand"
	customlog "github.com/linkerbot/hand-publisher/pkg/log"
	"github.com/linkerbot/hand-publisher/pkg/wire"
)

// Common errors
var (
	ErrStopped = errors.New("publisher is stopped and cannot be restarted")
)

// Transport delivers an encoded command to the middleware. Implementations
// must not block indefinitely; a failed delivery is reported, not retried.
type Transport interface {
	Publish(topic string, payload []byte) error
}

// Observer is called after each successful publish.
type Observer func(cmd hand.JointCommand)

// Publisher states
const (
	StateCreated = "created"
	StateRunning = "running"
	StateStopped = "stopped"
)

// Settings holds the constant setpoint and emission parameters.
type Settings struct {
	Topic      string
	Cadence    time.Duration
	Positions  []float64
	Velocities []float64
}

// Status is a point-in-time snapshot of the publisher.
type Status struct {
	State          string    `json:"state"`
	Topic          string    `json:"topic"`
	CadenceSeconds float64   `json:"cadence_seconds"`
	TicksEmitted   int64     `json:"ticks_emitted"`
	PublishErrors  int64     `json:"publish_errors"`
	LastPublished  time.Time `json:"last_published,omitempty"`
}

// Publisher emits the configured command once per cadence interval. The
// target vectors are fixed at construction and never mutated; each tick
// builds a fresh command from copies of them.
type Publisher struct {
	topic      string
	cadence    time.Duration
	positions  []float64
	velocities []float64

	transport Transport
	encoder   wire.Encoder
	logger    customlog.Logger

	mu            sync.Mutex
	state         string
	observer      Observer
	ticksEmitted  int64
	publishErrors int64
	lastPublished time.Time

	ticker *time.Ticker
	tickC  <-chan time.Time // test override for the ticker channel
	done   chan struct{}
	wg     sync.WaitGroup
}

// New validates the settings and builds a publisher. Nothing is emitted
// until Start is called and the first cadence interval has elapsed.
// Out-of-range positions are logged but still sent as-is on every tick.
func New(settings Settings, transport Transport, encoder wire.Encoder, logger customlog.Logger) (*Publisher, error) {
	if transport == nil {
		return nil, errors.New("transport must not be nil")
	}
	if encoder == nil {
		return nil, errors.New("encoder must not be nil")
	}
	if settings.Topic == "" {
		return nil, errors.New("topic must not be empty")
	}
	if settings.Cadence <= 0 {
		return nil, fmt.Errorf("cadence must be positive, got %v", settings.Cadence)
	}
	if len(settings.Positions) != hand.JointCount {
		return nil, fmt.Errorf("positions must have exactly %d entries, got %d",
			hand.JointCount, len(settings.Positions))
	}

	for _, i := range hand.OutOfRange(settings.Positions) {
		logger.Warnf("Position for %s is outside [%g, %g]: %g (sent unmodified)",
			hand.JointNames[i], hand.PositionMin, hand.PositionMax, settings.Positions[i])
	}

	p := &Publisher{
		topic:      settings.Topic,
		cadence:    settings.Cadence,
		positions:  append([]float64(nil), settings.Positions...),
		velocities: append([]float64(nil), settings.Velocities...),
		transport:  transport,
		encoder:    encoder,
		logger:     logger,
		state:      StateCreated,
		done:       make(chan struct{}),
	}
	return p, nil
}

// SetObserver registers a callback invoked after each successful publish.
// Must be called before Start.
func (p *Publisher) SetObserver(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observer = observer
}

// Start arms the timer and begins emitting. The first command goes out one
// full cadence interval after Start, not immediately. Starting a stopped
// publisher returns ErrStopped; starting a running one is a no-op.
func (p *Publisher) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch p.state {
	case StateRunning:
		return nil
	case StateStopped:
		return ErrStopped
	}
	p.state = StateRunning

	tickC := p.tickC
	if tickC == nil {
		p.ticker = time.NewTicker(p.cadence)
		tickC = p.ticker.C
	}

	p.logger.Infof("Publishing to '%s' every %v...", p.topic, p.cadence)

	p.wg.Add(1)
	go p.run(tickC)
	return nil
}

// Stop disarms the timer and waits for the tick goroutine to exit. The
// transition is terminal: a stopped publisher cannot be restarted. Stop is
// idempotent and safe to call on a publisher that never started.
func (p *Publisher) Stop() {
	p.mu.Lock()
	if p.state == StateStopped {
		p.mu.Unlock()
		return
	}
	wasRunning := p.state == StateRunning
	p.state = StateStopped
	if p.ticker != nil {
		p.ticker.Stop()
	}
	close(p.done)
	p.mu.Unlock()

	if wasRunning {
		p.wg.Wait()
	}
	p.logger.Infof("Setpoint publisher stopped")
}

// Status reports the current state and emission counters.
func (p *Publisher) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Status{
		State:          p.state,
		Topic:          p.topic,
		CadenceSeconds: p.cadence.Seconds(),
		TicksEmitted:   p.ticksEmitted,
		PublishErrors:  p.publishErrors,
		LastPublished:  p.lastPublished,
	}
}

// run processes ticks until stopped. Ticks are handled one at a time on
// this goroutine, so tick handlers never overlap.
func (p *Publisher) run(tickC <-chan time.Time) {
	defer p.wg.Done()
	for {
		select {
		case <-p.done:
			return
		case <-tickC:
			p.publishOnce()
		}
	}
}

// publishOnce builds and sends one command. A failed encode or send is
// logged and counted; the next tick tries again with no backoff.
func (p *Publisher) publishOnce() {
	now := time.Now()
	cmd := hand.NewCommand(now, p.positions, p.velocities)

	payload, err := p.encoder.Encode(cmd)
	if err != nil {
		p.logger.Errorf("Failed to encode command: %v", err)
		p.recordError()
		return
	}

	if err := p.transport.Publish(p.topic, payload); err != nil {
		p.logger.Errorf("Failed to publish command: %v", err)
		p.recordError()
		return
	}

	p.mu.Lock()
	p.ticksEmitted++
	p.lastPublished = now
	observer := p.observer
	p.mu.Unlock()

	p.logger.Infof("Publishing position command: %v", cmd.Positions)

	if observer != nil {
		observer(cmd)
	}
}

func (p *Publisher) recordError() {
	p.mu.Lock()
	p.publishErrors++
	p.mu.Unlock()
}
