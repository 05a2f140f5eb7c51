// Package zeromq provides the ZeroMQ PUB transport for outbound commands.
package zeromq

import (
	"errors"
	"fmt"
	"sync"

	"github.com/pebbe/zmq4"

	customlog "github.com/linkerbot/hand-publisher/pkg/log"
)

// ErrSenderClosed is returned by Publish after Close.
var ErrSenderClosed = errors.New("zeromq sender is closed")

// Sender publishes messages on a PUB socket. Subscribers receive two frames
// per message: the topic, then the payload.
type Sender struct {
	socket  *zmq4.Socket
	logger  customlog.Logger
	running bool
	mu      sync.Mutex
}

// NewSender creates a PUB socket bound to bindAddress. A bind failure is
// fatal to the caller: no commands can be delivered without the socket.
func NewSender(bindAddress string, logger customlog.Logger) (*Sender, error) {
	socket, err := zmq4.NewSocket(zmq4.PUB)
	if err != nil {
		return nil, fmt.Errorf("failed to create PUB socket: %w", err)
	}

	if err := socket.Bind(bindAddress); err != nil {
		socket.Close()
		return nil, fmt.Errorf("failed to bind to %s: %w", bindAddress, err)
	}

	if err := socket.SetLinger(0); err != nil {
		socket.Close()
		return nil, fmt.Errorf("failed to set linger option: %w", err)
	}

	logger.Infof("ZeroMQ sender bound to %s", bindAddress)

	return &Sender{
		socket:  socket,
		logger:  logger,
		running: true,
	}, nil
}

// Publish sends the payload under the given topic.
func (s *Sender) Publish(topic string, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return ErrSenderClosed
	}

	if _, err := s.socket.Send(topic, zmq4.SNDMORE); err != nil {
		return fmt.Errorf("failed to send topic: %w", err)
	}
	if _, err := s.socket.SendBytes(payload, 0); err != nil {
		return fmt.Errorf("failed to send payload: %w", err)
	}

	return nil
}

// Close releases the socket. In-flight messages are not awaited (linger 0).
func (s *Sender) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.running = false
	if s.socket != nil {
		s.socket.Close()
		s.socket = nil
	}
}
