package api

import (
	"encoding/json"
	"sync"

	"github.com/linkerbot/hand-publisher/pkg/hand"
	customlog "github.com/linkerbot/hand-publisher/pkg/log"
)

// CommandStream fans published commands out to WebSocket subscribers. A
// subscriber that cannot keep up has its oldest pending message dropped;
// the stream never blocks the publisher's tick handler.
type CommandStream struct {
	mu     sync.Mutex
	subs   map[chan []byte]struct{}
	logger customlog.Logger
}

const subscriberBuffer = 8

// NewCommandStream creates an empty stream.
func NewCommandStream(logger customlog.Logger) *CommandStream {
	return &CommandStream{
		subs:   make(map[chan []byte]struct{}),
		logger: logger,
	}
}

// Broadcast sends the command, JSON-encoded, to all current subscribers.
func (s *CommandStream) Broadcast(cmd hand.JointCommand) {
	payload, err := json.Marshal(cmd)
	if err != nil {
		s.logger.Errorf("Failed to marshal command for stream: %v", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.subs {
		select {
		case ch <- payload:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- payload:
			default:
			}
		}
	}
}

// subscribe registers a new subscriber channel and returns it with its
// cancel function.
func (s *CommandStream) subscribe() (<-chan []byte, func()) {
	ch := make(chan []byte, subscriberBuffer)

	s.mu.Lock()
	s.subs[ch] = struct{}{}
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		delete(s.subs, ch)
		s.mu.Unlock()
	}
	return ch, cancel
}

// SubscriberCount reports the number of connected stream clients.
func (s *CommandStream) SubscriberCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}
