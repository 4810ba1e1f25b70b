package event

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// clientBuffer is the number of events a slow client may lag behind before events are dropped for it.
const clientBuffer = 16

type SSEServer struct {
	clients map[string]map[chan Event]bool
	events  chan Event
	mu      sync.RWMutex
}

func NewSSEServer() *SSEServer {
	return &SSEServer{
		clients: make(map[string]map[chan Event]bool),
		events:  make(chan Event, 64),
	}
}

// NewClient returns a channel sized for Register.
func NewClient() chan Event {
	return make(chan Event, clientBuffer)
}

// Register subscribes client to topic.
func (s *SSEServer) Register(topic string, client chan Event) {
	s.mu.Lock()
	if _, ok := s.clients[topic]; !ok {
		s.clients[topic] = make(map[chan Event]bool)
	}
	s.clients[topic][client] = true
	total := len(s.clients[topic])
	s.mu.Unlock()

	log.Info().Str("topic", topic).Int("clients", total).Msg("client registered")
}

// Unregister removes client from topic and closes it.
func (s *SSEServer) Unregister(topic string, client chan Event) {
	s.mu.Lock()
	if clients, ok := s.clients[topic]; ok {
		if _, registered := clients[client]; registered {
			delete(clients, client)
			close(client)
		}
		if len(clients) == 0 {
			delete(s.clients, topic)
		}
	}
	remaining := len(s.clients[topic])
	s.mu.Unlock()

	log.Info().Str("topic", topic).Int("clients", remaining).Msg("client unregistered")
}

// Broadcast queues event for delivery by Run.
func (s *SSEServer) Broadcast(event Event) {
	s.events <- event
}

// Run delivers queued events until the process exits.
func (s *SSEServer) Run() {
	for event := range s.events {
		s.deliver(event)
	}
}

// deliver never blocks on a client: a full buffer drops the event for that client only.
func (s *SSEServer) deliver(event Event) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for client := range s.clients[event.Topic] {
		select {
		case client <- event:
		default:
			log.Warn().Str("topic", event.Topic).Str("type", event.Type).Msg("client buffer full, event dropped")
		}
	}
}
