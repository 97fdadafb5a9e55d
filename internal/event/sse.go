package event

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/huurnet/huurnet-BE/internal/metrics"
)

// sendTimeout bounds how long a broadcast waits on one slow client before
// dropping the event for that client.
const sendTimeout = 3 * time.Second

type SSEServer struct {
	clients map[string]map[chan Event]bool
	events  chan Event
	mu      sync.Mutex
}

func NewSSEServer() EventSender {
	return &SSEServer{
		clients: make(map[string]map[chan Event]bool),
		events:  make(chan Event, 64),
	}
}

// Register subscribes a client channel to a topic.
func (s *SSEServer) Register(topic string, client chan Event) {
	s.mu.Lock()
	if _, ok := s.clients[topic]; !ok {
		s.clients[topic] = make(map[chan Event]bool)
	}
	s.clients[topic][client] = true
	total := len(s.clients[topic])
	s.mu.Unlock()

	metrics.RealtimeClients.Inc()
	log.Info().Str("topic", topic).Int("clients", total).Msg("realtime client registered")
}

// Unregister removes a client channel from a topic and closes it.
func (s *SSEServer) Unregister(topic string, client chan Event) {
	s.mu.Lock()
	if clients, ok := s.clients[topic]; ok {
		if clients[client] {
			delete(clients, client)
			close(client)
			metrics.RealtimeClients.Dec()
		}
		if len(clients) == 0 {
			delete(s.clients, topic)
		}
	}
	remaining := len(s.clients[topic])
	s.mu.Unlock()

	log.Info().Str("topic", topic).Int("clients", remaining).Msg("realtime client unregistered")
}

// Broadcast queues an event for delivery to all clients of its topic.
func (s *SSEServer) Broadcast(event Event) {
	s.events <- event
}

// Run processes the event stream. It must be started once, in its own goroutine.
func (s *SSEServer) Run() {
	for event := range s.events {
		s.mu.Lock()
		clients := make([]chan Event, 0, len(s.clients[event.Topic]))
		for client := range s.clients[event.Topic] {
			clients = append(clients, client)
		}
		s.mu.Unlock()

		var wg sync.WaitGroup
		for _, client := range clients {
			wg.Add(1)
			go func(c chan Event) {
				defer wg.Done()
				select {
				case c <- event:
				case <-time.After(sendTimeout):
					log.Warn().Str("topic", event.Topic).Str("type", string(event.Type)).
						Msg("dropped event for slow realtime client")
				}
			}(client)
		}
		wg.Wait()
	}
}
