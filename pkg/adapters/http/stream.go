package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/aretw0/simscope/internal/logging"
	"github.com/aretw0/simscope/pkg/domain"
)

// allEntities is the subscription key of clients that follow every entity.
const allEntities domain.EntityPath = ""

// StreamManager fans breakpoint hits out to SSE clients.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[domain.EntityPath]map[chan<- string]struct{}
	logger      *slog.Logger
}

// StreamOption configures a StreamManager.
type StreamOption func(*StreamManager)

// WithStreamLogger sets the logger for broadcast and subscription events.
func WithStreamLogger(logger *slog.Logger) StreamOption {
	return func(sm *StreamManager) {
		if logger != nil {
			sm.logger = logger
		}
	}
}

func NewStreamManager(opts ...StreamOption) *StreamManager {
	sm := &StreamManager{
		subscribers: make(map[domain.EntityPath]map[chan<- string]struct{}),
		logger:      logging.NewNop(),
	}
	for _, opt := range opts {
		opt(sm)
	}
	return sm
}

// Subscribe registers a client for hits on entity, or on every entity when
// entity is zero. The returned func unsubscribes and closes the channel.
func (sm *StreamManager) Subscribe(entity domain.EntityPath) (chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	if _, ok := sm.subscribers[entity]; !ok {
		sm.subscribers[entity] = make(map[chan<- string]struct{})
	}
	sm.subscribers[entity][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[entity]; ok {
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, entity)
			}
		}
	}
}

// Subscribers returns the number of connected clients.
func (sm *StreamManager) Subscribers() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	n := 0
	for _, subs := range sm.subscribers {
		n += len(subs)
	}
	return n
}

// Broadcast sends msg to the clients of entity and to the catch-all clients.
func (sm *StreamManager) Broadcast(entity domain.EntityPath, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	sm.logger.Debug("StreamManager: Broadcasting", "entity", entity, "payload_size", len(msg))

	keys := []domain.EntityPath{allEntities}
	if entity != allEntities {
		keys = append(keys, entity)
	}
	for _, key := range keys {
		for ch := range sm.subscribers[key] {
			select {
			case ch <- msg:
			default:
				// Slow client.
				sm.logger.Warn("SSE: Client buffer full, dropping message", "entity", entity)
			}
		}
	}
}

// PublishHit encodes hit and broadcasts it. Its signature matches
// domain.Hooks.OnBreakpoint.
func (sm *StreamManager) PublishHit(_ context.Context, hit domain.BreakpointHit) {
	data, err := json.Marshal(hit)
	if err != nil {
		sm.logger.Error("StreamManager: encode hit failed", "error", err)
		return
	}
	sm.Broadcast(hit.Entity, string(data))
}

// SubscribeEvents handles the GET /events request (SSE). The optional entity
// query parameter restricts the stream to one entity.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	entity := allEntities
	if raw := r.URL.Query().Get("entity"); raw != "" {
		p, err := domain.ParseEntityPath(raw)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		entity = p
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	s.logger.Info("SSE: Subscribing to breakpoint hits", "entity", entity)
	ch, cancel := s.Streams.Subscribe(entity)
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE Client Disconnected")
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: breakpoint\ndata: %s\n\n", msg)
			flusher.Flush()
		}
	}
}
