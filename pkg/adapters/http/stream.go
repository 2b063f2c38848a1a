package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/aretw0/pixelpilot/pkg/domain"
)

// Broadcaster fans engine events out to SSE subscribers. It implements
// ports.EventSink; slow subscribers lose events instead of blocking the tick.
type Broadcaster struct {
	mu          sync.RWMutex
	subscribers map[chan domain.Event]struct{}
}

// NewBroadcaster creates an empty broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subscribers: make(map[chan domain.Event]struct{}),
	}
}

// Subscribe registers a buffered channel. The returned function unsubscribes
// and closes the channel.
func (b *Broadcaster) Subscribe(buffer int) (<-chan domain.Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan domain.Event, buffer)
	b.subscribers[ch] = struct{}{}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subscribers, ch)
			close(ch)
		})
	}
}

// Subscribers reports the number of active subscriptions.
func (b *Broadcaster) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

func (b *Broadcaster) Emit(_ context.Context, ev domain.Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subscribers {
		select {
		case ch <- ev:
		default:
		}
	}
}

// SubscribeEvents handles the GET /events request (SSE).
// The optional "types" query parameter filters by comma-separated event type.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request, params SubscribeEventsParams) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	var filter map[domain.EventType]bool
	if params.Types != nil && *params.Types != "" {
		filter = make(map[domain.EventType]bool)
		for _, t := range strings.Split(*params.Types, ",") {
			filter[domain.EventType(strings.TrimSpace(t))] = true
		}
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	events, cancel := s.Streams.Subscribe(64)
	defer cancel()
	s.logger.Debug("SSE client connected", "filters", len(filter))

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("SSE client disconnected")
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if filter != nil && !filter[ev.Type] {
				continue
			}
			data, err := json.Marshal(ev)
			if err != nil {
				s.logger.Log(r.Context(), slog.LevelError, "SSE encode failed", "error", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, data)
			flusher.Flush()
		}
	}
}
