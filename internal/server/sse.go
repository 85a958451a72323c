package server

import (
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"
)

// sseKeepaliveInterval is how often keepalive comments go out so proxies
// don't reap idle connections.
const sseKeepaliveInterval = 15 * time.Second

// sseClientBuffer is the per-client event buffer. A consumer that falls
// this far behind starts losing events.
const sseClientBuffer = 64

// sseEvent is one event on its way to a connected client.
type sseEvent struct {
	ID    uint64
	Topic string
	Data  []byte
}

// sseClient is one connected consumer with optional topic filters.
type sseClient struct {
	topics []string
	ch     chan *sseEvent
}

// sseHub fans events out to connected clients. IDs are assigned in
// broadcast order under the hub lock so every client observes the same
// monotonic sequence.
type sseHub struct {
	mu      sync.Mutex
	seq     uint64
	clients map[*sseClient]struct{}
}

func newSSEHub() *sseHub {
	return &sseHub{clients: make(map[*sseClient]struct{})}
}

func (h *sseHub) subscribe(topics []string) *sseClient {
	c := &sseClient{topics: topics, ch: make(chan *sseEvent, sseClientBuffer)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	return c
}

func (h *sseHub) unsubscribe(c *sseClient) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
}

// broadcast never blocks: a full client buffer means the event is dropped
// for that client.
func (h *sseHub) broadcast(topic string, payload []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.seq++
	evt := &sseEvent{ID: h.seq, Topic: topic, Data: payload}
	for c := range h.clients {
		if !matchAnyTopic(c.topics, topic) {
			continue
		}
		select {
		case c.ch <- evt:
		default:
		}
	}
}

// matchAnyTopic reports whether topic matches any of the patterns. No
// patterns means match everything.
func matchAnyTopic(patterns []string, topic string) bool {
	if len(patterns) == 0 {
		return true
	}
	for _, p := range patterns {
		if matchTopicPattern(p, topic) {
			return true
		}
	}
	return false
}

// matchTopicPattern matches a dot-separated topic against a NATS-style
// pattern: "*" matches exactly one segment, a trailing ">" matches one or
// more remaining segments.
func matchTopicPattern(pattern, topic string) bool {
	for {
		p, pRest, pMore := strings.Cut(pattern, ".")
		t, tRest, tMore := strings.Cut(topic, ".")
		if p == ">" {
			return true
		}
		if p != "*" && p != t {
			return false
		}
		if !pMore || !tMore {
			return pMore == tMore
		}
		pattern, topic = pRest, tRest
	}
}

// handleEventStream serves GET /v1/events/stream. The optional "topics"
// query parameter is a comma-separated list of patterns.
func (s *VizServer) handleEventStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	client := s.sseHub.subscribe(splitTopics(r.URL.Query().Get("topics")))
	defer s.sseHub.unsubscribe(client)

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	keepalive := time.NewTicker(sseKeepaliveInterval)
	defer keepalive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case evt := <-client.ch:
			fmt.Fprintf(w, "id:%d\nevent:%s\ndata:%s\n\n", evt.ID, evt.Topic, evt.Data)
			flusher.Flush()
		case <-keepalive.C:
			fmt.Fprint(w, ":keepalive\n\n")
			flusher.Flush()
		}
	}
}

func splitTopics(q string) []string {
	if q == "" {
		return nil
	}
	var topics []string
	for _, t := range strings.Split(q, ",") {
		if t = strings.TrimSpace(t); t != "" {
			topics = append(topics, t)
		}
	}
	return topics
}
