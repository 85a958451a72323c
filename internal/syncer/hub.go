package syncer

import (
	"sort"
	"sync"

	"github.com/groblegark/beadviz/internal/model"
)

// EventType identifies a controller notification.
type EventType string

const (
	EventStatusChange EventType = "statusChange"
	EventSyncComplete EventType = "syncComplete"
	EventSyncError    EventType = "syncError"
)

// Event is a controller notification with a snapshot of the state that
// produced it.
type Event struct {
	Type  EventType       `json:"type"`
	Dir   string          `json:"dir"`
	State model.SyncState `json:"state"`
	Error string          `json:"error,omitempty"`
}

// hub fans controller events out to any number of listeners. Subscribing
// returns an unsubscribe handle; listeners are invoked synchronously in
// subscription order, outside the controller's state lock.
type hub struct {
	mu   sync.Mutex
	next int
	subs map[int]func(Event)
}

func newHub() *hub {
	return &hub{subs: make(map[int]func(Event))}
}

func (h *hub) subscribe(fn func(Event)) func() {
	h.mu.Lock()
	id := h.next
	h.next++
	h.subs[id] = fn
	h.mu.Unlock()

	return func() {
		h.mu.Lock()
		delete(h.subs, id)
		h.mu.Unlock()
	}
}

func (h *hub) publish(e Event) {
	h.mu.Lock()
	fns := make([]func(Event), 0, len(h.subs))
	ids := make([]int, 0, len(h.subs))
	for id := range h.subs {
		ids = append(ids, id)
	}
	// Map iteration order is random; deliver in subscription order.
	sort.Ints(ids)
	for _, id := range ids {
		fns = append(fns, h.subs[id])
	}
	h.mu.Unlock()

	for _, fn := range fns {
		fn(e)
	}
}
