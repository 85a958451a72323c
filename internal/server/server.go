// Package server exposes the graph, issue, and sync operations over HTTP.
// It owns no issue data: reads proxy the tracker gateway, mutations proxy
// the gateway and enqueue a debounced sync, and an SSE endpoint streams
// lifecycle events to connected visualizers.
package server

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/groblegark/beadviz/internal/events"
	"github.com/groblegark/beadviz/internal/history"
	"github.com/groblegark/beadviz/internal/syncer"
	"github.com/groblegark/beadviz/internal/tracker"
)

// HistoryLister is the slice of the history store the server needs.
// Optional; when nil the history endpoint reports 404.
type HistoryLister interface {
	List(ctx context.Context, dir string, limit int) ([]*history.Record, error)
}

// VizServer wires the tracker gateway, sync controller, and event fan-out
// behind the HTTP API.
type VizServer struct {
	tracker    tracker.Gateway
	controller *syncer.Controller
	publisher  events.Publisher
	history    HistoryLister
	sseHub     *sseHub
	logger     *slog.Logger

	unsubscribe func()
}

// NewVizServer returns a server over the given collaborators. history may be
// nil. Controller events are forwarded to SSE subscribers until Close.
func NewVizServer(tr tracker.Gateway, ctrl *syncer.Controller, pub events.Publisher, hist HistoryLister) *VizServer {
	if pub == nil {
		pub = &events.NoopPublisher{}
	}
	s := &VizServer{
		tracker:    tr,
		controller: ctrl,
		publisher:  pub,
		history:    hist,
		sseHub:     newSSEHub(),
		logger:     slog.Default(),
	}
	s.unsubscribe = ctrl.Subscribe(s.forwardSyncEvent)
	return s
}

// Close detaches the server from the controller's event feed.
func (s *VizServer) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
}

// NotifyGraphUpdated reports an out-of-band storage change (another process
// edited the tracker's files) to event subscribers.
func (s *VizServer) NotifyGraphUpdated(dir string) {
	s.publishAndBroadcast(context.Background(), events.TopicGraphUpdated, events.GraphUpdated{Dir: dir})
}

// forwardSyncEvent maps controller notifications onto SSE topics.
func (s *VizServer) forwardSyncEvent(e syncer.Event) {
	switch e.Type {
	case syncer.EventStatusChange:
		s.broadcastEvent(events.TopicSyncStatusChanged, events.SyncStatusChanged{Dir: e.Dir, Status: e.State.Status})
	case syncer.EventSyncComplete:
		evt := events.SyncCompleted{Dir: e.Dir}
		if e.State.LastSync != nil {
			evt.CompletedAt = *e.State.LastSync
		}
		s.broadcastEvent(events.TopicSyncCompleted, evt)
	case syncer.EventSyncError:
		s.broadcastEvent(events.TopicSyncFailed, events.SyncFailed{Dir: e.Dir, Error: e.Error})
	}
}

// publishAndBroadcast publishes an event to the external bus and fans it out
// to SSE clients. Both are best-effort; failures are logged.
func (s *VizServer) publishAndBroadcast(ctx context.Context, topic string, event any) {
	if err := s.publisher.Publish(ctx, topic, event); err != nil {
		s.logger.Warn("failed to publish event", "topic", topic, "error", err)
	}
	s.broadcastEvent(topic, event)
}

// broadcastEvent fans an event out to SSE clients.
func (s *VizServer) broadcastEvent(topic string, event any) {
	if s.sseHub == nil {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Warn("failed to marshal event for SSE broadcast", "topic", topic, "error", err)
		return
	}
	s.sseHub.broadcast(topic, payload)
}
