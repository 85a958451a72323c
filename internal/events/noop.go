package events

import "context"

// NoopPublisher discards every event. It stands in for NATS when no broker
// URL is configured so callers never nil-check the publisher.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, any) error { return nil }

func (NoopPublisher) Close() error { return nil }
