package events

// Subscriber is the consuming half of the event bus. Payloads for a topic
// pattern arrive on the channel returned by Subscribe until its cancel func
// runs, which also closes the channel.
type Subscriber interface {
	Subscribe(topic string) (<-chan []byte, func(), error)
	Close() error
}
