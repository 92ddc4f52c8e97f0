package events

// Message is a single event delivered to a subscriber. Topic carries the
// concrete subject, which matters for wildcard subscriptions like "forge.>".
type Message struct {
	Topic string
	Data  []byte
}

// Subscriber receives events from the event bus.
type Subscriber interface {
	// Subscribe delivers matching events on the returned channel.
	// Call the returned cancel function to unsubscribe and close the channel.
	Subscribe(topic string) (<-chan Message, func(), error)
	Close() error
}
