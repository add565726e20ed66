package core

// EventPublisher is any service that can publish domain events to interested
// consumers. Publishing is best-effort: a failed publish must never affect the
// operation that emitted the event.
type EventPublisher interface {
	// Publish sends events concurrently.
	Publish(events ...Event)
}

// Event is a domain event routed to a named topic.
type Event struct {
	Topic   string
	Payload interface{}
}
