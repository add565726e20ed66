package streamsvc

import (
	"sync"

	"github.com/trezcool/shule/core"
)

// consolePublisher logs events instead of publishing them. It is the default
// when no broker is configured and doubles as a capture sink in tests.
type consolePublisher struct {
	logger core.Logger

	mu        sync.Mutex
	published []core.Event
}

var _ core.EventPublisher = (*consolePublisher)(nil)

func NewConsolePublisher(logger core.Logger) *consolePublisher {
	return &consolePublisher{logger: logger}
}

func (p *consolePublisher) Publish(events ...core.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, evt := range events {
		p.published = append(p.published, evt)
		p.logger.Debug("event published", map[string]interface{}{"topic": evt.Topic, "payload": evt.Payload})
	}
}

// PublishedEvents returns a copy of all events seen so far.
func (p *consolePublisher) PublishedEvents() []core.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	events := make([]core.Event, len(p.published))
	copy(events, p.published)
	return events
}
