package session

import "sync"

// MemoryPublisher retains published events in memory. It is intended for
// tests and debugging.
type MemoryPublisher struct {
	mu     sync.Mutex
	events []Event
}

// Publish appends e to the retained events.
func (p *MemoryPublisher) Publish(e Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

// Events returns a copy of the retained events in publish order.
func (p *MemoryPublisher) Events() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Event, len(p.events))
	copy(out, p.events)
	return out
}
