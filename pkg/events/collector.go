package events

// Batch accumulates the events raised by every aggregate one operation
// touched, in the order they were added. An event added twice is kept once.
type Batch struct {
	events []DomainEvent
	seen   map[string]struct{}
}

// Add appends events, skipping nil values and ids already in the batch.
func (b *Batch) Add(events ...DomainEvent) {
	for _, e := range events {
		if e == nil {
			continue
		}
		if _, dup := b.seen[e.EventID()]; dup {
			continue
		}
		if b.seen == nil {
			b.seen = make(map[string]struct{})
		}
		b.seen[e.EventID()] = struct{}{}
		b.events = append(b.events, e)
	}
}

// Len reports how many events are pending.
func (b *Batch) Len() int { return len(b.events) }

// Drain returns the pending events and resets the batch.
func (b *Batch) Drain() []DomainEvent {
	out := b.events
	b.events, b.seen = nil, nil
	return out
}
