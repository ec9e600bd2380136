package events

// Outbox buffers the events raised while a unit of work runs. Callers drain
// it only after the work commits, so a rolled-back write publishes nothing.
type Outbox struct {
	pending []DomainEvent
}

// Add queues events in the order given.
func (o *Outbox) Add(evts ...DomainEvent) {
	o.pending = append(o.pending, evts...)
}

// Len reports how many events are queued.
func (o *Outbox) Len() int { return len(o.pending) }

// CountByType tallies queued events per event type.
func (o *Outbox) CountByType() map[string]int {
	counts := make(map[string]int, len(o.pending))
	for _, e := range o.pending {
		counts[e.EventType()]++
	}
	return counts
}

// Drain returns the queued events and empties the outbox.
func (o *Outbox) Drain() []DomainEvent {
	out := o.pending
	o.pending = nil
	return out
}
