package events

import "time"

// Message header names carried next to every encoded event.
const (
	HeaderEventID       = "event_id"
	HeaderEventType     = "event_type"
	HeaderAggregateType = "aggregate_type"
	HeaderOccurredAt    = "occurred_at"
	HeaderContentType   = "content_type"

	ContentTypeJSON = "application/json"
)

// Headers returns the routing headers for evt. Consumers can filter on them
// without decoding the payload.
func Headers(evt DomainEvent) map[string]string {
	return map[string]string{
		HeaderEventID:       evt.EventID().String(),
		HeaderEventType:     evt.EventType(),
		HeaderAggregateType: evt.AggregateType(),
		HeaderOccurredAt:    evt.OccurredAt().UTC().Format(time.RFC3339Nano),
		HeaderContentType:   ContentTypeJSON,
	}
}
