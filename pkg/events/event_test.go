package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewBaseEvent(t *testing.T) {
	before := time.Now().UTC()
	event := NewBaseEvent("fraud.batch.processed", "42", "ProcessingLog")
	after := time.Now().UTC()

	if event.EventID() == uuid.Nil {
		t.Error("expected non-nil event ID")
	}
	if event.EventType() != "fraud.batch.processed" {
		t.Errorf("expected event type %q, got %q", "fraud.batch.processed", event.EventType())
	}
	if event.AggregateID() != "42" {
		t.Errorf("expected aggregate ID %q, got %q", "42", event.AggregateID())
	}
	if event.AggregateType() != "ProcessingLog" {
		t.Errorf("expected aggregate type %q, got %q", "ProcessingLog", event.AggregateType())
	}
	if event.OccurredAt().Before(before) || event.OccurredAt().After(after) {
		t.Errorf("expected occurredAt between %v and %v, got %v", before, after, event.OccurredAt())
	}
}

func TestBaseEventImplementsDomainEvent(t *testing.T) {
	var _ DomainEvent = BaseEvent{}
}

func TestBaseEventJSONEnvelope(t *testing.T) {
	event := NewBaseEvent("fraud.data.cleared", "all", "FraudRepository")

	payload, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("unexpected marshal error: %v", err)
	}

	var parsed map[string]interface{}
	if err := json.Unmarshal(payload, &parsed); err != nil {
		t.Fatalf("expected valid JSON payload, got error: %v", err)
	}
	for _, key := range []string{"event_id", "event_type", "aggregate_id", "aggregate_type", "occurred_at"} {
		if _, ok := parsed[key]; !ok {
			t.Errorf("expected key %q in envelope", key)
		}
	}
}

func TestOutbox(t *testing.T) {
	var o Outbox

	o.Add(NewBaseEvent("a", "1", "X"))
	o.Add(NewBaseEvent("b", "2", "X"), NewBaseEvent("a", "3", "X"))

	if got := o.Len(); got != 3 {
		t.Fatalf("expected 3 events, got %d", got)
	}
	counts := o.CountByType()
	if counts["a"] != 2 || counts["b"] != 1 {
		t.Errorf("unexpected counts: %v", counts)
	}

	drained := o.Drain()
	if len(drained) != 3 {
		t.Fatalf("expected 3 drained events, got %d", len(drained))
	}
	if drained[0].AggregateID() != "1" || drained[2].AggregateID() != "3" {
		t.Error("expected events in the order added")
	}
	if o.Len() != 0 || o.Drain() != nil {
		t.Error("expected the outbox to be empty after Drain")
	}
}

func TestHeaders(t *testing.T) {
	evt := NewBaseEvent("fraud.data.cleared", "all", "FraudStore")
	h := Headers(evt)

	if h[HeaderEventID] != evt.ID.String() {
		t.Errorf("expected event id header %q, got %q", evt.ID, h[HeaderEventID])
	}
	if h[HeaderEventType] != "fraud.data.cleared" {
		t.Errorf("unexpected event type header %q", h[HeaderEventType])
	}
	if h[HeaderAggregateType] != "FraudStore" {
		t.Errorf("unexpected aggregate type header %q", h[HeaderAggregateType])
	}
	if h[HeaderContentType] != ContentTypeJSON {
		t.Errorf("unexpected content type %q", h[HeaderContentType])
	}
	occurred, err := time.Parse(time.RFC3339Nano, h[HeaderOccurredAt])
	if err != nil || !occurred.Equal(evt.Timestamp) {
		t.Errorf("occurred_at header %q does not round-trip: %v", h[HeaderOccurredAt], err)
	}
}
