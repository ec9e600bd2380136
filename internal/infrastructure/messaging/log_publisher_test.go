package messaging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/fraudwatch/internal/domain/event"
)

func TestLogPublisher_Publish(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	pub := NewLogPublisher("fraud.events", logger)

	err := pub.Publish(context.Background(),
		event.NewBatchProcessed(9, "paysim.csv", 4, 1, 0, map[string]int{"HIGH": 1}, time.Now()),
		event.NewDataCleared(time.Now()),
	)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "event_type="+event.EventTypeBatchProcessed)
	assert.Contains(t, out, "event_type="+event.EventTypeDataCleared)
	assert.Contains(t, out, "topic=fraud.events")
	assert.Contains(t, out, "aggregate_id=9")
	assert.Contains(t, out, "paysim.csv")
}

func TestLogPublisher_NoEvents(t *testing.T) {
	var buf bytes.Buffer
	pub := NewLogPublisher("fraud.events", slog.New(slog.NewTextHandler(&buf, nil)))

	require.NoError(t, pub.Publish(context.Background()))
	assert.Empty(t, buf.String())
}
