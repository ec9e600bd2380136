package port

import (
	"context"
	"time"

	"github.com/bibbank/fraudwatch/internal/domain/model"
	"github.com/bibbank/fraudwatch/pkg/events"
)

// FraudRepository defines the persistence port for flagged transactions and
// per-batch processing logs. Every method is atomic per call.
type FraudRepository interface {
	// WriteBatch inserts the log row and every flagged row as one unit.
	// On any error nothing from the batch is visible.
	WriteBatch(ctx context.Context, flagged []model.FlaggedTransaction, filename string, totalTransactions int) (model.ProcessingLog, error)

	// ReadFlagged returns at most limit rows, newest first by ID.
	ReadFlagged(ctx context.Context, limit int) ([]model.FlaggedTransaction, error)

	// ReadLogs returns at most limit logs, newest first by ID.
	ReadLogs(ctx context.Context, limit int) ([]model.ProcessingLog, error)

	// ClearAll deletes every flagged row and log. IDs are never reused.
	ClearAll(ctx context.Context) error

	// Ping reports whether the underlying store is reachable.
	Ping(ctx context.Context) error
}

// EventPublisher defines the port for publishing domain events.
type EventPublisher interface {
	// Publish sends one or more domain events to the messaging infrastructure.
	Publish(ctx context.Context, events ...events.DomainEvent) error
}

// Classifier is a trained binary model. Predict returns 0 or 1 for one
// feature vector ordered as Features().
type Classifier interface {
	Features() []string
	Predict(ctx context.Context, features []float64) (int, error)
}

// StatisticsCache holds the last computed statistics between writes.
// Get reports the generation it observed (nil stats on a miss); Set stores
// only if no Invalidate has happened since that generation was read.
type StatisticsCache interface {
	Get(ctx context.Context) (stats *model.Statistics, generation uint64, err error)
	Set(ctx context.Context, generation uint64, stats model.Statistics) error
	Invalidate(ctx context.Context) error
}

// BatchRecorder receives per-batch measurements.
type BatchRecorder interface {
	RecordBatch(result model.BatchResult, duration time.Duration, err error)
}
