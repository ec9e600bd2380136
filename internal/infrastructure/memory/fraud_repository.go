package memory

import (
	"context"
	"sync"
	"time"

	"github.com/bibbank/fraudwatch/internal/domain/model"
)

// FraudRepository is an in-process port.FraudRepository. It backs local runs
// without DATABASE_URL and the use case tests. ID counters survive ClearAll
// so IDs are never reused.
type FraudRepository struct {
	now     func() time.Time
	flagged []model.FlaggedTransaction
	logs    []model.ProcessingLog
	mu      sync.RWMutex
	nextTx  int64
	nextLog int64
}

// NewFraudRepository creates an empty in-memory repository.
func NewFraudRepository() *FraudRepository {
	return &FraudRepository{
		now:     func() time.Time { return time.Now().UTC() },
		nextTx:  1,
		nextLog: 1,
	}
}

// WriteBatch validates every row before touching state, so a rejected batch
// leaves no rows behind and consumes no IDs.
func (r *FraudRepository) WriteBatch(ctx context.Context, flagged []model.FlaggedTransaction, filename string, totalTransactions int) (model.ProcessingLog, error) {
	if err := ctx.Err(); err != nil {
		return model.ProcessingLog{}, model.NewStorageError("write batch", err)
	}
	for _, f := range flagged {
		if err := f.Validate(); err != nil {
			return model.ProcessingLog{}, model.NewStorageError("write batch", err)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	for _, f := range flagged {
		f.ID = r.nextTx
		f.DetectedAt = now
		f.FlaggedFraud = true
		r.nextTx++
		r.flagged = append(r.flagged, f)
	}

	log := model.ProcessingLog{
		ID:                r.nextLog,
		Filename:          filename,
		TotalTransactions: totalTransactions,
		FraudulentCount:   len(flagged),
		ProcessedAt:       now,
	}
	r.nextLog++
	r.logs = append(r.logs, log)

	return log, nil
}

// ReadFlagged returns at most limit rows, newest first.
func (r *FraudRepository) ReadFlagged(ctx context.Context, limit int) ([]model.FlaggedTransaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, model.NewStorageError("read flagged", err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	n := clamp(limit, len(r.flagged))
	out := make([]model.FlaggedTransaction, 0, n)
	for i := len(r.flagged) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, r.flagged[i])
	}
	return out, nil
}

// ReadLogs returns at most limit logs, newest first.
func (r *FraudRepository) ReadLogs(ctx context.Context, limit int) ([]model.ProcessingLog, error) {
	if err := ctx.Err(); err != nil {
		return nil, model.NewStorageError("read logs", err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	n := clamp(limit, len(r.logs))
	out := make([]model.ProcessingLog, 0, n)
	for i := len(r.logs) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, r.logs[i])
	}
	return out, nil
}

// ClearAll drops every row. The ID counters keep their values.
func (r *FraudRepository) ClearAll(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return model.NewStorageError("clear all", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.flagged = nil
	r.logs = nil
	return nil
}

// Ping always succeeds while the context is live.
func (r *FraudRepository) Ping(ctx context.Context) error {
	return ctx.Err()
}

func clamp(limit, n int) int {
	if limit < 0 {
		return 0
	}
	if limit > n {
		return n
	}
	return limit
}
