package usecase_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/bibbank/fraudwatch/internal/domain/model"
	"github.com/bibbank/fraudwatch/pkg/events"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type mockFraudRepository struct {
	writeBatchFunc  func(ctx context.Context, flagged []model.FlaggedTransaction, filename string, total int) (model.ProcessingLog, error)
	readFlaggedFunc func(ctx context.Context, limit int) ([]model.FlaggedTransaction, error)
	readLogsFunc    func(ctx context.Context, limit int) ([]model.ProcessingLog, error)
	clearAllFunc    func(ctx context.Context) error
	readLimits      []int
}

func (m *mockFraudRepository) WriteBatch(ctx context.Context, flagged []model.FlaggedTransaction, filename string, total int) (model.ProcessingLog, error) {
	if m.writeBatchFunc != nil {
		return m.writeBatchFunc(ctx, flagged, filename, total)
	}
	return model.ProcessingLog{ID: 1, Filename: filename, TotalTransactions: total, FraudulentCount: len(flagged)}, nil
}

func (m *mockFraudRepository) ReadFlagged(ctx context.Context, limit int) ([]model.FlaggedTransaction, error) {
	m.readLimits = append(m.readLimits, limit)
	if m.readFlaggedFunc != nil {
		return m.readFlaggedFunc(ctx, limit)
	}
	return nil, nil
}

func (m *mockFraudRepository) ReadLogs(ctx context.Context, limit int) ([]model.ProcessingLog, error) {
	if m.readLogsFunc != nil {
		return m.readLogsFunc(ctx, limit)
	}
	return nil, nil
}

func (m *mockFraudRepository) ClearAll(ctx context.Context) error {
	if m.clearAllFunc != nil {
		return m.clearAllFunc(ctx)
	}
	return nil
}

func (m *mockFraudRepository) Ping(_ context.Context) error { return nil }

type mockEventPublisher struct {
	publishFunc     func(ctx context.Context, evts ...events.DomainEvent) error
	publishedEvents []events.DomainEvent
}

func (m *mockEventPublisher) Publish(ctx context.Context, evts ...events.DomainEvent) error {
	if m.publishFunc != nil {
		return m.publishFunc(ctx, evts...)
	}
	m.publishedEvents = append(m.publishedEvents, evts...)
	return nil
}

type mockStatisticsCache struct {
	getErr        error
	setErr        error
	invalidateErr error
	stored        *model.Statistics
	gen           uint64
	gets          int
	sets          int
	invalidations int
}

func (m *mockStatisticsCache) Get(_ context.Context) (*model.Statistics, uint64, error) {
	m.gets++
	if m.getErr != nil {
		return nil, 0, m.getErr
	}
	if m.stored == nil {
		return nil, m.gen, nil
	}
	s := *m.stored
	return &s, m.gen, nil
}

func (m *mockStatisticsCache) Set(_ context.Context, generation uint64, stats model.Statistics) error {
	m.sets++
	if m.setErr != nil {
		return m.setErr
	}
	if generation != m.gen {
		return nil
	}
	m.stored = &stats
	return nil
}

func (m *mockStatisticsCache) Invalidate(_ context.Context) error {
	m.invalidations++
	if m.invalidateErr != nil {
		return m.invalidateErr
	}
	m.gen++
	m.stored = nil
	return nil
}

type recordedBatch struct {
	err    error
	result model.BatchResult
}

type mockBatchRecorder struct {
	batches []recordedBatch
	mu      sync.Mutex
}

func (m *mockBatchRecorder) RecordBatch(result model.BatchResult, _ time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batches = append(m.batches, recordedBatch{result: result, err: err})
}
