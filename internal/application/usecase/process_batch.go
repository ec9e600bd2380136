package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/bibbank/fraudwatch/internal/application/dto"
	"github.com/bibbank/fraudwatch/internal/domain/event"
	"github.com/bibbank/fraudwatch/internal/domain/model"
	"github.com/bibbank/fraudwatch/internal/domain/port"
	"github.com/bibbank/fraudwatch/internal/domain/service"
	"github.com/bibbank/fraudwatch/internal/domain/valueobject"
	"github.com/bibbank/fraudwatch/pkg/events"
)

var tracer = otel.Tracer("fraudwatch/usecase")

// ProcessBatch is the use case for scoring and storing one batch.
type ProcessBatch struct {
	processor *service.BatchProcessor
	repo      port.FraudRepository
	publisher port.EventPublisher
	cache     port.StatisticsCache
	recorder  port.BatchRecorder
	logger    *slog.Logger
}

// NewProcessBatch creates a new ProcessBatch use case.
func NewProcessBatch(
	processor *service.BatchProcessor,
	repo port.FraudRepository,
	publisher port.EventPublisher,
	cache port.StatisticsCache,
	recorder port.BatchRecorder,
	logger *slog.Logger,
) *ProcessBatch {
	return &ProcessBatch{
		processor: processor,
		repo:      repo,
		publisher: publisher,
		cache:     cache,
		recorder:  recorder,
		logger:    logger,
	}
}

// Execute scores the batch, writes the flagged rows and the log atomically,
// then publishes BatchProcessed and drops the cached statistics. Once the
// write commits the batch is durable, so later failures are only logged.
func (uc *ProcessBatch) Execute(ctx context.Context, req dto.ProcessBatchRequest) (dto.ProcessBatchResponse, error) {
	ctx, span := tracer.Start(ctx, "ProcessBatch")
	defer span.End()
	span.SetAttributes(
		attribute.String("batch.filename", req.Filename),
		attribute.Int("batch.records", len(req.Records)),
	)

	start := time.Now()

	// 1. Score every record.
	result, err := uc.processor.Process(ctx, req.Records, req.Filename)
	if err != nil {
		uc.fail(span, result, start, err)
		return dto.ProcessBatchResponse{}, fmt.Errorf("failed to score batch: %w", err)
	}

	// 2. Persist the flagged rows and the processing log as one unit.
	log, err := uc.repo.WriteBatch(ctx, result.Flagged, req.Filename, result.TotalTransactions)
	if err != nil {
		uc.fail(span, result, start, err)
		return dto.ProcessBatchResponse{}, fmt.Errorf("failed to write batch: %w", err)
	}

	uc.recorder.RecordBatch(result, time.Since(start), nil)

	// 3. Publish the domain events.
	var outbox events.Outbox
	outbox.Add(event.NewBatchProcessed(
		log.ID,
		log.Filename,
		result.TotalTransactions,
		result.FraudulentCount(),
		result.FailedCount,
		riskLevelCounts(result.Flagged),
		log.ProcessedAt,
	))
	for _, f := range result.Flagged {
		if valueobject.RiskLevelFromConfidence(f.Confidence).AtLeast(valueobject.RiskLevelCritical) {
			outbox.Add(event.NewHighRiskDetected(log.ID, f))
		}
	}
	counts := outbox.CountByType()
	if err := uc.publisher.Publish(ctx, outbox.Drain()...); err != nil {
		uc.logger.WarnContext(ctx, "failed to publish batch events",
			slog.Int64("log_id", log.ID),
			slog.Any("events", counts),
			slog.String("error", err.Error()),
		)
	}

	// 4. Stale statistics must not outlive the write.
	if err := uc.cache.Invalidate(ctx); err != nil {
		uc.logger.WarnContext(ctx, "failed to invalidate statistics cache",
			slog.String("error", err.Error()),
		)
	}

	uc.logger.InfoContext(ctx, "batch processed",
		slog.Int64("log_id", log.ID),
		slog.String("filename", log.Filename),
		slog.Int("total", result.TotalTransactions),
		slog.Int("fraudulent", result.FraudulentCount()),
		slog.Int("failed", result.FailedCount),
	)

	return dto.FromBatchResult(log, result, req.Records), nil
}

func (uc *ProcessBatch) fail(span trace.Span, result model.BatchResult, start time.Time, err error) {
	span.SetStatus(codes.Error, err.Error())
	uc.recorder.RecordBatch(result, time.Since(start), err)
}

func riskLevelCounts(flagged []model.FlaggedTransaction) map[string]int {
	counts := make(map[string]int)
	for _, f := range flagged {
		counts[valueobject.RiskLevelFromConfidence(f.Confidence).String()]++
	}
	return counts
}
