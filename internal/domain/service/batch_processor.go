package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bibbank/fraudwatch/internal/domain/model"
)

// BatchProcessor scores a batch of records and collects the flagged subset.
// It holds no state between calls and never persists anything itself.
type BatchProcessor struct {
	scorer Scorer
	logger *slog.Logger
}

// NewBatchProcessor creates a BatchProcessor around the given scorer.
// A nil scorer is accepted here and reported by Process.
func NewBatchProcessor(scorer Scorer, logger *slog.Logger) *BatchProcessor {
	return &BatchProcessor{
		scorer: scorer,
		logger: logger,
	}
}

// Process scores every record exactly once in input order. Flagged records
// keep their relative input order. A record whose scoring fails is logged,
// counted in FailedCount and left out of the flagged set; the rest of the
// batch continues. TotalTransactions always equals len(records).
func (p *BatchProcessor) Process(ctx context.Context, records []model.TransactionRecord, filename string) (model.BatchResult, error) {
	if p.scorer == nil {
		return model.BatchResult{}, &model.ConfigurationError{Component: "batch processor", Err: model.ErrScorerUnavailable}
	}

	result := model.BatchResult{
		Filename:          filename,
		Flagged:           make([]model.FlaggedTransaction, 0),
		TotalTransactions: len(records),
	}

	for i, record := range records {
		if err := ctx.Err(); err != nil {
			return model.BatchResult{}, fmt.Errorf("batch %q abandoned at record %d: %w", filename, i, err)
		}

		verdict, err := p.scoreOne(ctx, i, record)
		if err != nil {
			result.FailedCount++
			p.logger.WarnContext(ctx, "scoring failed, record excluded",
				slog.String("filename", filename),
				slog.Int("index", i),
				slog.String("error", err.Error()),
			)
			continue
		}

		if verdict.Flagged {
			result.Flagged = append(result.Flagged, model.NewFlaggedCandidate(record, verdict))
		}
	}

	p.logger.DebugContext(ctx, "batch scored",
		slog.String("filename", filename),
		slog.Int("total", result.TotalTransactions),
		slog.Int("flagged", result.FraudulentCount()),
		slog.Int("failed", result.FailedCount),
	)

	return result, nil
}

// scoreOne isolates a single scoring call, turning both errors and panics
// into a ScoringError for that record.
func (p *BatchProcessor) scoreOne(ctx context.Context, index int, record model.TransactionRecord) (verdict model.Verdict, err error) {
	defer func() {
		if r := recover(); r != nil {
			verdict = model.Verdict{}
			err = &model.ScoringError{Index: index, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	verdict, err = p.scorer.Score(ctx, record)
	if err != nil {
		return model.Verdict{}, &model.ScoringError{Index: index, Err: err}
	}
	if verdict.Confidence < 0 || verdict.Confidence > MaxConfidence {
		return model.Verdict{}, &model.ScoringError{Index: index, Err: fmt.Errorf("confidence %d out of range", verdict.Confidence)}
	}
	return verdict, nil
}
