package service

import (
	"context"
	"log/slog"

	"github.com/bibbank/fraudwatch/internal/domain/model"
)

// FallbackScorer runs a primary strategy and falls back to a secondary one
// when the primary fails, e.g. classifier first with rules behind it.
type FallbackScorer struct {
	primary   Scorer
	secondary Scorer
	logger    *slog.Logger
}

// NewFallbackScorer creates a FallbackScorer over two strategies.
func NewFallbackScorer(primary, secondary Scorer, logger *slog.Logger) *FallbackScorer {
	return &FallbackScorer{
		primary:   primary,
		secondary: secondary,
		logger:    logger,
	}
}

// Score evaluates with the primary scorer, using the secondary on error.
func (f *FallbackScorer) Score(ctx context.Context, r model.TransactionRecord) (model.Verdict, error) {
	verdict, err := f.primary.Score(ctx, r)
	if err == nil {
		return verdict, nil
	}

	f.logger.WarnContext(ctx, "primary scorer failed, using fallback scoring",
		slog.String("error", err.Error()),
	)

	return f.secondary.Score(ctx, r)
}
