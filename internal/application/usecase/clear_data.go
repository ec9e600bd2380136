package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bibbank/fraudwatch/internal/domain/event"
	"github.com/bibbank/fraudwatch/internal/domain/port"
)

// ClearData is the administrative use case that empties the store.
type ClearData struct {
	repo      port.FraudRepository
	publisher port.EventPublisher
	cache     port.StatisticsCache
	logger    *slog.Logger
}

// NewClearData creates a new ClearData use case.
func NewClearData(repo port.FraudRepository, publisher port.EventPublisher, cache port.StatisticsCache, logger *slog.Logger) *ClearData {
	return &ClearData{
		repo:      repo,
		publisher: publisher,
		cache:     cache,
		logger:    logger,
	}
}

// Execute deletes every flagged row and log. IDs are not reused afterwards.
func (uc *ClearData) Execute(ctx context.Context) error {
	if err := uc.repo.ClearAll(ctx); err != nil {
		return fmt.Errorf("failed to clear data: %w", err)
	}

	if err := uc.cache.Invalidate(ctx); err != nil {
		uc.logger.WarnContext(ctx, "failed to invalidate statistics cache",
			slog.String("error", err.Error()),
		)
	}

	if err := uc.publisher.Publish(ctx, event.NewDataCleared(time.Now().UTC())); err != nil {
		uc.logger.WarnContext(ctx, "failed to publish clear event",
			slog.String("error", err.Error()),
		)
	}

	uc.logger.InfoContext(ctx, "all fraud data cleared")
	return nil
}
