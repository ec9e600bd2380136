package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bibbank/fraudwatch/internal/application/dto"
	"github.com/bibbank/fraudwatch/internal/domain/model"
	"github.com/bibbank/fraudwatch/internal/domain/port"
	"github.com/bibbank/fraudwatch/internal/domain/service"
)

// StatisticsSampleSize is how many of the newest flagged rows the summary
// views are computed over.
const StatisticsSampleSize = 1000

// statisticsSource computes the summary views, going through the cache.
// Cache errors degrade to a fresh computation.
type statisticsSource struct {
	repo   port.FraudRepository
	cache  port.StatisticsCache
	logger *slog.Logger
}

func (s statisticsSource) load(ctx context.Context) (model.Statistics, error) {
	cached, gen, err := s.cache.Get(ctx)
	cacheOK := err == nil
	if err != nil {
		s.logger.WarnContext(ctx, "statistics cache read failed", slog.String("error", err.Error()))
	}
	if cached != nil {
		return *cached, nil
	}

	sample, err := s.repo.ReadFlagged(ctx, StatisticsSampleSize)
	if err != nil {
		return model.Statistics{}, fmt.Errorf("failed to read statistics sample: %w", err)
	}

	stats := service.Aggregate(sample)

	// Without a generation from Get the write could outlive an invalidation.
	if !cacheOK {
		return stats, nil
	}
	if err := s.cache.Set(ctx, gen, stats); err != nil {
		s.logger.WarnContext(ctx, "statistics cache write failed", slog.String("error", err.Error()))
	}
	return stats, nil
}

// GetStatistics is the use case for the dashboard summary.
type GetStatistics struct {
	source statisticsSource
}

// NewGetStatistics creates a new GetStatistics use case.
func NewGetStatistics(repo port.FraudRepository, cache port.StatisticsCache, logger *slog.Logger) *GetStatistics {
	return &GetStatistics{source: statisticsSource{repo: repo, cache: cache, logger: logger}}
}

// Execute returns the by-step, by-type and amount-range views with totals.
func (uc *GetStatistics) Execute(ctx context.Context) (dto.StatisticsResponse, error) {
	stats, err := uc.source.load(ctx)
	if err != nil {
		return dto.StatisticsResponse{}, err
	}
	return dto.FromStatistics(stats), nil
}
