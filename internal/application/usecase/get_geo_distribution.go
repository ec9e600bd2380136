package usecase

import (
	"context"
	"log/slog"

	"github.com/bibbank/fraudwatch/internal/application/dto"
	"github.com/bibbank/fraudwatch/internal/domain/port"
)

// GetGeoDistribution is the use case for the synthetic geo view.
type GetGeoDistribution struct {
	source statisticsSource
}

// NewGetGeoDistribution creates a new GetGeoDistribution use case.
func NewGetGeoDistribution(repo port.FraudRepository, cache port.StatisticsCache, logger *slog.Logger) *GetGeoDistribution {
	return &GetGeoDistribution{source: statisticsSource{repo: repo, cache: cache, logger: logger}}
}

// Execute returns the geo buckets over the same sample as GetStatistics.
func (uc *GetGeoDistribution) Execute(ctx context.Context) ([]dto.LocationResponse, error) {
	stats, err := uc.source.load(ctx)
	if err != nil {
		return nil, err
	}
	return dto.FromLocations(stats.Geo), nil
}
