package usecase

import (
	"context"
	"fmt"

	"github.com/bibbank/fraudwatch/internal/application/dto"
	"github.com/bibbank/fraudwatch/internal/domain/port"
)

// DefaultLogLimit is the page size when the caller gives none.
const DefaultLogLimit = 10

// ListLogs is the use case for reading recent processing logs.
type ListLogs struct {
	repo port.FraudRepository
}

// NewListLogs creates a new ListLogs use case.
func NewListLogs(repo port.FraudRepository) *ListLogs {
	return &ListLogs{repo: repo}
}

// Execute returns at most limit processing logs, newest first.
func (uc *ListLogs) Execute(ctx context.Context, limit int) ([]dto.ProcessingLogResponse, error) {
	logs, err := uc.repo.ReadLogs(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to read processing logs: %w", err)
	}
	return dto.FromProcessingLogs(logs), nil
}
