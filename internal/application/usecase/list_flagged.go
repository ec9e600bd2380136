package usecase

import (
	"context"
	"fmt"

	"github.com/bibbank/fraudwatch/internal/application/dto"
	"github.com/bibbank/fraudwatch/internal/domain/port"
	"github.com/bibbank/fraudwatch/internal/domain/valueobject"
)

// DefaultFlaggedLimit is the page size when the caller gives none.
const DefaultFlaggedLimit = 100

// ListFlagged is the use case for reading recent flagged transactions.
type ListFlagged struct {
	repo port.FraudRepository
}

// NewListFlagged creates a new ListFlagged use case.
func NewListFlagged(repo port.FraudRepository) *ListFlagged {
	return &ListFlagged{repo: repo}
}

// Execute returns at most limit flagged transactions, newest first.
func (uc *ListFlagged) Execute(ctx context.Context, limit int) ([]dto.FlaggedTransactionResponse, error) {
	rows, err := uc.repo.ReadFlagged(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to read flagged transactions: %w", err)
	}

	out := make([]dto.FlaggedTransactionResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.FlaggedTransactionResponse{
			FlaggedTransaction: r,
			RiskLevel:          valueobject.RiskLevelFromConfidence(r.Confidence),
		})
	}
	return out, nil
}
