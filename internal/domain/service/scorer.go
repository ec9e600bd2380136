package service

import (
	"context"

	"github.com/bibbank/fraudwatch/internal/domain/model"
)

// Scorer defines the interface for fraud scoring strategies.
// RuleScorer, ClassifierScorer and FallbackScorer implement this.
type Scorer interface {
	Score(ctx context.Context, record model.TransactionRecord) (model.Verdict, error)
}

// FlagThreshold is the risk score a record must exceed to be flagged.
const FlagThreshold = 50

// MaxConfidence caps the accumulated risk score.
const MaxConfidence = 100
