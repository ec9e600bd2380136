package service

import (
	"context"

	"github.com/bibbank/fraudwatch/internal/domain/model"
)

// Rule signals, in evaluation order.
const (
	SignalLargeTransfer    = "large_transfer"
	SignalLargeCashOut     = "large_cash_out"
	SignalBalanceMismatch  = "balance_mismatch"
	SignalEmptyDestination = "empty_destination"
)

// RuleScorer is a domain service that scores transactions with fixed
// rule-based heuristics. It is stateless and never returns an error.
type RuleScorer struct{}

// NewRuleScorer creates a new RuleScorer instance.
func NewRuleScorer() *RuleScorer {
	return &RuleScorer{}
}

// Score evaluates every rule independently and accumulates their points.
// A record is flagged when the total exceeds FlagThreshold; confidence is the
// total capped at MaxConfidence.
func (s *RuleScorer) Score(_ context.Context, r model.TransactionRecord) (model.Verdict, error) {
	score := 0
	signals := make([]string, 0)

	// Rule: large transfer.
	if r.Type == model.TypeTransfer && r.Amount > 100000 {
		score += 30
		signals = append(signals, SignalLargeTransfer)
	}

	// Rule: large cash-out.
	if r.Type == model.TypeCashOut && r.Amount > 50000 {
		score += 25
		signals = append(signals, SignalLargeCashOut)
	}

	// Rule: origin ledger identity does not hold. Exact comparison; rounding
	// noise in the source data fires this rule too.
	if r.OldBalanceOrig-r.Amount != r.NewBalanceOrig {
		score += 40
		signals = append(signals, SignalBalanceMismatch)
	}

	// Rule: destination still empty after receiving funds.
	if (r.Type == model.TypeTransfer || r.Type == model.TypeCashIn) && r.NewBalanceDest == 0 {
		score += 35
		signals = append(signals, SignalEmptyDestination)
	}

	confidence := score
	if confidence > MaxConfidence {
		confidence = MaxConfidence
	}

	return model.Verdict{
		Flagged:    score > FlagThreshold,
		Confidence: confidence,
		Signals:    signals,
	}, nil
}
