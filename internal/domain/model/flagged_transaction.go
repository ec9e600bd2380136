package model

import (
	"fmt"
	"time"
)

// Verdict is the output of a single scoring call.
type Verdict struct {
	Signals    []string
	Confidence int
	Flagged    bool
}

// FlaggedTransaction is a transaction the scorer judged fraudulent. ID and
// DetectedAt are zero on candidates and assigned by the repository on write.
type FlaggedTransaction struct {
	DetectedAt time.Time `json:"detected_at"`
	TransactionRecord
	ID           int64 `json:"id"`
	Confidence   int   `json:"prediction_confidence"`
	FlaggedFraud bool  `json:"isFlaggedFraud"`
}

// NewFlaggedCandidate builds an unpersisted flagged record from a scored row.
func NewFlaggedCandidate(record TransactionRecord, verdict Verdict) FlaggedTransaction {
	return FlaggedTransaction{
		TransactionRecord: record,
		Confidence:        verdict.Confidence,
		FlaggedFraud:      true,
	}
}

// Validate checks the invariants a row must satisfy before it is persisted.
func (f FlaggedTransaction) Validate() error {
	if f.Confidence < 0 || f.Confidence > 100 {
		return fmt.Errorf("confidence must be between 0 and 100, got %d", f.Confidence)
	}
	if f.Step < 0 {
		return fmt.Errorf("step must be non-negative, got %d", f.Step)
	}
	for name, v := range map[string]float64{
		"amount":         f.Amount,
		"oldbalanceOrg":  f.OldBalanceOrig,
		"newbalanceOrig": f.NewBalanceOrig,
		"oldbalanceDest": f.OldBalanceDest,
		"newbalanceDest": f.NewBalanceDest,
	} {
		if !IsFinite(v) {
			return fmt.Errorf("%s must be a finite number, got %v", name, v)
		}
	}
	return nil
}

// ProcessingLog is the audit row written once per batch.
type ProcessingLog struct {
	ProcessedAt       time.Time `json:"processed_at"`
	Filename          string    `json:"filename"`
	ID                int64     `json:"id"`
	TotalTransactions int       `json:"total_transactions"`
	FraudulentCount   int       `json:"fraudulent_count"`
}

// BatchResult is the in-memory outcome of scoring one batch.
type BatchResult struct {
	Filename          string
	Flagged           []FlaggedTransaction
	TotalTransactions int
	FailedCount       int
}

// FraudulentCount returns the number of flagged records.
func (b BatchResult) FraudulentCount() int {
	return len(b.Flagged)
}

// FraudRate returns the flagged share of the batch as a percentage.
// An empty batch has a rate of zero.
func (b BatchResult) FraudRate() float64 {
	if b.TotalTransactions == 0 {
		return 0
	}
	return float64(len(b.Flagged)) / float64(b.TotalTransactions) * 100
}
