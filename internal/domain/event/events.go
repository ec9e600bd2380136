package event

import (
	"strconv"
	"time"

	"github.com/bibbank/fraudwatch/internal/domain/model"
	"github.com/bibbank/fraudwatch/pkg/events"
)

const (
	// EventTypeBatchProcessed is emitted after a batch and its log row commit.
	EventTypeBatchProcessed = "fraud.batch.processed"

	// EventTypeHighRiskDetected is emitted per stored row at CRITICAL risk.
	EventTypeHighRiskDetected = "fraud.high_risk.detected"

	// EventTypeDataCleared is emitted after every flagged row and log is deleted.
	EventTypeDataCleared = "fraud.data.cleared"
)

// BatchProcessed is published once a scored batch has been persisted.
type BatchProcessed struct {
	ProcessedAt time.Time      `json:"processed_at"`
	RiskLevels  map[string]int `json:"risk_levels"`
	Filename    string         `json:"filename"`
	events.BaseEvent
	LogID             int64 `json:"log_id"`
	TotalTransactions int   `json:"total_transactions"`
	FraudulentCount   int   `json:"fraudulent_count"`
	FailedCount       int   `json:"failed_count"`
}

// NewBatchProcessed creates a BatchProcessed event keyed by the log row ID.
func NewBatchProcessed(
	logID int64,
	filename string,
	total, fraudulent, failed int,
	riskLevels map[string]int,
	processedAt time.Time,
) BatchProcessed {
	return BatchProcessed{
		BaseEvent:         events.NewBaseEvent(EventTypeBatchProcessed, strconv.FormatInt(logID, 10), "ProcessingLog"),
		LogID:             logID,
		Filename:          filename,
		TotalTransactions: total,
		FraudulentCount:   fraudulent,
		FailedCount:       failed,
		RiskLevels:        riskLevels,
		ProcessedAt:       processedAt,
	}
}

// HighRiskDetected is published for each CRITICAL row of a stored batch.
type HighRiskDetected struct {
	Type     string `json:"transaction_type"`
	NameOrig string `json:"name_orig,omitempty"`
	NameDest string `json:"name_dest,omitempty"`
	events.BaseEvent
	Amount     float64 `json:"amount"`
	LogID      int64   `json:"log_id"`
	Step       int64   `json:"step"`
	Confidence int     `json:"confidence"`
}

// NewHighRiskDetected creates a HighRiskDetected event for one flagged row of
// the batch identified by logID.
func NewHighRiskDetected(logID int64, f model.FlaggedTransaction) HighRiskDetected {
	return HighRiskDetected{
		BaseEvent:  events.NewBaseEvent(EventTypeHighRiskDetected, strconv.FormatInt(logID, 10), "ProcessingLog"),
		LogID:      logID,
		Step:       f.Step,
		Type:       f.Type.String(),
		Amount:     f.Amount,
		NameOrig:   f.NameOrig,
		NameDest:   f.NameDest,
		Confidence: f.Confidence,
	}
}

// DataCleared is published after an administrative reset of the store.
type DataCleared struct {
	ClearedAt time.Time `json:"cleared_at"`
	events.BaseEvent
}

// NewDataCleared creates a DataCleared event.
func NewDataCleared(clearedAt time.Time) DataCleared {
	return DataCleared{
		BaseEvent: events.NewBaseEvent(EventTypeDataCleared, "all", "FraudRepository"),
		ClearedAt: clearedAt,
	}
}
