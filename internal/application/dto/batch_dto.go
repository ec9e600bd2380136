package dto

import (
	"fmt"
	"time"

	"github.com/bibbank/fraudwatch/internal/domain/model"
	"github.com/bibbank/fraudwatch/internal/domain/valueobject"
)

// PreviewSize is the number of input rows echoed back on upload.
const PreviewSize = 10

// ProcessBatchRequest is the input DTO for the ProcessBatch use case.
type ProcessBatchRequest struct {
	Filename string
	Records  []model.TransactionRecord
}

// ProcessBatchResponse is the output DTO returned after a batch is stored.
type ProcessBatchResponse struct {
	Message           string                    `json:"message"`
	FraudRate         string                    `json:"fraud_rate"`
	Preview           []model.TransactionRecord `json:"preview_data"`
	BatchID           int64                     `json:"batch_id"`
	TotalTransactions int                       `json:"total_transactions"`
	FraudulentCount   int                       `json:"fraudulent_count"`
	FailedCount       int                       `json:"failed_count"`
}

// FromBatchResult maps a stored batch to the response DTO.
func FromBatchResult(log model.ProcessingLog, result model.BatchResult, records []model.TransactionRecord) ProcessBatchResponse {
	n := len(records)
	if n > PreviewSize {
		n = PreviewSize
	}
	preview := make([]model.TransactionRecord, n)
	copy(preview, records[:n])

	return ProcessBatchResponse{
		Message:           "File processed successfully",
		BatchID:           log.ID,
		TotalTransactions: result.TotalTransactions,
		FraudulentCount:   result.FraudulentCount(),
		FailedCount:       result.FailedCount,
		FraudRate:         FormatFraudRate(result.FraudRate()),
		Preview:           preview,
	}
}

// FormatFraudRate renders a percentage with two decimals and a percent sign.
func FormatFraudRate(rate float64) string {
	return fmt.Sprintf("%.2f%%", rate)
}

// FlaggedTransactionResponse is one stored flagged transaction with its
// derived risk level.
type FlaggedTransactionResponse struct {
	model.FlaggedTransaction
	RiskLevel valueobject.RiskLevel `json:"risk_level"`
}

// ProcessingLogResponse is one stored processing log.
type ProcessingLogResponse struct {
	ProcessedAt       time.Time `json:"processed_at"`
	Filename          string    `json:"filename"`
	ID                int64     `json:"id"`
	TotalTransactions int       `json:"total_transactions"`
	FraudulentCount   int       `json:"fraudulent_count"`
}

// FromProcessingLogs maps stored logs to response DTOs.
func FromProcessingLogs(logs []model.ProcessingLog) []ProcessingLogResponse {
	out := make([]ProcessingLogResponse, 0, len(logs))
	for _, l := range logs {
		out = append(out, ProcessingLogResponse(l))
	}
	return out
}
