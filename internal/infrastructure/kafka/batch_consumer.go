package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/bibbank/fraudwatch/internal/application/dto"
	"github.com/bibbank/fraudwatch/internal/domain/model"
	pkgkafka "github.com/bibbank/fraudwatch/pkg/kafka"
)

// BatchMessage is the payload on the ingest topic: one named batch of raw
// rows, in the same shape the REST JSON upload accepts.
type BatchMessage struct {
	Filename string                 `json:"filename"`
	Records  []model.RawTransaction `json:"records"`
}

// BatchProcessor runs one batch end to end.
type BatchProcessor interface {
	Execute(ctx context.Context, req dto.ProcessBatchRequest) (dto.ProcessBatchResponse, error)
}

// BatchHandler turns ingest-topic messages into ProcessBatch calls.
type BatchHandler struct {
	processor BatchProcessor
	logger    *slog.Logger
}

// NewBatchHandler creates a handler for the ingest topic.
func NewBatchHandler(processor BatchProcessor, logger *slog.Logger) *BatchHandler {
	return &BatchHandler{processor: processor, logger: logger}
}

// Handle decodes one message and processes its batch under the producer's
// trace when the headers carry one. A message that cannot
// be decoded is logged and acknowledged so it does not block the partition.
func (h *BatchHandler) Handle(ctx context.Context, msg pkgkafka.Message) error {
	ctx = otel.GetTextMapPropagator().Extract(ctx, propagation.MapCarrier(msg.Headers))

	var batch BatchMessage
	if err := json.Unmarshal(msg.Value, &batch); err != nil {
		h.logger.WarnContext(ctx, "dropping undecodable batch message",
			slog.String("key", string(msg.Key)),
			slog.String("error", err.Error()),
		)
		return nil
	}

	if batch.Filename == "" {
		batch.Filename = string(msg.Key)
	}

	resp, err := h.processor.Execute(ctx, dto.ProcessBatchRequest{
		Filename: batch.Filename,
		Records:  model.NormalizeAll(batch.Records),
	})
	if err != nil {
		return fmt.Errorf("failed to process batch %q: %w", batch.Filename, err)
	}

	h.logger.InfoContext(ctx, "batch consumed",
		slog.String("filename", batch.Filename),
		slog.Int64("log_id", resp.BatchID),
		slog.Int("total", resp.TotalTransactions),
		slog.Int("fraudulent", resp.FraudulentCount),
	)
	return nil
}
