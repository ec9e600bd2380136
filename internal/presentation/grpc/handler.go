package grpc

import (
	"context"
	"errors"
	"log/slog"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/bibbank/fraudwatch/internal/application/dto"
	"github.com/bibbank/fraudwatch/internal/application/usecase"
	"github.com/bibbank/fraudwatch/internal/domain/model"
)

// Compile-time assertion that FraudPipelineHandler implements FraudPipelineServiceServer.
var _ FraudPipelineServiceServer = (*FraudPipelineHandler)(nil)

// FraudPipelineHandler implements the gRPC FraudPipelineServiceServer interface.
type FraudPipelineHandler struct {
	UnimplementedFraudPipelineServiceServer
	processBatch  *usecase.ProcessBatch
	listFlagged   *usecase.ListFlagged
	listLogs      *usecase.ListLogs
	getStatistics *usecase.GetStatistics
	getGeo        *usecase.GetGeoDistribution
	clearData     *usecase.ClearData
	logger        *slog.Logger
}

// NewFraudPipelineHandler creates a new gRPC handler.
func NewFraudPipelineHandler(
	processBatch *usecase.ProcessBatch,
	listFlagged *usecase.ListFlagged,
	listLogs *usecase.ListLogs,
	getStatistics *usecase.GetStatistics,
	getGeo *usecase.GetGeoDistribution,
	clearData *usecase.ClearData,
	logger *slog.Logger,
) *FraudPipelineHandler {
	return &FraudPipelineHandler{
		processBatch:  processBatch,
		listFlagged:   listFlagged,
		listLogs:      listLogs,
		getStatistics: getStatistics,
		getGeo:        getGeo,
		clearData:     clearData,
		logger:        logger,
	}
}

// Request/response message types.

// ProcessBatchRequest carries one batch of raw records.
type ProcessBatchRequest struct {
	Filename string                 `json:"filename"`
	Records  []model.RawTransaction `json:"records"`
}

// ProcessBatchResponse is the stored batch summary.
type ProcessBatchResponse struct {
	Result dto.ProcessBatchResponse `json:"result"`
}

// ListFlaggedRequest selects the newest flagged transactions. A zero limit
// means the default.
type ListFlaggedRequest struct {
	Limit int32 `json:"limit"`
}

// ListFlaggedResponse holds flagged transactions, newest first.
type ListFlaggedResponse struct {
	Transactions []dto.FlaggedTransactionResponse `json:"transactions"`
}

// ListLogsRequest selects the newest processing logs. A zero limit means the
// default.
type ListLogsRequest struct {
	Limit int32 `json:"limit"`
}

// ListLogsResponse holds processing logs, newest first.
type ListLogsResponse struct {
	Logs []dto.ProcessingLogResponse `json:"logs"`
}

// GetStatisticsRequest is empty.
type GetStatisticsRequest struct{}

// GetStatisticsResponse holds the dashboard summary.
type GetStatisticsResponse struct {
	Statistics dto.StatisticsResponse `json:"statistics"`
}

// GetGeoDistributionRequest is empty.
type GetGeoDistributionRequest struct{}

// GetGeoDistributionResponse holds the geo buckets.
type GetGeoDistributionResponse struct {
	Locations []dto.LocationResponse `json:"locations"`
}

// ClearAllRequest is empty.
type ClearAllRequest struct{}

// ClearAllResponse confirms the reset.
type ClearAllResponse struct {
	Message string `json:"message"`
}

// ProcessBatch scores and stores a batch.
func (h *FraudPipelineHandler) ProcessBatch(ctx context.Context, req *ProcessBatchRequest) (*ProcessBatchResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	filename := req.Filename
	if filename == "" {
		filename = "grpc"
	}

	h.logger.InfoContext(ctx, "processing batch",
		slog.String("filename", filename),
		slog.Int("records", len(req.Records)),
	)

	result, err := h.processBatch.Execute(ctx, dto.ProcessBatchRequest{
		Filename: filename,
		Records:  model.NormalizeAll(req.Records),
	})
	if err != nil {
		return nil, h.toStatus(ctx, "failed to process batch", err)
	}

	return &ProcessBatchResponse{Result: result}, nil
}

// ListFlagged returns the newest flagged transactions.
func (h *FraudPipelineHandler) ListFlagged(ctx context.Context, req *ListFlaggedRequest) (*ListFlaggedResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	limit, err := resolveLimit(req.Limit, usecase.DefaultFlaggedLimit)
	if err != nil {
		return nil, err
	}

	rows, err := h.listFlagged.Execute(ctx, limit)
	if err != nil {
		return nil, h.toStatus(ctx, "failed to list flagged transactions", err)
	}

	return &ListFlaggedResponse{Transactions: rows}, nil
}

// ListLogs returns the newest processing logs.
func (h *FraudPipelineHandler) ListLogs(ctx context.Context, req *ListLogsRequest) (*ListLogsResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	limit, err := resolveLimit(req.Limit, usecase.DefaultLogLimit)
	if err != nil {
		return nil, err
	}

	logs, err := h.listLogs.Execute(ctx, limit)
	if err != nil {
		return nil, h.toStatus(ctx, "failed to list processing logs", err)
	}

	return &ListLogsResponse{Logs: logs}, nil
}

// GetStatistics returns the dashboard summary.
func (h *FraudPipelineHandler) GetStatistics(ctx context.Context, _ *GetStatisticsRequest) (*GetStatisticsResponse, error) {
	stats, err := h.getStatistics.Execute(ctx)
	if err != nil {
		return nil, h.toStatus(ctx, "failed to compute statistics", err)
	}

	return &GetStatisticsResponse{Statistics: stats}, nil
}

// GetGeoDistribution returns the geo buckets.
func (h *FraudPipelineHandler) GetGeoDistribution(ctx context.Context, _ *GetGeoDistributionRequest) (*GetGeoDistributionResponse, error) {
	geo, err := h.getGeo.Execute(ctx)
	if err != nil {
		return nil, h.toStatus(ctx, "failed to compute geo distribution", err)
	}

	return &GetGeoDistributionResponse{Locations: geo}, nil
}

// ClearAll empties the store.
func (h *FraudPipelineHandler) ClearAll(ctx context.Context, _ *ClearAllRequest) (*ClearAllResponse, error) {
	if err := h.clearData.Execute(ctx); err != nil {
		return nil, h.toStatus(ctx, "failed to clear data", err)
	}

	return &ClearAllResponse{Message: "All data cleared successfully"}, nil
}

// toStatus maps domain errors onto gRPC codes and logs anything unexpected.
func (h *FraudPipelineHandler) toStatus(ctx context.Context, msg string, err error) error {
	var validationErr *model.ValidationError
	var configErr *model.ConfigurationError
	var storageErr *model.StorageError

	switch {
	case errors.As(err, &validationErr):
		return status.Error(codes.InvalidArgument, validationErr.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, msg)
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, msg)
	case errors.As(err, &configErr):
		h.logger.ErrorContext(ctx, msg, slog.String("error", err.Error()))
		return status.Error(codes.FailedPrecondition, configErr.Error())
	case errors.As(err, &storageErr):
		h.logger.ErrorContext(ctx, msg, slog.String("error", err.Error()))
		return status.Error(codes.Unavailable, msg)
	default:
		h.logger.ErrorContext(ctx, msg, slog.String("error", err.Error()))
		return status.Error(codes.Internal, "internal error")
	}
}

func resolveLimit(limit int32, defaultLimit int) (int, error) {
	switch {
	case limit < 0:
		return 0, status.Errorf(codes.InvalidArgument, "invalid limit: %d", limit)
	case limit == 0:
		return defaultLimit, nil
	default:
		return int(limit), nil
	}
}
