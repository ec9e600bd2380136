package grpc

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/bibbank/fraudwatch/internal/application/usecase"
	"github.com/bibbank/fraudwatch/internal/domain/model"
	"github.com/bibbank/fraudwatch/internal/domain/port"
	"github.com/bibbank/fraudwatch/internal/domain/service"
	"github.com/bibbank/fraudwatch/internal/domain/valueobject"
	"github.com/bibbank/fraudwatch/internal/infrastructure/cache"
	"github.com/bibbank/fraudwatch/internal/infrastructure/memory"
	"github.com/bibbank/fraudwatch/internal/infrastructure/messaging"
	"github.com/bibbank/fraudwatch/internal/infrastructure/metrics"
)

// --- Helpers ---

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// brokenRepository accepts nothing and answers nothing.
type brokenRepository struct {
	err error
}

func (r *brokenRepository) WriteBatch(_ context.Context, _ []model.FlaggedTransaction, _ string, _ int) (model.ProcessingLog, error) {
	return model.ProcessingLog{}, model.NewStorageError("write batch", r.err)
}

func (r *brokenRepository) ReadFlagged(_ context.Context, _ int) ([]model.FlaggedTransaction, error) {
	return nil, model.NewStorageError("read flagged", r.err)
}

func (r *brokenRepository) ReadLogs(_ context.Context, _ int) ([]model.ProcessingLog, error) {
	return nil, model.NewStorageError("read logs", r.err)
}

func (r *brokenRepository) ClearAll(_ context.Context) error {
	return model.NewStorageError("clear", r.err)
}

func (r *brokenRepository) Ping(_ context.Context) error { return r.err }

func buildHandler(repo port.FraudRepository, scorer service.Scorer) *FraudPipelineHandler {
	logger := testLogger()
	statsCache := cache.NewMemoryStatisticsCache(time.Minute)
	publisher := messaging.NewLogPublisher("fraud.events", logger)
	processor := service.NewBatchProcessor(scorer, logger)

	return NewFraudPipelineHandler(
		usecase.NewProcessBatch(processor, repo, publisher, statsCache, metrics.NewRecorder(), logger),
		usecase.NewListFlagged(repo),
		usecase.NewListLogs(repo),
		usecase.NewGetStatistics(repo, statsCache, logger),
		usecase.NewGetGeoDistribution(repo, statsCache, logger),
		usecase.NewClearData(repo, publisher, statsCache, logger),
		logger,
	)
}

func ptr[T any](v T) *T { return &v }

func sampleBatch() *ProcessBatchRequest {
	return &ProcessBatchRequest{
		Filename: "feed.json",
		Records: []model.RawTransaction{
			{Step: ptr(int64(1)), Type: ptr("PAYMENT"), Amount: ptr(2500.0), OldBalanceOrig: ptr(10000.0), NewBalanceOrig: ptr(7500.0)},
			{Step: ptr(int64(1)), Type: ptr("TRANSFER"), Amount: ptr(150000.0), OldBalanceOrig: ptr(200000.0), NewBalanceOrig: ptr(50000.0)},
		},
	}
}

func requireGRPCCode(t *testing.T, err error, expected codes.Code) {
	t.Helper()
	require.Error(t, err)
	st, ok := status.FromError(err)
	require.True(t, ok, "expected gRPC status error, got: %v", err)
	assert.Equal(t, expected, st.Code(), "unexpected gRPC code: %s", st.Message())
}

// --- Tests ---

func TestProcessBatch(t *testing.T) {
	t.Run("nil request returns InvalidArgument", func(t *testing.T) {
		h := buildHandler(memory.NewFraudRepository(), service.NewRuleScorer())
		_, err := h.ProcessBatch(context.Background(), nil)
		requireGRPCCode(t, err, codes.InvalidArgument)
	})

	t.Run("happy path returns summary", func(t *testing.T) {
		h := buildHandler(memory.NewFraudRepository(), service.NewRuleScorer())
		resp, err := h.ProcessBatch(context.Background(), sampleBatch())
		require.NoError(t, err)

		assert.Equal(t, 2, resp.Result.TotalTransactions)
		assert.Equal(t, 1, resp.Result.FraudulentCount)
		assert.Equal(t, "50.00%", resp.Result.FraudRate)
		assert.Positive(t, resp.Result.BatchID)
	})

	t.Run("missing scorer returns FailedPrecondition", func(t *testing.T) {
		h := buildHandler(memory.NewFraudRepository(), nil)
		_, err := h.ProcessBatch(context.Background(), sampleBatch())
		requireGRPCCode(t, err, codes.FailedPrecondition)
	})

	t.Run("store failure returns Unavailable", func(t *testing.T) {
		h := buildHandler(&brokenRepository{err: errors.New("connection refused")}, service.NewRuleScorer())
		_, err := h.ProcessBatch(context.Background(), sampleBatch())
		requireGRPCCode(t, err, codes.Unavailable)
	})

	t.Run("canceled context returns Canceled", func(t *testing.T) {
		h := buildHandler(memory.NewFraudRepository(), service.NewRuleScorer())
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := h.ProcessBatch(ctx, sampleBatch())
		requireGRPCCode(t, err, codes.Canceled)
	})
}

func TestListFlagged(t *testing.T) {
	h := buildHandler(memory.NewFraudRepository(), service.NewRuleScorer())
	_, err := h.ProcessBatch(context.Background(), sampleBatch())
	require.NoError(t, err)

	t.Run("zero limit uses the default", func(t *testing.T) {
		resp, err := h.ListFlagged(context.Background(), &ListFlaggedRequest{})
		require.NoError(t, err)
		require.Len(t, resp.Transactions, 1)
		assert.Equal(t, model.TypeTransfer, resp.Transactions[0].Type)
		assert.Equal(t, valueobject.RiskLevelMedium, resp.Transactions[0].RiskLevel)
	})

	t.Run("negative limit returns InvalidArgument", func(t *testing.T) {
		_, err := h.ListFlagged(context.Background(), &ListFlaggedRequest{Limit: -1})
		requireGRPCCode(t, err, codes.InvalidArgument)
	})

	t.Run("nil request returns InvalidArgument", func(t *testing.T) {
		_, err := h.ListFlagged(context.Background(), nil)
		requireGRPCCode(t, err, codes.InvalidArgument)
	})
}

func TestListLogs(t *testing.T) {
	h := buildHandler(memory.NewFraudRepository(), service.NewRuleScorer())
	for i := 0; i < 3; i++ {
		_, err := h.ProcessBatch(context.Background(), sampleBatch())
		require.NoError(t, err)
	}

	resp, err := h.ListLogs(context.Background(), &ListLogsRequest{Limit: 2})
	require.NoError(t, err)
	require.Len(t, resp.Logs, 2)
	assert.Greater(t, resp.Logs[0].ID, resp.Logs[1].ID)
}

func TestStatisticsAndGeo(t *testing.T) {
	h := buildHandler(memory.NewFraudRepository(), service.NewRuleScorer())
	_, err := h.ProcessBatch(context.Background(), sampleBatch())
	require.NoError(t, err)

	stats, err := h.GetStatistics(context.Background(), &GetStatisticsRequest{})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Statistics.TotalFraud)
	assert.InDelta(t, 150000, stats.Statistics.TotalAmount, 0.001)

	geo, err := h.GetGeoDistribution(context.Background(), &GetGeoDistributionRequest{})
	require.NoError(t, err)
	require.Len(t, geo.Locations, 1)
	assert.Equal(t, 1, geo.Locations[0].Count)
}

func TestClearAll(t *testing.T) {
	t.Run("empties the store", func(t *testing.T) {
		h := buildHandler(memory.NewFraudRepository(), service.NewRuleScorer())
		_, err := h.ProcessBatch(context.Background(), sampleBatch())
		require.NoError(t, err)

		resp, err := h.ClearAll(context.Background(), &ClearAllRequest{})
		require.NoError(t, err)
		assert.Equal(t, "All data cleared successfully", resp.Message)

		flagged, err := h.ListFlagged(context.Background(), &ListFlaggedRequest{})
		require.NoError(t, err)
		assert.Empty(t, flagged.Transactions)
	})

	t.Run("store failure returns Unavailable", func(t *testing.T) {
		h := buildHandler(&brokenRepository{err: errors.New("down")}, service.NewRuleScorer())
		_, err := h.ClearAll(context.Background(), &ClearAllRequest{})
		requireGRPCCode(t, err, codes.Unavailable)
	})
}

func TestToStatus(t *testing.T) {
	h := buildHandler(memory.NewFraudRepository(), service.NewRuleScorer())

	tests := []struct {
		name string
		err  error
		code codes.Code
	}{
		{name: "validation", err: &model.ValidationError{Err: model.ErrMissingColumns, Missing: []string{"amount"}}, code: codes.InvalidArgument},
		{name: "configuration", err: &model.ConfigurationError{Component: "scorer", Err: model.ErrScorerUnavailable}, code: codes.FailedPrecondition},
		{name: "storage", err: model.NewStorageError("read", errors.New("io")), code: codes.Unavailable},
		{name: "deadline", err: context.DeadlineExceeded, code: codes.DeadlineExceeded},
		{name: "unknown", err: errors.New("boom"), code: codes.Internal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requireGRPCCode(t, h.toStatus(context.Background(), "op", tt.err), tt.code)
		})
	}
}

func TestServerRoundTrip(t *testing.T) {
	h := buildHandler(memory.NewFraudRepository(), service.NewRuleScorer())
	srv, err := NewServer(h, "bufnet", ServerConfig{Reflection: true}, testLogger())
	require.NoError(t, err)

	listener := bufconn.Listen(1 << 20)
	go func() { _ = srv.Serve(listener) }()
	t.Cleanup(srv.Stop)

	conn, err := grpclib.NewClient("passthrough:///bufnet",
		grpclib.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return listener.DialContext(ctx)
		}),
		grpclib.WithTransportCredentials(insecure.NewCredentials()),
		grpclib.WithDefaultCallOptions(grpclib.CallContentSubtype(CodecName)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	t.Run("process batch over the wire", func(t *testing.T) {
		var resp ProcessBatchResponse
		require.NoError(t, conn.Invoke(ctx, FullMethod("ProcessBatch"), sampleBatch(), &resp))
		assert.Equal(t, 1, resp.Result.FraudulentCount)
		assert.Equal(t, "File processed successfully", resp.Result.Message)
	})

	t.Run("errors keep their code", func(t *testing.T) {
		var resp ListFlaggedResponse
		err := conn.Invoke(ctx, FullMethod("ListFlagged"), &ListFlaggedRequest{Limit: -5}, &resp)
		requireGRPCCode(t, err, codes.InvalidArgument)
	})

	t.Run("health service reports serving", func(t *testing.T) {
		resp, err := healthpb.NewHealthClient(conn).Check(ctx,
			&healthpb.HealthCheckRequest{Service: ServiceName},
			grpclib.CallContentSubtype("proto"),
		)
		require.NoError(t, err)
		assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.Status)
	})

	t.Run("health service answers over the json codec", func(t *testing.T) {
		resp, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
		require.NoError(t, err)
		assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.Status)
	})
}

func TestJSONCodec(t *testing.T) {
	codec := jsonCodec{}

	t.Run("plain structs use encoding/json", func(t *testing.T) {
		data, err := codec.Marshal(&ListFlaggedRequest{Limit: 7})
		require.NoError(t, err)
		assert.JSONEq(t, `{"limit":7}`, string(data))

		var got ListFlaggedRequest
		require.NoError(t, codec.Unmarshal(data, &got))
		assert.Equal(t, int32(7), got.Limit)
	})

	t.Run("protobuf messages use protojson", func(t *testing.T) {
		data, err := codec.Marshal(&healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_SERVING})
		require.NoError(t, err)
		assert.Contains(t, string(data), `"SERVING"`)

		var got healthpb.HealthCheckResponse
		require.NoError(t, codec.Unmarshal(data, &got))
		assert.Equal(t, healthpb.HealthCheckResponse_SERVING, got.Status)
	})
}

func TestNewServer_BadTLSFiles(t *testing.T) {
	h := buildHandler(memory.NewFraudRepository(), service.NewRuleScorer())
	_, err := NewServer(h, ":0", ServerConfig{TLSCertFile: "/nonexistent/cert.pem", TLSKeyFile: "/nonexistent/key.pem"}, testLogger())
	assert.ErrorContains(t, err, "TLS")
}
