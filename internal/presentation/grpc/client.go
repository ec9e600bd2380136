package grpc

import (
	"context"
	"fmt"
	"time"

	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/bibbank/fraudwatch/internal/domain/model"
	"github.com/bibbank/fraudwatch/pkg/tlsutil"
)

// DialConfig selects the transport for Dial. An empty CAFile dials in
// plaintext.
type DialConfig struct {
	CAFile             string
	ServerName         string
	InsecureSkipVerify bool
}

// Client calls FraudPipelineService with the JSON codec, so no generated
// stubs are needed.
type Client struct {
	conn   *grpclib.ClientConn
	health healthpb.HealthClient
}

// Dial connects to a fraudwatch gRPC endpoint.
func Dial(addr string, cfg DialConfig) (*Client, error) {
	creds := insecure.NewCredentials()
	if cfg.CAFile != "" {
		tlsCreds, err := tlsutil.ClientTLSConfig(tlsutil.ClientOptions{
			CAFile:             cfg.CAFile,
			ServerName:         cfg.ServerName,
			InsecureSkipVerify: cfg.InsecureSkipVerify,
		})
		if err != nil {
			return nil, fmt.Errorf("load TLS credentials: %w", err)
		}
		creds = tlsCreds
	}

	conn, err := grpclib.NewClient(addr, grpclib.WithTransportCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("dial fraudwatch at %s: %w", addr, err)
	}
	return NewClient(conn), nil
}

// NewClient wraps an existing connection.
func NewClient(conn *grpclib.ClientConn) *Client {
	return &Client{conn: conn, health: healthpb.NewHealthClient(conn)}
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

func (c *Client) invoke(ctx context.Context, method string, req, resp interface{}) error {
	return c.conn.Invoke(ctx, FullMethod(method), req, resp, grpclib.CallContentSubtype(CodecName))
}

// ProcessBatch submits raw records for scoring.
func (c *Client) ProcessBatch(ctx context.Context, filename string, records []model.RawTransaction) (*ProcessBatchResponse, error) {
	var resp ProcessBatchResponse
	if err := c.invoke(ctx, "ProcessBatch", &ProcessBatchRequest{Filename: filename, Records: records}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListFlagged fetches the newest flagged transactions.
func (c *Client) ListFlagged(ctx context.Context, limit int32) (*ListFlaggedResponse, error) {
	var resp ListFlaggedResponse
	if err := c.invoke(ctx, "ListFlagged", &ListFlaggedRequest{Limit: limit}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListLogs fetches the newest processing logs.
func (c *Client) ListLogs(ctx context.Context, limit int32) (*ListLogsResponse, error) {
	var resp ListLogsResponse
	if err := c.invoke(ctx, "ListLogs", &ListLogsRequest{Limit: limit}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetStatistics fetches the dashboard summary.
func (c *Client) GetStatistics(ctx context.Context) (*GetStatisticsResponse, error) {
	var resp GetStatisticsResponse
	if err := c.invoke(ctx, "GetStatistics", &GetStatisticsRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetGeoDistribution fetches the geo buckets.
func (c *Client) GetGeoDistribution(ctx context.Context) (*GetGeoDistributionResponse, error) {
	var resp GetGeoDistributionResponse
	if err := c.invoke(ctx, "GetGeoDistribution", &GetGeoDistributionRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ClearAll empties the remote store.
func (c *Client) ClearAll(ctx context.Context) (*ClearAllResponse, error) {
	var resp ClearAllResponse
	if err := c.invoke(ctx, "ClearAll", &ClearAllRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CheckHealth queries the standard health service for FraudPipelineService.
func (c *Client) CheckHealth(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	resp, err := c.health.Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
	if err != nil {
		return fmt.Errorf("health check: %w", err)
	}
	if resp.Status != healthpb.HealthCheckResponse_SERVING {
		return fmt.Errorf("%s not serving: %s", ServiceName, resp.Status)
	}
	return nil
}
