package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bibbank/fraudwatch/internal/application/usecase"
	"github.com/bibbank/fraudwatch/internal/domain/port"
	"github.com/bibbank/fraudwatch/internal/domain/service"
	"github.com/bibbank/fraudwatch/internal/infrastructure/cache"
	"github.com/bibbank/fraudwatch/internal/infrastructure/config"
	kafkainfra "github.com/bibbank/fraudwatch/internal/infrastructure/kafka"
	"github.com/bibbank/fraudwatch/internal/infrastructure/memory"
	"github.com/bibbank/fraudwatch/internal/infrastructure/messaging"
	"github.com/bibbank/fraudwatch/internal/infrastructure/metrics"
	"github.com/bibbank/fraudwatch/internal/infrastructure/ml"
	pgrepo "github.com/bibbank/fraudwatch/internal/infrastructure/postgres"
	grpcpresentation "github.com/bibbank/fraudwatch/internal/presentation/grpc"
	"github.com/bibbank/fraudwatch/internal/presentation/rest"
	pkgkafka "github.com/bibbank/fraudwatch/pkg/kafka"
	"github.com/bibbank/fraudwatch/pkg/observability"
	pkgpostgres "github.com/bibbank/fraudwatch/pkg/postgres"
)

const serviceName = "fraudwatch"

func main() {
	if err := run(); err != nil {
		slog.Error("fraudwatch exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := observability.InitLogger(observability.LogConfig{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Service: serviceName,
	})

	logger.Info("starting fraudwatch",
		"http_port", cfg.HTTPPort,
		"grpc_port", cfg.GRPCPort,
		"scorer", cfg.ScorerStrategy,
		"store", storeKind(cfg),
	)

	// Initialize tracing.
	shutdownTracer, err := observability.InitTracer(ctx, observability.TracingConfig{
		ServiceName: serviceName,
		Endpoint:    cfg.OTLPEndpoint,
		Insecure:    true,
	})
	if err != nil {
		logger.Warn("failed to initialize tracer, continuing without tracing", "error", err)
	} else {
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			_ = shutdownTracer(shutdownCtx)
		}()
	}

	meterProvider, metricsHandler, err := observability.InitMetrics(observability.MetricsConfig{})
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}
	defer func() { _ = meterProvider.Shutdown(context.Background()) }()

	// Store.
	repo, closeRepo, err := openRepository(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeRepo()

	// Event publisher.
	var publisher port.EventPublisher
	var producer *pkgkafka.Producer
	kafkaCfg := pkgkafka.Config{
		Brokers:         cfg.KafkaBrokers,
		ConsumerGroup:   cfg.KafkaConsumerGroup,
		HandlerAttempts: cfg.KafkaAttempts,
	}
	if len(cfg.KafkaBrokers) > 0 {
		producer, err = pkgkafka.NewProducer(kafkaCfg)
		if err != nil {
			return fmt.Errorf("create kafka producer: %w", err)
		}
		defer producer.Close()
		publisher = kafkainfra.NewPublisher(producer, cfg.KafkaEventsTopic, logger)
		logger.Info("publishing events to kafka", "topic", cfg.KafkaEventsTopic)
	} else {
		publisher = messaging.NewLogPublisher(cfg.KafkaEventsTopic, logger)
		logger.Info("no kafka brokers configured, events are logged only")
	}

	// Statistics cache.
	var statsCache port.StatisticsCache
	if cfg.RedisAddr != "" {
		client, err := cache.NewRedisClient(ctx, cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer client.Close()
		statsCache = cache.NewRedisStatisticsCache(client, cfg.StatsCacheTTL)
		logger.Info("statistics cache on redis", "addr", cfg.RedisAddr, "ttl", cfg.StatsCacheTTL)
	} else {
		statsCache = cache.NewMemoryStatisticsCache(cfg.StatsCacheTTL)
	}

	// Domain services.
	scorer, err := ml.NewScorer(cfg.ScorerStrategy, logger)
	if err != nil {
		return err
	}
	processor := service.NewBatchProcessor(scorer, logger)

	// Use cases.
	processBatchUC := usecase.NewProcessBatch(processor, repo, publisher, statsCache, metrics.NewRecorder(), logger)
	listFlaggedUC := usecase.NewListFlagged(repo)
	listLogsUC := usecase.NewListLogs(repo)
	getStatisticsUC := usecase.NewGetStatistics(repo, statsCache, logger)
	getGeoUC := usecase.NewGetGeoDistribution(repo, statsCache, logger)
	clearDataUC := usecase.NewClearData(repo, publisher, statsCache, logger)

	// gRPC server.
	grpcHandler := grpcpresentation.NewFraudPipelineHandler(
		processBatchUC, listFlaggedUC, listLogsUC, getStatisticsUC, getGeoUC, clearDataUC, logger,
	)
	grpcServer, err := grpcpresentation.NewServer(grpcHandler, cfg.GRPCAddress(), grpcpresentation.ServerConfig{
		TLSCertFile: cfg.TLSCertFile,
		TLSKeyFile:  cfg.TLSKeyFile,
		Reflection:  cfg.GRPCReflection,
	}, logger)
	if err != nil {
		return err
	}

	// HTTP server.
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	fraudHandler := rest.NewFraudHandler(
		processBatchUC, listFlaggedUC, listLogsUC, getStatisticsUC, getGeoUC, clearDataUC, logger,
	).WithUploadLimit(cfg.UploadRateLimit)
	healthHandler := rest.NewHealthHandler(serviceName, repo, logger)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           rest.NewRouter(fraudHandler, healthHandler, metricsHandler, logger),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Start servers.
	errCh := make(chan error, 3)

	go func() {
		if err := grpcServer.Start(); err != nil {
			errCh <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	go func() {
		logger.Info("HTTP server starting", "address", cfg.HTTPAddress())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Optional ingest consumer.
	var consumer *pkgkafka.Consumer
	if cfg.KafkaIngestTopic != "" {
		batchHandler := kafkainfra.NewBatchHandler(processBatchUC, logger)
		consumer, err = pkgkafka.NewConsumer(kafkaCfg, cfg.KafkaIngestTopic, batchHandler.Handle, logger)
		if err != nil {
			return fmt.Errorf("create kafka consumer: %w", err)
		}
		go func() {
			if err := consumer.Start(ctx); err != nil {
				errCh <- fmt.Errorf("kafka consumer error: %w", err)
			}
		}()
	}

	logger.Info("fraudwatch started",
		"grpc_address", cfg.GRPCAddress(),
		"http_address", cfg.HTTPAddress(),
		"environment", cfg.Environment,
	)

	// Wait for shutdown signal.
	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case runErr = <-errCh:
		logger.Error("server error", "error", runErr)
	}

	// Graceful shutdown.
	logger.Info("shutting down fraudwatch")
	cancel()

	grpcServer.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}
	if consumer != nil {
		if err := consumer.Close(); err != nil {
			logger.Error("kafka consumer close error", "error", err)
		}
	}

	logger.Info("fraudwatch stopped")
	return runErr
}

// openRepository returns the PostgreSQL store when DATABASE_URL is set and
// the in-memory store otherwise, with a matching close function.
func openRepository(ctx context.Context, cfg *config.Config, logger *slog.Logger) (port.FraudRepository, func(), error) {
	if !cfg.UsesPostgres() {
		logger.Warn("DATABASE_URL not set, using the in-memory store; data is lost on restart")
		return memory.NewFraudRepository(), func() {}, nil
	}

	if cfg.RunMigrations {
		if err := pkgpostgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsDir); err != nil {
			return nil, nil, fmt.Errorf("run migrations: %w", err)
		}
		logger.Info("database migrations applied", "dir", cfg.MigrationsDir)
	}

	dbCtx, dbCancel := context.WithTimeout(ctx, 10*time.Second)
	defer dbCancel()

	pool, err := pkgpostgres.NewPool(dbCtx, pkgpostgres.Config{
		URL:             cfg.DatabaseURL,
		ApplicationName: serviceName,
		MaxConns:        int32(cfg.DatabaseMaxConns),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}
	logger.Info("connected to database")

	return pgrepo.NewFraudRepository(pool), pool.Close, nil
}

func storeKind(cfg *config.Config) string {
	if cfg.UsesPostgres() {
		return "postgres"
	}
	return "memory"
}
