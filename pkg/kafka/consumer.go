package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"
)

// Handler processes a consumed Kafka message.
type Handler func(ctx context.Context, msg Message) error

// messageReader is the part of *kafkago.Reader the consumer uses.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Consumer reads one topic as part of a consumer group. Each message is
// handed to the handler with bounded retries and its offset is committed
// afterwards, whether the handler finally succeeded or not.
type Consumer struct {
	reader   messageReader
	handler  Handler
	logger   *slog.Logger
	topic    string
	group    string
	attempts int
	backoff  time.Duration
}

// NewConsumer creates a new Consumer for the given topic with the provided handler.
func NewConsumer(cfg Config, topic string, handler Handler, logger *slog.Logger) (*Consumer, error) {
	readerCfg, err := readerConfig(cfg, topic)
	if err != nil {
		return nil, err
	}
	return newConsumer(kafkago.NewReader(readerCfg), cfg, topic, handler, logger), nil
}

func newConsumer(reader messageReader, cfg Config, topic string, handler Handler, logger *slog.Logger) *Consumer {
	attempts := cfg.HandlerAttempts
	if attempts <= 0 {
		attempts = DefaultHandlerAttempts
	}
	backoff := cfg.RetryBackoff
	if backoff <= 0 {
		backoff = DefaultRetryBackoff
	}
	return &Consumer{
		reader:   reader,
		handler:  handler,
		logger:   logger,
		topic:    topic,
		group:    cfg.ConsumerGroup,
		attempts: attempts,
		backoff:  backoff,
	}
}

func readerConfig(cfg Config, topic string) (kafkago.ReaderConfig, error) {
	readerCfg := kafkago.ReaderConfig{
		Brokers:  cfg.Brokers,
		Topic:    topic,
		GroupID:  cfg.ConsumerGroup,
		MinBytes: 1,
		MaxBytes: 10 * 1024 * 1024, // 10 MB
	}

	if cfg.TLS || cfg.SASLEnabled {
		mechanism, err := cfg.saslMechanism()
		if err != nil {
			return kafkago.ReaderConfig{}, err
		}
		readerCfg.Dialer = &kafkago.Dialer{
			Timeout:       10 * time.Second,
			DualStack:     true,
			TLS:           cfg.tlsConfig(),
			SASLMechanism: mechanism,
		}
	}
	return readerCfg, nil
}

// Start begins consuming messages. Blocks until the context is canceled.
func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info("consumer starting", "topic", c.topic, "group", c.group, "attempts", c.attempts)

	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				c.logger.Info("consumer stopping due to context cancellation")
				return nil
			}
			return fmt.Errorf("fetching message: %w", err)
		}

		if err := c.handle(ctx, m); err != nil {
			if ctx.Err() != nil {
				c.logger.Info("consumer stopping due to context cancellation")
				return nil
			}
			c.logger.Error("giving up on message",
				"topic", m.Topic,
				"partition", m.Partition,
				"offset", m.Offset,
				"attempts", c.attempts,
				"error", err,
			)
		}

		if err := c.reader.CommitMessages(ctx, m); err != nil {
			c.logger.Error("commit error",
				"topic", m.Topic,
				"partition", m.Partition,
				"offset", m.Offset,
				"error", err,
			)
		}
	}
}

// handle runs the handler until it succeeds, the attempts run out or ctx
// ends. The pause grows linearly with each failed attempt.
func (c *Consumer) handle(ctx context.Context, m kafkago.Message) error {
	msg := fromKafkaMessage(m)

	var err error
	for attempt := 1; attempt <= c.attempts; attempt++ {
		if err = c.handler(ctx, msg); err == nil {
			return nil
		}
		if attempt == c.attempts {
			break
		}

		c.logger.Warn("handler failed, retrying",
			"offset", m.Offset,
			"attempt", attempt,
			"error", err,
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * c.backoff):
		}
	}
	return err
}

// Close closes the reader.
func (c *Consumer) Close() error {
	if err := c.reader.Close(); err != nil {
		return fmt.Errorf("closing kafka reader: %w", err)
	}
	return nil
}
