package kafka

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeReader serves queued messages, then cancels the consumer's context
// or returns fetchErr once the queue is empty.
type fakeReader struct {
	mu        sync.Mutex
	msgs      []kafkago.Message
	committed []int64
	fetchErr  error
	cancel    context.CancelFunc
	closed    bool
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafkago.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.msgs) == 0 {
		if r.fetchErr != nil {
			return kafkago.Message{}, r.fetchErr
		}
		r.cancel()
		return kafkago.Message{}, ctx.Err()
	}
	m := r.msgs[0]
	r.msgs = r.msgs[1:]
	return m, nil
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafkago.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeReader) Close() error {
	r.closed = true
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func runConsumer(t *testing.T, reader *fakeReader, cfg Config, handler Handler) error {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	reader.cancel = cancel

	c := newConsumer(reader, cfg, "fraud.ingest", handler, discardLogger())
	return c.Start(ctx)
}

func TestConsumer_Start(t *testing.T) {
	fastRetry := Config{ConsumerGroup: "fraudwatch", RetryBackoff: time.Millisecond}

	t.Run("commits each handled message", func(t *testing.T) {
		reader := &fakeReader{msgs: []kafkago.Message{
			{Offset: 1, Key: []byte("a"), Value: []byte(`{}`), Headers: []kafkago.Header{{Key: "event_type", Value: []byte("ingest")}}},
			{Offset: 2, Value: []byte(`{}`)},
		}}
		var seen []Message

		err := runConsumer(t, reader, fastRetry, func(_ context.Context, msg Message) error {
			seen = append(seen, msg)
			return nil
		})

		require.NoError(t, err)
		assert.Equal(t, []int64{1, 2}, reader.committed)
		require.Len(t, seen, 2)
		assert.Equal(t, "ingest", seen[0].Headers["event_type"])
		assert.Equal(t, []byte("a"), seen[0].Key)
	})

	t.Run("retries a transient failure", func(t *testing.T) {
		reader := &fakeReader{msgs: []kafkago.Message{{Offset: 7}}}
		calls := 0

		err := runConsumer(t, reader, fastRetry, func(context.Context, Message) error {
			calls++
			if calls == 1 {
				return errors.New("database busy")
			}
			return nil
		})

		require.NoError(t, err)
		assert.Equal(t, 2, calls)
		assert.Equal(t, []int64{7}, reader.committed)
	})

	t.Run("commits past a message that keeps failing", func(t *testing.T) {
		reader := &fakeReader{msgs: []kafkago.Message{{Offset: 3}, {Offset: 4}}}
		cfg := fastRetry
		cfg.HandlerAttempts = 2
		calls := map[int]int{}
		n := 0

		err := runConsumer(t, reader, cfg, func(context.Context, Message) error {
			n++
			calls[len(reader.committed)]++
			if len(reader.committed) == 0 {
				return errors.New("poison")
			}
			return nil
		})

		require.NoError(t, err)
		assert.Equal(t, 2, calls[0])
		assert.Equal(t, 1, calls[1])
		assert.Equal(t, 3, n)
		assert.Equal(t, []int64{3, 4}, reader.committed)
	})

	t.Run("fetch error stops the consumer", func(t *testing.T) {
		reader := &fakeReader{fetchErr: errors.New("broker gone")}

		err := runConsumer(t, reader, fastRetry, func(context.Context, Message) error { return nil })

		require.Error(t, err)
		assert.Contains(t, err.Error(), "broker gone")
		assert.Empty(t, reader.committed)
	})

	t.Run("cancellation during backoff does not commit", func(t *testing.T) {
		reader := &fakeReader{msgs: []kafkago.Message{{Offset: 9}}}
		cfg := Config{HandlerAttempts: 5, RetryBackoff: time.Hour}

		ctx, cancel := context.WithCancel(context.Background())
		reader.cancel = cancel
		c := newConsumer(reader, cfg, "fraud.ingest", func(context.Context, Message) error {
			cancel()
			return errors.New("fails")
		}, discardLogger())

		require.NoError(t, c.Start(ctx))
		assert.Empty(t, reader.committed)
	})
}

func TestNewConsumer_Defaults(t *testing.T) {
	c := newConsumer(&fakeReader{}, Config{ConsumerGroup: "g"}, "t", nil, discardLogger())
	assert.Equal(t, DefaultHandlerAttempts, c.attempts)
	assert.Equal(t, DefaultRetryBackoff, c.backoff)
	assert.Equal(t, "g", c.group)

	reader := &fakeReader{}
	c = newConsumer(reader, Config{}, "t", nil, discardLogger())
	require.NoError(t, c.Close())
	assert.True(t, reader.closed)
}

func TestReaderConfig(t *testing.T) {
	t.Run("plaintext has no dialer", func(t *testing.T) {
		cfg, err := readerConfig(Config{Brokers: []string{"kafka:9092"}, ConsumerGroup: "fraudwatch"}, "fraud.ingest")
		require.NoError(t, err)
		assert.Equal(t, "fraud.ingest", cfg.Topic)
		assert.Equal(t, "fraudwatch", cfg.GroupID)
		assert.Nil(t, cfg.Dialer)
	})

	t.Run("SASL sets a dialer", func(t *testing.T) {
		cfg, err := readerConfig(Config{
			Brokers:       []string{"kafka:9093"},
			TLS:           true,
			SASLEnabled:   true,
			SASLMechanism: "SCRAM-SHA-256",
			SASLUsername:  "fraud",
			SASLPassword:  "secret",
		}, "fraud.ingest")
		require.NoError(t, err)
		require.NotNil(t, cfg.Dialer)
		assert.NotNil(t, cfg.Dialer.TLS)
		assert.Equal(t, "SCRAM-SHA-256", cfg.Dialer.SASLMechanism.Name())
	})

	t.Run("unknown mechanism fails", func(t *testing.T) {
		_, err := readerConfig(Config{SASLEnabled: true, SASLMechanism: "GSSAPI"}, "fraud.ingest")
		assert.ErrorContains(t, err, "GSSAPI")
	})
}
