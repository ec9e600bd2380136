package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go/modules/kafka"

	pkgkafka "github.com/bibbank/fraudwatch/pkg/kafka"
)

// Kafka is a single-node KRaft broker for integration tests.
type Kafka struct {
	container *kafka.KafkaContainer
	Brokers   []string
}

// StartKafka runs a broker in a container and registers teardown on t.
func StartKafka(ctx context.Context, t *testing.T) *Kafka {
	t.Helper()

	container, err := kafka.Run(ctx,
		"confluentinc/confluent-local:7.6.1",
		kafka.WithClusterID("fraudwatch-test"),
	)
	if err != nil {
		t.Fatalf("failed to start kafka container: %v", err)
	}
	k := &Kafka{container: container}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("warning: failed to terminate kafka container: %v", err)
		}
	})

	k.Brokers, err = container.Brokers(ctx)
	if err != nil {
		t.Fatalf("failed to get kafka brokers: %v", err)
	}
	return k
}

// Config returns client settings for the broker under the given group.
func (k *Kafka) Config(consumerGroup string) pkgkafka.Config {
	return pkgkafka.Config{Brokers: k.Brokers, ConsumerGroup: consumerGroup}
}
