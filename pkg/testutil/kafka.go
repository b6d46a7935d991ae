package testutil

import (
	"context"
	"net"
	"strconv"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/testcontainers/testcontainers-go/modules/kafka"

	pkgkafka "github.com/AlifSrSE/css/pkg/kafka"
)

// Topic names used by the scoring integration tests.
const (
	TestApplicationsTopic = "credit.applications.it"
	TestScoresTopic       = "credit.scores.it"
)

// KafkaBroker is a single-node Kafka started for one test with the scoring
// topics already created. It is terminated by t.Cleanup.
type KafkaBroker struct {
	Brokers []string
}

// StartKafka runs a Kafka container and creates topics (the scoring topics
// when none are given) so consumers can join their group immediately.
func StartKafka(ctx context.Context, t *testing.T, topics ...string) *KafkaBroker {
	t.Helper()
	if len(topics) == 0 {
		topics = []string{TestApplicationsTopic, TestScoresTopic}
	}

	container, err := kafka.Run(ctx,
		"confluentinc/confluent-local:7.6.1",
		kafka.WithClusterID("credit-scoring-it"),
	)
	if err != nil {
		t.Fatalf("start kafka container: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("terminate kafka container: %v", err)
		}
	})

	brokers, err := container.Brokers(ctx)
	if err != nil {
		t.Fatalf("kafka brokers: %v", err)
	}
	if err := createTopics(ctx, brokers[0], topics); err != nil {
		t.Fatalf("create kafka topics %v: %v", topics, err)
	}
	return &KafkaBroker{Brokers: brokers}
}

// Config returns a plaintext connection for the given consumer group.
func (b *KafkaBroker) Config(group string) pkgkafka.Config {
	return pkgkafka.Config{Brokers: b.Brokers, ConsumerGroup: group}
}

// createTopics issues CreateTopics against the cluster controller.
func createTopics(ctx context.Context, broker string, topics []string) error {
	conn, err := kafkago.DialContext(ctx, "tcp", broker)
	if err != nil {
		return err
	}
	defer conn.Close()

	controller, err := conn.Controller()
	if err != nil {
		return err
	}
	cc, err := kafkago.DialContext(ctx, "tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	if err != nil {
		return err
	}
	defer cc.Close()

	configs := make([]kafkago.TopicConfig, 0, len(topics))
	for _, t := range topics {
		configs = append(configs, kafkago.TopicConfig{Topic: t, NumPartitions: 1, ReplicationFactor: 1})
	}
	return cc.CreateTopics(configs...)
}
