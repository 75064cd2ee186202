package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/kafka"

	pkgkafka "github.com/garciaurbina83/Rental-Properties-New-sub000/pkg/kafka"
)

// NewKafkaConfig starts a single-node broker for the test and returns a
// client configuration pointing at it, using group as the consumer group.
func NewKafkaConfig(ctx context.Context, t *testing.T, group string) pkgkafka.Config {
	t.Helper()

	ctr, err := kafka.Run(ctx,
		"confluentinc/confluent-local:7.6.1",
		kafka.WithClusterID("loand-test"),
	)
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := ctr.Terminate(stopCtx); err != nil {
			t.Logf("terminate kafka container: %v", err)
		}
	})

	brokers, err := ctr.Brokers(ctx)
	require.NoError(t, err)

	return pkgkafka.Config{
		ClientID:      "loand-test",
		ConsumerGroup: group,
		Brokers:       brokers,
	}
}
