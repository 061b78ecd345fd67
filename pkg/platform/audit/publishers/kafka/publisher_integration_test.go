//go:build integration

package kafka

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	id "clinic/pkg/domain"
	audit "clinic/pkg/platform/audit"
	"clinic/pkg/testutil/containers"
)

func TestPublisher_RoundTripThroughBroker(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := containers.GetManager().GetKafka(t).Brokers[0]

	const topic = "clinic.audit.test"
	pub, err := New([]string{broker}, topic)
	require.NoError(t, err)
	defer pub.Close()

	require.NoError(t, pub.Emit(ctx, audit.Event{
		UserID:     id.UserID(3),
		Action:     string(audit.EventUserDeactivated),
		EntityKind: "user",
		EntityID:   3,
	}))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(broker),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	defer consumer.Close()

	fetches := consumer.PollFetches(ctx)
	require.Empty(t, fetches.Errors())
	records := fetches.Records()
	require.Len(t, records, 1)
	require.Equal(t, "3", string(records[0].Key))
}
