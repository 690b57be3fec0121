//go:build integration

package notification_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"downline/internal/notification"
	"downline/internal/platform/kafka"
	id "downline/pkg/domain"
	"downline/pkg/testutil/containers"
)

// End-to-end outbox path: append, drain through a real broker, consume.
func TestWorkerPublishesToKafka(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	broker := containers.NewRedpandaContainer(t)

	const topic = "downline.notifications.test"
	producer, err := kafka.NewProducer(ctx, broker.Brokers, topic)
	require.NoError(t, err)
	defer producer.Close()

	outbox := notification.NewMemoryOutbox()
	worker := notification.NewWorker(outbox, producer, slog.Default(), time.Second)

	recipient := id.NewMemberID()
	require.NoError(t, outbox.Append(ctx, notification.Event{
		RecipientID: recipient,
		Title:       "New Team Member",
		Body:        "Ada just joined your team.",
	}))

	require.NoError(t, worker.Drain(ctx))
	assert.Zero(t, outbox.Pending())

	consumer := broker.Consumer(t, topic)
	fetchCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	fetches := consumer.PollFetches(fetchCtx)
	require.NoError(t, fetches.Err())
	records := fetches.Records()
	require.Len(t, records, 1)
	assert.Equal(t, recipient.String(), string(records[0].Key))

	var event notification.Event
	require.NoError(t, json.Unmarshal(records[0].Value, &event))
	assert.Equal(t, recipient, event.RecipientID)
	assert.Equal(t, "New Team Member", event.Title)
}
