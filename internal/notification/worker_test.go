package notification

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "downline/pkg/domain"
)

type recordingPublisher struct {
	keys     []string
	payloads [][]byte
	err      error
}

func (p *recordingPublisher) Produce(_ context.Context, key, value []byte) error {
	if p.err != nil {
		return p.err
	}
	p.keys = append(p.keys, string(key))
	p.payloads = append(p.payloads, value)
	return nil
}

func TestWorkerDrain(t *testing.T) {
	ctx := context.Background()
	outbox := NewMemoryOutbox()
	publisher := &recordingPublisher{}
	worker := NewWorker(outbox, publisher, slog.Default(), time.Second)

	recipient := id.NewMemberID()
	require.NoError(t, outbox.Append(ctx, Event{RecipientID: recipient, Title: "t", Body: "b"}))
	require.NoError(t, outbox.Append(ctx, Event{RecipientID: recipient, Title: "t2", Body: "b2"}))

	require.NoError(t, worker.Drain(ctx))

	assert.Zero(t, outbox.Pending(), "published entries are marked")
	require.Len(t, publisher.payloads, 2)
	assert.Equal(t, recipient.String(), publisher.keys[0], "events key on the recipient")

	var event Event
	require.NoError(t, json.Unmarshal(publisher.payloads[0], &event))
	assert.Equal(t, recipient, event.RecipientID)
	assert.Equal(t, "t", event.Title)
	assert.Equal(t, "b", event.Body)
}

func TestWorkerDrainLeavesEntriesOnPublishFailure(t *testing.T) {
	ctx := context.Background()
	outbox := NewMemoryOutbox()
	publisher := &recordingPublisher{err: errors.New("broker down")}
	worker := NewWorker(outbox, publisher, slog.Default(), time.Second)

	require.NoError(t, outbox.Append(ctx, Event{RecipientID: id.NewMemberID(), Title: "t", Body: "b"}))

	require.Error(t, worker.Drain(ctx))
	assert.Equal(t, 1, outbox.Pending(), "failed entries stay queued for the next tick")

	// Broker recovers; the same entry goes out.
	publisher.err = nil
	require.NoError(t, worker.Drain(ctx))
	assert.Zero(t, outbox.Pending())
	assert.Len(t, publisher.payloads, 1)
}

func TestWorkerRunStopsOnCancel(t *testing.T) {
	outbox := NewMemoryOutbox()
	worker := NewWorker(outbox, &recordingPublisher{}, slog.Default(), time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- worker.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after cancel")
	}
}
