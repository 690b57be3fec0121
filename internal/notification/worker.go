package notification

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"
)

// Publisher is the transport the worker ships events through. The Kafka
// producer satisfies it; tests substitute a recorder.
type Publisher interface {
	Produce(ctx context.Context, key, value []byte) error
}

// Worker drains the outbox and publishes pending events. Publish-then-mark
// ordering means a crash between the two can replay an event; the delivery
// pipeline treats events as at-least-once.
type Worker struct {
	outbox    OutboxStore
	publisher Publisher
	logger    *slog.Logger
	interval  time.Duration
	batchSize int
}

// NewWorker constructs an outbox worker.
func NewWorker(outbox OutboxStore, publisher Publisher, logger *slog.Logger, interval time.Duration) *Worker {
	return &Worker{
		outbox:    outbox,
		publisher: publisher,
		logger:    logger,
		interval:  interval,
		batchSize: 100,
	}
}

// Run polls until the context is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.Drain(ctx); err != nil {
				w.logger.ErrorContext(ctx, "outbox drain failed", "error", err)
			}
		}
	}
}

// Drain publishes one batch of pending events. Exported so tests and the
// shutdown path can flush without the ticker.
func (w *Worker) Drain(ctx context.Context) error {
	entries, err := w.outbox.Unpublished(ctx, w.batchSize)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		payload, err := json.Marshal(entry.Event)
		if err != nil {
			return err
		}
		if err := w.publisher.Produce(ctx, []byte(entry.Event.RecipientID.String()), payload); err != nil {
			// Leave the row unpublished; the next tick retries it.
			w.logger.WarnContext(ctx, "event publish failed, will retry",
				"entry_id", entry.ID.String(),
				"error", err,
			)
			return err
		}
		if err := w.outbox.MarkPublished(ctx, entry.ID, time.Now().UTC()); err != nil {
			return err
		}
	}
	return nil
}
