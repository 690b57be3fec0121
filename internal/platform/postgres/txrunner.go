package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"

	"downline/pkg/platform/sentinel"
	txcontext "downline/pkg/platform/tx"
)

// DefaultMaxAttempts bounds the transparent retry on serialization conflicts.
const DefaultMaxAttempts = 5

// TxRunner executes a function inside a SERIALIZABLE transaction, retrying a
// bounded number of times when a concurrent writer wins the conflict. This is
// the only concurrency-coordination primitive the core relies on: two
// registrations under the same sponsor serialize at the sponsor's row, while
// registrations on disjoint branches commit in parallel.
type TxRunner struct {
	db          *sql.DB
	maxAttempts int
	logger      *slog.Logger
	retries     prometheus.Counter
}

// TxRunnerOption configures a TxRunner.
type TxRunnerOption func(*TxRunner)

// WithMaxAttempts overrides the retry budget.
func WithMaxAttempts(n int) TxRunnerOption {
	return func(r *TxRunner) {
		if n > 0 {
			r.maxAttempts = n
		}
	}
}

// WithLogger attaches a logger for retry visibility.
func WithLogger(logger *slog.Logger) TxRunnerOption {
	return func(r *TxRunner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithRetryCounter attaches a counter incremented once per retried attempt.
func WithRetryCounter(c prometheus.Counter) TxRunnerOption {
	return func(r *TxRunner) { r.retries = c }
}

// NewTxRunner constructs a TxRunner over the given pool.
func NewTxRunner(db *sql.DB, opts ...TxRunnerOption) *TxRunner {
	r := &TxRunner{
		db:          db,
		maxAttempts: DefaultMaxAttempts,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RunInTx runs fn inside a SERIALIZABLE transaction. The transaction is
// stored in the context so stores joined through pkg/platform/tx execute on
// it. Serialization conflicts are retried up to the attempt budget; the last
// error is returned wrapped in sentinel.ErrSerialization once exhausted.
func (r *TxRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		err := r.runOnce(ctx, fn)
		if err == nil {
			return nil
		}
		if !isSerializationFailure(err) {
			return err
		}
		lastErr = err
		if r.retries != nil {
			r.retries.Inc()
		}
		r.logger.WarnContext(ctx, "transaction serialization conflict, retrying",
			"attempt", attempt,
			"max_attempts", r.maxAttempts,
		)
		// Short jittered-enough backoff; conflicts here mean two writers hit
		// the same ancestor row, which resolves in milliseconds.
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * 10 * time.Millisecond):
		}
	}
	return fmt.Errorf("transaction retries exhausted after %d attempts: %w",
		r.maxAttempts, errors.Join(lastErr, sentinel.ErrSerialization))
}

func (r *TxRunner) runOnce(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(txcontext.WithTx(ctx, tx)); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func isSerializationFailure(err error) bool {
	if errors.Is(err, sentinel.ErrSerialization) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "40001" || pqErr.Code == "40P01"
	}
	return false
}
