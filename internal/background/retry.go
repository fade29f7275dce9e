package background

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/loginwatch/loginwatch/internal/metrics"
	"github.com/loginwatch/loginwatch/internal/repositories"
)

// AggregateUpserter re-applies UserDevice upserts that failed inline.
type AggregateUpserter interface {
	UpsertOnLogin(ctx context.Context, up repositories.LoginUpsert) error
}

// RetryWorker drains a bounded queue of failed aggregate upserts on a fixed
// interval. Delivery is at-least-once: the underlying upsert is relative
// (counter increment), so a retry that races a fresh login still lands one
// increment per queued login. Entries exhausted after maxAttempts are dropped
// with a dead-letter log line.
type RetryWorker struct {
	repo        AggregateUpserter
	logger      *slog.Logger
	metrics     *metrics.Metrics
	interval    time.Duration
	maxAttempts int

	mu      sync.Mutex
	pending []pendingUpsert
	maxSize int

	stopCh chan struct{}
}

type pendingUpsert struct {
	up       repositories.LoginUpsert
	attempts int
}

// NewRetryWorker creates a new RetryWorker.
func NewRetryWorker(repo AggregateUpserter, logger *slog.Logger, m *metrics.Metrics, interval time.Duration, maxAttempts int) *RetryWorker {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	return &RetryWorker{
		repo:        repo,
		logger:      logger,
		metrics:     m,
		interval:    interval,
		maxAttempts: maxAttempts,
		maxSize:     1000,
		stopCh:      make(chan struct{}),
	}
}

// Enqueue adds a failed upsert for background retry. Returns false when the
// queue is full; the entry is dropped and logged rather than blocking the
// login path.
func (w *RetryWorker) Enqueue(up repositories.LoginUpsert) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.pending) >= w.maxSize {
		w.logger.Error("aggregate retry queue full, dropping upsert",
			slog.String("user_id", up.UserID.String()),
		)
		return false
	}

	w.pending = append(w.pending, pendingUpsert{up: up})
	if w.metrics != nil {
		w.metrics.UpsertRetryDepth.Set(float64(len(w.pending)))
	}
	return true
}

// Start begins the periodic drain loop.
func (w *RetryWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.drain(ctx)
		case <-w.stopCh:
			w.logger.Info("aggregate retry worker stopped")
			return
		case <-ctx.Done():
			w.logger.Info("aggregate retry worker context cancelled")
			return
		}
	}
}

// Stop signals the worker to shut down.
func (w *RetryWorker) Stop() {
	close(w.stopCh)
}

func (w *RetryWorker) drain(ctx context.Context) {
	w.mu.Lock()
	batch := w.pending
	w.pending = nil
	w.mu.Unlock()

	if len(batch) == 0 {
		return
	}

	drainCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	var requeue []pendingUpsert
	succeeded := 0
	for _, entry := range batch {
		entry.attempts++
		if err := w.repo.UpsertOnLogin(drainCtx, entry.up); err != nil {
			if entry.attempts >= w.maxAttempts {
				w.logger.Error("aggregate upsert dead-lettered",
					slog.String("user_id", entry.up.UserID.String()),
					slog.String("device_fingerprint", entry.up.DeviceFingerprint),
					slog.Int("attempts", entry.attempts),
					slog.Any("error", err),
				)
				continue
			}
			requeue = append(requeue, entry)
			continue
		}
		succeeded++
	}

	w.mu.Lock()
	w.pending = append(requeue, w.pending...)
	depth := len(w.pending)
	w.mu.Unlock()

	if w.metrics != nil {
		w.metrics.UpsertRetryDepth.Set(float64(depth))
	}
	if succeeded > 0 {
		w.logger.Info("aggregate retry drain completed",
			slog.Int("succeeded", succeeded),
			slog.Int("requeued", len(requeue)),
		)
	}
}
