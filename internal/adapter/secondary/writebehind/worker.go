package writebehind

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ruudy-sib/payhook/internal/domain"
	"github.com/ruudy-sib/payhook/internal/domain/entity"
	"github.com/ruudy-sib/payhook/internal/port/secondary"
)

type job struct {
	ref        entity.RecordRef
	update     entity.PaymentUpdate
	enqueuedAt time.Time
}

// Worker applies deferred record writes in the background. It implements
// secondary.WriteQueue and only accepts writes while Run is active, so a
// queued write is always either applied or reported by the drain.
type Worker struct {
	store        secondary.RecordStore
	jobs         chan job
	drainTimeout time.Duration
	logger       *zap.Logger

	mu      sync.RWMutex
	running bool
}

// NewWorker creates a Worker with a buffer of size pending writes.
func NewWorker(
	store secondary.RecordStore,
	size int,
	drainTimeout time.Duration,
	logger *zap.Logger,
) *Worker {
	if size <= 0 {
		size = 1
	}
	return &Worker{
		store:        store,
		jobs:         make(chan job, size),
		drainTimeout: drainTimeout,
		logger:       logger.Named("write-behind"),
	}
}

// Enqueue hands the write to the worker without blocking.
func (w *Worker) Enqueue(ref entity.RecordRef, update entity.PaymentUpdate) error {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if !w.running {
		return domain.ErrQueueNotRunning
	}

	select {
	case w.jobs <- job{ref: ref, update: update, enqueuedAt: time.Now()}:
		return nil
	default:
		return fmt.Errorf("%w: %d pending", domain.ErrQueueFull, cap(w.jobs))
	}
}

// Pending returns the number of writes waiting to be applied.
func (w *Worker) Pending() int {
	return len(w.jobs)
}

// Running reports whether Run is accepting writes.
func (w *Worker) Running() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}

// Start begins accepting writes before it returns and applies them in a
// background goroutine until ctx is cancelled. The returned channel yields
// Run's result once the drain has finished.
func (w *Worker) Start(ctx context.Context) <-chan error {
	done := make(chan error, 1)

	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		done <- fmt.Errorf("write-behind worker is already running")
		return done
	}
	w.running = true
	w.mu.Unlock()

	go func() { done <- w.loop(ctx) }()
	return done
}

// Run applies queued writes until the context is cancelled, then drains what
// is left within the drain timeout.
func (w *Worker) Run(ctx context.Context) error {
	return <-w.Start(ctx)
}

func (w *Worker) loop(ctx context.Context) error {
	w.logger.Info("write-behind worker started",
		zap.Int("capacity", cap(w.jobs)),
	)

	for {
		select {
		case <-ctx.Done():
			w.stop()
			w.drain()
			w.logger.Info("write-behind worker shutting down")
			return ctx.Err()
		case j := <-w.jobs:
			w.apply(ctx, j)
		}
	}
}

// stop refuses further writes; it waits for in-flight Enqueue calls.
func (w *Worker) stop() {
	w.mu.Lock()
	w.running = false
	w.mu.Unlock()
}

func (w *Worker) drain() {
	pending := len(w.jobs)
	if pending == 0 {
		return
	}
	w.logger.Info("draining pending writes", zap.Int("pending", pending))

	ctx, cancel := context.WithTimeout(context.Background(), w.drainTimeout)
	defer cancel()

	for {
		select {
		case j := <-w.jobs:
			w.apply(ctx, j)
		default:
			return
		}
		if ctx.Err() != nil {
			w.logger.Warn("drain timeout reached, dropping writes",
				zap.Int("dropped", len(w.jobs)),
			)
			return
		}
	}
}

func (w *Worker) apply(ctx context.Context, j job) {
	if err := w.store.Update(ctx, j.ref, j.update); err != nil {
		// Log but keep going; the gateway has already been answered.
		w.logger.Error("deferred record write failed",
			zap.String("path", j.ref.Path),
			zap.String("basket_id", j.update.BasketID),
			zap.Error(err),
		)
		return
	}

	w.logger.Info("deferred record write applied",
		zap.String("path", j.ref.Path),
		zap.String("basket_id", j.update.BasketID),
		zap.Duration("queued_for", time.Since(j.enqueuedAt)),
	)
}
