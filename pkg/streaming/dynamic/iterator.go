package dynamic

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/vnykmshr/papertrail/pkg/metrics"
)

// ErrIteratorClosed is returned by Next after the iterator has been closed
// or fully drained. Iterators are single-consumption: a second traversal
// is not possible.
var ErrIteratorClosed = errors.New("iterator is closed")

// shutdownSettleTimeout bounds how long Close waits for cancelled tasks to
// settle. Cancellation is advisory; an operation that ignores it is
// abandoned once this window passes.
const shutdownSettleTimeout = 5 * time.Second

// Config holds configuration for a dynamic streaming iterator.
type Config struct {
	// MaxConcurrentTasks is the pool's concurrency ceiling. Defaults to 10.
	MaxConcurrentTasks int

	// MaxTotalTasks caps the cumulative number of tasks admitted over the
	// iterator's life, initial batch included. Follow-ups beyond the cap
	// are dropped and logged, never queued or retried. Defaults to 1000.
	MaxTotalTasks int

	// Name labels the iterator's pool in logs and metrics.
	Name string

	// Logger receives iterator lifecycle events. Defaults to slog.Default().
	Logger *slog.Logger

	// Metrics, when non-nil, enables Prometheus instrumentation.
	Metrics *metrics.Registry
}

// Iterator converts a set of initial tasks into a live, finite,
// single-consumption sequence of published values. Completed tasks may
// spawn follow-up tasks into the same pool, bounded by MaxTotalTasks.
//
// The consumer drives the sequence with Next and must call Close when
// done, including when abandoning the sequence early; ForEach and ToSlice
// wrap that contract. Iterator is not safe for concurrent consumers.
type Iterator[T any] struct {
	pool    *Pool[T]
	cfg     Config
	logger  *slog.Logger
	initial []Task[T]

	mu           sync.Mutex
	started      bool
	closed       bool
	totalCreated int

	// carry holds follow-ups of the most recently yielded result; they are
	// admitted when the consumer comes back for the next value, mirroring
	// generator-resume semantics.
	carry []Task[T]
}

// NewIterator creates an iterator over the given initial tasks. The pool is
// seeded lazily on the first call to Next.
func NewIterator[T any](initial []Task[T], cfg Config) *Iterator[T] {
	if cfg.MaxConcurrentTasks <= 0 {
		cfg.MaxConcurrentTasks = 10
	}
	if cfg.MaxTotalTasks <= 0 {
		cfg.MaxTotalTasks = 1000
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	pool := NewPoolWithConfig[T](PoolConfig{
		MaxConcurrentTasks: cfg.MaxConcurrentTasks,
		Name:               cfg.Name,
		Logger:             cfg.Logger,
		Metrics:            cfg.Metrics,
	})

	return &Iterator[T]{
		pool:    pool,
		cfg:     cfg,
		logger:  cfg.Logger,
		initial: initial,
	}
}

// NewFromSpecs builds an iterator from (id, operation, timeout) triples.
// It is sugar over NewTask plus NewIterator and adds no semantics.
func NewFromSpecs[T any](specs []TaskSpec[T], cfg Config) (*Iterator[T], error) {
	tasks := make([]Task[T], 0, len(specs))
	for _, spec := range specs {
		task, err := NewTask(spec.ID, spec.Op, spec.Timeout)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return NewIterator(tasks, cfg), nil
}

// Next blocks until the next published value is available and returns it
// with true. It returns false once every admitted task has resolved, after
// which the pool has been shut down and further calls fail with
// ErrIteratorClosed. A ctx error ends the traversal early; Close must
// still be called to cancel in-flight work.
//
// Individual task failures and timeouts are absorbed: they produce no
// value and do not end the sequence.
func (it *Iterator[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T

	it.mu.Lock()
	if it.closed {
		it.mu.Unlock()
		return zero, false, ErrIteratorClosed
	}
	if !it.started {
		it.started = true
		it.pool.AddTasks(it.initial)
		it.totalCreated += len(it.initial)
		it.logger.Info("started streaming iterator", "initial_tasks", len(it.initial), "pool", it.pool.name)
	}
	if len(it.carry) > 0 {
		carry := it.carry
		it.carry = nil
		it.admitLocked(carry)
	}
	it.mu.Unlock()

	for it.pool.HasActiveTasks() {
		_, result, err := it.pool.WaitForNextCompletion(ctx)
		if err != nil {
			if errors.Is(err, ErrPoolEmpty) {
				break
			}
			if ctx.Err() != nil {
				return zero, false, err
			}
			// A single resolution failure must not kill the stream.
			it.logger.Error("error waiting for completion", "error", err)
			continue
		}
		if result == nil {
			// Failed or timed out; already counted and logged by the pool.
			continue
		}

		if result.Publishable != nil {
			it.mu.Lock()
			it.carry = result.Next
			it.mu.Unlock()
			if it.cfg.Metrics != nil {
				it.cfg.Metrics.ValuesPublished.WithLabelValues(it.pool.name).Inc()
			}
			return *result.Publishable, true, nil
		}

		it.mu.Lock()
		it.admitLocked(result.Next)
		it.mu.Unlock()
	}

	stats := it.pool.GetStats()
	it.logger.Info("streaming completed",
		"completed", stats.Completed,
		"failed", stats.Failed,
		"timed_out", stats.TimedOut,
		"total_created", it.totalCreated)

	_ = it.Close()
	return zero, false, nil
}

// admitLocked enqueues follow-up tasks while the global cap allows,
// dropping and logging the rest. Caller holds it.mu.
func (it *Iterator[T]) admitLocked(tasks []Task[T]) {
	if len(tasks) == 0 {
		return
	}

	batch := make([]Task[T], 0, len(tasks))
	for _, task := range tasks {
		if it.totalCreated < it.cfg.MaxTotalTasks {
			batch = append(batch, task)
			it.totalCreated++
		} else {
			it.logger.Warn("max tasks limit reached, skipping new task",
				"limit", it.cfg.MaxTotalTasks, "task_id", task.ID)
			if it.cfg.Metrics != nil {
				it.cfg.Metrics.FollowUpsDropped.WithLabelValues(it.pool.name).Inc()
			}
		}
	}
	if len(batch) > 0 {
		it.pool.AddTasks(batch)
		it.logger.Debug("added follow-up tasks", "count", len(batch))
	}
}

// Close shuts down the pool: every in-flight task is cancelled and awaited,
// pending tasks are discarded, and the iterator becomes unusable. Close is
// idempotent and must be called even when the consumer abandons the
// sequence early, so that no task is left running unsupervised.
func (it *Iterator[T]) Close() error {
	it.mu.Lock()
	if it.closed {
		it.mu.Unlock()
		return nil
	}
	it.closed = true
	it.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownSettleTimeout)
	defer cancel()
	return it.pool.Shutdown(ctx)
}

// ForEach consumes the sequence, invoking action for each published value.
// The iterator is closed when ForEach returns, whatever the exit path.
func (it *Iterator[T]) ForEach(ctx context.Context, action func(T)) error {
	defer func() { _ = it.Close() }()

	for {
		v, ok, err := it.Next(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		action(v)
	}
}

// ToSlice consumes the sequence and returns all published values.
func (it *Iterator[T]) ToSlice(ctx context.Context) ([]T, error) {
	var out []T
	err := it.ForEach(ctx, func(v T) {
		out = append(out, v)
	})
	return out, err
}

// TotalTasksCreated returns the cumulative number of admitted tasks,
// initial batch included.
func (it *Iterator[T]) TotalTasksCreated() int {
	it.mu.Lock()
	defer it.mu.Unlock()
	return it.totalCreated
}

// Stats returns a snapshot of the underlying pool.
func (it *Iterator[T]) Stats() Stats {
	return it.pool.GetStats()
}
