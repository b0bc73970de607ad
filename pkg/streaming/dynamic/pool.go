package dynamic

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/vnykmshr/papertrail/pkg/metrics"
)

// ErrPoolEmpty is returned by WaitForNextCompletion when the pool has no
// active and no pending tasks. Callers should check HasActiveTasks first;
// an empty pool is the normal termination condition, not a failure.
var ErrPoolEmpty = errors.New("no active or pending tasks")

// PoolConfig holds configuration for a task pool.
type PoolConfig struct {
	// MaxConcurrentTasks is the concurrency ceiling. Must be positive.
	MaxConcurrentTasks int

	// Name labels the pool in logs and metrics.
	Name string

	// Logger receives pool lifecycle events. Defaults to slog.Default().
	Logger *slog.Logger

	// Metrics, when non-nil, enables Prometheus instrumentation.
	Metrics *metrics.Registry
}

// Stats is a snapshot of pool state and terminal counters.
type Stats struct {
	Active    int
	Pending   int
	Completed int
	Failed    int
	TimedOut  int
}

// TotalProcessed returns the number of tasks resolved so far.
func (s Stats) TotalProcessed() int {
	return s.Completed + s.Failed + s.TimedOut
}

// completion is the funnel message a task execution delivers when it resolves.
type completion[T any] struct {
	id       string
	result   Result[T]
	err      error
	duration time.Duration
}

// execution tracks one running task: its cancel handle and a channel closed
// once its completion has been delivered.
type execution[T any] struct {
	cancel    context.CancelFunc
	done      chan struct{}
	startedAt time.Time
}

// Pool runs up to MaxConcurrentTasks task operations concurrently, queues
// the rest in FIFO order, and reports completions one at a time in
// wall-clock completion order. All state is mutex-guarded; the pick of a
// finished task and its removal from the active set are atomic.
type Pool[T any] struct {
	maxConcurrent int
	name          string
	logger        *slog.Logger
	metrics       *metrics.Registry

	mu        sync.Mutex
	active    map[string]*execution[T]
	pending   []Task[T]
	completed int
	failed    int
	timedOut  int

	// completions funnels per-task outcomes to WaitForNextCompletion.
	// Capacity equals the concurrency ceiling, so delivery never blocks:
	// each active slot holds at most one undelivered completion.
	completions chan completion[T]
}

// NewPool creates a pool with the given concurrency ceiling and defaults
// for everything else.
func NewPool[T any](maxConcurrent int) *Pool[T] {
	return NewPoolWithConfig[T](PoolConfig{MaxConcurrentTasks: maxConcurrent})
}

// NewPoolWithConfig creates a pool from an explicit configuration.
func NewPoolWithConfig[T any](cfg PoolConfig) *Pool[T] {
	if cfg.MaxConcurrentTasks <= 0 {
		panic("max concurrent tasks must be positive")
	}
	if cfg.Name == "" {
		cfg.Name = "stream"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Pool[T]{
		maxConcurrent: cfg.MaxConcurrentTasks,
		name:          cfg.Name,
		logger:        cfg.Logger,
		metrics:       cfg.Metrics,
		active:        make(map[string]*execution[T]),
		completions:   make(chan completion[T], cfg.MaxConcurrentTasks),
	}
}

// AddTask submits a task. If a slot is free under the concurrency ceiling
// the task starts immediately; otherwise it joins the pending queue. A full
// pool is a queuing decision, not an error.
func (p *Pool[T]) AddTask(task Task[T]) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.active) < p.maxConcurrent {
		p.startLocked(task)
	} else {
		p.pending = append(p.pending, task)
	}
	p.updateGaugesLocked()
}

// AddTasks submits tasks in order, filling free slots before queueing.
func (p *Pool[T]) AddTasks(tasks []Task[T]) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, task := range tasks {
		if len(p.active) < p.maxConcurrent {
			p.startLocked(task)
		} else {
			p.pending = append(p.pending, task)
		}
	}
	p.updateGaugesLocked()
}

// startLocked launches a task execution. A task whose id is already active
// is treated as already running and skipped.
func (p *Pool[T]) startLocked(task Task[T]) {
	if _, running := p.active[task.ID]; running {
		return
	}

	timeout := task.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	exec := &execution[T]{
		cancel:    cancel,
		done:      make(chan struct{}),
		startedAt: time.Now(),
	}
	p.active[task.ID] = exec

	if p.metrics != nil {
		p.metrics.TasksStarted.WithLabelValues(p.name).Inc()
	}
	p.logger.Debug("started task", "task_id", task.ID, "pool", p.name)

	go p.run(ctx, task, exec)
}

// run executes one task, racing the operation against its timeout clock.
// When the clock wins, the operation goroutine is abandoned: cancellation
// is signaled through the context, but the pool does not wait for it to be
// acknowledged before counting the task as resolved.
func (p *Pool[T]) run(ctx context.Context, task Task[T], exec *execution[T]) {
	defer exec.cancel()

	outcome := make(chan completion[T], 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				outcome <- completion[T]{
					id:  task.ID,
					err: fmt.Errorf("task panicked: %v\n%s", r, debug.Stack()),
				}
			}
		}()
		res, err := task.Op(ctx)
		outcome <- completion[T]{id: task.ID, result: res, err: err}
	}()

	var c completion[T]
	select {
	case c = <-outcome:
	case <-ctx.Done():
		c = completion[T]{id: task.ID, err: ctx.Err()}
	}
	c.duration = time.Since(exec.startedAt)

	p.completions <- c
	close(exec.done)
}

// WaitForNextCompletion blocks until one active task resolves, removes it
// from the active set, classifies the outcome, and promotes pending tasks
// into the freed slots. On success the task's Result is returned; tasks
// that failed or timed out yield a nil Result and a nil error, with the
// outcome recorded in the pool counters.
//
// Returns ErrPoolEmpty when there is nothing to wait for, and the context
// error if ctx is done before any task resolves.
func (p *Pool[T]) WaitForNextCompletion(ctx context.Context) (string, *Result[T], error) {
	p.mu.Lock()
	if len(p.active) == 0 {
		if len(p.pending) == 0 {
			p.mu.Unlock()
			return "", nil, ErrPoolEmpty
		}
		p.startPendingLocked()
	}
	p.mu.Unlock()

	select {
	case c := <-p.completions:
		p.resolve(c)
		if c.err == nil {
			return c.id, &c.result, nil
		}
		return c.id, nil, nil
	case <-ctx.Done():
		return "", nil, ctx.Err()
	}
}

// resolve removes a completed task from the active set, updates counters,
// and promotes pending tasks up to the concurrency ceiling.
func (p *Pool[T]) resolve(c completion[T]) {
	p.mu.Lock()
	if exec, ok := p.active[c.id]; ok {
		exec.cancel()
		delete(p.active, c.id)
	}

	switch {
	case c.err == nil:
		p.completed++
	case errors.Is(c.err, context.DeadlineExceeded):
		p.timedOut++
	default:
		p.failed++
	}

	p.startPendingLocked()
	p.updateGaugesLocked()
	p.mu.Unlock()

	switch {
	case c.err == nil:
		p.logger.Debug("task completed", "task_id", c.id, "duration", c.duration)
		if p.metrics != nil {
			p.metrics.TasksCompleted.WithLabelValues(p.name).Inc()
		}
	case errors.Is(c.err, context.DeadlineExceeded):
		p.logger.Warn("task timed out", "task_id", c.id, "duration", c.duration)
		if p.metrics != nil {
			p.metrics.TasksTimedOut.WithLabelValues(p.name).Inc()
		}
	default:
		p.logger.Error("task failed", "task_id", c.id, "error", c.err)
		if p.metrics != nil {
			p.metrics.TasksFailed.WithLabelValues(p.name).Inc()
		}
	}
	if p.metrics != nil {
		p.metrics.TaskDuration.WithLabelValues(p.name).Observe(c.duration.Seconds())
	}
}

// startPendingLocked promotes queued tasks into free slots, preserving
// submission order.
func (p *Pool[T]) startPendingLocked() {
	for len(p.active) < p.maxConcurrent && len(p.pending) > 0 {
		task := p.pending[0]
		p.pending = p.pending[1:]
		p.startLocked(task)
	}
}

// HasActiveTasks reports whether any task is running or queued.
func (p *Pool[T]) HasActiveTasks() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.active) > 0 || len(p.pending) > 0
}

// GetStats returns a snapshot of pool occupancy and terminal counters.
func (p *Pool[T]) GetStats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Stats{
		Active:    len(p.active),
		Pending:   len(p.pending),
		Completed: p.completed,
		Failed:    p.failed,
		TimedOut:  p.timedOut,
	}
}

// Shutdown cancels every active task, waits for each to settle, drains the
// completion funnel, and clears the pool. Cancellation-induced errors are
// expected and suppressed; anything else observed during the drain is
// logged as unexpected. Safe to call on an empty pool.
func (p *Pool[T]) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	execs := make([]*execution[T], 0, len(p.active))
	for _, exec := range p.active {
		execs = append(execs, exec)
	}
	p.pending = nil
	p.mu.Unlock()

	for _, exec := range execs {
		exec.cancel()
	}

	var waitErr error
	for _, exec := range execs {
		select {
		case <-exec.done:
		case <-ctx.Done():
			waitErr = ctx.Err()
		}
	}

	// Drain undelivered completions so settled tasks are not mistaken for
	// active ones and unexpected terminal errors are surfaced.
	for {
		select {
		case c := <-p.completions:
			if c.err != nil && !errors.Is(c.err, context.Canceled) && !errors.Is(c.err, context.DeadlineExceeded) {
				p.logger.Warn("task finished with error during shutdown", "task_id", c.id, "error", c.err)
			}
		default:
			p.mu.Lock()
			p.active = make(map[string]*execution[T])
			p.updateGaugesLocked()
			p.mu.Unlock()
			return waitErr
		}
	}
}

func (p *Pool[T]) updateGaugesLocked() {
	if p.metrics == nil {
		return
	}
	p.metrics.ActiveTasks.WithLabelValues(p.name).Set(float64(len(p.active)))
	p.metrics.PendingTasks.WithLabelValues(p.name).Set(float64(len(p.pending)))
}
