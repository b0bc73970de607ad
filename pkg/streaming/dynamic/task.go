package dynamic

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// DefaultTimeout is applied to tasks constructed without an explicit timeout.
const DefaultTimeout = 30 * time.Second

// ErrNilOperation is returned when a task is constructed without an operation.
// An operation must be a function the pool can invoke to obtain a fresh
// computation for each run; a pre-computed value or an already-running
// goroutine cannot be re-invoked and is not accepted.
var ErrNilOperation = errors.New("operation must be a function that produces a fresh computation per invocation")

// Operation is the unit of work a task runs. Each invocation must start a
// fresh computation; the pool invokes it at most once per task lifetime and
// passes a context carrying the task's timeout and cancellation signal.
// Operations should respect context cancellation but are not required to:
// cancellation is advisory, and an operation that ignores it is abandoned
// rather than forcibly terminated.
type Operation[T any] func(ctx context.Context) (Result[T], error)

// Task describes one unit of schedulable work: an identifier used for pool
// bookkeeping, the operation to run, and a per-task timeout measured from
// the moment the task is started (time spent queued does not count).
//
// The ID is not required to be globally unique, but while a task with the
// same ID is active in a pool, a second submission with that ID is skipped.
type Task[T any] struct {
	ID        string
	Op        Operation[T]
	Timeout   time.Duration
	CreatedAt time.Time
}

// NewTask builds a Task from an id, an operation, and a timeout.
// A zero or negative timeout selects DefaultTimeout.
func NewTask[T any](id string, op Operation[T], timeout time.Duration) (Task[T], error) {
	if op == nil {
		return Task[T]{}, fmt.Errorf("task %q: %w", id, ErrNilOperation)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return Task[T]{
		ID:        id,
		Op:        op,
		Timeout:   timeout,
		CreatedAt: time.Now(),
	}, nil
}

// Result is the outcome of running a task's operation: an optional
// publishable value handed to the stream's consumer, and zero or more
// follow-up tasks to enqueue into the same pool.
type Result[T any] struct {
	// Publishable is the value emitted to the consumer, or nil if this
	// task contributed no output of its own.
	Publishable *T

	// Next lists follow-up tasks to enqueue after this result is consumed.
	Next []Task[T]
}

// Publish returns a Result carrying v, optionally spawning follow-up tasks.
func Publish[T any](v T, next ...Task[T]) Result[T] {
	return Result[T]{Publishable: &v, Next: next}
}

// Spawn returns a Result with no publishable value that only spawns
// follow-up tasks.
func Spawn[T any](next ...Task[T]) Result[T] {
	return Result[T]{Next: next}
}

// TaskSpec is the (id, operation, timeout) triple accepted by NewFromSpecs.
type TaskSpec[T any] struct {
	ID      string
	Op      Operation[T]
	Timeout time.Duration
}
