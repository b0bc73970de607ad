/*
Package dynamic provides a self-expanding task pool and a streaming iterator
over its completions.

Unlike a fixed fork-join, the set of tasks is not known upfront: any
completed task may spawn follow-up tasks into the same pool. Completions
are reported one at a time in wall-clock completion order, never batched,
so consumers see partial results as soon as they exist.

Basic usage:

	fetch := func(ctx context.Context) (dynamic.Result[string], error) {
		// Do work, optionally spawning follow-ups.
		return dynamic.Publish("value"), nil
	}

	task, _ := dynamic.NewTask("fetch", fetch, 10*time.Second)
	it := dynamic.NewIterator([]dynamic.Task[string]{task}, dynamic.Config{
		MaxConcurrentTasks: 5,
		MaxTotalTasks:      50,
	})
	defer it.Close()

	err := it.ForEach(ctx, func(v string) {
		fmt.Println(v)
	})

Key properties:

  - Completion-order delivery: whichever task resolves first is reported
    first; submission order has no bearing on yield order.
  - Dynamic expansion: a task's Result may carry follow-up tasks, admitted
    until the iterator's global MaxTotalTasks cap; the rest are dropped
    and logged, never retried.
  - Per-task timeouts: each task's clock starts when it starts running,
    not when it is queued. A task that exceeds its timeout is cancelled
    on a best-effort basis and counted as timed out.
  - Failure isolation: a failing or timed-out task contributes no value
    and never terminates the stream; siblings are unaffected.
  - Guaranteed finalization: Close cancels and awaits all in-flight
    tasks, so abandoning a stream early leaves nothing running
    unsupervised.

Pool and Iterator are scoped to one streaming operation (for example one
search request) and are discarded after Close; there is no cross-request
reuse, and a second traversal of an iterator fails with ErrIteratorClosed.

The Pool can also be driven directly when finer control is needed:
AddTask, WaitForNextCompletion, HasActiveTasks, GetStats, Shutdown.
*/
package dynamic
