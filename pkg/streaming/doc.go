/*
Package streaming offers higher-level streaming abstractions than standard
Go readers and writers.

Its one component today is the dynamic subpackage: a self-expanding task
pool whose results are consumed as an iterator in completion order, with
running tasks allowed to spawn follow-up work into the same stream.

Basic usage:

	it := dynamic.NewIterator(tasks, dynamic.Config{
		MaxConcurrentTasks: 10,
		MaxTotalTasks:      1000,
	})
	defer it.Close()

	for {
		v, ok, err := it.Next(ctx)
		if err != nil || !ok {
			break
		}
		consume(v)
	}

All components support cancellation through context and guarantee cleanup
of in-flight work on close.
*/
package streaming
