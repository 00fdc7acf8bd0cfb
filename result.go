package drift

import "context"

// A TaskResult is an asynchronous handle to a Task's eventual output or failure.
// The terminal value (success or error) is written exactly once by the executing
// worker; waiting on the handle never consumes it, so an expired wait leaves the
// result retrievable later.
type TaskResult interface {
	// Done returns a channel which is closed once the Task has reached a terminal state
	Done() <-chan struct{}
	// Await blocks until the Task reaches a terminal state or ctx expires. On
	// success it returns one MaterializedResult per output Partition; on Task
	// failure it returns the propagated execution error. If ctx expires first,
	// Await returns ctx.Err() and the underlying result remains retrievable.
	Await(ctx context.Context) ([]MaterializedResult, error)
}
