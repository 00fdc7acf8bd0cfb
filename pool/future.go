package pool

import (
	"context"
	"sync"

	"github.com/go-drift/drift"
)

// taskFuture is a channel-backed promise for a Task's terminal value. The
// executing worker writes the value exactly once; Await never consumes it, so
// the result remains retrievable after an expired wait.
type taskFuture struct {
	done    chan struct{}
	once    sync.Once
	results []drift.MaterializedResult
	err     error
}

func createTaskFuture() *taskFuture {
	return &taskFuture{done: make(chan struct{})}
}

func (f *taskFuture) complete(results []drift.MaterializedResult) {
	f.once.Do(func() {
		f.results = results
		close(f.done)
	})
}

func (f *taskFuture) fail(err error) {
	f.once.Do(func() {
		f.err = err
		close(f.done)
	})
}

// Done returns a channel which is closed once the Task has reached a terminal state
func (f *taskFuture) Done() <-chan struct{} {
	return f.done
}

// Await blocks until the Task reaches a terminal state or ctx expires
func (f *taskFuture) Await(ctx context.Context) ([]drift.MaterializedResult, error) {
	select {
	case <-f.done:
		return f.results, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
