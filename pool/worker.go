package pool

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/go-drift/drift"
	"github.com/go-drift/drift/errors"
	"github.com/go-drift/drift/execution"
	uuid "github.com/gofrs/uuid"
	"github.com/hashicorp/go-multierror"
)

// statefulWorker is a long-lived execution context bound to one goroutine. It
// owns one StatefulTransform instance per distinct stateful Expression in the
// pool's projection; that state persists and accumulates across every Task the
// worker executes, and is never shared with any other worker.
type statefulWorker struct {
	id         string
	pool       *actorPool
	transforms map[string]drift.StatefulTransform
	tasks      chan *submission
	done       chan struct{}
}

// createStatefulWorker instantiates the state-holding object for every stateful
// Expression in the projection, exactly once, before the worker accepts any work
func createStatefulWorker(p *actorPool, projection drift.ExpressionsProjection) (*statefulWorker, error) {
	id, err := uuid.NewV4()
	if err != nil {
		log.Fatalf("failed to generate UUID for worker: %v", err)
	}
	transforms := make(map[string]drift.StatefulTransform)
	for _, e := range projection.StatefulExpressions() {
		instance, err := e.Factory()()
		if err != nil {
			return nil, fmt.Errorf("initializer for expression %s failed: %w", e.Name(), err)
		}
		transforms[e.Name()] = instance
	}
	return &statefulWorker{
		id:         id.String(),
		pool:       p,
		transforms: transforms,
		tasks:      make(chan *submission),
		done:       make(chan struct{}),
	}, nil
}

// run executes Tasks one at a time, to completion, in arrival order, until the
// worker's task channel is closed by the pool dispatcher
func (w *statefulWorker) run() {
	defer close(w.done)
	for sub := range w.tasks {
		w.execute(sub)
		w.pool.idle <- w
	}
}

// execute applies a Task's instruction stack, in order, to its input
// Partitions, delivering the terminal value through the Task's future. An
// instruction failure is reported upward; it does not stop the worker.
func (w *statefulWorker) execute(sub *submission) {
	wctx := execution.NewWorkerContext(context.Background(), w.transforms)
	parts := sub.task.Inputs
	for _, inst := range sub.task.Instructions {
		next, err := inst.RunWorker(wctx, parts)
		if err != nil {
			w.pool.logger.Debug().
				Str("pool", w.pool.name).
				Str("worker", w.id).
				Str("task", sub.task.ID).
				Str("instruction", inst.Name()).
				Err(err).
				Msg("task failed on worker")
			sub.future.fail(errors.WorkerExecutionError{
				TaskID:      sub.task.ID,
				Instruction: inst.Name(),
				Cause:       err,
			})
			return
		}
		parts = next
	}
	results := make([]drift.MaterializedResult, len(parts))
	for i, part := range parts {
		results[i] = drift.MaterializedResult{Partition: part, Metadata: part.Metadata()}
	}
	sub.future.complete(results)
}

// close releases worker-owned state, closing any StatefulTransform which
// implements io.Closer. Must only be called after run has exited.
func (w *statefulWorker) close() error {
	var result *multierror.Error
	for name, t := range w.transforms {
		if closer, ok := t.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				result = multierror.Append(result, fmt.Errorf("closing transform %s: %w", name, err))
			}
		}
	}
	return result.ErrorOrNil()
}
