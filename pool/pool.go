// Package pool implements Drift's ActorPool: a fixed set of long-lived,
// stateful worker execution contexts serving submitted instruction stacks.
//
// Dispatch policy is idle-worker-first with FIFO tie-breaking: a submission is
// assigned to whichever worker frees up first, and submissions wait in a
// bounded queue while all workers are busy. Tasks dispatched to the same worker
// execute in submission order; tasks routed to different workers carry no
// relative ordering guarantee. A pool of size 1 therefore degenerates to strict
// FIFO serialization on its single worker.
package pool

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/go-drift/drift"
	"github.com/go-drift/drift/errors"
	"github.com/go-drift/drift/logging"
	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const defaultQueueDepth = 1024

// submission pairs a Task with the future its terminal value is delivered through
type submission struct {
	task   drift.Task
	future *taskFuture
}

// actorPool is Drift's internal implementation of ActorPool
type actorPool struct {
	name       string
	numActors  int
	resources  drift.ResourceRequest
	projection drift.ExpressionsProjection
	queueDepth int
	logger     zerolog.Logger

	mu       sync.Mutex
	ready    bool
	tornDown bool
	workers  []*statefulWorker

	closing      atomic.Bool
	pending      chan *submission
	idle         chan *statefulWorker
	dispatchDone chan struct{}
}

// PoolOption configures an ActorPool at creation time
type PoolOption func(p *actorPool)

// WithQueueDepth bounds the pending-submission queue. Submissions beyond this
// depth fail with a QueueFullError until a worker frees up.
func WithQueueDepth(depth int) PoolOption {
	return func(p *actorPool) {
		p.queueDepth = depth
	}
}

// WithLogger configures structured logging for the pool
func WithLogger(logger zerolog.Logger) PoolOption {
	return func(p *actorPool) {
		p.logger = logger
	}
}

// CreateActorPool is a factory for ActorPools. The pool owns numActors workers,
// each of which will hold one instance per distinct stateful Expression in
// projection. The returned pool is not ready until Setup succeeds.
func CreateActorPool(name string, numActors int, resources drift.ResourceRequest, projection drift.ExpressionsProjection, opts ...PoolOption) (drift.ActorPool, error) {
	if numActors < 1 {
		return nil, fmt.Errorf("Actor pool %s requires at least one actor", name)
	}
	if err := resources.Validate(); err != nil {
		return nil, err
	}
	p := &actorPool{
		name:       name,
		numActors:  numActors,
		resources:  resources,
		projection: projection,
		queueDepth: defaultQueueDepth,
		logger:     logging.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.queueDepth < 1 {
		return nil, fmt.Errorf("Actor pool %s requires a positive queue depth", name)
	}
	return p, nil
}

// Name returns the caller-assigned name of this pool
func (p *actorPool) Name() string {
	return p.name
}

// Setup is an idempotent readiness check. The first successful call initializes
// every worker, running each stateful-transform constructor exactly once, then
// starts the worker and dispatcher goroutines. Subsequent calls return the pool
// identifier without re-running initializers. If any initializer fails, no
// worker goroutine is started, transforms already constructed for other
// workers are closed, and the pool remains unready.
func (p *actorPool) Setup(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.tornDown {
		return "", errors.PoolTornDownError{PoolName: p.name}
	}
	if p.ready {
		return p.name, nil
	}

	workers := make([]*statefulWorker, p.numActors)
	g, _ := errgroup.WithContext(ctx)
	for i := range workers {
		i := i
		g.Go(func() error {
			w, err := createStatefulWorker(p, p.projection)
			if err != nil {
				return err
			}
			workers[i] = w
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		// release the workers whose initializers did succeed
		for _, w := range workers {
			if w == nil {
				continue
			}
			if cerr := w.close(); cerr != nil {
				err = multierror.Append(err, cerr)
			}
		}
		return "", errors.SetupError{PoolName: p.name, Cause: err}
	}

	p.workers = workers
	p.pending = make(chan *submission, p.queueDepth)
	p.idle = make(chan *statefulWorker, p.numActors)
	p.dispatchDone = make(chan struct{})
	for _, w := range workers {
		go w.run()
		p.idle <- w
	}
	go p.dispatch()
	p.ready = true
	p.logger.Debug().
		Str("pool", p.name).
		Int("actors", p.numActors).
		Msg("actor pool ready")
	return p.name, nil
}

// Submit enqueues an Instruction stack over a list of input Partitions and
// returns immediately with a handle to the eventual result. Submission cannot
// fail once the pool is ready, other than by exceeding the bounded queue.
func (p *actorPool) Submit(instructions []drift.Instruction, inputs []drift.Partition, finalMetadata []drift.PartialPartitionMetadata) (drift.TaskResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.tornDown {
		return nil, errors.PoolTornDownError{PoolName: p.name}
	}
	if !p.ready {
		return nil, errors.PoolNotSetupError{PoolName: p.name}
	}
	sub := &submission{
		task:   drift.CreateTask(instructions, inputs, finalMetadata),
		future: createTaskFuture(),
	}
	select {
	case p.pending <- sub:
		p.logger.Trace().
			Str("pool", p.name).
			Str("task", sub.task.ID).
			Msg("task submitted")
		return sub.future, nil
	default:
		return nil, errors.QueueFullError{PoolName: p.name, Capacity: p.queueDepth}
	}
}

// dispatch routes pending submissions to whichever worker frees up first.
// During teardown, submissions still queued are failed rather than dispatched,
// and worker channels are closed once the queue drains.
func (p *actorPool) dispatch() {
	defer close(p.dispatchDone)
	for sub := range p.pending {
		if p.closing.Load() {
			sub.future.fail(errors.PoolTornDownError{PoolName: p.name})
			continue
		}
		w := <-p.idle
		w.tasks <- sub
	}
	for _, w := range p.workers {
		close(w.tasks)
	}
}

// Teardown terminates every worker, releasing their resources. In-flight Tasks
// run to completion; queued Tasks fail with a PoolTornDownError. Teardown is
// idempotent and safe to call after partial failure or before Setup.
func (p *actorPool) Teardown() error {
	p.mu.Lock()
	if p.tornDown {
		p.mu.Unlock()
		return nil
	}
	p.tornDown = true
	ready := p.ready
	if ready {
		p.closing.Store(true)
		close(p.pending)
	}
	p.mu.Unlock()
	if !ready {
		return nil
	}

	<-p.dispatchDone
	var result *multierror.Error
	for _, w := range p.workers {
		<-w.done
		if err := w.close(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	p.logger.Debug().
		Str("pool", p.name).
		Msg("actor pool torn down")
	return result.ErrorOrNil()
}
