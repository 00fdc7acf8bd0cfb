// Package runner implements Drift's local Runner: it executes ordinary
// instruction stacks inline, and is the sole authority for node resource
// capacity when admitting ActorPool creation requests.
package runner

import (
	"context"
	"runtime"

	"github.com/go-drift/drift"
	"github.com/go-drift/drift/errors"
	"github.com/go-drift/drift/execution"
	"github.com/go-drift/drift/logging"
	"github.com/go-drift/drift/pool"
	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
)

// localRunner is Drift's single-node Runner implementation
type localRunner struct {
	numCPUs     float64
	numGPUs     float64
	memoryBytes int64
	logger      zerolog.Logger
}

// RunnerOption configures a local Runner at creation time
type RunnerOption func(r *localRunner)

// WithNumCPUs overrides the detected CPU capacity
func WithNumCPUs(numCPUs float64) RunnerOption {
	return func(r *localRunner) {
		r.numCPUs = numCPUs
	}
}

// WithNumGPUs configures GPU capacity. Drift performs no GPU detection; the
// default capacity is 0.
func WithNumGPUs(numGPUs float64) RunnerOption {
	return func(r *localRunner) {
		r.numGPUs = numGPUs
	}
}

// WithMemoryBytes configures memory capacity for admission checks. The default
// of 0 leaves the memory dimension unbounded.
func WithMemoryBytes(memoryBytes int64) RunnerOption {
	return func(r *localRunner) {
		r.memoryBytes = memoryBytes
	}
}

// WithLogger configures structured logging for the Runner and the pools it creates
func WithLogger(logger zerolog.Logger) RunnerOption {
	return func(r *localRunner) {
		r.logger = logger
	}
}

// CreateLocalRunner is a factory for local Runners. CPU capacity defaults to
// the number of logical CPUs on the node.
func CreateLocalRunner(opts ...RunnerOption) drift.Runner {
	r := &localRunner{
		numCPUs: float64(runtime.NumCPU()),
		logger:  logging.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NumCPUs returns the CPU capacity this Runner admits against
func (r *localRunner) NumCPUs() float64 {
	return r.numCPUs
}

// NumGPUs returns the GPU capacity this Runner admits against
func (r *localRunner) NumGPUs() float64 {
	return r.numGPUs
}

// MemoryBytes returns the memory capacity this Runner admits against, or 0 if unbounded
func (r *localRunner) MemoryBytes() int64 {
	return r.memoryBytes
}

// RunTask executes a non-stateful Task inline against an ephemeral context.
// Stateful instructions fail here, since no worker-local state exists outside
// an ActorPool.
func (r *localRunner) RunTask(ctx context.Context, task drift.Task) ([]drift.MaterializedResult, error) {
	wctx := execution.NewWorkerContext(ctx, nil)
	parts, err := execution.RunStack(wctx, task.Instructions, task.Inputs)
	if err != nil {
		return nil, err
	}
	results := make([]drift.MaterializedResult, len(parts))
	for i, part := range parts {
		results[i] = drift.MaterializedResult{Partition: part, Metadata: part.Metadata()}
	}
	return results, nil
}

// admit compares the total resources required by numActors workers against
// node capacity, per dimension, returning a ResourceExhaustionError naming the
// requested and available quantities for the first violating dimension.
func (r *localRunner) admit(resourceRequest drift.ResourceRequest, numActors int) error {
	if err := resourceRequest.Validate(); err != nil {
		return err
	}
	total := resourceRequest.Multiply(numActors)
	if total.NumCPUs > r.numCPUs {
		return errors.ResourceExhaustionError{Resource: "CPUs", Requested: total.NumCPUs, Available: r.numCPUs}
	}
	if total.NumGPUs > r.numGPUs {
		return errors.ResourceExhaustionError{Resource: "GPUs", Requested: total.NumGPUs, Available: r.numGPUs}
	}
	if r.memoryBytes > 0 && total.MemoryBytes > r.memoryBytes {
		return errors.ResourceExhaustionError{Resource: "bytes of memory", Requested: float64(total.MemoryBytes), Available: float64(r.memoryBytes)}
	}
	return nil
}

// CreateActorPool atomically admits resourceRequest*numActors against node
// capacity and, on success, returns a ready ActorPool. Admission failure or a
// worker initializer failure surfaces before any worker is left running.
func (r *localRunner) CreateActorPool(ctx context.Context, name string, resourceRequest drift.ResourceRequest, numActors int, projection drift.ExpressionsProjection) (drift.ActorPool, error) {
	if err := r.admit(resourceRequest, numActors); err != nil {
		r.logger.Debug().
			Str("pool", name).
			Int("actors", numActors).
			Err(err).
			Msg("actor pool admission rejected")
		return nil, err
	}
	p, err := pool.CreateActorPool(name, numActors, resourceRequest, projection, pool.WithLogger(r.logger))
	if err != nil {
		return nil, err
	}
	if _, err := p.Setup(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

// ActorPoolContext performs admission control, yields a ready ActorPool to fn,
// and guarantees teardown on every exit path: normal return, error, or panic.
func (r *localRunner) ActorPoolContext(ctx context.Context, name string, resourceRequest drift.ResourceRequest, numActors int, projection drift.ExpressionsProjection, fn func(pool drift.ActorPool) error) (err error) {
	p, err := r.CreateActorPool(ctx, name, resourceRequest, numActors, projection)
	if err != nil {
		return err
	}
	defer func() {
		if terr := p.Teardown(); terr != nil {
			err = multierror.Append(err, terr).ErrorOrNil()
		}
	}()
	return fn(p)
}
