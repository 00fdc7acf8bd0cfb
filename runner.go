package drift

import "context"

// An ActorPool owns a fixed set of long-lived stateful workers, accepts Task
// submissions, routes each to exactly one worker, and returns a handle to the
// eventual result. Worker state persists across every Task a worker executes
// and is never shared with, or visible to, any other worker.
type ActorPool interface {
	// Name returns the caller-assigned name of this pool
	Name() string
	// Setup is an idempotent readiness check. The first successful call runs each
	// worker's stateful-transform constructors exactly once; subsequent calls
	// return the same pool identifier without re-running initializers. Setup must
	// be called, and succeed, before any Submit.
	Setup(ctx context.Context) (string, error)
	// Submit enqueues an Instruction stack over a list of input Partitions and
	// returns immediately with a handle to the eventual result. Tasks submitted
	// to the same worker execute in submission order; tasks routed to different
	// workers have no relative ordering guarantee.
	Submit(instructions []Instruction, inputs []Partition, finalMetadata []PartialPartitionMetadata) (TaskResult, error)
	// Teardown terminates every worker, releasing their resources. It is safe to
	// call after partial failure and is idempotent.
	Teardown() error
}

// A Runner executes ordinary Tasks directly and orchestrates ActorPool
// lifecycle: admission control against node capacity, creation, and guaranteed
// teardown. The Runner is the sole authority for resource-capacity
// introspection on the node.
type Runner interface {
	// NumCPUs returns the CPU capacity this Runner admits against
	NumCPUs() float64
	// NumGPUs returns the GPU capacity this Runner admits against
	NumGPUs() float64
	// MemoryBytes returns the memory capacity this Runner admits against, or 0 if unbounded
	MemoryBytes() int64
	// RunTask executes a non-stateful Task inline against an ephemeral context,
	// without a pool, returning its materialized results
	RunTask(ctx context.Context, task Task) ([]MaterializedResult, error)
	// CreateActorPool atomically admits resourceRequest*numActors against node
	// capacity and, on success, returns a ready ActorPool with numActors freshly
	// initialized workers. On violation it fails before spawning any worker.
	CreateActorPool(ctx context.Context, name string, resourceRequest ResourceRequest, numActors int, projection ExpressionsProjection) (ActorPool, error)
	// ActorPoolContext performs admission control, yields a ready ActorPool to fn,
	// and guarantees teardown on every exit path, including panics
	ActorPoolContext(ctx context.Context, name string, resourceRequest ResourceRequest, numActors int, projection ExpressionsProjection, fn func(pool ActorPool) error) error
}
