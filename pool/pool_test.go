package pool

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/go-drift/drift"
	"github.com/go-drift/drift/errors"
	"github.com/go-drift/drift/execution"
	"github.com/go-drift/drift/expr"
	"github.com/go-drift/drift/partition"
	"github.com/go-drift/drift/schema"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// incrementTransform adds its call count to every value of column x
type incrementTransform struct {
	state int64
}

func (u *incrementTransform) Eval(part drift.Partition) (drift.Column, error) {
	u.state++
	col, err := part.GetColumn("x")
	if err != nil {
		return nil, err
	}
	vals, err := col.Int64Values()
	if err != nil {
		return nil, err
	}
	out := make([]int64, len(vals))
	for i, v := range vals {
		out[i] = v + u.state
	}
	return partition.NewColumn("x", &drift.Int64ColumnType{}, out)
}

func incrementFactory() (drift.StatefulTransform, error) {
	return &incrementTransform{}, nil
}

func createTestPartition(t *testing.T, xs []int64) drift.Partition {
	sch := schema.CreateSchema()
	_, err := sch.CreateColumn("x", &drift.Int64ColumnType{})
	require.Nil(t, err)
	part, err := partition.FromColumns(sch, map[string]interface{}{"x": xs})
	require.Nil(t, err)
	return part
}

func awaitInt64s(t *testing.T, res drift.TaskResult) []int64 {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	results, err := res.Await(ctx)
	require.Nil(t, err)
	require.Len(t, results, 1)
	col, err := results[0].Partition.GetColumn("x")
	require.Nil(t, err)
	vals, err := col.Int64Values()
	require.Nil(t, err)
	return vals
}

func TestStatePersistence(t *testing.T) {
	proj := drift.CreateProjection(expr.Stateful("x", incrementFactory))
	p, err := CreateActorPool("my-pool", 1, drift.ResourceRequest{NumCPUs: 1}, proj)
	require.Nil(t, err)
	defer p.Teardown()

	id, err := p.Setup(context.Background())
	require.Nil(t, err)
	require.Equal(t, "my-pool", id)

	part := createTestPartition(t, []int64{1, 1, 1})
	instr := execution.StatefulProject(proj)
	meta := []drift.PartialPartitionMetadata{drift.UnknownPartialMetadata()}

	// each call must observe the accumulated state of the previous call
	for _, expected := range [][]int64{{2, 2, 2}, {3, 3, 3}, {4, 4, 4}} {
		res, err := p.Submit([]drift.Instruction{instr}, []drift.Partition{part}, meta)
		require.Nil(t, err)
		require.Equal(t, expected, awaitInt64s(t, res))
	}
}

func TestResultMetadata(t *testing.T) {
	proj := drift.CreateProjection(expr.Stateful("x", incrementFactory))
	p, err := CreateActorPool("meta-pool", 1, drift.ResourceRequest{NumCPUs: 1}, proj)
	require.Nil(t, err)
	defer p.Teardown()
	_, err = p.Setup(context.Background())
	require.Nil(t, err)

	part := createTestPartition(t, []int64{1, 1, 1})
	res, err := p.Submit(
		[]drift.Instruction{execution.StatefulProject(proj)},
		[]drift.Partition{part},
		[]drift.PartialPartitionMetadata{drift.UnknownPartialMetadata()},
	)
	require.Nil(t, err)
	results, err := res.Await(context.Background())
	require.Nil(t, err)
	require.Len(t, results, 1)
	require.Equal(t, int64(3), results[0].Metadata.NumRows)
	require.Equal(t, results[0].Partition.GetSizeBytes(), results[0].Metadata.SizeBytes)
}

func TestIdempotentSetup(t *testing.T) {
	var initializations int
	var mu sync.Mutex
	proj := drift.CreateProjection(expr.Stateful("x", func() (drift.StatefulTransform, error) {
		mu.Lock()
		initializations++
		mu.Unlock()
		return &incrementTransform{}, nil
	}))
	p, err := CreateActorPool("idem-pool", 2, drift.ResourceRequest{NumCPUs: 1}, proj)
	require.Nil(t, err)
	defer p.Teardown()

	id1, err := p.Setup(context.Background())
	require.Nil(t, err)
	id2, err := p.Setup(context.Background())
	require.Nil(t, err)
	require.Equal(t, id1, id2)
	require.Equal(t, 2, initializations) // exactly once per worker
}

func TestSubmitBeforeSetup(t *testing.T) {
	proj := drift.CreateProjection(expr.Stateful("x", incrementFactory))
	p, err := CreateActorPool("unready-pool", 1, drift.ResourceRequest{NumCPUs: 1}, proj)
	require.Nil(t, err)

	_, err = p.Submit(nil, nil, nil)
	require.NotNil(t, err)
	require.IsType(t, errors.PoolNotSetupError{}, err)
}

func TestSetupInitializerFailure(t *testing.T) {
	defer goleak.VerifyNone(t)
	proj := drift.CreateProjection(expr.Stateful("x", func() (drift.StatefulTransform, error) {
		return nil, fmt.Errorf("model failed to load")
	}))
	p, err := CreateActorPool("broken-pool", 2, drift.ResourceRequest{NumCPUs: 1}, proj)
	require.Nil(t, err)

	_, err = p.Setup(context.Background())
	require.NotNil(t, err)
	require.IsType(t, errors.SetupError{}, err)

	// no partially-initialized pool is exposed
	_, err = p.Submit(nil, nil, nil)
	require.IsType(t, errors.PoolNotSetupError{}, err)
	require.Nil(t, p.Teardown())
}

func TestSetupFailureClosesInitializedWorkers(t *testing.T) {
	defer goleak.VerifyNone(t)
	var mu sync.Mutex
	closes := 0
	calls := 0
	proj := drift.CreateProjection(expr.Stateful("x", func() (drift.StatefulTransform, error) {
		mu.Lock()
		defer mu.Unlock()
		calls++
		if calls > 1 {
			return nil, fmt.Errorf("model failed to load")
		}
		return &closeRecordingTransform{mu: &mu, closes: &closes}, nil
	}))
	p, err := CreateActorPool("half-broken-pool", 2, drift.ResourceRequest{NumCPUs: 1}, proj)
	require.Nil(t, err)

	_, err = p.Setup(context.Background())
	require.IsType(t, errors.SetupError{}, err)

	// the worker whose initializer succeeded is released, not leaked
	mu.Lock()
	require.Equal(t, 1, closes)
	mu.Unlock()
	require.Nil(t, p.Teardown())
}

func TestWorkerFailurePropagation(t *testing.T) {
	proj := drift.CreateProjection(expr.Stateful("x", incrementFactory))
	p, err := CreateActorPool("err-pool", 1, drift.ResourceRequest{NumCPUs: 1}, proj)
	require.Nil(t, err)
	defer p.Teardown()
	_, err = p.Setup(context.Background())
	require.Nil(t, err)

	part := createTestPartition(t, []int64{1, 1, 1})
	meta := []drift.PartialPartitionMetadata{drift.UnknownPartialMetadata()}
	failing := execution.Project(drift.CreateProjection(expr.WithFn("x", func(p drift.Partition) (drift.Column, error) {
		return nil, fmt.Errorf("boom")
	})))

	res, err := p.Submit([]drift.Instruction{failing}, []drift.Partition{part}, meta)
	require.Nil(t, err) // submission itself cannot fail
	_, err = res.Await(context.Background())
	require.NotNil(t, err)
	require.IsType(t, errors.WorkerExecutionError{}, err)

	// the failure does not crash the pool; the worker keeps serving
	res, err = p.Submit([]drift.Instruction{execution.StatefulProject(proj)}, []drift.Partition{part}, meta)
	require.Nil(t, err)
	require.Equal(t, []int64{2, 2, 2}, awaitInt64s(t, res))
}

// barrierTransform blocks its worker until numWorkers tasks have started,
// forcing concurrent tasks onto distinct workers, then increments from
// fresh state like incrementTransform.
type barrierTransform struct {
	barrier *sync.WaitGroup
	inner   incrementTransform
}

func (u *barrierTransform) Eval(part drift.Partition) (drift.Column, error) {
	u.barrier.Done()
	u.barrier.Wait()
	return u.inner.Eval(part)
}

func TestWorkerIsolation(t *testing.T) {
	const numActors = 3
	var barrier sync.WaitGroup
	barrier.Add(numActors)
	proj := drift.CreateProjection(expr.Stateful("x", func() (drift.StatefulTransform, error) {
		return &barrierTransform{barrier: &barrier}, nil
	}))
	p, err := CreateActorPool("iso-pool", numActors, drift.ResourceRequest{NumCPUs: 1}, proj)
	require.Nil(t, err)
	defer p.Teardown()
	_, err = p.Setup(context.Background())
	require.Nil(t, err)

	part := createTestPartition(t, []int64{1, 1, 1})
	meta := []drift.PartialPartitionMetadata{drift.UnknownPartialMetadata()}
	instr := execution.StatefulProject(proj)

	handles := make([]drift.TaskResult, numActors)
	for i := range handles {
		res, err := p.Submit([]drift.Instruction{instr}, []drift.Partition{part}, meta)
		require.Nil(t, err)
		handles[i] = res
	}
	// every task lands on its own worker, so no task observes another's
	// state increments - all results are "increment from 0"
	for _, res := range handles {
		require.Equal(t, []int64{2, 2, 2}, awaitInt64s(t, res))
	}
}

func TestPerWorkerOrdering(t *testing.T) {
	proj := drift.CreateProjection(expr.Stateful("x", incrementFactory))
	p, err := CreateActorPool("fifo-pool", 1, drift.ResourceRequest{NumCPUs: 1}, proj)
	require.Nil(t, err)
	defer p.Teardown()
	_, err = p.Setup(context.Background())
	require.Nil(t, err)

	part := createTestPartition(t, []int64{0})
	meta := []drift.PartialPartitionMetadata{drift.UnknownPartialMetadata()}
	instr := execution.StatefulProject(proj)

	// submit a burst without awaiting; FIFO on the single worker means the
	// i-th submission observes exactly i prior state increments
	handles := make([]drift.TaskResult, 10)
	for i := range handles {
		res, err := p.Submit([]drift.Instruction{instr}, []drift.Partition{part}, meta)
		require.Nil(t, err)
		handles[i] = res
	}
	for i, res := range handles {
		require.Equal(t, []int64{int64(i + 1)}, awaitInt64s(t, res))
	}
}

func TestAwaitTimeoutDoesNotConsumeResult(t *testing.T) {
	release := make(chan struct{})
	proj := drift.CreateProjection(expr.Stateful("x", func() (drift.StatefulTransform, error) {
		return &gateTransform{release: release}, nil
	}))
	p, err := CreateActorPool("slow-pool", 1, drift.ResourceRequest{NumCPUs: 1}, proj)
	require.Nil(t, err)
	defer p.Teardown()
	_, err = p.Setup(context.Background())
	require.Nil(t, err)

	part := createTestPartition(t, []int64{1})
	res, err := p.Submit(
		[]drift.Instruction{execution.StatefulProject(proj)},
		[]drift.Partition{part},
		[]drift.PartialPartitionMetadata{drift.UnknownPartialMetadata()},
	)
	require.Nil(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = res.Await(ctx)
	require.Equal(t, context.DeadlineExceeded, err)

	// the result is still retrievable after the expired wait
	close(release)
	require.Equal(t, []int64{2}, awaitInt64s(t, res))
}

// gateTransform blocks until released, then increments like incrementTransform.
// A non-nil entered channel receives a signal when a task reaches the transform.
type gateTransform struct {
	release <-chan struct{}
	entered chan<- struct{}
	inner   incrementTransform
}

func (u *gateTransform) Eval(part drift.Partition) (drift.Column, error) {
	if u.entered != nil {
		u.entered <- struct{}{}
	}
	<-u.release
	return u.inner.Eval(part)
}

func TestQueueFull(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{}, 4)
	proj := drift.CreateProjection(expr.Stateful("x", func() (drift.StatefulTransform, error) {
		return &gateTransform{release: release, entered: entered}, nil
	}))
	p, err := CreateActorPool("tiny-queue-pool", 1, drift.ResourceRequest{NumCPUs: 1}, proj, WithQueueDepth(1))
	require.Nil(t, err)
	defer p.Teardown()
	_, err = p.Setup(context.Background())
	require.Nil(t, err)
	ap := p.(*actorPool)

	part := createTestPartition(t, []int64{1})
	meta := []drift.PartialPartitionMetadata{drift.UnknownPartialMetadata()}
	instr := execution.StatefulProject(proj)

	// occupy the single worker, waiting until it has picked up the task
	_, err = p.Submit([]drift.Instruction{instr}, []drift.Partition{part}, meta)
	require.Nil(t, err)
	<-entered

	// the next submission parks with the dispatcher; wait for it to leave the queue
	_, err = p.Submit([]drift.Instruction{instr}, []drift.Partition{part}, meta)
	require.Nil(t, err)
	require.Eventually(t, func() bool { return len(ap.pending) == 0 }, 5*time.Second, time.Millisecond)

	// this one fills the depth-1 queue, so a fourth must be refused
	_, err = p.Submit([]drift.Instruction{instr}, []drift.Partition{part}, meta)
	require.Nil(t, err)
	_, err = p.Submit([]drift.Instruction{instr}, []drift.Partition{part}, meta)
	require.NotNil(t, err)
	require.IsType(t, errors.QueueFullError{}, err)

	close(release)
}

// closeRecordingTransform counts how many times it is closed during teardown
type closeRecordingTransform struct {
	inner  incrementTransform
	mu     *sync.Mutex
	closes *int
}

func (u *closeRecordingTransform) Eval(part drift.Partition) (drift.Column, error) {
	return u.inner.Eval(part)
}

func (u *closeRecordingTransform) Close() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	*u.closes++
	return nil
}

func TestTeardown(t *testing.T) {
	defer goleak.VerifyNone(t)
	var mu sync.Mutex
	closes := 0
	proj := drift.CreateProjection(expr.Stateful("x", func() (drift.StatefulTransform, error) {
		return &closeRecordingTransform{mu: &mu, closes: &closes}, nil
	}))
	p, err := CreateActorPool("teardown-pool", 3, drift.ResourceRequest{NumCPUs: 1}, proj)
	require.Nil(t, err)
	_, err = p.Setup(context.Background())
	require.Nil(t, err)

	part := createTestPartition(t, []int64{1})
	res, err := p.Submit(
		[]drift.Instruction{execution.StatefulProject(proj)},
		[]drift.Partition{part},
		[]drift.PartialPartitionMetadata{drift.UnknownPartialMetadata()},
	)
	require.Nil(t, err)
	_, err = res.Await(context.Background())
	require.Nil(t, err)

	require.Nil(t, p.Teardown())
	require.Equal(t, 3, closes) // every worker released exactly once

	// idempotent: a second teardown is a no-op
	require.Nil(t, p.Teardown())
	require.Equal(t, 3, closes)

	// submissions after teardown fail fast
	_, err = p.Submit(nil, nil, nil)
	require.IsType(t, errors.PoolTornDownError{}, err)

	// setup after teardown is refused
	_, err = p.Setup(context.Background())
	require.IsType(t, errors.PoolTornDownError{}, err)
}

func TestTeardownBeforeSetup(t *testing.T) {
	defer goleak.VerifyNone(t)
	proj := drift.CreateProjection(expr.Stateful("x", incrementFactory))
	p, err := CreateActorPool("unused-pool", 2, drift.ResourceRequest{NumCPUs: 1}, proj)
	require.Nil(t, err)
	require.Nil(t, p.Teardown())
}
